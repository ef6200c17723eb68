package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"dndinfo/internal/domain/auth"
	"dndinfo/internal/labels"
	"dndinfo/internal/pkg/response"
)

// filterParams are the query parameters passed through to the kind filters.
var filterParams = []string{"size", "type", "level", "school", "cost_unit", "weight"}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RespondError maps catalog errors onto the API error envelope.
func RespondError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", verr.Fields)
	case errors.Is(err, ErrPermission):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You cannot perform this action")
	case errors.Is(err, ErrUnknownKind):
		response.Error(c, http.StatusNotFound, "UNKNOWN_KIND", "Unknown content kind")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Item not found")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// PathID reads a positive integer path parameter.
func PathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}

// PageParams reads page and per_page; zero means "use the default".
func PageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.Query("per_page"))
	return page, perPage
}

// RespondPage writes a page of items decorated for the calling actor.
func (h *Handler) RespondPage(c *gin.Context, p *Page, actor auth.Actor) {
	response.Paginated(c,
		NewViews(p.Items, actor, h.service.Labels()),
		response.NewPagination(p.Page, p.PerPage, p.Total))
}

// List godoc
// @Summary		List catalog items
// @Description	Official items by default; homebrew=true switches to approved homebrew
// @Tags		Catalog
// @Produce		json
// @Param		homebrew	query	bool	false	"approved homebrew instead of official"
// @Param		search		query	string	false	"free-text search"
// @Param		sort		query	string	false	"sort key"
// @Param		page		query	int		false	"page"
// @Param		per_page	query	int		false	"items per page"
// @Success		200	{object}	response.Envelope
// @Router		/{kind} [get]
func (h *Handler) List(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage := PageParams(c)
		homebrew, _ := strconv.ParseBool(c.DefaultQuery("homebrew", "false"))

		filters := make(map[string]string, len(filterParams))
		for _, name := range filterParams {
			if v := c.Query(name); v != "" {
				filters[name] = v
			}
		}

		p, err := h.service.ListVisible(c.Request.Context(), kind, ListQuery{
			Homebrew: homebrew,
			Search:   c.Query("search"),
			Filters:  filters,
			Sort:     c.Query("sort"),
			Page:     page,
			PerPage:  perPage,
		})
		if err != nil {
			RespondError(c, err)
			return
		}
		h.RespondPage(c, p, auth.ActorFromContext(c))
	}
}

// Mine lists the caller's own submissions in every moderation state.
func (h *Handler) Mine(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := auth.ActorFromContext(c)
		page, perPage := PageParams(c)

		p, err := h.service.ListMine(c.Request.Context(), actor, kind, page, perPage)
		if err != nil {
			RespondError(c, err)
			return
		}
		h.RespondPage(c, p, actor)
	}
}

// Get godoc
// @Summary		Get catalog item
// @Tags		Catalog
// @Produce		json
// @Param		id	path	int	true	"item id"
// @Success		200	{object}	response.Envelope
// @Failure		404	{object}	response.Envelope
// @Router		/{kind}/{id} [get]
func (h *Handler) Get(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := PathID(c, "id")
		if !ok {
			return
		}
		actor := auth.ActorFromContext(c)

		item, err := h.service.Get(c.Request.Context(), actor, kind, id)
		if err != nil {
			RespondError(c, err)
			return
		}
		response.Success(c, http.StatusOK, NewView(item, actor, h.service.Labels()))
	}
}

// Similar godoc
// @Summary		Related items
// @Tags		Catalog
// @Produce		json
// @Param		id		path	int	true	"item id"
// @Param		limit	query	int	false	"max results (default 5, max 20)"
// @Success		200	{object}	response.Envelope
// @Router		/{kind}/{id}/similar [get]
func (h *Handler) Similar(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := PathID(c, "id")
		if !ok {
			return
		}
		limit, _ := strconv.Atoi(c.Query("limit"))
		actor := auth.ActorFromContext(c)

		items, err := h.service.Similar(c.Request.Context(), actor, kind, id, limit)
		if err != nil {
			RespondError(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"items": NewViews(items, actor, h.service.Labels())})
	}
}

// Create godoc
// @Summary		Submit homebrew
// @Description	The item is stored as pending homebrew until an administrator approves it
// @Tags		Catalog
// @Security	BearerAuth
// @Accept		json
// @Produce		json
// @Success		201	{object}	response.Envelope
// @Failure		400	{object}	response.Envelope
// @Router		/{kind} [post]
func (h *Handler) Create(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := NewInput(kind)
		if err != nil {
			RespondError(c, err)
			return
		}
		if err := c.ShouldBindJSON(in); err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
			return
		}
		actor := auth.ActorFromContext(c)

		item, err := h.service.Submit(c.Request.Context(), actor, in)
		if err != nil {
			RespondError(c, err)
			return
		}
		response.Success(c, http.StatusCreated, NewView(item, actor, h.service.Labels()))
	}
}

// Update godoc
// @Summary		Edit catalog item
// @Description	Owners may edit their homebrew, which returns it to moderation; administrators may edit anything
// @Tags		Catalog
// @Security	BearerAuth
// @Accept		json
// @Produce		json
// @Param		id	path	int	true	"item id"
// @Success		200	{object}	response.Envelope
// @Failure		403	{object}	response.Envelope
// @Router		/{kind}/{id} [put]
func (h *Handler) Update(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := PathID(c, "id")
		if !ok {
			return
		}
		in, err := NewInput(kind)
		if err != nil {
			RespondError(c, err)
			return
		}
		if err := c.ShouldBindJSON(in); err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
			return
		}
		actor := auth.ActorFromContext(c)

		item, err := h.service.Edit(c.Request.Context(), actor, kind, id, in)
		if err != nil {
			RespondError(c, err)
			return
		}
		response.Success(c, http.StatusOK, NewView(item, actor, h.service.Labels()))
	}
}

// Delete godoc
// @Summary		Delete catalog item
// @Tags		Catalog
// @Security	BearerAuth
// @Param		id	path	int	true	"item id"
// @Success		200	{object}	response.Envelope
// @Router		/{kind}/{id} [delete]
func (h *Handler) Delete(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := PathID(c, "id")
		if !ok {
			return
		}
		if err := h.service.Delete(c.Request.Context(), auth.ActorFromContext(c), kind, id); err != nil {
			RespondError(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"deleted": id})
	}
}

type kindOverviewResponse struct {
	Kind           Kind       `json:"kind"`
	Label          string     `json:"label"`
	Official       int64      `json:"official"`
	Homebrew       int64      `json:"homebrew"`
	RecentOfficial []ItemView `json:"recent_official"`
	RecentHomebrew []ItemView `json:"recent_homebrew"`
}

// Overview godoc
// @Summary		Catalog overview
// @Description	Public counts per kind with the five newest official and approved homebrew items
// @Tags		Catalog
// @Produce		json
// @Success		200	{object}	response.Envelope
// @Router		/overview [get]
func (h *Handler) Overview(c *gin.Context) {
	kinds, err := h.service.Overview(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}

	actor := auth.ActorFromContext(c)
	table := h.service.Labels()
	out := lo.Map(kinds, func(k KindOverview, _ int) kindOverviewResponse {
		return kindOverviewResponse{
			Kind:           k.Kind,
			Label:          table.Label(labels.Kinds, string(k.Kind)),
			Official:       k.Official,
			Homebrew:       k.Homebrew,
			RecentOfficial: NewViews(k.RecentOfficial, actor, table),
			RecentHomebrew: NewViews(k.RecentHomebrew, actor, table),
		}
	})
	response.Success(c, http.StatusOK, gin.H{"kinds": out})
}

// Labels returns the display vocabulary.
func (h *Handler) Labels(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.Labels().Snapshot())
}
