package favorite

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"dndinfo/internal/domain/auth"
	"dndinfo/internal/domain/catalog"
	"dndinfo/internal/labels"
	"dndinfo/internal/pkg/response"
)

type Handler struct {
	service *Service
	labels  *labels.Table
}

func NewHandler(service *Service, table *labels.Table) *Handler {
	return &Handler{service: service, labels: table}
}

type groupResponse struct {
	Kind  catalog.Kind       `json:"kind"`
	Label string             `json:"label"`
	Count int                `json:"count"`
	Items []catalog.ItemView `json:"items"`
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAlreadyFavorite):
		response.Error(c, http.StatusConflict, "CONFLICT", "Already in favorites")
	case errors.Is(err, ErrNotFavorite):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Not in favorites")
	default:
		catalog.RespondError(c, err)
	}
}

func target(c *gin.Context) (catalog.Kind, int64, bool) {
	kind, err := catalog.ParseKind(c.Param("kind"))
	if err != nil {
		catalog.RespondError(c, err)
		return "", 0, false
	}
	id, ok := catalog.PathID(c, "id")
	return kind, id, ok
}

// GetFavorites godoc
// @Summary		Избранное пользователя
// @Tags		Favorites
// @Security	BearerAuth
// @Produce		json
// @Success		200	{object}	response.Envelope
// @Router		/favorites [get]
func (h *Handler) GetFavorites(c *gin.Context) {
	actor := auth.ActorFromContext(c)

	groups, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	total := 0
	out := lo.Map(groups, func(g Group, _ int) groupResponse {
		total += g.Count
		return groupResponse{
			Kind:  g.Kind,
			Label: g.Label,
			Count: g.Count,
			Items: catalog.NewViews(g.Items, actor, h.labels),
		}
	})
	response.Success(c, http.StatusOK, gin.H{"groups": out, "total": total})
}

// AddFavorite godoc
// @Summary		Добавить в избранное
// @Tags		Favorites
// @Security	BearerAuth
// @Param		kind	path	string	true	"monster | spell | equipment"
// @Param		id		path	int		true	"item id"
// @Success		201	{object}	response.Envelope
// @Failure		409	{object}	response.Envelope
// @Router		/favorites/{kind}/{id} [post]
func (h *Handler) AddFavorite(c *gin.Context) {
	kind, id, ok := target(c)
	if !ok {
		return
	}
	fav, err := h.service.Add(c.Request.Context(), auth.ActorFromContext(c), kind, id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, fav)
}

// RemoveFavorite godoc
// @Summary		Удалить из избранного
// @Tags		Favorites
// @Security	BearerAuth
// @Success		200	{object}	response.Envelope
// @Router		/favorites/{kind}/{id} [delete]
func (h *Handler) RemoveFavorite(c *gin.Context) {
	kind, id, ok := target(c)
	if !ok {
		return
	}
	if err := h.service.Remove(c.Request.Context(), auth.ActorFromContext(c), kind, id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

// CheckFavorite godoc
// @Summary		Проверить, в избранном ли объект
// @Tags		Favorites
// @Security	BearerAuth
// @Success		200	{object}	response.Envelope
// @Router		/favorites/{kind}/{id}/check [get]
func (h *Handler) CheckFavorite(c *gin.Context) {
	kind, id, ok := target(c)
	if !ok {
		return
	}
	isFavorite, err := h.service.Check(c.Request.Context(), auth.ActorFromContext(c), kind, id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"is_favorite": isFavorite})
}
