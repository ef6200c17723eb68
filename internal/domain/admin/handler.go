package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dndinfo/internal/domain/auth"
	"dndinfo/internal/domain/catalog"
	"dndinfo/internal/observability"
	"dndinfo/internal/pkg/response"
)

type Handler struct {
	service *Service
	views   *catalog.Handler
}

// NewHandler takes the catalog handler to render item pages the same way the
// public API does.
func NewHandler(service *Service, views *catalog.Handler) *Handler {
	return &Handler{service: service, views: views}
}

type BulkRequest struct {
	IDs    []int64 `json:"ids" binding:"required"`
	Action string  `json:"action" binding:"required"`
}

func kindParam(c *gin.Context) (catalog.Kind, bool) {
	kind, err := catalog.ParseKind(c.Param("kind"))
	if err != nil {
		catalog.RespondError(c, err)
		return "", false
	}
	return kind, true
}

// GetDashboard godoc
// @Summary		Moderation dashboard
// @Description	Pending and approved homebrew counts per kind with the latest approvals
// @Tags		Admin
// @Security	BearerAuth
// @Produce		json
// @Success		200	{object}	response.Envelope
// @Router		/admin/moderation [get]
func (h *Handler) GetDashboard(c *gin.Context) {
	dash, err := h.service.Dashboard(c.Request.Context(), auth.ActorFromContext(c))
	if err != nil {
		catalog.RespondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dash)
}

// GetPending godoc
// @Summary		Pending homebrew of one kind
// @Tags		Admin
// @Security	BearerAuth
// @Param		kind	path	string	true	"monster | spell | equipment"
// @Success		200	{object}	response.Envelope
// @Router		/admin/moderation/{kind}/pending [get]
func (h *Handler) GetPending(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	actor := auth.ActorFromContext(c)
	page, perPage := catalog.PageParams(c)

	p, err := h.service.ListPending(c.Request.Context(), actor, kind, page, perPage)
	if err != nil {
		catalog.RespondError(c, err)
		return
	}
	h.views.RespondPage(c, p, actor)
}

// Approve godoc
// @Summary		Approve homebrew
// @Tags		Admin
// @Security	BearerAuth
// @Success		200	{object}	response.Envelope
// @Failure		404	{object}	response.Envelope
// @Router		/admin/moderation/{kind}/{id}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := catalog.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Moderator.Approve(c.Request.Context(), auth.ActorFromContext(c), kind, id); err != nil {
		catalog.RespondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "status": catalog.StatusApproved})
}

// Reject godoc
// @Summary		Reject homebrew
// @Description	Rejection deletes the item
// @Tags		Admin
// @Security	BearerAuth
// @Success		200	{object}	response.Envelope
// @Router		/admin/moderation/{kind}/{id}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := catalog.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Moderator.Reject(c.Request.Context(), auth.ActorFromContext(c), kind, id); err != nil {
		catalog.RespondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// Bulk godoc
// @Summary		Bulk approve or reject
// @Tags		Admin
// @Security	BearerAuth
// @Accept		json
// @Param		body	body	BulkRequest	true	"ids and action"
// @Success		200	{object}	response.Envelope
// @Router		/admin/moderation/{kind}/bulk [post]
func (h *Handler) Bulk(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	action, err := catalog.ParseAction(req.Action)
	if err != nil {
		catalog.RespondError(c, err)
		return
	}

	res, err := h.service.BulkModerate(c.Request.Context(), auth.ActorFromContext(c), kind, req.IDs, action)
	if err != nil {
		catalog.RespondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// DeleteUser godoc
// @Summary		Delete user
// @Description	Owned catalog items are kept without an owner
// @Tags		Admin
// @Security	BearerAuth
// @Success		200	{object}	response.Envelope
// @Router		/admin/users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := catalog.PathID(c, "id")
	if !ok {
		return
	}
	err := h.service.DeleteUser(c.Request.Context(), auth.ActorFromContext(c), id)
	switch {
	case err == nil:
		observability.ModerationActionsTotal.WithLabelValues("user", "delete").Inc()
		response.Success(c, http.StatusOK, gin.H{"deleted": id})
	case errors.Is(err, ErrSelfDelete):
		response.Error(c, http.StatusConflict, "CONFLICT", "You cannot delete your own account")
	case errors.Is(err, auth.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
	default:
		catalog.RespondError(c, err)
	}
}
