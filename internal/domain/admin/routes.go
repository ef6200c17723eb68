package admin

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	// homebrew moderation
	moderation := admin.Group("/moderation")
	{
		moderation.GET("", h.GetDashboard)
		moderation.GET("/:kind/pending", h.GetPending)
		moderation.POST("/:kind/:id/approve", h.Approve)
		moderation.POST("/:kind/:id/reject", h.Reject)
		moderation.POST("/:kind/bulk", h.Bulk)
	}

	// users
	admin.DELETE("/users/:id", h.DeleteUser)
}
