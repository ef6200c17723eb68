package feed

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the feed outside the header-auth groups: browsers
// cannot set headers on a WebSocket handshake.
func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup) {
	v1.GET("/admin/feed", h.Subscribe)
}
