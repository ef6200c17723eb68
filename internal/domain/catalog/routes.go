package catalog

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts every kind under its plural name. public carries
// optional auth, protected requires a user and admin requires an administrator.
func (h *Handler) RegisterRoutes(public, protected, admin *gin.RouterGroup) {
	public.GET("/labels", h.Labels)
	public.GET("/overview", h.Overview)

	for _, kind := range Kinds {
		base := "/" + kind.Plural()

		public.GET(base, h.List(kind))
		public.GET(base+"/:id", h.Get(kind))
		public.GET(base+"/:id/similar", h.Similar(kind))

		protected.GET(base+"/mine", h.Mine(kind))
		protected.POST(base, h.Create(kind))
		protected.PUT(base+"/:id", h.Update(kind))

		admin.DELETE(base+"/:id", h.Delete(kind))
	}
}
