package favorite

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	favorites := rg.Group("/favorites")
	{
		favorites.GET("", h.GetFavorites)
		favorites.POST("/:kind/:id", h.AddFavorite)
		favorites.DELETE("/:kind/:id", h.RemoveFavorite)
		favorites.GET("/:kind/:id/check", h.CheckFavorite)
	}
}
