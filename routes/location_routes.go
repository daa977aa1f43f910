package routes

import (
	"github.com/gin-gonic/gin"

	"pasugo/internal/handlers/shared"
)

func RegisterLocationRoutes(api *gin.RouterGroup, h *shared.LocationHandler) {
	locations := api.Group("/locations")
	{
		locations.POST("", h.Report)
		locations.GET("/me/history", h.History)
		locations.GET("/:userId/latest", h.Latest)
	}
}
