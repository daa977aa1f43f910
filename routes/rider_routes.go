package routes

import (
	"github.com/gin-gonic/gin"

	"pasugo/internal/handlers/shared"
	"pasugo/internal/middleware"
)

func RegisterRiderRoutes(api *gin.RouterGroup, h *shared.RiderHandler) {
	riders := api.Group("/riders")
	{
		riders.POST("", h.Register)
		riders.GET("/available", h.Discover)
		riders.GET("/nearby", h.Nearby)
		riders.GET("/me", middleware.RiderRequired(), h.Me)
		riders.PUT("/me/status", middleware.RiderRequired(), h.SetStatus)
		riders.GET("/me/requests", middleware.RiderRequired(), h.MyRequests)
	}
}
