package routes

import (
	"github.com/gin-gonic/gin"

	"pasugo/internal/handlers/shared"
	"pasugo/internal/middleware"
)

func RegisterAdminRoutes(api *gin.RouterGroup, h *shared.AdminHandler, messaging *shared.MessagingHandler) {
	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("/dashboard", h.Dashboard)
		admin.POST("/riders/:id/suspend", h.SuspendRider)
		admin.POST("/riders/:id/reinstate", h.ReinstateRider)
		admin.POST("/conversations/:id/close", messaging.Close)
	}
}
