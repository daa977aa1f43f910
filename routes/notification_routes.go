package routes

import (
	"github.com/gin-gonic/gin"

	"pasugo/internal/handlers/shared"
)

func RegisterNotificationRoutes(api *gin.RouterGroup, h *shared.NotificationHandler) {
	notifications := api.Group("/notifications")
	{
		notifications.GET("", h.List)
		notifications.POST("/read", h.MarkRead)
		notifications.GET("/unread-count", h.UnreadCount)
	}
}

func RegisterUploadRoutes(api *gin.RouterGroup, h *shared.UploadHandler) {
	api.POST("/uploads/:kind", h.Upload)
}
