package routes

import (
	"github.com/gin-gonic/gin"

	"pasugo/internal/handlers/shared"
)

func RegisterMessagingRoutes(api *gin.RouterGroup, h *shared.MessagingHandler) {
	conversations := api.Group("/conversations")
	{
		conversations.POST("", h.Create)
		conversations.POST("/support", h.CreateSupport)
		conversations.GET("", h.List)
		conversations.GET("/:id", h.Get)
		conversations.GET("/:id/messages", h.Messages)
		conversations.POST("/:id/messages", h.Send)
		conversations.POST("/:id/read", h.MarkRead)
		conversations.GET("/:id/unread", h.UnreadCount)
		conversations.GET("/:id/presence", h.Presence)
	}
	api.DELETE("/messages/:id", h.DeleteMessage)
}
