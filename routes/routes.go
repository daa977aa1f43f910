package routes

import (
	"github.com/gin-gonic/gin"

	"pasugo/internal/handlers/shared"
	"pasugo/internal/middleware"
	"pasugo/pkg/websocket"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Request      *shared.RequestHandler
	Rider        *shared.RiderHandler
	Location     *shared.LocationHandler
	Messaging    *shared.MessagingHandler
	Notification *shared.NotificationHandler
	Upload       *shared.UploadHandler
	Admin        *shared.AdminHandler
	WS           *websocket.Handler
}

// Setup mounts the API under /api/v1 and the realtime endpoint under
// /ws.
func Setup(router *gin.Engine, h Handlers, jwtSecret string) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(middleware.AuthRequired(jwtSecret))

	RegisterRequestRoutes(api, h.Request)
	RegisterRiderRoutes(api, h.Rider)
	RegisterLocationRoutes(api, h.Location)
	RegisterMessagingRoutes(api, h.Messaging)
	RegisterNotificationRoutes(api, h.Notification)
	RegisterUploadRoutes(api, h.Upload)
	RegisterAdminRoutes(api, h.Admin, h.Messaging)

	// Token auth happens inside the websocket handshake, not here.
	router.GET("/ws/conversations/:id", h.WS.Serve)
}
