package routes

import (
	"github.com/gin-gonic/gin"

	"pasugo/internal/handlers/shared"
	"pasugo/internal/middleware"
)

func RegisterRequestRoutes(api *gin.RouterGroup, h *shared.RequestHandler) {
	requests := api.Group("/requests")
	{
		requests.POST("", h.Create)
		requests.GET("", h.ListMine)
		requests.GET("/estimate", h.Estimate)
		requests.GET("/open", middleware.RiderRequired(), h.OpenPool)
		requests.GET("/:id", h.Get)
		requests.GET("/:id/status", h.StatusPoll)
		requests.PATCH("/:id/status", h.UpdateStatus)
		requests.POST("/:id/offer", h.Offer)
		requests.POST("/:id/accept", middleware.RiderRequired(), h.Accept)
		requests.POST("/:id/decline", middleware.RiderRequired(), h.Decline)
		requests.POST("/:id/start", middleware.RiderRequired(), h.Start)
		requests.POST("/:id/payment/request", middleware.RiderRequired(), h.RequestPayment)
		requests.POST("/:id/payment/submit", h.SubmitPayment)
		requests.POST("/:id/payment/confirm", middleware.RiderRequired(), h.ConfirmPayment)
		requests.POST("/:id/complete", middleware.RiderRequired(), h.Complete)
		requests.POST("/:id/collection-proof", middleware.RiderRequired(), h.AttachCollectionProof)
		requests.POST("/:id/cancel", h.Cancel)
	}
}
