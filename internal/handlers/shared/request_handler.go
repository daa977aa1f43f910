package shared

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pasugo/internal/middleware"
	"pasugo/internal/models"
	"pasugo/internal/repositories/interfaces"
	"pasugo/internal/services"
	"pasugo/internal/utils"
)

type RequestHandler struct {
	requestService *services.RequestService
	geoService     *services.GeoService
}

func NewRequestHandler(requestService *services.RequestService, geoService *services.GeoService) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
		geoService:     geoService,
	}
}

// Create handles POST /requests.
func (h *RequestHandler) Create(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var input services.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	request, err := h.requestService.Create(c.Request.Context(), callerID, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "request created", request)
}

// Get handles GET /requests/:id.
func (h *RequestHandler) Get(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	requestID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid request id")
		return
	}

	request, err := h.requestService.Get(c.Request.Context(), requestID, callerID, middleware.IsAdmin(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", request)
}

// ListMine handles GET /requests, returning the customer's requests.
// Optional service_category and status query params narrow the list.
func (h *RequestHandler) ListMine(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	p := utils.GetPaginationParams(c)
	filter := interfaces.RequestFilter{
		Category: models.ServiceCategory(c.Query("service_category")),
		Status:   models.RequestStatus(c.Query("status")),
	}

	requests, total, err := h.requestService.ListForCustomer(c.Request.Context(), callerID, filter, p)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponseWithMeta(c, http.StatusOK, "", requests, utils.NewPaginationMeta(p, total))
}

// OpenPool handles GET /requests/open for riders browsing claimable
// requests.
func (h *RequestHandler) OpenPool(c *gin.Context) {
	p := utils.GetPaginationParams(c)

	requests, total, err := h.requestService.OpenPool(c.Request.Context(), p)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponseWithMeta(c, http.StatusOK, "", requests, utils.NewPaginationMeta(p, total))
}

type offerInput struct {
	RiderID string `json:"rider_id" binding:"required"`
}

// Offer handles POST /requests/:id/offer.
func (h *RequestHandler) Offer(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	requestID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid request id")
		return
	}

	var input offerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", err.Error())
		return
	}
	riderID, ok := utils.ParseObjectID(input.RiderID)
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid rider id")
		return
	}

	request, err := h.requestService.OfferToRider(c.Request.Context(), requestID, callerID, riderID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "offer sent", request)
}

// Accept handles POST /requests/:id/accept.
func (h *RequestHandler) Accept(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	requestID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid request id")
		return
	}

	request, err := h.requestService.Accept(c.Request.Context(), requestID, callerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "request accepted", request)
}

// Decline handles POST /requests/:id/decline.
func (h *RequestHandler) Decline(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	requestID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid request id")
		return
	}

	request, err := h.requestService.Decline(c.Request.Context(), requestID, callerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "offer declined", request)
}

// Start handles POST /requests/:id/start.
func (h *RequestHandler) Start(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	requestID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid request id")
		return
	}

	request, err := h.requestService.Start(c.Request.Context(), requestID, callerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "request started", request)
}

// RequestPayment handles POST /requests/:id/payment/request.
func (h *RequestHandler) RequestPayment(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	requestID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid request id")
		return
	}

	var input services.PaymentRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	request, err := h.requestService.RequestPayment(c.Request.Context(), requestID, callerID, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "payment requested", request)
}

// SubmitPayment handles POST /requests/:id/payment/submit.
func (h *RequestHandler) SubmitPayment(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	requestID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid request id")
		return
	}

	var input services.SubmitPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	request, err := h.requestService.SubmitPayment(c.Request.Context(), requestID, callerID, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "payment submitted", request)
}

// ConfirmPayment handles POST /requests/:id/payment/confirm.
// Confirmation also completes the request.
func (h *RequestHandler) ConfirmPayment(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	requestID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid request id")
		return
	}

	request, err := h.requestService.ConfirmPayment(c.Request.Context(), requestID, callerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "payment confirmed", request)
}

// Complete handles POST /requests/:id/complete. The assigned rider
// closes out the delivery whether or not payment has settled.
func (h *RequestHandler) Complete(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	requestID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid request id")
		return
	}

	request, err := h.requestService.Complete(c.Request.Context(), requestID, callerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "request completed", request)
}

type updateStatusInput struct {
	Status models.RequestStatus `json:"status" binding:"required"`
}

// UpdateStatus handles PATCH /requests/:id/status.
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	requestID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid request id")
		return
	}

	var input updateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	request, err := h.requestService.UpdateStatus(c.Request.Context(), requestID, callerID, middleware.IsAdmin(c), input.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "status updated", request)
}

// StatusPoll handles GET /requests/:id/status, the lightweight polling
// endpoint clients hit while waiting on an offer or a payment.
func (h *RequestHandler) StatusPoll(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	requestID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid request id")
		return
	}

	view, err := h.requestService.StatusPoll(c.Request.Context(), requestID, callerID, middleware.IsAdmin(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", view)
}

type collectionProofInput struct {
	ProofURL string `json:"proof_url" binding:"required"`
}

// AttachCollectionProof handles POST /requests/:id/collection-proof.
func (h *RequestHandler) AttachCollectionProof(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	requestID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid request id")
		return
	}

	var input collectionProofInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	request, err := h.requestService.AttachCollectionProof(c.Request.Context(), requestID, callerID, input.ProofURL)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "proof attached", request)
}

// Cancel handles POST /requests/:id/cancel.
func (h *RequestHandler) Cancel(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	requestID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid request id")
		return
	}

	request, err := h.requestService.Cancel(c.Request.Context(), requestID, callerID, middleware.IsAdmin(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "request cancelled", request)
}

type estimateInput struct {
	OriginLat float64 `form:"origin_lat" binding:"required,coordinate"`
	OriginLng float64 `form:"origin_lng" binding:"required,coordinate"`
	DestLat   float64 `form:"dest_lat" binding:"required,coordinate"`
	DestLng   float64 `form:"dest_lng" binding:"required,coordinate"`
}

// Estimate handles GET /requests/estimate.
func (h *RequestHandler) Estimate(c *gin.Context) {
	var input estimateInput
	if err := c.ShouldBindQuery(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	estimate, err := h.geoService.EstimateFee(c.Request.Context(), input.OriginLat, input.OriginLng, input.DestLat, input.DestLng)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", estimate)
}
