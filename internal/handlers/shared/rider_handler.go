package shared

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pasugo/internal/middleware"
	"pasugo/internal/models"
	"pasugo/internal/services"
	"pasugo/internal/utils"
)

type RiderHandler struct {
	riderService     *services.RiderService
	discoveryService *services.DiscoveryService
	requestService   *services.RequestService
}

func NewRiderHandler(
	riderService *services.RiderService,
	discoveryService *services.DiscoveryService,
	requestService *services.RequestService,
) *RiderHandler {
	return &RiderHandler{
		riderService:     riderService,
		discoveryService: discoveryService,
		requestService:   requestService,
	}
}

// Register handles POST /riders.
func (h *RiderHandler) Register(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)

	var input services.RegisterRiderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	rider, err := h.riderService.Register(c.Request.Context(), callerID, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "rider registered", rider)
}

// Me handles GET /riders/me.
func (h *RiderHandler) Me(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)

	rider, err := h.riderService.GetByUserID(c.Request.Context(), callerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", rider)
}

type statusInput struct {
	Status models.RiderStatus `json:"status" binding:"required"`
}

// SetStatus handles PUT /riders/me/status.
func (h *RiderHandler) SetStatus(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)

	var input statusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	rider, err := h.riderService.SetStatus(c.Request.Context(), callerID, input.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "status updated", rider)
}

// MyRequests handles GET /riders/me/requests.
func (h *RiderHandler) MyRequests(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	p := utils.GetPaginationParams(c)

	rider, err := h.riderService.GetByUserID(c.Request.Context(), callerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	requests, total, err := h.requestService.ListForRider(c.Request.Context(), rider.ID, p)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponseWithMeta(c, http.StatusOK, "", requests, utils.NewPaginationMeta(p, total))
}

type discoverInput struct {
	Latitude  float64 `form:"latitude" binding:"required,coordinate"`
	Longitude float64 `form:"longitude" binding:"required,coordinate"`
}

// Discover handles GET /riders/available: workable riders with a fresh
// location inside the search radius, nearest first. The radius defaults
// wide enough to cover a city.
func (h *RiderHandler) Discover(c *gin.Context) {
	var input discoverInput
	if err := c.ShouldBindQuery(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	radius := parseRadius(c, utils.DefaultSearchRadiusKM)
	limit := parseDiscoveryLimit(c)

	candidates, err := h.discoveryService.FindCandidates(c.Request.Context(), input.Latitude, input.Longitude, radius, nil, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", candidates)
}

// Nearby handles GET /riders/nearby, the short-range variant. The
// status param picks the rider set: available (default), busy, or all.
func (h *RiderHandler) Nearby(c *gin.Context) {
	var input discoverInput
	if err := c.ShouldBindQuery(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	var statuses []models.RiderStatus
	switch c.DefaultQuery("status", "available") {
	case "available":
		statuses = []models.RiderStatus{models.RiderStatusAvailable}
	case "busy":
		statuses = []models.RiderStatus{models.RiderStatusBusy}
	case "all":
		statuses = []models.RiderStatus{models.RiderStatusAvailable, models.RiderStatusBusy, models.RiderStatusOffline}
	default:
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "status must be available, busy, or all")
		return
	}

	radius := parseRadius(c, utils.NearbyRadiusKM)
	limit := parseDiscoveryLimit(c)

	candidates, err := h.discoveryService.FindCandidates(c.Request.Context(), input.Latitude, input.Longitude, radius, statuses, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", candidates)
}

func parseRadius(c *gin.Context, fallback float64) float64 {
	radius, err := strconv.ParseFloat(c.DefaultQuery("radius_km", ""), 64)
	if err != nil {
		return fallback
	}
	return radius
}

func parseDiscoveryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", ""))
	if err != nil || limit <= 0 {
		return utils.DefaultDiscoveryLimit
	}
	if limit > utils.MaxDiscoveryLimit {
		return utils.MaxDiscoveryLimit
	}
	return limit
}
