package shared

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pasugo/internal/services"
	"pasugo/internal/utils"
)

type AdminHandler struct {
	requestService *services.RequestService
	riderService   *services.RiderService
}

func NewAdminHandler(requestService *services.RequestService, riderService *services.RiderService) *AdminHandler {
	return &AdminHandler{
		requestService: requestService,
		riderService:   riderService,
	}
}

// Dashboard handles GET /admin/dashboard with request counts per
// lifecycle state.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	counts, err := h.requestService.CountByStatus(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"requests_by_status": counts})
}

// SuspendRider handles POST /admin/riders/:id/suspend.
func (h *AdminHandler) SuspendRider(c *gin.Context) {
	riderID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid rider id")
		return
	}

	if err := h.riderService.Suspend(c.Request.Context(), riderID); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "rider suspended", nil)
}

// ReinstateRider handles POST /admin/riders/:id/reinstate.
func (h *AdminHandler) ReinstateRider(c *gin.Context) {
	riderID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid rider id")
		return
	}

	if err := h.riderService.Reinstate(c.Request.Context(), riderID); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "rider reinstated", nil)
}
