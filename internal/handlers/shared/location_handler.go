package shared

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pasugo/internal/middleware"
	"pasugo/internal/services"
	"pasugo/internal/utils"
)

type LocationHandler struct {
	locationService *services.LocationService
}

func NewLocationHandler(locationService *services.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// Report handles POST /locations.
func (h *LocationHandler) Report(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)

	var input services.LocationUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	loc, err := h.locationService.Report(c.Request.Context(), callerID, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "location recorded", loc)
}

// Latest handles GET /locations/:userId/latest.
func (h *LocationHandler) Latest(c *gin.Context) {
	userID, ok := utils.ParseObjectID(c.Param("userId"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid user id")
		return
	}

	loc, err := h.locationService.Latest(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", loc)
}

// History handles GET /locations/me/history.
func (h *LocationHandler) History(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)

	var from, to time.Time
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "validation", "from must be RFC3339")
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "validation", "to must be RFC3339")
			return
		}
		to = parsed
	}
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)

	history, err := h.locationService.History(c.Request.Context(), callerID, from, to, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", history)
}
