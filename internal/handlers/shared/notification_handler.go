package shared

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/internal/middleware"
	"pasugo/internal/services"
	"pasugo/internal/utils"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles GET /notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	p := utils.GetPaginationParams(c)
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := h.notificationService.List(c.Request.Context(), callerID, unreadOnly, p)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponseWithMeta(c, http.StatusOK, "", notifications, utils.NewPaginationMeta(p, total))
}

type markNotificationsReadInput struct {
	IDs []string `json:"ids"`
	All bool     `json:"all"`
}

// MarkRead handles POST /notifications/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)

	var input markNotificationsReadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	var count int64
	var err error
	if input.All {
		count, err = h.notificationService.MarkAllRead(c.Request.Context(), callerID)
	} else {
		ids := make([]primitive.ObjectID, 0, len(input.IDs))
		for _, raw := range input.IDs {
			id, ok := utils.ParseObjectID(raw)
			if !ok {
				utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid notification id")
				return
			}
			ids = append(ids, id)
		}
		count, err = h.notificationService.MarkRead(c.Request.Context(), callerID, ids)
	}
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "notifications marked read", gin.H{"count": count})
}

// UnreadCount handles GET /notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)

	count, err := h.notificationService.UnreadCount(c.Request.Context(), callerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"count": count})
}
