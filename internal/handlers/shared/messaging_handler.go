package shared

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/internal/middleware"
	"pasugo/internal/models"
	"pasugo/internal/services"
	"pasugo/internal/utils"
	"pasugo/pkg/websocket"
)

type MessagingHandler struct {
	messagingService *services.MessagingService
	hub              *websocket.Hub
}

func NewMessagingHandler(messagingService *services.MessagingService, hub *websocket.Hub) *MessagingHandler {
	return &MessagingHandler{
		messagingService: messagingService,
		hub:              hub,
	}
}

type createConversationInput struct {
	RiderUserID string `json:"rider_user_id" binding:"required"`
	RequestID   string `json:"request_id,omitempty"`
}

// Create handles POST /conversations.
func (h *MessagingHandler) Create(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)

	var input createConversationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	riderUserID, ok := utils.ParseObjectID(input.RiderUserID)
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid rider user id")
		return
	}
	var requestID *primitive.ObjectID
	if input.RequestID != "" {
		id, ok := utils.ParseObjectID(input.RequestID)
		if !ok {
			utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid request id")
			return
		}
		requestID = &id
	}

	conv, err := h.messagingService.GetOrCreateConversation(c.Request.Context(), callerID, riderUserID, requestID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", conv)
}

// CreateSupport handles POST /conversations/support. Idempotent: a
// customer with an open support chat gets it back.
func (h *MessagingHandler) CreateSupport(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)

	conv, err := h.messagingService.GetOrCreateSupportConversation(c.Request.Context(), callerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", conv)
}

// List handles GET /conversations.
func (h *MessagingHandler) List(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	p := utils.GetPaginationParams(c)

	summaries, total, err := h.messagingService.ListConversations(c.Request.Context(), callerID, p)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponseWithMeta(c, http.StatusOK, "", summaries, utils.NewPaginationMeta(p, total))
}

// Get handles GET /conversations/:id.
func (h *MessagingHandler) Get(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	conversationID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid conversation id")
		return
	}

	conv, err := h.messagingService.GetConversation(c.Request.Context(), conversationID, callerID, middleware.IsAdmin(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", conv)
}

// Messages handles GET /conversations/:id/messages. History pages
// backwards by message id: pass before=<message_id> to fetch older
// messages, omit it for the newest page.
func (h *MessagingHandler) Messages(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	conversationID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid conversation id")
		return
	}

	var beforeID *primitive.ObjectID
	if raw := c.Query("before"); raw != "" {
		id, ok := utils.ParseObjectID(raw)
		if !ok {
			utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid before cursor")
			return
		}
		beforeID = &id
	}
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", ""), 10, 64)

	messages, err := h.messagingService.ListMessages(c.Request.Context(), conversationID, callerID, beforeID, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var nextBefore string
	if len(messages) > 0 {
		nextBefore = messages[0].ID.Hex()
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"messages":    messages,
		"next_before": nextBefore,
	})
}

type sendMessageInput struct {
	Content       string `json:"content,omitempty"`
	Type          string `json:"type,omitempty"`
	AttachmentURL string `json:"attachment_url,omitempty"`
}

// Send handles POST /conversations/:id/messages. The REST path exists
// for clients without a live channel; connected peers still get the
// broadcast.
func (h *MessagingHandler) Send(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	conversationID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid conversation id")
		return
	}

	var input sendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	msgType := models.MessageType(input.Type)
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	msg, err := h.messagingService.CreateMessage(c.Request.Context(), conversationID, callerID, input.Content, msgType, input.AttachmentURL)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.hub.Broadcast(conversationID, websocket.NewEvent(websocket.EventNewMessage, msg), callerID)
	utils.SuccessResponse(c, http.StatusCreated, "message sent", msg)
}

type markReadInput struct {
	MessageIDs []string `json:"message_ids,omitempty"`
}

// MarkRead handles POST /conversations/:id/read. An empty body (or
// empty id list) receipts everything unread; otherwise only the listed
// messages.
func (h *MessagingHandler) MarkRead(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	conversationID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid conversation id")
		return
	}

	var input markReadInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "validation", err.Error())
			return
		}
	}
	var requested []primitive.ObjectID
	for _, raw := range input.MessageIDs {
		id, ok := utils.ParseObjectID(raw)
		if !ok {
			utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid message id")
			return
		}
		requested = append(requested, id)
	}

	messageIDs, err := h.messagingService.MarkMessagesRead(c.Request.Context(), conversationID, callerID, requested)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if len(messageIDs) > 0 {
		ids := make([]string, 0, len(messageIDs))
		for _, id := range messageIDs {
			ids = append(ids, id.Hex())
		}
		h.hub.Broadcast(conversationID, websocket.NewEvent(websocket.EventMessagesRead, websocket.MessagesReadData{
			UserID:     callerID.Hex(),
			MessageIDs: ids,
		}), callerID)
	}
	utils.SuccessResponse(c, http.StatusOK, "messages marked read", gin.H{"count": len(messageIDs)})
}

// UnreadCount handles GET /conversations/:id/unread.
func (h *MessagingHandler) UnreadCount(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	conversationID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid conversation id")
		return
	}

	count, err := h.messagingService.UnreadCount(c.Request.Context(), conversationID, callerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"unread_count": count})
}

// DeleteMessage handles DELETE /messages/:id. Senders may remove their
// own messages; the record is kept but hidden.
func (h *MessagingHandler) DeleteMessage(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	messageID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid message id")
		return
	}

	if err := h.messagingService.DeleteMessage(c.Request.Context(), messageID, callerID); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "message deleted", nil)
}

// Presence handles GET /conversations/:id/presence.
func (h *MessagingHandler) Presence(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	conversationID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid conversation id")
		return
	}

	if _, err := h.messagingService.GetConversation(c.Request.Context(), conversationID, callerID, middleware.IsAdmin(c)); err != nil {
		utils.RespondError(c, err)
		return
	}

	online, err := h.messagingService.OnlineParticipants(c.Request.Context(), conversationID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	typing, err := h.messagingService.TypingParticipants(c.Request.Context(), conversationID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"online": hexIDs(online),
		"typing": hexIDs(typing),
	})
}

// Close handles POST /admin/conversations/:id/close.
func (h *MessagingHandler) Close(c *gin.Context) {
	conversationID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid conversation id")
		return
	}

	if err := h.messagingService.CloseConversation(c.Request.Context(), conversationID); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "conversation closed", nil)
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
