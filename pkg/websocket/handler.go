package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/internal/config"
	"pasugo/internal/models"
	"pasugo/internal/utils"
	"pasugo/pkg/logger"
)

// Close codes sent before rejecting a connection.
const (
	CloseBadToken     = 4001
	CloseAccessDenied = 4003
)

// ChatStore is the persistence surface the realtime handler needs.
// Satisfied by services.MessagingService.
type ChatStore interface {
	UserHasAccess(ctx context.Context, conversationID, userID primitive.ObjectID) (bool, error)
	CreateMessage(ctx context.Context, conversationID, senderID primitive.ObjectID, content string, msgType models.MessageType, attachmentURL string) (*models.Message, error)
	MarkMessagesRead(ctx context.Context, conversationID, userID primitive.ObjectID, messageIDs []primitive.ObjectID) ([]primitive.ObjectID, error)
	SetTyping(ctx context.Context, conversationID, userID primitive.ObjectID, typing bool) error
	RegisterConnection(ctx context.Context, conversationID, userID primitive.ObjectID) error
	DeregisterConnection(ctx context.Context, conversationID, userID primitive.ObjectID) error
}

// Handler upgrades HTTP requests into conversation channels and runs
// the realtime protocol over them.
type Handler struct {
	hub      *Hub
	store    ChatStore
	upgrader websocket.Upgrader
	secret   string
	logger   *logger.Logger
}

func NewHandler(hub *Hub, store ChatStore, cfg *config.WebSocketConfig, jwtSecret string) *Handler {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	allowAll := false
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return &Handler{
		hub:    hub,
		store:  store,
		secret: jwtSecret,
		logger: logger.GetLogger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				if allowAll {
					return true
				}
				return allowed[r.Header.Get("Origin")]
			},
		},
	}
}

// Serve handles GET /ws/conversations/:id. The token rides the query
// string because browsers cannot set headers on websocket upgrades.
// Access is verified once here; membership changes do not evict a live
// channel.
func (h *Handler) Serve(c *gin.Context) {
	conversationID, ok := utils.ParseObjectID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation", "invalid conversation id")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	claims, err := utils.ValidateToken(c.Query("token"), h.secret)
	if err != nil {
		h.reject(conn, CloseBadToken, "invalid token")
		return
	}
	userID := claims.UserID

	ctx := c.Request.Context()
	hasAccess, err := h.store.UserHasAccess(ctx, conversationID, userID)
	if err != nil || !hasAccess {
		h.reject(conn, CloseAccessDenied, "access denied")
		return
	}

	client := NewClient(conn, userID, conversationID)
	h.hub.Join(client)
	if err := h.store.RegisterConnection(ctx, conversationID, userID); err != nil {
		h.logger.WithError(err).Warn("failed to record connection")
	}

	h.hub.Broadcast(conversationID, NewEvent(EventUserJoined, PresenceData{UserID: userID.Hex()}), userID)

	go client.writePump()
	client.readPump(func(raw []byte) {
		h.dispatch(client, raw)
	})

	// Read pump returned, the channel is gone. Clean up presence and
	// tell the room.
	h.hub.Leave(client)
	client.closeSend()

	cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.store.DeregisterConnection(cleanupCtx, conversationID, userID); err != nil {
		h.logger.WithError(err).Warn("failed to close connection records")
	}
	h.hub.Broadcast(conversationID, NewEvent(EventUserLeft, PresenceData{UserID: userID.Hex()}), userID)
}

func (h *Handler) reject(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(writeWait)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), deadline)
	conn.Close()
}

// dispatch routes one inbound event. Protocol errors answer with an
// error event and keep the channel open.
func (h *Handler) dispatch(client *Client, raw []byte) {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		h.sendError(client, "bad_event", "malformed event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch event.Type {
	case EventSendMessage:
		h.handleSendMessage(ctx, client, event.Data)
	case EventMarkRead:
		h.handleMarkRead(ctx, client, event.Data)
	case EventTypingStart:
		h.handleTyping(ctx, client, true)
	case EventTypingStop:
		h.handleTyping(ctx, client, false)
	case EventPing:
		h.hub.SendTo(client.conversationID, client.userID, Event{Type: EventPong})
	default:
		h.sendError(client, "bad_event", "unknown event type")
	}
}

func (h *Handler) handleSendMessage(ctx context.Context, client *Client, data json.RawMessage) {
	var payload SendMessageData
	if err := json.Unmarshal(data, &payload); err != nil {
		h.sendError(client, "bad_event", "malformed send_message data")
		return
	}

	msgType := models.MessageType(payload.Type)
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	// Persist first. The sender is not echoed; delivery to the sender
	// is the HTTP response or the persisted record.
	msg, err := h.store.CreateMessage(ctx, client.conversationID, client.userID, payload.Content, msgType, payload.AttachmentURL)
	if err != nil {
		h.sendError(client, "send_failed", "message could not be saved")
		return
	}

	h.hub.Broadcast(client.conversationID, NewEvent(EventNewMessage, msg), client.userID)
	h.logger.LogWebSocketEvent(client.conversationID.Hex(), client.userID.Hex(), EventSendMessage)
}

func (h *Handler) handleMarkRead(ctx context.Context, client *Client, data json.RawMessage) {
	// An absent or empty id list receipts everything unread.
	var payload MarkReadData
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			h.sendError(client, "bad_event", "malformed mark_read data")
			return
		}
	}
	var requested []primitive.ObjectID
	for _, raw := range payload.MessageIDs {
		id, ok := utils.ParseObjectID(raw)
		if !ok {
			h.sendError(client, "bad_event", "malformed message id")
			return
		}
		requested = append(requested, id)
	}

	messageIDs, err := h.store.MarkMessagesRead(ctx, client.conversationID, client.userID, requested)
	if err != nil {
		h.sendError(client, "mark_read_failed", "receipts could not be saved")
		return
	}
	if len(messageIDs) == 0 {
		return
	}

	ids := make([]string, 0, len(messageIDs))
	for _, id := range messageIDs {
		ids = append(ids, id.Hex())
	}
	h.hub.Broadcast(client.conversationID, NewEvent(EventMessagesRead, MessagesReadData{
		UserID:     client.userID.Hex(),
		MessageIDs: ids,
	}), client.userID)
}

func (h *Handler) handleTyping(ctx context.Context, client *Client, typing bool) {
	if err := h.store.SetTyping(ctx, client.conversationID, client.userID, typing); err != nil {
		h.sendError(client, "typing_failed", "typing status could not be saved")
		return
	}
	h.hub.Broadcast(client.conversationID, NewEvent(EventUserTyping, TypingData{
		UserID: client.userID.Hex(),
		Typing: typing,
	}), client.userID)
}

func (h *Handler) sendError(client *Client, code, message string) {
	h.hub.SendTo(client.conversationID, client.userID, NewEvent(EventError, ErrorData{
		Code:    code,
		Message: message,
	}))
}
