package websocket

import "encoding/json"

// Client-to-server event types.
const (
	EventSendMessage = "send_message"
	EventMarkRead    = "mark_read"
	EventTypingStart = "typing_start"
	EventTypingStop  = "typing_stop"
	EventPing        = "ping"
)

// Server-to-client event types.
const (
	EventNewMessage   = "new_message"
	EventMessagesRead = "messages_read"
	EventUserTyping   = "user_typing"
	EventUserJoined   = "user_joined"
	EventUserLeft     = "user_left"
	EventPong         = "pong"
	EventError        = "error"
)

// Event is the wire envelope in both directions. The discriminator
// travels under the "event" key.
type Event struct {
	Type string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

func NewEvent(eventType string, data interface{}) Event {
	payload, err := json.Marshal(data)
	if err != nil {
		return Event{Type: eventType}
	}
	return Event{Type: eventType, Data: payload}
}

type SendMessageData struct {
	Content       string `json:"content"`
	Type          string `json:"type,omitempty"`
	AttachmentURL string `json:"attachment_url,omitempty"`
}

type MarkReadData struct {
	MessageIDs []string `json:"message_ids,omitempty"`
}

type MessagesReadData struct {
	UserID     string   `json:"user_id"`
	MessageIDs []string `json:"message_ids"`
}

type TypingData struct {
	UserID string `json:"user_id"`
	Typing bool   `json:"is_typing"`
}

type PresenceData struct {
	UserID string `json:"user_id"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
