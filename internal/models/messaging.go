package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConversationStatus string

const (
	ConversationOpen   ConversationStatus = "open"
	ConversationClosed ConversationStatus = "closed"
)

type ConversationKind string

const (
	ConversationRequestChat ConversationKind = "request_chat"
	ConversationSupportChat ConversationKind = "support_chat"
)

// Conversation pairs a customer with a rider around a request, or with
// an admin for a support chat. RiderID is zero on support chats.
type Conversation struct {
	ID         primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Kind       ConversationKind    `json:"kind" bson:"kind"`
	RequestID  *primitive.ObjectID `json:"request_id,omitempty" bson:"request_id,omitempty"`
	CustomerID primitive.ObjectID  `json:"customer_id" bson:"customer_id"`
	RiderID    primitive.ObjectID  `json:"rider_id,omitempty" bson:"rider_id,omitempty"`
	AdminID    *primitive.ObjectID `json:"admin_id,omitempty" bson:"admin_id,omitempty"`
	Status     ConversationStatus  `json:"status" bson:"status"`
	CreatedAt  time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at" bson:"updated_at"`
}

// Participants returns current member ids.
func (c *Conversation) Participants() []primitive.ObjectID {
	members := []primitive.ObjectID{c.CustomerID}
	if !c.RiderID.IsZero() {
		members = append(members, c.RiderID)
	}
	if c.AdminID != nil {
		members = append(members, *c.AdminID)
	}
	return members
}

// HasParticipant reports whether userID is a member.
func (c *Conversation) HasParticipant(userID primitive.ObjectID) bool {
	for _, member := range c.Participants() {
		if member == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the first member that is not userID.
func (c *Conversation) OtherParticipant(userID primitive.ObjectID) primitive.ObjectID {
	for _, member := range c.Participants() {
		if member != userID {
			return member
		}
	}
	return primitive.NilObjectID
}

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeImage  MessageType = "image"
	MessageTypeSystem MessageType = "system"
)

type Message struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ConversationID primitive.ObjectID `json:"conversation_id" bson:"conversation_id"`
	SenderID       primitive.ObjectID `json:"sender_id" bson:"sender_id"`
	Type           MessageType        `json:"type" bson:"type"`
	Content        string             `json:"content" bson:"content"`
	AttachmentURL  string             `json:"attachment_url,omitempty" bson:"attachment_url,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`

	// Deleted messages keep their row but drop out of history, unread
	// counts, and conversation previews.
	Deleted   bool       `json:"is_deleted,omitempty" bson:"is_deleted,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
}

// MessageReceipt marks a message as read by a user. One row per
// (message, user) pair.
type MessageReceipt struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	MessageID primitive.ObjectID `json:"message_id" bson:"message_id"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	ReadAt    time.Time          `json:"read_at" bson:"read_at"`
}

// Connection records an active realtime channel for presence queries.
type Connection struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID         primitive.ObjectID `json:"user_id" bson:"user_id"`
	ConversationID primitive.ObjectID `json:"conversation_id" bson:"conversation_id"`
	Active         bool               `json:"active" bson:"active"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	ClosedAt       *time.Time         `json:"closed_at,omitempty" bson:"closed_at,omitempty"`
}

// TypingStatus is the per-user typing flag inside a conversation.
type TypingStatus struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ConversationID primitive.ObjectID `json:"conversation_id" bson:"conversation_id"`
	UserID         primitive.ObjectID `json:"user_id" bson:"user_id"`
	Typing         bool               `json:"typing" bson:"typing"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// ConversationSummary is a conversation with list-view extras.
type ConversationSummary struct {
	Conversation Conversation `json:"conversation"`
	LastMessage  *Message     `json:"last_message,omitempty"`
	UnreadCount  int64        `json:"unread_count"`
}
