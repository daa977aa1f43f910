package interfaces

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/internal/models"
	"pasugo/internal/utils"
)

type ConversationRepository interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error)
	GetByRequest(ctx context.Context, requestID primitive.ObjectID) (*models.Conversation, error)
	GetByParticipants(ctx context.Context, customerID, riderID primitive.ObjectID) (*models.Conversation, error)

	// GetOpenSupport returns the customer's open support chat, or nil.
	GetOpenSupport(ctx context.Context, customerID primitive.ObjectID) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID, p utils.PaginationParams) ([]*models.Conversation, int64, error)
	Touch(ctx context.Context, id primitive.ObjectID, at time.Time) error

	// AssignAdmin seats adminID on a support chat that has none yet.
	AssignAdmin(ctx context.Context, id, adminID primitive.ObjectID) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.ConversationStatus) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error)

	// ListByConversation pages backwards through undeleted messages.
	// A nil cursor starts from the newest message; otherwise only
	// messages older than beforeID are returned. Results come back in
	// chronological order.
	ListByConversation(ctx context.Context, conversationID primitive.ObjectID, beforeID *primitive.ObjectID, limit int64) ([]*models.Message, error)

	// GetLast returns the newest undeleted message, or nil.
	GetLast(ctx context.Context, conversationID primitive.ObjectID) (*models.Message, error)

	// SoftDelete flags the message deleted at the given time. The row
	// stays but drops out of every read path.
	SoftDelete(ctx context.Context, messageID primitive.ObjectID, at time.Time) error

	// MarkRead writes receipts for unread messages in the conversation
	// not sent by userID. An empty messageIDs receipts all of them;
	// otherwise only the listed ids. Returns the ids it receipted.
	MarkRead(ctx context.Context, conversationID, userID primitive.ObjectID, messageIDs []primitive.ObjectID, at time.Time) ([]primitive.ObjectID, error)

	// UnreadCount counts undeleted messages in the conversation that
	// userID has neither sent nor receipted.
	UnreadCount(ctx context.Context, conversationID, userID primitive.ObjectID) (int64, error)

	ReadersOf(ctx context.Context, messageID primitive.ObjectID) ([]*models.MessageReceipt, error)
}

type PresenceRepository interface {
	RegisterConnection(ctx context.Context, conn *models.Connection) error

	// CloseConnections deactivates all active channels for the user in
	// the conversation.
	CloseConnections(ctx context.Context, conversationID, userID primitive.ObjectID, at time.Time) error

	ActiveUserIDs(ctx context.Context, conversationID primitive.ObjectID) ([]primitive.ObjectID, error)

	SetTyping(ctx context.Context, conversationID, userID primitive.ObjectID, typing bool, at time.Time) error
	TypingUserIDs(ctx context.Context, conversationID primitive.ObjectID) ([]primitive.ObjectID, error)
}
