package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/internal/apperrors"
	"pasugo/internal/models"
	"pasugo/internal/repositories/interfaces"
	"pasugo/internal/utils"
	"pasugo/pkg/logger"
)

// MessagingService backs both the REST conversation endpoints and the
// realtime channel. It is the single writer for messages, receipts,
// typing flags, and connection records.
type MessagingService struct {
	conversationRepo interfaces.ConversationRepository
	messageRepo      interfaces.MessageRepository
	presenceRepo     interfaces.PresenceRepository
	userRepo         interfaces.UserRepository
	riderRepo        interfaces.RiderRepository
	logger           *logger.Logger
	now              func() time.Time
}

func NewMessagingService(
	conversationRepo interfaces.ConversationRepository,
	messageRepo interfaces.MessageRepository,
	presenceRepo interfaces.PresenceRepository,
	userRepo interfaces.UserRepository,
	riderRepo interfaces.RiderRepository,
) *MessagingService {
	return &MessagingService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		presenceRepo:     presenceRepo,
		userRepo:         userRepo,
		riderRepo:        riderRepo,
		logger:           logger.GetLogger(),
		now:              time.Now,
	}
}

// UserHasAccess reports whether userID may join the conversation.
// Access is checked once at connect time; conversations stay readable
// after the underlying request finishes until an admin closes them.
func (s *MessagingService) UserHasAccess(ctx context.Context, conversationID, userID primitive.ObjectID) (bool, error) {
	conv, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return false, err
	}
	if conv.Status == models.ConversationClosed {
		return false, nil
	}
	return conv.HasParticipant(userID), nil
}

// CreateMessage persists a message and bumps the conversation's
// recency. Persistence happens before any broadcast. A message needs
// text, an attachment, or both.
func (s *MessagingService) CreateMessage(ctx context.Context, conversationID, senderID primitive.ObjectID, content string, msgType models.MessageType, attachmentURL string) (*models.Message, error) {
	if len(content) > utils.MaxMessageLength {
		return nil, apperrors.Validation("message is too long")
	}
	content, ok := utils.SanitizeMessage(content)
	if !ok && attachmentURL == "" {
		return nil, apperrors.Validation("message is empty")
	}

	conv, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.Status == models.ConversationClosed {
		return nil, apperrors.Conflict("conversation is closed")
	}
	if !conv.HasParticipant(senderID) {
		// The first admin to reply in a support chat takes its admin
		// seat. Everyone else is turned away.
		if conv.Kind != models.ConversationSupportChat || conv.AdminID != nil || !s.isAdminUser(ctx, senderID) {
			return nil, apperrors.Forbidden("not a participant of this conversation")
		}
		if err := s.conversationRepo.AssignAdmin(ctx, conv.ID, senderID); err != nil {
			return nil, err
		}
		conv.AdminID = &senderID
	}

	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Type:           msgType,
		Content:        content,
		AttachmentURL:  attachmentURL,
		CreatedAt:      s.now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.conversationRepo.Touch(ctx, conversationID, msg.CreatedAt); err != nil {
		s.logger.WithError(err).Warn("failed to touch conversation")
	}
	return msg, nil
}

// DeleteMessage soft-deletes one of the sender's own messages. The row
// survives for audit but drops out of history and unread counts.
func (s *MessagingService) DeleteMessage(ctx context.Context, messageID, userID primitive.ObjectID) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != userID {
		return apperrors.Forbidden("only the sender can delete a message")
	}
	if msg.Deleted {
		return apperrors.NotFound("message not found")
	}
	return s.messageRepo.SoftDelete(ctx, messageID, s.now())
}

// MarkMessagesRead receipts unread messages for the user and returns
// the receipted ids. An empty messageIDs receipts everything unread;
// otherwise only the listed messages.
func (s *MessagingService) MarkMessagesRead(ctx context.Context, conversationID, userID primitive.ObjectID, messageIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.messageRepo.MarkRead(ctx, conversationID, userID, messageIDs, s.now())
}

// UnreadCount reports how many messages the user has not read in the
// conversation.
func (s *MessagingService) UnreadCount(ctx context.Context, conversationID, userID primitive.ObjectID) (int64, error) {
	conv, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if !conv.HasParticipant(userID) {
		return 0, apperrors.Forbidden("not a participant of this conversation")
	}
	return s.messageRepo.UnreadCount(ctx, conversationID, userID)
}

func (s *MessagingService) SetTyping(ctx context.Context, conversationID, userID primitive.ObjectID, typing bool) error {
	return s.presenceRepo.SetTyping(ctx, conversationID, userID, typing, s.now())
}

func (s *MessagingService) RegisterConnection(ctx context.Context, conversationID, userID primitive.ObjectID) error {
	return s.presenceRepo.RegisterConnection(ctx, &models.Connection{
		UserID:         userID,
		ConversationID: conversationID,
		CreatedAt:      s.now(),
	})
}

// DeregisterConnection closes the user's channel records and clears
// their typing flag so a dropped socket never leaves a stuck indicator.
func (s *MessagingService) DeregisterConnection(ctx context.Context, conversationID, userID primitive.ObjectID) error {
	now := s.now()
	if err := s.presenceRepo.CloseConnections(ctx, conversationID, userID, now); err != nil {
		return err
	}
	return s.presenceRepo.SetTyping(ctx, conversationID, userID, false, now)
}

// GetOrCreateConversation returns the conversation between a customer
// and a rider, creating it if absent.
func (s *MessagingService) GetOrCreateConversation(ctx context.Context, customerID, riderUserID primitive.ObjectID, requestID *primitive.ObjectID) (*models.Conversation, error) {
	if requestID != nil {
		if conv, err := s.conversationRepo.GetByRequest(ctx, *requestID); err == nil {
			return conv, nil
		}
	}
	if conv, err := s.conversationRepo.GetByParticipants(ctx, customerID, riderUserID); err == nil {
		return conv, nil
	}

	conv := &models.Conversation{
		Kind:       models.ConversationRequestChat,
		RequestID:  requestID,
		CustomerID: customerID,
		RiderID:    riderUserID,
	}
	if err := s.conversationRepo.Create(ctx, conv); err != nil {
		if appErr, ok := apperrors.As(err); ok && appErr.Code == apperrors.CodeConflict && requestID != nil {
			return s.conversationRepo.GetByRequest(ctx, *requestID)
		}
		return nil, err
	}
	return conv, nil
}

// GetOrCreateSupportConversation opens a support chat between the
// customer and the admin team. A customer has at most one open support
// chat; an admin joins it on first reply.
func (s *MessagingService) GetOrCreateSupportConversation(ctx context.Context, customerID primitive.ObjectID) (*models.Conversation, error) {
	existing, err := s.conversationRepo.GetOpenSupport(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	conv := &models.Conversation{
		Kind:       models.ConversationSupportChat,
		CustomerID: customerID,
	}
	if err := s.conversationRepo.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *MessagingService) GetConversation(ctx context.Context, conversationID, userID primitive.ObjectID, isAdmin bool) (*models.Conversation, error) {
	conv, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !conv.HasParticipant(userID) {
		return nil, apperrors.Forbidden("not a participant of this conversation")
	}
	return conv, nil
}

// ListConversations returns the user's conversations, newest activity
// first, each with its last message and unread count.
func (s *MessagingService) ListConversations(ctx context.Context, userID primitive.ObjectID, p utils.PaginationParams) ([]*models.ConversationSummary, int64, error) {
	conversations, total, err := s.conversationRepo.ListForUser(ctx, userID, p)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]*models.ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		last, err := s.messageRepo.GetLast(ctx, conv.ID)
		if err != nil {
			return nil, 0, err
		}
		unread, err := s.messageRepo.UnreadCount(ctx, conv.ID, userID)
		if err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, &models.ConversationSummary{
			Conversation: *conv,
			LastMessage:  last,
			UnreadCount:  unread,
		})
	}
	return summaries, total, nil
}

// ListMessages pages backwards through history by message id. A nil
// beforeID starts from the newest message; the page comes back in
// chronological order.
func (s *MessagingService) ListMessages(ctx context.Context, conversationID, userID primitive.ObjectID, beforeID *primitive.ObjectID, limit int64) ([]*models.Message, error) {
	conv, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, apperrors.Forbidden("not a participant of this conversation")
	}
	if limit <= 0 || limit > utils.MaxPageSize {
		limit = utils.DefaultPageSize
	}
	return s.messageRepo.ListByConversation(ctx, conversationID, beforeID, limit)
}

func (s *MessagingService) isAdminUser(ctx context.Context, userID primitive.ObjectID) bool {
	user, err := s.userRepo.GetByID(ctx, userID)
	return err == nil && user.Role == models.RoleAdmin
}

// CloseConversation is the admin operation that ends a conversation.
func (s *MessagingService) CloseConversation(ctx context.Context, conversationID primitive.ObjectID) error {
	return s.conversationRepo.SetStatus(ctx, conversationID, models.ConversationClosed)
}

// OnlineParticipants returns the user ids with an active channel in the
// conversation.
func (s *MessagingService) OnlineParticipants(ctx context.Context, conversationID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.presenceRepo.ActiveUserIDs(ctx, conversationID)
}

// TypingParticipants returns the user ids currently typing.
func (s *MessagingService) TypingParticipants(ctx context.Context, conversationID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.presenceRepo.TypingUserIDs(ctx, conversationID)
}
