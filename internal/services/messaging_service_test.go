package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/internal/apperrors"
	"pasugo/internal/models"
	"pasugo/internal/utils"
)

type messagingFixture struct {
	svc              *MessagingService
	conversationRepo *fakeConversationRepo
	messageRepo      *fakeMessageRepo
	presenceRepo     *fakePresenceRepo
	userRepo         *fakeUserRepo
	customer         primitive.ObjectID
	rider            primitive.ObjectID
	conv             *models.Conversation
}

func newMessagingFixture(t *testing.T) *messagingFixture {
	t.Helper()
	f := &messagingFixture{
		conversationRepo: newFakeConversationRepo(),
		messageRepo:      newFakeMessageRepo(),
		presenceRepo:     newFakePresenceRepo(),
		userRepo:         newFakeUserRepo(),
		customer:         primitive.NewObjectID(),
		rider:            primitive.NewObjectID(),
	}
	f.svc = NewMessagingService(f.conversationRepo, f.messageRepo, f.presenceRepo, f.userRepo, newFakeRiderRepo())

	conv := &models.Conversation{CustomerID: f.customer, RiderID: f.rider}
	require.NoError(t, f.conversationRepo.Create(context.Background(), conv))
	f.conv = conv
	return f
}

func TestUserHasAccess(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	for _, userID := range []primitive.ObjectID{f.customer, f.rider} {
		ok, err := f.svc.UserHasAccess(ctx, f.conv.ID, userID)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := f.svc.UserHasAccess(ctx, f.conv.ID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.svc.CloseConversation(ctx, f.conv.ID))
	ok, err = f.svc.UserHasAccess(ctx, f.conv.ID, f.customer)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateMessageValidation(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	msg, err := f.svc.CreateMessage(ctx, f.conv.ID, f.customer, "  hello there  ", models.MessageTypeText, "")
	require.NoError(t, err)
	assert.Equal(t, "hello there", msg.Content)

	_, err = f.svc.CreateMessage(ctx, f.conv.ID, f.customer, "   ", models.MessageTypeText, "")
	require.Error(t, err)

	_, err = f.svc.CreateMessage(ctx, f.conv.ID, f.customer, strings.Repeat("a", utils.MaxMessageLength+1), models.MessageTypeText, "")
	require.Error(t, err)

	_, err = f.svc.CreateMessage(ctx, f.conv.ID, primitive.NewObjectID(), "hi", models.MessageTypeText, "")
	require.Error(t, err)
	appErr, _ := apperrors.As(err)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestCreateMessageRejectedWhenClosed(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.CloseConversation(ctx, f.conv.ID))
	_, err := f.svc.CreateMessage(ctx, f.conv.ID, f.customer, "hello", models.MessageTypeText, "")
	require.Error(t, err)
	appErr, _ := apperrors.As(err)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestUnreadCountsAndReceipts(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.CreateMessage(ctx, f.conv.ID, f.rider, "update", models.MessageTypeText, "")
		require.NoError(t, err)
	}
	_, err := f.svc.CreateMessage(ctx, f.conv.ID, f.customer, "thanks", models.MessageTypeText, "")
	require.NoError(t, err)

	// Own messages never count as unread.
	count, err := f.messageRepo.UnreadCount(ctx, f.conv.ID, f.customer)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	count, err = f.messageRepo.UnreadCount(ctx, f.conv.ID, f.rider)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	marked, err := f.svc.MarkMessagesRead(ctx, f.conv.ID, f.customer, nil)
	require.NoError(t, err)
	assert.Len(t, marked, 3)

	count, err = f.messageRepo.UnreadCount(ctx, f.conv.ID, f.customer)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Marking again receipts nothing new.
	marked, err = f.svc.MarkMessagesRead(ctx, f.conv.ID, f.customer, nil)
	require.NoError(t, err)
	assert.Empty(t, marked)
}

func TestListConversationsIncludesSummaries(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateMessage(ctx, f.conv.ID, f.rider, "on my way", models.MessageTypeText, "")
	require.NoError(t, err)
	last, err := f.svc.CreateMessage(ctx, f.conv.ID, f.rider, "arrived", models.MessageTypeText, "")
	require.NoError(t, err)

	summaries, total, err := f.svc.ListConversations(ctx, f.customer, utils.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, summaries, 1)

	assert.Equal(t, f.conv.ID, summaries[0].Conversation.ID)
	require.NotNil(t, summaries[0].LastMessage)
	assert.Equal(t, last.ID, summaries[0].LastMessage.ID)
	assert.Equal(t, int64(2), summaries[0].UnreadCount)
}

func TestDisconnectClearsTyping(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RegisterConnection(ctx, f.conv.ID, f.rider))
	require.NoError(t, f.svc.SetTyping(ctx, f.conv.ID, f.rider, true))

	online, err := f.svc.OnlineParticipants(ctx, f.conv.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{f.rider}, online)
	typing, err := f.svc.TypingParticipants(ctx, f.conv.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{f.rider}, typing)

	// A dropped channel closes presence and clears the typing flag.
	require.NoError(t, f.svc.DeregisterConnection(ctx, f.conv.ID, f.rider))

	online, err = f.svc.OnlineParticipants(ctx, f.conv.ID)
	require.NoError(t, err)
	assert.Empty(t, online)
	typing, err = f.svc.TypingParticipants(ctx, f.conv.ID)
	require.NoError(t, err)
	assert.Empty(t, typing)
}

func TestGetOrCreateConversationIsIdempotent(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	requestID := primitive.NewObjectID()
	first, err := f.svc.GetOrCreateConversation(ctx, f.customer, f.rider, &requestID)
	require.NoError(t, err)
	second, err := f.svc.GetOrCreateConversation(ctx, f.customer, f.rider, &requestID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestDeleteOwnMessage(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	kept, err := f.svc.CreateMessage(ctx, f.conv.ID, f.rider, "keep this", models.MessageTypeText, "")
	require.NoError(t, err)
	gone, err := f.svc.CreateMessage(ctx, f.conv.ID, f.rider, "fat fingered", models.MessageTypeText, "")
	require.NoError(t, err)

	// Only the sender may delete.
	err = f.svc.DeleteMessage(ctx, gone.ID, f.customer)
	require.Error(t, err)
	appErr, _ := apperrors.As(err)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)

	require.NoError(t, f.svc.DeleteMessage(ctx, gone.ID, f.rider))

	// The deleted message drops out of history and unread counts.
	messages, err := f.svc.ListMessages(ctx, f.conv.ID, f.customer, nil, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, kept.ID, messages[0].ID)

	count, err := f.svc.UnreadCount(ctx, f.conv.ID, f.customer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Deleting twice reads as gone.
	err = f.svc.DeleteMessage(ctx, gone.ID, f.rider)
	require.Error(t, err)
	appErr, _ = apperrors.As(err)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestMarkReadAcceptsMessageIDList(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateMessage(ctx, f.conv.ID, f.rider, "one", models.MessageTypeText, "")
	require.NoError(t, err)
	_, err = f.svc.CreateMessage(ctx, f.conv.ID, f.rider, "two", models.MessageTypeText, "")
	require.NoError(t, err)
	_, err = f.svc.CreateMessage(ctx, f.conv.ID, f.rider, "three", models.MessageTypeText, "")
	require.NoError(t, err)

	marked, err := f.svc.MarkMessagesRead(ctx, f.conv.ID, f.customer, []primitive.ObjectID{first.ID})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{first.ID}, marked)

	count, err := f.svc.UnreadCount(ctx, f.conv.ID, f.customer)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestMessageHistoryPagesByCursor(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	var sent []*models.Message
	for _, text := range []string{"one", "two", "three", "four", "five"} {
		msg, err := f.svc.CreateMessage(ctx, f.conv.ID, f.rider, text, models.MessageTypeText, "")
		require.NoError(t, err)
		sent = append(sent, msg)
	}

	// The newest page first, in chronological order.
	page, err := f.svc.ListMessages(ctx, f.conv.ID, f.customer, nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, sent[3].ID, page[0].ID)
	assert.Equal(t, sent[4].ID, page[1].ID)

	// Paging backwards from the oldest message of the previous page.
	page, err = f.svc.ListMessages(ctx, f.conv.ID, f.customer, &page[0].ID, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, sent[1].ID, page[0].ID)
	assert.Equal(t, sent[2].ID, page[1].ID)
}

func TestSupportConversationLifecycle(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	first, err := f.svc.GetOrCreateSupportConversation(ctx, f.customer)
	require.NoError(t, err)
	assert.Equal(t, models.ConversationSupportChat, first.Kind)
	assert.True(t, first.RiderID.IsZero())

	// Reopening returns the same chat while it stays open.
	second, err := f.svc.GetOrCreateSupportConversation(ctx, f.customer)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// Customers can write before any admin joins.
	_, err = f.svc.CreateMessage(ctx, first.ID, f.customer, "my rider vanished", models.MessageTypeText, "")
	require.NoError(t, err)

	// A non-admin outsider is turned away.
	_, err = f.svc.CreateMessage(ctx, first.ID, f.rider, "hello", models.MessageTypeText, "")
	require.Error(t, err)

	// The first admin to reply takes the admin seat.
	admin := &models.User{Role: models.RoleAdmin}
	require.NoError(t, f.userRepo.Create(ctx, admin))
	_, err = f.svc.CreateMessage(ctx, first.ID, admin.ID, "on it", models.MessageTypeText, "")
	require.NoError(t, err)

	conv, err := f.conversationRepo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, conv.AdminID)
	assert.Equal(t, admin.ID, *conv.AdminID)

	// Closing it lets the customer open a fresh one.
	require.NoError(t, f.svc.CloseConversation(ctx, first.ID))
	third, err := f.svc.GetOrCreateSupportConversation(ctx, f.customer)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestCreateMessageWithAttachmentOnly(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	msg, err := f.svc.CreateMessage(ctx, f.conv.ID, f.customer, "", models.MessageTypeImage, "https://cdn.example.com/receipt.jpg")
	require.NoError(t, err)
	assert.Empty(t, msg.Content)
	assert.Equal(t, "https://cdn.example.com/receipt.jpg", msg.AttachmentURL)
}

func TestCreateMessageTouchesConversation(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	before, err := f.conversationRepo.GetByID(ctx, f.conv.ID)
	require.NoError(t, err)

	f.svc.now = func() time.Time { return before.UpdatedAt.Add(time.Minute) }
	_, err = f.svc.CreateMessage(ctx, f.conv.ID, f.customer, "ping", models.MessageTypeText, "")
	require.NoError(t, err)

	after, err := f.conversationRepo.GetByID(ctx, f.conv.ID)
	require.NoError(t, err)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}
