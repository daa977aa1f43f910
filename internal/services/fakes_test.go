package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/internal/apperrors"
	"pasugo/internal/models"
	"pasugo/internal/repositories/interfaces"
	"pasugo/internal/utils"
)

// In-memory repository fakes. They mirror the datastore semantics the
// services depend on, including the atomic claim and the receipt
// anti-join, without a running database.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			copied := *user
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (f *fakeUserRepo) Update(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return apperrors.NotFound("user not found")
	}
	if role, ok := update["role"]; ok {
		user.Role = role.(models.UserRole)
	}
	return nil
}

type fakeRiderRepo struct {
	mu     sync.Mutex
	riders map[primitive.ObjectID]*models.Rider
}

func newFakeRiderRepo() *fakeRiderRepo {
	return &fakeRiderRepo{riders: make(map[primitive.ObjectID]*models.Rider)}
}

func (f *fakeRiderRepo) Create(ctx context.Context, rider *models.Rider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.riders {
		if existing.UserID == rider.UserID {
			return apperrors.Conflict("rider profile already exists")
		}
	}
	if rider.ID.IsZero() {
		rider.ID = primitive.NewObjectID()
	}
	if rider.Status == "" {
		rider.Status = models.RiderStatusOffline
	}
	f.riders[rider.ID] = rider
	return nil
}

func (f *fakeRiderRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rider, ok := f.riders[id]
	if !ok {
		return nil, apperrors.NotFound("rider not found")
	}
	copied := *rider
	return &copied, nil
}

func (f *fakeRiderRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Rider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rider := range f.riders {
		if rider.UserID == userID {
			copied := *rider
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("rider not found")
}

func (f *fakeRiderRepo) GetByStatuses(ctx context.Context, statuses []models.RiderStatus) ([]*models.Rider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[models.RiderStatus]bool)
	for _, s := range statuses {
		want[s] = true
	}
	var out []*models.Rider
	for _, rider := range f.riders {
		if want[rider.Status] {
			copied := *rider
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRiderRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.RiderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rider, ok := f.riders[id]
	if !ok {
		return apperrors.NotFound("rider not found")
	}
	rider.Status = status
	return nil
}

func (f *fakeRiderRepo) Update(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) error {
	return nil
}

func (f *fakeRiderRepo) IncrementCompleted(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rider, ok := f.riders[id]; ok {
		rider.CompletedCount++
	}
	return nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]*models.Request
	now      func() time.Time
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{
		requests: make(map[primitive.ObjectID]*models.Request),
		now:      time.Now,
	}
}

func (f *fakeRequestRepo) Create(ctx context.Context, request *models.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if request.ID.IsZero() {
		request.ID = primitive.NewObjectID()
	}
	request.CreatedAt = f.now()
	request.UpdatedAt = request.CreatedAt
	f.requests[request.ID] = request
	return nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[id]
	if !ok {
		return nil, apperrors.NotFound("request not found")
	}
	copied := *request
	return &copied, nil
}

func (f *fakeRequestRepo) Update(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[id]
	if !ok {
		return apperrors.NotFound("request not found")
	}
	applyRequestUpdate(request, update)
	request.UpdatedAt = f.now()
	return nil
}

func applyRequestUpdate(request *models.Request, update map[string]interface{}) {
	for key, value := range update {
		switch key {
		case "status":
			request.Status = value.(models.RequestStatus)
		case "payment_status":
			request.PaymentStatus = value.(models.PaymentStatus)
		case "selected_rider_id":
			if value == nil {
				request.SelectedRiderID = nil
			} else {
				id := value.(primitive.ObjectID)
				request.SelectedRiderID = &id
			}
		case "offered_at":
			if value == nil {
				request.OfferedAt = nil
			} else {
				at := value.(time.Time)
				request.OfferedAt = &at
			}
		case "item_cost":
			v := value.(float64)
			request.ItemCost = &v
		case "service_fee":
			v := value.(float64)
			request.ServiceFee = &v
		case "total_amount":
			v := value.(float64)
			request.TotalAmount = &v
		case "payment_reference":
			request.PaymentReference = value.(string)
		case "payment_proof_url":
			request.PaymentProofURL = value.(string)
		case "collection_proof_url":
			request.CollectionProofURL = value.(string)
		case "completed_at":
			at := value.(time.Time)
			request.CompletedAt = &at
		case "timed_out":
			if value == nil {
				request.TimedOut = false
			} else {
				request.TimedOut = value.(bool)
			}
		}
	}
}

func (f *fakeRequestRepo) GetByCustomer(ctx context.Context, customerID primitive.ObjectID, filter interfaces.RequestFilter, p utils.PaginationParams) ([]*models.Request, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Request
	for _, request := range f.requests {
		if request.CustomerID != customerID {
			continue
		}
		if filter.Category != "" && request.ServiceCategory != filter.Category {
			continue
		}
		if filter.Status != "" && request.Status != filter.Status {
			continue
		}
		copied := *request
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRequestRepo) GetByRider(ctx context.Context, riderID primitive.ObjectID, p utils.PaginationParams) ([]*models.Request, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Request
	for _, request := range f.requests {
		if request.RiderID != nil && *request.RiderID == riderID {
			copied := *request
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRequestRepo) GetOpenPool(ctx context.Context, p utils.PaginationParams) ([]*models.Request, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Request
	for _, request := range f.requests {
		if request.Status != models.RequestStatusPending {
			continue
		}
		if request.SelectedRiderID != nil && request.OfferedAt != nil &&
			f.now().Sub(*request.OfferedAt) < utils.OfferTimeout {
			continue
		}
		copied := *request
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, int64(len(out)), nil
}

func (f *fakeRequestRepo) ClaimPending(ctx context.Context, id, riderID primitive.ObjectID, update map[string]interface{}) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[id]
	if !ok {
		return nil, apperrors.NotFound("request not found")
	}
	if request.Status != models.RequestStatusPending || request.RiderID != nil {
		return nil, nil
	}
	request.RiderID = &riderID
	request.Status = models.RequestStatusAssigned
	request.SelectedRiderID = nil
	request.OfferedAt = nil
	request.TimedOut = false
	applyRequestUpdate(request, update)
	request.UpdatedAt = f.now()
	copied := *request
	return &copied, nil
}

func (f *fakeRequestRepo) ClearOffer(ctx context.Context, id, selectedRiderID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[id]
	if !ok {
		return apperrors.NotFound("request not found")
	}
	if request.SelectedRiderID != nil && *request.SelectedRiderID == selectedRiderID {
		request.SelectedRiderID = nil
		request.OfferedAt = nil
	}
	return nil
}

func (f *fakeRequestRepo) ExpireOffer(ctx context.Context, id, selectedRiderID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[id]
	if !ok {
		return apperrors.NotFound("request not found")
	}
	if request.SelectedRiderID != nil && *request.SelectedRiderID == selectedRiderID {
		request.SelectedRiderID = nil
		request.OfferedAt = nil
		request.TimedOut = true
	}
	return nil
}

func (f *fakeRequestRepo) CountByStatus(ctx context.Context) (map[models.RequestStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[models.RequestStatus]int64)
	for _, request := range f.requests {
		counts[request.Status]++
	}
	return counts, nil
}

type fakeLocationRepo struct {
	mu        sync.Mutex
	locations []*models.Location
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{}
}

func (f *fakeLocationRepo) Upsert(ctx context.Context, loc *models.Location, cutoff time.Time) (*models.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var latest *models.Location
	for _, existing := range f.locations {
		if existing.UserID != loc.UserID {
			continue
		}
		if latest == nil || existing.Timestamp.After(latest.Timestamp) {
			latest = existing
		}
	}
	if latest != nil && !latest.Timestamp.Before(cutoff) {
		latest.Location = loc.Location
		latest.Timestamp = loc.Timestamp
		copied := *latest
		return &copied, nil
	}

	loc.ID = primitive.NewObjectID()
	loc.CreatedAt = loc.Timestamp
	f.locations = append(f.locations, loc)
	copied := *loc
	return &copied, nil
}

func (f *fakeLocationRepo) GetLatest(ctx context.Context, userID primitive.ObjectID) (*models.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.Location
	for _, existing := range f.locations {
		if existing.UserID != userID {
			continue
		}
		if latest == nil || existing.Timestamp.After(latest.Timestamp) {
			latest = existing
		}
	}
	if latest == nil {
		return nil, apperrors.NotFound("no location recorded")
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeLocationRepo) GetLatestSince(ctx context.Context, userIDs []primitive.ObjectID, since time.Time) (map[primitive.ObjectID]*models.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[primitive.ObjectID]bool)
	for _, id := range userIDs {
		want[id] = true
	}
	out := make(map[primitive.ObjectID]*models.Location)
	for _, existing := range f.locations {
		if !want[existing.UserID] || existing.Timestamp.Before(since) {
			continue
		}
		current, ok := out[existing.UserID]
		if !ok || existing.Timestamp.After(current.Timestamp) {
			copied := *existing
			out[existing.UserID] = &copied
		}
	}
	return out, nil
}

func (f *fakeLocationRepo) History(ctx context.Context, userID primitive.ObjectID, from, to time.Time, limit int64) ([]*models.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Location
	for _, existing := range f.locations {
		if existing.UserID != userID {
			continue
		}
		if existing.Timestamp.Before(from) || existing.Timestamp.After(to) {
			continue
		}
		copied := *existing
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLocationRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []*models.Location
	var deleted int64
	for _, existing := range f.locations {
		if existing.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, existing)
	}
	f.locations = kept
	return deleted, nil
}

type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[primitive.ObjectID]*models.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[primitive.ObjectID]*models.Conversation)}
}

func (f *fakeConversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if conv.RequestID != nil {
		for _, existing := range f.conversations {
			if existing.RequestID != nil && *existing.RequestID == *conv.RequestID {
				return apperrors.Conflict("conversation already exists for this request")
			}
		}
	}
	if conv.ID.IsZero() {
		conv.ID = primitive.NewObjectID()
	}
	if conv.Status == "" {
		conv.Status = models.ConversationOpen
	}
	if conv.Kind == "" {
		conv.Kind = models.ConversationRequestChat
	}
	now := time.Now()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	f.conversations[conv.ID] = conv
	return nil
}

func (f *fakeConversationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[id]
	if !ok {
		return nil, apperrors.NotFound("conversation not found")
	}
	copied := *conv
	return &copied, nil
}

func (f *fakeConversationRepo) GetByRequest(ctx context.Context, requestID primitive.ObjectID) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conv := range f.conversations {
		if conv.RequestID != nil && *conv.RequestID == requestID {
			copied := *conv
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("conversation not found")
}

func (f *fakeConversationRepo) GetByParticipants(ctx context.Context, customerID, riderID primitive.ObjectID) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conv := range f.conversations {
		if conv.CustomerID == customerID && conv.RiderID == riderID {
			copied := *conv
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("conversation not found")
}

func (f *fakeConversationRepo) GetOpenSupport(ctx context.Context, customerID primitive.ObjectID) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conv := range f.conversations {
		if conv.Kind == models.ConversationSupportChat && conv.CustomerID == customerID && conv.Status == models.ConversationOpen {
			copied := *conv
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeConversationRepo) AssignAdmin(ctx context.Context, id, adminID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[id]
	if !ok {
		return apperrors.NotFound("conversation not found")
	}
	if conv.AdminID != nil {
		return apperrors.Conflict("conversation already has an admin")
	}
	conv.AdminID = &adminID
	return nil
}

func (f *fakeConversationRepo) ListForUser(ctx context.Context, userID primitive.ObjectID, p utils.PaginationParams) ([]*models.Conversation, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Conversation
	for _, conv := range f.conversations {
		if conv.HasParticipant(userID) {
			copied := *conv
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, int64(len(out)), nil
}

func (f *fakeConversationRepo) Touch(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if conv, ok := f.conversations[id]; ok {
		conv.UpdatedAt = at
	}
	return nil
}

func (f *fakeConversationRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status models.ConversationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[id]
	if !ok {
		return apperrors.NotFound("conversation not found")
	}
	conv.Status = status
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*models.Message
	receipts map[primitive.ObjectID]map[primitive.ObjectID]time.Time
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		receipts: make(map[primitive.ObjectID]map[primitive.ObjectID]time.Time),
	}
}

func (f *fakeMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeMessageRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, msg := range f.messages {
		if msg.ID == id {
			copied := *msg
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("message not found")
}

func (f *fakeMessageRepo) ListByConversation(ctx context.Context, conversationID primitive.ObjectID, beforeID *primitive.ObjectID, limit int64) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Messages are appended in creation order, so insertion order is
	// chronological and ids are monotonic.
	var out []*models.Message
	for _, msg := range f.messages {
		if msg.ConversationID != conversationID || msg.Deleted {
			continue
		}
		if beforeID != nil && msg.ID == *beforeID {
			break
		}
		copied := *msg
		out = append(out, &copied)
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[int64(len(out))-limit:]
	}
	return out, nil
}

func (f *fakeMessageRepo) GetLast(ctx context.Context, conversationID primitive.ObjectID) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var last *models.Message
	for _, msg := range f.messages {
		if msg.ConversationID != conversationID || msg.Deleted {
			continue
		}
		if last == nil || msg.CreatedAt.After(last.CreatedAt) {
			last = msg
		}
	}
	if last == nil {
		return nil, nil
	}
	copied := *last
	return &copied, nil
}

func (f *fakeMessageRepo) SoftDelete(ctx context.Context, messageID primitive.ObjectID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, msg := range f.messages {
		if msg.ID == messageID && !msg.Deleted {
			msg.Deleted = true
			deletedAt := at
			msg.DeletedAt = &deletedAt
			return nil
		}
	}
	return apperrors.NotFound("message not found")
}

func (f *fakeMessageRepo) MarkRead(ctx context.Context, conversationID, userID primitive.ObjectID, messageIDs []primitive.ObjectID, at time.Time) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	requested := make(map[primitive.ObjectID]bool, len(messageIDs))
	for _, id := range messageIDs {
		requested[id] = true
	}
	var marked []primitive.ObjectID
	for _, msg := range f.messages {
		if msg.ConversationID != conversationID || msg.SenderID == userID || msg.Deleted {
			continue
		}
		if len(requested) > 0 && !requested[msg.ID] {
			continue
		}
		if _, read := f.receipts[msg.ID][userID]; read {
			continue
		}
		if f.receipts[msg.ID] == nil {
			f.receipts[msg.ID] = make(map[primitive.ObjectID]time.Time)
		}
		f.receipts[msg.ID][userID] = at
		marked = append(marked, msg.ID)
	}
	return marked, nil
}

func (f *fakeMessageRepo) UnreadCount(ctx context.Context, conversationID, userID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, msg := range f.messages {
		if msg.ConversationID != conversationID || msg.SenderID == userID || msg.Deleted {
			continue
		}
		if _, read := f.receipts[msg.ID][userID]; !read {
			count++
		}
	}
	return count, nil
}

func (f *fakeMessageRepo) ReadersOf(ctx context.Context, messageID primitive.ObjectID) ([]*models.MessageReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.MessageReceipt
	for userID, at := range f.receipts[messageID] {
		out = append(out, &models.MessageReceipt{
			MessageID: messageID,
			UserID:    userID,
			ReadAt:    at,
		})
	}
	return out, nil
}

type fakePresenceRepo struct {
	mu          sync.Mutex
	connections []*models.Connection
	typing      map[primitive.ObjectID]map[primitive.ObjectID]bool
}

func newFakePresenceRepo() *fakePresenceRepo {
	return &fakePresenceRepo{
		typing: make(map[primitive.ObjectID]map[primitive.ObjectID]bool),
	}
}

func (f *fakePresenceRepo) RegisterConnection(ctx context.Context, conn *models.Connection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if conn.ID.IsZero() {
		conn.ID = primitive.NewObjectID()
	}
	conn.Active = true
	f.connections = append(f.connections, conn)
	return nil
}

func (f *fakePresenceRepo) CloseConnections(ctx context.Context, conversationID, userID primitive.ObjectID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conn := range f.connections {
		if conn.ConversationID == conversationID && conn.UserID == userID && conn.Active {
			conn.Active = false
			closedAt := at
			conn.ClosedAt = &closedAt
		}
	}
	return nil
}

func (f *fakePresenceRepo) ActiveUserIDs(ctx context.Context, conversationID primitive.ObjectID) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[primitive.ObjectID]bool)
	var out []primitive.ObjectID
	for _, conn := range f.connections {
		if conn.ConversationID == conversationID && conn.Active && !seen[conn.UserID] {
			seen[conn.UserID] = true
			out = append(out, conn.UserID)
		}
	}
	return out, nil
}

func (f *fakePresenceRepo) SetTyping(ctx context.Context, conversationID, userID primitive.ObjectID, typing bool, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.typing[conversationID] == nil {
		f.typing[conversationID] = make(map[primitive.ObjectID]bool)
	}
	f.typing[conversationID][userID] = typing
	return nil
}

func (f *fakePresenceRepo) TypingUserIDs(ctx context.Context, conversationID primitive.ObjectID) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []primitive.ObjectID
	for userID, typing := range f.typing[conversationID] {
		if typing {
			out = append(out, userID)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeNotificationRepo) ListForUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, p utils.PaginationParams) ([]*models.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Notification
	for _, n := range f.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		copied := *n
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[primitive.ObjectID]bool)
	for _, id := range ids {
		want[id] = true
	}
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && want[n.ID] && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) byType(userID primitive.ObjectID, nType models.NotificationType) []*models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID && n.Type == nType {
			out = append(out, n)
		}
	}
	return out
}
