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

// RequestService drives the errand lifecycle:
// pending -> assigned -> in_progress -> completed, with cancellation
// allowed from any non-terminal state.
type RequestService struct {
	requestRepo      interfaces.RequestRepository
	riderRepo        interfaces.RiderRepository
	userRepo         interfaces.UserRepository
	conversationRepo interfaces.ConversationRepository
	notifications    *NotificationService
	currency         string
	logger           *logger.Logger
	now              func() time.Time
}

func NewRequestService(
	requestRepo interfaces.RequestRepository,
	riderRepo interfaces.RiderRepository,
	userRepo interfaces.UserRepository,
	conversationRepo interfaces.ConversationRepository,
	notifications *NotificationService,
	currency string,
) *RequestService {
	return &RequestService{
		requestRepo:      requestRepo,
		riderRepo:        riderRepo,
		userRepo:         userRepo,
		conversationRepo: conversationRepo,
		notifications:    notifications,
		currency:         currency,
		logger:           logger.GetLogger(),
		now:              time.Now,
	}
}

type CreateRequestInput struct {
	ServiceCategory     models.ServiceCategory `json:"service_category" binding:"required,service_category"`
	ItemsDescription    string                 `json:"items_description" binding:"required"`
	BudgetLimit         *float64               `json:"budget_limit,omitempty"`
	SpecialInstructions string                 `json:"special_instructions,omitempty"`
	PickupLatitude      *float64               `json:"pickup_latitude,omitempty" binding:"omitempty,coordinate"`
	PickupLongitude     *float64               `json:"pickup_longitude,omitempty" binding:"omitempty,coordinate"`
	DeliveryOption      models.DeliveryOption  `json:"delivery_option,omitempty" binding:"omitempty,delivery_option"`
	DeliveryAddress     string                 `json:"delivery_address,omitempty"`
	PaymentMethod       models.PaymentMethod   `json:"payment_method" binding:"required,payment_method"`
}

// Create posts a new errand into the open pool. A pickup pin is only
// mandatory for the delivery category; other errands may omit location
// fields entirely.
func (s *RequestService) Create(ctx context.Context, customerID primitive.ObjectID, input CreateRequestInput) (*models.Request, error) {
	if input.ServiceCategory == models.CategoryDelivery {
		if input.PickupLatitude == nil || input.PickupLongitude == nil {
			return nil, apperrors.Validation("pickup coordinates required for delivery")
		}
		if input.DeliveryOption == models.DeliveryCustomAddress && input.DeliveryAddress == "" {
			return nil, apperrors.Validation("delivery address required for custom-address delivery")
		}
	}
	var pickup *utils.Point
	if input.PickupLatitude != nil && input.PickupLongitude != nil {
		if !utils.IsValidCoordinates(*input.PickupLatitude, *input.PickupLongitude) {
			return nil, apperrors.Validation("pickup coordinates out of range")
		}
		point := utils.NewPoint(*input.PickupLatitude, *input.PickupLongitude)
		pickup = &point
	}
	if input.BudgetLimit != nil && *input.BudgetLimit <= 0 {
		return nil, apperrors.Validation("budget limit must be positive")
	}

	deliveryOption := input.DeliveryOption
	if deliveryOption == "" {
		deliveryOption = models.DeliveryCurrentLocation
	}

	request := &models.Request{
		CustomerID:          customerID,
		ServiceCategory:     input.ServiceCategory,
		ItemsDescription:    input.ItemsDescription,
		BudgetLimit:         input.BudgetLimit,
		SpecialInstructions: input.SpecialInstructions,
		PickupLocation:      pickup,
		DeliveryOption:      deliveryOption,
		DeliveryAddress:     input.DeliveryAddress,
		PaymentMethod:       input.PaymentMethod,
		Status:              models.RequestStatusPending,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}
	s.logger.LogRequestEvent(request.ID.Hex(), "created", string(request.Status))
	return request, nil
}

// Get returns a request after resolving any expired offer, enforcing
// that the caller is a participant or an admin.
func (s *RequestService) Get(ctx context.Context, requestID, callerID primitive.ObjectID, isAdmin bool) (*models.Request, error) {
	request, err := s.getResolved(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !s.isParticipant(ctx, request, callerID) {
		return nil, apperrors.Forbidden("not a participant of this request")
	}
	return request, nil
}

// getResolved loads a request and lazily expires a timed-out direct
// offer. Expiry is idempotent; losing the clear race is harmless.
func (s *RequestService) getResolved(ctx context.Context, requestID primitive.ObjectID) (*models.Request, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if s.offerExpired(request) {
		if err := s.requestRepo.ExpireOffer(ctx, request.ID, *request.SelectedRiderID); err != nil {
			return nil, err
		}
		request.SelectedRiderID = nil
		request.OfferedAt = nil
		request.TimedOut = true
	}
	return request, nil
}

func (s *RequestService) offerExpired(request *models.Request) bool {
	if request.Status != models.RequestStatusPending || request.SelectedRiderID == nil || request.OfferedAt == nil {
		return false
	}
	return s.now().Sub(*request.OfferedAt) >= utils.OfferTimeout
}

func (s *RequestService) isParticipant(ctx context.Context, request *models.Request, userID primitive.ObjectID) bool {
	if request.CustomerID == userID {
		return true
	}
	riderID := request.RiderID
	if riderID == nil {
		riderID = request.SelectedRiderID
	}
	if riderID == nil {
		return false
	}
	rider, err := s.riderRepo.GetByID(ctx, *riderID)
	if err != nil {
		return false
	}
	return rider.UserID == userID
}

func (s *RequestService) ListForCustomer(ctx context.Context, customerID primitive.ObjectID, filter interfaces.RequestFilter, p utils.PaginationParams) ([]*models.Request, int64, error) {
	if filter.Category != "" && !models.ValidServiceCategory(filter.Category) {
		return nil, 0, apperrors.Validation("unknown service category")
	}
	if filter.Status != "" && !models.ValidRequestStatus(filter.Status) {
		return nil, 0, apperrors.Validation("unknown request status")
	}
	return s.requestRepo.GetByCustomer(ctx, customerID, filter, p)
}

func (s *RequestService) ListForRider(ctx context.Context, riderID primitive.ObjectID, p utils.PaginationParams) ([]*models.Request, int64, error) {
	return s.requestRepo.GetByRider(ctx, riderID, p)
}

// OpenPool lists pending requests any rider may claim.
func (s *RequestService) OpenPool(ctx context.Context, p utils.PaginationParams) ([]*models.Request, int64, error) {
	return s.requestRepo.GetOpenPool(ctx, p)
}

// OfferToRider directs a pending request at a specific rider.
// Re-selecting replaces any outstanding offer; the last offer wins.
func (s *RequestService) OfferToRider(ctx context.Context, requestID, customerID, riderID primitive.ObjectID) (*models.Request, error) {
	request, err := s.getResolved(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.CustomerID != customerID {
		return nil, apperrors.Forbidden("only the request owner can select a rider")
	}
	if request.Status != models.RequestStatusPending {
		return nil, apperrors.Conflict("request is no longer open")
	}

	rider, err := s.riderRepo.GetByID(ctx, riderID)
	if err != nil {
		return nil, err
	}
	if rider.Status != models.RiderStatusAvailable {
		return nil, apperrors.Conflict("rider is not available")
	}

	now := s.now()
	if err := s.requestRepo.Update(ctx, request.ID, map[string]interface{}{
		"selected_rider_id": riderID,
		"offered_at":        now,
		"timed_out":         nil,
	}); err != nil {
		return nil, err
	}
	request.SelectedRiderID = &riderID
	request.OfferedAt = &now
	request.TimedOut = false

	customer, err := s.userRepo.GetByID(ctx, customerID)
	if err == nil {
		s.notifications.NotifyRiderSelected(ctx, rider.UserID, request.ID, customer.FullName())
	}
	s.logger.LogRequestEvent(request.ID.Hex(), "offered", string(request.Status))
	return request, nil
}

// Accept assigns the rider to the request. For a direct offer the rider
// must be the selected one; for an open request the first claim wins.
func (s *RequestService) Accept(ctx context.Context, requestID, riderUserID primitive.ObjectID) (*models.Request, error) {
	rider, err := s.riderRepo.GetByUserID(ctx, riderUserID)
	if err != nil {
		return nil, err
	}
	if rider.Status == models.RiderStatusSuspended {
		return nil, apperrors.Forbidden("rider account is suspended")
	}

	request, err := s.getResolved(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, apperrors.Conflict("request is no longer open")
	}
	if request.HasActiveOffer(s.now(), utils.OfferTimeout) && *request.SelectedRiderID != rider.ID {
		return nil, apperrors.Conflict("request is offered to another rider")
	}

	claimed, err := s.requestRepo.ClaimPending(ctx, request.ID, rider.ID, map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	if claimed == nil {
		return nil, apperrors.Conflict("request was claimed by another rider")
	}

	if err := s.riderRepo.UpdateStatus(ctx, rider.ID, models.RiderStatusBusy); err != nil {
		s.logger.WithError(err).Warn("failed to mark rider busy after claim")
	}
	s.ensureConversation(ctx, claimed, rider)

	riderUser, err := s.userRepo.GetByID(ctx, rider.UserID)
	name := "Your rider"
	if err == nil {
		name = riderUser.FullName()
	}
	s.notifications.NotifyRequestAccepted(ctx, claimed.CustomerID, claimed.ID, name)
	s.logger.LogRequestEvent(claimed.ID.Hex(), "accepted", string(claimed.Status))
	return claimed, nil
}

// ensureConversation opens the customer-rider conversation for an
// assigned request. Duplicate creation resolves to the existing one.
func (s *RequestService) ensureConversation(ctx context.Context, request *models.Request, rider *models.Rider) {
	conv := &models.Conversation{
		RequestID:  &request.ID,
		CustomerID: request.CustomerID,
		RiderID:    rider.UserID,
	}
	if err := s.conversationRepo.Create(ctx, conv); err != nil {
		if appErr, ok := apperrors.As(err); !ok || appErr.Code != apperrors.CodeConflict {
			s.logger.WithErrand(request.ID.Hex()).WithError(err).Warn("failed to open conversation")
		}
	}
}

// Decline lets the selected rider turn down a direct offer, returning
// the request to the open pool.
func (s *RequestService) Decline(ctx context.Context, requestID, riderUserID primitive.ObjectID) (*models.Request, error) {
	rider, err := s.riderRepo.GetByUserID(ctx, riderUserID)
	if err != nil {
		return nil, err
	}

	request, err := s.getResolved(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending || request.SelectedRiderID == nil {
		return nil, apperrors.Conflict("no outstanding offer to decline")
	}
	if *request.SelectedRiderID != rider.ID {
		return nil, apperrors.Forbidden("offer is not addressed to this rider")
	}

	if err := s.requestRepo.ClearOffer(ctx, request.ID, rider.ID); err != nil {
		return nil, err
	}
	request.SelectedRiderID = nil
	request.OfferedAt = nil

	riderUser, err := s.userRepo.GetByID(ctx, rider.UserID)
	name := "The rider"
	if err == nil {
		name = riderUser.FullName()
	}
	s.notifications.NotifyRequestDeclined(ctx, request.CustomerID, request.ID, name)
	s.logger.LogRequestEvent(request.ID.Hex(), "declined", string(request.Status))
	return request, nil
}

// Start moves an assigned request into in_progress.
func (s *RequestService) Start(ctx context.Context, requestID, riderUserID primitive.ObjectID) (*models.Request, error) {
	request, _, err := s.assignedRequestFor(ctx, requestID, riderUserID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusAssigned {
		return nil, apperrors.Conflict("request is not awaiting start")
	}

	if err := s.requestRepo.Update(ctx, request.ID, map[string]interface{}{
		"status": models.RequestStatusInProgress,
	}); err != nil {
		return nil, err
	}
	request.Status = models.RequestStatusInProgress

	s.notifications.NotifyRequestStarted(ctx, request.CustomerID, request.ID)
	s.logger.LogRequestEvent(request.ID.Hex(), "started", string(request.Status))
	return request, nil
}

type PaymentRequestInput struct {
	ItemCost   float64 `json:"item_cost" binding:"required"`
	ServiceFee float64 `json:"service_fee" binding:"required"`
}

// RequestPayment records the final costs and asks the customer to pay.
// The rider may bill as soon as the request is assigned.
func (s *RequestService) RequestPayment(ctx context.Context, requestID, riderUserID primitive.ObjectID, input PaymentRequestInput) (*models.Request, error) {
	request, _, err := s.assignedRequestFor(ctx, requestID, riderUserID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusAssigned && request.Status != models.RequestStatusInProgress {
		return nil, apperrors.Conflict("request is not active")
	}
	if input.ItemCost < 0 || input.ServiceFee < 0 {
		return nil, apperrors.Validation("costs must not be negative")
	}

	total := input.ItemCost + input.ServiceFee
	if err := s.requestRepo.Update(ctx, request.ID, map[string]interface{}{
		"item_cost":      input.ItemCost,
		"service_fee":    input.ServiceFee,
		"total_amount":   total,
		"payment_status": models.PaymentStatusPending,
	}); err != nil {
		return nil, err
	}
	request.ItemCost = &input.ItemCost
	request.ServiceFee = &input.ServiceFee
	request.TotalAmount = &total
	request.PaymentStatus = models.PaymentStatusPending

	s.notifications.NotifyPaymentRequested(ctx, request.CustomerID, request.ID, total, s.currency)
	s.logger.LogRequestEvent(request.ID.Hex(), "payment_requested", string(request.Status))
	return request, nil
}

type SubmitPaymentInput struct {
	PaymentReference string `json:"payment_reference,omitempty"`
	PaymentProofURL  string `json:"payment_proof_url,omitempty"`
}

// SubmitPayment records the customer's electronic payment evidence.
// Cash is handed over in person and confirmed by the rider directly.
func (s *RequestService) SubmitPayment(ctx context.Context, requestID, customerID primitive.ObjectID, input SubmitPaymentInput) (*models.Request, error) {
	request, err := s.getResolved(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.CustomerID != customerID {
		return nil, apperrors.Forbidden("only the request owner can submit payment")
	}
	if request.PaymentMethod == models.PaymentMethodCash {
		return nil, apperrors.Conflict("cash payments are confirmed by the rider, not submitted")
	}
	if request.PaymentStatus != models.PaymentStatusPending {
		return nil, apperrors.Conflict("payment has not been requested")
	}
	if input.PaymentReference == "" && input.PaymentProofURL == "" {
		return nil, apperrors.Validation("electronic payment requires a reference or proof")
	}

	if err := s.requestRepo.Update(ctx, request.ID, map[string]interface{}{
		"payment_status":    models.PaymentStatusSubmitted,
		"payment_reference": input.PaymentReference,
		"payment_proof_url": input.PaymentProofURL,
	}); err != nil {
		return nil, err
	}
	request.PaymentStatus = models.PaymentStatusSubmitted
	request.PaymentReference = input.PaymentReference
	request.PaymentProofURL = input.PaymentProofURL

	if request.RiderID != nil {
		if rider, err := s.riderRepo.GetByID(ctx, *request.RiderID); err == nil {
			s.notifications.NotifyPaymentSubmitted(ctx, rider.UserID, request.ID)
		}
	}
	s.logger.LogRequestEvent(request.ID.Hex(), "payment_submitted", string(request.Status))
	return request, nil
}

// ConfirmPayment acknowledges receipt and completes the request in the
// same transition. Cash confirms straight from a pending bill; for
// electronic payments the customer usually submits evidence first, but
// the rider may confirm either way.
func (s *RequestService) ConfirmPayment(ctx context.Context, requestID, riderUserID primitive.ObjectID) (*models.Request, error) {
	request, rider, err := s.assignedRequestFor(ctx, requestID, riderUserID)
	if err != nil {
		return nil, err
	}
	if request.PaymentStatus != models.PaymentStatusPending && request.PaymentStatus != models.PaymentStatusSubmitted {
		return nil, apperrors.Conflict("no payment awaiting confirmation")
	}
	if request.Status != models.RequestStatusAssigned && request.Status != models.RequestStatusInProgress {
		return nil, apperrors.Conflict("request is not active")
	}
	return s.confirmPaymentAndComplete(ctx, request, rider)
}

func (s *RequestService) confirmPaymentAndComplete(ctx context.Context, request *models.Request, rider *models.Rider) (*models.Request, error) {
	now := s.now()
	if err := s.requestRepo.Update(ctx, request.ID, map[string]interface{}{
		"payment_status": models.PaymentStatusConfirmed,
		"status":         models.RequestStatusCompleted,
		"completed_at":   now,
	}); err != nil {
		return nil, err
	}
	request.PaymentStatus = models.PaymentStatusConfirmed
	request.Status = models.RequestStatusCompleted
	request.CompletedAt = &now

	if err := s.riderRepo.UpdateStatus(ctx, rider.ID, models.RiderStatusAvailable); err != nil {
		s.logger.WithError(err).Warn("failed to release rider after completion")
	}
	if err := s.riderRepo.IncrementCompleted(ctx, rider.ID); err != nil {
		s.logger.WithError(err).Warn("failed to bump rider completed count")
	}

	s.notifications.NotifyPaymentConfirmed(ctx, request.CustomerID, request.ID)
	s.notifications.NotifyRequestCompleted(ctx, request.CustomerID, request.ID)
	s.logger.LogRequestEvent(request.ID.Hex(), "completed", string(request.Status))
	return request, nil
}

// Complete marks the delivery done regardless of payment settlement.
// Payment fields keep whatever state they were in.
func (s *RequestService) Complete(ctx context.Context, requestID, riderUserID primitive.ObjectID) (*models.Request, error) {
	request, rider, err := s.assignedRequestFor(ctx, requestID, riderUserID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusAssigned && request.Status != models.RequestStatusInProgress {
		return nil, apperrors.Conflict("request is not active")
	}

	now := s.now()
	if err := s.requestRepo.Update(ctx, request.ID, map[string]interface{}{
		"status":       models.RequestStatusCompleted,
		"completed_at": now,
	}); err != nil {
		return nil, err
	}
	request.Status = models.RequestStatusCompleted
	request.CompletedAt = &now

	if err := s.riderRepo.UpdateStatus(ctx, rider.ID, models.RiderStatusAvailable); err != nil {
		s.logger.WithError(err).Warn("failed to release rider after completion")
	}
	if err := s.riderRepo.IncrementCompleted(ctx, rider.ID); err != nil {
		s.logger.WithError(err).Warn("failed to bump rider completed count")
	}

	s.notifications.NotifyRequestCompleted(ctx, request.CustomerID, request.ID)
	s.logger.LogRequestEvent(request.ID.Hex(), "completed", string(request.Status))
	return request, nil
}

// UpdateStatus applies a caller-chosen lifecycle status. Completed
// requests are frozen; anything else may move, including straight to
// completed or cancelled.
func (s *RequestService) UpdateStatus(ctx context.Context, requestID, callerID primitive.ObjectID, isAdmin bool, target models.RequestStatus) (*models.Request, error) {
	if !models.ValidRequestStatus(target) {
		return nil, apperrors.Validation("unknown request status")
	}

	request, err := s.getResolved(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && request.CustomerID != callerID && !s.isAssignedRider(ctx, request, callerID) {
		return nil, apperrors.Forbidden("only the customer or assigned rider can update status")
	}
	if request.Status == models.RequestStatusCompleted {
		return nil, apperrors.Conflict("completed requests cannot change status")
	}

	update := map[string]interface{}{"status": target}
	now := s.now()
	if target == models.RequestStatusCompleted {
		update["completed_at"] = now
	}
	if err := s.requestRepo.Update(ctx, request.ID, update); err != nil {
		return nil, err
	}
	request.Status = target
	if target == models.RequestStatusCompleted {
		request.CompletedAt = &now
	}

	if target.IsTerminal() && request.RiderID != nil {
		if err := s.riderRepo.UpdateStatus(ctx, *request.RiderID, models.RiderStatusAvailable); err != nil {
			s.logger.WithError(err).Warn("failed to release rider after status update")
		}
	}
	s.logger.LogRequestEvent(request.ID.Hex(), "status_updated", string(request.Status))
	return request, nil
}

func (s *RequestService) isAssignedRider(ctx context.Context, request *models.Request, userID primitive.ObjectID) bool {
	if request.RiderID == nil {
		return false
	}
	rider, err := s.riderRepo.GetByID(ctx, *request.RiderID)
	return err == nil && rider.UserID == userID
}

// RiderSummary is the trimmed rider block embedded in status polls.
type RiderSummary struct {
	RiderID primitive.ObjectID `json:"rider_id"`
	Name    string             `json:"name,omitempty"`
	Phone   string             `json:"phone,omitempty"`
	Rating  float64            `json:"rating"`
	Status  models.RiderStatus `json:"status"`
}

// RequestStatusView is the lightweight poll payload: lifecycle, money,
// and who is (or was offered to be) on the errand.
type RequestStatusView struct {
	RequestID     primitive.ObjectID   `json:"request_id"`
	Status        models.RequestStatus `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status,omitempty"`
	TimedOut      bool                 `json:"timed_out"`
	ItemCost      *float64             `json:"item_cost,omitempty"`
	ServiceFee    *float64             `json:"service_fee,omitempty"`
	TotalAmount   *float64             `json:"total_amount,omitempty"`
	Rider         *RiderSummary        `json:"rider,omitempty"`
	SelectedRider *RiderSummary        `json:"selected_rider,omitempty"`
	UpdatedAt     time.Time            `json:"updated_at"`
	CompletedAt   *time.Time           `json:"completed_at,omitempty"`
}

// StatusPoll returns the request's current lifecycle snapshot, with
// any expired offer already resolved and reported via timed_out.
func (s *RequestService) StatusPoll(ctx context.Context, requestID, callerID primitive.ObjectID, isAdmin bool) (*RequestStatusView, error) {
	request, err := s.Get(ctx, requestID, callerID, isAdmin)
	if err != nil {
		return nil, err
	}

	view := &RequestStatusView{
		RequestID:     request.ID,
		Status:        request.Status,
		PaymentStatus: request.PaymentStatus,
		TimedOut:      request.TimedOut,
		ItemCost:      request.ItemCost,
		ServiceFee:    request.ServiceFee,
		TotalAmount:   request.TotalAmount,
		UpdatedAt:     request.UpdatedAt,
		CompletedAt:   request.CompletedAt,
	}
	if request.RiderID != nil {
		view.Rider = s.riderSummary(ctx, *request.RiderID)
	}
	if request.SelectedRiderID != nil {
		view.SelectedRider = s.riderSummary(ctx, *request.SelectedRiderID)
	}
	return view, nil
}

func (s *RequestService) riderSummary(ctx context.Context, riderID primitive.ObjectID) *RiderSummary {
	rider, err := s.riderRepo.GetByID(ctx, riderID)
	if err != nil {
		return nil
	}
	summary := &RiderSummary{
		RiderID: rider.ID,
		Rating:  rider.Rating,
		Status:  rider.Status,
	}
	if user, err := s.userRepo.GetByID(ctx, rider.UserID); err == nil {
		summary.Name = user.FullName()
		summary.Phone = user.Phone
	}
	return summary
}

// AttachCollectionProof stores the rider's proof of purchase or pickup.
func (s *RequestService) AttachCollectionProof(ctx context.Context, requestID, riderUserID primitive.ObjectID, proofURL string) (*models.Request, error) {
	request, _, err := s.assignedRequestFor(ctx, requestID, riderUserID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusInProgress {
		return nil, apperrors.Conflict("request is not in progress")
	}
	if proofURL == "" {
		return nil, apperrors.Validation("proof url required")
	}

	if err := s.requestRepo.Update(ctx, request.ID, map[string]interface{}{
		"collection_proof_url": proofURL,
	}); err != nil {
		return nil, err
	}
	request.CollectionProofURL = proofURL
	return request, nil
}

// Cancel aborts a non-terminal request. Customers may cancel their own
// requests; admins may cancel any.
func (s *RequestService) Cancel(ctx context.Context, requestID, callerID primitive.ObjectID, isAdmin bool) (*models.Request, error) {
	request, err := s.getResolved(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && request.CustomerID != callerID {
		return nil, apperrors.Forbidden("only the request owner can cancel")
	}
	if request.Status.IsTerminal() {
		return nil, apperrors.Conflict("request is already finished")
	}

	update := map[string]interface{}{
		"status": models.RequestStatusCancelled,
	}
	if request.SelectedRiderID != nil {
		update["selected_rider_id"] = nil
		update["offered_at"] = nil
	}
	if err := s.requestRepo.Update(ctx, request.ID, update); err != nil {
		return nil, err
	}
	request.Status = models.RequestStatusCancelled

	if request.RiderID != nil {
		if rider, err := s.riderRepo.GetByID(ctx, *request.RiderID); err == nil {
			if err := s.riderRepo.UpdateStatus(ctx, rider.ID, models.RiderStatusAvailable); err != nil {
				s.logger.WithError(err).Warn("failed to release rider after cancellation")
			}
			s.notifications.NotifyRequestCancelled(ctx, rider.UserID, request.ID)
		}
	}
	s.notifications.NotifyRequestCancelled(ctx, request.CustomerID, request.ID)
	s.logger.LogRequestEvent(request.ID.Hex(), "cancelled", string(request.Status))
	return request, nil
}

// CountByStatus is the admin dashboard rollup.
func (s *RequestService) CountByStatus(ctx context.Context) (map[models.RequestStatus]int64, error) {
	return s.requestRepo.CountByStatus(ctx)
}

// assignedRequestFor loads the request and verifies the caller is its
// assigned rider.
func (s *RequestService) assignedRequestFor(ctx context.Context, requestID, riderUserID primitive.ObjectID) (*models.Request, *models.Rider, error) {
	rider, err := s.riderRepo.GetByUserID(ctx, riderUserID)
	if err != nil {
		return nil, nil, err
	}
	request, err := s.getResolved(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if request.RiderID == nil || *request.RiderID != rider.ID {
		return nil, nil, apperrors.Forbidden("request is not assigned to this rider")
	}
	return request, rider, nil
}
