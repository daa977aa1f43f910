package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/internal/models"
	"pasugo/internal/repositories/interfaces"
	"pasugo/internal/utils"
	"pasugo/pkg/logger"
)

// NotificationService persists in-app notifications. Delivery to push
// channels is out of scope; clients poll or ride the websocket.
type NotificationService struct {
	notificationRepo interfaces.NotificationRepository
	logger           *logger.Logger
}

func NewNotificationService(notificationRepo interfaces.NotificationRepository) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger.GetLogger(),
	}
}

func (s *NotificationService) notify(ctx context.Context, userID primitive.ObjectID, nType models.NotificationType, title, body string, requestID primitive.ObjectID) {
	n := &models.Notification{
		UserID: userID,
		Type:   nType,
		Title:  title,
		Body:   body,
		Data:   map[string]interface{}{"request_id": requestID.Hex()},
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		// Notification loss never fails the triggering operation.
		s.logger.WithUserID(userID.Hex()).WithError(err).Warn("failed to store notification")
	}
}

func (s *NotificationService) NotifyRiderSelected(ctx context.Context, riderUserID, requestID primitive.ObjectID, customerName string) {
	s.notify(ctx, riderUserID, models.NotificationRequestOffered,
		"New errand offer",
		fmt.Sprintf("%s has selected you for an errand. You have %d minutes to accept.", customerName, int(utils.OfferTimeout.Minutes())),
		requestID)
}

func (s *NotificationService) NotifyRequestAccepted(ctx context.Context, customerUserID, requestID primitive.ObjectID, riderName string) {
	s.notify(ctx, customerUserID, models.NotificationRequestAccepted,
		"Rider accepted",
		fmt.Sprintf("%s accepted your errand request.", riderName),
		requestID)
}

func (s *NotificationService) NotifyRequestDeclined(ctx context.Context, customerUserID, requestID primitive.ObjectID, riderName string) {
	s.notify(ctx, customerUserID, models.NotificationRequestDeclined,
		"Rider declined",
		fmt.Sprintf("%s declined your errand request. It is now open to other riders.", riderName),
		requestID)
}

func (s *NotificationService) NotifyRequestStarted(ctx context.Context, customerUserID, requestID primitive.ObjectID) {
	s.notify(ctx, customerUserID, models.NotificationRequestStarted,
		"Errand started",
		"Your rider has started working on your errand.",
		requestID)
}

func (s *NotificationService) NotifyRequestCompleted(ctx context.Context, customerUserID, requestID primitive.ObjectID) {
	s.notify(ctx, customerUserID, models.NotificationRequestCompleted,
		"Errand completed",
		"Your errand has been completed. Thank you for using Pasugo.",
		requestID)
}

func (s *NotificationService) NotifyRequestCancelled(ctx context.Context, userID, requestID primitive.ObjectID) {
	s.notify(ctx, userID, models.NotificationRequestCancelled,
		"Errand cancelled",
		"This errand request has been cancelled.",
		requestID)
}

func (s *NotificationService) NotifyPaymentRequested(ctx context.Context, customerUserID, requestID primitive.ObjectID, total float64, currency string) {
	s.notify(ctx, customerUserID, models.NotificationPaymentRequested,
		"Payment requested",
		fmt.Sprintf("Your rider has requested payment of %.2f %s.", total, currency),
		requestID)
}

func (s *NotificationService) NotifyPaymentSubmitted(ctx context.Context, riderUserID, requestID primitive.ObjectID) {
	s.notify(ctx, riderUserID, models.NotificationPaymentSubmitted,
		"Payment submitted",
		"The customer has submitted payment. Please confirm receipt.",
		requestID)
}

func (s *NotificationService) NotifyPaymentConfirmed(ctx context.Context, customerUserID, requestID primitive.ObjectID) {
	s.notify(ctx, customerUserID, models.NotificationPaymentConfirmed,
		"Payment confirmed",
		"Your payment has been confirmed and the errand is complete.",
		requestID)
}

func (s *NotificationService) List(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, p utils.PaginationParams) ([]*models.Notification, int64, error) {
	return s.notificationRepo.ListForUser(ctx, userID, unreadOnly, p)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	return s.notificationRepo.MarkRead(ctx, userID, ids)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.notificationRepo.UnreadCount(ctx, userID)
}
