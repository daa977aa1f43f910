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

type LocationService struct {
	locationRepo interfaces.LocationRepository
	logger       *logger.Logger
	now          func() time.Time
}

func NewLocationService(locationRepo interfaces.LocationRepository) *LocationService {
	return &LocationService{
		locationRepo: locationRepo,
		logger:       logger.GetLogger(),
		now:          time.Now,
	}
}

type LocationUpdate struct {
	Latitude  float64  `json:"latitude" binding:"required,coordinate"`
	Longitude float64  `json:"longitude" binding:"required,coordinate"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Heading   *float64 `json:"heading,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
}

// Report records a position. Updates within the coalescing window
// collapse into the latest row so frequent pings do not flood history.
func (s *LocationService) Report(ctx context.Context, userID primitive.ObjectID, update LocationUpdate) (*models.Location, error) {
	if !utils.IsValidCoordinates(update.Latitude, update.Longitude) {
		return nil, apperrors.Validation("coordinates out of range")
	}

	now := s.now()
	loc := &models.Location{
		UserID:    userID,
		Location:  utils.NewPoint(update.Latitude, update.Longitude),
		Accuracy:  update.Accuracy,
		Heading:   update.Heading,
		Speed:     update.Speed,
		Timestamp: now,
	}
	return s.locationRepo.Upsert(ctx, loc, now.Add(-utils.CoalescingWindow))
}

func (s *LocationService) Latest(ctx context.Context, userID primitive.ObjectID) (*models.Location, error) {
	return s.locationRepo.GetLatest(ctx, userID)
}

// IsOnline reports whether the user has a location newer than the
// freshness window.
func (s *LocationService) IsOnline(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	loc, err := s.locationRepo.GetLatest(ctx, userID)
	if err != nil {
		if appErr, ok := apperrors.As(err); ok && appErr.Code == apperrors.CodeNotFound {
			return false, nil
		}
		return false, err
	}
	return loc.IsFresh(s.now(), utils.FreshnessWindow), nil
}

func (s *LocationService) History(ctx context.Context, userID primitive.ObjectID, from, to time.Time, limit int64) ([]*models.Location, error) {
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.Add(-24 * time.Hour)
	}
	if from.After(to) {
		return nil, apperrors.Validation("history range start is after end")
	}
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	return s.locationRepo.History(ctx, userID, from, to, limit)
}

// Cleanup removes history older than the retention period.
func (s *LocationService) Cleanup(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-utils.LocationRetention)
	deleted, err := s.locationRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.WithField("deleted", deleted).Info("purged expired location history")
	}
	return deleted, nil
}

// RunCleanup periodically purges expired history until ctx is done.
func (s *LocationService) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Cleanup(ctx); err != nil {
				s.logger.WithError(err).Error("location cleanup failed")
			}
		}
	}
}
