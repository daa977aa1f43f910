package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/internal/apperrors"
	"pasugo/internal/models"
	"pasugo/internal/repositories/interfaces"
	"pasugo/pkg/logger"
)

type RiderService struct {
	riderRepo interfaces.RiderRepository
	userRepo  interfaces.UserRepository
	logger    *logger.Logger
}

func NewRiderService(riderRepo interfaces.RiderRepository, userRepo interfaces.UserRepository) *RiderService {
	return &RiderService{
		riderRepo: riderRepo,
		userRepo:  userRepo,
		logger:    logger.GetLogger(),
	}
}

type RegisterRiderInput struct {
	VehicleType     string   `json:"vehicle_type" binding:"required"`
	VehiclePlate    string   `json:"vehicle_plate,omitempty"`
	ServiceAreas    []string `json:"service_areas,omitempty"`
	LicenseImageURL string   `json:"license_image_url,omitempty"`
}

// Register creates a rider profile for an existing user.
func (s *RiderService) Register(ctx context.Context, userID primitive.ObjectID, input RegisterRiderInput) (*models.Rider, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	rider := &models.Rider{
		UserID:          userID,
		Status:          models.RiderStatusOffline,
		VehicleType:     input.VehicleType,
		VehiclePlate:    input.VehiclePlate,
		ServiceAreas:    input.ServiceAreas,
		LicenseImageURL: input.LicenseImageURL,
		Rating:          5.0,
	}
	if err := s.riderRepo.Create(ctx, rider); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{"role": models.RoleRider}); err != nil {
		s.logger.WithUserID(userID.Hex()).WithError(err).Warn("failed to promote user role to rider")
	}
	return rider, nil
}

func (s *RiderService) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Rider, error) {
	return s.riderRepo.GetByUserID(ctx, userID)
}

func (s *RiderService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rider, error) {
	return s.riderRepo.GetByID(ctx, id)
}

// SetStatus lets a rider toggle availability. Busy is managed by the
// lifecycle and suspended only by admins, so riders may only move
// between available and offline.
func (s *RiderService) SetStatus(ctx context.Context, userID primitive.ObjectID, status models.RiderStatus) (*models.Rider, error) {
	if status != models.RiderStatusAvailable && status != models.RiderStatusOffline {
		return nil, apperrors.Validation("status must be available or offline")
	}

	rider, err := s.riderRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rider.Status == models.RiderStatusSuspended {
		return nil, apperrors.Forbidden("rider account is suspended")
	}
	if rider.Status == models.RiderStatusBusy {
		return nil, apperrors.Conflict("finish the active errand before changing status")
	}

	if err := s.riderRepo.UpdateStatus(ctx, rider.ID, status); err != nil {
		return nil, err
	}
	rider.Status = status
	return rider, nil
}

// Suspend is the admin moderation action.
func (s *RiderService) Suspend(ctx context.Context, riderID primitive.ObjectID) error {
	return s.riderRepo.UpdateStatus(ctx, riderID, models.RiderStatusSuspended)
}

// Reinstate lifts a suspension, returning the rider to offline.
func (s *RiderService) Reinstate(ctx context.Context, riderID primitive.ObjectID) error {
	rider, err := s.riderRepo.GetByID(ctx, riderID)
	if err != nil {
		return err
	}
	if rider.Status != models.RiderStatusSuspended {
		return apperrors.Conflict("rider is not suspended")
	}
	return s.riderRepo.UpdateStatus(ctx, riderID, models.RiderStatusOffline)
}
