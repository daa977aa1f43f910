package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/internal/models"
	"pasugo/internal/utils"
)

// RequestFilter narrows history listings. Zero values match everything.
type RequestFilter struct {
	Category models.ServiceCategory
	Status   models.RequestStatus
}

type RequestRepository interface {
	Create(ctx context.Context, request *models.Request) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error)
	Update(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) error
	GetByCustomer(ctx context.Context, customerID primitive.ObjectID, filter RequestFilter, p utils.PaginationParams) ([]*models.Request, int64, error)
	GetByRider(ctx context.Context, riderID primitive.ObjectID, p utils.PaginationParams) ([]*models.Request, int64, error)

	// GetOpenPool returns pending requests with no outstanding direct
	// offer, newest first.
	GetOpenPool(ctx context.Context, p utils.PaginationParams) ([]*models.Request, int64, error)

	// ClaimPending atomically assigns riderID to a still-unassigned
	// pending request. Returns the updated document, or nil when the
	// claim lost the race.
	ClaimPending(ctx context.Context, id, riderID primitive.ObjectID, update map[string]interface{}) (*models.Request, error)

	// ClearOffer removes selected_rider_id and offered_at if the given
	// offer is still in place. Idempotent.
	ClearOffer(ctx context.Context, id, selectedRiderID primitive.ObjectID) error

	// ExpireOffer clears the given offer like ClearOffer and stamps
	// timed_out so later reads keep reporting the expiry.
	ExpireOffer(ctx context.Context, id, selectedRiderID primitive.ObjectID) error

	CountByStatus(ctx context.Context) (map[models.RequestStatus]int64, error)
}
