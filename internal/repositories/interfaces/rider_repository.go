package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/internal/models"
)

type RiderRepository interface {
	Create(ctx context.Context, rider *models.Rider) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rider, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Rider, error)
	GetByStatuses(ctx context.Context, statuses []models.RiderStatus) ([]*models.Rider, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.RiderStatus) error
	Update(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) error
	IncrementCompleted(ctx context.Context, id primitive.ObjectID) error
}
