package interfaces

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/internal/models"
)

type LocationRepository interface {
	// Upsert updates the user's latest location row in place when it is
	// newer than cutoff, otherwise inserts a fresh row. Returns the
	// stored document.
	Upsert(ctx context.Context, loc *models.Location, cutoff time.Time) (*models.Location, error)

	GetLatest(ctx context.Context, userID primitive.ObjectID) (*models.Location, error)

	// GetLatestSince returns the newest location per user for locations
	// no older than since.
	GetLatestSince(ctx context.Context, userIDs []primitive.ObjectID, since time.Time) (map[primitive.ObjectID]*models.Location, error)

	History(ctx context.Context, userID primitive.ObjectID, from, to time.Time, limit int64) ([]*models.Location, error)

	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
