package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"pasugo/internal/apperrors"
	"pasugo/internal/models"
	"pasugo/internal/repositories/interfaces"
	"pasugo/internal/utils"
)

type riderRepository struct {
	collection *mongo.Collection
}

func NewRiderRepository(db *mongo.Database) interfaces.RiderRepository {
	return &riderRepository{collection: db.Collection(utils.CollectionRiders)}
}

func (r *riderRepository) Create(ctx context.Context, rider *models.Rider) error {
	now := time.Now()
	rider.CreatedAt = now
	rider.UpdatedAt = now
	if rider.ID.IsZero() {
		rider.ID = primitive.NewObjectID()
	}
	if rider.Status == "" {
		rider.Status = models.RiderStatusOffline
	}
	_, err := r.collection.InsertOne(ctx, rider)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Conflict("rider profile already exists")
	}
	if err != nil {
		return apperrors.Internal("insert rider", err)
	}
	return nil
}

func (r *riderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rider, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *riderRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Rider, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *riderRepository) findOne(ctx context.Context, filter bson.M) (*models.Rider, error) {
	var rider models.Rider
	err := r.collection.FindOne(ctx, filter).Decode(&rider)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("rider not found")
	}
	if err != nil {
		return nil, apperrors.Internal("find rider", err)
	}
	return &rider, nil
}

func (r *riderRepository) GetByStatuses(ctx context.Context, statuses []models.RiderStatus) ([]*models.Rider, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": bson.M{"$in": statuses}})
	if err != nil {
		return nil, apperrors.Internal("find riders", err)
	}
	defer cursor.Close(ctx)

	var riders []*models.Rider
	if err := cursor.All(ctx, &riders); err != nil {
		return nil, apperrors.Internal("decode riders", err)
	}
	return riders, nil
}

func (r *riderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.RiderStatus) error {
	return r.Update(ctx, id, map[string]interface{}{"status": status})
}

func (r *riderRepository) Update(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) error {
	update["updated_at"] = time.Now()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return apperrors.Internal("update rider", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("rider not found")
	}
	return nil
}

func (r *riderRepository) IncrementCompleted(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"completed_count": 1},
		"$set": bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return apperrors.Internal("increment completed count", err)
	}
	return nil
}
