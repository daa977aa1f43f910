package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pasugo/internal/apperrors"
	"pasugo/internal/models"
	"pasugo/internal/repositories/interfaces"
	"pasugo/internal/utils"
)

type locationRepository struct {
	collection *mongo.Collection
}

func NewLocationRepository(db *mongo.Database) interfaces.LocationRepository {
	return &locationRepository{collection: db.Collection(utils.CollectionLocations)}
}

func (r *locationRepository) Upsert(ctx context.Context, loc *models.Location, cutoff time.Time) (*models.Location, error) {
	// Coalesce into the user's latest row when it is newer than cutoff.
	// Older rows stay untouched and become history.
	filter := bson.M{
		"user_id":   loc.UserID,
		"timestamp": bson.M{"$gte": cutoff},
	}
	set := bson.M{
		"location":  loc.Location,
		"timestamp": loc.Timestamp,
	}
	if loc.Accuracy != nil {
		set["accuracy"] = loc.Accuracy
	}
	if loc.Heading != nil {
		set["heading"] = loc.Heading
	}
	if loc.Speed != nil {
		set["speed"] = loc.Speed
	}

	var stored models.Location
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().
			SetSort(bson.D{{Key: "timestamp", Value: -1}}).
			SetReturnDocument(options.After),
	).Decode(&stored)
	if err == nil {
		return &stored, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.Internal("coalesce location", err)
	}

	loc.ID = primitive.NewObjectID()
	loc.CreatedAt = time.Now()
	if _, err := r.collection.InsertOne(ctx, loc); err != nil {
		return nil, apperrors.Internal("insert location", err)
	}
	return loc, nil
}

func (r *locationRepository) GetLatest(ctx context.Context, userID primitive.ObjectID) (*models.Location, error) {
	var loc models.Location
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID},
		options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}}),
	).Decode(&loc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("no location recorded")
	}
	if err != nil {
		return nil, apperrors.Internal("find location", err)
	}
	return &loc, nil
}

func (r *locationRepository) GetLatestSince(ctx context.Context, userIDs []primitive.ObjectID, since time.Time) (map[primitive.ObjectID]*models.Location, error) {
	if len(userIDs) == 0 {
		return map[primitive.ObjectID]*models.Location{}, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id":   bson.M{"$in": userIDs},
			"timestamp": bson.M{"$gte": since},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$user_id",
			"latest": bson.M{"$first": "$$ROOT"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperrors.Internal("aggregate latest locations", err)
	}
	defer cursor.Close(ctx)

	result := make(map[primitive.ObjectID]*models.Location)
	for cursor.Next(ctx) {
		var row struct {
			UserID primitive.ObjectID `bson:"_id"`
			Latest models.Location    `bson:"latest"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, apperrors.Internal("decode latest location", err)
		}
		loc := row.Latest
		result[row.UserID] = &loc
	}
	return result, nil
}

func (r *locationRepository) History(ctx context.Context, userID primitive.ObjectID, from, to time.Time, limit int64) ([]*models.Location, error) {
	filter := bson.M{
		"user_id":   userID,
		"timestamp": bson.M{"$gte": from, "$lte": to},
	}
	cursor, err := r.collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, apperrors.Internal("find location history", err)
	}
	defer cursor.Close(ctx)

	var locations []*models.Location
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, apperrors.Internal("decode locations", err)
	}
	return locations, nil
}

func (r *locationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, apperrors.Internal("delete old locations", err)
	}
	return result.DeletedCount, nil
}
