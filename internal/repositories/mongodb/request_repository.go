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

type requestRepository struct {
	collection *mongo.Collection
}

func NewRequestRepository(db *mongo.Database) interfaces.RequestRepository {
	return &requestRepository{collection: db.Collection(utils.CollectionRequests)}
}

func (r *requestRepository) Create(ctx context.Context, request *models.Request) error {
	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now
	if request.ID.IsZero() {
		request.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, request); err != nil {
		return apperrors.Internal("insert request", err)
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	var request models.Request
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("request not found")
	}
	if err != nil {
		return nil, apperrors.Internal("find request", err)
	}
	return &request, nil
}

func (r *requestRepository) Update(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) error {
	set := bson.M{"updated_at": time.Now()}
	unset := bson.M{}
	for k, v := range update {
		if v == nil {
			unset[k] = ""
			continue
		}
		set[k] = v
	}
	change := bson.M{"$set": set}
	if len(unset) > 0 {
		change["$unset"] = unset
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, change)
	if err != nil {
		return apperrors.Internal("update request", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("request not found")
	}
	return nil
}

func (r *requestRepository) GetByCustomer(ctx context.Context, customerID primitive.ObjectID, filter interfaces.RequestFilter, p utils.PaginationParams) ([]*models.Request, int64, error) {
	query := bson.M{"customer_id": customerID}
	if filter.Category != "" {
		query["service_category"] = filter.Category
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return r.list(ctx, query, p)
}

func (r *requestRepository) GetByRider(ctx context.Context, riderID primitive.ObjectID, p utils.PaginationParams) ([]*models.Request, int64, error) {
	return r.list(ctx, bson.M{"rider_id": riderID}, p)
}

func (r *requestRepository) GetOpenPool(ctx context.Context, p utils.PaginationParams) ([]*models.Request, int64, error) {
	// Requests whose direct offer timed out are still surfaced here;
	// offer expiry is resolved lazily at read time by the caller.
	filter := bson.M{
		"status": models.RequestStatusPending,
		"$or": bson.A{
			bson.M{"selected_rider_id": bson.M{"$exists": false}},
			bson.M{"selected_rider_id": nil},
			bson.M{"offered_at": bson.M{"$lte": time.Now().Add(-utils.OfferTimeout)}},
		},
	}
	return r.list(ctx, filter, p)
}

func (r *requestRepository) list(ctx context.Context, filter bson.M, p utils.PaginationParams) ([]*models.Request, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal("count requests", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(p.Limit())

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperrors.Internal("find requests", err)
	}
	defer cursor.Close(ctx)

	var requests []*models.Request
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, 0, apperrors.Internal("decode requests", err)
	}
	return requests, total, nil
}

func (r *requestRepository) ClaimPending(ctx context.Context, id, riderID primitive.ObjectID, update map[string]interface{}) (*models.Request, error) {
	set := bson.M{
		"rider_id":   riderID,
		"status":     models.RequestStatusAssigned,
		"updated_at": time.Now(),
	}
	for k, v := range update {
		set[k] = v
	}

	filter := bson.M{
		"_id":    id,
		"status": models.RequestStatusPending,
		"$or": bson.A{
			bson.M{"rider_id": bson.M{"$exists": false}},
			bson.M{"rider_id": nil},
		},
	}
	change := bson.M{
		"$set":   set,
		"$unset": bson.M{"selected_rider_id": "", "offered_at": "", "timed_out": ""},
	}

	var claimed models.Request
	err := r.collection.FindOneAndUpdate(ctx, filter, change,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&claimed)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("claim request", err)
	}
	return &claimed, nil
}

func (r *requestRepository) ClearOffer(ctx context.Context, id, selectedRiderID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "selected_rider_id": selectedRiderID},
		bson.M{
			"$unset": bson.M{"selected_rider_id": "", "offered_at": ""},
			"$set":   bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return apperrors.Internal("clear offer", err)
	}
	return nil
}

func (r *requestRepository) ExpireOffer(ctx context.Context, id, selectedRiderID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "selected_rider_id": selectedRiderID},
		bson.M{
			"$unset": bson.M{"selected_rider_id": "", "offered_at": ""},
			"$set":   bson.M{"timed_out": true, "updated_at": time.Now()},
		},
	)
	if err != nil {
		return apperrors.Internal("expire offer", err)
	}
	return nil
}

func (r *requestRepository) CountByStatus(ctx context.Context) (map[models.RequestStatus]int64, error) {
	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, apperrors.Internal("aggregate status counts", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[models.RequestStatus]int64)
	for cursor.Next(ctx) {
		var row struct {
			Status models.RequestStatus `bson:"_id"`
			Count  int64                `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, apperrors.Internal("decode status count", err)
		}
		counts[row.Status] = row.Count
	}
	return counts, nil
}
