package mongodb

import (
	"context"
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

type presenceRepository struct {
	connections *mongo.Collection
	typing      *mongo.Collection
}

func NewPresenceRepository(db *mongo.Database) interfaces.PresenceRepository {
	return &presenceRepository{
		connections: db.Collection(utils.CollectionConnections),
		typing:      db.Collection(utils.CollectionTyping),
	}
}

func (r *presenceRepository) RegisterConnection(ctx context.Context, conn *models.Connection) error {
	if conn.ID.IsZero() {
		conn.ID = primitive.NewObjectID()
	}
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = time.Now()
	}
	conn.Active = true
	if _, err := r.connections.InsertOne(ctx, conn); err != nil {
		return apperrors.Internal("insert connection", err)
	}
	return nil
}

func (r *presenceRepository) CloseConnections(ctx context.Context, conversationID, userID primitive.ObjectID, at time.Time) error {
	_, err := r.connections.UpdateMany(ctx,
		bson.M{"conversation_id": conversationID, "user_id": userID, "active": true},
		bson.M{"$set": bson.M{"active": false, "closed_at": at}},
	)
	if err != nil {
		return apperrors.Internal("close connections", err)
	}
	return nil
}

func (r *presenceRepository) ActiveUserIDs(ctx context.Context, conversationID primitive.ObjectID) ([]primitive.ObjectID, error) {
	values, err := r.connections.Distinct(ctx, "user_id",
		bson.M{"conversation_id": conversationID, "active": true},
	)
	if err != nil {
		return nil, apperrors.Internal("distinct active users", err)
	}

	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if oid, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, oid)
		}
	}
	return ids, nil
}

func (r *presenceRepository) SetTyping(ctx context.Context, conversationID, userID primitive.ObjectID, typing bool, at time.Time) error {
	_, err := r.typing.UpdateOne(ctx,
		bson.M{"conversation_id": conversationID, "user_id": userID},
		bson.M{"$set": bson.M{"typing": typing, "updated_at": at}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return apperrors.Internal("set typing status", err)
	}
	return nil
}

func (r *presenceRepository) TypingUserIDs(ctx context.Context, conversationID primitive.ObjectID) ([]primitive.ObjectID, error) {
	values, err := r.typing.Distinct(ctx, "user_id",
		bson.M{"conversation_id": conversationID, "typing": true},
	)
	if err != nil {
		return nil, apperrors.Internal("distinct typing users", err)
	}

	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if oid, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, oid)
		}
	}
	return ids, nil
}
