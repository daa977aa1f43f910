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

type conversationRepository struct {
	collection *mongo.Collection
}

func NewConversationRepository(db *mongo.Database) interfaces.ConversationRepository {
	return &conversationRepository{collection: db.Collection(utils.CollectionConversations)}
}

func (r *conversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	now := time.Now()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	if conv.ID.IsZero() {
		conv.ID = primitive.NewObjectID()
	}
	if conv.Status == "" {
		conv.Status = models.ConversationOpen
	}
	if conv.Kind == "" {
		conv.Kind = models.ConversationRequestChat
	}
	_, err := r.collection.InsertOne(ctx, conv)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Conflict("conversation already exists for this request")
	}
	if err != nil {
		return apperrors.Internal("insert conversation", err)
	}
	return nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *conversationRepository) GetByRequest(ctx context.Context, requestID primitive.ObjectID) (*models.Conversation, error) {
	return r.findOne(ctx, bson.M{"request_id": requestID})
}

func (r *conversationRepository) GetByParticipants(ctx context.Context, customerID, riderID primitive.ObjectID) (*models.Conversation, error) {
	return r.findOne(ctx, bson.M{"customer_id": customerID, "rider_id": riderID})
}

func (r *conversationRepository) GetOpenSupport(ctx context.Context, customerID primitive.ObjectID) (*models.Conversation, error) {
	conv, err := r.findOne(ctx, bson.M{
		"customer_id": customerID,
		"kind":        models.ConversationSupportChat,
		"status":      models.ConversationOpen,
	})
	if appErr, ok := apperrors.As(err); ok && appErr.Code == apperrors.CodeNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *conversationRepository) findOne(ctx context.Context, filter bson.M) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.collection.FindOne(ctx, filter).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("conversation not found")
	}
	if err != nil {
		return nil, apperrors.Internal("find conversation", err)
	}
	return &conv, nil
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID primitive.ObjectID, p utils.PaginationParams) ([]*models.Conversation, int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"customer_id": userID},
		bson.M{"rider_id": userID},
		bson.M{"admin_id": userID},
	}}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal("count conversations", err)
	}

	cursor, err := r.collection.Find(ctx, filter,
		options.Find().
			SetSort(bson.D{{Key: "updated_at", Value: -1}}).
			SetSkip(p.Skip()).
			SetLimit(p.Limit()),
	)
	if err != nil {
		return nil, 0, apperrors.Internal("find conversations", err)
	}
	defer cursor.Close(ctx)

	var conversations []*models.Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, 0, apperrors.Internal("decode conversations", err)
	}
	return conversations, total, nil
}

func (r *conversationRepository) Touch(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"updated_at": at}})
	if err != nil {
		return apperrors.Internal("touch conversation", err)
	}
	return nil
}

func (r *conversationRepository) AssignAdmin(ctx context.Context, id, adminID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "admin_id": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"admin_id": adminID, "updated_at": time.Now()}},
	)
	if err != nil {
		return apperrors.Internal("assign admin", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.Conflict("conversation already has an admin")
	}
	return nil
}

func (r *conversationRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.ConversationStatus) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now()},
	})
	if err != nil {
		return apperrors.Internal("set conversation status", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("conversation not found")
	}
	return nil
}
