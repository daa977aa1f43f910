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

type messageRepository struct {
	messages *mongo.Collection
	receipts *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) interfaces.MessageRepository {
	return &messageRepository{
		messages: db.Collection(utils.CollectionMessages),
		receipts: db.Collection(utils.CollectionReceipts),
	}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if msg.Type == "" {
		msg.Type = models.MessageTypeText
	}
	if _, err := r.messages.InsertOne(ctx, msg); err != nil {
		return apperrors.Internal("insert message", err)
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	var msg models.Message
	err := r.messages.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("message not found")
	}
	if err != nil {
		return nil, apperrors.Internal("find message", err)
	}
	return &msg, nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID primitive.ObjectID, beforeID *primitive.ObjectID, limit int64) ([]*models.Message, error) {
	filter := bson.M{
		"conversation_id": conversationID,
		"is_deleted":      bson.M{"$ne": true},
	}
	if beforeID != nil {
		filter["_id"] = bson.M{"$lt": *beforeID}
	}

	// Newest-first fetch bounded by the cursor, then reversed so the
	// caller gets a chronological page.
	cursor, err := r.messages.Find(ctx, filter,
		options.Find().
			SetSort(bson.D{{Key: "_id", Value: -1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, apperrors.Internal("find messages", err)
	}
	defer cursor.Close(ctx)

	var messages []*models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, apperrors.Internal("decode messages", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *messageRepository) GetLast(ctx context.Context, conversationID primitive.ObjectID) (*models.Message, error) {
	var msg models.Message
	err := r.messages.FindOne(ctx,
		bson.M{"conversation_id": conversationID, "is_deleted": bson.M{"$ne": true}},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("find last message", err)
	}
	return &msg, nil
}

func (r *messageRepository) SoftDelete(ctx context.Context, messageID primitive.ObjectID, at time.Time) error {
	result, err := r.messages.UpdateOne(ctx,
		bson.M{"_id": messageID, "is_deleted": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"is_deleted": true, "deleted_at": at}},
	)
	if err != nil {
		return apperrors.Internal("delete message", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("message not found")
	}
	return nil
}

func (r *messageRepository) MarkRead(ctx context.Context, conversationID, userID primitive.ObjectID, messageIDs []primitive.ObjectID, at time.Time) ([]primitive.ObjectID, error) {
	unreadIDs, err := r.unreadMessageIDs(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if len(messageIDs) > 0 {
		requested := make(map[primitive.ObjectID]bool, len(messageIDs))
		for _, id := range messageIDs {
			requested[id] = true
		}
		filtered := unreadIDs[:0]
		for _, id := range unreadIDs {
			if requested[id] {
				filtered = append(filtered, id)
			}
		}
		unreadIDs = filtered
	}
	if len(unreadIDs) == 0 {
		return nil, nil
	}

	docs := make([]interface{}, 0, len(unreadIDs))
	for _, msgID := range unreadIDs {
		docs = append(docs, models.MessageReceipt{
			ID:        primitive.NewObjectID(),
			MessageID: msgID,
			UserID:    userID,
			ReadAt:    at,
		})
	}

	// Unordered insert so a concurrent duplicate receipt does not block
	// the rest of the batch.
	_, err = r.receipts.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		var bulkErr mongo.BulkWriteException
		if !errors.As(err, &bulkErr) {
			return nil, apperrors.Internal("insert receipts", err)
		}
		for _, we := range bulkErr.WriteErrors {
			if we.Code != 11000 {
				return nil, apperrors.Internal("insert receipts", err)
			}
		}
	}
	return unreadIDs, nil
}

func (r *messageRepository) UnreadCount(ctx context.Context, conversationID, userID primitive.ObjectID) (int64, error) {
	ids, err := r.unreadMessageIDs(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

// unreadMessageIDs finds messages in the conversation not sent by userID
// and lacking a receipt from userID, via a $lookup anti-join.
func (r *messageRepository) unreadMessageIDs(ctx context.Context, conversationID, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"conversation_id": conversationID,
			"sender_id":       bson.M{"$ne": userID},
			"is_deleted":      bson.M{"$ne": true},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from": utils.CollectionReceipts,
			"let":  bson.M{"msg_id": "$_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$message_id", "$$msg_id"}},
					bson.M{"$eq": bson.A{"$user_id", userID}},
				}}}},
			},
			"as": "receipts",
		}}},
		{{Key: "$match", Value: bson.M{"receipts": bson.M{"$size": 0}}}},
		{{Key: "$project", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.messages.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperrors.Internal("aggregate unread messages", err)
	}
	defer cursor.Close(ctx)

	var ids []primitive.ObjectID
	for cursor.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, apperrors.Internal("decode unread message id", err)
		}
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (r *messageRepository) ReadersOf(ctx context.Context, messageID primitive.ObjectID) ([]*models.MessageReceipt, error) {
	cursor, err := r.receipts.Find(ctx, bson.M{"message_id": messageID})
	if err != nil {
		return nil, apperrors.Internal("find receipts", err)
	}
	defer cursor.Close(ctx)

	var receipts []*models.MessageReceipt
	if err := cursor.All(ctx, &receipts); err != nil {
		return nil, apperrors.Internal("decode receipts", err)
	}
	return receipts, nil
}
