package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/internal/models"
	"pasugo/internal/utils"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, p utils.PaginationParams) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (int64, error)
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
}
