package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationRequestOffered   NotificationType = "request_offered"
	NotificationRequestAccepted  NotificationType = "request_accepted"
	NotificationRequestDeclined  NotificationType = "request_declined"
	NotificationRequestStarted   NotificationType = "request_started"
	NotificationRequestCompleted NotificationType = "request_completed"
	NotificationRequestCancelled NotificationType = "request_cancelled"
	NotificationPaymentRequested NotificationType = "payment_requested"
	NotificationPaymentSubmitted NotificationType = "payment_submitted"
	NotificationPaymentConfirmed NotificationType = "payment_confirmed"
	NotificationNewMessage       NotificationType = "new_message"
)

type Notification struct {
	ID        primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID     `json:"user_id" bson:"user_id"`
	Type      NotificationType       `json:"type" bson:"type"`
	Title     string                 `json:"title" bson:"title"`
	Body      string                 `json:"body" bson:"body"`
	Data      map[string]interface{} `json:"data,omitempty" bson:"data,omitempty"`
	Read      bool                   `json:"read" bson:"read"`
	CreatedAt time.Time              `json:"created_at" bson:"created_at"`
}
