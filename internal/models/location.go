package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/internal/utils"
)

// Location is a position report. Reports inside the coalescing window
// update the latest row in place; older rows become history.
type Location struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Location  utils.Point        `json:"location" bson:"location"`
	Accuracy  *float64           `json:"accuracy,omitempty" bson:"accuracy,omitempty"`
	Heading   *float64           `json:"heading,omitempty" bson:"heading,omitempty"`
	Speed     *float64           `json:"speed,omitempty" bson:"speed,omitempty"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// IsFresh reports whether the location is recent enough for discovery.
func (l *Location) IsFresh(now time.Time, window time.Duration) bool {
	return now.Sub(l.Timestamp) <= window
}
