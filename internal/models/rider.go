package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RiderStatus string

const (
	RiderStatusAvailable RiderStatus = "available"
	RiderStatusBusy      RiderStatus = "busy"
	RiderStatusOffline   RiderStatus = "offline"
	RiderStatusSuspended RiderStatus = "suspended"
)

type Rider struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"user_id" bson:"user_id"`
	Status          RiderStatus        `json:"status" bson:"status"`
	VehicleType     string             `json:"vehicle_type" bson:"vehicle_type"`
	VehiclePlate    string             `json:"vehicle_plate,omitempty" bson:"vehicle_plate,omitempty"`
	Rating          float64            `json:"rating" bson:"rating"`
	CompletedCount  int64              `json:"completed_count" bson:"completed_count"`
	ServiceAreas    []string           `json:"service_areas,omitempty" bson:"service_areas,omitempty"`
	LicenseImageURL string             `json:"license_image_url,omitempty" bson:"license_image_url,omitempty"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// RiderCandidate is a rider paired with a fresh location for discovery
// responses. DistanceKM is computed against the requester's position.
type RiderCandidate struct {
	Rider      Rider     `json:"rider"`
	User       *User     `json:"user,omitempty"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	DistanceKM float64   `json:"distance_km"`
	LocatedAt  time.Time `json:"located_at"`
}
