package maps

import "context"

// DistanceRequest asks a routing provider for the road distance between
// two coordinates.
type DistanceRequest struct {
	OriginLat float64
	OriginLng float64
	DestLat   float64
	DestLng   float64
}

// DistanceResponse reports the routed distance and travel time.
type DistanceResponse struct {
	DistanceKM  float64
	DurationMin float64
}

// Provider abstracts the external routing service.
type Provider interface {
	RoadDistance(ctx context.Context, req DistanceRequest) (*DistanceResponse, error)
}
