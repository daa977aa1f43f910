package maps

import (
	"context"
	"fmt"

	googlemaps "googlemaps.github.io/maps"

	"pasugo/internal/config"
)

type GoogleMapsProvider struct {
	client *googlemaps.Client
	cfg    *config.MapsConfig
}

func NewGoogleMapsProvider(cfg *config.MapsConfig) (*GoogleMapsProvider, error) {
	client, err := googlemaps.NewClient(googlemaps.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleMapsProvider{client: client, cfg: cfg}, nil
}

func (g *GoogleMapsProvider) RoadDistance(ctx context.Context, req DistanceRequest) (*DistanceResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.RequestTimeout)
	defer cancel()

	resp, err := g.client.DistanceMatrix(ctx, &googlemaps.DistanceMatrixRequest{
		Origins:      []string{fmt.Sprintf("%f,%f", req.OriginLat, req.OriginLng)},
		Destinations: []string{fmt.Sprintf("%f,%f", req.DestLat, req.DestLng)},
		Mode:         googlemaps.TravelModeDriving,
	})
	if err != nil {
		return nil, fmt.Errorf("distance matrix: %w", err)
	}

	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return nil, fmt.Errorf("distance matrix: empty response")
	}
	elem := resp.Rows[0].Elements[0]
	if elem.Status != "OK" {
		return nil, fmt.Errorf("distance matrix: element status %s", elem.Status)
	}

	return &DistanceResponse{
		DistanceKM:  float64(elem.Distance.Meters) / 1000.0,
		DurationMin: elem.Duration.Minutes(),
	}, nil
}
