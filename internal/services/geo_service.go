package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"pasugo/internal/apperrors"
	"pasugo/internal/utils"
	"pasugo/pkg/logger"
	"pasugo/pkg/maps"
)

// FeeForDistance computes the tiered service fee. Distances up to the
// first bracket cost the base fee; each additional started bracket adds
// a flat increment. Non-positive distances price as the base fee.
func FeeForDistance(distanceKM float64) float64 {
	if distanceKM <= utils.BracketKM {
		return utils.BaseFee
	}
	brackets := math.Ceil(distanceKM / utils.BracketKM)
	return brackets * utils.FeePerBracket
}

// Estimate is a priced distance between two points.
type Estimate struct {
	DistanceKM  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min,omitempty"`
	ServiceFee  float64 `json:"service_fee"`
	Currency    string  `json:"currency"`

	// Estimated is true when the routing provider was unreachable and
	// the distance is a scaled straight-line approximation.
	Estimated bool `json:"estimated"`
}

type GeoService struct {
	provider maps.Provider
	currency string
	logger   *logger.Logger
	cache    CacheService
}

func NewGeoService(provider maps.Provider, currency string, cacheService CacheService) *GeoService {
	return &GeoService{
		provider: provider,
		currency: currency,
		logger:   logger.GetLogger(),
		cache:    cacheService,
	}
}

// EstimateFee prices the trip between two coordinates. Falls back to
// haversine distance scaled by a road factor when the provider fails.
func (s *GeoService) EstimateFee(ctx context.Context, originLat, originLng, destLat, destLng float64) (*Estimate, error) {
	if !utils.IsValidCoordinates(originLat, originLng) || !utils.IsValidCoordinates(destLat, destLng) {
		return nil, apperrors.Validation("coordinates out of range")
	}

	cacheKey := fmt.Sprintf("estimate:%.5f,%.5f:%.5f,%.5f", originLat, originLng, destLat, destLng)
	if s.cache != nil {
		var cached Estimate
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	estimate := s.estimate(ctx, originLat, originLng, destLat, destLng)

	if s.cache != nil && !estimate.Estimated {
		_ = s.cache.Set(ctx, cacheKey, estimate, 10*time.Minute)
	}
	return estimate, nil
}

func (s *GeoService) estimate(ctx context.Context, originLat, originLng, destLat, destLng float64) *Estimate {
	if s.provider != nil {
		resp, err := s.provider.RoadDistance(ctx, maps.DistanceRequest{
			OriginLat: originLat,
			OriginLng: originLng,
			DestLat:   destLat,
			DestLng:   destLng,
		})
		if err == nil {
			return &Estimate{
				DistanceKM:  resp.DistanceKM,
				DurationMin: resp.DurationMin,
				ServiceFee:  FeeForDistance(resp.DistanceKM),
				Currency:    s.currency,
			}
		}
		s.logger.WithError(err).Warn("routing provider failed, falling back to straight-line estimate")
	}

	distance := utils.HaversineDistance(originLat, originLng, destLat, destLng) * utils.RoadDistanceMultiplier
	return &Estimate{
		DistanceKM: distance,
		ServiceFee: FeeForDistance(distance),
		Currency:   s.currency,
		Estimated:  true,
	}
}
