package services

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/internal/apperrors"
	"pasugo/internal/models"
	"pasugo/internal/repositories/interfaces"
	"pasugo/internal/utils"
	"pasugo/pkg/logger"
)

// DiscoveryService finds riders a customer can offer a request to.
type DiscoveryService struct {
	riderRepo    interfaces.RiderRepository
	userRepo     interfaces.UserRepository
	locationRepo interfaces.LocationRepository
	logger       *logger.Logger
	now          func() time.Time
}

func NewDiscoveryService(
	riderRepo interfaces.RiderRepository,
	userRepo interfaces.UserRepository,
	locationRepo interfaces.LocationRepository,
) *DiscoveryService {
	return &DiscoveryService{
		riderRepo:    riderRepo,
		userRepo:     userRepo,
		locationRepo: locationRepo,
		logger:       logger.GetLogger(),
		now:          time.Now,
	}
}

// WorkableStatuses is the default discovery filter: riders who can take
// or queue a request.
func WorkableStatuses() []models.RiderStatus {
	return []models.RiderStatus{models.RiderStatusAvailable, models.RiderStatusBusy}
}

// FindCandidates returns riders with a fresh location inside radiusKM of
// the given point, sorted by distance. Riders without a report inside
// the freshness window are treated as offline and excluded, as are
// riders whose last report falls outside the radius. A non-positive
// radius uses the default; out-of-range radii clamp. A nil statuses
// slice means the workable set.
func (s *DiscoveryService) FindCandidates(ctx context.Context, lat, lng, radiusKM float64, statuses []models.RiderStatus, limit int) ([]*models.RiderCandidate, error) {
	if !utils.IsValidCoordinates(lat, lng) {
		return nil, apperrors.Validation("coordinates out of range")
	}
	if radiusKM <= 0 {
		radiusKM = utils.DefaultSearchRadiusKM
	}
	if radiusKM < utils.MinSearchRadiusKM {
		radiusKM = utils.MinSearchRadiusKM
	}
	if radiusKM > utils.MaxSearchRadiusKM {
		radiusKM = utils.MaxSearchRadiusKM
	}
	if statuses == nil {
		statuses = WorkableStatuses()
	}

	riders, err := s.riderRepo.GetByStatuses(ctx, statuses)
	if err != nil {
		return nil, err
	}
	if len(riders) == 0 {
		return nil, nil
	}

	userIDs := make([]primitive.ObjectID, 0, len(riders))
	for _, rider := range riders {
		userIDs = append(userIDs, rider.UserID)
	}

	since := s.now().Add(-utils.FreshnessWindow)
	locations, err := s.locationRepo.GetLatestSince(ctx, userIDs, since)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	usersByID := make(map[primitive.ObjectID]*models.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	candidates := make([]*models.RiderCandidate, 0, len(riders))
	for _, rider := range riders {
		loc, ok := locations[rider.UserID]
		if !ok {
			continue
		}
		distance := utils.HaversineDistance(lat, lng, loc.Location.Latitude(), loc.Location.Longitude())
		if distance > radiusKM {
			continue
		}
		candidates = append(candidates, &models.RiderCandidate{
			Rider:      *rider,
			User:       usersByID[rider.UserID],
			Latitude:   loc.Location.Latitude(),
			Longitude:  loc.Location.Longitude(),
			DistanceKM: distance,
			LocatedAt:  loc.Timestamp,
		})
	}

	// Distance ascending, then rating descending, then id for a stable
	// order between equal riders.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].DistanceKM != candidates[j].DistanceKM {
			return candidates[i].DistanceKM < candidates[j].DistanceKM
		}
		if candidates[i].Rider.Rating != candidates[j].Rider.Rating {
			return candidates[i].Rider.Rating > candidates[j].Rider.Rating
		}
		return candidates[i].Rider.ID.Hex() < candidates[j].Rider.ID.Hex()
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}
