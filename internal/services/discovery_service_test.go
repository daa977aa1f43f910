package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/internal/models"
	"pasugo/internal/utils"
)

func seedRider(t *testing.T, riderRepo *fakeRiderRepo, userRepo *fakeUserRepo, name string, status models.RiderStatus, rating float64) *models.Rider {
	t.Helper()
	user := &models.User{FirstName: name, Role: models.RoleRider}
	require.NoError(t, userRepo.Create(context.Background(), user))

	rider := &models.Rider{UserID: user.ID, Status: status, Rating: rating}
	require.NoError(t, riderRepo.Create(context.Background(), rider))
	return rider
}

func reportAt(t *testing.T, locationRepo *fakeLocationRepo, userID primitive.ObjectID, lat, lng float64, at time.Time) {
	t.Helper()
	_, err := locationRepo.Upsert(context.Background(), &models.Location{
		UserID:    userID,
		Location:  utils.NewPoint(lat, lng),
		Timestamp: at,
	}, at.Add(-utils.CoalescingWindow))
	require.NoError(t, err)
}

func TestFindCandidatesSortsByDistance(t *testing.T) {
	riderRepo := newFakeRiderRepo()
	userRepo := newFakeUserRepo()
	locationRepo := newFakeLocationRepo()

	now := time.Now()
	svc := NewDiscoveryService(riderRepo, userRepo, locationRepo)
	svc.now = func() time.Time { return now }

	near := seedRider(t, riderRepo, userRepo, "Near", models.RiderStatusAvailable, 4.2)
	far := seedRider(t, riderRepo, userRepo, "Far", models.RiderStatusAvailable, 5.0)

	reportAt(t, locationRepo, near.UserID, 14.601, 121.001, now.Add(-time.Minute))
	reportAt(t, locationRepo, far.UserID, 14.700, 121.100, now.Add(-time.Minute))

	candidates, err := svc.FindCandidates(context.Background(), 14.600, 121.000, 0, nil, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, near.ID, candidates[0].Rider.ID)
	assert.Equal(t, far.ID, candidates[1].Rider.ID)
	assert.Less(t, candidates[0].DistanceKM, candidates[1].DistanceKM)
}

func TestFindCandidatesDropsBeyondRadius(t *testing.T) {
	riderRepo := newFakeRiderRepo()
	userRepo := newFakeUserRepo()
	locationRepo := newFakeLocationRepo()

	now := time.Now()
	svc := NewDiscoveryService(riderRepo, userRepo, locationRepo)
	svc.now = func() time.Time { return now }

	inside := seedRider(t, riderRepo, userRepo, "Inside", models.RiderStatusAvailable, 4.5)
	outside := seedRider(t, riderRepo, userRepo, "Outside", models.RiderStatusAvailable, 5.0)

	// Roughly 1.5 km and 33 km from the search point.
	reportAt(t, locationRepo, inside.UserID, 14.613, 121.000, now.Add(-time.Minute))
	reportAt(t, locationRepo, outside.UserID, 14.900, 121.000, now.Add(-time.Minute))

	candidates, err := svc.FindCandidates(context.Background(), 14.600, 121.000, 5, nil, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, inside.ID, candidates[0].Rider.ID)
	assert.LessOrEqual(t, candidates[0].DistanceKM, 5.0)

	// A wider radius picks the far rider back up.
	candidates, err = svc.FindCandidates(context.Background(), 14.600, 121.000, 50, nil, 10)
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}

func TestFindCandidatesExcludesStaleLocations(t *testing.T) {
	riderRepo := newFakeRiderRepo()
	userRepo := newFakeUserRepo()
	locationRepo := newFakeLocationRepo()

	now := time.Now()
	svc := NewDiscoveryService(riderRepo, userRepo, locationRepo)
	svc.now = func() time.Time { return now }

	fresh := seedRider(t, riderRepo, userRepo, "Fresh", models.RiderStatusAvailable, 5.0)
	stale := seedRider(t, riderRepo, userRepo, "Stale", models.RiderStatusAvailable, 5.0)
	silent := seedRider(t, riderRepo, userRepo, "Silent", models.RiderStatusAvailable, 5.0)

	reportAt(t, locationRepo, fresh.UserID, 14.6, 121.0, now.Add(-4*time.Minute))
	reportAt(t, locationRepo, stale.UserID, 14.6, 121.0, now.Add(-6*time.Minute))
	_ = silent

	candidates, err := svc.FindCandidates(context.Background(), 14.6, 121.0, 0, nil, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, fresh.ID, candidates[0].Rider.ID)
}

func TestFindCandidatesDefaultsToWorkableRiders(t *testing.T) {
	riderRepo := newFakeRiderRepo()
	userRepo := newFakeUserRepo()
	locationRepo := newFakeLocationRepo()

	now := time.Now()
	svc := NewDiscoveryService(riderRepo, userRepo, locationRepo)
	svc.now = func() time.Time { return now }

	available := seedRider(t, riderRepo, userRepo, "Available", models.RiderStatusAvailable, 5.0)
	busy := seedRider(t, riderRepo, userRepo, "Busy", models.RiderStatusBusy, 5.0)
	offline := seedRider(t, riderRepo, userRepo, "Offline", models.RiderStatusOffline, 5.0)

	for _, rider := range []*models.Rider{available, busy, offline} {
		reportAt(t, locationRepo, rider.UserID, 14.6, 121.0, now.Add(-time.Minute))
	}

	// Nil statuses means available plus busy; offline never shows.
	candidates, err := svc.FindCandidates(context.Background(), 14.6, 121.0, 0, nil, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	for _, candidate := range candidates {
		assert.NotEqual(t, offline.ID, candidate.Rider.ID)
	}

	// Callers may narrow the set to available only.
	candidates, err = svc.FindCandidates(context.Background(), 14.6, 121.0, 0,
		[]models.RiderStatus{models.RiderStatusAvailable}, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, available.ID, candidates[0].Rider.ID)
}

func TestFindCandidatesTiebreaksByRating(t *testing.T) {
	riderRepo := newFakeRiderRepo()
	userRepo := newFakeUserRepo()
	locationRepo := newFakeLocationRepo()

	now := time.Now()
	svc := NewDiscoveryService(riderRepo, userRepo, locationRepo)
	svc.now = func() time.Time { return now }

	lowRated := seedRider(t, riderRepo, userRepo, "Low", models.RiderStatusAvailable, 3.0)
	highRated := seedRider(t, riderRepo, userRepo, "High", models.RiderStatusAvailable, 4.9)

	reportAt(t, locationRepo, lowRated.UserID, 14.6, 121.0, now.Add(-time.Minute))
	reportAt(t, locationRepo, highRated.UserID, 14.6, 121.0, now.Add(-time.Minute))

	candidates, err := svc.FindCandidates(context.Background(), 14.6, 121.0, 0, nil, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, highRated.ID, candidates[0].Rider.ID)
}

func TestFindCandidatesRespectsLimit(t *testing.T) {
	riderRepo := newFakeRiderRepo()
	userRepo := newFakeUserRepo()
	locationRepo := newFakeLocationRepo()

	now := time.Now()
	svc := NewDiscoveryService(riderRepo, userRepo, locationRepo)
	svc.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		rider := seedRider(t, riderRepo, userRepo, "Rider", models.RiderStatusAvailable, 5.0)
		reportAt(t, locationRepo, rider.UserID, 14.6, 121.0, now.Add(-time.Minute))
	}

	candidates, err := svc.FindCandidates(context.Background(), 14.6, 121.0, 0, nil, 3)
	require.NoError(t, err)
	assert.Len(t, candidates, 3)
}
