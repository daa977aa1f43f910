package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/internal/utils"
)

func newLocationService(repo *fakeLocationRepo, clock *time.Time) *LocationService {
	svc := NewLocationService(repo)
	svc.now = func() time.Time { return *clock }
	return svc
}

func TestReportCoalescesWithinWindow(t *testing.T) {
	repo := newFakeLocationRepo()
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newLocationService(repo, &clock)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	first, err := svc.Report(ctx, userID, LocationUpdate{Latitude: 14.60, Longitude: 121.00})
	require.NoError(t, err)

	// A report inside the window updates the same row.
	clock = clock.Add(10 * time.Minute)
	second, err := svc.Report(ctx, userID, LocationUpdate{Latitude: 14.61, Longitude: 121.01})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 14.61, second.Location.Latitude())

	// A report past the window starts a new history row.
	clock = clock.Add(utils.CoalescingWindow + time.Minute)
	third, err := svc.Report(ctx, userID, LocationUpdate{Latitude: 14.62, Longitude: 121.02})
	require.NoError(t, err)
	assert.NotEqual(t, second.ID, third.ID)

	latest, err := svc.Latest(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, third.ID, latest.ID)
}

func TestReportRejectsBadCoordinates(t *testing.T) {
	repo := newFakeLocationRepo()
	clock := time.Now()
	svc := newLocationService(repo, &clock)

	_, err := svc.Report(context.Background(), primitive.NewObjectID(), LocationUpdate{Latitude: 91, Longitude: 0})
	require.Error(t, err)
	_, err = svc.Report(context.Background(), primitive.NewObjectID(), LocationUpdate{Latitude: 0, Longitude: 181})
	require.Error(t, err)
}

func TestIsOnlineTracksFreshness(t *testing.T) {
	repo := newFakeLocationRepo()
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newLocationService(repo, &clock)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	// No report at all means offline.
	online, err := svc.IsOnline(ctx, userID)
	require.NoError(t, err)
	assert.False(t, online)

	_, err = svc.Report(ctx, userID, LocationUpdate{Latitude: 14.6, Longitude: 121.0})
	require.NoError(t, err)

	clock = clock.Add(4 * time.Minute)
	online, err = svc.IsOnline(ctx, userID)
	require.NoError(t, err)
	assert.True(t, online)

	clock = clock.Add(2 * time.Minute)
	online, err = svc.IsOnline(ctx, userID)
	require.NoError(t, err)
	assert.False(t, online)
}

func TestHistoryBoundsAndOrder(t *testing.T) {
	repo := newFakeLocationRepo()
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newLocationService(repo, &clock)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	for i := 0; i < 3; i++ {
		_, err := svc.Report(ctx, userID, LocationUpdate{Latitude: 14.6 + float64(i)/100, Longitude: 121.0})
		require.NoError(t, err)
		clock = clock.Add(utils.CoalescingWindow + time.Minute)
	}

	history, err := svc.History(ctx, userID, time.Time{}, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].Timestamp.After(history[1].Timestamp))

	_, err = svc.History(ctx, userID, clock, clock.Add(-time.Hour), 10)
	require.Error(t, err)
}

func TestCleanupPurgesOldHistory(t *testing.T) {
	repo := newFakeLocationRepo()
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newLocationService(repo, &clock)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	_, err := svc.Report(ctx, userID, LocationUpdate{Latitude: 14.6, Longitude: 121.0})
	require.NoError(t, err)

	clock = clock.Add(utils.LocationRetention + 24*time.Hour)
	_, err = svc.Report(ctx, userID, LocationUpdate{Latitude: 14.7, Longitude: 121.1})
	require.NoError(t, err)

	deleted, err := svc.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	latest, err := svc.Latest(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 14.7, latest.Location.Latitude())
}
