package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/modesense/tmd-backend-go/internal/database"
	"github.com/modesense/tmd-backend-go/internal/models"
)

func newTestRepo(t *testing.T) *VehicleRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	require.NoError(t, database.RunMigrations(db, log))

	return NewVehicleRepository(db)
}

func TestUpsertAndNearby(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Flinders Street Station area, Melbourne.
	positions := []models.VehiclePosition{
		{VehicleID: "tram-1", RouteID: "route-96", RouteType: models.RouteTypeTram,
			Latitude: -37.8183, Longitude: 144.9671, Timestamp: 1000},
		{VehicleID: "bus-1", RouteID: "route-200", RouteType: models.RouteTypeBus,
			Latitude: -37.8190, Longitude: 144.9680, Timestamp: 1050},
		// Roughly 10 km away, outside any reasonable radius.
		{VehicleID: "train-far", RouteID: "route-x", RouteType: models.RouteTypeTrain,
			Latitude: -37.9100, Longitude: 144.9900, Timestamp: 1050},
	}
	require.NoError(t, repo.UpsertPositions(ctx, positions))

	got, err := repo.Nearby(ctx, models.VehicleQuery{
		CenterLat:    -37.8183,
		CenterLon:    144.9671,
		RadiusMeters: 500,
		WindowSecs:   300,
	}, 1100)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Closest first.
	assert.Equal(t, "tram-1", got[0].VehicleID)
	assert.Equal(t, "bus-1", got[1].VehicleID)
}

func TestNearbyLatestObservationPerVehicle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertPositions(ctx, []models.VehiclePosition{
		{VehicleID: "bus-1", RouteType: models.RouteTypeBus, Latitude: -37.8183, Longitude: 144.9671, Timestamp: 1000},
		{VehicleID: "bus-1", RouteType: models.RouteTypeBus, Latitude: -37.8184, Longitude: 144.9672, Timestamp: 1060},
	}))

	got, err := repo.Nearby(ctx, models.VehicleQuery{
		CenterLat: -37.8183, CenterLon: 144.9671, RadiusMeters: 500, WindowSecs: 600,
	}, 1100)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1060), got[0].Timestamp)
}

func TestNearbyTimeWindow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertPositions(ctx, []models.VehiclePosition{
		{VehicleID: "old", RouteType: models.RouteTypeBus, Latitude: -37.8183, Longitude: 144.9671, Timestamp: 100},
	}))

	got, err := repo.Nearby(ctx, models.VehicleQuery{
		CenterLat: -37.8183, CenterLon: 144.9671, RadiusMeters: 500, WindowSecs: 300,
	}, 1000)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpsertReplaysSafely(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := models.VehiclePosition{
		VehicleID: "tram-9", RouteType: models.RouteTypeTram,
		Latitude: -37.8183, Longitude: 144.9671, Timestamp: 500,
	}
	require.NoError(t, repo.UpsertPositions(ctx, []models.VehiclePosition{p}))
	p.Latitude = -37.8185
	require.NoError(t, repo.UpsertPositions(ctx, []models.VehiclePosition{p}))

	got, err := repo.Nearby(ctx, models.VehicleQuery{
		CenterLat: -37.8183, CenterLon: 144.9671, RadiusMeters: 500, WindowSecs: 600,
	}, 600)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, -37.8185, got[0].Latitude, 1e-9)
}

func TestDeleteOlderThan(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertPositions(ctx, []models.VehiclePosition{
		{VehicleID: "a", RouteType: models.RouteTypeBus, Latitude: 0, Longitude: 0, Timestamp: 100},
		{VehicleID: "b", RouteType: models.RouteTypeBus, Latitude: 0, Longitude: 0, Timestamp: 900},
	}))

	n, err := repo.DeleteOlderThan(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRouteTypeLookup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertRoute(ctx, "route-96", "96", "East Brunswick - St Kilda Beach", models.RouteTypeTram))

	rt, err := repo.RouteType(ctx, "route-96")
	require.NoError(t, err)
	assert.Equal(t, models.RouteTypeTram, rt)

	rt, err = repo.RouteType(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, models.RouteTypeOther, rt)
}
