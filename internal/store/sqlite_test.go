package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/presence-cli/pkg/places"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_GeocodeCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Miss before set.
	got, err := s.GetCachedGeocode(ctx, "Austin, TX")
	require.NoError(t, err)
	assert.Nil(t, got)

	coords := places.LatLng{Lat: 30.2672, Lng: -97.7431}
	require.NoError(t, s.SetCachedGeocode(ctx, "Austin, TX", coords, time.Hour))

	got, err = s.GetCachedGeocode(ctx, "Austin, TX")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 30.2672, got.Lat, 0.0001)

	// Keying is case- and whitespace-insensitive.
	got, err = s.GetCachedGeocode(ctx, "  austin,   tx ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, -97.7431, got.Lng, 0.0001)
}

func TestSQLiteStore_GeocodeCache_Upsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetCachedGeocode(ctx, "Austin, TX", places.LatLng{Lat: 1, Lng: 1}, time.Hour))
	require.NoError(t, s.SetCachedGeocode(ctx, "Austin, TX", places.LatLng{Lat: 2, Lng: 2}, time.Hour))

	got, err := s.GetCachedGeocode(ctx, "Austin, TX")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 2.0, got.Lat, 0.0001)
}

func TestSQLiteStore_GeocodeCache_Expired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetCachedGeocode(ctx, "Austin, TX", places.LatLng{Lat: 1, Lng: 1}, -time.Minute))

	got, err := s.GetCachedGeocode(ctx, "Austin, TX")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_PlaceCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.GetCachedDetails(ctx, "ChIJ-tavern")
	require.NoError(t, err)
	assert.Nil(t, got)

	place := &places.Place{
		PlaceID:          "ChIJ-tavern",
		Name:             "South Side Tavern",
		FormattedAddress: "800 Congress Ave, Austin, TX 78701",
		Website:          "https://southsidetavern.com",
		Geometry:         &places.Geometry{Location: places.LatLng{Lat: 30.268, Lng: -97.742}},
	}
	require.NoError(t, s.SetCachedDetails(ctx, place.PlaceID, place, time.Hour))

	got, err = s.GetCachedDetails(ctx, "ChIJ-tavern")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "South Side Tavern", got.Name)
	assert.Equal(t, "https://southsidetavern.com", got.Website)
	require.NotNil(t, got.Geometry)
	assert.InDelta(t, 30.268, got.Geometry.Location.Lat, 0.0001)
}

func TestSQLiteStore_DeleteExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetCachedGeocode(ctx, "expired", places.LatLng{Lat: 1, Lng: 1}, -time.Minute))
	require.NoError(t, s.SetCachedGeocode(ctx, "fresh", places.LatLng{Lat: 2, Lng: 2}, time.Hour))
	require.NoError(t, s.SetCachedDetails(ctx, "ChIJ-old", &places.Place{PlaceID: "ChIJ-old"}, -time.Minute))

	n, err := s.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.GetCachedGeocode(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestNormalizeLocation(t *testing.T) {
	assert.Equal(t, "austin, tx", normalizeLocation("Austin, TX"))
	assert.Equal(t, "austin, tx", normalizeLocation("  AUSTIN,   TX  "))
	assert.Equal(t, "", normalizeLocation("   "))
}
