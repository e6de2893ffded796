package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/presence-cli/pkg/places"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_GetCachedGeocode_Miss(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT lat, lng FROM geocode_cache`).
		WithArgs("austin, tx").
		WillReturnError(pgx.ErrNoRows)

	got, err := s.GetCachedGeocode(context.Background(), "Austin, TX")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCachedGeocode_Hit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT lat, lng FROM geocode_cache`).
		WithArgs("austin, tx").
		WillReturnRows(pgxmock.NewRows([]string{"lat", "lng"}).AddRow(30.2672, -97.7431))

	got, err := s.GetCachedGeocode(context.Background(), "Austin, TX")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 30.2672, got.Lat, 0.0001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetCachedGeocode(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO geocode_cache`).
		WithArgs(pgxmock.AnyArg(), "austin, tx", 30.2672, -97.7431, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SetCachedGeocode(context.Background(), "Austin, TX", places.LatLng{Lat: 30.2672, Lng: -97.7431}, time.Hour)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCachedDetails_Hit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	placeJSON := []byte(`{"place_id":"ChIJ-tavern","name":"South Side Tavern","website":"https://southsidetavern.com"}`)
	mock.ExpectQuery(`SELECT place FROM place_cache`).
		WithArgs("ChIJ-tavern").
		WillReturnRows(pgxmock.NewRows([]string{"place"}).AddRow(placeJSON))

	got, err := s.GetCachedDetails(context.Background(), "ChIJ-tavern")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "South Side Tavern", got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetCachedDetails(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO place_cache`).
		WithArgs(pgxmock.AnyArg(), "ChIJ-tavern", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SetCachedDetails(context.Background(), "ChIJ-tavern", &places.Place{PlaceID: "ChIJ-tavern"}, time.Hour)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteExpired(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM geocode_cache`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(`DELETE FROM place_cache`).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	n, err := s.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS geocode_cache`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
