package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/presence-cli/pkg/places"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	id         TEXT PRIMARY KEY,
	location   TEXT NOT NULL UNIQUE,
	lat        REAL NOT NULL,
	lng        REAL NOT NULL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS place_cache (
	id         TEXT PRIMARY KEY,
	place_id   TEXT NOT NULL UNIQUE,
	place      TEXT NOT NULL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_geocode_cache_expires_at ON geocode_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_place_cache_expires_at ON place_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetCachedGeocode(ctx context.Context, location string) (*places.LatLng, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT lat, lng FROM geocode_cache
		 WHERE location = ? AND expires_at > ?`,
		normalizeLocation(location), time.Now().UTC(),
	)

	var coords places.LatLng
	err := row.Scan(&coords.Lat, &coords.Lng)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached geocode")
	}
	return &coords, nil
}

func (s *SQLiteStore) SetCachedGeocode(ctx context.Context, location string, coords places.LatLng, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO geocode_cache (id, location, lat, lng, cached_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(location) DO UPDATE SET lat = excluded.lat, lng = excluded.lng,
		 cached_at = excluded.cached_at, expires_at = excluded.expires_at`,
		uuid.New().String(), normalizeLocation(location), coords.Lat, coords.Lng, now, now.Add(ttl),
	)
	return eris.Wrap(err, "sqlite: set cached geocode")
}

func (s *SQLiteStore) GetCachedDetails(ctx context.Context, placeID string) (*places.Place, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT place FROM place_cache
		 WHERE place_id = ? AND expires_at > ?`,
		placeID, time.Now().UTC(),
	)

	var placeJSON string
	err := row.Scan(&placeJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached details")
	}

	var place places.Place
	if err := json.Unmarshal([]byte(placeJSON), &place); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached place")
	}
	return &place, nil
}

func (s *SQLiteStore) SetCachedDetails(ctx context.Context, placeID string, place *places.Place, ttl time.Duration) error {
	placeJSON, err := json.Marshal(place)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal place")
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO place_cache (id, place_id, place, cached_at, expires_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(place_id) DO UPDATE SET place = excluded.place,
		 cached_at = excluded.cached_at, expires_at = excluded.expires_at`,
		uuid.New().String(), placeID, string(placeJSON), now, now.Add(ttl),
	)
	return eris.Wrap(err, "sqlite: set cached details")
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int, error) {
	var total int64
	for _, table := range []string{"geocode_cache", "place_cache"} {
		res, err := s.db.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE expires_at <= ?`, time.Now().UTC())
		if err != nil {
			return int(total), eris.Wrapf(err, "sqlite: delete expired %s", table)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return int(total), eris.Wrap(err, "sqlite: rows affected")
		}
		total += n
	}
	return int(total), nil
}

// normalizeLocation canonicalizes a location string for cache keying so
// "Austin, TX" and "austin,  tx" hit the same row.
func normalizeLocation(location string) string {
	return strings.Join(strings.Fields(strings.ToLower(location)), " ")
}
