package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/presence-cli/pkg/places"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it in
// tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	location   TEXT NOT NULL UNIQUE,
	lat        DOUBLE PRECISION NOT NULL,
	lng        DOUBLE PRECISION NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS place_cache (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	place_id   TEXT NOT NULL UNIQUE,
	place      JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_geocode_cache_expires_at ON geocode_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_place_cache_expires_at ON place_cache(expires_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetCachedGeocode(ctx context.Context, location string) (*places.LatLng, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT lat, lng FROM geocode_cache WHERE location = $1 AND expires_at > now()`,
		normalizeLocation(location),
	)

	var coords places.LatLng
	err := row.Scan(&coords.Lat, &coords.Lng)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get cached geocode")
	}
	return &coords, nil
}

func (s *PostgresStore) SetCachedGeocode(ctx context.Context, location string, coords places.LatLng, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO geocode_cache (id, location, lat, lng, cached_at, expires_at) VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (location) DO UPDATE SET lat = EXCLUDED.lat, lng = EXCLUDED.lng,
		 cached_at = EXCLUDED.cached_at, expires_at = EXCLUDED.expires_at`,
		uuid.New().String(), normalizeLocation(location), coords.Lat, coords.Lng, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: set cached geocode")
}

func (s *PostgresStore) GetCachedDetails(ctx context.Context, placeID string) (*places.Place, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT place FROM place_cache WHERE place_id = $1 AND expires_at > now()`,
		placeID,
	)

	var placeJSON []byte
	err := row.Scan(&placeJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get cached details")
	}

	var place places.Place
	if err := json.Unmarshal(placeJSON, &place); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached place")
	}
	return &place, nil
}

func (s *PostgresStore) SetCachedDetails(ctx context.Context, placeID string, place *places.Place, ttl time.Duration) error {
	placeJSON, err := json.Marshal(place)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal place")
	}

	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO place_cache (id, place_id, place, cached_at, expires_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (place_id) DO UPDATE SET place = EXCLUDED.place,
		 cached_at = EXCLUDED.cached_at, expires_at = EXCLUDED.expires_at`,
		uuid.New().String(), placeID, placeJSON, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: set cached details")
}

func (s *PostgresStore) DeleteExpired(ctx context.Context) (int, error) {
	var total int64
	for _, table := range []string{"geocode_cache", "place_cache"} {
		tag, err := s.pool.Exec(ctx, `DELETE FROM `+table+` WHERE expires_at <= now()`)
		if err != nil {
			return int(total), eris.Wrapf(err, "postgres: delete expired %s", table)
		}
		total += tag.RowsAffected()
	}
	return int(total), nil
}
