// Package store caches vendor API responses (geocode results and place
// details) with a TTL, so repeated dashboard searches over the same area do
// not burn API quota. Business records themselves are never persisted; only
// raw vendor responses are cached.
package store

import (
	"context"
	"time"

	"github.com/sells-group/presence-cli/pkg/places"
)

// Store is the response cache. Reads return (nil, nil) on a miss or an
// expired entry; callers treat any read error as a miss too, since the cache
// is an optimization and never a failure source.
type Store interface {
	GetCachedGeocode(ctx context.Context, location string) (*places.LatLng, error)
	SetCachedGeocode(ctx context.Context, location string, coords places.LatLng, ttl time.Duration) error

	GetCachedDetails(ctx context.Context, placeID string) (*places.Place, error)
	SetCachedDetails(ctx context.Context, placeID string, place *places.Place, ttl time.Duration) error

	// DeleteExpired removes expired rows from both caches and reports how
	// many were deleted.
	DeleteExpired(ctx context.Context) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}
