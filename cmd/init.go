package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/presence-cli/internal/search"
	"github.com/sells-group/presence-cli/internal/store"
	"github.com/sells-group/presence-cli/pkg/places"
)

// env bundles the wired-up services shared by the commands.
type env struct {
	Search *search.Service
	Store  store.Store
}

// Close releases the environment's resources.
func (e *env) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}
}

// initEnv builds the places client, the response cache, and the search
// service from the loaded config.
func initEnv(ctx context.Context) (*env, error) {
	if cfg.Google.APIKey == "" {
		return nil, eris.New("google.api_key is not configured (set PRESENCE_GOOGLE_API_KEY or config.yaml)")
	}

	client := places.NewClient(cfg.Google.APIKey,
		places.WithRateLimit(cfg.Google.RateLimit),
	)

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	svc := search.New(client, st, search.Config{
		DefaultRadius:    cfg.Search.DefaultRadius,
		DefaultLimit:     cfg.Search.DefaultLimit,
		OversampleFactor: cfg.Search.OversampleFactor,
		CacheTTL:         time.Duration(cfg.Search.CacheTTLHours) * time.Hour,
	})

	return &env{Search: svc, Store: st}, nil
}

// openStore opens the configured cache backend. Driver "none" (or empty)
// disables caching.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "", "none":
		return nil, nil
	case "sqlite":
		st, err := store.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, err
		}
		return st, nil
	}
	return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
}
