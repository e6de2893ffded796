package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/presence-cli/internal/model"
	"github.com/sells-group/presence-cli/internal/search"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(e.Search, cfg.Server.AllowedOrigins),
		}

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		// Graceful shutdown
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		// Sweep expired cache rows hourly while the server runs.
		if e.Store != nil {
			g.Go(func() error {
				ticker := time.NewTicker(time.Hour)
				defer ticker.Stop()
				for {
					select {
					case <-gctx.Done():
						return nil
					case <-ticker.C:
						n, err := e.Store.DeleteExpired(gctx)
						if err != nil {
							zap.L().Warn("cache sweep failed", zap.Error(err))
							continue
						}
						if n > 0 {
							zap.L().Info("cache sweep", zap.Int("deleted", n))
						}
					}
				}
			})
		}

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the dashboard-facing API.
func newRouter(svc *search.Service, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/businesses", func(r chi.Router) {
		r.Get("/search", handleSearch(svc))
		r.Get("/{placeID}", handleAnalyze(svc))
	})

	return r
}

func handleSearch(svc *search.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parseSearchParams(r.URL.Query())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := svc.Search(r.Context(), params)
		if err != nil {
			status := errStatus(err)
			zap.L().Warn("search request failed",
				zap.String("location", params.Location),
				zap.Int("status", status),
				zap.Error(err),
			)
			writeError(w, status, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func handleAnalyze(svc *search.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		placeID := chi.URLParam(r, "placeID")

		biz, err := svc.AnalyzeBusiness(r.Context(), placeID)
		if err != nil {
			status := errStatus(err)
			zap.L().Warn("analyze request failed",
				zap.String("place_id", placeID),
				zap.Int("status", status),
				zap.Error(err),
			)
			writeError(w, status, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, biz)
	}
}

// parseSearchParams maps query string values onto SearchParams. Validation
// beyond basic parsing happens in the search service.
func parseSearchParams(q map[string][]string) (model.SearchParams, error) {
	get := func(key string) string {
		if vals := q[key]; len(vals) > 0 {
			return vals[0]
		}
		return ""
	}

	params := model.SearchParams{
		Location:    strings.TrimSpace(get("location")),
		WebsiteType: model.WebsiteType(get("website_type")),
	}
	if params.Location == "" {
		return params, eris.New("location query parameter is required")
	}
	if params.WebsiteType != "" && !params.WebsiteType.Valid() {
		return params, eris.Errorf("unknown website_type %q", params.WebsiteType)
	}

	for key, dst := range map[string]*int{
		"radius": &params.Radius,
		"limit":  &params.Limit,
		"skip":   &params.Skip,
	} {
		raw := get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return params, eris.Errorf("%s must be a non-negative integer", key)
		}
		*dst = n
	}

	if raw := get("categories"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				params.Categories = append(params.Categories, c)
			}
		}
	}
	if raw := get("exclude_website_types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				wt := model.WebsiteType(t)
				if !wt.Valid() {
					return params, eris.Errorf("unknown website type %q in exclude_website_types", wt)
				}
				params.ExcludeWebsiteTypes = append(params.ExcludeWebsiteTypes, wt)
			}
		}
	}

	return params, nil
}

// errStatus maps pipeline errors onto HTTP statuses: unresolvable locations
// are the caller's problem, unknown place ids are 404s, anything else is an
// upstream failure.
func errStatus(err error) int {
	var geoErr *search.GeocodeError
	switch {
	case errors.As(err, &geoErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, search.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
