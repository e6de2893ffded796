// Package search implements the business discovery pipeline: geocode the
// requested location, sweep expanding radius tiers through the vendor's
// nearby search, dedupe, fetch per-place detail, classify, filter, and
// paginate. One call, one linear pass, no state shared across requests.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/presence-cli/internal/classify"
	"github.com/sells-group/presence-cli/internal/model"
	"github.com/sells-group/presence-cli/internal/store"
	"github.com/sells-group/presence-cli/pkg/places"
)

// GeocodeError indicates the requested location could not be resolved to
// coordinates. It is fatal for the request and never retried.
type GeocodeError struct {
	Location string
	Status   string
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("could not geocode %q (status %s)", e.Location, e.Status)
}

// ErrNotFound indicates the vendor does not recognize the requested place id.
var ErrNotFound = eris.New("place not found")

// Config holds search defaults and tuning.
type Config struct {
	DefaultRadius int `yaml:"default_radius" mapstructure:"default_radius"`
	DefaultLimit  int `yaml:"default_limit" mapstructure:"default_limit"`
	// OversampleFactor controls how many unique places are collected per
	// requested result, so the page survives status and website-type
	// filtering.
	OversampleFactor int `yaml:"oversample_factor" mapstructure:"oversample_factor"`
	// CacheTTL bounds how long geocode and detail responses are reused.
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

func (c Config) withDefaults() Config {
	if c.DefaultRadius <= 0 {
		c.DefaultRadius = 5000
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 20
	}
	if c.OversampleFactor <= 0 {
		c.OversampleFactor = 3
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 24 * time.Hour
	}
	return c
}

// Service runs searches against the vendor API. The cache is optional; a nil
// cache means every call goes to the vendor.
type Service struct {
	places places.Client
	cache  store.Store
	cfg    Config
}

// New creates a Service. cache may be nil.
func New(client places.Client, cache store.Store, cfg Config) *Service {
	return &Service{
		places: client,
		cache:  cache,
		cfg:    cfg.withDefaults(),
	}
}

// Search finds businesses near a location and classifies their web presence.
// TotalCount on the result is the unique raw place count before filtering.
func (s *Service) Search(ctx context.Context, params model.SearchParams) (*model.SearchResult, error) {
	params, err := s.normalizeParams(params)
	if err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("location", params.Location))

	coords, err := s.geocodeLocation(ctx, params.Location)
	if err != nil {
		return nil, err
	}

	stubs := s.collectPlaces(ctx, log, coords, params)
	log.Info("collected unique places",
		zap.Int("count", len(stubs)),
		zap.Int("radius", params.Radius),
	)

	detailed := s.fetchDetails(ctx, log, stubs)

	businesses, err := s.classifyAndFilter(detailed, params)
	if err != nil {
		return nil, err
	}

	page, hasMore := paginate(businesses, params.Skip, params.Limit)
	return &model.SearchResult{
		Businesses: page,
		TotalCount: len(stubs),
		HasMore:    hasMore,
	}, nil
}

// AnalyzeBusiness fetches and classifies a single place. Unlike Search,
// a detail-fetch failure here is fatal.
func (s *Service) AnalyzeBusiness(ctx context.Context, placeID string) (*model.Business, error) {
	if placeID == "" {
		return nil, eris.New("search: place id is required")
	}

	place, err := s.placeDetails(ctx, placeID)
	if err != nil {
		return nil, err
	}
	return classify.MapPlaceToBusiness(place, "")
}

func (s *Service) normalizeParams(params model.SearchParams) (model.SearchParams, error) {
	if strings.TrimSpace(params.Location) == "" {
		return params, eris.New("search: location is required")
	}
	if params.WebsiteType != "" && !params.WebsiteType.Valid() {
		return params, eris.Errorf("search: unknown website type %q", params.WebsiteType)
	}
	for _, t := range params.ExcludeWebsiteTypes {
		if !t.Valid() {
			return params, eris.Errorf("search: unknown website type %q in exclude list", t)
		}
	}
	if params.Radius <= 0 {
		params.Radius = s.cfg.DefaultRadius
	}
	if params.Limit <= 0 {
		params.Limit = s.cfg.DefaultLimit
	}
	if params.Skip < 0 {
		params.Skip = 0
	}
	return params, nil
}

// geocodeLocation resolves the location string, consulting the cache first.
func (s *Service) geocodeLocation(ctx context.Context, location string) (places.LatLng, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCachedGeocode(ctx, location)
		if err != nil {
			zap.L().Debug("geocode cache read failed", zap.Error(err))
		}
		if cached != nil {
			return *cached, nil
		}
	}

	resp, err := s.places.Geocode(ctx, location)
	if err != nil {
		return places.LatLng{}, eris.Wrap(err, "search: geocode")
	}
	if resp.Status != places.StatusOK || len(resp.Results) == 0 {
		return places.LatLng{}, &GeocodeError{Location: location, Status: resp.Status}
	}

	coords := resp.Results[0].Geometry.Location
	if s.cache != nil {
		if err := s.cache.SetCachedGeocode(ctx, location, coords, s.cfg.CacheTTL); err != nil {
			zap.L().Debug("geocode cache write failed", zap.Error(err))
		}
	}
	return coords, nil
}

// radiusTiers derives the progressive widening schedule for a requested
// radius. The vendor caps nearby search at ~60 results per query regardless
// of radius, so large areas are swept from the center outward and merged.
func radiusTiers(radius int) []int {
	switch {
	case radius <= 2000:
		return []int{radius}
	case radius <= 10000:
		return []int{min(2000, radius/2), radius}
	default:
		return []int{2000, 5000, 10000, radius}
	}
}

// collectPlaces sweeps the radius tiers, deduplicating by place id. The
// first occurrence of an id wins; the sweep stops once the oversampling
// target is reached. Per-tier failures are logged and skipped, never fatal.
func (s *Service) collectPlaces(ctx context.Context, log *zap.Logger, coords places.LatLng, params model.SearchParams) []places.Place {
	target := params.Limit * s.cfg.OversampleFactor

	var category, keyword string
	if len(params.Categories) == 1 {
		category = params.Categories[0]
	} else if len(params.Categories) > 1 {
		keyword = strings.Join(params.Categories, " ")
	}

	seen := make(map[string]struct{})
	var unique []places.Place

	for _, radius := range radiusTiers(params.Radius) {
		if ctx.Err() != nil {
			break
		}

		resp, err := s.places.NearbySearch(ctx, places.NearbySearchRequest{
			Location: coords,
			Radius:   radius,
			Type:     category,
			Keyword:  keyword,
		})
		if err != nil {
			log.Warn("nearby search tier failed", zap.Int("radius", radius), zap.Error(err))
			continue
		}
		if resp.Status == places.StatusZeroResults {
			continue
		}
		if resp.Status != places.StatusOK {
			log.Warn("nearby search tier returned non-ok status",
				zap.Int("radius", radius),
				zap.String("status", resp.Status),
			)
			continue
		}

		for _, p := range resp.Results {
			if _, dup := seen[p.PlaceID]; dup {
				continue
			}
			seen[p.PlaceID] = struct{}{}
			unique = append(unique, p)
		}

		if len(unique) >= target {
			break
		}
	}

	if len(unique) > target {
		unique = unique[:target]
	}
	return unique
}

// fetchDetails resolves each stub to a full place record, sequentially. A
// failure for one place never aborts the batch.
func (s *Service) fetchDetails(ctx context.Context, log *zap.Logger, stubs []places.Place) []*places.Place {
	detailed := make([]*places.Place, 0, len(stubs))
	for _, stub := range stubs {
		if ctx.Err() != nil {
			break
		}
		place, err := s.placeDetails(ctx, stub.PlaceID)
		if err != nil {
			log.Warn("detail fetch failed, skipping place",
				zap.String("place_id", stub.PlaceID),
				zap.Error(err),
			)
			continue
		}
		detailed = append(detailed, place)
	}
	return detailed
}

// placeDetails fetches one place's full record, consulting the cache first.
func (s *Service) placeDetails(ctx context.Context, placeID string) (*places.Place, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCachedDetails(ctx, placeID)
		if err != nil {
			zap.L().Debug("detail cache read failed", zap.Error(err))
		}
		if cached != nil {
			return cached, nil
		}
	}

	resp, err := s.places.PlaceDetails(ctx, placeID, places.DetailFields)
	if err != nil {
		return nil, err
	}
	if resp.Status == places.StatusNotFound {
		return nil, eris.Wrapf(ErrNotFound, "search: details for %s", placeID)
	}
	if resp.Status != places.StatusOK {
		return nil, eris.Errorf("search: details for %s returned status %s", placeID, resp.Status)
	}

	place := resp.Result
	if s.cache != nil {
		if err := s.cache.SetCachedDetails(ctx, placeID, &place, s.cfg.CacheTTL); err != nil {
			zap.L().Debug("detail cache write failed", zap.Error(err))
		}
	}
	return &place, nil
}

// classifyAndFilter maps detailed places through the classifier, then drops
// permanently closed businesses and applies the caller's website-type
// filters. With no filter given every classified business passes.
func (s *Service) classifyAndFilter(detailed []*places.Place, params model.SearchParams) ([]model.Business, error) {
	filtered := make([]model.Business, 0, len(detailed))
	for _, place := range detailed {
		biz, err := classify.MapPlaceToBusiness(place, params.Location)
		if err != nil {
			return nil, err
		}
		if biz.BusinessStatus == model.StatusClosedPermanently {
			continue
		}
		if params.WebsiteType != "" {
			if biz.WebsiteType != params.WebsiteType {
				continue
			}
		} else if excluded(biz.WebsiteType, params.ExcludeWebsiteTypes) {
			continue
		}
		filtered = append(filtered, *biz)
	}
	return filtered, nil
}

func excluded(t model.WebsiteType, excludes []model.WebsiteType) bool {
	for _, e := range excludes {
		if t == e {
			return true
		}
	}
	return false
}

// paginate slices [skip, skip+limit) out of the filtered list.
func paginate(businesses []model.Business, skip, limit int) ([]model.Business, bool) {
	hasMore := len(businesses) > skip+limit

	if skip >= len(businesses) {
		return []model.Business{}, hasMore
	}
	end := skip + limit
	if end > len(businesses) {
		end = len(businesses)
	}
	return businesses[skip:end], hasMore
}
