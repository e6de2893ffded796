// Package places is a client for the Google Maps web service APIs used by the
// search pipeline: Geocoding, Places Nearby Search, and Place Details. The
// client handles transport, auth, and rate limiting; interpreting the API's
// status strings is left to the caller, since "ZERO_RESULTS" is a valid
// outcome for some callers and an error for others.
package places

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://maps.googleapis.com"

// Client performs Google Maps API operations.
type Client interface {
	Geocode(ctx context.Context, address string) (*GeocodeResponse, error)
	NearbySearch(ctx context.Context, req NearbySearchRequest) (*NearbySearchResponse, error)
	PlaceDetails(ctx context.Context, placeID string, fields []string) (*PlaceDetailsResponse, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outgoing API calls at qps queries per second. All three
// operations share the one budget, so concurrent searches cannot multiply
// quota usage.
func WithRateLimit(qps float64) Option {
	return func(c *httpClient) {
		if qps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(qps), 1)
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Google Maps API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Geocode resolves an address string to coordinates.
func (c *httpClient) Geocode(ctx context.Context, address string) (*GeocodeResponse, error) {
	params := url.Values{
		"address": {address},
		"key":     {c.apiKey},
	}

	var result GeocodeResponse
	if err := c.get(ctx, "/maps/api/geocode/json", params, &result); err != nil {
		return nil, eris.Wrap(err, "places: geocode")
	}
	return &result, nil
}

// NearbySearch finds place stubs around a point.
func (c *httpClient) NearbySearch(ctx context.Context, req NearbySearchRequest) (*NearbySearchResponse, error) {
	params := url.Values{
		"location": {formatLatLng(req.Location)},
		"radius":   {strconv.Itoa(req.Radius)},
		"key":      {c.apiKey},
	}
	if req.Type != "" {
		params.Set("type", req.Type)
	}
	if req.Keyword != "" {
		params.Set("keyword", req.Keyword)
	}
	if req.PageToken != "" {
		params.Set("pagetoken", req.PageToken)
	}

	var result NearbySearchResponse
	if err := c.get(ctx, "/maps/api/place/nearbysearch/json", params, &result); err != nil {
		return nil, eris.Wrap(err, "places: nearby search")
	}
	return &result, nil
}

// PlaceDetails fetches the full record for a single place. An empty fields
// slice requests DetailFields.
func (c *httpClient) PlaceDetails(ctx context.Context, placeID string, fields []string) (*PlaceDetailsResponse, error) {
	if len(fields) == 0 {
		fields = DetailFields
	}
	params := url.Values{
		"place_id": {placeID},
		"fields":   {strings.Join(fields, ",")},
		"key":      {c.apiKey},
	}

	var result PlaceDetailsResponse
	if err := c.get(ctx, "/maps/api/place/details/json", params, &result); err != nil {
		return nil, eris.Wrapf(err, "places: details %s", placeID)
	}
	return &result, nil
}

// get issues a rate-limited GET and decodes the JSON envelope into out.
func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}

func formatLatLng(ll LatLng) string {
	return strconv.FormatFloat(ll.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(ll.Lng, 'f', -1, 64)
}
