package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/presence-cli/internal/model"
	"github.com/sells-group/presence-cli/internal/search"
	"github.com/sells-group/presence-cli/pkg/places"
	"github.com/sells-group/presence-cli/pkg/places/mocks"
)

func testRouter(client *mocks.MockClient) http.Handler {
	svc := search.New(client, nil, search.Config{})
	return newRouter(svc, []string{"*"})
}

func doGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	rec := doGet(t, testRouter(&mocks.MockClient{}), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_Search(t *testing.T) {
	client := &mocks.MockClient{}
	client.On("Geocode", mock.Anything, "Austin, TX").Return(&places.GeocodeResponse{
		Status: places.StatusOK,
		Results: []places.GeocodeResult{
			{Geometry: places.Geometry{Location: places.LatLng{Lat: 30.2672, Lng: -97.7431}}},
		},
	}, nil)
	client.On("NearbySearch", mock.Anything, mock.Anything).Return(&places.NearbySearchResponse{
		Status:  places.StatusOK,
		Results: []places.Place{{PlaceID: "ChIJ-tavern", Name: "South Side Tavern"}},
	}, nil)
	client.On("PlaceDetails", mock.Anything, "ChIJ-tavern", mock.Anything).Return(&places.PlaceDetailsResponse{
		Status: places.StatusOK,
		Result: places.Place{
			PlaceID:          "ChIJ-tavern",
			Name:             "South Side Tavern",
			FormattedAddress: "800 Congress Ave, Austin, TX 78701",
			Geometry:         &places.Geometry{Location: places.LatLng{Lat: 30.268, Lng: -97.742}},
			BusinessStatus:   places.BusinessStatusOperational,
		},
	}, nil)

	rec := doGet(t, testRouter(client), "/api/businesses/search?location=Austin%2C+TX&radius=1000")
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.TotalCount)
	require.Len(t, result.Businesses, 1)
	assert.Equal(t, "South Side Tavern", result.Businesses[0].Name)
	assert.Equal(t, model.WebsiteNone, result.Businesses[0].WebsiteType)
}

func TestRouter_Search_MissingLocation(t *testing.T) {
	rec := doGet(t, testRouter(&mocks.MockClient{}), "/api/businesses/search")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "location")
}

func TestRouter_Search_BadWebsiteType(t *testing.T) {
	rec := doGet(t, testRouter(&mocks.MockClient{}), "/api/businesses/search?location=Austin&website_type=myspace")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Search_BadExcludeWebsiteType(t *testing.T) {
	// A bad exclude value is the caller's mistake, not an upstream failure.
	rec := doGet(t, testRouter(&mocks.MockClient{}), "/api/businesses/search?location=Austin&exclude_website_types=myspace")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "myspace")
}

func TestRouter_Search_GeocodeFailure(t *testing.T) {
	client := &mocks.MockClient{}
	client.On("Geocode", mock.Anything, "nowhere").Return(&places.GeocodeResponse{
		Status: places.StatusZeroResults,
	}, nil)

	rec := doGet(t, testRouter(client), "/api/businesses/search?location=nowhere")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "nowhere")
}

func TestRouter_Analyze(t *testing.T) {
	client := &mocks.MockClient{}
	client.On("PlaceDetails", mock.Anything, "ChIJ-tavern", mock.Anything).Return(&places.PlaceDetailsResponse{
		Status: places.StatusOK,
		Result: places.Place{
			PlaceID:          "ChIJ-tavern",
			Name:             "South Side Tavern",
			FormattedAddress: "800 Congress Ave",
			Geometry:         &places.Geometry{Location: places.LatLng{Lat: 30.268, Lng: -97.742}},
			Website:          "https://www.yelp.com/biz/south-side-tavern",
			BusinessStatus:   places.BusinessStatusOperational,
		},
	}, nil)

	rec := doGet(t, testRouter(client), "/api/businesses/ChIJ-tavern")
	require.Equal(t, http.StatusOK, rec.Code)

	var biz model.Business
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &biz))
	assert.Equal(t, model.WebsiteYelp, biz.WebsiteType)
	assert.True(t, biz.Improvements.NeedsWebsite)
}

func TestRouter_Analyze_NotFound(t *testing.T) {
	client := &mocks.MockClient{}
	client.On("PlaceDetails", mock.Anything, "ChIJ-gone", mock.Anything).Return(&places.PlaceDetailsResponse{
		Status: places.StatusNotFound,
	}, nil)

	rec := doGet(t, testRouter(client), "/api/businesses/ChIJ-gone")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestParseSearchParams(t *testing.T) {
	q, err := url.ParseQuery("location=Austin%2C+TX&radius=2500&limit=10&skip=20&categories=restaurant,%20bar&website_type=none&exclude_website_types=legitimate,other")
	require.NoError(t, err)

	params, perr := parseSearchParams(q)
	require.NoError(t, perr)

	assert.Equal(t, "Austin, TX", params.Location)
	assert.Equal(t, 2500, params.Radius)
	assert.Equal(t, 10, params.Limit)
	assert.Equal(t, 20, params.Skip)
	assert.Equal(t, []string{"restaurant", "bar"}, params.Categories)
	assert.Equal(t, model.WebsiteNone, params.WebsiteType)
	assert.Equal(t, []model.WebsiteType{model.WebsiteLegitimate, model.WebsiteOther}, params.ExcludeWebsiteTypes)
}

func TestParseSearchParams_Invalid(t *testing.T) {
	for name, query := range map[string]string{
		"missing location": "radius=100",
		"blank location":   "location=%20%20",
		"bad radius":       "location=Austin&radius=abc",
		"negative limit":   "location=Austin&limit=-5",
		"bad website type": "location=Austin&website_type=geocities",
		"bad exclude type": "location=Austin&exclude_website_types=legitimate,geocities",
	} {
		t.Run(name, func(t *testing.T) {
			q, err := url.ParseQuery(query)
			require.NoError(t, err)
			_, perr := parseSearchParams(q)
			assert.Error(t, perr)
		})
	}
}
