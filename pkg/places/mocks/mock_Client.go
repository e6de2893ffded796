// Package mocks provides test doubles for the places client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	places "github.com/sells-group/presence-cli/pkg/places"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Geocode provides a mock function with given fields: ctx, address
func (_m *MockClient) Geocode(ctx context.Context, address string) (*places.GeocodeResponse, error) {
	ret := _m.Called(ctx, address)

	if len(ret) == 0 {
		panic("no return value specified for Geocode")
	}

	var r0 *places.GeocodeResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*places.GeocodeResponse, error)); ok {
		return rf(ctx, address)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *places.GeocodeResponse); ok {
		r0 = rf(ctx, address)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*places.GeocodeResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, address)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NearbySearch provides a mock function with given fields: ctx, req
func (_m *MockClient) NearbySearch(ctx context.Context, req places.NearbySearchRequest) (*places.NearbySearchResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for NearbySearch")
	}

	var r0 *places.NearbySearchResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, places.NearbySearchRequest) (*places.NearbySearchResponse, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, places.NearbySearchRequest) *places.NearbySearchResponse); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*places.NearbySearchResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, places.NearbySearchRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// PlaceDetails provides a mock function with given fields: ctx, placeID, fields
func (_m *MockClient) PlaceDetails(ctx context.Context, placeID string, fields []string) (*places.PlaceDetailsResponse, error) {
	ret := _m.Called(ctx, placeID, fields)

	if len(ret) == 0 {
		panic("no return value specified for PlaceDetails")
	}

	var r0 *places.PlaceDetailsResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, []string) (*places.PlaceDetailsResponse, error)); ok {
		return rf(ctx, placeID, fields)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, []string) *places.PlaceDetailsResponse); ok {
		r0 = rf(ctx, placeID, fields)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*places.PlaceDetailsResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, []string) error); ok {
		r1 = rf(ctx, placeID, fields)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
