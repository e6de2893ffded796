// Package model defines the normalized business records produced by the
// search pipeline and the parameters accepted from callers.
package model

import "time"

// WebsiteType classifies a business's web presence. Absence from the known
// platform-domain lists is treated as evidence of a self-owned site; that is
// a heuristic, not a guarantee.
type WebsiteType string

const (
	// WebsiteNone means the place reports no website at all.
	WebsiteNone WebsiteType = "none"
	// WebsiteFacebook means the listed website is a Facebook page.
	WebsiteFacebook WebsiteType = "facebook"
	// WebsiteYelp means the listed website is a Yelp listing.
	WebsiteYelp WebsiteType = "yelp"
	// WebsiteOther means the website lives on some third-party platform
	// (directory, site builder, delivery service, review site).
	WebsiteOther WebsiteType = "other"
	// WebsiteLegitimate means the website appears to be self-owned.
	WebsiteLegitimate WebsiteType = "legitimate"
)

// Valid reports whether t is one of the defined website types.
func (t WebsiteType) Valid() bool {
	switch t {
	case WebsiteNone, WebsiteFacebook, WebsiteYelp, WebsiteOther, WebsiteLegitimate:
		return true
	}
	return false
}

// BusinessStatus is the operational status reported by the vendor.
type BusinessStatus string

const (
	StatusOperational       BusinessStatus = "OPERATIONAL"
	StatusClosedTemporarily BusinessStatus = "CLOSED_TEMPORARILY"
	StatusClosedPermanently BusinessStatus = "CLOSED_PERMANENTLY"
	StatusUnknown           BusinessStatus = "unknown"
)

// Location is a geographic coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SocialProfiles holds recognized social/listing links for a business. For
// the keyed platforms the last URL seen wins; unrecognized platforms
// accumulate in Other.
type SocialProfiles struct {
	Facebook  string   `json:"facebook,omitempty"`
	Instagram string   `json:"instagram,omitempty"`
	Yelp      string   `json:"yelp,omitempty"`
	Other     []string `json:"other,omitempty"`
}

// Empty reports whether no profile of any kind was found.
func (p SocialProfiles) Empty() bool {
	return p.Facebook == "" && p.Instagram == "" && p.Yelp == "" && len(p.Other) == 0
}

// ImprovementFlags are data-gap signals used to prioritize outreach.
type ImprovementFlags struct {
	NeedsPhone bool `json:"needs_phone"`
	// NeedsPhotos is set when the place has fewer than three photos.
	NeedsPhotos bool `json:"needs_photos"`
	// NeedsSocialMedia is always false: the upstream social signal is too
	// unreliable to act on. Known limitation, kept for API stability.
	NeedsSocialMedia bool `json:"needs_social_media"`
	NeedsWebsite     bool `json:"needs_website"`
}

// Business is the system's normalized, classified view of a raw place.
// Records are built fresh per search and never persisted or mutated.
type Business struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Address        string           `json:"address"`
	Location       Location         `json:"location"`
	Category       []string         `json:"category"`
	WebsiteType    WebsiteType      `json:"website_type"`
	WebsiteURL     string           `json:"website_url,omitempty"`
	SocialProfiles SocialProfiles   `json:"social_profiles"`
	PhoneNumber    string           `json:"phone_number,omitempty"`
	BusinessStatus BusinessStatus   `json:"business_status"`
	Improvements   ImprovementFlags `json:"improvements"`
	LastUpdated    time.Time        `json:"last_updated"`
	SearchQuery    string           `json:"search_query"`
}

// SearchParams are the caller-supplied search criteria.
type SearchParams struct {
	Location            string        `json:"location"`
	Radius              int           `json:"radius,omitempty"`
	Categories          []string      `json:"categories,omitempty"`
	WebsiteType         WebsiteType   `json:"website_type,omitempty"`
	ExcludeWebsiteTypes []WebsiteType `json:"exclude_website_types,omitempty"`
	Limit               int           `json:"limit,omitempty"`
	Skip                int           `json:"skip,omitempty"`
}

// SearchResult is one page of classified businesses. TotalCount is the
// number of unique raw places found before status/website filtering, so it
// can exceed the number of filtered businesses across all pages.
type SearchResult struct {
	Businesses []Business `json:"businesses"`
	TotalCount int        `json:"total_count"`
	HasMore    bool       `json:"has_more"`
}
