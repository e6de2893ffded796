// Package classify maps raw place records from the vendor API onto the
// normalized Business model: website-type determination, social profile
// extraction, improvement flags, and category cleanup. Everything here is a
// pure function over static tables.
package classify

import (
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/presence-cli/internal/model"
	"github.com/sells-group/presence-cli/pkg/places"
)

// minPhotoCount is the photo count below which a listing is flagged as
// needing photos.
const minPhotoCount = 3

// DetermineWebsiteType classifies a listed website URL. An absent or
// unparseable URL classifies as "none"; a hostname on no known platform list
// classifies as "legitimate".
func DetermineWebsiteType(rawURL string) model.WebsiteType {
	host := hostnameOf(rawURL)
	if host == "" {
		return model.WebsiteNone
	}

	switch {
	case matchesAny(host, facebookDomains):
		return model.WebsiteFacebook
	case matchesAny(host, yelpDomains):
		return model.WebsiteYelp
	case matchesAny(host, platformDomains):
		return model.WebsiteOther
	}
	return model.WebsiteLegitimate
}

// ExtractSocialProfiles buckets candidate URLs by platform. Unparseable URLs
// are skipped silently. For the keyed platforms later entries overwrite
// earlier ones; unrecognized URLs accumulate in Other.
func ExtractSocialProfiles(urls []string) model.SocialProfiles {
	var profiles model.SocialProfiles
	for _, raw := range urls {
		host := hostnameOf(raw)
		if host == "" {
			continue
		}
		switch {
		case matchesAny(host, facebookDomains):
			profiles.Facebook = raw
		case matchesAny(host, instagramDomains):
			profiles.Instagram = raw
		case matchesAny(host, yelpDomains):
			profiles.Yelp = raw
		default:
			profiles.Other = append(profiles.Other, raw)
		}
	}
	return profiles
}

// ComputeImprovements derives the outreach data-gap flags for a place.
func ComputeImprovements(place *places.Place, websiteType model.WebsiteType) model.ImprovementFlags {
	return model.ImprovementFlags{
		NeedsPhone:  place.FormattedPhoneNumber == "",
		NeedsPhotos: len(place.Photos) < minPhotoCount,
		// The vendor's social signal is unreliable; deliberately disabled.
		NeedsSocialMedia: false,
		NeedsWebsite:     websiteType != model.WebsiteLegitimate,
	}
}

// MapPlaceToBusiness builds a Business from a detailed place record. It
// errors when the vendor omits a required field — that is a contract
// violation, not something to paper over locally.
func MapPlaceToBusiness(place *places.Place, searchQuery string) (*model.Business, error) {
	if place.PlaceID == "" {
		return nil, eris.New("classify: place missing place_id")
	}
	if place.Name == "" {
		return nil, eris.Errorf("classify: place %s missing name", place.PlaceID)
	}
	address := place.FormattedAddress
	if address == "" {
		address = place.Vicinity
	}
	if address == "" {
		return nil, eris.Errorf("classify: place %s missing address", place.PlaceID)
	}
	if place.Geometry == nil {
		return nil, eris.Errorf("classify: place %s missing location", place.PlaceID)
	}

	websiteType := DetermineWebsiteType(place.Website)

	// The canonical Google Maps listing URL is the only profile candidate
	// the detail fetch supplies.
	var profileCandidates []string
	if place.URL != "" {
		profileCandidates = append(profileCandidates, place.URL)
	}

	return &model.Business{
		ID:      place.PlaceID,
		Name:    place.Name,
		Address: address,
		Location: model.Location{
			Lat: place.Geometry.Location.Lat,
			Lng: place.Geometry.Location.Lng,
		},
		Category:       FilterCategories(place.Types),
		WebsiteType:    websiteType,
		WebsiteURL:     place.Website,
		SocialProfiles: ExtractSocialProfiles(profileCandidates),
		PhoneNumber:    place.FormattedPhoneNumber,
		BusinessStatus: mapBusinessStatus(place.BusinessStatus),
		Improvements:   ComputeImprovements(place, websiteType),
		LastUpdated:    time.Now().UTC(),
		SearchQuery:    searchQuery,
	}, nil
}

func mapBusinessStatus(raw string) model.BusinessStatus {
	switch raw {
	case places.BusinessStatusOperational:
		return model.StatusOperational
	case places.BusinessStatusClosedTemporarily:
		return model.StatusClosedTemporarily
	case places.BusinessStatusClosedPermanently:
		return model.StatusClosedPermanently
	}
	return model.StatusUnknown
}

// hostnameOf extracts the lower-cased hostname of a URL, or "" when the URL
// is absent or unparseable.
func hostnameOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func matchesAny(host string, domains []string) bool {
	for _, d := range domains {
		if strings.Contains(host, d) {
			return true
		}
	}
	return false
}
