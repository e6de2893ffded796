package places

// Status values returned by the Google Maps web service APIs. The APIs signal
// failure through these strings rather than HTTP status codes or structured
// error bodies.
const (
	StatusOK             = "OK"
	StatusZeroResults    = "ZERO_RESULTS"
	StatusOverQueryLimit = "OVER_QUERY_LIMIT"
	StatusRequestDenied  = "REQUEST_DENIED"
	StatusInvalidRequest = "INVALID_REQUEST"
	StatusUnknownError   = "UNKNOWN_ERROR"
	StatusNotFound       = "NOT_FOUND"
)

// Business operational statuses as reported by the Places API.
const (
	BusinessStatusOperational       = "OPERATIONAL"
	BusinessStatusClosedTemporarily = "CLOSED_TEMPORARILY"
	BusinessStatusClosedPermanently = "CLOSED_PERMANENTLY"
)

// LatLng is a geographic coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geometry holds a place's location.
type Geometry struct {
	Location LatLng `json:"location"`
}

// Photo is a photo reference attached to a place.
type Photo struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

// Place is a raw place record as returned by Nearby Search and Place Details.
// Nearby Search returns a lightweight stub (no website, phone, or canonical
// URL); Place Details fills in the rest.
type Place struct {
	PlaceID              string    `json:"place_id"`
	Name                 string    `json:"name"`
	FormattedAddress     string    `json:"formatted_address,omitempty"`
	Vicinity             string    `json:"vicinity,omitempty"`
	Geometry             *Geometry `json:"geometry,omitempty"`
	Website              string    `json:"website,omitempty"`
	URL                  string    `json:"url,omitempty"`
	Types                []string  `json:"types,omitempty"`
	FormattedPhoneNumber string    `json:"formatted_phone_number,omitempty"`
	BusinessStatus       string    `json:"business_status,omitempty"`
	Photos               []Photo   `json:"photos,omitempty"`
	Rating               float64   `json:"rating,omitempty"`
	UserRatingsTotal     int       `json:"user_ratings_total,omitempty"`
}

// GeocodeResult is a single match from the Geocoding API.
type GeocodeResult struct {
	Geometry         Geometry `json:"geometry"`
	FormattedAddress string   `json:"formatted_address"`
}

// GeocodeResponse is the Geocoding API envelope.
type GeocodeResponse struct {
	Results      []GeocodeResult `json:"results"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// NearbySearchRequest holds the parameters for a Nearby Search call. Exactly
// one of Type or Keyword is typically set; both empty searches everything
// near the point.
type NearbySearchRequest struct {
	Location  LatLng
	Radius    int
	Type      string
	Keyword   string
	PageToken string
}

// NearbySearchResponse is the Nearby Search envelope.
type NearbySearchResponse struct {
	Results       []Place `json:"results"`
	Status        string  `json:"status"`
	NextPageToken string  `json:"next_page_token,omitempty"`
	ErrorMessage  string  `json:"error_message,omitempty"`
}

// PlaceDetailsResponse is the Place Details envelope.
type PlaceDetailsResponse struct {
	Result       Place  `json:"result"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// DetailFields is the field set requested on every Place Details call. Kept
// fixed so each detail fetch bills at a predictable SKU.
var DetailFields = []string{
	"place_id",
	"name",
	"formatted_address",
	"geometry",
	"website",
	"url",
	"types",
	"formatted_phone_number",
	"business_status",
	"photos",
}
