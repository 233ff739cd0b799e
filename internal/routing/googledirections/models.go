package googledirections

// directionsResponse represents the Directions API response envelope.
type directionsResponse struct {
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Routes       []apiRoute   `json:"routes"`
	GeocodedWaypoints []geocodedWaypoint `json:"geocoded_waypoints,omitempty"`
}

// geocodedWaypoint reports how each query point was geocoded.
type geocodedWaypoint struct {
	GeocoderStatus string   `json:"geocoder_status,omitempty"`
	PlaceID        string   `json:"place_id,omitempty"`
	Types          []string `json:"types,omitempty"`
}

// apiRoute represents a single route alternative in the response.
type apiRoute struct {
	Summary          string       `json:"summary"`
	Bounds           *apiBounds   `json:"bounds,omitempty"`
	OverviewPolyline apiPolyline  `json:"overview_polyline"`
	Legs             []apiLeg     `json:"legs"`
	Warnings         []string     `json:"warnings,omitempty"`
	WaypointOrder    []int        `json:"waypoint_order,omitempty"`
	Copyrights       string       `json:"copyrights,omitempty"`
}

// apiBounds is the route's geographic bounding box.
type apiBounds struct {
	Northeast apiLatLng `json:"northeast"`
	Southwest apiLatLng `json:"southwest"`
}

// apiLatLng is a coordinate pair.
type apiLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// apiLeg is one leg of a route. A single origin-to-destination query without
// waypoints yields exactly one leg.
type apiLeg struct {
	Distance      apiTextValue `json:"distance"`
	Duration      apiTextValue `json:"duration"`
	StartAddress  string       `json:"start_address,omitempty"`
	EndAddress    string       `json:"end_address,omitempty"`
	StartLocation apiLatLng    `json:"start_location"`
	EndLocation   apiLatLng    `json:"end_location"`
	Steps         []apiStep    `json:"steps"`
}

// apiTextValue carries a numeric value plus its display string.
type apiTextValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// apiStep is one maneuver instruction within a leg.
type apiStep struct {
	Distance         apiTextValue `json:"distance"`
	Duration         apiTextValue `json:"duration"`
	HTMLInstructions string       `json:"html_instructions"`
	Maneuver         string       `json:"maneuver,omitempty"`
	Polyline         apiPolyline  `json:"polyline"`
	TravelMode       string       `json:"travel_mode,omitempty"`
}

// apiPolyline wraps an encoded polyline string.
type apiPolyline struct {
	Points string `json:"points"`
}

// Directions API status codes.
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusNotFound       = "NOT_FOUND"
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
	statusRequestDenied  = "REQUEST_DENIED"
	statusInvalidRequest = "INVALID_REQUEST"
)
