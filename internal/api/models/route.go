package models

// RouteSearchRequest is the request body for searching routes.
type RouteSearchRequest struct {
	Origin      *Point  `json:"origin,omitempty"`
	Destination *Point  `json:"destination,omitempty"`
	Waypoints   []Point `json:"waypoints,omitempty"`
	Mode        string  `json:"mode,omitempty" validate:"omitempty,oneof=driving walking bicycling transit"`
	AvoidTolls  bool    `json:"avoidTolls,omitempty"`
}

// RouteSearchResponse is the response for a route search.
type RouteSearchResponse struct {
	GeneratedAt Timestamp        `json:"generatedAt"`
	Provider    string           `json:"provider"`
	Candidates  []RouteCandidate `json:"candidates"`
	Rankings    RouteRankings    `json:"rankings"`
}

// RouteRankings identifies the winning candidates per criterion.
type RouteRankings struct {
	// FastestID is the candidate with the lowest total duration.
	FastestID *string `json:"fastestId,omitempty"`

	// EcoID is the candidate with the lowest total distance.
	EcoID *string `json:"ecoId,omitempty"`

	// TollFreeIDs lists all candidates with no toll segments.
	TollFreeIDs []string `json:"tollFreeIds"`
}

// RouteCandidate represents a single route alternative.
type RouteCandidate struct {
	ID              string      `json:"id"`
	Summary         string      `json:"summary"`
	DurationSeconds int         `json:"durationSeconds"`
	DistanceMeters  int         `json:"distanceMeters"`
	DurationText    string      `json:"durationText,omitempty"`
	DistanceText    string      `json:"distanceText,omitempty"`
	Polyline        string      `json:"polyline"`
	TollFree        bool        `json:"tollFree"`
	Steps           []RouteStep `json:"steps,omitempty"`
}

// RouteStep represents a turn-by-turn instruction within a candidate.
type RouteStep struct {
	Instruction     string `json:"instruction"`
	Maneuver        string `json:"maneuver,omitempty"`
	DistanceMeters  int    `json:"distanceMeters"`
	DurationSeconds int    `json:"durationSeconds"`
	DistanceText    string `json:"distanceText,omitempty"`
	DurationText    string `json:"durationText,omitempty"`
}
