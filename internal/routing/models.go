// Package routing provides route search, alternative-route candidates, and
// the ranking logic that labels candidates as fastest, most economical, or
// toll-free.
package routing

import (
	"context"
	"errors"
	"time"

	"github.com/roadmate/roadmate/internal/geo"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the directions provider is down or the
	// circuit breaker is open.
	ErrProviderUnavailable = errors.New("directions provider unavailable")
	// ErrNoRouteFound indicates no valid route exists between the given points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimitExceeded indicates the provider API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates the provided coordinates are invalid.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Provider defines the interface for directions providers.
type Provider interface {
	// GetDirections retrieves route alternatives for a single
	// origin/destination/waypoint/mode query.
	GetDirections(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// TravelMode represents a mode of transport for a directions query.
type TravelMode string

const (
	ModeDriving   TravelMode = "driving"
	ModeWalking   TravelMode = "walking"
	ModeBicycling TravelMode = "bicycling"
	ModeTransit   TravelMode = "transit"
)

// Valid reports whether the travel mode is one the provider accepts.
func (m TravelMode) Valid() bool {
	switch m {
	case ModeDriving, ModeWalking, ModeBicycling, ModeTransit:
		return true
	}
	return false
}

// DirectionsRequest is a one-shot directions query.
type DirectionsRequest struct {
	Origin      geo.Point
	Destination geo.Point
	// Waypoints are visited in order between origin and destination.
	Waypoints  []geo.Point
	Mode       TravelMode
	AvoidTolls bool
}

// DirectionsResponse holds the provider's route alternatives.
type DirectionsResponse struct {
	Routes    []Route
	Provider  string
	FetchedAt time.Time
}

// Route is one alternative path as delivered by the provider.
type Route struct {
	Summary          string
	OverviewPolyline string // encoded, precision 5
	DistanceMeters   int
	DurationSeconds  int
	DistanceText     string
	DurationText     string
	Bounds           *BoundingBox
	Steps            []Step
}

// BoundingBox is the geographic bounding box of a route.
type BoundingBox struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Step is one maneuver instruction within a route leg.
type Step struct {
	DistanceMeters  int
	DurationSeconds int
	DistanceText    string
	DurationText    string
	Instruction     string
	Maneuver        string // optional, provider maneuver kind (e.g. "turn-left")
}

// RouteCandidate is one alternative path prepared for selection. Candidates
// are immutable once built and are discarded when a new query supersedes them.
type RouteCandidate struct {
	// ID is unique within one query's result set, derived from the route's
	// position in the provider response.
	ID string

	DistanceMeters  int
	DurationSeconds int
	DistanceText    string
	DurationText    string
	Summary         string

	// Polyline is the decoded route geometry, ordered origin to destination.
	Polyline []geo.Point

	Steps []Step
}

// Error provides detailed error information from the directions provider.
type Error struct {
	Provider string // provider that generated the error
	Code     string // error code or status from the provider
	Message  string // human-readable error message
	Err      error  // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be
// retried by the caller. The routing service itself never retries.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}
