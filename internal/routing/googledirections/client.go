// Package googledirections provides a client for the Google Directions API,
// the directions provider behind route search.
package googledirections

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/roadmate/roadmate/internal/geo"
	"github.com/roadmate/roadmate/internal/provider/resilience"
	"github.com/roadmate/roadmate/internal/routing"
)

const (
	// ProviderName identifies this directions provider.
	ProviderName = "google-directions"

	// DefaultBaseURL is the Directions API base URL.
	DefaultBaseURL = "https://maps.googleapis.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Directions API client.
type ClientConfig struct {
	// APIKey is the Directions API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the Google API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Google Directions API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	registry   *resilience.Registry
	logger     zerolog.Logger
}

// NewClient creates a new Directions API client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		resilientClient := resilience.NewClient(clientCfg)
		if cfg.Registry != nil {
			cfg.Registry.Register(ProviderName, resilientClient)
		}
		httpClient = resilientClient
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		registry:   cfg.Registry,
		logger:     cfg.Logger,
	}
}

func (c *Client) recordSuccess() {
	if c.registry != nil {
		c.registry.RecordSuccess(ProviderName)
	}
}

func (c *Client) recordFailure(err error) {
	if c.registry != nil {
		c.registry.RecordFailure(ProviderName, err)
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetDirections retrieves route alternatives for a directions query.
func (c *Client) GetDirections(ctx context.Context, req routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	query := url.Values{}
	query.Set("origin", formatPoint(req.Origin))
	query.Set("destination", formatPoint(req.Destination))
	query.Set("alternatives", "true")
	query.Set("key", c.apiKey)

	mode := req.Mode
	if mode == "" {
		mode = routing.ModeDriving
	}
	query.Set("mode", string(mode))

	if len(req.Waypoints) > 0 {
		parts := make([]string, 0, len(req.Waypoints))
		for _, wp := range req.Waypoints {
			parts = append(parts, formatPoint(wp))
		}
		query.Set("waypoints", strings.Join(parts, "|"))
	}

	if req.AvoidTolls {
		query.Set("avoid", "tolls")
	}

	reqURL := fmt.Sprintf("%s/maps/api/directions/json?%s", c.baseURL, query.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("mode", string(mode)).
		Float64("origin_lat", req.Origin.Lat).
		Float64("origin_lon", req.Origin.Lon).
		Float64("dest_lat", req.Destination.Lat).
		Float64("dest_lon", req.Destination.Lon).
		Int("waypoints", len(req.Waypoints)).
		Bool("avoid_tolls", req.AvoidTolls).
		Msg("requesting directions")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.recordFailure(err)
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach directions provider",
			Err:      routing.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordFailure(err)
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		provErr := &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("directions provider returned HTTP %d", resp.StatusCode),
			Err:      routing.ErrProviderUnavailable,
		}
		c.recordFailure(provErr)
		return nil, provErr
	}

	var apiResp directionsResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		c.recordFailure(err)
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	// A well-formed reply counts as provider health even when the status is
	// ZERO_RESULTS or similar; those are answers, not outages.
	c.recordSuccess()

	if apiResp.Status != statusOK {
		return nil, c.statusError(&apiResp)
	}

	result := c.toDirectionsResponse(&apiResp)

	c.logger.Debug().
		Int("route_count", len(result.Routes)).
		Msg("received directions")

	return result, nil
}

// statusError maps non-OK API statuses to domain errors, preserving the
// provider's own message for display.
func (c *Client) statusError(resp *directionsResponse) error {
	message := resp.ErrorMessage
	if message == "" {
		message = fmt.Sprintf("directions request failed with status %s", resp.Status)
	}

	var underlying error
	switch resp.Status {
	case statusZeroResults, statusNotFound:
		underlying = routing.ErrNoRouteFound
	case statusOverQueryLimit:
		underlying = routing.ErrRateLimitExceeded
	case statusInvalidRequest:
		underlying = routing.ErrInvalidCoordinates
	default:
		underlying = routing.ErrProviderUnavailable
	}

	return &routing.Error{
		Provider: ProviderName,
		Code:     resp.Status,
		Message:  message,
		Err:      underlying,
	}
}

// toDirectionsResponse converts the API response to the domain model.
// Distance and duration totals are summed over legs; a query without
// waypoints has exactly one leg, whose display texts carry over unchanged.
func (c *Client) toDirectionsResponse(resp *directionsResponse) *routing.DirectionsResponse {
	routes := make([]routing.Route, 0, len(resp.Routes))

	for _, r := range resp.Routes {
		route := routing.Route{
			Summary:          r.Summary,
			OverviewPolyline: r.OverviewPolyline.Points,
		}

		if r.Bounds != nil {
			route.Bounds = &routing.BoundingBox{
				MinLat: r.Bounds.Southwest.Lat,
				MinLon: r.Bounds.Southwest.Lng,
				MaxLat: r.Bounds.Northeast.Lat,
				MaxLon: r.Bounds.Northeast.Lng,
			}
		}

		for li, leg := range r.Legs {
			route.DistanceMeters += leg.Distance.Value
			route.DurationSeconds += leg.Duration.Value
			if li == 0 {
				route.DistanceText = leg.Distance.Text
				route.DurationText = leg.Duration.Text
			}

			for _, step := range leg.Steps {
				route.Steps = append(route.Steps, routing.Step{
					DistanceMeters:  step.Distance.Value,
					DurationSeconds: step.Duration.Value,
					DistanceText:    step.Distance.Text,
					DurationText:    step.Duration.Text,
					Instruction:     stripHTML(step.HTMLInstructions),
					Maneuver:        step.Maneuver,
				})
			}
		}

		routes = append(routes, route)
	}

	return &routing.DirectionsResponse{
		Routes:    routes,
		Provider:  ProviderName,
		FetchedAt: time.Now(),
	}
}

func formatPoint(p geo.Point) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lon)
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML flattens the provider's HTML instruction markup into plain text.
// The toll-free heuristic matches against this text.
func stripHTML(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.Join(strings.Fields(s), " ")
}
