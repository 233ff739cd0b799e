package routing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the route search service.
type ServiceConfig struct {
	// Provider is the directions provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// TollKeyword is the locale-specific keyword used by the toll-free
	// heuristic (default: DefaultTollKeyword).
	TollKeyword string

	// CacheTTL is how long to cache search results (default: 2 minutes).
	// Traffic-dependent durations go stale quickly.
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees
	// (default: 0.001 ~ 110m). Endpoints within the same cell share results.
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale results on provider errors
	// (default: 10 minutes).
	StaleIfErrorTTL time.Duration

	// CleanupInterval is how often expired entries are removed
	// (default: 5 minutes).
	CleanupInterval time.Duration
}

// SearchResult is the ranked candidate set for one directions query.
type SearchResult struct {
	Candidates []RouteCandidate

	// FastestID and EcoID are empty when Candidates is empty.
	FastestID string
	EcoID     string

	// TollFreeIDs holds the ids of candidates whose instructions mention
	// no tolls.
	TollFreeIDs map[string]bool

	Provider  string
	FetchedAt time.Time
}

// Service performs route searches and ranks the alternatives, with
// short-lived caching in front of the directions provider.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	tollKeyword     string
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration
	cleanupInterval time.Duration

	mu          sync.RWMutex
	cache       map[string]*cachedSearch
	lastCleanup time.Time
}

type cachedSearch struct {
	result    *SearchResult
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new route search service.
func NewService(cfg ServiceConfig) *Service {
	tollKeyword := cfg.TollKeyword
	if tollKeyword == "" {
		tollKeyword = DefaultTollKeyword
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 2 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.001 // ~110m at the equator
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 10 * time.Minute
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 5 * time.Minute
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		tollKeyword:     tollKeyword,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		cleanupInterval: cleanupInterval,
		cache:           make(map[string]*cachedSearch),
	}
}

// Search runs a directions query and returns the ranked candidate set.
// Uses cached results when available and not expired.
func (s *Service) Search(ctx context.Context, req DirectionsRequest) (*SearchResult, error) {
	if err := req.Origin.Validate(); err != nil {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_ORIGIN",
			Message:  "invalid origin coordinates",
			Err:      ErrInvalidCoordinates,
		}
	}
	if err := req.Destination.Validate(); err != nil {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_DESTINATION",
			Message:  "invalid destination coordinates",
			Err:      ErrInvalidCoordinates,
		}
	}
	for _, wp := range req.Waypoints {
		if err := wp.Validate(); err != nil {
			return nil, &Error{
				Provider: s.provider.Name(),
				Code:     "INVALID_WAYPOINT",
				Message:  "invalid waypoint coordinates",
				Err:      ErrInvalidCoordinates,
			}
		}
	}

	if req.Mode == "" {
		req.Mode = ModeDriving
	}
	if !req.Mode.Valid() {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_MODE",
			Message:  fmt.Sprintf("unsupported travel mode %q", req.Mode),
			Err:      ErrInvalidCoordinates,
		}
	}

	cacheKey := s.cacheKey(req)

	s.mu.RLock()
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.logger.Debug().
			Str("cache_key", cacheKey).
			Msg("cache hit for route search")
		return cached.result, nil
	}
	s.mu.RUnlock()

	return s.fetchAndRank(ctx, req, cacheKey)
}

// fetchAndRank fetches directions from the provider, builds the ranked
// candidate set, and updates the cache.
func (s *Service) fetchAndRank(ctx context.Context, req DirectionsRequest, cacheKey string) (*SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache (prevents thundering herd)
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		s.logger.Debug().
			Str("cache_key", cacheKey).
			Msg("cache hit after double-check")
		return cached.result, nil
	}

	s.logger.Debug().
		Float64("origin_lat", req.Origin.Lat).
		Float64("origin_lon", req.Origin.Lon).
		Float64("dest_lat", req.Destination.Lat).
		Float64("dest_lon", req.Destination.Lon).
		Str("mode", string(req.Mode)).
		Bool("avoid_tolls", req.AvoidTolls).
		Int("waypoints", len(req.Waypoints)).
		Str("provider", s.provider.Name()).
		Msg("fetching directions from provider")

	resp, err := s.provider.GetDirections(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).
			Str("mode", string(req.Mode)).
			Str("provider", s.provider.Name()).
			Msg("failed to fetch directions")

		// Serve stale results on provider error when still within the window.
		if cached, ok := s.cache[cacheKey]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Time("fetched_at", cached.fetchedAt).
					Str("cache_key", cacheKey).
					Msg("serving stale route search result due to provider error")
				return cached.result, nil
			}
		}

		return nil, err
	}

	result := s.rank(resp)

	now := time.Now()
	s.cache[cacheKey] = &cachedSearch{
		result:    result,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}

	s.logger.Debug().
		Str("cache_key", cacheKey).
		Int("candidate_count", len(result.Candidates)).
		Str("fastest", result.FastestID).
		Str("eco", result.EcoID).
		Msg("ranked route search result")

	s.cleanupIfNeeded()

	return result, nil
}

// rank builds the candidate set and derives the selection labels. Ranking is
// pure computation over already-fetched data and never fails.
func (s *Service) rank(resp *DirectionsResponse) *SearchResult {
	candidates := BuildCandidates(resp)

	result := &SearchResult{
		Candidates:  candidates,
		TollFreeIDs: TollFreeIDs(candidates, s.tollKeyword),
		Provider:    resp.Provider,
		FetchedAt:   resp.FetchedAt,
	}

	if id, ok := PickFastest(candidates); ok {
		result.FastestID = id
	}
	if id, ok := PickEco(candidates); ok {
		result.EcoID = id
	}

	return result
}

// cacheKey generates a cache key for a search request using grid-based
// quantization of every point plus the query flags.
func (s *Service) cacheKey(req DirectionsRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:tolls=%t", req.Mode, req.AvoidTolls)

	writePoint := func(lat, lon float64) {
		gridLat := math.Floor(lat/s.cacheGridSize) * s.cacheGridSize
		gridLon := math.Floor(lon/s.cacheGridSize) * s.cacheGridSize
		fmt.Fprintf(&b, ":%.3f,%.3f", gridLat, gridLon)
	}

	writePoint(req.Origin.Lat, req.Origin.Lon)
	for _, wp := range req.Waypoints {
		writePoint(wp.Lat, wp.Lon)
	}
	writePoint(req.Destination.Lat, req.Destination.Lon)

	return b.String()
}

// cleanupIfNeeded removes expired entries if the cleanup interval has passed.
// Caller must hold the write lock.
func (s *Service) cleanupIfNeeded() {
	now := time.Now()
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}

	s.lastCleanup = now
	expired := 0

	for key, cached := range s.cache {
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.cache, key)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug().
			Int("expired_entries", expired).
			Msg("cleaned up expired route search cache entries")
	}
}

// InvalidateCache clears all cached search results.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedSearch)
}

// ProviderName returns the name of the underlying directions provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}
