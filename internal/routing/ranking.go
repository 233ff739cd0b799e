package routing

import (
	"fmt"
	"strings"

	"github.com/roadmate/roadmate/internal/geo"
)

// DefaultTollKeyword is the toll keyword used when no locale-specific keyword
// is configured. Toll detection is a substring heuristic over step
// instructions, not a structured provider flag, so the keyword must be
// configurable per locale.
const DefaultTollKeyword = "toll"

// BuildCandidates converts a provider response into the route candidate set
// presented for selection. IDs are derived from result-set position, so they
// are stable and unique within one query. Polylines are decoded eagerly; the
// candidate set is immutable once returned.
func BuildCandidates(resp *DirectionsResponse) []RouteCandidate {
	if resp == nil || len(resp.Routes) == 0 {
		return nil
	}

	candidates := make([]RouteCandidate, 0, len(resp.Routes))
	for i, route := range resp.Routes {
		candidates = append(candidates, RouteCandidate{
			ID:              fmt.Sprintf("rt_%d", i),
			DistanceMeters:  route.DistanceMeters,
			DurationSeconds: route.DurationSeconds,
			DistanceText:    route.DistanceText,
			DurationText:    route.DurationText,
			Summary:         route.Summary,
			Polyline:        geo.DecodePolyline(route.OverviewPolyline),
			Steps:           route.Steps,
		})
	}
	return candidates
}

// PickFastest returns the ID of the candidate with the minimum duration.
// Ties resolve to the earliest candidate in result-set order; the set is
// never re-sorted. A missing duration (zero or negative) is treated as
// +infinity and never wins unless every candidate is missing one, in which
// case the first candidate is returned. That degenerate fallback is a defined
// policy, not an accident: missing duration never wins unless it is all
// there is.
//
// Returns ok=false only for an empty candidate set.
func PickFastest(candidates []RouteCandidate) (string, bool) {
	return pickMin(candidates, func(c RouteCandidate) int { return c.DurationSeconds })
}

// PickEco returns the ID of the candidate with the minimum distance. Shortest
// distance is a deliberate proxy for fuel economy, not a fuel or emissions
// model. Missing-distance and tie handling match PickFastest.
func PickEco(candidates []RouteCandidate) (string, bool) {
	return pickMin(candidates, func(c RouteCandidate) int { return c.DistanceMeters })
}

// pickMin returns the first candidate minimizing the metric, skipping
// candidates whose metric is missing (<= 0). When every metric is missing it
// falls back to the first candidate.
func pickMin(candidates []RouteCandidate, metric func(RouteCandidate) int) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}

	best := -1
	bestValue := 0
	for i, c := range candidates {
		v := metric(c)
		if v <= 0 {
			continue
		}
		if best == -1 || v < bestValue {
			best = i
			bestValue = v
		}
	}

	if best == -1 {
		return candidates[0].ID, true
	}
	return candidates[best].ID, true
}

// TollFreeIDs returns the set of candidate IDs whose routes mention no tolls.
// A candidate qualifies if none of its step instructions contain the given
// keyword, compared case-insensitively as a substring. An empty keyword falls
// back to DefaultTollKeyword. A singleton result set is not automatically
// toll-free; it is evaluated like any other candidate.
func TollFreeIDs(candidates []RouteCandidate, keyword string) map[string]bool {
	if keyword == "" {
		keyword = DefaultTollKeyword
	}
	keyword = strings.ToLower(keyword)

	ids := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if !mentionsToll(c.Steps, keyword) {
			ids[c.ID] = true
		}
	}
	return ids
}

func mentionsToll(steps []Step, keyword string) bool {
	for _, s := range steps {
		if strings.Contains(strings.ToLower(s.Instruction), keyword) {
			return true
		}
	}
	return false
}
