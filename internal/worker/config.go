// Package worker provides background job processing for Roadmate.
package worker

import (
	"time"

	"github.com/roadmate/roadmate/internal/alert"
)

// SweepConfig holds configuration for the alert reconciliation sweep.
type SweepConfig struct {
	// TypeTTLs maps alert types to their active lifetime. An active alert
	// older than its TTL is expired regardless of votes.
	// If empty, uses DefaultTypeTTLs.
	TypeTTLs map[alert.Type]time.Duration

	// DefaultTTL applies to alert types without an entry in TypeTTLs.
	// Default: 2 hours.
	DefaultTTL time.Duration

	// DismissMargin is how many invalidations beyond the validation count
	// resolve an alert. Default: 2, matching the vote path.
	DismissMargin int

	// PruneAfter is how long resolved alerts are kept before deletion.
	// Default: 24 hours.
	PruneAfter time.Duration

	// Timeout is the timeout for one full sweep.
	// Default: 30 seconds.
	Timeout time.Duration
}

// DefaultTypeTTLs returns the default per-type alert lifetimes. Short-lived
// hazards expire quickly; infrastructure work lingers.
func DefaultTypeTTLs() map[alert.Type]time.Duration {
	return map[alert.Type]time.Duration{
		alert.TypePolice:     30 * time.Minute,
		alert.TypeTrafficJam: 1 * time.Hour,
		alert.TypeAccident:   2 * time.Hour,
		alert.TypeObstacle:   2 * time.Hour,
		alert.TypeRoadworks:  12 * time.Hour,
	}
}

// DefaultSweepConfig returns the default sweep configuration.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		TypeTTLs:      DefaultTypeTTLs(),
		DefaultTTL:    2 * time.Hour,
		DismissMargin: alert.DefaultDismissMargin,
		PruneAfter:    24 * time.Hour,
		Timeout:       30 * time.Second,
	}
}

// TTLFor returns the active lifetime for the given alert type.
func (c SweepConfig) TTLFor(t alert.Type) time.Duration {
	if ttl, ok := c.TypeTTLs[t]; ok {
		return ttl
	}
	return c.DefaultTTL
}
