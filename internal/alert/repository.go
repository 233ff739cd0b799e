package alert

import (
	"context"
	"time"
)

// Repository defines the interface for alert persistence.
type Repository interface {
	// Get retrieves an alert by ID.
	Get(ctx context.Context, id string) (*Alert, error)

	// Create persists a new alert.
	Create(ctx context.Context, a *Alert) error

	// ListNear retrieves active alerts within radiusMeters of the given
	// position.
	ListNear(ctx context.Context, lat, lon, radiusMeters float64) ([]Alert, error)

	// RecordValidation increments the alert's validation count and returns
	// the updated alert.
	RecordValidation(ctx context.Context, id string) (*Alert, error)

	// RecordInvalidation increments the alert's invalidation count and
	// returns the updated alert.
	RecordInvalidation(ctx context.Context, id string) (*Alert, error)

	// UpdateStatus sets the alert's lifecycle status.
	UpdateStatus(ctx context.Context, id string, status Status) error

	// ListActive retrieves all active alerts, for the reconciliation sweep.
	ListActive(ctx context.Context) ([]Alert, error)

	// DeleteResolvedBefore removes resolved alerts last updated before the
	// cutoff and returns the number removed.
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int, error)
}
