package alert

import (
	"context"
	"sync"
	"time"

	"github.com/roadmate/roadmate/internal/geo"
)

// InMemoryRepository is an in-memory implementation of Repository for testing.
type InMemoryRepository struct {
	mu     sync.RWMutex
	alerts map[string]*Alert
}

// NewInMemoryRepository creates a new in-memory alert repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		alerts: make(map[string]*Alert),
	}
}

// Get retrieves an alert by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.alerts[id]
	if !ok {
		return nil, ErrAlertNotFound
	}

	alertCopy := *a
	return &alertCopy, nil
}

// Create persists a new alert.
func (r *InMemoryRepository) Create(_ context.Context, a *Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	alertCopy := *a
	r.alerts[a.ID] = &alertCopy
	return nil
}

// ListNear retrieves active alerts within radiusMeters of the position.
func (r *InMemoryRepository) ListNear(_ context.Context, lat, lon, radiusMeters float64) ([]Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	origin := geo.Point{Lat: lat, Lon: lon}
	var result []Alert
	for _, a := range r.alerts {
		if a.Status != StatusActive {
			continue
		}
		if geo.Distance(origin, geo.Point{Lat: a.Latitude, Lon: a.Longitude}) <= radiusMeters {
			result = append(result, *a)
		}
	}
	return result, nil
}

// RecordValidation increments the validation count.
func (r *InMemoryRepository) RecordValidation(_ context.Context, id string) (*Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.alerts[id]
	if !ok {
		return nil, ErrAlertNotFound
	}

	a.Validations++
	a.UpdatedAt = time.Now()
	alertCopy := *a
	return &alertCopy, nil
}

// RecordInvalidation increments the invalidation count.
func (r *InMemoryRepository) RecordInvalidation(_ context.Context, id string) (*Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.alerts[id]
	if !ok {
		return nil, ErrAlertNotFound
	}

	a.Invalidations++
	a.UpdatedAt = time.Now()
	alertCopy := *a
	return &alertCopy, nil
}

// UpdateStatus sets the alert's lifecycle status.
func (r *InMemoryRepository) UpdateStatus(_ context.Context, id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.alerts[id]
	if !ok {
		return ErrAlertNotFound
	}

	a.Status = status
	a.UpdatedAt = time.Now()
	return nil
}

// ListActive retrieves all active alerts.
func (r *InMemoryRepository) ListActive(_ context.Context) ([]Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Alert
	for _, a := range r.alerts {
		if a.Status == StatusActive {
			result = append(result, *a)
		}
	}
	return result, nil
}

// DeleteResolvedBefore removes resolved alerts last updated before the cutoff.
func (r *InMemoryRepository) DeleteResolvedBefore(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, a := range r.alerts {
		if a.Status == StatusResolved && a.UpdatedAt.Before(cutoff) {
			delete(r.alerts, id)
			removed++
		}
	}
	return removed, nil
}
