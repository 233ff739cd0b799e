package alert

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roadmate/roadmate/internal/geo"
)

// Service errors.
var (
	ErrUnknownType = errors.New("unknown alert type")
)

// DefaultFetchRadiusMeters is the radius of the position-based alert query.
// It is deliberately much wider than the 100m confirmation threshold so the
// live-tracking engine sees hazards well before the observer reaches them.
const DefaultFetchRadiusMeters = 5000

// DefaultDismissMargin is how many invalidations beyond the validation count
// it takes for community votes to resolve an alert as gone.
const DefaultDismissMargin = 2

// ServiceConfig holds configuration for the alert service.
type ServiceConfig struct {
	// Repository is the alert store.
	Repository Repository

	// Logger for service operations.
	Logger zerolog.Logger

	// FetchRadiusMeters is the radius for position-based queries
	// (default: DefaultFetchRadiusMeters).
	FetchRadiusMeters float64

	// DismissMargin is the invalidation margin that resolves an alert
	// (default: DefaultDismissMargin).
	DismissMargin int
}

// Service provides alert operations.
type Service struct {
	repo          Repository
	logger        zerolog.Logger
	fetchRadius   float64
	dismissMargin int
}

// NewService creates a new alert service.
func NewService(cfg ServiceConfig) *Service {
	fetchRadius := cfg.FetchRadiusMeters
	if fetchRadius <= 0 {
		fetchRadius = DefaultFetchRadiusMeters
	}

	dismissMargin := cfg.DismissMargin
	if dismissMargin <= 0 {
		dismissMargin = DefaultDismissMargin
	}

	return &Service{
		repo:          cfg.Repository,
		logger:        cfg.Logger,
		fetchRadius:   fetchRadius,
		dismissMargin: dismissMargin,
	}
}

// Nearby returns the active alerts around a position.
func (s *Service) Nearby(ctx context.Context, p geo.Point) ([]Alert, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.repo.ListNear(ctx, p.Lat, p.Lon, s.fetchRadius)
}

// Report persists a new hazard report and returns the created alert with its
// canonical server-assigned ID. Callers must not insert the report into any
// local working set until this returns; the returned alert is the only record
// carrying a usable identity.
func (s *Service) Report(ctx context.Context, userID string, report PendingReport) (*Alert, error) {
	if !report.Type.Known() {
		return nil, ErrUnknownType
	}
	p := geo.Point{Lat: report.Latitude, Lon: report.Longitude}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	a := &Alert{
		ID:         "alr_" + uuid.New().String()[:22],
		Type:       report.Type,
		Latitude:   report.Latitude,
		Longitude:  report.Longitude,
		ReportedBy: userID,
		Status:     StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("alert_id", a.ID).
		Str("type", string(a.Type)).
		Float64("lat", a.Latitude).
		Float64("lon", a.Longitude).
		Msg("alert reported")

	return a, nil
}

// Validate records a confirmed-present vote for the alert. The operation is
// best-effort idempotent from the caller's perspective: voting on an alert
// that is already resolved or already validated is not an error.
func (s *Service) Validate(ctx context.Context, id string) error {
	_, err := s.repo.RecordValidation(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAlertNotFound) {
			// Gone between fetch and vote; nothing to converge.
			s.logger.Debug().Str("alert_id", id).Msg("validate on missing alert ignored")
			return nil
		}
		return err
	}

	s.logger.Debug().Str("alert_id", id).Msg("alert validated")
	return nil
}

// Invalidate records a confirmed-absent vote for the alert. When invalidation
// votes outnumber validations by the dismiss margin, the alert converges to
// resolved and drops out of position queries.
func (s *Service) Invalidate(ctx context.Context, id string) error {
	a, err := s.repo.RecordInvalidation(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAlertNotFound) {
			s.logger.Debug().Str("alert_id", id).Msg("invalidate on missing alert ignored")
			return nil
		}
		return err
	}

	if a.Status == StatusActive && a.Invalidations >= a.Validations+s.dismissMargin {
		if err := s.repo.UpdateStatus(ctx, id, StatusResolved); err != nil {
			return err
		}
		s.logger.Info().
			Str("alert_id", id).
			Int("validations", a.Validations).
			Int("invalidations", a.Invalidations).
			Msg("alert resolved by community votes")
		return nil
	}

	s.logger.Debug().Str("alert_id", id).Msg("alert invalidation recorded")
	return nil
}

// Get retrieves an alert by ID.
func (s *Service) Get(ctx context.Context, id string) (*Alert, error) {
	return s.repo.Get(ctx, id)
}
