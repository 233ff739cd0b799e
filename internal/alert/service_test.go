package alert_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/roadmate/roadmate/internal/alert"
	"github.com/roadmate/roadmate/internal/geo"
)

func newTestService(repo alert.Repository) *alert.Service {
	return alert.NewService(alert.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
	})
}

func TestService_Report(t *testing.T) {
	repo := alert.NewInMemoryRepository()
	service := newTestService(repo)
	ctx := context.Background()

	created, err := service.Report(ctx, "usr_test123", alert.PendingReport{
		Type:      alert.TypePolice,
		Latitude:  48.8566,
		Longitude: 2.3522,
	})
	if err != nil {
		t.Fatalf("failed to report alert: %v", err)
	}

	if created.ID == "" {
		t.Fatal("expected canonical server ID to be assigned on create")
	}
	if !strings.HasPrefix(created.ID, "alr_") {
		t.Errorf("expected alert ID to start with 'alr_', got %q", created.ID)
	}
	if created.Status != alert.StatusActive {
		t.Errorf("expected new alert to be active, got %q", created.Status)
	}
	if created.ReportedBy != "usr_test123" {
		t.Errorf("expected reporter to be recorded, got %q", created.ReportedBy)
	}

	// The report is persisted under the canonical ID, never a temporary one.
	stored, err := service.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("expected alert to be retrievable by its canonical ID: %v", err)
	}
	if stored.Latitude != 48.8566 || stored.Longitude != 2.3522 {
		t.Errorf("expected location to be fixed at creation, got (%f, %f)",
			stored.Latitude, stored.Longitude)
	}
}

func TestService_Report_Invalid(t *testing.T) {
	service := newTestService(alert.NewInMemoryRepository())
	ctx := context.Background()

	_, err := service.Report(ctx, "usr_test123", alert.PendingReport{
		Type:      "meteor_strike",
		Latitude:  48.8566,
		Longitude: 2.3522,
	})
	if !errors.Is(err, alert.ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}

	_, err = service.Report(ctx, "usr_test123", alert.PendingReport{
		Type:     alert.TypeAccident,
		Latitude: 91.0,
	})
	if err == nil {
		t.Error("expected error for out-of-range latitude")
	}
}

func TestService_Nearby(t *testing.T) {
	repo := alert.NewInMemoryRepository()
	service := newTestService(repo)
	ctx := context.Background()

	near, err := service.Report(ctx, "usr_a", alert.PendingReport{
		Type: alert.TypeTrafficJam, Latitude: 48.8566, Longitude: 2.3532,
	})
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}

	// ~110km north, outside the default 5km fetch radius.
	if _, err := service.Report(ctx, "usr_b", alert.PendingReport{
		Type: alert.TypeRoadworks, Latitude: 49.8566, Longitude: 2.3532,
	}); err != nil {
		t.Fatalf("report failed: %v", err)
	}

	alerts, err := service.Nearby(ctx, geo.Point{Lat: 48.8566, Lon: 2.3522})
	if err != nil {
		t.Fatalf("nearby failed: %v", err)
	}

	if len(alerts) != 1 {
		t.Fatalf("expected 1 nearby alert, got %d", len(alerts))
	}
	if alerts[0].ID != near.ID {
		t.Errorf("expected alert %s, got %s", near.ID, alerts[0].ID)
	}
}

func TestService_Validate_Idempotent(t *testing.T) {
	repo := alert.NewInMemoryRepository()
	service := newTestService(repo)
	ctx := context.Background()

	a, err := service.Report(ctx, "usr_a", alert.PendingReport{
		Type: alert.TypePolice, Latitude: 48.8566, Longitude: 2.3522,
	})
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}

	if err := service.Validate(ctx, a.ID); err != nil {
		t.Fatalf("first validate failed: %v", err)
	}
	if err := service.Validate(ctx, a.ID); err != nil {
		t.Fatalf("repeat validate must be best-effort, got %v", err)
	}

	// Validating an alert that no longer exists is not an error.
	if err := service.Validate(ctx, "alr_gone"); err != nil {
		t.Errorf("validate on missing alert must not error, got %v", err)
	}

	stored, _ := service.Get(ctx, a.ID)
	if stored.Validations != 2 {
		t.Errorf("expected 2 validations recorded, got %d", stored.Validations)
	}
	if stored.Status != alert.StatusActive {
		t.Errorf("validated alert must stay active, got %q", stored.Status)
	}
}

func TestService_Invalidate_ResolvesOnMargin(t *testing.T) {
	repo := alert.NewInMemoryRepository()
	service := newTestService(repo)
	ctx := context.Background()

	a, err := service.Report(ctx, "usr_a", alert.PendingReport{
		Type: alert.TypeObstacle, Latitude: 48.8566, Longitude: 2.3522,
	})
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}

	// One invalidation: below the default margin of 2, still active.
	if err := service.Invalidate(ctx, a.ID); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	stored, _ := service.Get(ctx, a.ID)
	if stored.Status != alert.StatusActive {
		t.Fatalf("expected alert still active after one invalidation, got %q", stored.Status)
	}

	// Second independent invalidation converges the alert to resolved.
	if err := service.Invalidate(ctx, a.ID); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	stored, _ = service.Get(ctx, a.ID)
	if stored.Status != alert.StatusResolved {
		t.Fatalf("expected alert resolved after margin reached, got %q", stored.Status)
	}

	// Resolved alerts drop out of position queries.
	alerts, err := service.Nearby(ctx, geo.Point{Lat: 48.8566, Lon: 2.3522})
	if err != nil {
		t.Fatalf("nearby failed: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("expected resolved alert excluded from nearby, got %d", len(alerts))
	}
}

func TestService_Invalidate_ValidationsHoldTheLine(t *testing.T) {
	repo := alert.NewInMemoryRepository()
	service := newTestService(repo)
	ctx := context.Background()

	a, _ := service.Report(ctx, "usr_a", alert.PendingReport{
		Type: alert.TypeAccident, Latitude: 48.8566, Longitude: 2.3522,
	})

	// Concurrent independent votes: two keeps push the dismiss margin out.
	service.Validate(ctx, a.ID)
	service.Validate(ctx, a.ID)
	service.Invalidate(ctx, a.ID)
	service.Invalidate(ctx, a.ID)
	service.Invalidate(ctx, a.ID)

	stored, _ := service.Get(ctx, a.ID)
	if stored.Status != alert.StatusActive {
		t.Fatalf("3 invalidations vs 2 validations is under the margin, got %q", stored.Status)
	}

	service.Invalidate(ctx, a.ID)
	stored, _ = service.Get(ctx, a.ID)
	if stored.Status != alert.StatusResolved {
		t.Fatalf("4 invalidations vs 2 validations reaches the margin, got %q", stored.Status)
	}
}
