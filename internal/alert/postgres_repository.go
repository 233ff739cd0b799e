package alert

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roadmate/roadmate/internal/geo"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL alert repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const alertColumns = `
	id, type, latitude, longitude, reported_by, status,
	validations, invalidations, created_at, updated_at
`

// Get retrieves an alert by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`
	return r.scanAlert(r.pool.QueryRow(ctx, query, id))
}

// Create persists a new alert.
func (r *PostgresRepository) Create(ctx context.Context, a *Alert) error {
	query := `
		INSERT INTO alerts (
			id, type, latitude, longitude, reported_by, status,
			validations, invalidations, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.Type, a.Latitude, a.Longitude, a.ReportedBy, a.Status,
		a.Validations, a.Invalidations, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

// ListNear retrieves active alerts within radiusMeters of the position.
// The SQL query prefilters on a bounding box; the exact haversine cut is
// applied on the result.
func (r *PostgresRepository) ListNear(ctx context.Context, lat, lon, radiusMeters float64) ([]Alert, error) {
	latDelta := radiusMeters / 111320.0
	lonDelta := latDelta
	if cosLat := math.Cos(lat * math.Pi / 180); cosLat > 0.01 {
		lonDelta = latDelta / cosLat
	}

	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE status = $1
		  AND latitude BETWEEN $2 AND $3
		  AND longitude BETWEEN $4 AND $5
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query,
		StatusActive,
		lat-latDelta, lat+latDelta,
		lon-lonDelta, lon+lonDelta,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	origin := geo.Point{Lat: lat, Lon: lon}
	var alerts []Alert
	for rows.Next() {
		a, err := r.scanAlertFromRows(rows)
		if err != nil {
			return nil, err
		}
		if geo.Distance(origin, geo.Point{Lat: a.Latitude, Lon: a.Longitude}) <= radiusMeters {
			alerts = append(alerts, *a)
		}
	}

	return alerts, rows.Err()
}

// RecordValidation increments the validation count.
func (r *PostgresRepository) RecordValidation(ctx context.Context, id string) (*Alert, error) {
	query := `
		UPDATE alerts
		SET validations = validations + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + alertColumns

	return r.scanAlert(r.pool.QueryRow(ctx, query, id))
}

// RecordInvalidation increments the invalidation count.
func (r *PostgresRepository) RecordInvalidation(ctx context.Context, id string) (*Alert, error) {
	query := `
		UPDATE alerts
		SET invalidations = invalidations + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + alertColumns

	return r.scanAlert(r.pool.QueryRow(ctx, query, id))
}

// UpdateStatus sets the alert's lifecycle status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	query := `UPDATE alerts SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// ListActive retrieves all active alerts.
func (r *PostgresRepository) ListActive(ctx context.Context) ([]Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE status = $1`

	rows, err := r.pool.Query(ctx, query, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		a, err := r.scanAlertFromRows(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}

	return alerts, rows.Err()
}

// DeleteResolvedBefore removes resolved alerts last updated before the cutoff.
func (r *PostgresRepository) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	query := `DELETE FROM alerts WHERE status = $1 AND updated_at < $2`

	tag, err := r.pool.Exec(ctx, query, StatusResolved, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *PostgresRepository) scanAlert(row pgx.Row) (*Alert, error) {
	var a Alert
	err := row.Scan(
		&a.ID, &a.Type, &a.Latitude, &a.Longitude, &a.ReportedBy, &a.Status,
		&a.Validations, &a.Invalidations, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PostgresRepository) scanAlertFromRows(rows pgx.Rows) (*Alert, error) {
	var a Alert
	err := rows.Scan(
		&a.ID, &a.Type, &a.Latitude, &a.Longitude, &a.ReportedBy, &a.Status,
		&a.Validations, &a.Invalidations, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
