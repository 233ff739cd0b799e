package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roadmate/roadmate/internal/api/models"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL user repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a user by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT
			user_id, locale, units,
			default_mode, avoid_tolls, voice_guidance, muted_alert_types,
			prefs_created_at, prefs_updated_at,
			created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`

	var (
		u     User
		prefs Preferences
		units string
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Locale,
		&units,
		&prefs.DefaultMode,
		&prefs.AvoidTolls,
		&prefs.VoiceGuidance,
		&prefs.MutedAlertTypes,
		&prefs.CreatedAt,
		&prefs.UpdatedAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	u.Units = models.Units(units)
	u.Preferences = &prefs
	return &u, nil
}

// Create creates a new user.
func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	prefs := u.Preferences
	if prefs == nil {
		prefs = DefaultPreferences()
	}

	query := `
		INSERT INTO user_profiles (
			user_id, locale, units,
			default_mode, avoid_tolls, voice_guidance, muted_alert_types,
			prefs_created_at, prefs_updated_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		u.ID,
		u.Locale,
		string(u.Units),
		prefs.DefaultMode,
		prefs.AvoidTolls,
		prefs.VoiceGuidance,
		prefs.MutedAlertTypes,
		prefs.CreatedAt,
		prefs.UpdatedAt,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

// Update updates an existing user.
func (r *PostgresRepository) Update(ctx context.Context, u *User) error {
	prefs := u.Preferences
	if prefs == nil {
		prefs = DefaultPreferences()
	}

	query := `
		UPDATE user_profiles SET
			locale = $2,
			units = $3,
			default_mode = $4,
			avoid_tolls = $5,
			voice_guidance = $6,
			muted_alert_types = $7,
			prefs_created_at = $8,
			prefs_updated_at = $9,
			updated_at = $10
		WHERE user_id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		u.ID,
		u.Locale,
		string(u.Units),
		prefs.DefaultMode,
		prefs.AvoidTolls,
		prefs.VoiceGuidance,
		prefs.MutedAlertTypes,
		prefs.CreatedAt,
		prefs.UpdatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Delete deletes a user and all associated data.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM user_profiles WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
