package favorite

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL favorite repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const favoriteColumns = `
	id, user_id, label, kind, lat, lon, address, created_at, updated_at
`

// Get retrieves a favorite by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Favorite, error) {
	query := `SELECT ` + favoriteColumns + ` FROM favorites WHERE id = $1`
	return r.scanFavorite(ctx, query, id)
}

// GetByUserAndID retrieves a favorite by user ID and favorite ID.
func (r *PostgresRepository) GetByUserAndID(ctx context.Context, userID, favoriteID string) (*Favorite, error) {
	query := `SELECT ` + favoriteColumns + ` FROM favorites WHERE id = $1 AND user_id = $2`
	return r.scanFavorite(ctx, query, favoriteID, userID)
}

// scanFavorite scans a favorite from a query result.
func (r *PostgresRepository) scanFavorite(ctx context.Context, query string, args ...interface{}) (*Favorite, error) {
	var f Favorite

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&f.ID,
		&f.UserID,
		&f.Label,
		&f.Kind,
		&f.Lat,
		&f.Lon,
		&f.Address,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFavoriteNotFound
		}
		return nil, err
	}

	return &f, nil
}

// List retrieves all favorites for a user with pagination.
func (r *PostgresRepository) List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results
	fetchLimit := limit + 1

	query := `
		SELECT ` + favoriteColumns + `
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, fetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var favorites []*Favorite
	for rows.Next() {
		var f Favorite
		err := rows.Scan(
			&f.ID,
			&f.UserID,
			&f.Label,
			&f.Kind,
			&f.Lat,
			&f.Lon,
			&f.Address,
			&f.CreatedAt,
			&f.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		favorites = append(favorites, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &ListResult{
		Items: favorites,
	}

	if len(favorites) > limit {
		result.Items = favorites[:limit]
		result.NextCursor = favorites[limit-1].ID
	}

	return result, nil
}

// Create creates a new favorite.
func (r *PostgresRepository) Create(ctx context.Context, f *Favorite) error {
	query := `
		INSERT INTO favorites (
			id, user_id, label, kind, lat, lon, address, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		f.ID,
		f.UserID,
		f.Label,
		f.Kind,
		f.Lat,
		f.Lon,
		f.Address,
		f.CreatedAt,
		f.UpdatedAt,
	)
	return err
}

// Update updates an existing favorite.
func (r *PostgresRepository) Update(ctx context.Context, f *Favorite) error {
	query := `
		UPDATE favorites SET
			label = $2,
			kind = $3,
			lat = $4,
			lon = $5,
			address = $6,
			updated_at = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		f.ID,
		f.Label,
		f.Kind,
		f.Lat,
		f.Lon,
		f.Address,
		f.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrFavoriteNotFound
	}

	return nil
}

// Delete deletes a favorite by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM favorites WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
