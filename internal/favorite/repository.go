package favorite

import "context"

// ListOptions contains options for listing favorites.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult contains the results of listing favorites.
type ListResult struct {
	Items      []*Favorite
	NextCursor string
}

// Repository defines the interface for favorite data persistence.
type Repository interface {
	// Get retrieves a favorite by ID.
	Get(ctx context.Context, id string) (*Favorite, error)

	// GetByUserAndID retrieves a favorite by user ID and favorite ID.
	// Returns ErrFavoriteNotFound if the favorite doesn't exist or doesn't belong to the user.
	GetByUserAndID(ctx context.Context, userID, favoriteID string) (*Favorite, error)

	// List retrieves all favorites for a user with pagination.
	List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error)

	// Create creates a new favorite.
	Create(ctx context.Context, favorite *Favorite) error

	// Update updates an existing favorite.
	Update(ctx context.Context, favorite *Favorite) error

	// Delete deletes a favorite by ID.
	Delete(ctx context.Context, id string) error
}
