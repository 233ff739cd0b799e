package favorite

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu        sync.RWMutex
	favorites map[string]*Favorite
}

// NewInMemoryRepository creates a new in-memory favorite repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		favorites: make(map[string]*Favorite),
	}
}

// Get retrieves a favorite by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.favorites[id]
	if !ok {
		return nil, ErrFavoriteNotFound
	}

	// Return a copy
	cpy := *f
	return &cpy, nil
}

// GetByUserAndID retrieves a favorite by user ID and favorite ID.
func (r *InMemoryRepository) GetByUserAndID(_ context.Context, userID, favoriteID string) (*Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.favorites[favoriteID]
	if !ok {
		return nil, ErrFavoriteNotFound
	}

	if f.UserID != userID {
		return nil, ErrFavoriteNotFound
	}

	// Return a copy
	cpy := *f
	return &cpy, nil
}

// List retrieves all favorites for a user with pagination.
func (r *InMemoryRepository) List(_ context.Context, userID string, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var favorites []*Favorite
	for _, f := range r.favorites {
		if f.UserID == userID {
			cpy := *f
			favorites = append(favorites, &cpy)
		}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
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
func (r *InMemoryRepository) Create(_ context.Context, f *Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *f
	r.favorites[f.ID] = &cpy
	return nil
}

// Update updates an existing favorite.
func (r *InMemoryRepository) Update(_ context.Context, f *Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.favorites[f.ID]; !ok {
		return ErrFavoriteNotFound
	}

	cpy := *f
	r.favorites[f.ID] = &cpy
	return nil
}

// Delete deletes a favorite by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.favorites, id)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
