package favorite

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/roadmate/roadmate/internal/api/models"
)

// Service errors.
var (
	ErrNotAuthorized = errors.New("not authorized to access this favorite")
)

// Validation constants.
const (
	MaxLabelLength   = 80
	MaxAddressLength = 200
)

// Service provides favorite operations.
type Service struct {
	repo Repository
}

// NewService creates a new favorite service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List retrieves all favorites for a user.
func (s *Service) List(ctx context.Context, userID string, limit int) (*models.PagedFavorites, error) {
	result, err := s.repo.List(ctx, userID, ListOptions{Limit: limit})
	if err != nil {
		return nil, err
	}

	items := make([]models.Favorite, 0, len(result.Items))
	for _, f := range result.Items {
		items = append(items, s.toAPIFavorite(f))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedFavorites{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// Get retrieves a favorite by ID for a user.
func (s *Service) Get(ctx context.Context, userID, favoriteID string) (*models.Favorite, error) {
	f, err := s.repo.GetByUserAndID(ctx, userID, favoriteID)
	if err != nil {
		if errors.Is(err, ErrFavoriteNotFound) {
			return nil, ErrFavoriteNotFound
		}
		return nil, err
	}

	result := s.toAPIFavorite(f)
	return &result, nil
}

// Create creates a new favorite for a user.
func (s *Service) Create(ctx context.Context, userID string, input *models.FavoriteCreateRequest) (*models.Favorite, error) {
	// Validate input
	if fieldErrors := s.validateCreateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	favoriteID := "fav_" + uuid.New().String()[:22]

	f := &Favorite{
		ID:        favoriteID,
		UserID:    userID,
		Label:     input.Label,
		Kind:      Kind(input.Kind),
		Lat:       input.Point.Lat,
		Lon:       input.Point.Lon,
		Address:   input.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}

	result := s.toAPIFavorite(f)
	return &result, nil
}

// Update updates an existing favorite for a user.
func (s *Service) Update(ctx context.Context, userID, favoriteID string, input *models.FavoriteUpdateRequest) (*models.Favorite, error) {
	// Get existing favorite
	f, err := s.repo.GetByUserAndID(ctx, userID, favoriteID)
	if err != nil {
		if errors.Is(err, ErrFavoriteNotFound) {
			return nil, ErrFavoriteNotFound
		}
		return nil, err
	}

	// Validate input
	if fieldErrors := s.validateUpdateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	// Apply updates
	if input.Label != nil {
		f.Label = *input.Label
	}
	if input.Kind != nil {
		f.Kind = Kind(*input.Kind)
	}
	if input.Point != nil {
		f.Lat = input.Point.Lat
		f.Lon = input.Point.Lon
	}
	if input.Address != nil {
		f.Address = input.Address
	}
	f.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}

	result := s.toAPIFavorite(f)
	return &result, nil
}

// Delete deletes a favorite for a user.
func (s *Service) Delete(ctx context.Context, userID, favoriteID string) error {
	// Verify ownership
	_, err := s.repo.GetByUserAndID(ctx, userID, favoriteID)
	if err != nil {
		if errors.Is(err, ErrFavoriteNotFound) {
			return ErrFavoriteNotFound
		}
		return err
	}

	return s.repo.Delete(ctx, favoriteID)
}

// validateCreateInput validates the create favorite input.
func (s *Service) validateCreateInput(input *models.FavoriteCreateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Label == "" {
		errs = append(errs, models.FieldError{Field: "label", Message: "is required"})
	} else if len(input.Label) > MaxLabelLength {
		errs = append(errs, models.FieldError{Field: "label", Message: "must be at most 80 characters"})
	}

	if input.Kind == "" {
		errs = append(errs, models.FieldError{Field: "kind", Message: "is required"})
	} else if !Kind(input.Kind).Known() {
		errs = append(errs, models.FieldError{Field: "kind", Message: "must be one of home, work, custom"})
	}

	errs = append(errs, s.validatePoint(input.Point)...)

	if input.Address != nil && len(*input.Address) > MaxAddressLength {
		errs = append(errs, models.FieldError{Field: "address", Message: "must be at most 200 characters"})
	}

	return errs
}

// validateUpdateInput validates the update favorite input.
func (s *Service) validateUpdateInput(input *models.FavoriteUpdateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Label != nil {
		if *input.Label == "" {
			errs = append(errs, models.FieldError{Field: "label", Message: "cannot be empty"})
		} else if len(*input.Label) > MaxLabelLength {
			errs = append(errs, models.FieldError{Field: "label", Message: "must be at most 80 characters"})
		}
	}

	if input.Kind != nil && !Kind(*input.Kind).Known() {
		errs = append(errs, models.FieldError{Field: "kind", Message: "must be one of home, work, custom"})
	}

	if input.Point != nil {
		errs = append(errs, s.validatePoint(*input.Point)...)
	}

	if input.Address != nil && len(*input.Address) > MaxAddressLength {
		errs = append(errs, models.FieldError{Field: "address", Message: "must be at most 200 characters"})
	}

	return errs
}

// validatePoint validates a favorite's coordinates.
func (s *Service) validatePoint(p models.Point) []models.FieldError {
	var errs []models.FieldError

	if p.Lat < -90 || p.Lat > 90 {
		errs = append(errs, models.FieldError{
			Field:   "point.lat",
			Message: "must be between -90 and 90",
		})
	}

	if p.Lon < -180 || p.Lon > 180 {
		errs = append(errs, models.FieldError{
			Field:   "point.lon",
			Message: "must be between -180 and 180",
		})
	}

	return errs
}

// toAPIFavorite converts a domain Favorite to an API Favorite.
func (s *Service) toAPIFavorite(f *Favorite) models.Favorite {
	return models.Favorite{
		ID:        f.ID,
		Label:     f.Label,
		Kind:      string(f.Kind),
		Point:     models.Point{Lat: f.Lat, Lon: f.Lon},
		Address:   f.Address,
		CreatedAt: models.Timestamp(f.CreatedAt),
		UpdatedAt: models.Timestamp(f.UpdatedAt),
	}
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
