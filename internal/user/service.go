package user

import (
	"context"
	"errors"
	"time"

	"github.com/roadmate/roadmate/internal/api/models"
)

// Service errors.
var (
	ErrUserExists = errors.New("user already exists")
)

// Service provides user profile operations.
type Service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetMe retrieves the user's account summary.
func (s *Service) GetMe(ctx context.Context, userID string) (*models.Me, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.toAPIMe(user), nil
}

// UpdateMe updates the user's account settings.
func (s *Service) UpdateMe(ctx context.Context, userID string, input *models.MeInput) (*models.Me, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Apply updates
	if input.Locale != nil {
		user.Locale = *input.Locale
	}
	if input.Units != nil {
		user.Units = *input.Units
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.toAPIMe(user), nil
}

// GetPreferences retrieves the user's navigation preferences.
func (s *Service) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Preferences == nil {
		user.Preferences = DefaultPreferences()
	}

	return s.toAPIPreferences(user.Preferences), nil
}

// UpdatePreferences updates the user's navigation preferences.
func (s *Service) UpdatePreferences(ctx context.Context, userID string, input *models.PreferencesInput) (*models.Preferences, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	if user.Preferences == nil {
		user.Preferences = DefaultPreferences()
		user.Preferences.CreatedAt = now
	}

	// Apply updates
	if input.DefaultMode != nil {
		user.Preferences.DefaultMode = *input.DefaultMode
	}
	if input.AvoidTolls != nil {
		user.Preferences.AvoidTolls = *input.AvoidTolls
	}
	if input.VoiceGuidance != nil {
		user.Preferences.VoiceGuidance = *input.VoiceGuidance
	}
	if input.MutedAlertTypes != nil {
		user.Preferences.MutedAlertTypes = input.MutedAlertTypes
	}
	user.Preferences.UpdatedAt = now
	user.UpdatedAt = now

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.toAPIPreferences(user.Preferences), nil
}

// CreateUser creates a new user with default settings.
// This is typically called after authentication to ensure the user exists.
func (s *Service) CreateUser(ctx context.Context, userID, locale string) (*User, error) {
	// Check if user already exists
	existing, err := s.repo.Get(ctx, userID)
	if err == nil && existing != nil {
		return existing, nil
	}
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	// Create new user with defaults
	user := DefaultUser(userID)
	if locale != "" {
		user.Locale = locale
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteUser deletes a user and all associated data.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}

// toAPIMe converts a domain User to an API Me.
func (s *Service) toAPIMe(u *User) *models.Me {
	return &models.Me{
		UserID:    u.ID,
		Locale:    u.Locale,
		Units:     u.Units,
		CreatedAt: models.Timestamp(u.CreatedAt),
	}
}

// toAPIPreferences converts domain Preferences to API Preferences.
func (s *Service) toAPIPreferences(p *Preferences) *models.Preferences {
	return &models.Preferences{
		DefaultMode:     p.DefaultMode,
		AvoidTolls:      p.AvoidTolls,
		VoiceGuidance:   p.VoiceGuidance,
		MutedAlertTypes: p.MutedAlertTypes,
		UpdatedAt:       models.Timestamp(p.UpdatedAt),
	}
}
