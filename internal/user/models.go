// Package user provides user profile and navigation preference management.
//
// # PII Considerations
//
// This package handles user profile data with minimal PII collection:
//
// Data Stored:
//   - UserID: Internal identifier (not PII, randomly generated)
//   - Locale: Language/region preference (e.g., "fr-FR") - minimal PII risk
//   - Units: Display unit preference (METRIC/IMPERIAL) - not PII
//   - Preferences: Navigation preferences (guidance voice, toll avoidance) - not PII
//
// Data NOT Stored:
//   - Name, email, password (handled separately in the auth package)
//   - Location history (routes are computed on-demand, not stored)
//   - Raw position traces (live tracking runs on-device, only alert votes reach the backend)
package user

import (
	"time"

	"github.com/roadmate/roadmate/internal/api/models"
)

// User represents a user's complete profile and settings.
type User struct {
	// ID is the unique user identifier (format: usr_XXXX).
	ID string

	// Locale is the user's preferred language/region (BCP 47 format, e.g., "fr-FR").
	Locale string

	// Units is the user's preferred unit system for distances.
	Units models.Units

	// Preferences contains the user's navigation preferences.
	Preferences *Preferences

	// CreatedAt is when the user was created.
	CreatedAt time.Time

	// UpdatedAt is when the user was last updated.
	UpdatedAt time.Time
}

// Preferences represents navigation preferences.
type Preferences struct {
	// DefaultMode is the travel mode preselected for route searches.
	DefaultMode string

	// AvoidTolls requests toll-free routing by default.
	AvoidTolls bool

	// VoiceGuidance enables spoken turn instructions.
	VoiceGuidance bool

	// MutedAlertTypes lists alert types the user does not want prompts for.
	MutedAlertTypes []string

	// CreatedAt is when the preferences were created.
	CreatedAt time.Time

	// UpdatedAt is when the preferences were last updated.
	UpdatedAt time.Time
}

// DefaultUser returns a new user with default settings.
func DefaultUser(id string) *User {
	now := time.Now()
	return &User{
		ID:          id,
		Locale:      "en-US",
		Units:       models.UnitsMetric,
		Preferences: DefaultPreferences(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// DefaultPreferences returns preferences with default settings.
func DefaultPreferences() *Preferences {
	now := time.Now()
	return &Preferences{
		DefaultMode:   "driving",
		AvoidTolls:    false,
		VoiceGuidance: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
