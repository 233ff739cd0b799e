package models

// Units represents the user's preferred unit system.
type Units string

const (
	UnitsMetric   Units = "METRIC"
	UnitsImperial Units = "IMPERIAL"
)

// Me represents the authenticated user's account summary.
type Me struct {
	UserID    string    `json:"userId"`
	Locale    string    `json:"locale"`
	Units     Units     `json:"units"`
	CreatedAt Timestamp `json:"createdAt"`
}

// MeInput is the request body for updating user settings.
type MeInput struct {
	Locale *string `json:"locale,omitempty" validate:"omitempty,bcp47_language_tag"`
	Units  *Units  `json:"units,omitempty" validate:"omitempty,oneof=METRIC IMPERIAL"`
}

// Preferences represents the user's navigation preferences.
type Preferences struct {
	DefaultMode     string    `json:"defaultMode"`
	AvoidTolls      bool      `json:"avoidTolls"`
	VoiceGuidance   bool      `json:"voiceGuidance"`
	MutedAlertTypes []string  `json:"mutedAlertTypes,omitempty"`
	UpdatedAt       Timestamp `json:"updatedAt"`
}

// PreferencesInput is the request body for updating navigation preferences.
type PreferencesInput struct {
	DefaultMode     *string  `json:"defaultMode,omitempty" validate:"omitempty,oneof=driving walking bicycling transit"`
	AvoidTolls      *bool    `json:"avoidTolls,omitempty"`
	VoiceGuidance   *bool    `json:"voiceGuidance,omitempty"`
	MutedAlertTypes []string `json:"mutedAlertTypes,omitempty"`
}
