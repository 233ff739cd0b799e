// Package favorite provides saved-place management services.
package favorite

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrFavoriteNotFound = errors.New("favorite not found")
)

// Kind categorizes a saved place.
type Kind string

// Favorite kinds.
const (
	KindHome   Kind = "home"
	KindWork   Kind = "work"
	KindCustom Kind = "custom"
)

// Known reports whether k is a recognized favorite kind.
func (k Kind) Known() bool {
	switch k {
	case KindHome, KindWork, KindCustom:
		return true
	}
	return false
}

// Favorite represents a saved place.
type Favorite struct {
	ID        string
	UserID    string
	Label     string
	Kind      Kind
	Lat       float64
	Lon       float64
	Address   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
