// Package alert provides community road alert management: hazard reports,
// position-based lookup, and the validate/invalidate vote lifecycle.
package alert

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrAlertNotFound = errors.New("alert not found")
)

// Type is the hazard category of an alert. The server may carry categories
// this client code does not know about; unknown types pass through untouched.
type Type string

const (
	TypePolice     Type = "police"
	TypeTrafficJam Type = "traffic_jam"
	TypeAccident   Type = "accident"
	TypeRoadworks  Type = "roadworks"
	TypeObstacle   Type = "obstacle"
)

// Known reports whether the type is one of the fixed client-side categories.
func (t Type) Known() bool {
	switch t {
	case TypePolice, TypeTrafficJam, TypeAccident, TypeRoadworks, TypeObstacle:
		return true
	}
	return false
}

// Status is the lifecycle state of an alert on the server.
type Status string

const (
	// StatusActive alerts are returned by position queries.
	StatusActive Status = "active"
	// StatusResolved alerts were dismissed by votes or expired by the sweep.
	StatusResolved Status = "resolved"
)

// Alert is a persisted hazard report with a canonical server-assigned ID.
// Location is fixed at creation time and never updated.
type Alert struct {
	ID            string
	Type          Type
	Latitude      float64
	Longitude     float64
	ReportedBy    string
	Status        Status
	Validations   int
	Invalidations int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PendingReport is a locally-created hazard report that has no server
// identity yet. Keeping it a distinct type makes provenance explicit: a
// pending report can never be mistaken for a confirmed server record, and
// callers only obtain an Alert once the canonical ID exists.
type PendingReport struct {
	Type      Type
	Latitude  float64
	Longitude float64
}
