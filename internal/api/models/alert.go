package models

// Alert represents a community-reported road alert.
type Alert struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Point         Point     `json:"point"`
	Status        string    `json:"status"`
	Validations   int       `json:"validations"`
	Invalidations int       `json:"invalidations"`
	CreatedAt     Timestamp `json:"createdAt"`
	UpdatedAt     Timestamp `json:"updatedAt"`
}

// AlertList is the response for listing nearby alerts.
type AlertList struct {
	Items []Alert `json:"items"`
}

// AlertReportRequest is the request body for reporting a new alert.
type AlertReportRequest struct {
	Type  string `json:"type" validate:"required,oneof=police traffic_jam accident roadworks obstacle"`
	Point Point  `json:"point" validate:"required"`
}

// AlertVoteRequest is the request body for confirming or dismissing an alert.
// The alert id comes from the URL; the body is currently empty but reserved.
type AlertVoteRequest struct{}
