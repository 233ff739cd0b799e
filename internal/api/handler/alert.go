package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/roadmate/roadmate/internal/alert"
	"github.com/roadmate/roadmate/internal/api/models"
	"github.com/roadmate/roadmate/internal/api/response"
	"github.com/roadmate/roadmate/internal/geo"
)

// AlertHandler handles community alert endpoints.
type AlertHandler struct {
	alertService *alert.Service
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alertService *alert.Service) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// ListNearby handles GET /v1/alerts - list active alerts around a position.
func (h *AlertHandler) ListNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		response.BadRequest(w, r, "lat and lon query parameters are required", []models.FieldError{
			{Field: "lat", Message: "required decimal degrees"},
			{Field: "lon", Message: "required decimal degrees"},
		})
		return
	}

	p := geo.Point{Lat: lat, Lon: lon}
	if err := p.Validate(); err != nil {
		response.BadRequest(w, r, "coordinates out of range", nil)
		return
	}

	alerts, err := h.alertService.Nearby(r.Context(), p)
	if err != nil {
		response.InternalError(w, r, "failed to list alerts")
		return
	}

	list := models.AlertList{Items: make([]models.Alert, 0, len(alerts))}
	for i := range alerts {
		list.Items = append(list.Items, toAPIAlert(&alerts[i]))
	}
	response.JSON(w, r, http.StatusOK, list)
}

// Report handles POST /v1/alerts - report a new hazard.
func (h *AlertHandler) Report(w http.ResponseWriter, r *http.Request) {
	var input models.AlertReportRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if err := (geo.Point{Lat: input.Point.Lat, Lon: input.Point.Lon}).Validate(); err != nil {
		response.BadRequest(w, r, "coordinates out of range", nil)
		return
	}

	userID := GetUserID(r.Context())
	created, err := h.alertService.Report(r.Context(), userID, alert.PendingReport{
		Type:      alert.Type(input.Type),
		Latitude:  input.Point.Lat,
		Longitude: input.Point.Lon,
	})
	if err != nil {
		if errors.Is(err, alert.ErrUnknownType) {
			response.BadRequest(w, r, "unknown alert type", []models.FieldError{
				{Field: "type", Message: "must be one of police, traffic_jam, accident, roadworks, obstacle"},
			})
			return
		}
		response.InternalError(w, r, "failed to report alert")
		return
	}

	location := fmt.Sprintf("/v1/alerts/%s", created.ID)
	response.Created(w, r, location, toAPIAlert(created))
}

// Get handles GET /v1/alerts/{alertId} - get a single alert.
func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertId")
	if alertID == "" {
		response.BadRequest(w, r, "alertId is required", nil)
		return
	}

	a, err := h.alertService.Get(r.Context(), alertID)
	if err != nil {
		if errors.Is(err, alert.ErrAlertNotFound) {
			response.NotFound(w, r, "alert not found")
			return
		}
		response.InternalError(w, r, "failed to get alert")
		return
	}
	response.JSON(w, r, http.StatusOK, toAPIAlert(a))
}

// Validate handles POST /v1/alerts/{alertId}:validate - confirm the hazard
// is still present. Voting on an alert that has already resolved is not an
// error; the vote is simply dropped.
func (h *AlertHandler) Validate(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertId")
	if alertID == "" {
		response.BadRequest(w, r, "alertId is required", nil)
		return
	}

	if err := h.alertService.Validate(r.Context(), alertID); err != nil {
		response.InternalError(w, r, "failed to validate alert")
		return
	}
	response.NoContent(w, r)
}

// Invalidate handles POST /v1/alerts/{alertId}:invalidate - report the hazard
// as gone.
func (h *AlertHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertId")
	if alertID == "" {
		response.BadRequest(w, r, "alertId is required", nil)
		return
	}

	if err := h.alertService.Invalidate(r.Context(), alertID); err != nil {
		response.InternalError(w, r, "failed to invalidate alert")
		return
	}
	response.NoContent(w, r)
}

func toAPIAlert(a *alert.Alert) models.Alert {
	return models.Alert{
		ID:            a.ID,
		Type:          string(a.Type),
		Point:         models.Point{Lat: a.Latitude, Lon: a.Longitude},
		Status:        string(a.Status),
		Validations:   a.Validations,
		Invalidations: a.Invalidations,
		CreatedAt:     models.Timestamp(a.CreatedAt),
		UpdatedAt:     models.Timestamp(a.UpdatedAt),
	}
}
