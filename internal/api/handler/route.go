package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roadmate/roadmate/internal/api/models"
	"github.com/roadmate/roadmate/internal/api/response"
	"github.com/roadmate/roadmate/internal/geo"
	"github.com/roadmate/roadmate/internal/routing"
)

// RouteHandler handles route search endpoints.
type RouteHandler struct {
	routingService *routing.Service
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(routingService *routing.Service) *RouteHandler {
	return &RouteHandler{routingService: routingService}
}

// SearchRoutes handles POST /v1/routes:search - search route alternatives.
func (h *RouteHandler) SearchRoutes(w http.ResponseWriter, r *http.Request) {
	var input models.RouteSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.Origin == nil || input.Destination == nil {
		response.BadRequest(w, r, "origin and destination are required", []models.FieldError{
			{Field: "origin", Message: "required"},
			{Field: "destination", Message: "required"},
		})
		return
	}

	mode := routing.TravelMode(input.Mode)
	if input.Mode == "" {
		mode = routing.ModeDriving
	}
	if !mode.Valid() {
		response.BadRequest(w, r, "unsupported travel mode", []models.FieldError{
			{Field: "mode", Message: "must be one of driving, walking, bicycling, transit"},
		})
		return
	}

	req := routing.DirectionsRequest{
		Origin:      geo.Point{Lat: input.Origin.Lat, Lon: input.Origin.Lon},
		Destination: geo.Point{Lat: input.Destination.Lat, Lon: input.Destination.Lon},
		Mode:        mode,
		AvoidTolls:  input.AvoidTolls,
	}
	for _, wp := range input.Waypoints {
		req.Waypoints = append(req.Waypoints, geo.Point{Lat: wp.Lat, Lon: wp.Lon})
	}

	result, err := h.routingService.Search(r.Context(), req)
	if err != nil {
		h.writeSearchError(w, r, err)
		return
	}

	resp := models.RouteSearchResponse{
		GeneratedAt: models.Timestamp(result.FetchedAt),
		Provider:    result.Provider,
		Candidates:  make([]models.RouteCandidate, 0, len(result.Candidates)),
		Rankings: models.RouteRankings{
			TollFreeIDs: make([]string, 0, len(result.TollFreeIDs)),
		},
	}
	if result.FastestID != "" {
		resp.Rankings.FastestID = &result.FastestID
	}
	if result.EcoID != "" {
		resp.Rankings.EcoID = &result.EcoID
	}

	for _, c := range result.Candidates {
		candidate := models.RouteCandidate{
			ID:              c.ID,
			Summary:         c.Summary,
			DurationSeconds: c.DurationSeconds,
			DistanceMeters:  c.DistanceMeters,
			DurationText:    c.DurationText,
			DistanceText:    c.DistanceText,
			Polyline:        geo.EncodePolyline(c.Polyline),
			TollFree:        result.TollFreeIDs[c.ID],
			Steps:           make([]models.RouteStep, 0, len(c.Steps)),
		}
		for _, s := range c.Steps {
			candidate.Steps = append(candidate.Steps, models.RouteStep{
				Instruction:     s.Instruction,
				Maneuver:        s.Maneuver,
				DistanceMeters:  s.DistanceMeters,
				DurationSeconds: s.DurationSeconds,
				DistanceText:    s.DistanceText,
				DurationText:    s.DurationText,
			})
		}
		if result.TollFreeIDs[c.ID] {
			resp.Rankings.TollFreeIDs = append(resp.Rankings.TollFreeIDs, c.ID)
		}
		resp.Candidates = append(resp.Candidates, candidate)
	}

	// Traffic-dependent durations go stale quickly.
	w.Header().Set("Cache-Control", "private, max-age=60")
	response.JSON(w, r, http.StatusOK, resp)
}

func (h *RouteHandler) writeSearchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, routing.ErrInvalidCoordinates):
		response.BadRequest(w, r, "coordinates out of range", nil)
	case errors.Is(err, routing.ErrNoRouteFound):
		response.NotFound(w, r, "no route found between the given points")
	case errors.Is(err, routing.ErrRateLimitExceeded):
		response.TooManyRequests(w, r, "route search quota exceeded, retry later")
	case errors.Is(err, routing.ErrProviderUnavailable):
		response.ServiceUnavailable(w, r, "directions provider is temporarily unavailable")
	default:
		response.InternalError(w, r, "route search failed")
	}
}
