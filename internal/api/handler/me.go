package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roadmate/roadmate/internal/api/models"
	"github.com/roadmate/roadmate/internal/api/response"
	"github.com/roadmate/roadmate/internal/routing"
	"github.com/roadmate/roadmate/internal/user"
)

// MeHandler handles user account and preference endpoints.
type MeHandler struct {
	userService *user.Service
}

// NewMeHandler creates a new MeHandler.
func NewMeHandler(userService *user.Service) *MeHandler {
	return &MeHandler{userService: userService}
}

// ensureUser provisions a default profile on first access. Profiles are
// created lazily rather than at registration time, so a valid token is all
// a request needs.
func (h *MeHandler) ensureUser(r *http.Request, userID string) error {
	_, err := h.userService.CreateUser(r.Context(), userID, "")
	return err
}

// GetMe handles GET /v1/me - get current user account summary.
func (h *MeHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if err := h.ensureUser(r, userID); err != nil {
		response.InternalError(w, r, "failed to get user")
		return
	}

	me, err := h.userService.GetMe(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.NotFound(w, r, "user not found")
			return
		}
		response.InternalError(w, r, "failed to get user")
		return
	}
	response.JSON(w, r, http.StatusOK, me)
}

// UpdateMe handles PATCH /v1/me - update account settings.
func (h *MeHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var input models.MeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.Units != nil && *input.Units != models.UnitsMetric && *input.Units != models.UnitsImperial {
		response.BadRequest(w, r, "invalid units", []models.FieldError{
			{Field: "units", Message: "must be METRIC or IMPERIAL"},
		})
		return
	}

	userID := GetUserID(r.Context())
	if err := h.ensureUser(r, userID); err != nil {
		response.InternalError(w, r, "failed to update user")
		return
	}
	me, err := h.userService.UpdateMe(r.Context(), userID, &input)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.NotFound(w, r, "user not found")
			return
		}
		response.InternalError(w, r, "failed to update user")
		return
	}
	response.JSON(w, r, http.StatusOK, me)
}

// GetPreferences handles GET /v1/me/preferences - get navigation preferences.
func (h *MeHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if err := h.ensureUser(r, userID); err != nil {
		response.InternalError(w, r, "failed to get preferences")
		return
	}

	prefs, err := h.userService.GetPreferences(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.NotFound(w, r, "user not found")
			return
		}
		response.InternalError(w, r, "failed to get preferences")
		return
	}
	response.JSON(w, r, http.StatusOK, prefs)
}

// UpdatePreferences handles PUT /v1/me/preferences - update navigation preferences.
func (h *MeHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var input models.PreferencesInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.DefaultMode != nil && !routing.TravelMode(*input.DefaultMode).Valid() {
		response.BadRequest(w, r, "invalid default mode", []models.FieldError{
			{Field: "defaultMode", Message: "must be one of driving, walking, bicycling, transit"},
		})
		return
	}

	userID := GetUserID(r.Context())
	if err := h.ensureUser(r, userID); err != nil {
		response.InternalError(w, r, "failed to update preferences")
		return
	}
	prefs, err := h.userService.UpdatePreferences(r.Context(), userID, &input)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.NotFound(w, r, "user not found")
			return
		}
		response.InternalError(w, r, "failed to update preferences")
		return
	}
	response.JSON(w, r, http.StatusOK, prefs)
}
