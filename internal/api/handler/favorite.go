package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/roadmate/roadmate/internal/api/models"
	"github.com/roadmate/roadmate/internal/api/response"
	"github.com/roadmate/roadmate/internal/favorite"
)

// FavoriteHandler handles saved place endpoints.
type FavoriteHandler struct {
	favoriteService *favorite.Service
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(favoriteService *favorite.Service) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// ListFavorites handles GET /v1/me/favorites - list saved places.
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			response.BadRequest(w, r, "limit must be between 1 and 200", []models.FieldError{
				{Field: "limit", Message: "must be an integer between 1 and 200"},
			})
			return
		}
		limit = parsed
	}

	favorites, err := h.favoriteService.List(r.Context(), userID, limit)
	if err != nil {
		response.InternalError(w, r, "failed to list favorites")
		return
	}
	response.JSON(w, r, http.StatusOK, favorites)
}

// CreateFavorite handles POST /v1/me/favorites - save a place.
func (h *FavoriteHandler) CreateFavorite(w http.ResponseWriter, r *http.Request) {
	var input models.FavoriteCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	userID := GetUserID(r.Context())
	created, err := h.favoriteService.Create(r.Context(), userID, &input)
	if err != nil {
		var validationErr *favorite.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "validation failed", validationErr.Errors)
			return
		}
		response.InternalError(w, r, "failed to create favorite")
		return
	}

	location := fmt.Sprintf("/v1/me/favorites/%s", created.ID)
	response.Created(w, r, location, created)
}

// GetFavorite handles GET /v1/me/favorites/{favoriteId} - get a saved place.
func (h *FavoriteHandler) GetFavorite(w http.ResponseWriter, r *http.Request) {
	favoriteID := chi.URLParam(r, "favoriteId")
	if favoriteID == "" {
		response.BadRequest(w, r, "favoriteId is required", nil)
		return
	}

	userID := GetUserID(r.Context())
	fav, err := h.favoriteService.Get(r.Context(), userID, favoriteID)
	if err != nil {
		if errors.Is(err, favorite.ErrFavoriteNotFound) {
			response.NotFound(w, r, "favorite not found")
			return
		}
		response.InternalError(w, r, "failed to get favorite")
		return
	}
	response.JSON(w, r, http.StatusOK, fav)
}

// UpdateFavorite handles PUT /v1/me/favorites/{favoriteId} - update a saved place.
func (h *FavoriteHandler) UpdateFavorite(w http.ResponseWriter, r *http.Request) {
	favoriteID := chi.URLParam(r, "favoriteId")
	if favoriteID == "" {
		response.BadRequest(w, r, "favoriteId is required", nil)
		return
	}

	var input models.FavoriteUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	userID := GetUserID(r.Context())
	updated, err := h.favoriteService.Update(r.Context(), userID, favoriteID, &input)
	if err != nil {
		var validationErr *favorite.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "validation failed", validationErr.Errors)
			return
		}
		if errors.Is(err, favorite.ErrFavoriteNotFound) {
			response.NotFound(w, r, "favorite not found")
			return
		}
		response.InternalError(w, r, "failed to update favorite")
		return
	}
	response.JSON(w, r, http.StatusOK, updated)
}

// DeleteFavorite handles DELETE /v1/me/favorites/{favoriteId} - delete a saved place.
func (h *FavoriteHandler) DeleteFavorite(w http.ResponseWriter, r *http.Request) {
	favoriteID := chi.URLParam(r, "favoriteId")
	if favoriteID == "" {
		response.BadRequest(w, r, "favoriteId is required", nil)
		return
	}

	userID := GetUserID(r.Context())
	if err := h.favoriteService.Delete(r.Context(), userID, favoriteID); err != nil {
		if errors.Is(err, favorite.ErrFavoriteNotFound) {
			response.NotFound(w, r, "favorite not found")
			return
		}
		response.InternalError(w, r, "failed to delete favorite")
		return
	}
	response.NoContent(w, r)
}
