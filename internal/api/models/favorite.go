package models

// Favorite represents a saved place.
type Favorite struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Kind      string    `json:"kind"`
	Point     Point     `json:"point"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// PagedFavorites is a paginated list of favorites.
type PagedFavorites struct {
	Items []Favorite        `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// FavoriteCreateRequest is the request body for creating a favorite.
type FavoriteCreateRequest struct {
	Label   string  `json:"label" validate:"required,max=80"`
	Kind    string  `json:"kind" validate:"required,oneof=home work custom"`
	Point   Point   `json:"point" validate:"required"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=200"`
}

// FavoriteUpdateRequest is the request body for updating a favorite.
type FavoriteUpdateRequest struct {
	Label   *string `json:"label,omitempty" validate:"omitempty,max=80"`
	Kind    *string `json:"kind,omitempty" validate:"omitempty,oneof=home work custom"`
	Point   *Point  `json:"point,omitempty"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=200"`
}
