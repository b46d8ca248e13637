package dto

import (
	"time"

	"github.com/spec-kit/eventhub/internal/domain"
)

// CreateEventRequest payload. Date is RFC3339.
type CreateEventRequest struct {
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Date         time.Time            `json:"date"`
	Location     string               `json:"location"`
	CustomFields []domain.CustomField `json:"customFields"`
}

// UpdateEventRequest is a partial edit; nil fields are untouched. Status is
// only honored on the status endpoint.
type UpdateEventRequest struct {
	Title        *string               `json:"title"`
	Description  *string               `json:"description"`
	Date         *time.Time            `json:"date"`
	Location     *string               `json:"location"`
	CustomFields *[]domain.CustomField `json:"customFields"`
	Status       *domain.EventStatus   `json:"status"`
}

// EventResponse is the full event representation for owner and moderation
// contexts.
type EventResponse struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Date         time.Time            `json:"date"`
	Location     string               `json:"location"`
	OwnerID      string               `json:"ownerId"`
	CustomFields []domain.CustomField `json:"customFields"`
	Status       domain.EventStatus   `json:"status"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// EventProjection is the public view; moderation state is not exposed.
type EventProjection struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Date         time.Time            `json:"date"`
	Location     string               `json:"location"`
	OwnerID      string               `json:"ownerId"`
	CustomFields []domain.CustomField `json:"customFields"`
}

// EventListResponse is a paginated listing.
type EventListResponse struct {
	Events     any `json:"events"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}
