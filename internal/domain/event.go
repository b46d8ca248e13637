package domain

import "time"

// EventStatus enumerates moderation states for events.
type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusApproved EventStatus = "approved"
	EventStatusRejected EventStatus = "rejected"
)

// ValidEventStatus reports whether s is one of the enumerated states.
func ValidEventStatus(s EventStatus) bool {
	switch s {
	case EventStatusPending, EventStatusApproved, EventStatusRejected:
		return true
	}
	return false
}

// CustomField is a single label/value pair attached to an event. Order is
// preserved as submitted.
type CustomField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Event is the aggregate for community events subject to moderation.
type Event struct {
	ID           string
	Title        string
	Description  string
	Date         time.Time
	Location     string
	OwnerID      string
	CustomFields []CustomField
	Status       EventStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
