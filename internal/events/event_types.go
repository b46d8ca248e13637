package events

import (
	"time"

	"github.com/spec-kit/eventhub/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCreated       EventType = "event_created"
	EventStatusChanged EventType = "event_status_changed"
	EventRSVPSubmitted EventType = "event_rsvp_submitted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EventID   string      `json:"event_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CreatedPayload payload.
type CreatedPayload struct {
	OwnerID string `json:"owner_id"`
	Title   string `json:"title"`
}

// StatusChangedPayload payload. Owner contact details travel with the event
// so notification handlers need no further lookups.
type StatusChangedPayload struct {
	OldStatus  domain.EventStatus `json:"old_status"`
	NewStatus  domain.EventStatus `json:"new_status"`
	Title      string             `json:"title"`
	OwnerEmail string             `json:"owner_email"`
}

// RSVPSubmittedPayload payload.
type RSVPSubmittedPayload struct {
	RSVPID string `json:"rsvp_id"`
	Name   string `json:"name"`
}
