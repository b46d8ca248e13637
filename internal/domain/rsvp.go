package domain

import "time"

// RSVP is an append-only attendance record for an event. Submissions require
// no account; records are never mutated after creation.
type RSVP struct {
	ID          string
	EventID     string
	Name        string
	Email       string
	SubmittedAt time.Time
}
