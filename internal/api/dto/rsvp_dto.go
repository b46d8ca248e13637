package dto

import "time"

// RSVPRequest payload for public submissions.
type RSVPRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RSVPResponse represents a stored submission.
type RSVPResponse struct {
	ID          string    `json:"id"`
	EventID     string    `json:"eventId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	SubmittedAt time.Time `json:"submittedAt"`
}
