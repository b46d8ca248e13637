package domain

import "time"

// AuthPayload is the identity carried by a bearer token. Tokens are stateless;
// nothing here is persisted server-side.
type AuthPayload struct {
	UserID    string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
