package domain

import "time"

// Role enumerates account types. Roles are immutable after registration.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
	RoleOwner Role = "owner"
	RoleGuest Role = "guest"
)

// ValidRole reports whether r is one of the enumerated roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleOwner, RoleGuest:
		return true
	}
	return false
}

// User is the domain model for registered accounts.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
