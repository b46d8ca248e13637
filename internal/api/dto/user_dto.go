package dto

import "github.com/spec-kit/eventhub/internal/domain"

// RegisterRequest payload for new accounts. Role defaults to owner.
type RegisterRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
	Name     string      `json:"name"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is returned on successful registration.
type RegisterResponse struct {
	UserID string      `json:"userId"`
	Role   domain.Role `json:"role"`
	Token  string      `json:"token"`
	Name   string      `json:"name"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token  string      `json:"token"`
	Role   domain.Role `json:"role"`
	UserID string      `json:"userId"`
}
