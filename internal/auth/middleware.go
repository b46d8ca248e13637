package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eventhub/internal/domain"
	apperrors "github.com/spec-kit/eventhub/pkg/util"
)

const principalKey = "auth_principal"

// Middleware validates bearer tokens on protected routes. Verification is
// stateless; the payload embedded in the token is the whole identity.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle enforces authentication. Missing, malformed, expired and forged
// tokens all yield the same 401.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	payload, err := m.tokens.Verify(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(principalKey, payload)
	return c.Next()
}

// PayloadFromContext retrieves the authenticated identity.
func PayloadFromContext(c *fiber.Ctx) (*domain.AuthPayload, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	payload, ok := val.(*domain.AuthPayload)
	return payload, ok
}
