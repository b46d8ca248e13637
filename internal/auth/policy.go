package auth

import (
	"github.com/spec-kit/eventhub/internal/domain"
	apperrors "github.com/spec-kit/eventhub/pkg/util"
)

// Action enumerates the operations the policy decides on.
type Action string

const (
	ActionCreate      Action = "create"
	ActionRead        Action = "read"
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionListOwn     Action = "list-own"
	ActionListPending Action = "list-pending"
	ActionModerate    Action = "moderate"
	ActionListRSVPs   Action = "list-rsvps"
)

// Decide is the single authorization check consulted by every handler. It is
// a pure function over the actor's role and id, the owner id of the resource
// acted on (empty for resource-less actions), and the requested action.
// It returns nil when allowed and a forbidden DomainError otherwise.
// Unauthenticated callers never reach this point; the bearer middleware
// rejects them with 401 first, keeping 401 and 403 distinguishable.
func Decide(role domain.Role, actorID, ownerID string, action Action) error {
	switch action {
	case ActionCreate:
		if role == domain.RoleOwner || role == domain.RoleAdmin {
			return nil
		}
	case ActionRead, ActionListOwn:
		return nil
	case ActionUpdate:
		if actorID == ownerID || role == domain.RoleAdmin || role == domain.RoleStaff {
			return nil
		}
	case ActionDelete:
		// Staff may edit but not delete others' events.
		if actorID == ownerID || role == domain.RoleAdmin {
			return nil
		}
	case ActionModerate, ActionListPending:
		// Only admin approves or rejects; staff shares editing but not
		// moderation.
		if role == domain.RoleAdmin {
			return nil
		}
	case ActionListRSVPs:
		if actorID == ownerID || role == domain.RoleAdmin || role == domain.RoleStaff {
			return nil
		}
	}
	return apperrors.NewForbidden("insufficient privileges")
}
