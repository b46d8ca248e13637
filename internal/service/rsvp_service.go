package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eventhub/internal/auth"
	"github.com/spec-kit/eventhub/internal/domain"
	"github.com/spec-kit/eventhub/internal/events"
	"github.com/spec-kit/eventhub/internal/repository"
	apperrors "github.com/spec-kit/eventhub/pkg/util"
)

// RSVPService handles attendance submissions and listings.
type RSVPService struct {
	rsvps      repository.RSVPRepository
	eventsRepo repository.EventRepository
	dispatcher events.Dispatcher
}

// NewRSVPService constructs the service.
func NewRSVPService(rsvps repository.RSVPRepository, eventsRepo repository.EventRepository, dispatcher events.Dispatcher) *RSVPService {
	return &RSVPService{rsvps: rsvps, eventsRepo: eventsRepo, dispatcher: dispatcher}
}

// Submit records an RSVP for an event. No authentication required; name and
// email are both mandatory and nothing is persisted when either is missing.
func (s *RSVPService) Submit(ctx context.Context, eventID, name, email string) (*domain.RSVP, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return nil, apperrors.NewValidationError("name and email required", nil)
	}

	if _, err := s.eventsRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", nil)
		}
		return nil, err
	}

	rsvp := &domain.RSVP{
		EventID: eventID,
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
	}
	if err := s.rsvps.Create(ctx, rsvp); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventRSVPSubmitted,
			EventID:   eventID,
			Timestamp: time.Now(),
			Payload:   events.RSVPSubmittedPayload{RSVPID: rsvp.ID, Name: rsvp.Name},
		})
	}
	return rsvp, nil
}

// List returns the RSVPs for an event, newest first. Readable only by the
// event owner, admin or staff.
func (s *RSVPService) List(ctx context.Context, actor *domain.AuthPayload, eventID string) ([]domain.RSVP, error) {
	event, err := s.eventsRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", nil)
		}
		return nil, err
	}
	if err := auth.Decide(actor.Role, actor.UserID, event.OwnerID, auth.ActionListRSVPs); err != nil {
		return nil, err
	}
	return s.rsvps.ListByEvent(ctx, eventID)
}
