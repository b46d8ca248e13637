package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eventhub/internal/auth"
	"github.com/spec-kit/eventhub/internal/cache"
	"github.com/spec-kit/eventhub/internal/domain"
	"github.com/spec-kit/eventhub/internal/events"
	"github.com/spec-kit/eventhub/internal/repository"
	apperrors "github.com/spec-kit/eventhub/pkg/util"
)

// EventService coordinates the event lifecycle and the moderation workflow.
type EventService struct {
	eventsRepo repository.EventRepository
	users      repository.UserRepository
	rsvps      repository.RSVPRepository
	dispatcher events.Dispatcher
	cache      *cache.EventCache
}

// EventDependencies bundles collaborators for the event service.
type EventDependencies struct {
	EventRepo  repository.EventRepository
	UserRepo   repository.UserRepository
	RSVPRepo   repository.RSVPRepository
	Dispatcher events.Dispatcher
	Cache      *cache.EventCache
}

// EventCreateInput describes event creation payload.
type EventCreateInput struct {
	Title        string
	Description  string
	Date         time.Time
	Location     string
	CustomFields []domain.CustomField
}

// EventUpdateInput describes a partial update. Nil fields are untouched.
type EventUpdateInput struct {
	Title        *string
	Description  *string
	Date         *time.Time
	Location     *string
	CustomFields *[]domain.CustomField
	Status       *domain.EventStatus
}

// EventPageResult carries one page plus the total for the applied filter.
type EventPageResult struct {
	Events []domain.Event
	Total  int
	Page   int
	Limit  int
}

// TotalPages reports ceil(total/limit).
func (r EventPageResult) TotalPages() int {
	if r.Limit <= 0 {
		return 0
	}
	return (r.Total + r.Limit - 1) / r.Limit
}

// NewEventService constructs the service.
func NewEventService(deps EventDependencies) *EventService {
	return &EventService{
		eventsRepo: deps.EventRepo,
		users:      deps.UserRepo,
		rsvps:      deps.RSVPRepo,
		dispatcher: deps.Dispatcher,
		cache:      deps.Cache,
	}
}

// Create creates an event for the actor. New events always enter moderation
// as pending, regardless of role.
func (s *EventService) Create(ctx context.Context, actor *domain.AuthPayload, input EventCreateInput) (*domain.Event, error) {
	if err := auth.Decide(actor.Role, actor.UserID, "", auth.ActionCreate); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" || input.Date.IsZero() {
		return nil, apperrors.NewValidationError("title and date are required", nil)
	}

	event := &domain.Event{
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		Date:         input.Date,
		Location:     input.Location,
		OwnerID:      actor.UserID,
		CustomFields: input.CustomFields,
		Status:       domain.EventStatusPending,
	}
	if event.CustomFields == nil {
		event.CustomFields = []domain.CustomField{}
	}

	if err := s.eventsRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:    events.EventCreated,
		EventID: event.ID,
		Actor:   events.Actor{UserID: actor.UserID, Role: actor.Role},
		Payload: events.CreatedPayload{OwnerID: event.OwnerID, Title: event.Title},
	})
	return event, nil
}

// Get returns a single event. Public; served through the projection cache.
func (s *EventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	if cached, ok := s.cache.Get(ctx, id); ok {
		return cached, nil
	}
	event, err := s.eventsRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", nil)
		}
		return nil, err
	}
	s.cache.Set(ctx, event)
	return event, nil
}

// Update applies a partial field edit. Status cannot change through this
// path; moderation goes through ChangeStatus.
func (s *EventService) Update(ctx context.Context, actor *domain.AuthPayload, id string, input EventUpdateInput) (*domain.Event, error) {
	event, err := s.eventsRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", nil)
		}
		return nil, err
	}
	if err := auth.Decide(actor.Role, actor.UserID, event.OwnerID, auth.ActionUpdate); err != nil {
		return nil, err
	}

	input.Status = nil
	applyEdits(event, input)

	if err := s.eventsRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, event.ID)
	return event, nil
}

// Delete removes an event and, via the schema, its RSVPs.
func (s *EventService) Delete(ctx context.Context, actor *domain.AuthPayload, id string) error {
	event, err := s.eventsRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("event", nil)
		}
		return err
	}
	if err := auth.Decide(actor.Role, actor.UserID, event.OwnerID, auth.ActionDelete); err != nil {
		return err
	}
	if err := s.eventsRepo.Delete(ctx, event.ID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, event.ID)
	return nil
}

// ChangeStatus applies field edits and an optional status transition in one
// request. Edits are applied unconditionally before the status is evaluated.
// The status change is persisted first; the notification side effect is
// published afterwards and can never fail the request.
func (s *EventService) ChangeStatus(ctx context.Context, actor *domain.AuthPayload, id string, input EventUpdateInput) (*domain.Event, error) {
	event, err := s.eventsRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", nil)
		}
		return nil, err
	}
	if err := auth.Decide(actor.Role, actor.UserID, event.OwnerID, auth.ActionUpdate); err != nil {
		return nil, err
	}
	if input.Status != nil {
		if !domain.ValidEventStatus(*input.Status) {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
		}
		if err := auth.Decide(actor.Role, actor.UserID, event.OwnerID, auth.ActionModerate); err != nil {
			return nil, err
		}
	}

	priorStatus := event.Status
	applyEdits(event, input)

	if err := s.eventsRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, event.ID)

	if input.Status != nil && (*input.Status == domain.EventStatusApproved || *input.Status == domain.EventStatusRejected) {
		ownerEmail := ""
		if owner, ownerErr := s.users.GetByID(ctx, event.OwnerID); ownerErr == nil {
			ownerEmail = owner.Email
		}
		s.publish(ctx, events.Event{
			Type:    events.EventStatusChanged,
			EventID: event.ID,
			Actor:   events.Actor{UserID: actor.UserID, Role: actor.Role},
			Payload: events.StatusChangedPayload{
				OldStatus:  priorStatus,
				NewStatus:  event.Status,
				Title:      event.Title,
				OwnerEmail: ownerEmail,
			},
		})
	}
	return event, nil
}

// ListOwn returns the actor's events, newest date first, optionally filtered
// by status.
func (s *EventService) ListOwn(ctx context.Context, actor *domain.AuthPayload, status *domain.EventStatus, page, limit int) (*EventPageResult, error) {
	if err := auth.Decide(actor.Role, actor.UserID, "", auth.ActionListOwn); err != nil {
		return nil, err
	}
	if status != nil && !domain.ValidEventStatus(*status) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *status})
	}
	page, limit = normalizePage(page, limit)
	items, total, err := s.eventsRepo.ListByOwner(ctx, actor.UserID, status, repository.EventPage{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	return &EventPageResult{Events: items, Total: total, Page: page, Limit: limit}, nil
}

// ListPending returns events awaiting moderation. Admin only.
func (s *EventService) ListPending(ctx context.Context, actor *domain.AuthPayload, page, limit int) (*EventPageResult, error) {
	if err := auth.Decide(actor.Role, actor.UserID, "", auth.ActionListPending); err != nil {
		return nil, err
	}
	page, limit = normalizePage(page, limit)
	items, total, err := s.eventsRepo.ListByStatus(ctx, domain.EventStatusPending, repository.EventPage{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	return &EventPageResult{Events: items, Total: total, Page: page, Limit: limit}, nil
}

// SearchPublic returns approved events matching the search keywords. The
// query is tokenized on whitespace; tokens are OR-combined across title,
// description and custom fields.
func (s *EventService) SearchPublic(ctx context.Context, search string, page, limit int) (*EventPageResult, error) {
	page, limit = normalizePage(page, limit)
	tokens := strings.Fields(search)
	items, total, err := s.eventsRepo.SearchApproved(ctx, tokens, repository.EventPage{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	return &EventPageResult{Events: items, Total: total, Page: page, Limit: limit}, nil
}

func applyEdits(event *domain.Event, input EventUpdateInput) {
	if input.Title != nil {
		event.Title = *input.Title
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.Date != nil {
		event.Date = *input.Date
	}
	if input.Location != nil {
		event.Location = *input.Location
	}
	if input.CustomFields != nil {
		event.CustomFields = *input.CustomFields
	}
	if input.Status != nil {
		event.Status = *input.Status
	}
}

func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	return page, limit
}

func (s *EventService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
