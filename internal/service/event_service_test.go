package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/spec-kit/eventhub/internal/domain"
	"github.com/spec-kit/eventhub/internal/events"
	"github.com/spec-kit/eventhub/internal/observability"
	"github.com/spec-kit/eventhub/internal/repository"
	apperrors "github.com/spec-kit/eventhub/pkg/util"
)

type sentMail struct {
	To      string
	Subject string
}

// captureMailer records outbound mail and can simulate transport failure.
type captureMailer struct {
	sent []sentMail
	fail bool
}

func (m *captureMailer) Send(to, subject, _ string) error {
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject})
	return nil
}

type EventServiceSuite struct {
	suite.Suite
	ctx    context.Context
	users  *repository.InMemoryUserRepository
	repo   *repository.InMemoryEventRepository
	mailer *captureMailer
	svc    *EventService

	owner *domain.User
	admin *domain.User
	staff *domain.User
	guest *domain.User
}

func TestEventServiceSuite(t *testing.T) {
	suite.Run(t, new(EventServiceSuite))
}

func (s *EventServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = repository.NewInMemoryUserRepository()
	s.repo = repository.NewInMemoryEventRepository()
	s.mailer = &captureMailer{}

	dispatcher := events.NewInMemoryDispatcher()
	notifications := NewNotificationService(dispatcher, s.mailer, zap.NewNop(), observability.NewMetrics())
	notifications.RegisterHandlers()

	s.svc = NewEventService(EventDependencies{
		EventRepo:  s.repo,
		UserRepo:   s.users,
		RSVPRepo:   repository.NewInMemoryRSVPRepository(),
		Dispatcher: dispatcher,
	})

	s.owner = s.seedUser("owner@example.com", domain.RoleOwner)
	s.admin = s.seedUser("admin@example.com", domain.RoleAdmin)
	s.staff = s.seedUser("staff@example.com", domain.RoleStaff)
	s.guest = s.seedUser("guest@example.com", domain.RoleGuest)
}

func (s *EventServiceSuite) seedUser(email string, role domain.Role) *domain.User {
	user := &domain.User{Name: "Test", Email: email, Role: role}
	s.Require().NoError(s.users.Create(s.ctx, user))
	return user
}

func actor(user *domain.User) *domain.AuthPayload {
	return &domain.AuthPayload{UserID: user.ID, Role: user.Role}
}

func (s *EventServiceSuite) createEvent(owner *domain.User) *domain.Event {
	event, err := s.svc.Create(s.ctx, actor(owner), EventCreateInput{
		Title: "Summer Fair",
		Date:  time.Now().Add(48 * time.Hour),
		CustomFields: []domain.CustomField{
			{Label: "Capacity", Value: "200"},
		},
	})
	s.Require().NoError(err)
	return event
}

func (s *EventServiceSuite) setStatus(event *domain.Event, status domain.EventStatus) *domain.Event {
	updated, err := s.svc.ChangeStatus(s.ctx, actor(s.admin), event.ID, EventUpdateInput{Status: &status})
	s.Require().NoError(err)
	return updated
}

func forbidden(err error) bool {
	var de *apperrors.DomainError
	return errors.As(err, &de) && de.HTTPStatus == 403
}

func (s *EventServiceSuite) TestCreate() {
	s.Run("new events start pending", func() {
		event := s.createEvent(s.owner)
		s.Equal(domain.EventStatusPending, event.Status)
		s.Equal(s.owner.ID, event.OwnerID)
		s.Len(event.CustomFields, 1)
	})

	s.Run("admin may create", func() {
		_, err := s.svc.Create(s.ctx, actor(s.admin), EventCreateInput{Title: "Gala", Date: time.Now()})
		s.Require().NoError(err)
	})

	s.Run("staff and guest are forbidden", func() {
		for _, user := range []*domain.User{s.staff, s.guest} {
			_, err := s.svc.Create(s.ctx, actor(user), EventCreateInput{Title: "Gala", Date: time.Now()})
			s.True(forbidden(err), "expected 403 for role %s", user.Role)
		}
	})

	s.Run("title and date are required", func() {
		_, err := s.svc.Create(s.ctx, actor(s.owner), EventCreateInput{Title: "   "})
		s.Require().Error(err)
	})
}

func (s *EventServiceSuite) TestModerationMailEdgeTrigger() {
	s.Run("pending to approved sends exactly one approval mail", func() {
		event := s.createEvent(s.owner)
		s.setStatus(event, domain.EventStatusApproved)

		s.Require().Len(s.mailer.sent, 1)
		s.Equal(s.owner.Email, s.mailer.sent[0].To)
		s.Contains(s.mailer.sent[0].Subject, "Approved")
	})

	s.Run("re-approving an approved event sends nothing", func() {
		event := s.createEvent(s.owner)
		s.setStatus(event, domain.EventStatusApproved)
		before := len(s.mailer.sent)

		s.setStatus(event, domain.EventStatusApproved)
		s.Len(s.mailer.sent, before)
	})

	s.Run("rejecting an approved event sends a rejection mail", func() {
		event := s.createEvent(s.owner)
		s.setStatus(event, domain.EventStatusApproved)
		before := len(s.mailer.sent)

		s.setStatus(event, domain.EventStatusRejected)
		s.Require().Len(s.mailer.sent, before+1)
		s.Contains(s.mailer.sent[before].Subject, "Rejected")
	})

	s.Run("re-rejecting a rejected event sends nothing", func() {
		event := s.createEvent(s.owner)
		s.setStatus(event, domain.EventStatusRejected)
		before := len(s.mailer.sent)

		s.setStatus(event, domain.EventStatusRejected)
		s.Len(s.mailer.sent, before)
	})

	s.Run("oscillation fires on every flip", func() {
		event := s.createEvent(s.owner)
		before := len(s.mailer.sent)

		s.setStatus(event, domain.EventStatusApproved)
		s.setStatus(event, domain.EventStatusRejected)
		s.setStatus(event, domain.EventStatusApproved)
		s.setStatus(event, domain.EventStatusRejected)
		s.Len(s.mailer.sent, before+4)
	})

	s.Run("resetting to pending sends nothing", func() {
		event := s.createEvent(s.owner)
		s.setStatus(event, domain.EventStatusApproved)
		before := len(s.mailer.sent)

		s.setStatus(event, domain.EventStatusPending)
		s.Len(s.mailer.sent, before)
	})
}

func (s *EventServiceSuite) TestChangeStatus() {
	s.Run("staff cannot moderate", func() {
		event := s.createEvent(s.owner)
		status := domain.EventStatusApproved
		_, err := s.svc.ChangeStatus(s.ctx, actor(s.staff), event.ID, EventUpdateInput{Status: &status})
		s.True(forbidden(err))
	})

	s.Run("owner cannot approve their own event", func() {
		event := s.createEvent(s.owner)
		status := domain.EventStatusApproved
		_, err := s.svc.ChangeStatus(s.ctx, actor(s.owner), event.ID, EventUpdateInput{Status: &status})
		s.True(forbidden(err))
	})

	s.Run("rejects unknown status values", func() {
		event := s.createEvent(s.owner)
		status := domain.EventStatus("archived")
		_, err := s.svc.ChangeStatus(s.ctx, actor(s.admin), event.ID, EventUpdateInput{Status: &status})
		s.Require().Error(err)

		stored, err := s.repo.GetByID(s.ctx, event.ID)
		s.Require().NoError(err)
		s.Equal(domain.EventStatusPending, stored.Status)
	})

	s.Run("field edits apply alongside the status change", func() {
		event := s.createEvent(s.owner)
		status := domain.EventStatusApproved
		title := "Autumn Fair"
		updated, err := s.svc.ChangeStatus(s.ctx, actor(s.admin), event.ID, EventUpdateInput{
			Status: &status,
			Title:  &title,
		})
		s.Require().NoError(err)
		s.Equal("Autumn Fair", updated.Title)
		s.Equal(domain.EventStatusApproved, updated.Status)
		// The mail carries the edited title since edits land first.
		s.Require().Len(s.mailer.sent, 1)
	})

	s.Run("mail transport failure never fails the status update", func() {
		event := s.createEvent(s.owner)
		s.mailer.fail = true
		status := domain.EventStatusApproved
		updated, err := s.svc.ChangeStatus(s.ctx, actor(s.admin), event.ID, EventUpdateInput{Status: &status})
		s.Require().NoError(err)
		s.Equal(domain.EventStatusApproved, updated.Status)

		stored, err := s.repo.GetByID(s.ctx, event.ID)
		s.Require().NoError(err)
		s.Equal(domain.EventStatusApproved, stored.Status)
	})

	s.Run("missing event yields not found", func() {
		status := domain.EventStatusApproved
		_, err := s.svc.ChangeStatus(s.ctx, actor(s.admin), "unknown", EventUpdateInput{Status: &status})
		var de *apperrors.DomainError
		s.Require().ErrorAs(err, &de)
		s.Equal(404, de.HTTPStatus)
	})
}

func (s *EventServiceSuite) TestUpdate() {
	s.Run("owner edits own event", func() {
		event := s.createEvent(s.owner)
		location := "Town Hall"
		updated, err := s.svc.Update(s.ctx, actor(s.owner), event.ID, EventUpdateInput{Location: &location})
		s.Require().NoError(err)
		s.Equal("Town Hall", updated.Location)
	})

	s.Run("staff edits others' events", func() {
		event := s.createEvent(s.owner)
		title := "Renamed"
		_, err := s.svc.Update(s.ctx, actor(s.staff), event.ID, EventUpdateInput{Title: &title})
		s.Require().NoError(err)
	})

	s.Run("unrelated owner-role user is forbidden", func() {
		other := s.seedUser("other@example.com", domain.RoleOwner)
		event := s.createEvent(s.owner)
		title := "Hijacked"
		_, err := s.svc.Update(s.ctx, actor(other), event.ID, EventUpdateInput{Title: &title})
		s.True(forbidden(err))
	})

	s.Run("status is ignored on the plain edit path", func() {
		event := s.createEvent(s.owner)
		status := domain.EventStatusApproved
		updated, err := s.svc.Update(s.ctx, actor(s.owner), event.ID, EventUpdateInput{Status: &status})
		s.Require().NoError(err)
		s.Equal(domain.EventStatusPending, updated.Status)
		s.Empty(s.mailer.sent)
	})
}

func (s *EventServiceSuite) TestDelete() {
	s.Run("owner deletes own event", func() {
		event := s.createEvent(s.owner)
		s.Require().NoError(s.svc.Delete(s.ctx, actor(s.owner), event.ID))
	})

	s.Run("admin deletes any event", func() {
		event := s.createEvent(s.owner)
		s.Require().NoError(s.svc.Delete(s.ctx, actor(s.admin), event.ID))
	})

	s.Run("staff cannot delete others' events", func() {
		event := s.createEvent(s.owner)
		err := s.svc.Delete(s.ctx, actor(s.staff), event.ID)
		s.True(forbidden(err))
	})
}

func (s *EventServiceSuite) TestListOwn() {
	for i := 0; i < 7; i++ {
		_, err := s.svc.Create(s.ctx, actor(s.owner), EventCreateInput{
			Title: fmt.Sprintf("Event %d", i),
			Date:  time.Now().Add(time.Duration(i) * time.Hour),
		})
		s.Require().NoError(err)
	}

	s.Run("pagination respects limit and reports total", func() {
		result, err := s.svc.ListOwn(s.ctx, actor(s.owner), nil, 1, 3)
		s.Require().NoError(err)
		s.Len(result.Events, 3)
		s.Equal(7, result.Total)
		s.Equal(3, result.TotalPages())

		last, err := s.svc.ListOwn(s.ctx, actor(s.owner), nil, 3, 3)
		s.Require().NoError(err)
		s.Len(last.Events, 1)
	})

	s.Run("status filter applies", func() {
		pending := domain.EventStatusPending
		result, err := s.svc.ListOwn(s.ctx, actor(s.owner), &pending, 1, 10)
		s.Require().NoError(err)
		s.Equal(7, result.Total)

		approved := domain.EventStatusApproved
		result, err = s.svc.ListOwn(s.ctx, actor(s.owner), &approved, 1, 10)
		s.Require().NoError(err)
		s.Equal(0, result.Total)
	})

	s.Run("scoped to the actor", func() {
		result, err := s.svc.ListOwn(s.ctx, actor(s.admin), nil, 1, 10)
		s.Require().NoError(err)
		s.Equal(0, result.Total)
	})
}

func (s *EventServiceSuite) TestListPending() {
	s.createEvent(s.owner)
	s.createEvent(s.owner)

	s.Run("admin sees pending queue", func() {
		result, err := s.svc.ListPending(s.ctx, actor(s.admin), 1, 10)
		s.Require().NoError(err)
		s.Equal(2, result.Total)
	})

	s.Run("staff and owner are forbidden", func() {
		for _, user := range []*domain.User{s.staff, s.owner} {
			_, err := s.svc.ListPending(s.ctx, actor(user), 1, 10)
			s.True(forbidden(err), "expected 403 for role %s", user.Role)
		}
	})
}

func (s *EventServiceSuite) TestSearchPublic() {
	approved := s.createEvent(s.owner)
	s.setStatus(approved, domain.EventStatusApproved)

	hidden, err := s.svc.Create(s.ctx, actor(s.owner), EventCreateInput{
		Title: "Secret Fair",
		Date:  time.Now(),
		CustomFields: []domain.CustomField{
			{Label: "Capacity", Value: "200"},
		},
	})
	s.Require().NoError(err)

	s.Run("only approved events are returned", func() {
		result, err := s.svc.SearchPublic(s.ctx, "", 1, 10)
		s.Require().NoError(err)
		s.Require().Len(result.Events, 1)
		s.Equal(approved.ID, result.Events[0].ID)
	})

	s.Run("keyword in a custom field value matches", func() {
		result, err := s.svc.SearchPublic(s.ctx, "200", 1, 10)
		s.Require().NoError(err)
		s.Require().Len(result.Events, 1)
		s.Equal(approved.ID, result.Events[0].ID)
	})

	s.Run("same keyword on a non-approved event stays hidden", func() {
		result, err := s.svc.SearchPublic(s.ctx, "Secret", 1, 10)
		s.Require().NoError(err)
		s.Empty(result.Events)
		_ = hidden
	})

	s.Run("tokens are OR-combined", func() {
		result, err := s.svc.SearchPublic(s.ctx, "nomatch summer", 1, 10)
		s.Require().NoError(err)
		s.Len(result.Events, 1)
	})
}

func (s *EventServiceSuite) TestGet() {
	s.Run("returns stored event", func() {
		event := s.createEvent(s.owner)
		got, err := s.svc.Get(s.ctx, event.ID)
		s.Require().NoError(err)
		s.Equal(event.ID, got.ID)
	})

	s.Run("missing id yields not found", func() {
		_, err := s.svc.Get(s.ctx, "unknown")
		var de *apperrors.DomainError
		s.Require().ErrorAs(err, &de)
		s.Equal(404, de.HTTPStatus)
	})
}
