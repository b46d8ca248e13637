package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eventhub/internal/domain"
)

// In-memory repository implementations backing tests and local development
// without a database. They mirror the Postgres implementations' ordering and
// filter semantics, including pgx.ErrNoRows on missing rows.

// InMemoryEventRepository is a map-backed EventRepository.
type InMemoryEventRepository struct {
	mu     sync.RWMutex
	events map[string]domain.Event
}

// NewInMemoryEventRepository creates an empty store.
func NewInMemoryEventRepository() *InMemoryEventRepository {
	return &InMemoryEventRepository{events: make(map[string]domain.Event)}
}

func (r *InMemoryEventRepository) Create(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	event.ID = uuid.NewString()
	event.CreatedAt = now
	event.UpdatedAt = now
	r.events[event.ID] = *event
	return nil
}

func (r *InMemoryEventRepository) Update(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; !ok {
		return pgx.ErrNoRows
	}
	event.UpdatedAt = time.Now()
	r.events[event.ID] = *event
	return nil
}

func (r *InMemoryEventRepository) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	event, ok := r.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &event, nil
}

func (r *InMemoryEventRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.events, id)
	return nil
}

func (r *InMemoryEventRepository) ListByOwner(_ context.Context, ownerID string, status *domain.EventStatus, page EventPage) ([]domain.Event, int, error) {
	matches := r.filter(func(e domain.Event) bool {
		if e.OwnerID != ownerID {
			return false
		}
		return status == nil || e.Status == *status
	})
	sort.Slice(matches, func(i, j int) bool { return matches[i].Date.After(matches[j].Date) })
	return paginate(matches, page)
}

func (r *InMemoryEventRepository) ListByStatus(_ context.Context, status domain.EventStatus, page EventPage) ([]domain.Event, int, error) {
	matches := r.filter(func(e domain.Event) bool { return e.Status == status })
	sort.Slice(matches, func(i, j int) bool { return matches[i].Date.Before(matches[j].Date) })
	return paginate(matches, page)
}

func (r *InMemoryEventRepository) SearchApproved(_ context.Context, tokens []string, page EventPage) ([]domain.Event, int, error) {
	matches := r.filter(func(e domain.Event) bool {
		if e.Status != domain.EventStatusApproved {
			return false
		}
		return matchesTokens(e, tokens)
	})
	sort.Slice(matches, func(i, j int) bool { return matches[i].Date.Before(matches[j].Date) })
	return paginate(matches, page)
}

func (r *InMemoryEventRepository) filter(keep func(domain.Event) bool) []domain.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Event
	for _, event := range r.events {
		if keep(event) {
			result = append(result, event)
		}
	}
	return result
}

func matchesTokens(event domain.Event, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	haystacks := []string{strings.ToLower(event.Title), strings.ToLower(event.Description)}
	for _, field := range event.CustomFields {
		haystacks = append(haystacks, strings.ToLower(field.Label), strings.ToLower(field.Value))
	}
	for _, token := range tokens {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		for _, haystack := range haystacks {
			if strings.Contains(haystack, token) {
				return true
			}
		}
	}
	return false
}

func paginate(events []domain.Event, page EventPage) ([]domain.Event, int, error) {
	total := len(events)
	limit := page.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return events[offset:end], total, nil
}

// InMemoryUserRepository is a map-backed UserRepository.
type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewInMemoryUserRepository creates an empty store.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[string]domain.User)}
}

func (r *InMemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *InMemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *InMemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// InMemoryRSVPRepository is a map-backed RSVPRepository.
type InMemoryRSVPRepository struct {
	mu    sync.RWMutex
	rsvps []domain.RSVP
}

// NewInMemoryRSVPRepository creates an empty store.
func NewInMemoryRSVPRepository() *InMemoryRSVPRepository {
	return &InMemoryRSVPRepository{}
}

func (r *InMemoryRSVPRepository) Create(_ context.Context, rsvp *domain.RSVP) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rsvp.ID = uuid.NewString()
	rsvp.SubmittedAt = time.Now()
	r.rsvps = append(r.rsvps, *rsvp)
	return nil
}

func (r *InMemoryRSVPRepository) ListByEvent(_ context.Context, eventID string) ([]domain.RSVP, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.RSVP
	for _, rsvp := range r.rsvps {
		if rsvp.EventID == eventID {
			result = append(result, rsvp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubmittedAt.After(result[j].SubmittedAt) })
	return result, nil
}
