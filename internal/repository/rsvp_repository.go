package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/eventhub/internal/domain"
)

// RSVPRepository defines persistence access for RSVP records. Records are
// append-only; there is no update or delete.
type RSVPRepository interface {
	Create(ctx context.Context, rsvp *domain.RSVP) error
	ListByEvent(ctx context.Context, eventID string) ([]domain.RSVP, error)
}

type rsvpRepository struct {
	pool *pgxpool.Pool
}

// NewRSVPRepository returns a Postgres-backed implementation.
func NewRSVPRepository(pool *pgxpool.Pool) RSVPRepository {
	return &rsvpRepository{pool: pool}
}

func (r *rsvpRepository) Create(ctx context.Context, rsvp *domain.RSVP) error {
	const query = `
        INSERT INTO rsvps (event_id, name, email)
        VALUES ($1, $2, $3)
        RETURNING id, submitted_at`
	return r.pool.QueryRow(ctx, query,
		rsvp.EventID,
		rsvp.Name,
		rsvp.Email,
	).Scan(&rsvp.ID, &rsvp.SubmittedAt)
}

func (r *rsvpRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.RSVP, error) {
	const query = `
        SELECT id, event_id, name, email, submitted_at
        FROM rsvps WHERE event_id=$1 ORDER BY submitted_at DESC`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RSVP
	for rows.Next() {
		var rsvp domain.RSVP
		if err := rows.Scan(
			&rsvp.ID,
			&rsvp.EventID,
			&rsvp.Name,
			&rsvp.Email,
			&rsvp.SubmittedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rsvp)
	}
	return result, rows.Err()
}
