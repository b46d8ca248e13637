package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/eventhub/internal/domain"
)

// EventPage bounds paginated listings.
type EventPage struct {
	Limit  int
	Offset int
}

// EventRepository encapsulates event persistence. List operations return the
// matching page plus the total count for the applied filter so callers can
// report page counts.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string, status *domain.EventStatus, page EventPage) ([]domain.Event, int, error)
	ListByStatus(ctx context.Context, status domain.EventStatus, page EventPage) ([]domain.Event, int, error)
	SearchApproved(ctx context.Context, tokens []string, page EventPage) ([]domain.Event, int, error)
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository instantiates repository.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

const eventColumns = `id, title, description, date, location, owner_id, custom_fields, status, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events (title, description, date, location, owner_id, custom_fields, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.Date,
		event.Location,
		event.OwnerID,
		event.CustomFields,
		event.Status,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	const query = `
        UPDATE events SET title=$1, description=$2, date=$3, location=$4,
            custom_fields=$5, status=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		event.Title,
		event.Description,
		event.Date,
		event.Location,
		event.CustomFields,
		event.Status,
		event.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id=$1`, eventColumns)
	var event domain.Event
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Location,
		&event.OwnerID,
		&event.CustomFields,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *eventRepository) ListByOwner(ctx context.Context, ownerID string, status *domain.EventStatus, page EventPage) ([]domain.Event, int, error) {
	clauses := []string{"owner_id=$1"}
	args := []any{ownerID}
	if status != nil {
		args = append(args, *status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	return r.listWhere(ctx, strings.Join(clauses, " AND "), args, "date DESC", page)
}

func (r *eventRepository) ListByStatus(ctx context.Context, status domain.EventStatus, page EventPage) ([]domain.Event, int, error) {
	return r.listWhere(ctx, "status=$1", []any{status}, "date ASC", page)
}

// likeEscaper neutralizes LIKE metacharacters so search tokens match
// literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchApproved matches approved events whose title, description or custom
// field labels/values contain any of the tokens, case-insensitively.
func (r *eventRepository) SearchApproved(ctx context.Context, tokens []string, page EventPage) ([]domain.Event, int, error) {
	clauses := []string{"status=$1"}
	args := []any{domain.EventStatusApproved}

	tokenClauses := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		args = append(args, "%"+likeEscaper.Replace(token)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		tokenClauses = append(tokenClauses, fmt.Sprintf(
			`(title ILIKE %[1]s ESCAPE '\' OR description ILIKE %[1]s ESCAPE '\' OR EXISTS (
                SELECT 1 FROM jsonb_array_elements(custom_fields) AS cf
                WHERE cf->>'label' ILIKE %[1]s ESCAPE '\' OR cf->>'value' ILIKE %[1]s ESCAPE '\'))`, placeholder))
	}
	if len(tokenClauses) > 0 {
		clauses = append(clauses, "("+strings.Join(tokenClauses, " OR ")+")")
	}

	return r.listWhere(ctx, strings.Join(clauses, " AND "), args, "date ASC", page)
}

func (r *eventRepository) listWhere(ctx context.Context, where string, args []any, order string, page EventPage) ([]domain.Event, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM events WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := page.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM events WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		eventColumns, where, order, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	var result []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Description,
			&event.Date,
			&event.Location,
			&event.OwnerID,
			&event.CustomFields,
			&event.Status,
			&event.CreatedAt,
			&event.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
