package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/event-service/internal/domain"
)

// EventPatch carries the fields of a partial update. Nil fields are left unchanged.
type EventPatch struct {
	Name        *string
	Description *string
	Date        *time.Time
	Location    *string
}

// EventRepository encapsulates event persistence.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, id int64, patch EventPatch) (*domain.Event, error)
	Delete(ctx context.Context, id int64) (*domain.Event, error)
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Event, error)
	SearchByName(ctx context.Context, term string) ([]domain.Event, error)
	FilterByLocation(ctx context.Context, location string) ([]domain.Event, error)
	FilterByDateRange(ctx context.Context, from, to time.Time) ([]domain.Event, error)
	IsOwner(ctx context.Context, eventID, userID int64) (bool, error)
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository instantiates repository.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

const eventColumns = `id, name, description, date, location, user_id, created_at`

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events (name, description, date, location, user_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		event.Name,
		event.Description,
		event.Date,
		event.Location,
		event.OwnerID,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *eventRepository) Update(ctx context.Context, id int64, patch EventPatch) (*domain.Event, error) {
	const query = `
        UPDATE events SET
            name = COALESCE($1, name),
            description = COALESCE($2, description),
            date = COALESCE($3, date),
            location = COALESCE($4, location)
        WHERE id=$5
        RETURNING ` + eventColumns
	return scanEvent(r.pool.QueryRow(ctx, query,
		patch.Name,
		patch.Description,
		patch.Date,
		patch.Location,
		id,
	))
}

func (r *eventRepository) Delete(ctx context.Context, id int64) (*domain.Event, error) {
	const query = `DELETE FROM events WHERE id=$1 RETURNING ` + eventColumns
	return scanEvent(r.pool.QueryRow(ctx, query, id))
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events WHERE id=$1`
	return scanEvent(r.pool.QueryRow(ctx, query, id))
}

func (r *eventRepository) List(ctx context.Context) ([]domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events ORDER BY date DESC`
	return r.query(ctx, query)
}

func (r *eventRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events WHERE user_id=$1 ORDER BY date DESC`
	return r.query(ctx, query, ownerID)
}

func (r *eventRepository) SearchByName(ctx context.Context, term string) ([]domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events WHERE name ILIKE $1 ORDER BY date DESC`
	return r.query(ctx, query, "%"+term+"%")
}

func (r *eventRepository) FilterByLocation(ctx context.Context, location string) ([]domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events WHERE location ILIKE $1 ORDER BY date DESC`
	return r.query(ctx, query, "%"+location+"%")
}

func (r *eventRepository) FilterByDateRange(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events WHERE date BETWEEN $1 AND $2 ORDER BY date`
	return r.query(ctx, query, from, to)
}

// IsOwner matches id and owner in one predicate, so a missing event and an
// event owned by someone else both report false.
func (r *eventRepository) IsOwner(ctx context.Context, eventID, userID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM events WHERE id=$1 AND user_id=$2)`
	var owned bool
	if err := r.pool.QueryRow(ctx, query, eventID, userID).Scan(&owned); err != nil {
		return false, err
	}
	return owned, nil
}

func (r *eventRepository) query(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *event)
	}
	return result, rows.Err()
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var event domain.Event
	if err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Date,
		&event.Location,
		&event.OwnerID,
		&event.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &event, nil
}
