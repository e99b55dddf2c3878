package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/event-service/internal/domain"
)

// ParticipantRepository manages event registrations.
type ParticipantRepository interface {
	Register(ctx context.Context, eventID, userID int64) (*domain.Participant, error)
	Cancel(ctx context.Context, eventID, userID int64, reason string) (*domain.Participant, error)
	GetRegistration(ctx context.Context, eventID, userID int64) (*domain.Participant, error)
	ListByEvent(ctx context.Context, eventID int64) ([]domain.Participant, error)
	ListParticipatingEvents(ctx context.Context, userID int64) ([]domain.ParticipatingEvent, error)
}

type participantRepository struct {
	pool *pgxpool.Pool
}

// NewParticipantRepository constructs repository.
func NewParticipantRepository(pool *pgxpool.Pool) ParticipantRepository {
	return &participantRepository{pool: pool}
}

const participantColumns = `id, event_id, user_id, status, registered_at, cancelled_at, cancellation_reason`

// Register inserts a registration. Concurrent duplicates are rejected by the
// (event_id, user_id) unique constraint and reported as ErrDuplicate.
func (r *participantRepository) Register(ctx context.Context, eventID, userID int64) (*domain.Participant, error) {
	const query = `
        INSERT INTO event_participants (event_id, user_id, status)
        VALUES ($1, $2, 'registered')
        RETURNING ` + participantColumns
	participant, err := scanParticipant(r.pool.QueryRow(ctx, query, eventID, userID))
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	return participant, err
}

func (r *participantRepository) Cancel(ctx context.Context, eventID, userID int64, reason string) (*domain.Participant, error) {
	const query = `
        UPDATE event_participants SET
            status = 'cancelled',
            cancelled_at = CURRENT_TIMESTAMP,
            cancellation_reason = $3
        WHERE event_id=$1 AND user_id=$2
        RETURNING ` + participantColumns
	return scanParticipant(r.pool.QueryRow(ctx, query, eventID, userID, reason))
}

func (r *participantRepository) GetRegistration(ctx context.Context, eventID, userID int64) (*domain.Participant, error) {
	const query = `SELECT ` + participantColumns + ` FROM event_participants WHERE event_id=$1 AND user_id=$2`
	return scanParticipant(r.pool.QueryRow(ctx, query, eventID, userID))
}

func (r *participantRepository) ListByEvent(ctx context.Context, eventID int64) ([]domain.Participant, error) {
	const query = `
        SELECT ep.id, ep.event_id, ep.user_id, ep.status, ep.registered_at, ep.cancelled_at,
            ep.cancellation_reason, u.name, u.email
        FROM event_participants ep
        JOIN users u ON ep.user_id = u.id
        WHERE ep.event_id=$1
        ORDER BY ep.registered_at DESC`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Participant, 0)
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ID, &p.EventID, &p.UserID, &p.Status, &p.RegisteredAt, &p.CancelledAt,
			&p.CancellationReason, &p.Name, &p.Email); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *participantRepository) ListParticipatingEvents(ctx context.Context, userID int64) ([]domain.ParticipatingEvent, error) {
	const query = `
        SELECT e.id, e.name, e.description, e.date, e.location, e.user_id, e.created_at,
            ep.status, ep.registered_at, ep.cancelled_at
        FROM events e
        JOIN event_participants ep ON e.id = ep.event_id
        WHERE ep.user_id=$1
        ORDER BY e.date DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.ParticipatingEvent, 0)
	for rows.Next() {
		var pe domain.ParticipatingEvent
		if err := rows.Scan(&pe.ID, &pe.Name, &pe.Description, &pe.Date, &pe.Location, &pe.OwnerID, &pe.CreatedAt,
			&pe.Status, &pe.RegisteredAt, &pe.CancelledAt); err != nil {
			return nil, err
		}
		result = append(result, pe)
	}
	return result, rows.Err()
}

func scanParticipant(row pgx.Row) (*domain.Participant, error) {
	var p domain.Participant
	if err := row.Scan(&p.ID, &p.EventID, &p.UserID, &p.Status, &p.RegisteredAt, &p.CancelledAt, &p.CancellationReason); err != nil {
		return nil, err
	}
	return &p, nil
}
