// Package repofake provides in-memory repositories for tests.
package repofake

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/repository"
)

// Store is shared state behind the fake repositories so joins behave like SQL.
type Store struct {
	mu           sync.Mutex
	nextID       int64
	users        map[int64]domain.User
	events       map[int64]domain.Event
	participants map[int64]domain.Participant
	revoked      map[string]time.Time

	// Err, when set, is returned by every repository call.
	Err error
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:        make(map[int64]domain.User),
		events:       make(map[int64]domain.Event),
		participants: make(map[int64]domain.Participant),
		revoked:      make(map[string]time.Time),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Users returns a UserRepository backed by s.
func (s *Store) Users() repository.UserRepository { return &users{s} }

// Events returns an EventRepository backed by s.
func (s *Store) Events() repository.EventRepository { return &events{s} }

// Participants returns a ParticipantRepository backed by s.
func (s *Store) Participants() repository.ParticipantRepository { return &participants{s} }

// Revocations returns a revocation store backed by s.
func (s *Store) Revocations() *Revocations { return &Revocations{s} }

type users struct{ s *Store }

func (r *users) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	user.ID = r.s.id()
	user.CreatedAt = time.Now().UTC()
	r.s.users[user.ID] = *user
	return nil
}

func (r *users) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r *users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type events struct{ s *Store }

func (r *events) Create(_ context.Context, event *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	event.ID = r.s.id()
	event.CreatedAt = time.Now().UTC()
	r.s.events[event.ID] = *event
	return nil
}

func (r *events) Update(_ context.Context, id int64, patch repository.EventPatch) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	e, ok := r.s.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if patch.Name != nil {
		e.Name = *patch.Name
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.Location != nil {
		e.Location = *patch.Location
	}
	r.s.events[id] = e
	return &e, nil
}

func (r *events) Delete(_ context.Context, id int64) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	e, ok := r.s.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	delete(r.s.events, id)
	for pid, p := range r.s.participants {
		if p.EventID == id {
			delete(r.s.participants, pid)
		}
	}
	return &e, nil
}

func (r *events) GetByID(_ context.Context, id int64) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	e, ok := r.s.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &e, nil
}

func (r *events) List(_ context.Context) ([]domain.Event, error) {
	return r.filter(func(domain.Event) bool { return true }, false)
}

func (r *events) ListByOwner(_ context.Context, ownerID int64) ([]domain.Event, error) {
	return r.filter(func(e domain.Event) bool { return e.OwnerID == ownerID }, false)
}

func (r *events) SearchByName(_ context.Context, term string) ([]domain.Event, error) {
	term = strings.ToLower(term)
	return r.filter(func(e domain.Event) bool { return strings.Contains(strings.ToLower(e.Name), term) }, false)
}

func (r *events) FilterByLocation(_ context.Context, location string) ([]domain.Event, error) {
	location = strings.ToLower(location)
	return r.filter(func(e domain.Event) bool { return strings.Contains(strings.ToLower(e.Location), location) }, false)
}

func (r *events) FilterByDateRange(_ context.Context, from, to time.Time) ([]domain.Event, error) {
	return r.filter(func(e domain.Event) bool { return !e.Date.Before(from) && !e.Date.After(to) }, true)
}

func (r *events) IsOwner(_ context.Context, eventID, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	e, ok := r.s.events[eventID]
	return ok && e.OwnerID == userID, nil
}

func (r *events) filter(keep func(domain.Event) bool, ascending bool) ([]domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	result := make([]domain.Event, 0)
	for _, e := range r.s.events {
		if keep(e) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if ascending {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}

type participants struct{ s *Store }

func (r *participants) Register(_ context.Context, eventID, userID int64) (*domain.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, p := range r.s.participants {
		if p.EventID == eventID && p.UserID == userID {
			return nil, repository.ErrDuplicate
		}
	}
	p := domain.Participant{
		ID:           r.s.id(),
		EventID:      eventID,
		UserID:       userID,
		Status:       domain.ParticipantStatusRegistered,
		RegisteredAt: time.Now().UTC(),
	}
	r.s.participants[p.ID] = p
	return &p, nil
}

func (r *participants) Cancel(_ context.Context, eventID, userID int64, reason string) (*domain.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for id, p := range r.s.participants {
		if p.EventID == eventID && p.UserID == userID {
			now := time.Now().UTC()
			p.Status = domain.ParticipantStatusCancelled
			p.CancelledAt = &now
			p.CancellationReason = &reason
			r.s.participants[id] = p
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *participants) GetRegistration(_ context.Context, eventID, userID int64) (*domain.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, p := range r.s.participants {
		if p.EventID == eventID && p.UserID == userID {
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *participants) ListByEvent(_ context.Context, eventID int64) ([]domain.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	result := make([]domain.Participant, 0)
	for _, p := range r.s.participants {
		if p.EventID != eventID {
			continue
		}
		if u, ok := r.s.users[p.UserID]; ok {
			p.Name = u.Name
			p.Email = u.Email
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (r *participants) ListParticipatingEvents(_ context.Context, userID int64) ([]domain.ParticipatingEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	result := make([]domain.ParticipatingEvent, 0)
	for _, p := range r.s.participants {
		if p.UserID != userID {
			continue
		}
		e, ok := r.s.events[p.EventID]
		if !ok {
			continue
		}
		result = append(result, domain.ParticipatingEvent{
			Event:        e,
			Status:       p.Status,
			RegisteredAt: p.RegisteredAt,
			CancelledAt:  p.CancelledAt,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

// Revocations is an in-memory session revocation store.
type Revocations struct{ s *Store }

// Revoke records digest as revoked.
func (r *Revocations) Revoke(_ context.Context, digest string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	r.s.revoked[digest] = expiresAt
	return nil
}

// IsRevoked reports whether digest was revoked.
func (r *Revocations) IsRevoked(_ context.Context, digest string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	_, ok := r.s.revoked[digest]
	return ok, nil
}
