package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/config"
	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/events"
	"github.com/spec-kit/event-service/internal/repository/repofake"
	"github.com/spec-kit/event-service/internal/service"
	apperrors "github.com/spec-kit/event-service/pkg/util"
)

type fixture struct {
	store        *repofake.Store
	tokens       *auth.TokenService
	dispatcher   events.Dispatcher
	published    []events.Event
	auth         *service.AuthService
	events       *service.EventService
	participants *service.ParticipantService
}

func newFixture(t *testing.T, revokeOnLogout bool) *fixture {
	t.Helper()
	f := &fixture{store: repofake.NewStore(), dispatcher: events.NewInMemoryDispatcher()}

	tokens, err := auth.NewTokenService("service-secret")
	require.NoError(t, err)
	f.tokens = tokens

	for _, eventType := range []events.EventType{
		events.EventCreated, events.EventUpdated, events.EventDeleted,
		events.EventParticipantRegistered, events.EventRegistrationCancelled,
	} {
		f.dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			f.published = append(f.published, e)
			return nil
		})
	}

	deps := service.AuthDependencies{UserRepo: f.store.Users(), Tokens: tokens}
	if revokeOnLogout {
		deps.Revocations = f.store.Revocations()
	}
	f.auth = service.NewAuthService(config.AuthConfig{BcryptCost: bcrypt.MinCost, SessionTTLHours: 24}, deps)
	f.events = service.NewEventService(service.EventDependencies{EventRepo: f.store.Events(), Dispatcher: f.dispatcher})
	f.participants = service.NewParticipantService(service.ParticipantDependencies{
		ParticipantRepo: f.store.Participants(),
		EventService:    f.events,
		Dispatcher:      f.dispatcher,
	})
	return f
}

func (f *fixture) user(t *testing.T, name string) *domain.User {
	t.Helper()
	user, _, err := f.auth.Register(context.Background(), name, name+"@example.com", "pw-"+name)
	require.NoError(t, err)
	return user
}

func (f *fixture) event(t *testing.T, ownerID int64, name string, date time.Time) *domain.Event {
	t.Helper()
	event, err := f.events.Create(context.Background(), ownerID, service.EventInput{Name: name, Date: date, Location: "Berlin"})
	require.NoError(t, err)
	return event
}

func requireStatus(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	require.Equal(t, status, de.HTTPStatus)
	if message != "" {
		require.Equal(t, message, de.Message)
	}
}

func date(day int) time.Time {
	return time.Date(2025, 6, day, 18, 0, 0, 0, time.UTC)
}
