package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-service/internal/events"
)

func TestInMemoryDispatcher_PublishRunsAllHandlers(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	var seen []string

	d.Subscribe(events.EventCreated, func(_ context.Context, e events.Event) error {
		seen = append(seen, "first")
		return errors.New("boom")
	})
	d.Subscribe(events.EventCreated, func(_ context.Context, e events.Event) error {
		seen = append(seen, "second")
		return nil
	})
	d.Subscribe(events.EventDeleted, func(_ context.Context, e events.Event) error {
		seen = append(seen, "other")
		return nil
	})

	err := d.Publish(context.Background(), events.New(events.EventCreated, 1, 2, nil))
	require.ErrorContains(t, err, "boom")
	require.Equal(t, []string{"first", "second"}, seen)
}

func TestInMemoryDispatcher_RecoversHandlerPanic(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	delivered := false

	d.Subscribe(events.EventDeleted, func(context.Context, events.Event) error {
		panic("nil payload")
	})
	d.Subscribe(events.EventDeleted, nil)
	d.Subscribe(events.EventDeleted, func(context.Context, events.Event) error {
		delivered = true
		return nil
	})

	var err error
	require.NotPanics(t, func() {
		err = d.Publish(context.Background(), events.New(events.EventDeleted, 5, 1, nil))
	})
	require.EqualError(t, err, "event_deleted handler 0: panic: nil payload")
	require.True(t, delivered)
}

func TestInMemoryDispatcher_NoSubscribers(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	require.NoError(t, d.Publish(context.Background(), events.New(events.EventUpdated, 1, 1, nil)))
}

func TestNew(t *testing.T) {
	e := events.New(events.EventParticipantRegistered, 10, 3, events.ParticipantRegisteredPayload{ParticipantID: 4, UserID: 3})
	require.NotEmpty(t, e.ID)
	require.Equal(t, int64(10), e.EventID)
	require.Equal(t, int64(3), e.ActorID)
	require.False(t, e.Timestamp.IsZero())
}
