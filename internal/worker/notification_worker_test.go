package worker_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-service/internal/events"
	"github.com/spec-kit/event-service/internal/worker"
)

type recordingNotifier struct {
	mu      sync.Mutex
	handled []events.EventType
	block   chan struct{}
}

func (r *recordingNotifier) Handle(_ context.Context, event events.Event) []string {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handled = append(r.handled, event.Type)
	return nil
}

func TestNotificationWorker_DeliversPublishedEvents(t *testing.T) {
	notifier := &recordingNotifier{}
	dispatcher := events.NewInMemoryDispatcher()
	w := worker.NewNotificationWorker(notifier, nil, 8, 2)
	worker.StartNotificationWorker(context.Background(), dispatcher, w, events.EventCreated, events.EventDeleted)

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventCreated, 1, 1, nil)))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventDeleted, 1, 1, nil)))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventUpdated, 1, 1, nil)))
	w.Stop()

	require.ElementsMatch(t, []events.EventType{events.EventCreated, events.EventDeleted}, notifier.handled)

	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventCreated, 1, 1, nil)), "publishing after stop must not fail")
	w.Stop()
}

func TestNotificationWorker_FullQueueDropsWithoutBlocking(t *testing.T) {
	notifier := &recordingNotifier{block: make(chan struct{})}
	w := worker.NewNotificationWorker(notifier, nil, 1, 1)
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(context.Background(), dispatcher, w, events.EventCreated)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventCreated, int64(i), 1, nil)))
	}
	close(notifier.block)
	w.Stop()

	require.NotEmpty(t, notifier.handled)
	require.LessOrEqual(t, len(notifier.handled), 2)
}
