package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/events"
)

// Notifier handles one domain event.
type Notifier interface {
	Handle(ctx context.Context, event events.Event) []string
}

// NotificationWorker moves notification delivery off the request path.
// Events are queued by the dispatcher subscription and drained by a fixed
// pool of goroutines.
type NotificationWorker struct {
	notifier Notifier
	logger   *zap.Logger
	queue    chan events.Event
	workers  int

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewNotificationWorker builds a worker with the given queue size and pool size.
func NewNotificationWorker(notifier Notifier, logger *zap.Logger, queueSize, workers int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if workers <= 0 {
		workers = 1
	}
	return &NotificationWorker{
		notifier: notifier,
		logger:   logger,
		queue:    make(chan events.Event, queueSize),
		workers:  workers,
	}
}

// StartNotificationWorker subscribes w to eventTypes on dispatcher and starts
// its goroutines. ctx bounds the handling of each event.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, w *NotificationWorker, eventTypes ...events.EventType) {
	if dispatcher == nil || w == nil {
		return
	}
	for _, eventType := range eventTypes {
		dispatcher.Subscribe(eventType, w.Enqueue)
	}
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx)
	}
}

// Enqueue queues event without blocking. A full or stopped queue drops the
// event with a warning; notifications never fail the publishing request.
func (w *NotificationWorker) Enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		w.logger.Warn("notification dropped after shutdown", zap.String("event_type", string(event.Type)))
		return nil
	}
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_type", string(event.Type)),
			zap.Int64("event_id", event.EventID))
	}
	return nil
}

// Stop closes the queue and waits for queued events to be handled.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.queue)
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for event := range w.queue {
		channels := w.notifier.Handle(ctx, event)
		w.logger.Debug("notification handled",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Strings("channels", channels))
	}
}
