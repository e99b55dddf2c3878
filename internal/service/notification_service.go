package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/config"
	"github.com/spec-kit/event-service/internal/events"
)

// NotificationTypes lists the event types NotificationService reacts to.
var NotificationTypes = []events.EventType{
	events.EventCreated,
	events.EventUpdated,
	events.EventDeleted,
	events.EventParticipantRegistered,
	events.EventRegistrationCancelled,
}

// NotificationService turns domain events into outbound notifications.
// Delivery is stubbed: notifications are logged, not sent.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger, cfg: cfg}
}

// Handle routes event to the matching notification channels and reports
// which ones were used.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) []string {
	switch event.Type {
	case events.EventCreated, events.EventUpdated, events.EventDeleted:
		n.logger.Info(string(event.Type), zap.Int64("event_id", event.EventID), zap.Any("payload", event.Payload))
		return n.send(ctx, event, false, true)
	case events.EventParticipantRegistered:
		n.logger.Info("participant registered", zap.Int64("event_id", event.EventID), zap.Any("payload", event.Payload))
		return n.send(ctx, event, true, false)
	case events.EventRegistrationCancelled:
		n.logger.Info("registration cancelled", zap.Int64("event_id", event.EventID), zap.Any("payload", event.Payload))
		return n.send(ctx, event, true, true)
	default:
		n.logger.Debug("no notification for event type", zap.String("event_type", string(event.Type)))
		return nil
	}
}

func (n *NotificationService) send(ctx context.Context, event events.Event, email, webhook bool) []string {
	var channels []string
	if email && n.sendEmailNotificationStub(ctx, event) {
		channels = append(channels, "email")
	}
	if webhook && n.sendWebhookNotificationStub(ctx, event) {
		channels = append(channels, "webhook")
	}
	return channels
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) bool {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return false
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("event_id", event.EventID),
		zap.String("event_type", string(event.Type)))
	return true
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) bool {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return false
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("event_id", event.EventID),
		zap.String("event_type", string(event.Type)))
	return true
}
