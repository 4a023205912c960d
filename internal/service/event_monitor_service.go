package service

import (
	"context"
	"fmt"

	"ai-orchestrator-be/internal/pkg/logger"
	"ai-orchestrator-be/internal/pkg/mailer"
	"ai-orchestrator-be/pkg/events"
	pktNats "ai-orchestrator-be/pkg/nats"
)

const suggestionAlertPriority = "high"

// EventSubscriber is the durable consumer side of the event bus.
// Satisfied by the NATS JetStream subscriber.
type EventSubscriber interface {
	Subscribe(subject string, durableName string, handler pktNats.EventHandler) error
}

type IEventMonitorService interface {
	Start() error
}

// eventMonitorService consumes the feedback events off the bus. High
// priority suggestions page the alert recipient; everything else lands
// in the log as an audit trail.
type eventMonitorService struct {
	subscriber     EventSubscriber
	emailService   mailer.IEmailService
	alertRecipient string
	logger         logger.ILogger
}

func NewEventMonitorService(
	subscriber EventSubscriber,
	emailService mailer.IEmailService,
	alertRecipient string,
	sysLogger logger.ILogger,
) IEventMonitorService {
	return &eventMonitorService{
		subscriber:     subscriber,
		emailService:   emailService,
		alertRecipient: alertRecipient,
		logger:         sysLogger,
	}
}

// Start registers the durable consumers. Consumption itself runs on the
// subscriber's own goroutines; a failed handler is redelivered.
func (s *eventMonitorService) Start() error {
	if err := s.subscriber.Subscribe(
		"events."+events.EventSuggestionCreated,
		"suggestion-monitor",
		s.handleSuggestionCreated,
	); err != nil {
		return fmt.Errorf("subscribe suggestion events: %w", err)
	}

	if err := s.subscriber.Subscribe(
		"events."+events.EventFeedbackReceived,
		"feedback-monitor",
		s.handleFeedbackReceived,
	); err != nil {
		return fmt.Errorf("subscribe feedback events: %w", err)
	}

	return nil
}

func (s *eventMonitorService) handleSuggestionCreated(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	area := payloadString(payload, "area")
	priority := payloadString(payload, "priority")

	s.logger.Info("event_monitor", "suggestion created", map[string]interface{}{
		"suggestion_id": payloadString(payload, "suggestion_id"),
		"area":          area,
		"priority":      priority,
	})

	if priority != suggestionAlertPriority || s.alertRecipient == "" {
		return nil
	}

	// Returning the error leaves the message un-acked so the alert is
	// retried on redelivery.
	if err := s.emailService.SendSuggestionAlert(s.alertRecipient, area, priority, payloadString(payload, "suggestion")); err != nil {
		s.logger.Error("event_monitor", "failed to send suggestion alert", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

func (s *eventMonitorService) handleFeedbackReceived(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	details := map[string]interface{}{
		"feedback_id": payloadString(payload, "feedback_id"),
		"request_id":  payloadString(payload, "request_id"),
		"rating":      payload["rating"],
		"sentiment":   payloadString(payload, "sentiment"),
	}

	if payloadString(payload, "sentiment") == "negative" {
		s.logger.Warn("event_monitor", "negative feedback received", details)
	} else {
		s.logger.Info("event_monitor", "feedback received", details)
	}
	return nil
}

func payloadString(payload map[string]interface{}, key string) string {
	if value, ok := payload[key].(string); ok {
		return value
	}
	return ""
}
