package service

import (
	"context"
	"fmt"
	"testing"

	"ai-orchestrator-be/pkg/events"

	"github.com/google/uuid"
)

type monitorFixture struct {
	service    IEventMonitorService
	subscriber *fakeSubscriber
	mailer     *fakeMailer
}

func newMonitorFixture(recipient string) *monitorFixture {
	subscriber := newFakeSubscriber()
	mail := &fakeMailer{}
	return &monitorFixture{
		service:    NewEventMonitorService(subscriber, mail, recipient, nopLogger{}),
		subscriber: subscriber,
		mailer:     mail,
	}
}

func TestEventMonitorRegistersDurableConsumers(t *testing.T) {
	f := newMonitorFixture("ops@example.com")

	if err := f.service.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for subject, durable := range map[string]string{
		"events." + events.EventSuggestionCreated: "suggestion-monitor",
		"events." + events.EventFeedbackReceived:  "feedback-monitor",
	} {
		if f.subscriber.handlers[subject] == nil {
			t.Errorf("no consumer registered for %s", subject)
		}
		if f.subscriber.durables[subject] != durable {
			t.Errorf("wrong durable for %s: %q", subject, f.subscriber.durables[subject])
		}
	}
}

func TestEventMonitorStartSurfacesSubscribeFailure(t *testing.T) {
	f := newMonitorFixture("ops@example.com")
	f.subscriber.err = fmt.Errorf("nats down")

	if err := f.service.Start(); err == nil {
		t.Fatal("a failed subscription must not be swallowed")
	}
}

func TestHighPrioritySuggestionSendsAlert(t *testing.T) {
	f := newMonitorFixture("ops@example.com")
	if err := f.service.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	handler := f.subscriber.handlers["events."+events.EventSuggestionCreated]
	evt := events.NewSuggestionCreated(uuid.New(), uuid.New(), "accuracy", "high", "add citations to answers")
	if err := handler(context.Background(), evt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.mailer.suggestionAreas) != 1 || f.mailer.suggestionAreas[0] != "accuracy" {
		t.Errorf("expected one alert for area accuracy, got %v", f.mailer.suggestionAreas)
	}
	if f.mailer.recipients[0] != "ops@example.com" {
		t.Errorf("alert sent to wrong recipient: %q", f.mailer.recipients[0])
	}
	if f.mailer.suggestionBodies[0] != "add citations to answers" {
		t.Errorf("alert lost the suggestion text: %q", f.mailer.suggestionBodies[0])
	}
}

func TestLowPrioritySuggestionSkipsAlert(t *testing.T) {
	f := newMonitorFixture("ops@example.com")
	if err := f.service.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	handler := f.subscriber.handlers["events."+events.EventSuggestionCreated]
	evt := events.NewSuggestionCreated(uuid.New(), uuid.New(), "tone", "medium", "soften wording")
	if err := handler(context.Background(), evt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.mailer.suggestionAreas) != 0 {
		t.Errorf("medium priority must not page anyone: %v", f.mailer.suggestionAreas)
	}
}

func TestSuggestionAlertWithoutRecipientIsSilent(t *testing.T) {
	f := newMonitorFixture("")
	if err := f.service.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	handler := f.subscriber.handlers["events."+events.EventSuggestionCreated]
	evt := events.NewSuggestionCreated(uuid.New(), uuid.New(), "accuracy", "high", "x")
	if err := handler(context.Background(), evt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.mailer.suggestionAreas) != 0 {
		t.Errorf("no recipient configured, yet an alert was sent: %v", f.mailer.suggestionAreas)
	}
}

func TestFailedSuggestionAlertLeavesEventForRedelivery(t *testing.T) {
	f := newMonitorFixture("ops@example.com")
	f.mailer.sendErr = fmt.Errorf("smtp refused")
	if err := f.service.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	handler := f.subscriber.handlers["events."+events.EventSuggestionCreated]
	evt := events.NewSuggestionCreated(uuid.New(), uuid.New(), "accuracy", "high", "x")
	if err := handler(context.Background(), evt); err == nil {
		t.Fatal("a failed alert must propagate so the event is redelivered")
	}
}

func TestFeedbackReceivedIsAcknowledged(t *testing.T) {
	f := newMonitorFixture("ops@example.com")
	if err := f.service.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	handler := f.subscriber.handlers["events."+events.EventFeedbackReceived]
	evt := events.NewFeedbackReceived(uuid.New(), uuid.New(), 1, "negative")
	if err := handler(context.Background(), evt); err != nil {
		t.Fatalf("feedback events are log-only and must ack: %v", err)
	}
	if len(f.mailer.lowRatingAlerts) != 0 {
		t.Errorf("low rating mail is sent at submission time, not by the monitor: %v", f.mailer.lowRatingAlerts)
	}
}
