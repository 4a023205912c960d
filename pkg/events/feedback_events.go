package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventFeedbackReceived  = "FEEDBACK_RECEIVED"
	EventSuggestionCreated = "SUGGESTION_CREATED"
)

func NewFeedbackReceived(feedbackId, requestId uuid.UUID, rating int, sentiment string) Event {
	return BaseEvent{
		Type: EventFeedbackReceived,
		Data: map[string]interface{}{
			"feedback_id": feedbackId.String(),
			"request_id":  requestId.String(),
			"rating":      rating,
			"sentiment":   sentiment,
		},
		OccurredAt: time.Now(),
	}
}

func NewSuggestionCreated(suggestionId, feedbackId uuid.UUID, area, priority, suggestion string) Event {
	return BaseEvent{
		Type: EventSuggestionCreated,
		Data: map[string]interface{}{
			"suggestion_id": suggestionId.String(),
			"feedback_id":   feedbackId.String(),
			"area":          area,
			"priority":      priority,
			"suggestion":    suggestion,
		},
		OccurredAt: time.Now(),
	}
}
