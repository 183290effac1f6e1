package pubsub

import (
	"encoding/json"
	"time"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// Envelope is the wire form of an outbox event on every transport.
type Envelope struct {
	EventID     uuid.UUID       `json:"eventId"`
	EventType   string          `json:"eventType"`
	AggregateID uuid.UUID       `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload"`
	RequestID   string          `json:"requestId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NewEnvelope wraps an outbox event for publishing.
func NewEnvelope(event *entity.OutboxEvent) Envelope {
	payload := json.RawMessage(event.Payload)
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	return Envelope{
		EventID:     event.ID,
		EventType:   event.EventType,
		AggregateID: event.AggregateID,
		Payload:     payload,
		RequestID:   event.RequestID,
		CreatedAt:   event.CreatedAt,
	}
}

// attributes are attached as message metadata for filtering and tracing.
func attributes(event *entity.OutboxEvent) map[string]string {
	attrs := map[string]string{
		"event_id":     event.ID.String(),
		"event_type":   event.EventType,
		"aggregate_id": event.AggregateID.String(),
	}
	if event.RequestID != "" {
		attrs["request_id"] = event.RequestID
	}

	return attrs
}
