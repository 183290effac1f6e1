package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// IncomingEvent is an outbox event as received by the worker.
type IncomingEvent struct {
	EventID     uuid.UUID
	EventType   string
	AggregateID uuid.UUID
	Payload     json.RawMessage
	RequestID   string
}

// EventUsecase runs the asynchronous side effects of committed state changes.
// Handling must be idempotent: transports deliver at least once.
type EventUsecase interface {
	HandleEvent(ctx context.Context, event *IncomingEvent) error
}

// OutboxRelayUsecase moves committed outbox rows to the event publisher.
type OutboxRelayUsecase interface {
	// RelayBatch publishes up to limit unpublished events and reports how many went out.
	RelayBatch(ctx context.Context, limit int) (int, error)
}

// RetryableError marks a failure the transport should redeliver.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError wraps err as retryable.
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err asks for redelivery.
func IsRetryable(err error) bool {
	var re *RetryableError

	return errors.As(err, &re)
}
