package service

import (
	"context"

	"storefront/internal/domain/entity"
)

// EventPublisher defines the interface for publishing outbox events to a message queue
type EventPublisher interface {
	// Publish delivers one event. Implementations must be safe for repeated
	// delivery of the same event id.
	Publish(ctx context.Context, event *entity.OutboxEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
