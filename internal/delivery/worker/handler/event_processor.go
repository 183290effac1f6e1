package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// envelope is the wire form the publishers emit on every transport.
type envelope struct {
	EventID     uuid.UUID       `json:"eventId"`
	EventType   string          `json:"eventType"`
	AggregateID uuid.UUID       `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload"`
	RequestID   string          `json:"requestId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ErrMalformedMessage is returned for messages that can never be processed.
var ErrMalformedMessage = errors.New("malformed event message")

// EventProcessor decodes a transport message and hands it to the event usecase.
type EventProcessor struct {
	eventUC usecase.EventUsecase
	logger  *slog.Logger
}

// EventProcessorParams holds dependencies for EventProcessor, injected by Fx.
type EventProcessorParams struct {
	fx.In

	EventUC usecase.EventUsecase
	Logger  *slog.Logger
}

// NewEventProcessor creates a new EventProcessor
func NewEventProcessor(params EventProcessorParams) *EventProcessor {
	return &EventProcessor{
		eventUC: params.EventUC,
		logger:  params.Logger,
	}
}

// Process handles one message body. attrs are transport metadata such as
// Pub/Sub attributes or Kafka headers.
func (p *EventProcessor) Process(ctx context.Context, data []byte, attrs map[string]string) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return errors.Wrap(ErrMalformedMessage, err.Error())
	}
	if env.EventID == uuid.Nil || env.EventType == "" {
		return errors.Wrap(ErrMalformedMessage, "missing event id or type")
	}

	requestID := extractRequestID(ctx, attrs, &env)
	reqLogger := p.logger.With(
		slog.String("request_id", requestID),
		slog.String("event_id", env.EventID.String()),
		slog.String("event_type", env.EventType),
	)
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	reqLogger.Info("[Worker] Processing event", slog.String("aggregate_id", env.AggregateID.String()))

	err := p.eventUC.HandleEvent(ctx, &usecase.IncomingEvent{
		EventID:     env.EventID,
		EventType:   env.EventType,
		AggregateID: env.AggregateID,
		Payload:     env.Payload,
		RequestID:   requestID,
	})
	if err != nil {
		reqLogger.Error("[Worker] Failed to process event",
			slog.Any("error", err),
			slog.Bool("retryable", usecase.IsRetryable(err)),
		)

		return err
	}

	reqLogger.Info("[Worker] Event processed")

	return nil
}

// extractRequestID prefers transport attributes, then the envelope, then
// the inbound context, and finally generates one.
func extractRequestID(ctx context.Context, attrs map[string]string, env *envelope) string {
	if requestID := attrs["request_id"]; requestID != "" {
		return requestID
	}
	if env.RequestID != "" {
		return env.RequestID
	}
	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}
