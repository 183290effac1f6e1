package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// kafkaPublisher writes events keyed by aggregate id, so all events of one
// order land on the same partition in order.
type kafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher for the given brokers and topic
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) service.EventPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	logger.Info("Kafka publisher initialized",
		slog.Any("brokers", brokers),
		slog.String("topic", topic),
	)

	return newKafkaPublisher(writer, logger)
}

func newKafkaPublisher(writer messageWriter, logger *slog.Logger) *kafkaPublisher {
	return &kafkaPublisher{writer: writer, logger: logger}
}

// Publish writes one message and waits for the brokers to acknowledge it
func (p *kafkaPublisher) Publish(ctx context.Context, event *entity.OutboxEvent) error {
	data, err := json.Marshal(NewEnvelope(event))
	if err != nil {
		return errors.WithStack(err)
	}

	attrs := attributes(event)
	headers := make([]kafka.Header, 0, len(attrs))
	for key, value := range attrs {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(value)})
	}

	msg := kafka.Message{
		Key:     []byte(event.AggregateID.String()),
		Value:   data,
		Headers: headers,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrapf(err, "write event %s", event.ID)
	}

	p.logger.Debug("[Kafka] Event published",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.EventType),
	)

	return nil
}

// Close flushes pending writes and closes the writer
func (p *kafkaPublisher) Close() error {
	return errors.WithStack(p.writer.Close())
}
