package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storefront/config"
	"storefront/internal/delivery"
	"storefront/internal/delivery/worker/handler"
	"storefront/internal/domain/constants"
	"storefront/internal/usecase"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"
)

const (
	initialRetryBackoff = 500 * time.Millisecond
	maxRetryBackoff     = 30 * time.Second
)

// messageReader is the part of *kafka.Reader the consumer needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// messageProcessor handles one decoded message body.
type messageProcessor interface {
	Process(ctx context.Context, data []byte, attrs map[string]string) error
}

// kafkaConsumer reads outbox events from a consumer group. Offsets are
// committed only once a message is handled or known to be unprocessable,
// so a retryable failure blocks the partition until it succeeds.
type kafkaConsumer struct {
	reader     messageReader
	processor  messageProcessor
	logger     *slog.Logger
	minBackoff time.Duration
	maxBackoff time.Duration

	stopOnce sync.Once
	cancel   context.CancelFunc
	mu       sync.Mutex
	done     chan struct{}
}

// KafkaConsumerParams holds dependencies for the Kafka consumer
type KafkaConsumerParams struct {
	fx.In

	Lc        fx.Lifecycle
	Cfg       *config.Config
	Logger    *slog.Logger
	Processor *handler.EventProcessor
}

// NewKafkaConsumer creates a consumer-group reader for the events topic. It
// yields no delivery unless Kafka is the configured provider; Pub/Sub
// transports arrive through the push server instead.
func NewKafkaConsumer(params KafkaConsumerParams) ([]delivery.Delivery, error) {
	events := params.Cfg.Events
	if events == nil || events.Provider != constants.PubSubProviderKafka {
		return nil, nil
	}
	if len(events.KafkaBrokers) == 0 || events.KafkaTopic == "" {
		return nil, errors.New("kafka consumer requires brokers and topic")
	}
	if events.KafkaGroupID == "" {
		return nil, errors.New("kafka consumer requires a group id")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  events.KafkaBrokers,
		Topic:    events.KafkaTopic,
		GroupID:  events.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})

	consumer := newKafkaConsumer(reader, params.Processor, params.Logger)
	params.Lc.Append(fx.Hook{
		OnStop: consumer.stop,
	})

	return []delivery.Delivery{consumer}, nil
}

func newKafkaConsumer(reader messageReader, processor messageProcessor, logger *slog.Logger) *kafkaConsumer {
	return &kafkaConsumer{
		reader:     reader,
		processor:  processor,
		logger:     logger,
		minBackoff: initialRetryBackoff,
		maxBackoff: maxRetryBackoff,
		done:       make(chan struct{}),
	}
}

// Serve consumes until stopped or the context ends.
func (k *kafkaConsumer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	k.mu.Lock()
	k.cancel = cancel
	k.mu.Unlock()
	defer close(k.done)
	defer cancel()

	k.logger.Info("Starting Kafka consumer")

	for {
		msg, err := k.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return errors.Wrap(err, "kafka fetch failed")
		}

		if !k.handle(ctx, msg) {
			return nil
		}

		if err := k.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			k.logger.Error("[Kafka] Commit failed",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Any("error", err),
			)
		}
	}
}

// handle processes msg, retrying retryable failures with backoff. It
// reports false only when the context ended before the message settled.
func (k *kafkaConsumer) handle(ctx context.Context, msg kafka.Message) bool {
	attrs := make(map[string]string, len(msg.Headers))
	for _, header := range msg.Headers {
		attrs[header.Key] = string(header.Value)
	}

	backoff := k.minBackoff
	for {
		err := k.processor.Process(ctx, msg.Value, attrs)
		if err == nil {
			return true
		}
		if !usecase.IsRetryable(err) {
			k.logger.Error("[Kafka] Dropping unprocessable message",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Any("error", err),
			)

			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, k.maxBackoff)
	}
}

func (k *kafkaConsumer) stop(ctx context.Context) error {
	k.stopOnce.Do(func() {
		k.mu.Lock()
		if k.cancel != nil {
			k.cancel()
		}
		started := k.cancel != nil
		k.mu.Unlock()

		if started {
			select {
			case <-k.done:
			case <-ctx.Done():
			}
		}
	})

	return errors.WithStack(k.reader.Close())
}
