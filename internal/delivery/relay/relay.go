// Package relay drains the transactional outbox into the event publisher.
package relay

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storefront/config"
	"storefront/internal/delivery"
	"storefront/internal/usecase"

	"go.uber.org/fx"
)

type relay struct {
	uc        usecase.OutboxRelayUsecase
	interval  time.Duration
	batchSize int
	logger    *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// RelayParams holds dependencies for the outbox relay, injected by Fx.
type RelayParams struct {
	fx.In

	Lc     fx.Lifecycle
	Cfg    *config.Config
	Logger *slog.Logger
	UC     usecase.OutboxRelayUsecase
}

// NewRelay creates the polling relay. It runs until the application stops.
func NewRelay(params RelayParams) (delivery.Delivery, error) {
	r := newRelay(params.UC, params.Cfg.Events.PollInterval, params.Cfg.Events.BatchSize, params.Logger)

	params.Lc.Append(fx.Hook{
		OnStop: r.stop,
	})

	return r, nil
}

func newRelay(uc usecase.OutboxRelayUsecase, interval time.Duration, batchSize int, logger *slog.Logger) *relay {
	if interval <= 0 {
		interval = 2 * time.Second
	}

	return &relay{
		uc:        uc,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Serve polls until stopped. A full batch is followed immediately by the
// next one so a backlog drains without waiting for the ticker.
func (r *relay) Serve(ctx context.Context) error {
	defer close(r.doneCh)

	r.logger.Info("Starting outbox relay",
		slog.Duration("interval", r.interval),
		slog.Int("batch_size", r.batchSize),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		for r.tick(ctx) {
			select {
			case <-r.stopCh:
				return nil
			default:
			}
		}

		select {
		case <-r.stopCh:
			return nil
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// tick relays one batch and reports whether another should follow at once.
func (r *relay) tick(ctx context.Context) bool {
	n, err := r.uc.RelayBatch(ctx, r.batchSize)
	if err != nil {
		r.logger.Warn("Outbox relay batch failed", slog.Int("published", n), slog.Any("error", err))

		return false
	}
	if n > 0 {
		r.logger.Debug("Outbox events relayed", slog.Int("count", n))
	}

	return n > 0 && n >= r.batchSize
}

func (r *relay) stop(ctx context.Context) error {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.logger.Info("Stopping outbox relay")

	select {
	case <-r.doneCh:
	case <-ctx.Done():
	}

	return nil
}
