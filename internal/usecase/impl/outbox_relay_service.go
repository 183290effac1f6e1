package impl

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"go.uber.org/fx"
)

type outboxRelayService struct {
	txManager repository.TransactionManager
	publisher service.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// OutboxRelayServiceParams holds dependencies for OutboxRelayService, injected by Fx.
type OutboxRelayServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Publisher service.EventPublisher
	Logger    *slog.Logger
}

// NewOutboxRelayService creates the relay that drains the outbox table.
func NewOutboxRelayService(params OutboxRelayServiceParams) usecase.OutboxRelayUsecase {
	return &outboxRelayService{
		txManager: params.TxManager,
		publisher: params.Publisher,
		logger:    params.Logger,
		now:       time.Now,
	}
}

// RelayBatch locks a batch, publishes it in creation order and marks each
// published row. The first publish failure ends the batch; rows already
// published stay marked and the rest are retried on the next call.
func (srv *outboxRelayService) RelayBatch(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}

	published := 0
	var publishErr error

	err := srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		events, err := repos.OutboxRepo().FetchUnpublished(ctx, limit)
		if err != nil {
			return err
		}

		for _, event := range events {
			if err := srv.publisher.Publish(ctx, event); err != nil {
				publishErr = errors.Wrapf(err, "publish %s", event.ID)

				return nil
			}
			if err := repos.OutboxRepo().MarkPublished(ctx, event.ID, srv.now()); err != nil {
				return err
			}
			published++
		}

		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "outbox relay transaction failed")
	}

	if publishErr != nil {
		srv.logger.Warn("[Relay] Publish failed, batch cut short",
			slog.Int("published", published),
			slog.Any("error", publishErr),
		)

		return published, publishErr
	}

	return published, nil
}
