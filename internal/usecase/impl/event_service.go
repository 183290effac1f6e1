package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"storefront/config"
	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"go.uber.org/fx"
)

type eventService struct {
	txManager      repository.TransactionManager
	orderRepo      repository.OrderRepository
	checkoutRepo   repository.CheckoutRepository
	gateways       service.GatewayRegistry
	textGen        service.TextGenerator
	summaryTimeout time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// EventServiceParams holds dependencies for EventService, injected by Fx.
type EventServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	OrderRepo    repository.OrderRepository
	CheckoutRepo repository.CheckoutRepository
	Gateways     service.GatewayRegistry
	TextGen      service.TextGenerator
	Config       *config.Config
	Logger       *slog.Logger
}

// NewEventService creates the worker-side event processor.
func NewEventService(params EventServiceParams) usecase.EventUsecase {
	summaryTimeout := defaultSummaryTimeout
	if params.Config != nil && params.Config.TextGen != nil && params.Config.TextGen.Timeout > 0 {
		summaryTimeout = params.Config.TextGen.Timeout
	}

	return &eventService{
		txManager:      params.TxManager,
		orderRepo:      params.OrderRepo,
		checkoutRepo:   params.CheckoutRepo,
		gateways:       params.Gateways,
		textGen:        params.TextGen,
		summaryTimeout: summaryTimeout,
		logger:         params.Logger,
		now:            time.Now,
	}
}

func (srv *eventService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// HandleEvent dispatches on the event type. Malformed payloads are dropped;
// storage and gateway failures are returned as retryable.
func (srv *eventService) HandleEvent(ctx context.Context, event *usecase.IncomingEvent) error {
	logger := srv.log(ctx).With(
		slog.String("event_id", event.EventID.String()),
		slog.String("event_type", event.EventType),
	)

	switch event.EventType {
	case entity.EventOrderCreated:
		var payload entity.OrderCreatedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return errors.Wrap(err, "decode order.created payload")
		}

		return srv.backfillSummary(ctx, logger, &payload)

	case entity.EventCheckoutRejected:
		var payload entity.CheckoutRejectedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return errors.Wrap(err, "decode checkout.rejected payload")
		}

		return srv.refundRejected(ctx, logger, &payload)

	case entity.EventOrderCancelled:
		var payload entity.OrderCancelledPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return errors.Wrap(err, "decode order.cancelled payload")
		}

		return srv.refundCancelled(ctx, logger, &payload)

	case entity.EventOrderStatusChanged:
		var payload entity.OrderStatusChangedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return errors.Wrap(err, "decode order.status_changed payload")
		}
		logger.Info("[Worker] Order status changed",
			slog.String("order_id", payload.OrderID.String()),
			slog.String("from", string(payload.From)),
			slog.String("to", string(payload.To)),
		)

		return nil

	default:
		logger.Warn("[Worker] Unknown event type, dropping")

		return nil
	}
}

// backfillSummary fills the summary when the request path could not.
func (srv *eventService) backfillSummary(ctx context.Context, logger *slog.Logger, payload *entity.OrderCreatedPayload) error {
	order, err := srv.orderRepo.FindByID(ctx, payload.OrderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		logger.Warn("[Worker] Order for event not found", slog.String("order_id", payload.OrderID.String()))

		return nil
	}
	if err != nil {
		return usecase.NewRetryableError(errors.Wrap(err, "failed to load order"))
	}
	if order.Summary != "" {
		return nil
	}

	summary, err := summarizeOrder(ctx, srv.textGen, order, srv.summaryTimeout)
	if err != nil {
		logger.Debug("[Worker] Order summary skipped", slog.Any("error", err))

		return nil
	}
	if err := srv.orderRepo.UpdateSummary(ctx, order.ID, summary); err != nil {
		return usecase.NewRetryableError(errors.Wrap(err, "failed to store order summary"))
	}

	logger.Info("[Worker] Order summary stored", slog.String("order_id", order.ID.String()))

	return nil
}

// refundRejected returns a payment that arrived after stock ran out.
func (srv *eventService) refundRejected(ctx context.Context, logger *slog.Logger, payload *entity.CheckoutRejectedPayload) error {
	gateway, err := srv.gateways.Get(payload.Provider)
	if err != nil {
		logger.Error("[Worker] No gateway for rejected checkout",
			slog.String("checkout_id", payload.CheckoutID.String()),
			slog.String("provider", string(payload.Provider)),
		)

		return nil
	}

	err = gateway.Refund(ctx, payload.GatewayOrderID, payload.PaymentID, payload.AmountMinor, payload.CheckoutID.String())
	if err != nil {
		return usecase.NewRetryableError(errors.Wrap(err, "refund rejected checkout"))
	}

	logger.Info("[Worker] Rejected checkout refunded",
		slog.String("checkout_id", payload.CheckoutID.String()),
		slog.String("payment_id", payload.PaymentID),
		slog.Int64("amount_minor", payload.AmountMinor),
	)

	return nil
}

// refundCancelled refunds a paid order and records the refund. A redelivered
// event finds the order already Refunded and stops.
func (srv *eventService) refundCancelled(ctx context.Context, logger *slog.Logger, payload *entity.OrderCancelledPayload) error {
	order, err := srv.orderRepo.FindByID(ctx, payload.OrderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		logger.Warn("[Worker] Cancelled order not found", slog.String("order_id", payload.OrderID.String()))

		return nil
	}
	if err != nil {
		return usecase.NewRetryableError(errors.Wrap(err, "failed to load order"))
	}
	if order.PaymentStatus != entity.PaymentStatusPaid || order.PaymentID == "" {
		return nil
	}

	checkout, err := srv.checkoutRepo.FindByID(ctx, order.CheckoutID)
	if err != nil {
		return usecase.NewRetryableError(errors.Wrap(err, "failed to load checkout"))
	}
	gateway, err := srv.gateways.Get(order.PaymentProvider)
	if err != nil {
		logger.Error("[Worker] No gateway for cancelled order",
			slog.String("order_id", order.ID.String()),
			slog.String("provider", string(order.PaymentProvider)),
		)

		return nil
	}

	if err := gateway.Refund(ctx, checkout.GatewayOrderID, order.PaymentID, entity.ToMinorUnits(order.TotalAmount), order.ID.String()); err != nil {
		return usecase.NewRetryableError(errors.Wrap(err, "refund cancelled order"))
	}

	err = srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		locked, err := repos.OrderRepo().FindByIDForUpdate(ctx, order.ID)
		if err != nil {
			return err
		}
		if locked.PaymentStatus == entity.PaymentStatusRefunded {
			return nil
		}
		locked.PaymentStatus = entity.PaymentStatusRefunded
		locked.UpdatedAt = srv.now()

		return repos.OrderRepo().UpdateStatus(ctx, locked)
	})
	if err != nil {
		return usecase.NewRetryableError(errors.Wrap(err, "failed to mark order refunded"))
	}

	logger.Info("[Worker] Cancelled order refunded",
		slog.String("order_id", order.ID.String()),
		slog.String("payment_id", order.PaymentID),
	)

	return nil
}
