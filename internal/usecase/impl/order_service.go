package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const maxOrderPageSize = 100

type orderService struct {
	txManager repository.TransactionManager
	orderRepo repository.OrderRepository
	cache     repository.ProductCache
	qrService service.QRCodeService
	logger    *slog.Logger
	now       func() time.Time
}

// OrderServiceParams holds dependencies for OrderService, injected by Fx.
type OrderServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	OrderRepo repository.OrderRepository
	Cache     repository.ProductCache
	QRService service.QRCodeService
	Logger    *slog.Logger
}

// NewOrderService creates a new order service instance
func NewOrderService(params OrderServiceParams) usecase.OrderUsecase {
	return &orderService{
		txManager: params.TxManager,
		orderRepo: params.OrderRepo,
		cache:     params.Cache,
		qrService: params.QRService,
		logger:    params.Logger,
		now:       time.Now,
	}
}

func (srv *orderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *orderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	orders, err := srv.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	return orders, nil
}

func (srv *orderService) GetOrder(ctx context.Context, requester usecase.Requester, orderID uuid.UUID) (*entity.Order, error) {
	order, err := srv.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderError(err, "failed to find order")
	}
	if !requester.IsAdmin && order.UserID != requester.UserID {
		return nil, domainerrors.ErrForbidden.WithDetails("order belongs to another user")
	}

	return order, nil
}

func (srv *orderService) GetReceipt(ctx context.Context, requester usecase.Requester, orderID uuid.UUID) ([]byte, error) {
	order, err := srv.GetOrder(ctx, requester, orderID)
	if err != nil {
		return nil, err
	}

	png, err := srv.qrService.GenerateOrderReceiptQR(order)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render receipt")
	}

	return png, nil
}

func (srv *orderService) ListOrders(ctx context.Context, input *usecase.OrderListInput) (*usecase.OrderListOutput, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown order status")
	}

	page, limit := normalizePage(input.Page, input.Limit, maxOrderPageSize)
	orders, total, err := srv.orderRepo.List(ctx, repository.OrderFilter{
		Status: input.Status,
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	return &usecase.OrderListOutput{Orders: orders, Total: total, Page: page, Limit: limit}, nil
}

// UpdateStatus applies an admin transition. Cancelling this way restores
// stock exactly like an owner cancellation.
func (srv *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status entity.OrderStatus) (*entity.Order, error) {
	if !status.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown order status")
	}

	order, err := srv.transition(ctx, orderID, status, nil)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Order status updated",
		slog.String("order_id", orderID.String()),
		slog.String("status", string(status)),
	)

	return order, nil
}

func (srv *orderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*entity.Order, error) {
	order, err := srv.transition(ctx, orderID, entity.OrderStatusCancelled, &userID)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Order cancelled by owner", slog.String("order_id", orderID.String()))

	return order, nil
}

// transition locks the order, moves it and writes the outbox events in one
// transaction. ownerID restricts the change to the order's owner.
func (srv *orderService) transition(ctx context.Context, orderID uuid.UUID, next entity.OrderStatus, ownerID *uuid.UUID) (*entity.Order, error) {
	var order *entity.Order

	err := srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		var err error
		order, err = repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if ownerID != nil && order.UserID != *ownerID {
			return domainerrors.ErrForbidden.WithDetails("order belongs to another user")
		}

		previous := order.Status
		now := srv.now()
		if err := order.TransitionTo(next, now); err != nil {
			return err
		}
		if err := repos.OrderRepo().UpdateStatus(ctx, order); err != nil {
			return err
		}

		requestID := deliverycontext.GetRequestIDFromContext(ctx)
		changed, err := entity.NewOutboxEvent(order.ID, entity.EventOrderStatusChanged, entity.OrderStatusChangedPayload{
			OrderID: order.ID,
			UserID:  order.UserID,
			From:    previous,
			To:      next,
		}, requestID, now)
		if err != nil {
			return err
		}
		if err := repos.OutboxRepo().Add(ctx, changed); err != nil {
			return err
		}

		if next != entity.OrderStatusCancelled {
			return nil
		}

		if err := restock(ctx, repos.ProductRepo(), order.Items); err != nil {
			return err
		}

		cancelled, err := entity.NewOutboxEvent(order.ID, entity.EventOrderCancelled, entity.OrderCancelledPayload{
			OrderID:     order.ID,
			UserID:      order.UserID,
			Provider:    order.PaymentProvider,
			PaymentID:   order.PaymentID,
			TotalAmount: order.TotalAmount,
			Currency:    order.Currency,
		}, requestID, now)
		if err != nil {
			return err
		}

		return repos.OutboxRepo().Add(ctx, cancelled)
	})
	if err != nil {
		return nil, mapOrderError(err, "failed to update order status")
	}

	if next == entity.OrderStatusCancelled {
		ids := make([]uuid.UUID, 0, len(order.Items))
		for _, item := range order.Items {
			ids = append(ids, item.ProductID)
		}
		if err := srv.cache.Delete(ctx, ids...); err != nil {
			srv.log(ctx).Warn("Product cache invalidation failed", slog.Any("error", err))
		}
	}

	return order, nil
}

// restock returns every line to stock in product id order, matching
// reserveStock. Products deleted since the order was placed are skipped.
func restock(ctx context.Context, products repository.ProductRepository, items []entity.OrderItem) error {
	for _, item := range sortedByProduct(items) {
		err := products.IncrementStock(ctx, item.ProductID, item.Quantity)
		if errors.Is(err, repository.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func mapOrderError(err error, message string) error {
	var appErr domainerrors.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrOrderNotFound):
		return domainerrors.ErrOrderNotFound
	case errors.Is(err, entity.ErrInvalidStatusTransition):
		return domainerrors.ErrInvalidStatusTransition.WithDetails(err.Error())
	default:
		return errors.Wrap(err, message)
	}
}
