package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateOrder is returned when an order already exists for the checkout.
	ErrDuplicateOrder = errors.New("order already exists for checkout")

	ErrCheckoutNotFound = errors.New("checkout not found")
	// ErrDuplicateCheckout is returned when the user's idempotency key was already used.
	ErrDuplicateCheckout = errors.New("checkout already exists for idempotency key")

	// ErrDuplicatePaymentEvent is returned when (provider, event id) was already recorded.
	ErrDuplicatePaymentEvent = errors.New("payment event already recorded")
)

// OrderFilter narrows the admin order listing.
type OrderFilter struct {
	Status *entity.OrderStatus
	Offset int
	Limit  int
}

// OrderRepository persists orders. Orders are never deleted.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)

	// FindByIDForUpdate locks the order row until the transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error)

	FindByCheckoutID(ctx context.Context, checkoutID uuid.UUID) (*entity.Order, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, int64, error)

	// UpdateStatus persists status, payment status and the lifecycle timestamps.
	UpdateStatus(ctx context.Context, order *entity.Order) error

	UpdateSummary(ctx context.Context, id uuid.UUID, summary string) error
}

// CheckoutRepository persists checkout snapshots.
type CheckoutRepository interface {
	Create(ctx context.Context, checkout *entity.Checkout) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Checkout, error)
	FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*entity.Checkout, error)

	// FindByIDForUpdate and FindByGatewayOrderIDForUpdate lock the checkout row,
	// serialising every fulfilment attempt for the same checkout.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Checkout, error)
	FindByGatewayOrderIDForUpdate(ctx context.Context, provider entity.PaymentProvider, gatewayOrderID string) (*entity.Checkout, error)

	Update(ctx context.Context, checkout *entity.Checkout) error
}

// PaymentEventRepository is the per-gateway-event idempotency ledger.
type PaymentEventRepository interface {
	// Record inserts the event; ErrDuplicatePaymentEvent if already present.
	Record(ctx context.Context, event *entity.PaymentEvent, checkoutID uuid.UUID, receivedAt time.Time) error
}

// OutboxRepository stores events for the relay.
type OutboxRepository interface {
	Add(ctx context.Context, event *entity.OutboxEvent) error
	FetchUnpublished(ctx context.Context, limit int) ([]*entity.OutboxEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
}
