package usecase

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// Requester identifies the caller for ownership checks.
type Requester struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// OrderListInput is an admin page request over all orders.
type OrderListInput struct {
	Status *entity.OrderStatus
	Page   int
	Limit  int
}

// OrderListOutput is one page of orders.
type OrderListOutput struct {
	Orders []*entity.Order
	Total  int64
	Page   int
	Limit  int
}

// OrderUsecase reads orders and drives their status.
type OrderUsecase interface {
	ListMyOrders(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error)
	// GetOrder is allowed for the owner and for admins.
	GetOrder(ctx context.Context, requester Requester, orderID uuid.UUID) (*entity.Order, error)
	// GetReceipt returns a PNG QR code for the order.
	GetReceipt(ctx context.Context, requester Requester, orderID uuid.UUID) ([]byte, error)
	ListOrders(ctx context.Context, input *OrderListInput) (*OrderListOutput, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status entity.OrderStatus) (*entity.Order, error)
	// CancelOrder is owner-only and restores stock for every line.
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*entity.Order, error)
}
