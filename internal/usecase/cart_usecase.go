package usecase

import (
	"context"
	"time"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is a cart item resolved against the current catalog.
type CartLine struct {
	Product   *entity.Product
	Quantity  int
	LineTotal decimal.Decimal
}

// CartView is the cart as shown to its owner. Lines whose product no
// longer exists are left out.
type CartView struct {
	UserID    uuid.UUID
	Items     []CartLine
	Total     decimal.Decimal
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// CartItemInput names a product and a quantity of at least one.
type CartItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CartUsecase manages the per-user cart. Quantities never reserve stock.
type CartUsecase interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error)
	// AddItem increments the line quantity.
	AddItem(ctx context.Context, userID uuid.UUID, input *CartItemInput) (*CartView, error)
	// SetItem replaces the line quantity.
	SetItem(ctx context.Context, userID uuid.UUID, input *CartItemInput) (*CartView, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartView, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
	ListCarts(ctx context.Context) ([]*entity.Cart, error)
}
