package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("item not found in cart")
)

// CartRepository stores one cart document per user. Every mutation refreshes
// the expiry to now + ttl.
type CartRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*entity.Cart, error)

	// AddItem creates the cart if needed and adds quantity to the line.
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int, ttl time.Duration) (*entity.Cart, error)

	// SetItem sets the line quantity, creating the line and cart if needed.
	SetItem(ctx context.Context, userID, productID uuid.UUID, quantity int, ttl time.Duration) (*entity.Cart, error)

	// RemoveItem drops the line and pushes the expiry out by ttl.
	RemoveItem(ctx context.Context, userID, productID uuid.UUID, ttl time.Duration) (*entity.Cart, error)

	// DeleteByUser removes the cart; ErrCartNotFound if there was none.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error

	List(ctx context.Context) ([]*entity.Cart, error)
}
