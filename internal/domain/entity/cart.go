package entity

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the per-user basket. There is at most one cart per user and it
// expires when left untouched past ExpiresAt.
type Cart struct {
	UserID    uuid.UUID  `json:"userId"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// CartItem is one product line. Quantity is always at least 1.
type CartItem struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// QuantityOf returns the quantity held for a product, 0 if absent.
func (c *Cart) QuantityOf(productID uuid.UUID) int {
	if c == nil {
		return 0
	}
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}

	return 0
}

// ProductIDs lists the distinct products in the cart.
func (c *Cart) ProductIDs() []uuid.UUID {
	if c == nil {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}

	return ids
}
