package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups products. It cannot be removed while products reference it.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Product is a sellable item. Stock is never negative.
type Product struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Color          string          `json:"color,omitempty"`
	CompatibleWith []string        `json:"compatibleWith,omitempty"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	Price          decimal.Decimal `json:"price"`
	ListPrice      decimal.Decimal `json:"listPrice"`
	Stock          int             `json:"stock"`
	CategoryID     uuid.UUID       `json:"categoryId"`
	Category       *Category       `json:"category,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// HasStock reports whether quantity units are currently available.
func (p *Product) HasStock(quantity int) bool {
	return quantity > 0 && p.Stock >= quantity
}
