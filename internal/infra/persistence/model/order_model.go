package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingAddressModel is embedded into orders and checkouts with a shipping_ prefix.
type ShippingAddressModel struct {
	FullName   string `gorm:"type:varchar(100)"`
	Address    string `gorm:"type:text"`
	City       string `gorm:"type:varchar(100)"`
	PostalCode string `gorm:"type:varchar(20)"`
	Country    string `gorm:"type:varchar(100)"`
	Phone      string `gorm:"type:varchar(30)"`
}

// LineItemModel is the JSON snapshot of a line stored on checkouts.
type LineItemModel struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// CheckoutModel mirrors the 'checkouts' table.
type CheckoutModel struct {
	ID              uuid.UUID            `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	IdempotencyKey  *string              `gorm:"type:varchar(255)"`
	Provider        string               `gorm:"type:varchar(20);not null"`
	GatewayOrderID  *string              `gorm:"type:varchar(100)"`
	PaymentSession  string               `gorm:"type:text"`
	Items           []LineItemModel      `gorm:"type:jsonb;serializer:json;not null"`
	ShippingAddress ShippingAddressModel `gorm:"embedded;embeddedPrefix:shipping_"`
	TotalAmount     decimal.Decimal      `gorm:"type:numeric(12,2);not null"`
	Currency        string               `gorm:"type:varchar(3);not null"`
	Status          string               `gorm:"type:varchar(20);not null"`
	OrderID         *uuid.UUID           `gorm:"type:uuid"`
	PaymentID       string               `gorm:"type:varchar(100)"`
	FailureReason   string               `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName explicitly sets the table name for GORM.
func (CheckoutModel) TableName() string {
	return "checkouts"
}

// OrderModel mirrors the 'orders' table. checkout_id is unique: one order per checkout.
type OrderModel struct {
	ID              uuid.UUID            `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	CheckoutID      uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex"`
	Items           []OrderItemModel     `gorm:"foreignKey:OrderID"`
	ShippingAddress ShippingAddressModel `gorm:"embedded;embeddedPrefix:shipping_"`
	TotalAmount     decimal.Decimal      `gorm:"type:numeric(12,2);not null"`
	Currency        string               `gorm:"type:varchar(3);not null"`
	Status          string               `gorm:"type:varchar(20);not null;index"`
	PaymentProvider string               `gorm:"type:varchar(20);not null"`
	PaymentMethod   string               `gorm:"type:varchar(50)"`
	PaymentID       string               `gorm:"type:varchar(100)"`
	PaymentStatus   string               `gorm:"type:varchar(20);not null"`
	PaidAt          *time.Time
	Summary         string `gorm:"type:text"`
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName explicitly sets the table name for GORM.
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel mirrors the 'order_items' table. Product ids are not foreign keys:
// products may be deleted while orders keep their snapshot.
type OrderItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position  int             `gorm:"not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity  int             `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (OrderItemModel) TableName() string {
	return "order_items"
}
