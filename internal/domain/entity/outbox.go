package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Outbox event types
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderCancelled     = "order.cancelled"
	EventCheckoutRejected   = "checkout.rejected"
)

// OutboxEvent is written in the same transaction as the state change it
// describes and published later by the relay.
type OutboxEvent struct {
	ID          uuid.UUID
	AggregateID uuid.UUID
	EventType   string
	Payload     []byte
	RequestID   string
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// NewOutboxEvent marshals payload and stamps a fresh event id.
func NewOutboxEvent(aggregateID uuid.UUID, eventType string, payload any, requestID string, at time.Time) (*OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %s payload", eventType)
	}

	return &OutboxEvent{
		ID:          uuid.New(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Payload:     data,
		RequestID:   requestID,
		CreatedAt:   at,
	}, nil
}

// OrderCreatedPayload is published when a checkout is fulfilled.
type OrderCreatedPayload struct {
	OrderID     uuid.UUID       `json:"orderId"`
	UserID      uuid.UUID       `json:"userId"`
	CheckoutID  uuid.UUID       `json:"checkoutId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Currency    string          `json:"currency"`
	Provider    PaymentProvider `json:"provider"`
	PaymentID   string          `json:"paymentId"`
}

// OrderStatusChangedPayload is published on every admin status change.
type OrderStatusChangedPayload struct {
	OrderID uuid.UUID   `json:"orderId"`
	UserID  uuid.UUID   `json:"userId"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
}

// OrderCancelledPayload is published when an owner cancels; it carries what
// a refund needs.
type OrderCancelledPayload struct {
	OrderID     uuid.UUID       `json:"orderId"`
	UserID      uuid.UUID       `json:"userId"`
	Provider    PaymentProvider `json:"provider"`
	PaymentID   string          `json:"paymentId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Currency    string          `json:"currency"`
}

// CheckoutRejectedPayload is published when a captured payment could not be
// turned into an order; the worker refunds it.
type CheckoutRejectedPayload struct {
	CheckoutID     uuid.UUID       `json:"checkoutId"`
	UserID         uuid.UUID       `json:"userId"`
	Provider       PaymentProvider `json:"provider"`
	GatewayOrderID string          `json:"gatewayOrderId"`
	PaymentID      string          `json:"paymentId"`
	AmountMinor    int64           `json:"amountMinor"`
	Currency       string          `json:"currency"`
	Reason         string          `json:"reason"`
}
