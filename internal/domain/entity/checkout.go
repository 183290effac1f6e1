package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutStatus tracks a payment attempt from gateway order creation to
// fulfilment.
type CheckoutStatus string

const (
	// CheckoutStatusCreated means the snapshot exists but no gateway order yet.
	CheckoutStatusCreated CheckoutStatus = "Created"
	// CheckoutStatusAwaitingPayment means the gateway order exists.
	CheckoutStatusAwaitingPayment CheckoutStatus = "AwaitingPayment"
	// CheckoutStatusPaymentFailed is not terminal: the user may retry the payment.
	CheckoutStatusPaymentFailed CheckoutStatus = "PaymentFailed"
	// CheckoutStatusFulfilled means exactly one order was written for it.
	CheckoutStatusFulfilled CheckoutStatus = "Fulfilled"
	// CheckoutStatusRejected means payment arrived but stock could not be reserved.
	CheckoutStatusRejected CheckoutStatus = "Rejected"
)

// IsTerminal reports whether no further payment can change the checkout.
func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusFulfilled || s == CheckoutStatusRejected
}

// Checkout freezes the cart contents and prices at the moment the user asked
// to pay. Fulfilment turns it into an Order.
type Checkout struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	IdempotencyKey  string          `json:"-"`
	Provider        PaymentProvider `json:"provider"`
	GatewayOrderID  string          `json:"gatewayOrderId,omitempty"`
	PaymentSession  string          `json:"paymentSessionId,omitempty"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Currency        string          `json:"currency"`
	Status          CheckoutStatus  `json:"status"`
	OrderID         *uuid.UUID      `json:"orderId,omitempty"`
	PaymentID       string          `json:"paymentId,omitempty"`
	FailureReason   string          `json:"failureReason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// AmountMinor is the total in the gateway's minor units.
func (c *Checkout) AmountMinor() int64 {
	return ToMinorUnits(c.TotalAmount)
}

// MarkFulfilled links the checkout to the order written for it.
func (c *Checkout) MarkFulfilled(orderID uuid.UUID, paymentID string, at time.Time) {
	c.Status = CheckoutStatusFulfilled
	c.OrderID = &orderID
	c.PaymentID = paymentID
	c.FailureReason = ""
	c.UpdatedAt = at
}

// MarkRejected records that a captured payment could not be honoured.
func (c *Checkout) MarkRejected(paymentID, reason string, at time.Time) {
	c.Status = CheckoutStatusRejected
	c.PaymentID = paymentID
	c.FailureReason = reason
	c.UpdatedAt = at
}

// MarkPaymentFailed records a failed attempt; a later success may still fulfil it.
func (c *Checkout) MarkPaymentFailed(reason string, at time.Time) {
	c.Status = CheckoutStatusPaymentFailed
	c.FailureReason = reason
	c.UpdatedAt = at
}
