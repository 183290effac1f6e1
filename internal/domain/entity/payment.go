package entity

import (
	"time"

	"github.com/google/uuid"
)

// PaymentProvider names a payment gateway.
type PaymentProvider string

const (
	PaymentProviderRazorpay PaymentProvider = "razorpay"
	PaymentProviderCashfree PaymentProvider = "cashfree"
)

// IsValid checks if the provider is a known value.
func (p PaymentProvider) IsValid() bool {
	return p == PaymentProviderRazorpay || p == PaymentProviderCashfree
}

// PaymentEventType classifies a verified gateway notification.
type PaymentEventType string

const (
	PaymentEventSucceeded PaymentEventType = "payment.succeeded"
	PaymentEventFailed    PaymentEventType = "payment.failed"
	// PaymentEventIgnored covers notifications that need no action.
	PaymentEventIgnored PaymentEventType = "ignored"
)

// PaymentEvent is a verified, parsed payment notification from a gateway,
// either a client-side verify call or a webhook delivery.
type PaymentEvent struct {
	Provider PaymentProvider
	// EventID is the idempotency key within the provider. For successful
	// payments it is the gateway payment id, so a verify call and a webhook
	// for the same payment collapse into one event.
	EventID        string
	Type           PaymentEventType
	GatewayOrderID string
	// CheckoutID is set when the gateway echoes our reference back.
	CheckoutID  *uuid.UUID
	PaymentID   string
	AmountMinor int64
	Currency    string
	Method      string
	PaidAt      time.Time
	Reason      string
}
