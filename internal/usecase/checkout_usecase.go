package usecase

import (
	"context"
	"net/http"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// InitiateCheckoutInput starts a payment for the caller's cart.
type InitiateCheckoutInput struct {
	UserID uuid.UUID
	// Provider is optional; the configured default is used when empty.
	Provider        entity.PaymentProvider
	ShippingAddress entity.ShippingAddress
	// IdempotencyKey makes retries of the same request return the same checkout.
	IdempotencyKey string
}

// InitiateCheckoutOutput is what the client needs to open the gateway's UI.
type InitiateCheckoutOutput struct {
	Checkout         *entity.Checkout
	GatewayOrderID   string
	PaymentSessionID string
	KeyID            string
	AmountMinor      int64
}

// VerifyPaymentInput is the client-side confirmation after paying.
type VerifyPaymentInput struct {
	UserID         uuid.UUID
	Provider       entity.PaymentProvider
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

// WebhookInput is an unparsed gateway notification.
type WebhookInput struct {
	Provider entity.PaymentProvider
	Header   http.Header
	Body     []byte
}

// WebhookOutcome tells the gateway what became of its notification.
type WebhookOutcome string

const (
	WebhookFulfilled     WebhookOutcome = "fulfilled"
	WebhookDuplicate     WebhookOutcome = "duplicate"
	WebhookRejected      WebhookOutcome = "rejected"
	WebhookPaymentFailed WebhookOutcome = "payment_failed"
	WebhookIgnored       WebhookOutcome = "ignored"
)

// WebhookOutput is returned after the outcome is committed.
type WebhookOutput struct {
	Outcome WebhookOutcome
	Order   *entity.Order
}

// CheckoutUsecase turns a cart into a paid order.
type CheckoutUsecase interface {
	InitiateCheckout(ctx context.Context, input *InitiateCheckoutInput) (*InitiateCheckoutOutput, error)
	// VerifyPayment fulfils the checkout from a client confirmation.
	VerifyPayment(ctx context.Context, input *VerifyPaymentInput) (*entity.Order, error)
	// HandleWebhook verifies the raw body and applies the event.
	HandleWebhook(ctx context.Context, input *WebhookInput) (*WebhookOutput, error)
}
