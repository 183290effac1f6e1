package service

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrInvalidSignature is returned when a signature does not match the payload.
	ErrInvalidSignature = errors.New("invalid payment signature")
	// ErrMalformedEvent is returned when a verified payload cannot be parsed.
	ErrMalformedEvent = errors.New("malformed payment event")
	// ErrUnknownProvider is returned by the registry for unconfigured providers.
	ErrUnknownProvider = errors.New("unknown payment provider")
)

// GatewayCustomer is passed to gateways that require customer details.
type GatewayCustomer struct {
	ID    uuid.UUID
	Email string
	Name  string
	Phone string
}

// GatewayOrderRequest asks a gateway to create an order for a checkout.
type GatewayOrderRequest struct {
	CheckoutID  uuid.UUID
	AmountMinor int64
	Currency    string
	Customer    GatewayCustomer
}

// GatewayOrder is the gateway's answer to an order request.
type GatewayOrder struct {
	GatewayOrderID string
	// PaymentSessionID is set by gateways that hand the client a session token.
	PaymentSessionID string
}

// PaymentVerification is the client-side confirmation sent after checkout.
type PaymentVerification struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

// PaymentGateway is implemented once per payment provider. Business logic
// only ever sees verified, parsed PaymentEvents.
type PaymentGateway interface {
	Provider() entity.PaymentProvider

	// PublicKey is the key the client SDK needs, empty when there is none.
	PublicKey() string

	CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error)

	// VerifyPayment checks a client verification and turns it into a success
	// event. AmountMinor is left zero when the gateway does not sign it.
	VerifyPayment(ctx context.Context, v PaymentVerification) (*entity.PaymentEvent, error)

	// VerifyWebhook checks the signature over the raw body bytes.
	VerifyWebhook(header http.Header, body []byte) error

	// ParseEvent parses a body that already passed VerifyWebhook.
	ParseEvent(body []byte) (*entity.PaymentEvent, error)

	// Refund returns a captured payment in full.
	Refund(ctx context.Context, gatewayOrderID, paymentID string, amountMinor int64, reference string) error
}

// GatewayRegistry selects a gateway by provider name.
type GatewayRegistry interface {
	Get(provider entity.PaymentProvider) (PaymentGateway, error)
	Default() entity.PaymentProvider
}
