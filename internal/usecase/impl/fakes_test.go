package impl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"
	"storefront/internal/errors"
)

const (
	validSignature  = "valid"
	signatureHeader = "X-Test-Signature"
)

type gatewayOrder struct {
	amountMinor int64
	currency    string
}

type refundCall struct {
	gatewayOrderID string
	paymentID      string
	amountMinor    int64
	reference      string
}

// fakeGateway remembers the orders it opened so verification can report
// the amount the way a real gateway does.
type fakeGateway struct {
	mu         sync.Mutex
	provider   entity.PaymentProvider
	orders     map[string]gatewayOrder
	created    int
	refunds    []refundCall
	createErr  error
	refundErr  error
	hideAmount bool
}

func newFakeGateway(provider entity.PaymentProvider) *fakeGateway {
	return &fakeGateway{provider: provider, orders: map[string]gatewayOrder{}}
}

func (g *fakeGateway) Provider() entity.PaymentProvider { return g.provider }

func (g *fakeGateway) PublicKey() string { return "key_test" }

func (g *fakeGateway) CreateOrder(_ context.Context, req service.GatewayOrderRequest) (*service.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created++
	id := fmt.Sprintf("gw_order_%d", g.created)
	g.orders[id] = gatewayOrder{amountMinor: req.AmountMinor, currency: req.Currency}

	return &service.GatewayOrder{GatewayOrderID: id, PaymentSessionID: "session_" + id}, nil
}

func (g *fakeGateway) VerifyPayment(_ context.Context, v service.PaymentVerification) (*entity.PaymentEvent, error) {
	if v.Signature != validSignature {
		return nil, errors.Wrap(service.ErrInvalidSignature, "signature mismatch")
	}

	g.mu.Lock()
	order, ok := g.orders[v.GatewayOrderID]
	hide := g.hideAmount
	g.mu.Unlock()

	event := &entity.PaymentEvent{
		Provider:       g.provider,
		EventID:        v.PaymentID,
		Type:           entity.PaymentEventSucceeded,
		GatewayOrderID: v.GatewayOrderID,
		PaymentID:      v.PaymentID,
		Method:         "card",
	}
	if ok && !hide {
		event.AmountMinor = order.amountMinor
		event.Currency = order.currency
	}

	return event, nil
}

func (g *fakeGateway) VerifyWebhook(header http.Header, _ []byte) error {
	if header.Get(signatureHeader) != validSignature {
		return errors.Wrap(service.ErrInvalidSignature, "webhook signature mismatch")
	}

	return nil
}

type fakeWebhook struct {
	Type           entity.PaymentEventType `json:"type"`
	GatewayOrderID string                  `json:"gatewayOrderId"`
	PaymentID      string                  `json:"paymentId"`
	AmountMinor    int64                   `json:"amountMinor"`
	Reason         string                  `json:"reason"`
}

func (g *fakeGateway) ParseEvent(body []byte) (*entity.PaymentEvent, error) {
	var hook fakeWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		return nil, errors.Wrap(service.ErrMalformedEvent, err.Error())
	}

	eventID := hook.PaymentID
	if hook.Type == entity.PaymentEventFailed {
		eventID = "failed_" + hook.PaymentID
	}

	return &entity.PaymentEvent{
		Provider:       g.provider,
		EventID:        eventID,
		Type:           hook.Type,
		GatewayOrderID: hook.GatewayOrderID,
		PaymentID:      hook.PaymentID,
		AmountMinor:    hook.AmountMinor,
		Reason:         hook.Reason,
	}, nil
}

func (g *fakeGateway) Refund(_ context.Context, gatewayOrderID, paymentID string, amountMinor int64, reference string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.refundErr != nil {
		return g.refundErr
	}
	g.refunds = append(g.refunds, refundCall{
		gatewayOrderID: gatewayOrderID,
		paymentID:      paymentID,
		amountMinor:    amountMinor,
		reference:      reference,
	})

	return nil
}

func (g *fakeGateway) refundCalls() []refundCall {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]refundCall(nil), g.refunds...)
}

func (g *fakeGateway) createdCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.created
}

func webhookBody(hook fakeWebhook) []byte {
	body, _ := json.Marshal(hook)

	return body
}

// stubTextGen returns a fixed completion.
type stubTextGen struct {
	text  string
	err   error
	calls atomic.Int32
}

func (g *stubTextGen) Complete(_ context.Context, _ string, _ int) (string, error) {
	g.calls.Add(1)
	if g.err != nil {
		return "", g.err
	}

	return g.text, nil
}
