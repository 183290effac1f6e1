package payment

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"storefront/config"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRazorpayOrders struct {
	lastData map[string]interface{}
	resp     map[string]interface{}
	err      error
}

func (f *fakeRazorpayOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.lastData = data

	return f.resp, f.err
}

type fakeRazorpayPayments struct {
	paymentID string
	amount    int
	err       error
}

func (f *fakeRazorpayPayments) Refund(paymentID string, amount int, _ map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.paymentID = paymentID
	f.amount = amount

	return map[string]interface{}{"id": "rfnd_1"}, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRazorpay() (*razorpayGateway, *fakeRazorpayOrders, *fakeRazorpayPayments) {
	orders := &fakeRazorpayOrders{resp: map[string]interface{}{"id": "order_abc"}}
	payments := &fakeRazorpayPayments{}
	cfg := &config.RazorpayConfig{KeyID: "rzp_test_key", KeySecret: "key_secret", WebhookSecret: "hook_secret"}

	return newRazorpayGateway(cfg, orders, payments, discardLogger()), orders, payments
}

func hexSignature(secret string, parts ...string) string {
	bs := make([][]byte, 0, len(parts))
	for _, p := range parts {
		bs = append(bs, []byte(p))
	}

	return hex.EncodeToString(hmacSHA256(secret, bs...))
}

func TestRazorpay_NewRequiresKeys(t *testing.T) {
	_, err := NewRazorpayGateway(&config.RazorpayConfig{KeyID: "id"}, discardLogger())
	assert.Error(t, err)
}

func TestRazorpay_CreateOrder(t *testing.T) {
	gateway, orders, _ := newTestRazorpay()
	checkoutID := uuid.New()

	order, err := gateway.CreateOrder(context.Background(), service.GatewayOrderRequest{
		CheckoutID:  checkoutID,
		AmountMinor: 99800,
		Currency:    "INR",
	})
	require.NoError(t, err)

	assert.Equal(t, "order_abc", order.GatewayOrderID)
	assert.Equal(t, "rzp_test_key", gateway.PublicKey())
	assert.Equal(t, int64(99800), orders.lastData["amount"])
	assert.Equal(t, "INR", orders.lastData["currency"])
	assert.Equal(t, checkoutID.String(), orders.lastData["receipt"])
}

func TestRazorpay_CreateOrderError(t *testing.T) {
	gateway, orders, _ := newTestRazorpay()
	orders.err = fmt.Errorf("boom")

	_, err := gateway.CreateOrder(context.Background(), service.GatewayOrderRequest{CheckoutID: uuid.New(), AmountMinor: 100, Currency: "INR"})
	assert.Error(t, err)

	orders.err = nil
	orders.resp = map[string]interface{}{}
	_, err = gateway.CreateOrder(context.Background(), service.GatewayOrderRequest{CheckoutID: uuid.New(), AmountMinor: 100, Currency: "INR"})
	assert.Error(t, err)
}

func TestRazorpay_VerifyPayment(t *testing.T) {
	gateway, _, _ := newTestRazorpay()
	sig := hexSignature("key_secret", "order_abc|pay_123")

	event, err := gateway.VerifyPayment(context.Background(), service.PaymentVerification{
		GatewayOrderID: "order_abc",
		PaymentID:      "pay_123",
		Signature:      sig,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentEventSucceeded, event.Type)
	assert.Equal(t, "pay_123", event.EventID)
	assert.Equal(t, "order_abc", event.GatewayOrderID)
	assert.Zero(t, event.AmountMinor)
}

func TestRazorpay_VerifyPaymentRejectsTamperedSignature(t *testing.T) {
	gateway, _, _ := newTestRazorpay()
	sig := []byte(hexSignature("key_secret", "order_abc|pay_123"))
	if sig[0] == 'a' {
		sig[0] = 'b'
	} else {
		sig[0] = 'a'
	}

	tests := []service.PaymentVerification{
		{GatewayOrderID: "order_abc", PaymentID: "pay_123", Signature: string(sig)},
		{GatewayOrderID: "order_abc", PaymentID: "pay_999", Signature: hexSignature("key_secret", "order_abc|pay_123")},
		{GatewayOrderID: "order_abc", PaymentID: "pay_123", Signature: "not-hex"},
		{GatewayOrderID: "order_abc", PaymentID: "pay_123"},
	}

	for i, v := range tests {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			_, err := gateway.VerifyPayment(context.Background(), v)
			assert.ErrorIs(t, err, service.ErrInvalidSignature)
		})
	}
}

func razorpayWebhookBody(event, paymentID, orderID, checkoutID string, amount int64) []byte {
	return []byte(fmt.Sprintf(`{"event":%q,"payload":{"payment":{"entity":{"id":%q,"order_id":%q,"amount":%d,"currency":"INR","method":"upi","notes":{"checkout_id":%q},"error_description":"Payment declined","created_at":1700000000}}}}`,
		event, paymentID, orderID, amount, checkoutID))
}

func TestRazorpay_VerifyWebhook(t *testing.T) {
	gateway, _, _ := newTestRazorpay()
	body := razorpayWebhookBody("payment.captured", "pay_1", "order_1", uuid.NewString(), 500)

	header := http.Header{}
	header.Set(razorpaySignatureHeader, hexSignature("hook_secret", string(body)))
	assert.NoError(t, gateway.VerifyWebhook(header, body))

	tampered := append([]byte{}, body...)
	tampered[len(tampered)-3] = '9'
	assert.ErrorIs(t, gateway.VerifyWebhook(header, tampered), service.ErrInvalidSignature)

	assert.ErrorIs(t, gateway.VerifyWebhook(http.Header{}, body), service.ErrInvalidSignature)
}

func TestRazorpay_ParseEvent(t *testing.T) {
	gateway, _, _ := newTestRazorpay()
	checkoutID := uuid.New()

	t.Run("captured", func(t *testing.T) {
		event, err := gateway.ParseEvent(razorpayWebhookBody("payment.captured", "pay_1", "order_1", checkoutID.String(), 99800))
		require.NoError(t, err)
		assert.Equal(t, entity.PaymentEventSucceeded, event.Type)
		assert.Equal(t, "pay_1", event.EventID)
		assert.Equal(t, "order_1", event.GatewayOrderID)
		assert.Equal(t, int64(99800), event.AmountMinor)
		assert.Equal(t, "upi", event.Method)
		require.NotNil(t, event.CheckoutID)
		assert.Equal(t, checkoutID, *event.CheckoutID)
		assert.Equal(t, time.Unix(1700000000, 0).UTC(), event.PaidAt)
	})

	t.Run("order paid shares the payment event id", func(t *testing.T) {
		event, err := gateway.ParseEvent(razorpayWebhookBody("order.paid", "pay_1", "order_1", checkoutID.String(), 99800))
		require.NoError(t, err)
		assert.Equal(t, "pay_1", event.EventID)
	})

	t.Run("failed", func(t *testing.T) {
		event, err := gateway.ParseEvent(razorpayWebhookBody("payment.failed", "pay_2", "order_1", checkoutID.String(), 99800))
		require.NoError(t, err)
		assert.Equal(t, entity.PaymentEventFailed, event.Type)
		assert.Equal(t, "failed:pay_2", event.EventID)
		assert.Equal(t, "Payment declined", event.Reason)
	})

	t.Run("other events are ignored", func(t *testing.T) {
		event, err := gateway.ParseEvent(razorpayWebhookBody("refund.created", "pay_1", "order_1", checkoutID.String(), 1))
		require.NoError(t, err)
		assert.Equal(t, entity.PaymentEventIgnored, event.Type)
	})

	t.Run("empty notes array", func(t *testing.T) {
		body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_3","order_id":"order_3","amount":100,"currency":"INR","notes":[]}}}}`)
		event, err := gateway.ParseEvent(body)
		require.NoError(t, err)
		assert.Nil(t, event.CheckoutID)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := gateway.ParseEvent([]byte(`{"event":`))
		assert.ErrorIs(t, err, service.ErrMalformedEvent)

		_, err = gateway.ParseEvent([]byte(`{"event":"payment.captured","payload":{}}`))
		assert.ErrorIs(t, err, service.ErrMalformedEvent)
	})
}

func TestRazorpay_Refund(t *testing.T) {
	gateway, _, payments := newTestRazorpay()

	require.NoError(t, gateway.Refund(context.Background(), "order_1", "pay_1", 99800, uuid.NewString()))
	assert.Equal(t, "pay_1", payments.paymentID)
	assert.Equal(t, 99800, payments.amount)

	payments.err = fmt.Errorf("The payment has been fully refunded already")
	assert.NoError(t, gateway.Refund(context.Background(), "order_1", "pay_1", 99800, "ref"))

	payments.err = fmt.Errorf("gateway down")
	assert.Error(t, gateway.Refund(context.Background(), "order_1", "pay_1", 99800, "ref"))
}

func TestCallWithContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	block := make(chan struct{})
	defer close(block)

	_, err := callWithContext(ctx, func() (int, error) {
		<-block

		return 1, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
