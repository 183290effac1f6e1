package payment

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storefront/config"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"
	"storefront/internal/errors"

	"github.com/google/uuid"
	rzpsdk "github.com/razorpay/razorpay-go"
)

const razorpaySignatureHeader = "X-Razorpay-Signature"

// Razorpay webhook event names.
const (
	razorpayPaymentCaptured = "payment.captured"
	razorpayOrderPaid       = "order.paid"
	razorpayPaymentFailed   = "payment.failed"
)

// razorpayOrders and razorpayPayments are the parts of the SDK client we call.
type razorpayOrders interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type razorpayPayments interface {
	Refund(paymentID string, amount int, data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type razorpayGateway struct {
	keyID         string
	keySecret     string
	webhookSecret string
	orders        razorpayOrders
	payments      razorpayPayments
	logger        *slog.Logger
	now           func() time.Time
}

// NewRazorpayGateway builds the Razorpay gateway from its key pair.
func NewRazorpayGateway(cfg *config.RazorpayConfig, logger *slog.Logger) (service.PaymentGateway, error) {
	if cfg == nil || cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, errors.New("razorpay key id and key secret are required")
	}

	client := rzpsdk.NewClient(cfg.KeyID, cfg.KeySecret)

	return newRazorpayGateway(cfg, client.Order, client.Payment, logger), nil
}

func newRazorpayGateway(cfg *config.RazorpayConfig, orders razorpayOrders, payments razorpayPayments, logger *slog.Logger) *razorpayGateway {
	return &razorpayGateway{
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		orders:        orders,
		payments:      payments,
		logger:        logger,
		now:           time.Now,
	}
}

func (g *razorpayGateway) Provider() entity.PaymentProvider {
	return entity.PaymentProviderRazorpay
}

func (g *razorpayGateway) PublicKey() string {
	return g.keyID
}

func (g *razorpayGateway) CreateOrder(ctx context.Context, req service.GatewayOrderRequest) (*service.GatewayOrder, error) {
	checkoutID := req.CheckoutID.String()
	data := map[string]interface{}{
		"amount":   req.AmountMinor,
		"currency": req.Currency,
		"receipt":  checkoutID,
		"notes": map[string]interface{}{
			"checkout_id": checkoutID,
		},
	}

	body, err := callWithContext(ctx, func() (map[string]interface{}, error) {
		return g.orders.Create(data, nil)
	})
	if err != nil {
		return nil, errors.Wrap(err, "razorpay create order")
	}

	orderID, _ := body["id"].(string)
	if orderID == "" {
		return nil, errors.New("razorpay create order: response has no order id")
	}

	g.logger.Info("[Razorpay] Order created",
		slog.String("checkout_id", checkoutID),
		slog.String("gateway_order_id", orderID),
		slog.Int64("amount", req.AmountMinor),
	)

	return &service.GatewayOrder{GatewayOrderID: orderID}, nil
}

// VerifyPayment checks the checkout handler signature, which is
// hex(HMAC-SHA256(order_id + "|" + payment_id, key_secret)).
func (g *razorpayGateway) VerifyPayment(_ context.Context, v service.PaymentVerification) (*entity.PaymentEvent, error) {
	if v.GatewayOrderID == "" || v.PaymentID == "" || v.Signature == "" {
		return nil, errors.WithStack(service.ErrInvalidSignature)
	}
	if !verifyHex(g.keySecret, v.Signature, []byte(v.GatewayOrderID+"|"+v.PaymentID)) {
		return nil, errors.WithStack(service.ErrInvalidSignature)
	}

	return &entity.PaymentEvent{
		Provider:       entity.PaymentProviderRazorpay,
		EventID:        v.PaymentID,
		Type:           entity.PaymentEventSucceeded,
		GatewayOrderID: v.GatewayOrderID,
		PaymentID:      v.PaymentID,
		PaidAt:         g.now(),
	}, nil
}

func (g *razorpayGateway) VerifyWebhook(header http.Header, body []byte) error {
	if g.webhookSecret == "" {
		return errors.New("razorpay webhook secret is not configured")
	}

	signature := header.Get(razorpaySignatureHeader)
	if signature == "" || !verifyHex(g.webhookSecret, signature, body) {
		return errors.WithStack(service.ErrInvalidSignature)
	}

	return nil
}

type razorpayWebhook struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity razorpayPayment `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity struct {
				ID      string `json:"id"`
				Receipt string `json:"receipt"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

type razorpayPayment struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"order_id"`
	Amount           int64           `json:"amount"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	Method           string          `json:"method"`
	Notes            json.RawMessage `json:"notes"`
	ErrorDescription string          `json:"error_description"`
	CreatedAt        int64           `json:"created_at"`
}

// checkoutID reads notes.checkout_id. Razorpay sends an empty array instead
// of an object when there are no notes.
func (p razorpayPayment) checkoutID() string {
	var notes map[string]any
	if err := json.Unmarshal(p.Notes, &notes); err != nil {
		return ""
	}
	id, _ := notes["checkout_id"].(string)

	return id
}

func (g *razorpayGateway) ParseEvent(body []byte) (*entity.PaymentEvent, error) {
	var hook razorpayWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		return nil, errors.Wrap(service.ErrMalformedEvent, err.Error())
	}

	payment := hook.Payload.Payment.Entity
	event := &entity.PaymentEvent{
		Provider:       entity.PaymentProviderRazorpay,
		GatewayOrderID: payment.OrderID,
		PaymentID:      payment.ID,
		AmountMinor:    payment.Amount,
		Currency:       payment.Currency,
		Method:         payment.Method,
	}
	if event.GatewayOrderID == "" {
		event.GatewayOrderID = hook.Payload.Order.Entity.ID
	}
	if payment.CreatedAt > 0 {
		event.PaidAt = time.Unix(payment.CreatedAt, 0).UTC()
	} else {
		event.PaidAt = g.now()
	}

	ref := payment.checkoutID()
	if ref == "" {
		ref = hook.Payload.Order.Entity.Receipt
	}
	if id, err := uuid.Parse(ref); err == nil {
		event.CheckoutID = &id
	}

	switch hook.Event {
	case razorpayPaymentCaptured, razorpayOrderPaid:
		event.Type = entity.PaymentEventSucceeded
		event.EventID = payment.ID
	case razorpayPaymentFailed:
		event.Type = entity.PaymentEventFailed
		event.EventID = "failed:" + payment.ID
		event.Reason = payment.ErrorDescription
	default:
		event.Type = entity.PaymentEventIgnored
		event.EventID = hook.Event + ":" + payment.ID

		return event, nil
	}

	if payment.ID == "" || event.GatewayOrderID == "" {
		return nil, errors.Wrapf(service.ErrMalformedEvent, "razorpay %s without payment or order id", hook.Event)
	}

	return event, nil
}

func (g *razorpayGateway) Refund(ctx context.Context, gatewayOrderID, paymentID string, amountMinor int64, reference string) error {
	if paymentID == "" {
		return errors.New("razorpay refund: payment id is required")
	}

	data := map[string]interface{}{
		"receipt": truncate(reference, 40),
		"notes": map[string]interface{}{
			"gateway_order_id": gatewayOrderID,
			"reference":        reference,
		},
	}

	_, err := callWithContext(ctx, func() (map[string]interface{}, error) {
		return g.payments.Refund(paymentID, int(amountMinor), data, nil)
	})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "fully refunded") {
			g.logger.Info("[Razorpay] Payment already refunded", slog.String("payment_id", paymentID))

			return nil
		}

		return errors.Wrapf(err, "razorpay refund payment %s", paymentID)
	}

	g.logger.Info("[Razorpay] Refund issued",
		slog.String("payment_id", paymentID),
		slog.Int64("amount", amountMinor),
	)

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}
