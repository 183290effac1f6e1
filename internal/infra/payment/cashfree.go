package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/config"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"
	"storefront/internal/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

const (
	cashfreeSignatureHeader = "x-webhook-signature"
	cashfreeTimestampHeader = "x-webhook-timestamp"

	defaultCashfreeAPIVersion = "2023-08-01"
	defaultCashfreeTimeout    = 10 * time.Second
	// maxErrorBody caps how much of a failed response ends up in an error.
	maxErrorBody = 1 << 10
)

// Cashfree webhook types.
const (
	cashfreePaymentSuccess     = "PAYMENT_SUCCESS_WEBHOOK"
	cashfreePaymentFailed      = "PAYMENT_FAILED_WEBHOOK"
	cashfreePaymentUserDropped = "PAYMENT_USER_DROPPED_WEBHOOK"
)

// apiError is a non-2xx answer from the Cashfree API.
type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("cashfree returned status %d: %s", e.StatusCode, e.Body)
}

// isClientError keeps 4xx answers from tripping the breaker.
func isClientError(err error) bool {
	var apiErr *apiError

	return errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
}

type cashfreeGateway struct {
	appID      string
	secretKey  string
	baseURL    string
	apiVersion string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger
	now        func() time.Time
}

// NewCashfreeGateway builds the Cashfree gateway. Every API call goes through
// a circuit breaker so an outage fails checkouts fast.
func NewCashfreeGateway(cfg *config.CashfreeConfig, logger *slog.Logger) (service.PaymentGateway, error) {
	if cfg == nil || cfg.AppID == "" || cfg.SecretKey == "" {
		return nil, errors.New("cashfree app id and secret key are required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("cashfree base url is required")
	}

	return newCashfreeGateway(cfg, logger), nil
}

func newCashfreeGateway(cfg *config.CashfreeConfig, logger *slog.Logger) *cashfreeGateway {
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultCashfreeAPIVersion
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultCashfreeTimeout
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "cashfree",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("[Cashfree] Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &cashfreeGateway{
		appID:      cfg.AppID,
		secretKey:  cfg.SecretKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiVersion: apiVersion,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		logger:     logger,
		now:        time.Now,
	}
}

func (g *cashfreeGateway) Provider() entity.PaymentProvider {
	return entity.PaymentProviderCashfree
}

type cashfreeCustomer struct {
	CustomerID    string `json:"customer_id"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name,omitempty"`
}

type cashfreeOrderRequest struct {
	OrderID         string            `json:"order_id"`
	OrderAmount     json.Number       `json:"order_amount"`
	OrderCurrency   string            `json:"order_currency"`
	CustomerDetails cashfreeCustomer  `json:"customer_details"`
	OrderTags       map[string]string `json:"order_tags,omitempty"`
}

type cashfreeOrderResponse struct {
	CFOrderID        flexibleID `json:"cf_order_id"`
	OrderID          string     `json:"order_id"`
	PaymentSessionID string     `json:"payment_session_id"`
	OrderStatus      string     `json:"order_status"`
}

type cashfreePayment struct {
	CFPaymentID     flexibleID      `json:"cf_payment_id"`
	OrderID         string          `json:"order_id"`
	PaymentStatus   string          `json:"payment_status"`
	PaymentAmount   decimal.Decimal `json:"payment_amount"`
	PaymentCurrency string          `json:"payment_currency"`
	PaymentMessage  string          `json:"payment_message"`
	PaymentTime     string          `json:"payment_time"`
	PaymentGroup    string          `json:"payment_group"`
}

// flexibleID accepts ids that Cashfree sends either as numbers or strings.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexibleID(s)

	return nil
}

// PublicKey is empty: the Cashfree SDK only needs the payment session id.
func (g *cashfreeGateway) PublicKey() string {
	return ""
}

func (g *cashfreeGateway) CreateOrder(ctx context.Context, req service.GatewayOrderRequest) (*service.GatewayOrder, error) {
	checkoutID := req.CheckoutID.String()
	payload := cashfreeOrderRequest{
		OrderID:       checkoutID,
		OrderAmount:   json.Number(entity.FromMinorUnits(req.AmountMinor).StringFixed(2)),
		OrderCurrency: req.Currency,
		CustomerDetails: cashfreeCustomer{
			CustomerID:    req.Customer.ID.String(),
			CustomerEmail: req.Customer.Email,
			CustomerPhone: req.Customer.Phone,
			CustomerName:  req.Customer.Name,
		},
		OrderTags: map[string]string{"checkout_id": checkoutID},
	}

	var resp cashfreeOrderResponse
	if err := g.do(ctx, http.MethodPost, "/orders", payload, &resp); err != nil {
		return nil, errors.Wrap(err, "cashfree create order")
	}
	if resp.PaymentSessionID == "" {
		return nil, errors.New("cashfree create order: response has no payment session id")
	}

	orderID := resp.OrderID
	if orderID == "" {
		orderID = checkoutID
	}

	g.logger.Info("[Cashfree] Order created",
		slog.String("checkout_id", checkoutID),
		slog.String("cf_order_id", string(resp.CFOrderID)),
		slog.Int64("amount", req.AmountMinor),
	)

	return &service.GatewayOrder{
		GatewayOrderID:   orderID,
		PaymentSessionID: resp.PaymentSessionID,
	}, nil
}

// VerifyPayment asks Cashfree for the payment instead of checking a client
// signature; the checkout SDK does not return one.
func (g *cashfreeGateway) VerifyPayment(ctx context.Context, v service.PaymentVerification) (*entity.PaymentEvent, error) {
	if v.GatewayOrderID == "" || v.PaymentID == "" {
		return nil, errors.WithStack(service.ErrInvalidSignature)
	}

	path := fmt.Sprintf("/orders/%s/payments/%s", url.PathEscape(v.GatewayOrderID), url.PathEscape(v.PaymentID))

	var payment cashfreePayment
	if err := g.do(ctx, http.MethodGet, path, nil, &payment); err != nil {
		if isClientError(err) {
			return nil, errors.Wrap(service.ErrInvalidSignature, err.Error())
		}

		return nil, errors.Wrap(err, "cashfree fetch payment")
	}
	if payment.OrderID != "" && payment.OrderID != v.GatewayOrderID {
		return nil, errors.Wrap(service.ErrInvalidSignature, "payment belongs to another order")
	}
	if payment.PaymentStatus != "SUCCESS" {
		return nil, errors.Wrapf(service.ErrInvalidSignature, "payment status is %s", payment.PaymentStatus)
	}

	event := g.eventFromPayment(v.GatewayOrderID, payment)
	event.Type = entity.PaymentEventSucceeded
	event.EventID = event.PaymentID

	return event, nil
}

// VerifyWebhook checks base64(HMAC-SHA256(timestamp + body, secret key)).
func (g *cashfreeGateway) VerifyWebhook(header http.Header, body []byte) error {
	signature := header.Get(cashfreeSignatureHeader)
	timestamp := header.Get(cashfreeTimestampHeader)
	if signature == "" || timestamp == "" {
		return errors.WithStack(service.ErrInvalidSignature)
	}
	if !verifyBase64(g.secretKey, signature, []byte(timestamp), body) {
		return errors.WithStack(service.ErrInvalidSignature)
	}

	return nil
}

type cashfreeWebhook struct {
	Type string `json:"type"`
	Data struct {
		Order struct {
			OrderID     string          `json:"order_id"`
			OrderAmount decimal.Decimal `json:"order_amount"`
		} `json:"order"`
		Payment cashfreePayment `json:"payment"`
	} `json:"data"`
}

func (g *cashfreeGateway) ParseEvent(body []byte) (*entity.PaymentEvent, error) {
	var hook cashfreeWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		return nil, errors.Wrap(service.ErrMalformedEvent, err.Error())
	}

	event := g.eventFromPayment(hook.Data.Order.OrderID, hook.Data.Payment)

	switch hook.Type {
	case cashfreePaymentSuccess:
		event.Type = entity.PaymentEventSucceeded
		event.EventID = event.PaymentID
	case cashfreePaymentFailed, cashfreePaymentUserDropped:
		event.Type = entity.PaymentEventFailed
		event.EventID = "failed:" + event.PaymentID
		event.Reason = hook.Data.Payment.PaymentMessage
		if event.Reason == "" {
			event.Reason = strings.ToLower(hook.Data.Payment.PaymentStatus)
		}
	default:
		event.Type = entity.PaymentEventIgnored
		event.EventID = hook.Type + ":" + event.PaymentID

		return event, nil
	}

	if event.PaymentID == "" || event.GatewayOrderID == "" {
		return nil, errors.Wrapf(service.ErrMalformedEvent, "cashfree %s without payment or order id", hook.Type)
	}

	return event, nil
}

func (g *cashfreeGateway) eventFromPayment(orderID string, payment cashfreePayment) *entity.PaymentEvent {
	event := &entity.PaymentEvent{
		Provider:       entity.PaymentProviderCashfree,
		GatewayOrderID: orderID,
		PaymentID:      string(payment.CFPaymentID),
		AmountMinor:    entity.ToMinorUnits(payment.PaymentAmount),
		Currency:       payment.PaymentCurrency,
		Method:         payment.PaymentGroup,
		PaidAt:         g.now(),
	}
	if paidAt, err := time.Parse(time.RFC3339, payment.PaymentTime); err == nil {
		event.PaidAt = paidAt.UTC()
	}
	// Cashfree orders are created with the checkout id as their order id.
	if id, err := uuid.Parse(orderID); err == nil {
		event.CheckoutID = &id
	}

	return event
}

type cashfreeRefundRequest struct {
	RefundAmount json.Number `json:"refund_amount"`
	RefundID     string      `json:"refund_id"`
	RefundNote   string      `json:"refund_note,omitempty"`
}

func (g *cashfreeGateway) Refund(ctx context.Context, gatewayOrderID, paymentID string, amountMinor int64, reference string) error {
	if gatewayOrderID == "" {
		return errors.New("cashfree refund: gateway order id is required")
	}

	payload := cashfreeRefundRequest{
		RefundAmount: json.Number(entity.FromMinorUnits(amountMinor).StringFixed(2)),
		RefundID:     truncate("refund_"+reference, 40),
		RefundNote:   "stock unavailable",
	}
	path := fmt.Sprintf("/orders/%s/refunds", url.PathEscape(gatewayOrderID))

	err := g.do(ctx, http.MethodPost, path, payload, nil)
	if err != nil {
		var apiErr *apiError
		// A retried refund with the same refund_id is rejected as a conflict.
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			g.logger.Info("[Cashfree] Refund already issued", slog.String("order_id", gatewayOrderID))

			return nil
		}

		return errors.Wrapf(err, "cashfree refund order %s", gatewayOrderID)
	}

	g.logger.Info("[Cashfree] Refund issued",
		slog.String("order_id", gatewayOrderID),
		slog.String("payment_id", paymentID),
		slog.Int64("amount", amountMinor),
	)

	return nil
}

// do sends a JSON request through the breaker and decodes a 2xx answer into out.
func (g *cashfreeGateway) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.WithStack(err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", g.apiVersion)
	req.Header.Set("x-client-id", g.appID)
	req.Header.Set("x-client-secret", g.secretKey)

	respBody, err := g.breaker.Execute(func() ([]byte, error) {
		resp, err := g.httpClient.Do(req)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if len(data) > maxErrorBody {
				data = data[:maxErrorBody]
			}

			return nil, &apiError{StatusCode: resp.StatusCode, Body: string(data)}
		}

		return data, nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if out == nil {
		return nil
	}

	return errors.WithStack(json.Unmarshal(respBody, out))
}
