package handler

import (
	"log/slog"
	"net/http"

	"storefront/internal/delivery/api/middleware"
	"storefront/internal/delivery/api/response"
	"storefront/internal/domain/entity"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// HeaderIdempotencyKey lets a client retry checkout creation safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// OrderHandlerParams holds dependencies for OrderHandler, injected by Fx.
type OrderHandlerParams struct {
	fx.In

	CheckoutUC usecase.CheckoutUsecase
	OrderUC    usecase.OrderUsecase
	Logger     *slog.Logger
}

// OrderHandler serves checkout creation, payment verification and orders.
type OrderHandler struct {
	checkoutUC usecase.CheckoutUsecase
	orderUC    usecase.OrderUsecase
	logger     *slog.Logger
}

// NewOrderHandler is the constructor for OrderHandler
func NewOrderHandler(params OrderHandlerParams) *OrderHandler {
	return &OrderHandler{
		checkoutUC: params.CheckoutUC,
		orderUC:    params.OrderUC,
		logger:     params.Logger,
	}
}

// ShippingAddressRequest is frozen onto the checkout and the order.
type ShippingAddressRequest struct {
	FullName   string `json:"fullName" validate:"required,max=200"`
	Address    string `json:"address" validate:"required,max=500"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"required,min=6,max=20"`
}

// CreateOrderRequest starts checkout for the caller's cart.
type CreateOrderRequest struct {
	Provider        string                 `json:"provider" validate:"omitempty,oneof=razorpay cashfree"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress"`
}

// CreateOrderResponse is what the client needs to open the gateway.
type CreateOrderResponse struct {
	CheckoutID       uuid.UUID       `json:"checkoutId"`
	Provider         string          `json:"provider"`
	GatewayOrderID   string          `json:"gatewayOrderId"`
	PaymentSessionID string          `json:"paymentSessionId,omitempty"`
	KeyID            string          `json:"keyId,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	AmountMinor      int64           `json:"amountMinor"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
}

// VerifyPaymentRequest is the client confirmation after paying.
type VerifyPaymentRequest struct {
	Provider       string `json:"provider" validate:"omitempty,oneof=razorpay cashfree"`
	GatewayOrderID string `json:"gatewayOrderId" validate:"required"`
	PaymentID      string `json:"paymentId" validate:"required"`
	Signature      string `json:"signature"`
}

// UpdateStatusRequest carries the target status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Processing Shipped Delivered Cancelled"`
}

// CreateOrder handles checkout creation
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req CreateOrderRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	addr := req.ShippingAddress
	output, err := h.checkoutUC.InitiateCheckout(c.Request().Context(), &usecase.InitiateCheckoutInput{
		UserID:   userID,
		Provider: entity.PaymentProvider(req.Provider),
		ShippingAddress: entity.ShippingAddress{
			FullName:   addr.FullName,
			Address:    addr.Address,
			City:       addr.City,
			PostalCode: addr.PostalCode,
			Country:    addr.Country,
			Phone:      addr.Phone,
		},
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, CreateOrderResponse{
		CheckoutID:       output.Checkout.ID,
		Provider:         string(output.Checkout.Provider),
		GatewayOrderID:   output.GatewayOrderID,
		PaymentSessionID: output.PaymentSessionID,
		KeyID:            output.KeyID,
		Amount:           output.Checkout.TotalAmount,
		AmountMinor:      output.AmountMinor,
		Currency:         output.Checkout.Currency,
		Status:           string(output.Checkout.Status),
	})
}

// VerifyPayment handles the client-side payment confirmation
func (h *OrderHandler) VerifyPayment(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req VerifyPaymentRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	order, err := h.checkoutUC.VerifyPayment(c.Request().Context(), &usecase.VerifyPaymentInput{
		UserID:         userID,
		Provider:       entity.PaymentProvider(req.Provider),
		GatewayOrderID: req.GatewayOrderID,
		PaymentID:      req.PaymentID,
		Signature:      req.Signature,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, order)
}

// MyOrders handles the caller's order history
func (h *OrderHandler) MyOrders(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	orders, err := h.orderUC.ListMyOrders(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, orders)
}

// GetOrder handles a single order lookup by its owner or an admin
func (h *OrderHandler) GetOrder(c echo.Context) error {
	req, ok := requester(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	orderID, ok := uuidParam(c, "orderId")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid order ID")
	}

	order, err := h.orderUC.GetOrder(c.Request().Context(), req, orderID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, order)
}

// GetReceipt handles the QR code receipt for an order
func (h *OrderHandler) GetReceipt(c echo.Context) error {
	req, ok := requester(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	orderID, ok := uuidParam(c, "orderId")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid order ID")
	}

	png, err := h.orderUC.GetReceipt(c.Request().Context(), req, orderID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// ListOrders handles the admin order listing
func (h *OrderHandler) ListOrders(c echo.Context) error {
	input := &usecase.OrderListInput{
		Page:  intQuery(c, "page"),
		Limit: intQuery(c, "limit"),
	}
	if raw := c.QueryParam("status"); raw != "" {
		status := entity.OrderStatus(raw)
		input.Status = &status
	}

	output, err := h.orderUC.ListOrders(c.Request().Context(), input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Paged(c, output.Orders, output.Page, output.Limit, output.Total)
}

// UpdateStatus handles an admin status transition
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	orderID, ok := uuidParam(c, "orderId")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid order ID")
	}

	var req UpdateStatusRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	order, err := h.orderUC.UpdateStatus(c.Request().Context(), orderID, entity.OrderStatus(req.Status))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, order)
}

// CancelOrder handles an owner cancellation
func (h *OrderHandler) CancelOrder(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	orderID, ok := uuidParam(c, "orderId")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid order ID")
	}

	order, err := h.orderUC.CancelOrder(c.Request().Context(), userID, orderID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, order)
}
