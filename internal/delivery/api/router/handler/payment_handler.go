package handler

import (
	"io"
	"log/slog"
	"net/http"

	"storefront/internal/delivery/api/response"
	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// PaymentHandlerParams holds dependencies for PaymentHandler, injected by Fx.
type PaymentHandlerParams struct {
	fx.In

	CheckoutUC usecase.CheckoutUsecase
	Logger     *slog.Logger
}

// PaymentHandler receives gateway webhooks.
type PaymentHandler struct {
	checkoutUC usecase.CheckoutUsecase
	logger     *slog.Logger
}

// NewPaymentHandler is the constructor for PaymentHandler
func NewPaymentHandler(params PaymentHandlerParams) *PaymentHandler {
	return &PaymentHandler{
		checkoutUC: params.CheckoutUC,
		logger:     params.Logger,
	}
}

// WebhookResponse tells the gateway what happened to its event.
type WebhookResponse struct {
	Outcome string `json:"outcome"`
	OrderID string `json:"orderId,omitempty"`
}

// Webhook handles a gateway notification. The body is read raw because
// the signature covers the exact bytes sent.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	provider := entity.PaymentProvider(c.Param("provider"))
	if !provider.IsValid() {
		return response.NotFound(c, "UNSUPPORTED_PAYMENT_PROVIDER", "Unknown payment provider")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Could not read request body")
	}

	ctx := c.Request().Context()
	output, err := h.checkoutUC.HandleWebhook(ctx, &usecase.WebhookInput{
		Provider: provider,
		Header:   c.Request().Header,
		Body:     body,
	})
	if err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, h.logger).Warn("Webhook not applied",
			slog.String("provider", string(provider)),
			slog.Any("error", err),
		)

		return response.HandleAppError(c, err)
	}

	resp := WebhookResponse{Outcome: string(output.Outcome)}
	if output.Order != nil {
		resp.OrderID = output.Order.ID.String()
	}

	return response.Success(c, http.StatusOK, resp)
}
