package handler

import (
	"log/slog"
	"net/http"

	"storefront/internal/delivery/api/response"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AssistantHandlerParams holds dependencies for AssistantHandler, injected by Fx.
type AssistantHandlerParams struct {
	fx.In

	AssistantUC usecase.AssistantUsecase
	Logger      *slog.Logger
}

// AssistantHandler serves generated text.
type AssistantHandler struct {
	assistantUC usecase.AssistantUsecase
	logger      *slog.Logger
}

// NewAssistantHandler is the constructor for AssistantHandler
func NewAssistantHandler(params AssistantHandlerParams) *AssistantHandler {
	return &AssistantHandler{
		assistantUC: params.AssistantUC,
		logger:      params.Logger,
	}
}

// ProductDescriptionRequest names a product and its selling points.
type ProductDescriptionRequest struct {
	Name     string   `json:"name" validate:"required,max=200"`
	Features []string `json:"features" validate:"max=20,dive,required,max=200"`
}

// SummarizeOrdersRequest lists the orders to report on.
type SummarizeOrdersRequest struct {
	OrderIDs []uuid.UUID `json:"orderIds" validate:"required,min=1,max=50"`
}

// ProductDescription handles generating a product description
func (h *AssistantHandler) ProductDescription(c echo.Context) error {
	var req ProductDescriptionRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	description, err := h.assistantUC.GenerateProductDescription(c.Request().Context(), &usecase.ProductDescriptionInput{
		Name:     req.Name,
		Features: req.Features,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"description": description})
}

// SummarizeOrders handles the admin order report
func (h *AssistantHandler) SummarizeOrders(c echo.Context) error {
	var req SummarizeOrdersRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	summary, err := h.assistantUC.SummarizeOrders(c.Request().Context(), req.OrderIDs)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"summary": summary})
}
