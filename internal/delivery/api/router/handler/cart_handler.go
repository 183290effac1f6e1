package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"storefront/internal/delivery/api/middleware"
	"storefront/internal/delivery/api/response"
	"storefront/internal/domain/entity"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// CartHandlerParams holds dependencies for CartHandler, injected by Fx.
type CartHandlerParams struct {
	fx.In

	CartUC usecase.CartUsecase
	Logger *slog.Logger
}

// CartHandler serves the caller's cart.
type CartHandler struct {
	cartUC usecase.CartUsecase
	logger *slog.Logger
}

// NewCartHandler is the constructor for CartHandler
func NewCartHandler(params CartHandlerParams) *CartHandler {
	return &CartHandler{
		cartUC: params.CartUC,
		logger: params.Logger,
	}
}

// CartItemRequest names a product and a quantity.
type CartItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1,lte=1000"`
}

// CartLineResponse is one resolved cart line.
type CartLineResponse struct {
	Product   *entity.Product `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// CartResponse is the cart with current prices.
type CartResponse struct {
	UserID    uuid.UUID          `json:"userId"`
	Items     []CartLineResponse `json:"items"`
	Total     decimal.Decimal    `json:"total"`
	UpdatedAt *time.Time         `json:"updatedAt,omitempty"`
	ExpiresAt *time.Time         `json:"expiresAt,omitempty"`
}

func newCartResponse(view *usecase.CartView) CartResponse {
	resp := CartResponse{
		UserID: view.UserID,
		Items:  make([]CartLineResponse, 0, len(view.Items)),
		Total:  view.Total,
	}
	for _, line := range view.Items {
		resp.Items = append(resp.Items, CartLineResponse{
			Product:   line.Product,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
		})
	}
	if !view.UpdatedAt.IsZero() {
		resp.UpdatedAt = &view.UpdatedAt
	}
	if !view.ExpiresAt.IsZero() {
		resp.ExpiresAt = &view.ExpiresAt
	}

	return resp
}

// GetCart handles reading the caller's cart
func (h *CartHandler) GetCart(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	view, err := h.cartUC.GetCart(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newCartResponse(view))
}

// AddItem handles incrementing a cart line
func (h *CartHandler) AddItem(c echo.Context) error {
	return h.mutate(c, h.cartUC.AddItem)
}

// SetItem handles replacing a cart line's quantity
func (h *CartHandler) SetItem(c echo.Context) error {
	return h.mutate(c, h.cartUC.SetItem)
}

func (h *CartHandler) mutate(c echo.Context, apply func(ctx context.Context, userID uuid.UUID, input *usecase.CartItemInput) (*usecase.CartView, error)) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req CartItemRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	view, err := apply(c.Request().Context(), userID, &usecase.CartItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newCartResponse(view))
}

// RemoveItem handles dropping one product from the cart
func (h *CartHandler) RemoveItem(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	productID, ok := uuidParam(c, "productId")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid product ID")
	}

	view, err := h.cartUC.RemoveItem(c.Request().Context(), userID, productID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newCartResponse(view))
}

// ClearCart handles emptying the caller's cart
func (h *CartHandler) ClearCart(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	if err := h.cartUC.ClearCart(c.Request().Context(), userID); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Cart cleared"})
}

// ListCarts handles the admin view of every cart
func (h *CartHandler) ListCarts(c echo.Context) error {
	carts, err := h.cartUC.ListCarts(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, carts)
}
