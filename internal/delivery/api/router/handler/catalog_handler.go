package handler

import (
	"log/slog"
	"net/http"

	"storefront/internal/delivery/api/response"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// CatalogHandlerParams holds dependencies for CatalogHandler, injected by Fx.
type CatalogHandlerParams struct {
	fx.In

	CategoryUC usecase.CategoryUsecase
	ProductUC  usecase.ProductUsecase
	Logger     *slog.Logger
}

// CatalogHandler serves categories and products.
type CatalogHandler struct {
	categoryUC usecase.CategoryUsecase
	productUC  usecase.ProductUsecase
	logger     *slog.Logger
}

// NewCatalogHandler is the constructor for CatalogHandler
func NewCatalogHandler(params CatalogHandlerParams) *CatalogHandler {
	return &CatalogHandler{
		categoryUC: params.CategoryUC,
		productUC:  params.ProductUC,
		logger:     params.Logger,
	}
}

// CreateCategoryRequest represents the request body for adding a category
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"required,min=10"`
}

// UpdateCategoryRequest keeps the description when it is omitted.
type UpdateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,min=10"`
}

// ProductRequest is the full editable product for add and update.
type ProductRequest struct {
	Name                string          `json:"name" validate:"required,min=1,max=200"`
	Description         string          `json:"description" validate:"omitempty,min=5"`
	Color               string          `json:"color" validate:"max=50"`
	CompatibleWith      []string        `json:"compatibleWith" validate:"omitempty,dive,min=1"`
	ImageURL            string          `json:"imageUrl" validate:"omitempty,url"`
	Price               decimal.Decimal `json:"price" validate:"dgte0"`
	ListPrice           decimal.Decimal `json:"listPrice" validate:"dgte0"`
	Stock               int             `json:"stock" validate:"gte=0"`
	CategoryID          uuid.UUID       `json:"categoryId" validate:"required"`
	GenerateDescription bool            `json:"generateDescription"`
}

// UpdateStockRequest sets the absolute stock level.
type UpdateStockRequest struct {
	Stock *int `json:"stock" validate:"required,gte=0"`
}

func (r *ProductRequest) toInput() *usecase.ProductInput {
	return &usecase.ProductInput{
		Name:                r.Name,
		Description:         r.Description,
		Color:               r.Color,
		CompatibleWith:      r.CompatibleWith,
		ImageURL:            r.ImageURL,
		Price:               r.Price,
		ListPrice:           r.ListPrice,
		Stock:               r.Stock,
		CategoryID:          r.CategoryID,
		GenerateDescription: r.GenerateDescription,
	}
}

// ListCategories handles the public category listing
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	categories, err := h.categoryUC.ListCategories(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, categories)
}

// CreateCategory handles adding a category
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req CreateCategoryRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	category, err := h.categoryUC.CreateCategory(c.Request().Context(), &usecase.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, category)
}

// UpdateCategory handles renaming or re-describing a category
func (h *CatalogHandler) UpdateCategory(c echo.Context) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid category ID")
	}

	var req UpdateCategoryRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	category, err := h.categoryUC.UpdateCategory(c.Request().Context(), id, &usecase.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, category)
}

// DeleteCategory handles removing an unused category
func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid category ID")
	}

	if err := h.categoryUC.DeleteCategory(c.Request().Context(), id); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"id": id.String()})
}

// ListProducts handles the public, paginated product listing
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	input := &usecase.ProductListInput{
		Search: c.QueryParam("search"),
		Page:   intQuery(c, "page"),
		Limit:  intQuery(c, "limit"),
	}
	if raw := c.QueryParam("categoryId"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_ID", "Invalid category ID")
		}
		input.CategoryID = &categoryID
	}

	output, err := h.productUC.ListProducts(c.Request().Context(), input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Paged(c, output.Products, output.Page, output.Limit, output.Total)
}

// GetProduct handles a single product lookup
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid product ID")
	}

	product, err := h.productUC.GetProduct(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, product)
}

// CreateProduct handles adding a product
func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	var req ProductRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	product, err := h.productUC.CreateProduct(c.Request().Context(), req.toInput())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, product)
}

// UpdateProduct handles replacing a product's fields
func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid product ID")
	}

	var req ProductRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	product, err := h.productUC.UpdateProduct(c.Request().Context(), id, req.toInput())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, product)
}

// DeleteProduct handles removing a product
func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid product ID")
	}

	if err := h.productUC.DeleteProduct(c.Request().Context(), id); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"id": id.String()})
}

// UpdateStock handles setting a product's stock level
func (h *CatalogHandler) UpdateStock(c echo.Context) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid product ID")
	}

	var req UpdateStockRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	product, err := h.productUC.UpdateStock(c.Request().Context(), id, *req.Stock)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, product)
}
