package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"golang.org/x/sync/singleflight"
)

const (
	defaultPageSize    = 20
	maxProductPageSize = 50
	descriptionTokens  = 200

	// productFlightTimeout bounds a shared cache refill, which outlives the
	// caller that started it.
	productFlightTimeout = 5 * time.Second
)

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	cache        repository.ProductCache
	textGen      service.TextGenerator
	group        singleflight.Group
	logger       *slog.Logger
	now          func() time.Time
}

// ProductServiceParams holds dependencies for ProductService, injected by Fx.
type ProductServiceParams struct {
	fx.In

	ProductRepo  repository.ProductRepository
	CategoryRepo repository.CategoryRepository
	Cache        repository.ProductCache
	TextGen      service.TextGenerator
	Logger       *slog.Logger
}

// NewProductService creates a new product service instance
func NewProductService(params ProductServiceParams) usecase.ProductUsecase {
	return &productService{
		productRepo:  params.ProductRepo,
		categoryRepo: params.CategoryRepo,
		cache:        params.Cache,
		textGen:      params.TextGen,
		logger:       params.Logger,
		now:          time.Now,
	}
}

func (srv *productService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *productService) ListProducts(ctx context.Context, input *usecase.ProductListInput) (*usecase.ProductListOutput, error) {
	page, limit := normalizePage(input.Page, input.Limit, maxProductPageSize)

	products, total, err := srv.productRepo.List(ctx, repository.ProductFilter{
		CategoryID: input.CategoryID,
		Search:     strings.TrimSpace(input.Search),
		Offset:     (page - 1) * limit,
		Limit:      limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	return &usecase.ProductListOutput{
		Products: products,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}, nil
}

// GetProduct reads through the cache. Concurrent misses for one product
// share a single primary read; each caller still gives up on its own context.
// A refill racing a stock write can re-cache the old row, so cached stock is
// advisory and bounded by the cache TTL.
func (srv *productService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := srv.cache.Get(ctx, id)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		srv.log(ctx).Warn("Product cache read failed", slog.String("product_id", id.String()), slog.Any("error", err))
	}

	flight := srv.group.DoChan(id.String(), func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), productFlightTimeout)
		defer cancel()

		product, err := srv.productRepo.FindByID(flightCtx, id)
		if err != nil {
			return nil, err
		}
		if err := srv.cache.Set(flightCtx, product); err != nil {
			srv.log(ctx).Warn("Product cache write failed", slog.String("product_id", id.String()), slog.Any("error", err))
		}

		return product, nil
	})

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "product read abandoned")
	case res := <-flight:
		if res.Err != nil {
			return nil, mapProductError(res.Err, "failed to find product")
		}

		return res.Val.(*entity.Product), nil
	}
}

func (srv *productService) CreateProduct(ctx context.Context, input *usecase.ProductInput) (*entity.Product, error) {
	category, err := srv.requireCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	now := srv.now()
	product := &entity.Product{
		ID:         uuid.New(),
		CategoryID: category.ID,
		Category:   category,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	applyProductInput(product, input)

	if product.Description == "" && input.GenerateDescription {
		product.Description = srv.generateDescription(ctx, product, category)
	}

	if err := srv.productRepo.Create(ctx, product); err != nil {
		return nil, mapProductError(err, "failed to create product")
	}

	srv.log(ctx).Info("Product created", slog.String("product_id", product.ID.String()))

	return product, nil
}

func (srv *productService) UpdateProduct(ctx context.Context, id uuid.UUID, input *usecase.ProductInput) (*entity.Product, error) {
	product, err := srv.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapProductError(err, "failed to find product")
	}

	category, err := srv.requireCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	description := product.Description
	applyProductInput(product, input)
	if product.Description == "" {
		product.Description = description
	}
	product.CategoryID = category.ID
	product.Category = category
	product.UpdatedAt = srv.now()

	if err := srv.productRepo.Update(ctx, product); err != nil {
		return nil, mapProductError(err, "failed to update product")
	}
	srv.invalidate(ctx, id)

	return product, nil
}

// DeleteProduct removes the product. Orders keep their own line snapshots.
func (srv *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := srv.productRepo.Delete(ctx, id); err != nil {
		return mapProductError(err, "failed to delete product")
	}
	srv.invalidate(ctx, id)

	srv.log(ctx).Info("Product deleted", slog.String("product_id", id.String()))

	return nil
}

func (srv *productService) UpdateStock(ctx context.Context, id uuid.UUID, stock int) (*entity.Product, error) {
	if stock < 0 {
		return nil, domainerrors.ErrValidationFailed.WithDetails("stock must not be negative")
	}

	if err := srv.productRepo.SetStock(ctx, id, stock); err != nil {
		return nil, mapProductError(err, "failed to update stock")
	}
	srv.invalidate(ctx, id)

	product, err := srv.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapProductError(err, "failed to reload product")
	}

	return product, nil
}

func (srv *productService) requireCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := srv.categoryRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, domainerrors.ErrInvalidCategory
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find category")
	}

	return category, nil
}

func (srv *productService) invalidate(ctx context.Context, ids ...uuid.UUID) {
	if err := srv.cache.Delete(ctx, ids...); err != nil {
		srv.log(ctx).Warn("Product cache invalidation failed", slog.Any("error", err))
	}
}

// generateDescription is best effort: any failure leaves the description empty.
func (srv *productService) generateDescription(ctx context.Context, product *entity.Product, category *entity.Category) string {
	prompt := fmt.Sprintf("Write a detailed and appealing product description for the following product:\n\n"+
		"Name: %s\nCategory: %s\nColor: %s\nCompatible With: %s\n\n"+
		"Focus on benefits, features, and quality.",
		product.Name, category.Name, product.Color, strings.Join(product.CompatibleWith, ", "))

	text, err := srv.textGen.Complete(ctx, prompt, descriptionTokens)
	if err != nil {
		srv.log(ctx).Warn("Description generation failed", slog.String("product", product.Name), slog.Any("error", err))

		return ""
	}

	return text
}

func applyProductInput(product *entity.Product, input *usecase.ProductInput) {
	product.Name = strings.TrimSpace(input.Name)
	product.Description = strings.TrimSpace(input.Description)
	product.Color = strings.TrimSpace(input.Color)
	product.CompatibleWith = input.CompatibleWith
	product.ImageURL = strings.TrimSpace(input.ImageURL)
	product.Price = input.Price
	product.ListPrice = input.ListPrice
	product.Stock = input.Stock
	product.CategoryID = input.CategoryID
}

func mapProductError(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return domainerrors.ErrProductNotFound
	case errors.Is(err, repository.ErrCategoryNotFound):
		return domainerrors.ErrInvalidCategory
	case errors.Is(err, repository.ErrInsufficientStock):
		return domainerrors.ErrInsufficientStock
	default:
		return errors.Wrap(err, message)
	}
}

// normalizePage clamps a 1-based page and a page size.
func normalizePage(page, limit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return page, limit
}
