package usecase

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryInput carries the editable category fields.
type CategoryInput struct {
	Name        string
	Description string
}

// CategoryUsecase manages the category list.
type CategoryUsecase interface {
	ListCategories(ctx context.Context) ([]*entity.Category, error)
	CreateCategory(ctx context.Context, input *CategoryInput) (*entity.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input *CategoryInput) (*entity.Category, error)
	// DeleteCategory fails with CATEGORY_IN_USE while products reference it.
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

// ProductInput carries the editable product fields.
type ProductInput struct {
	Name           string
	Description    string
	Color          string
	CompatibleWith []string
	ImageURL       string
	Price          decimal.Decimal
	ListPrice      decimal.Decimal
	Stock          int
	CategoryID     uuid.UUID
	// GenerateDescription asks for a generated description when Description is empty.
	GenerateDescription bool
}

// ProductListInput is a page request over the catalog.
type ProductListInput struct {
	CategoryID *uuid.UUID
	Search     string
	Page       int
	Limit      int
}

// ProductListOutput is one page of products.
type ProductListOutput struct {
	Products []*entity.Product
	Total    int64
	Page     int
	Limit    int
}

// ProductUsecase manages the catalog and its stock levels.
type ProductUsecase interface {
	ListProducts(ctx context.Context, input *ProductListInput) (*ProductListOutput, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	CreateProduct(ctx context.Context, input *ProductInput) (*entity.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input *ProductInput) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) (*entity.Product, error)
}
