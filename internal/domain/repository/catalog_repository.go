package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateCategory = errors.New("category name already exists")
	// ErrCategoryInUse is returned when deleting a category that products still reference.
	ErrCategoryInUse = errors.New("category is referenced by products")

	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock is returned by a conditional decrement that matched no row.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// CategoryRepository persists categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]*entity.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	Create(ctx context.Context, category *entity.Category) error
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	CategoryID *uuid.UUID
	// Search matches product names case-insensitively.
	Search string
	Offset int
	Limit  int
}

// ProductRepository persists products and owns every stock mutation.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)

	// FindByIDs reads from the primary so prices and stock are current.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Product, error)

	Create(ctx context.Context, product *entity.Product) error
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	SetStock(ctx context.Context, id uuid.UUID, stock int) error

	// DecrementStock subtracts quantity only if at least quantity units remain.
	// It returns ErrInsufficientStock otherwise and never lets stock go negative.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error

	// IncrementStock returns units to stock, e.g. on cancellation.
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}

// ProductCache is a read-through cache in front of ProductRepository.FindByID.
type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	Set(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, ids ...uuid.UUID) error
}

// ErrCacheMiss is returned by ProductCache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")
