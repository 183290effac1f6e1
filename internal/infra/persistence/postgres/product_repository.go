package postgres

import (
	"context"
	"strings"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

const maxProductPageSize = 50

// productRepository implements the repository.ProductRepository interface.
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository is the constructor for productRepository.
func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

// List returns one page of products with their category and the total match count.
func (repo *productRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, int64, error) {
	query := repo.db.WithContext(ctx).Model(&model.ProductModel{})
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("name ILIKE ?", "%"+escapeLike(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, dbError(err, "failed to count products")
	}

	limit := filter.Limit
	if limit <= 0 || limit > maxProductPageSize {
		limit = maxProductPageSize
	}

	var productModels []*model.ProductModel
	if err := query.
		Preload("Category").
		Order("created_at DESC").
		Offset(max(filter.Offset, 0)).
		Limit(limit).
		Find(&productModels).Error; err != nil {
		return nil, 0, dbError(err, "failed to list products")
	}

	return toProductDomainList(productModels), total, nil
}

// FindByID reads from the primary. It feeds the product cache and the cart
// stock checks, and a lagging replica would put an old row back in the cache.
func (repo *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var productM model.ProductModel
	if err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Preload("Category").
		Where("id = ?", id).
		First(&productM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}

		return nil, dbError(err, "failed to find product by id")
	}

	return toProductDomain(&productM), nil
}

// FindByIDs reads from the primary: checkout snapshots must see the latest price and stock.
func (repo *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var productModels []*model.ProductModel
	if err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("id IN ?", ids).
		Find(&productModels).Error; err != nil {
		return nil, dbError(err, "failed to find products by ids")
	}

	return toProductDomainList(productModels), nil
}

func (repo *productRepository) Create(ctx context.Context, product *entity.Product) error {
	productM := fromProductDomain(product)

	if err := repo.db.WithContext(ctx).Omit("Category").Create(productM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrCategoryNotFound
		}

		return dbError(err, "failed to create product")
	}

	product.ID = productM.ID
	product.CreatedAt = productM.CreatedAt
	product.UpdatedAt = productM.UpdatedAt

	return nil
}

// Update overwrites the editable product fields. Stock is left to the stock methods.
func (repo *productRepository) Update(ctx context.Context, product *entity.Product) error {
	productM := fromProductDomain(product)

	result := repo.db.WithContext(ctx).
		Model(&model.ProductModel{}).
		Where("id = ?", product.ID).
		Select("name", "description", "color", "compatible_with", "image_url", "price", "list_price", "category_id", "updated_at").
		Updates(productM)
	if result.Error != nil {
		if isForeignKeyConstraintViolation(result.Error) {
			return repository.ErrCategoryNotFound
		}

		return dbError(result.Error, "failed to update product")
	}
	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

func (repo *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ProductModel{})
	if result.Error != nil {
		return dbError(result.Error, "failed to delete product")
	}
	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

func (repo *productRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	if err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Model(&model.ProductModel{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error; err != nil {
		return 0, dbError(err, "failed to count products by category")
	}

	return count, nil
}

func (repo *productRepository) SetStock(ctx context.Context, id uuid.UUID, stock int) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ProductModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"stock": stock, "updated_at": time.Now()})
	if result.Error != nil {
		if isCheckConstraintViolation(result.Error) {
			return repository.ErrInsufficientStock
		}

		return dbError(result.Error, "failed to set product stock")
	}
	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

// DecrementStock is a conditional update: the row only changes while enough
// stock remains, so concurrent checkouts can never drive it negative.
func (repo *productRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ProductModel{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		if isCheckConstraintViolation(result.Error) {
			return repository.ErrInsufficientStock
		}

		return dbError(result.Error, "failed to decrement product stock")
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var exists int64
	if err := repo.db.WithContext(ctx).Model(&model.ProductModel{}).Where("id = ?", id).Count(&exists).Error; err != nil {
		return dbError(err, "failed to check product existence")
	}
	if exists == 0 {
		return repository.ErrProductNotFound
	}

	return repository.ErrInsufficientStock
}

// IncrementStock returns units to a product. A deleted product is skipped.
func (repo *productRepository) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ProductModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return dbError(result.Error, "failed to increment product stock")
	}
	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func toProductDomain(data *model.ProductModel) *entity.Product {
	if data == nil {
		return nil
	}

	return &entity.Product{
		ID:             data.ID,
		Name:           data.Name,
		Description:    data.Description,
		Color:          data.Color,
		CompatibleWith: data.CompatibleWith,
		ImageURL:       data.ImageURL,
		Price:          data.Price,
		ListPrice:      data.ListPrice,
		Stock:          data.Stock,
		CategoryID:     data.CategoryID,
		Category:       toCategoryDomain(data.Category),
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}

func toProductDomainList(models []*model.ProductModel) []*entity.Product {
	products := make([]*entity.Product, 0, len(models))
	for _, m := range models {
		products = append(products, toProductDomain(m))
	}

	return products
}

func fromProductDomain(data *entity.Product) *model.ProductModel {
	return &model.ProductModel{
		ID:             data.ID,
		Name:           data.Name,
		Description:    data.Description,
		Color:          data.Color,
		CompatibleWith: data.CompatibleWith,
		ImageURL:       data.ImageURL,
		Price:          data.Price,
		ListPrice:      data.ListPrice,
		Stock:          data.Stock,
		CategoryID:     data.CategoryID,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}
