package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type categoryService struct {
	txManager    repository.TransactionManager
	categoryRepo repository.CategoryRepository
	logger       *slog.Logger
	now          func() time.Time
}

// CategoryServiceParams holds dependencies for CategoryService, injected by Fx.
type CategoryServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	CategoryRepo repository.CategoryRepository
	Logger       *slog.Logger
}

// NewCategoryService creates a new category service instance
func NewCategoryService(params CategoryServiceParams) usecase.CategoryUsecase {
	return &categoryService{
		txManager:    params.TxManager,
		categoryRepo: params.CategoryRepo,
		logger:       params.Logger,
		now:          time.Now,
	}
}

func (srv *categoryService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *categoryService) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	categories, err := srv.categoryRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}

	return categories, nil
}

func (srv *categoryService) CreateCategory(ctx context.Context, input *usecase.CategoryInput) (*entity.Category, error) {
	now := srv.now()
	category := &entity.Category{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := srv.categoryRepo.Create(ctx, category); err != nil {
		return nil, mapCategoryError(err, "failed to create category")
	}

	srv.log(ctx).Info("Category created", slog.String("category_id", category.ID.String()))

	return category, nil
}

func (srv *categoryService) UpdateCategory(ctx context.Context, id uuid.UUID, input *usecase.CategoryInput) (*entity.Category, error) {
	category, err := srv.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapCategoryError(err, "failed to find category")
	}

	category.Name = strings.TrimSpace(input.Name)
	if desc := strings.TrimSpace(input.Description); desc != "" {
		category.Description = desc
	}
	category.UpdatedAt = srv.now()

	if err := srv.categoryRepo.Update(ctx, category); err != nil {
		return nil, mapCategoryError(err, "failed to update category")
	}

	return category, nil
}

// DeleteCategory refuses while any product still points at the category.
// The foreign key backs up the count check against concurrent inserts.
func (srv *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		if _, err := repos.CategoryRepo().FindByID(ctx, id); err != nil {
			return err
		}

		count, err := repos.ProductRepo().CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return domainerrors.ErrCategoryInUse.WithDetails("products still reference this category")
		}

		return repos.CategoryRepo().Delete(ctx, id)
	})
	if err != nil {
		return mapCategoryError(err, "failed to delete category")
	}

	srv.log(ctx).Info("Category deleted", slog.String("category_id", id.String()))

	return nil
}

func mapCategoryError(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrCategoryNotFound):
		return domainerrors.ErrCategoryNotFound
	case errors.Is(err, repository.ErrDuplicateCategory):
		return domainerrors.ErrCategoryAlreadyExists
	case errors.Is(err, repository.ErrCategoryInUse):
		return domainerrors.ErrCategoryInUse
	default:
		return errors.Wrap(err, message)
	}
}
