package postgres

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

// checkoutRepository implements the repository.CheckoutRepository interface.
type checkoutRepository struct {
	db *gorm.DB
}

// NewCheckoutRepository is the constructor for checkoutRepository.
func NewCheckoutRepository(db *gorm.DB) repository.CheckoutRepository {
	return &checkoutRepository{db: db}
}

func (repo *checkoutRepository) Create(ctx context.Context, checkout *entity.Checkout) error {
	checkoutM := fromCheckoutDomain(checkout)

	if err := repo.db.WithContext(ctx).Create(checkoutM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateCheckout
		}

		return dbError(err, "failed to create checkout")
	}

	checkout.ID = checkoutM.ID
	checkout.CreatedAt = checkoutM.CreatedAt
	checkout.UpdatedAt = checkoutM.UpdatedAt

	return nil
}

func (repo *checkoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Checkout, error) {
	return repo.findOne(repo.db.WithContext(ctx).Clauses(dbresolver.Write).Where("id = ?", id))
}

func (repo *checkoutRepository) FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*entity.Checkout, error) {
	return repo.findOne(repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("user_id = ? AND idempotency_key = ?", userID, key))
}

func (repo *checkoutRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Checkout, error) {
	return repo.findOne(repo.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", id))
}

func (repo *checkoutRepository) FindByGatewayOrderIDForUpdate(ctx context.Context, provider entity.PaymentProvider, gatewayOrderID string) (*entity.Checkout, error) {
	return repo.findOne(repo.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("provider = ? AND gateway_order_id = ?", string(provider), gatewayOrderID))
}

func (repo *checkoutRepository) findOne(query *gorm.DB) (*entity.Checkout, error) {
	var checkoutM model.CheckoutModel
	if err := query.First(&checkoutM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCheckoutNotFound
		}

		return nil, dbError(err, "failed to find checkout")
	}

	return toCheckoutDomain(&checkoutM), nil
}

// Update persists the mutable checkout fields: gateway linkage and status.
func (repo *checkoutRepository) Update(ctx context.Context, checkout *entity.Checkout) error {
	checkoutM := fromCheckoutDomain(checkout)

	result := repo.db.WithContext(ctx).
		Model(&model.CheckoutModel{}).
		Where("id = ?", checkout.ID).
		Updates(map[string]any{
			"gateway_order_id": checkoutM.GatewayOrderID,
			"payment_session":  checkoutM.PaymentSession,
			"status":           checkoutM.Status,
			"order_id":         checkoutM.OrderID,
			"payment_id":       checkoutM.PaymentID,
			"failure_reason":   checkoutM.FailureReason,
			"updated_at":       checkoutM.UpdatedAt,
		})
	if result.Error != nil {
		return dbError(result.Error, "failed to update checkout")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCheckoutNotFound
	}

	return nil
}

func toCheckoutDomain(data *model.CheckoutModel) *entity.Checkout {
	items := make([]entity.OrderItem, 0, len(data.Items))
	for _, item := range data.Items {
		items = append(items, entity.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	return &entity.Checkout{
		ID:              data.ID,
		UserID:          data.UserID,
		IdempotencyKey:  derefString(data.IdempotencyKey),
		Provider:        entity.PaymentProvider(data.Provider),
		GatewayOrderID:  derefString(data.GatewayOrderID),
		PaymentSession:  data.PaymentSession,
		Items:           items,
		ShippingAddress: toShippingAddressDomain(data.ShippingAddress),
		TotalAmount:     data.TotalAmount,
		Currency:        data.Currency,
		Status:          entity.CheckoutStatus(data.Status),
		OrderID:         data.OrderID,
		PaymentID:       data.PaymentID,
		FailureReason:   data.FailureReason,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

func fromCheckoutDomain(data *entity.Checkout) *model.CheckoutModel {
	items := make([]model.LineItemModel, 0, len(data.Items))
	for _, item := range data.Items {
		items = append(items, model.LineItemModel{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	return &model.CheckoutModel{
		ID:              data.ID,
		UserID:          data.UserID,
		IdempotencyKey:  nilIfEmpty(data.IdempotencyKey),
		Provider:        string(data.Provider),
		GatewayOrderID:  nilIfEmpty(data.GatewayOrderID),
		PaymentSession:  data.PaymentSession,
		Items:           items,
		ShippingAddress: fromShippingAddressDomain(data.ShippingAddress),
		TotalAmount:     data.TotalAmount,
		Currency:        data.Currency,
		Status:          string(data.Status),
		OrderID:         data.OrderID,
		PaymentID:       data.PaymentID,
		FailureReason:   data.FailureReason,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

// nilIfEmpty keeps empty optional keys NULL so partial unique indexes ignore them.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
