package postgres

import (
	"context"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

const maxOrderPageSize = 100

// orderRepository implements the repository.OrderRepository interface.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order and its line snapshot.
func (repo *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	orderM := fromOrderDomain(order)

	if err := repo.db.WithContext(ctx).Create(orderM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateOrder
		}

		return dbError(err, "failed to create order")
	}

	order.ID = orderM.ID
	order.CreatedAt = orderM.CreatedAt
	order.UpdatedAt = orderM.UpdatedAt

	return nil
}

func (repo *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return repo.findOne(repo.db.WithContext(ctx).Where("id = ?", id), "failed to find order by id")
}

func (repo *orderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return repo.findOne(repo.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", id), "failed to lock order")
}

func (repo *orderRepository) FindByCheckoutID(ctx context.Context, checkoutID uuid.UUID) (*entity.Order, error) {
	return repo.findOne(repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("checkout_id = ?", checkoutID), "failed to find order by checkout")
}

func (repo *orderRepository) findOne(query *gorm.DB, details string) (*entity.Order, error) {
	var orderM model.OrderModel
	if err := query.Preload("Items", orderItemsByPosition).First(&orderM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}

		return nil, dbError(err, details)
	}

	return toOrderDomain(&orderM), nil
}

func (repo *orderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var orderModels []*model.OrderModel
	if err := repo.db.WithContext(ctx).
		Preload("Items", orderItemsByPosition).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&orderModels).Error; err != nil {
		return nil, dbError(err, "failed to find orders by ids")
	}

	return toOrderDomainList(orderModels), nil
}

func (repo *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	var orderModels []*model.OrderModel
	if err := repo.db.WithContext(ctx).
		Preload("Items", orderItemsByPosition).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orderModels).Error; err != nil {
		return nil, dbError(err, "failed to list orders by user")
	}

	return toOrderDomainList(orderModels), nil
}

func (repo *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, int64, error) {
	query := repo.db.WithContext(ctx).Model(&model.OrderModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, dbError(err, "failed to count orders")
	}

	limit := filter.Limit
	if limit <= 0 || limit > maxOrderPageSize {
		limit = maxOrderPageSize
	}

	var orderModels []*model.OrderModel
	if err := query.
		Preload("Items", orderItemsByPosition).
		Order("created_at DESC").
		Offset(max(filter.Offset, 0)).
		Limit(limit).
		Find(&orderModels).Error; err != nil {
		return nil, 0, dbError(err, "failed to list orders")
	}

	return toOrderDomainList(orderModels), total, nil
}

func (repo *orderRepository) UpdateStatus(ctx context.Context, order *entity.Order) error {
	result := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":         string(order.Status),
			"payment_status": string(order.PaymentStatus),
			"shipped_at":     order.ShippedAt,
			"delivered_at":   order.DeliveredAt,
			"cancelled_at":   order.CancelledAt,
			"updated_at":     order.UpdatedAt,
		})
	if result.Error != nil {
		return dbError(result.Error, "failed to update order status")
	}
	if result.RowsAffected == 0 {
		return repository.ErrOrderNotFound
	}

	return nil
}

func (repo *orderRepository) UpdateSummary(ctx context.Context, id uuid.UUID, summary string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"summary": summary, "updated_at": time.Now()})
	if result.Error != nil {
		return dbError(result.Error, "failed to update order summary")
	}
	if result.RowsAffected == 0 {
		return repository.ErrOrderNotFound
	}

	return nil
}

func orderItemsByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func toOrderDomain(data *model.OrderModel) *entity.Order {
	items := make([]entity.OrderItem, 0, len(data.Items))
	for _, item := range data.Items {
		items = append(items, entity.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	return &entity.Order{
		ID:              data.ID,
		UserID:          data.UserID,
		CheckoutID:      data.CheckoutID,
		Items:           items,
		ShippingAddress: toShippingAddressDomain(data.ShippingAddress),
		TotalAmount:     data.TotalAmount,
		Currency:        data.Currency,
		Status:          entity.OrderStatus(data.Status),
		PaymentProvider: entity.PaymentProvider(data.PaymentProvider),
		PaymentMethod:   data.PaymentMethod,
		PaymentID:       data.PaymentID,
		PaymentStatus:   entity.PaymentStatus(data.PaymentStatus),
		PaidAt:          data.PaidAt,
		Summary:         data.Summary,
		ShippedAt:       data.ShippedAt,
		DeliveredAt:     data.DeliveredAt,
		CancelledAt:     data.CancelledAt,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

func toOrderDomainList(models []*model.OrderModel) []*entity.Order {
	orders := make([]*entity.Order, 0, len(models))
	for _, m := range models {
		orders = append(orders, toOrderDomain(m))
	}

	return orders
}

func fromOrderDomain(data *entity.Order) *model.OrderModel {
	orderID := data.ID
	if orderID == uuid.Nil {
		orderID = uuid.New()
	}

	items := make([]model.OrderItemModel, 0, len(data.Items))
	for i, item := range data.Items {
		items = append(items, model.OrderItemModel{
			ID:        uuid.New(),
			OrderID:   orderID,
			Position:  i,
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	return &model.OrderModel{
		ID:              orderID,
		UserID:          data.UserID,
		CheckoutID:      data.CheckoutID,
		Items:           items,
		ShippingAddress: fromShippingAddressDomain(data.ShippingAddress),
		TotalAmount:     data.TotalAmount,
		Currency:        data.Currency,
		Status:          string(data.Status),
		PaymentProvider: string(data.PaymentProvider),
		PaymentMethod:   data.PaymentMethod,
		PaymentID:       data.PaymentID,
		PaymentStatus:   string(data.PaymentStatus),
		PaidAt:          data.PaidAt,
		Summary:         data.Summary,
		ShippedAt:       data.ShippedAt,
		DeliveredAt:     data.DeliveredAt,
		CancelledAt:     data.CancelledAt,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

func toShippingAddressDomain(data model.ShippingAddressModel) entity.ShippingAddress {
	return entity.ShippingAddress{
		FullName:   data.FullName,
		Address:    data.Address,
		City:       data.City,
		PostalCode: data.PostalCode,
		Country:    data.Country,
		Phone:      data.Phone,
	}
}

func fromShippingAddressDomain(data entity.ShippingAddress) model.ShippingAddressModel {
	return model.ShippingAddressModel{
		FullName:   data.FullName,
		Address:    data.Address,
		City:       data.City,
		PostalCode: data.PostalCode,
		Country:    data.Country,
		Phone:      data.Phone,
	}
}
