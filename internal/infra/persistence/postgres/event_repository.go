package postgres

import (
	"context"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paymentEventRepository implements the repository.PaymentEventRepository interface.
type paymentEventRepository struct {
	db *gorm.DB
}

// NewPaymentEventRepository is the constructor for paymentEventRepository.
func NewPaymentEventRepository(db *gorm.DB) repository.PaymentEventRepository {
	return &paymentEventRepository{db: db}
}

// Record inserts the event, relying on the (provider, event_id) unique index
// to detect replays.
func (repo *paymentEventRepository) Record(ctx context.Context, event *entity.PaymentEvent, checkoutID uuid.UUID, receivedAt time.Time) error {
	eventM := &model.PaymentEventModel{
		ID:             uuid.New(),
		Provider:       string(event.Provider),
		EventID:        event.EventID,
		EventType:      string(event.Type),
		CheckoutID:     checkoutID,
		GatewayOrderID: event.GatewayOrderID,
		PaymentID:      event.PaymentID,
		AmountMinor:    event.AmountMinor,
		ReceivedAt:     receivedAt,
	}

	// ON CONFLICT DO NOTHING keeps the surrounding transaction usable on a replay.
	result := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(eventM)
	if result.Error != nil {
		return dbError(result.Error, "failed to record payment event")
	}
	if result.RowsAffected == 0 {
		return repository.ErrDuplicatePaymentEvent
	}

	return nil
}

// outboxRepository implements the repository.OutboxRepository interface.
type outboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository is the constructor for outboxRepository.
func NewOutboxRepository(db *gorm.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}

func (repo *outboxRepository) Add(ctx context.Context, event *entity.OutboxEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	eventM := &model.OutboxEventModel{
		ID:          event.ID,
		AggregateID: event.AggregateID,
		EventType:   event.EventType,
		Payload:     event.Payload,
		RequestID:   event.RequestID,
		CreatedAt:   event.CreatedAt,
	}

	if err := repo.db.WithContext(ctx).Create(eventM).Error; err != nil {
		return dbError(err, "failed to add outbox event")
	}
	event.CreatedAt = eventM.CreatedAt

	return nil
}

// FetchUnpublished returns the oldest pending events. SKIP LOCKED lets several
// relays share the table without publishing the same row concurrently.
func (repo *outboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]*entity.OutboxEvent, error) {
	var eventModels []*model.OutboxEventModel
	if err := repo.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate, Options: clause.LockingOptionsSkipLocked}).
		Where("published_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&eventModels).Error; err != nil {
		return nil, dbError(err, "failed to fetch outbox events")
	}

	events := make([]*entity.OutboxEvent, 0, len(eventModels))
	for _, m := range eventModels {
		events = append(events, &entity.OutboxEvent{
			ID:          m.ID,
			AggregateID: m.AggregateID,
			EventType:   m.EventType,
			Payload:     m.Payload,
			RequestID:   m.RequestID,
			CreatedAt:   m.CreatedAt,
			PublishedAt: m.PublishedAt,
		})
	}

	return events, nil
}

func (repo *outboxRepository) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := repo.db.WithContext(ctx).
		Model(&model.OutboxEventModel{}).
		Where("id = ?", id).
		Update("published_at", at).Error; err != nil {
		return dbError(err, "failed to mark outbox event published")
	}

	return nil
}
