package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEventModel mirrors the 'payment_events' table, unique on (provider, event_id).
type PaymentEventModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Provider       string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_payment_events_provider_event"`
	EventID        string    `gorm:"type:varchar(150);not null;uniqueIndex:idx_payment_events_provider_event"`
	EventType      string    `gorm:"type:varchar(30);not null"`
	CheckoutID     uuid.UUID `gorm:"type:uuid;not null;index"`
	GatewayOrderID string    `gorm:"type:varchar(100)"`
	PaymentID      string    `gorm:"type:varchar(100)"`
	AmountMinor    int64
	ReceivedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (PaymentEventModel) TableName() string {
	return "payment_events"
}

// OutboxEventModel mirrors the 'outbox_events' table.
type OutboxEventModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AggregateID uuid.UUID `gorm:"type:uuid;not null"`
	EventType   string    `gorm:"type:varchar(50);not null"`
	Payload     []byte    `gorm:"type:jsonb;not null"`
	RequestID   string    `gorm:"type:varchar(100)"`
	CreatedAt   time.Time
	PublishedAt *time.Time `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (OutboxEventModel) TableName() string {
	return "outbox_events"
}
