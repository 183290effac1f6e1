package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryModel mirrors the 'categories' table.
type CategoryModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `gorm:"type:text;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (CategoryModel) TableName() string {
	return "categories"
}

// ProductModel mirrors the 'products' table. The stock check constraint keeps stock >= 0.
type ProductModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name           string          `gorm:"type:varchar(200);not null"`
	Description    string          `gorm:"type:text"`
	Color          string          `gorm:"type:varchar(50)"`
	CompatibleWith []string        `gorm:"type:jsonb;serializer:json"`
	ImageURL       string          `gorm:"type:text"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ListPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Stock          int             `gorm:"not null;check:stock >= 0"`
	CategoryID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Category       *CategoryModel  `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProductModel) TableName() string {
	return "products"
}
