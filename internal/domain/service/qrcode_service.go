package service

import (
	"storefront/internal/domain/entity"
)

// QRCodeService defines the interface for QR code generation
type QRCodeService interface {
	// GenerateOrderReceiptQR renders a PNG QR code carrying the order id, total and status
	GenerateOrderReceiptQR(order *entity.Order) ([]byte, error)
}
