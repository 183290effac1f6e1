package qrcode

import (
	"encoding/json"
	"fmt"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

const receiptType = "order_receipt"

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// ReceiptData is the JSON payload encoded into an order receipt QR code
type ReceiptData struct {
	Type        string             `json:"type"`
	OrderID     string             `json:"order_id"`
	TotalAmount string             `json:"total_amount"`
	Currency    string             `json:"currency"`
	Status      entity.OrderStatus `json:"status"`
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel string) service.QRCodeService {
	if size <= 0 {
		size = 256
	}

	// Set error correction level
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// GenerateOrderReceiptQR generates a PNG QR code describing the order
func (s *qrcodeService) GenerateOrderReceiptQR(order *entity.Order) ([]byte, error) {
	data := ReceiptData{
		Type:        receiptType,
		OrderID:     order.ID.String(),
		TotalAmount: order.TotalAmount.StringFixed(2),
		Currency:    order.Currency,
		Status:      order.Status,
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal QR code data: %w", err)
	}

	qrCode, err := qrcode.New(string(jsonData), s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}

// ParseReceipt decodes scanned receipt QR data.
func ParseReceipt(qrData string) (uuid.UUID, decimal.Decimal, error) {
	var data ReceiptData
	if err := json.Unmarshal([]byte(qrData), &data); err != nil {
		return uuid.Nil, decimal.Zero, fmt.Errorf("failed to unmarshal QR code data: %w", err)
	}

	if data.Type != receiptType {
		return uuid.Nil, decimal.Zero, fmt.Errorf("invalid QR code type: %s", data.Type)
	}

	orderID, err := uuid.Parse(data.OrderID)
	if err != nil {
		return uuid.Nil, decimal.Zero, fmt.Errorf("failed to parse order ID: %w", err)
	}

	total, err := decimal.NewFromString(data.TotalAmount)
	if err != nil {
		return uuid.Nil, decimal.Zero, fmt.Errorf("failed to parse total amount: %w", err)
	}

	return orderID, total, nil
}
