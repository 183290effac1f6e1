package qrcode

import (
	"encoding/json"
	"testing"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() *entity.Order {
	return &entity.Order{
		ID:          uuid.New(),
		TotalAmount: decimal.RequireFromString("1499.50"),
		Currency:    "INR",
		Status:      entity.OrderStatusPending,
	}
}

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		size                 int
		errorCorrectionLevel string
	}{
		{"Low error correction", 256, "L"},
		{"Medium error correction", 256, "M"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 256, "H"},
		{"Default error correction", 256, "invalid"},
		{"Zero size falls back", 0, "M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService(tt.size, tt.errorCorrectionLevel)
			assert.NotNil(t, service)
		})
	}
}

func TestQRCodeService_GenerateOrderReceiptQR(t *testing.T) {
	service := NewQRCodeService(256, "M")

	qrBytes, err := service.GenerateOrderReceiptQR(testOrder())
	require.NoError(t, err)
	require.NotEmpty(t, qrBytes)

	// PNG magic number
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, qrBytes[:4])
}

func TestQRCodeService_GenerateOrderReceiptQR_DifferentSizes(t *testing.T) {
	for _, size := range []int{128, 256, 512} {
		service := NewQRCodeService(size, "M")

		qrBytes, err := service.GenerateOrderReceiptQR(testOrder())
		require.NoError(t, err)
		assert.NotEmpty(t, qrBytes)
	}
}

func TestParseReceipt(t *testing.T) {
	order := testOrder()
	jsonData, err := json.Marshal(ReceiptData{
		Type:        receiptType,
		OrderID:     order.ID.String(),
		TotalAmount: order.TotalAmount.StringFixed(2),
		Currency:    order.Currency,
		Status:      order.Status,
	})
	require.NoError(t, err)

	orderID, total, err := ParseReceipt(string(jsonData))
	require.NoError(t, err)
	assert.Equal(t, order.ID, orderID)
	assert.True(t, order.TotalAmount.Equal(total))
}

func TestParseReceipt_Errors(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		expectedErr string
	}{
		{"invalid json", "invalid json", "failed to unmarshal QR code data"},
		{"wrong type", `{"type":"subscription","order_id":"` + uuid.NewString() + `","total_amount":"1"}`, "invalid QR code type"},
		{"bad order id", `{"type":"order_receipt","order_id":"nope","total_amount":"1"}`, "failed to parse order ID"},
		{"bad amount", `{"type":"order_receipt","order_id":"` + uuid.NewString() + `","total_amount":"x"}`, "failed to parse total amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseReceipt(tt.data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}
