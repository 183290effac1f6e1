package service

import (
	"context"
	"net/http"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

// MockPaymentGateway is a mock of service.PaymentGateway.
type MockPaymentGateway struct {
	mock.Mock
}

// NewMockPaymentGateway creates a mock that asserts its expectations on cleanup.
func NewMockPaymentGateway(t testingT) *MockPaymentGateway {
	m := &MockPaymentGateway{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockPaymentGateway) Provider() entity.PaymentProvider {
	args := m.Called()

	return args.Get(0).(entity.PaymentProvider)
}

func (m *MockPaymentGateway) PublicKey() string {
	args := m.Called()

	return args.String(0)
}

func (m *MockPaymentGateway) CreateOrder(ctx context.Context, req service.GatewayOrderRequest) (*service.GatewayOrder, error) {
	args := m.Called(ctx, req)
	order, _ := args.Get(0).(*service.GatewayOrder)

	return order, args.Error(1)
}

func (m *MockPaymentGateway) VerifyPayment(ctx context.Context, v service.PaymentVerification) (*entity.PaymentEvent, error) {
	args := m.Called(ctx, v)
	event, _ := args.Get(0).(*entity.PaymentEvent)

	return event, args.Error(1)
}

func (m *MockPaymentGateway) VerifyWebhook(header http.Header, body []byte) error {
	args := m.Called(header, body)

	return args.Error(0)
}

func (m *MockPaymentGateway) ParseEvent(body []byte) (*entity.PaymentEvent, error) {
	args := m.Called(body)
	event, _ := args.Get(0).(*entity.PaymentEvent)

	return event, args.Error(1)
}

func (m *MockPaymentGateway) Refund(ctx context.Context, gatewayOrderID, paymentID string, amountMinor int64, reference string) error {
	args := m.Called(ctx, gatewayOrderID, paymentID, amountMinor, reference)

	return args.Error(0)
}

// MockGatewayRegistry is a mock of service.GatewayRegistry.
type MockGatewayRegistry struct {
	mock.Mock
}

// NewMockGatewayRegistry creates a mock that asserts its expectations on cleanup.
func NewMockGatewayRegistry(t testingT) *MockGatewayRegistry {
	m := &MockGatewayRegistry{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockGatewayRegistry) Get(provider entity.PaymentProvider) (service.PaymentGateway, error) {
	args := m.Called(provider)
	gateway, _ := args.Get(0).(service.PaymentGateway)

	return gateway, args.Error(1)
}

func (m *MockGatewayRegistry) Default() entity.PaymentProvider {
	args := m.Called()

	return args.Get(0).(entity.PaymentProvider)
}
