package usecase

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAuthUsecase is a mock of usecase.AuthUsecase.
type MockAuthUsecase struct{ mock.Mock }

func NewMockAuthUsecase(t testingT) *MockAuthUsecase {
	m := &MockAuthUsecase{}
	register(t, &m.Mock)

	return m
}

func (m *MockAuthUsecase) Signup(ctx context.Context, input *usecase.SignupInput) (*entity.User, error) {
	args := m.Called(ctx, input)
	user, _ := args.Get(0).(*entity.User)

	return user, args.Error(1)
}

func (m *MockAuthUsecase) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.LoginOutput)

	return out, args.Error(1)
}

func (m *MockAuthUsecase) ListUsers(ctx context.Context) ([]*entity.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*entity.User)

	return users, args.Error(1)
}

func (m *MockAuthUsecase) EnsureAdmin(ctx context.Context, input *usecase.AdminInput) (*entity.User, bool, error) {
	args := m.Called(ctx, input)
	user, _ := args.Get(0).(*entity.User)

	return user, args.Bool(1), args.Error(2)
}

// MockCategoryUsecase is a mock of usecase.CategoryUsecase.
type MockCategoryUsecase struct{ mock.Mock }

func NewMockCategoryUsecase(t testingT) *MockCategoryUsecase {
	m := &MockCategoryUsecase{}
	register(t, &m.Mock)

	return m
}

func (m *MockCategoryUsecase) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]*entity.Category)

	return categories, args.Error(1)
}

func (m *MockCategoryUsecase) CreateCategory(ctx context.Context, input *usecase.CategoryInput) (*entity.Category, error) {
	args := m.Called(ctx, input)
	category, _ := args.Get(0).(*entity.Category)

	return category, args.Error(1)
}

func (m *MockCategoryUsecase) UpdateCategory(ctx context.Context, id uuid.UUID, input *usecase.CategoryInput) (*entity.Category, error) {
	args := m.Called(ctx, id, input)
	category, _ := args.Get(0).(*entity.Category)

	return category, args.Error(1)
}

func (m *MockCategoryUsecase) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockProductUsecase is a mock of usecase.ProductUsecase.
type MockProductUsecase struct{ mock.Mock }

func NewMockProductUsecase(t testingT) *MockProductUsecase {
	m := &MockProductUsecase{}
	register(t, &m.Mock)

	return m
}

func (m *MockProductUsecase) ListProducts(ctx context.Context, input *usecase.ProductListInput) (*usecase.ProductListOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.ProductListOutput)

	return out, args.Error(1)
}

func (m *MockProductUsecase) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*entity.Product)

	return product, args.Error(1)
}

func (m *MockProductUsecase) CreateProduct(ctx context.Context, input *usecase.ProductInput) (*entity.Product, error) {
	args := m.Called(ctx, input)
	product, _ := args.Get(0).(*entity.Product)

	return product, args.Error(1)
}

func (m *MockProductUsecase) UpdateProduct(ctx context.Context, id uuid.UUID, input *usecase.ProductInput) (*entity.Product, error) {
	args := m.Called(ctx, id, input)
	product, _ := args.Get(0).(*entity.Product)

	return product, args.Error(1)
}

func (m *MockProductUsecase) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductUsecase) UpdateStock(ctx context.Context, id uuid.UUID, stock int) (*entity.Product, error) {
	args := m.Called(ctx, id, stock)
	product, _ := args.Get(0).(*entity.Product)

	return product, args.Error(1)
}

// MockCartUsecase is a mock of usecase.CartUsecase.
type MockCartUsecase struct{ mock.Mock }

func NewMockCartUsecase(t testingT) *MockCartUsecase {
	m := &MockCartUsecase{}
	register(t, &m.Mock)

	return m
}

func (m *MockCartUsecase) GetCart(ctx context.Context, userID uuid.UUID) (*usecase.CartView, error) {
	args := m.Called(ctx, userID)
	view, _ := args.Get(0).(*usecase.CartView)

	return view, args.Error(1)
}

func (m *MockCartUsecase) AddItem(ctx context.Context, userID uuid.UUID, input *usecase.CartItemInput) (*usecase.CartView, error) {
	args := m.Called(ctx, userID, input)
	view, _ := args.Get(0).(*usecase.CartView)

	return view, args.Error(1)
}

func (m *MockCartUsecase) SetItem(ctx context.Context, userID uuid.UUID, input *usecase.CartItemInput) (*usecase.CartView, error) {
	args := m.Called(ctx, userID, input)
	view, _ := args.Get(0).(*usecase.CartView)

	return view, args.Error(1)
}

func (m *MockCartUsecase) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*usecase.CartView, error) {
	args := m.Called(ctx, userID, productID)
	view, _ := args.Get(0).(*usecase.CartView)

	return view, args.Error(1)
}

func (m *MockCartUsecase) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockCartUsecase) ListCarts(ctx context.Context) ([]*entity.Cart, error) {
	args := m.Called(ctx)
	carts, _ := args.Get(0).([]*entity.Cart)

	return carts, args.Error(1)
}

// MockCheckoutUsecase is a mock of usecase.CheckoutUsecase.
type MockCheckoutUsecase struct{ mock.Mock }

func NewMockCheckoutUsecase(t testingT) *MockCheckoutUsecase {
	m := &MockCheckoutUsecase{}
	register(t, &m.Mock)

	return m
}

func (m *MockCheckoutUsecase) InitiateCheckout(ctx context.Context, input *usecase.InitiateCheckoutInput) (*usecase.InitiateCheckoutOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.InitiateCheckoutOutput)

	return out, args.Error(1)
}

func (m *MockCheckoutUsecase) VerifyPayment(ctx context.Context, input *usecase.VerifyPaymentInput) (*entity.Order, error) {
	args := m.Called(ctx, input)
	order, _ := args.Get(0).(*entity.Order)

	return order, args.Error(1)
}

func (m *MockCheckoutUsecase) HandleWebhook(ctx context.Context, input *usecase.WebhookInput) (*usecase.WebhookOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.WebhookOutput)

	return out, args.Error(1)
}

// MockOrderUsecase is a mock of usecase.OrderUsecase.
type MockOrderUsecase struct{ mock.Mock }

func NewMockOrderUsecase(t testingT) *MockOrderUsecase {
	m := &MockOrderUsecase{}
	register(t, &m.Mock)

	return m
}

func (m *MockOrderUsecase) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]*entity.Order)

	return orders, args.Error(1)
}

func (m *MockOrderUsecase) GetOrder(ctx context.Context, requester usecase.Requester, orderID uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, requester, orderID)
	order, _ := args.Get(0).(*entity.Order)

	return order, args.Error(1)
}

func (m *MockOrderUsecase) GetReceipt(ctx context.Context, requester usecase.Requester, orderID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, requester, orderID)
	png, _ := args.Get(0).([]byte)

	return png, args.Error(1)
}

func (m *MockOrderUsecase) ListOrders(ctx context.Context, input *usecase.OrderListInput) (*usecase.OrderListOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.OrderListOutput)

	return out, args.Error(1)
}

func (m *MockOrderUsecase) UpdateStatus(ctx context.Context, orderID uuid.UUID, status entity.OrderStatus) (*entity.Order, error) {
	args := m.Called(ctx, orderID, status)
	order, _ := args.Get(0).(*entity.Order)

	return order, args.Error(1)
}

func (m *MockOrderUsecase) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, userID, orderID)
	order, _ := args.Get(0).(*entity.Order)

	return order, args.Error(1)
}

// MockAssistantUsecase is a mock of usecase.AssistantUsecase.
type MockAssistantUsecase struct{ mock.Mock }

func NewMockAssistantUsecase(t testingT) *MockAssistantUsecase {
	m := &MockAssistantUsecase{}
	register(t, &m.Mock)

	return m
}

func (m *MockAssistantUsecase) GenerateProductDescription(ctx context.Context, input *usecase.ProductDescriptionInput) (string, error) {
	args := m.Called(ctx, input)

	return args.String(0), args.Error(1)
}

func (m *MockAssistantUsecase) SummarizeOrders(ctx context.Context, orderIDs []uuid.UUID) (string, error) {
	args := m.Called(ctx, orderIDs)

	return args.String(0), args.Error(1)
}

// MockEventUsecase is a mock of usecase.EventUsecase.
type MockEventUsecase struct{ mock.Mock }

func NewMockEventUsecase(t testingT) *MockEventUsecase {
	m := &MockEventUsecase{}
	register(t, &m.Mock)

	return m
}

func (m *MockEventUsecase) HandleEvent(ctx context.Context, event *usecase.IncomingEvent) error {
	return m.Called(ctx, event).Error(0)
}
