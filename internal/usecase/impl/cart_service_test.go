package impl

import (
	"context"
	"testing"
	"time"

	"storefront/config"
	"storefront/internal/domain/entity"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartFixtures struct {
	store   *memStore
	service usecase.CartUsecase
	cable   *entity.Product
	charger *entity.Product
}

func createTestCartService(t *testing.T) cartFixtures {
	t.Helper()

	store := newMemStore()
	svc := NewCartService(CartServiceParams{
		CartRepo:    store.CartRepo(),
		ProductRepo: store.ProductRepo(),
		Config:      &config.Config{Mongo: &config.MongoConfig{CartTTL: time.Hour}},
		Logger:      discardLogger(),
	})

	category := store.seedCategory(entity.Category{ID: uuid.New(), Name: "Accessories"})
	cable := store.seedProduct(entity.Product{ID: uuid.New(), Name: "Cable", Price: decimal.RequireFromString("9.50"), Stock: 5, CategoryID: category.ID})
	charger := store.seedProduct(entity.Product{ID: uuid.New(), Name: "Charger", Price: decimal.RequireFromString("25"), Stock: 1, CategoryID: category.ID})

	return cartFixtures{store: store, service: svc, cable: cable, charger: charger}
}

func TestCartService_GetCart_Empty(t *testing.T) {
	f := createTestCartService(t)
	userID := uuid.New()

	view, err := f.service.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, view.UserID)
	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())
}

func TestCartService_AddItem_AccumulatesAndPrices(t *testing.T) {
	f := createTestCartService(t)
	userID := uuid.New()

	_, err := f.service.AddItem(context.Background(), userID, &usecase.CartItemInput{ProductID: f.cable.ID, Quantity: 2})
	require.NoError(t, err)
	view, err := f.service.AddItem(context.Background(), userID, &usecase.CartItemInput{ProductID: f.cable.ID, Quantity: 1})
	require.NoError(t, err)
	view, err = f.service.AddItem(context.Background(), userID, &usecase.CartItemInput{ProductID: f.charger.ID, Quantity: 1})
	require.NoError(t, err)

	require.Len(t, view.Items, 2)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, "28.5", view.Items[0].LineTotal.String())
	assert.Equal(t, "53.5", view.Total.String())
	assert.WithinDuration(t, time.Now().Add(time.Hour), view.ExpiresAt, time.Minute)

	// Nothing is reserved by the cart.
	assert.Equal(t, 5, f.store.product(f.cable.ID).Stock)
}

func TestCartService_AddItem_Rejects(t *testing.T) {
	f := createTestCartService(t)
	userID := uuid.New()

	tests := []struct {
		name     string
		input    usecase.CartItemInput
		wantCode string
	}{
		{name: "zero quantity", input: usecase.CartItemInput{ProductID: f.cable.ID, Quantity: 0}, wantCode: "VALIDATION_FAILED"},
		{name: "unknown product", input: usecase.CartItemInput{ProductID: uuid.New(), Quantity: 1}, wantCode: "PRODUCT_NOT_FOUND"},
		{name: "more than stock", input: usecase.CartItemInput{ProductID: f.charger.ID, Quantity: 2}, wantCode: "INSUFFICIENT_STOCK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.AddItem(context.Background(), userID, &tt.input)
			requireErrorCode(t, err, tt.wantCode)
		})
	}

	assert.False(t, f.store.hasCart(userID))
}

func TestCartService_AddItem_CountsExistingLine(t *testing.T) {
	f := createTestCartService(t)
	userID := uuid.New()

	_, err := f.service.AddItem(context.Background(), userID, &usecase.CartItemInput{ProductID: f.charger.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.service.AddItem(context.Background(), userID, &usecase.CartItemInput{ProductID: f.charger.ID, Quantity: 1})
	requireErrorCode(t, err, "INSUFFICIENT_STOCK")
}

func TestCartService_SetItem(t *testing.T) {
	f := createTestCartService(t)
	userID := uuid.New()
	f.store.seedCart(userID, entity.CartItem{ProductID: f.cable.ID, Quantity: 4})

	view, err := f.service.SetItem(context.Background(), userID, &usecase.CartItemInput{ProductID: f.cable.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.Items[0].Quantity)

	_, err = f.service.SetItem(context.Background(), userID, &usecase.CartItemInput{ProductID: f.cable.ID, Quantity: 6})
	requireErrorCode(t, err, "INSUFFICIENT_STOCK")
}

func TestCartService_RemoveAndClear(t *testing.T) {
	f := createTestCartService(t)
	userID := uuid.New()
	f.store.seedCart(userID,
		entity.CartItem{ProductID: f.cable.ID, Quantity: 1},
		entity.CartItem{ProductID: f.charger.ID, Quantity: 1},
	)

	view, err := f.service.RemoveItem(context.Background(), userID, f.cable.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, f.charger.ID, view.Items[0].Product.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), view.ExpiresAt, time.Minute)

	_, err = f.service.RemoveItem(context.Background(), userID, f.cable.ID)
	requireErrorCode(t, err, "CART_ITEM_NOT_FOUND")

	require.NoError(t, f.service.ClearCart(context.Background(), userID))
	assert.False(t, f.store.hasCart(userID))
	require.NoError(t, f.service.ClearCart(context.Background(), userID))
}

func TestCartService_View_DropsDeletedProducts(t *testing.T) {
	f := createTestCartService(t)
	userID := uuid.New()
	f.store.seedCart(userID,
		entity.CartItem{ProductID: f.cable.ID, Quantity: 2},
		entity.CartItem{ProductID: uuid.New(), Quantity: 1},
	)

	view, err := f.service.GetCart(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "19", view.Total.String())

	carts, err := f.service.ListCarts(context.Background())
	require.NoError(t, err)
	assert.Len(t, carts, 1)
}
