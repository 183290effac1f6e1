package impl

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestCategoryService(t *testing.T) (*memStore, usecase.CategoryUsecase) {
	t.Helper()

	store := newMemStore()

	return store, NewCategoryService(CategoryServiceParams{
		TxManager:    store,
		CategoryRepo: store.CategoryRepo(),
		Logger:       discardLogger(),
	})
}

func TestCategoryService_CreateAndUpdate(t *testing.T) {
	_, svc := createTestCategoryService(t)

	created, err := svc.CreateCategory(context.Background(), &usecase.CategoryInput{Name: " Chargers ", Description: "Wall and car"})
	require.NoError(t, err)
	assert.Equal(t, "Chargers", created.Name)

	_, err = svc.CreateCategory(context.Background(), &usecase.CategoryInput{Name: "chargers"})
	requireErrorCode(t, err, "CATEGORY_ALREADY_EXISTS")

	updated, err := svc.UpdateCategory(context.Background(), created.ID, &usecase.CategoryInput{Name: "Power"})
	require.NoError(t, err)
	assert.Equal(t, "Power", updated.Name)
	assert.Equal(t, "Wall and car", updated.Description, "empty description keeps the old one")

	_, err = svc.UpdateCategory(context.Background(), uuid.New(), &usecase.CategoryInput{Name: "Ghost"})
	requireErrorCode(t, err, "CATEGORY_NOT_FOUND")

	categories, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestCategoryService_DeleteCategory(t *testing.T) {
	store, svc := createTestCategoryService(t)
	inUse := store.seedCategory(entity.Category{ID: uuid.New(), Name: "Cases"})
	empty := store.seedCategory(entity.Category{ID: uuid.New(), Name: "Empty"})
	store.seedProduct(entity.Product{ID: uuid.New(), Name: "Case", CategoryID: inUse.ID})

	err := svc.DeleteCategory(context.Background(), inUse.ID)
	requireErrorCode(t, err, "CATEGORY_IN_USE")

	require.NoError(t, svc.DeleteCategory(context.Background(), empty.ID))

	err = svc.DeleteCategory(context.Background(), empty.ID)
	requireErrorCode(t, err, "CATEGORY_NOT_FOUND")
}

type productFixtures struct {
	store    *memStore
	cache    *memCache
	textGen  *stubTextGen
	service  usecase.ProductUsecase
	category *entity.Category
}

func createTestProductService(t *testing.T) productFixtures {
	t.Helper()

	store := newMemStore()
	cache := newMemCache()
	textGen := &stubTextGen{text: "A braided cable built to last."}

	svc := NewProductService(ProductServiceParams{
		ProductRepo:  store.ProductRepo(),
		CategoryRepo: store.CategoryRepo(),
		Cache:        cache,
		TextGen:      textGen,
		Logger:       discardLogger(),
	})
	category := store.seedCategory(entity.Category{ID: uuid.New(), Name: "Cables"})

	return productFixtures{store: store, cache: cache, textGen: textGen, service: svc, category: category}
}

func (f productFixtures) input(name string) *usecase.ProductInput {
	return &usecase.ProductInput{
		Name:           name,
		Color:          "Black",
		CompatibleWith: []string{"iPhone 15"},
		Price:          decimal.RequireFromString("19.99"),
		ListPrice:      decimal.RequireFromString("24.99"),
		Stock:          10,
		CategoryID:     f.category.ID,
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	f := createTestProductService(t)

	product, err := f.service.CreateProduct(context.Background(), f.input(" USB-C Cable "))
	require.NoError(t, err)
	assert.Equal(t, "USB-C Cable", product.Name)
	assert.Equal(t, "Cables", product.Category.Name)
	assert.Empty(t, product.Description)
	assert.Zero(t, f.textGen.calls.Load())

	in := f.input("Lightning Cable")
	in.GenerateDescription = true
	product, err = f.service.CreateProduct(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "A braided cable built to last.", product.Description)

	in = f.input("Orphan")
	in.CategoryID = uuid.New()
	_, err = f.service.CreateProduct(context.Background(), in)
	requireErrorCode(t, err, "INVALID_CATEGORY")
}

func TestProductService_CreateProduct_GeneratorFailureIsIgnored(t *testing.T) {
	f := createTestProductService(t)
	f.textGen.err = errors.New("quota exceeded")

	in := f.input("Cable")
	in.GenerateDescription = true
	product, err := f.service.CreateProduct(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, product.Description)
}

func TestProductService_GetProduct_ReadsThroughCache(t *testing.T) {
	f := createTestProductService(t)
	seeded := f.store.seedProduct(entity.Product{ID: uuid.New(), Name: "Dock", Stock: 2, CategoryID: f.category.ID})

	got, err := f.service.GetProduct(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dock", got.Name)

	cached, err := f.cache.Get(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, cached.ID)

	_, err = f.service.GetProduct(context.Background(), uuid.New())
	requireErrorCode(t, err, "PRODUCT_NOT_FOUND")
}

// gatedProducts holds FindByID until release is closed and fails reads
// whose context is already done.
type gatedProducts struct {
	repository.ProductRepository
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (p *gatedProducts) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	p.calls.Add(1)
	select {
	case p.entered <- struct{}{}:
	default:
	}
	<-p.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return p.ProductRepository.FindByID(ctx, id)
}

func TestProductService_GetProduct_SharedReadSurvivesCallerCancel(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	category := store.seedCategory(entity.Category{ID: uuid.New(), Name: "Cables"})
	seeded := store.seedProduct(entity.Product{ID: uuid.New(), Name: "Dock", Stock: 2, CategoryID: category.ID})
	products := &gatedProducts{
		ProductRepository: store.ProductRepo(),
		entered:           make(chan struct{}, 1),
		release:           make(chan struct{}),
	}
	svc := NewProductService(ProductServiceParams{
		ProductRepo:  products,
		CategoryRepo: store.CategoryRepo(),
		Cache:        cache,
		TextGen:      &stubTextGen{},
		Logger:       discardLogger(),
	})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.GetProduct(firstCtx, seeded.ID)
		firstErr <- err
	}()

	select {
	case <-products.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("store read never started")
	}

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled caller kept waiting on the shared read")
	}

	secondDone := make(chan *entity.Product, 1)
	secondErr := make(chan error, 1)
	go func() {
		product, err := svc.GetProduct(context.Background(), seeded.ID)
		secondErr <- err
		secondDone <- product
	}()

	close(products.release)

	require.NoError(t, <-secondErr)
	assert.Equal(t, seeded.ID, (<-secondDone).ID)
	assert.Equal(t, int32(1), products.calls.Load())

	cached, err := cache.Get(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dock", cached.Name)
}

func TestProductService_WritesInvalidateCache(t *testing.T) {
	f := createTestProductService(t)
	product, err := f.service.CreateProduct(context.Background(), f.input("Hub"))
	require.NoError(t, err)

	_, err = f.service.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)

	updated, err := f.service.UpdateStock(context.Background(), product.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Stock)
	assert.True(t, f.cache.wasDeleted(product.ID))

	got, err := f.service.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock, "stale cache entry must not survive a stock change")

	_, err = f.service.UpdateStock(context.Background(), product.ID, -1)
	requireErrorCode(t, err, "VALIDATION_FAILED")
}

func TestProductService_UpdateProduct_KeepsDescription(t *testing.T) {
	f := createTestProductService(t)
	in := f.input("Stand")
	in.Description = "Aluminium stand"
	product, err := f.service.CreateProduct(context.Background(), in)
	require.NoError(t, err)

	change := f.input("Stand Pro")
	updated, err := f.service.UpdateProduct(context.Background(), product.ID, change)
	require.NoError(t, err)
	assert.Equal(t, "Stand Pro", updated.Name)
	assert.Equal(t, "Aluminium stand", updated.Description)

	_, err = f.service.UpdateProduct(context.Background(), uuid.New(), change)
	requireErrorCode(t, err, "PRODUCT_NOT_FOUND")
}

func TestProductService_DeleteProduct(t *testing.T) {
	f := createTestProductService(t)
	product, err := f.service.CreateProduct(context.Background(), f.input("Mount"))
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteProduct(context.Background(), product.ID))
	assert.True(t, f.cache.wasDeleted(product.ID))

	err = f.service.DeleteProduct(context.Background(), product.ID)
	requireErrorCode(t, err, "PRODUCT_NOT_FOUND")
}

func TestProductService_ListProducts(t *testing.T) {
	f := createTestProductService(t)
	other := f.store.seedCategory(entity.Category{ID: uuid.New(), Name: "Cases"})
	for _, name := range []string{"Cable A", "Cable B", "Cable C"} {
		f.store.seedProduct(entity.Product{ID: uuid.New(), Name: name, CategoryID: f.category.ID})
	}
	f.store.seedProduct(entity.Product{ID: uuid.New(), Name: "Case", CategoryID: other.ID})

	out, err := f.service.ListProducts(context.Background(), &usecase.ProductListInput{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), out.Total)
	require.Len(t, out.Products, 2)
	assert.Equal(t, "Cable C", out.Products[0].Name)

	out, err = f.service.ListProducts(context.Background(), &usecase.ProductListInput{CategoryID: &other.ID})
	require.NoError(t, err)
	assert.Len(t, out.Products, 1)

	out, err = f.service.ListProducts(context.Background(), &usecase.ProductListInput{Search: " cable b ", Limit: 500})
	require.NoError(t, err)
	assert.Len(t, out.Products, 1)
	assert.Equal(t, maxProductPageSize, out.Limit)
}
