package impl

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// requireErrorCode asserts err is an AppError with the given code.
func requireErrorCode(t *testing.T, err error, code string) {
	t.Helper()

	require.Error(t, err)
	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, code, appErr.ErrorCode())
}

// errorCode returns the AppError code of err, or "" for other errors.
func errorCode(err error) string {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.ErrorCode()
	}

	return ""
}

// memStore is an in-memory stand-in for Postgres and Mongo. Transactions
// are serialised and roll back on error, which is enough to exercise the
// row-lock protocol the services rely on.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users         map[uuid.UUID]entity.User
	categories    map[uuid.UUID]entity.Category
	products      map[uuid.UUID]entity.Product
	checkouts     map[uuid.UUID]entity.Checkout
	orders        map[uuid.UUID]entity.Order
	paymentEvents map[string]uuid.UUID
	outbox        []entity.OutboxEvent
	carts         map[uuid.UUID]entity.Cart
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[uuid.UUID]entity.User{},
		categories:    map[uuid.UUID]entity.Category{},
		products:      map[uuid.UUID]entity.Product{},
		checkouts:     map[uuid.UUID]entity.Checkout{},
		orders:        map[uuid.UUID]entity.Order{},
		paymentEvents: map[string]uuid.UUID{},
		carts:         map[uuid.UUID]entity.Cart{},
	}
}

type memSnapshot struct {
	users         map[uuid.UUID]entity.User
	categories    map[uuid.UUID]entity.Category
	products      map[uuid.UUID]entity.Product
	checkouts     map[uuid.UUID]entity.Checkout
	orders        map[uuid.UUID]entity.Order
	paymentEvents map[string]uuid.UUID
	outbox        []entity.OutboxEvent
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return memSnapshot{
		users:         cloneMap(s.users),
		categories:    cloneMap(s.categories),
		products:      cloneMap(s.products),
		checkouts:     cloneMap(s.checkouts),
		orders:        cloneMap(s.orders),
		paymentEvents: cloneMap(s.paymentEvents),
		outbox:        slices.Clone(s.outbox),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = snap.users
	s.categories = snap.categories
	s.products = snap.products
	s.checkouts = snap.checkouts
	s.orders = snap.orders
	s.paymentEvents = snap.paymentEvents
	s.outbox = snap.outbox
}

// Execute implements repository.TransactionManager.
func (s *memStore) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)

		return err
	}

	return nil
}

func (s *memStore) UserRepo() repository.UserRepository         { return memUsers{s} }
func (s *memStore) CategoryRepo() repository.CategoryRepository { return memCategories{s} }
func (s *memStore) ProductRepo() repository.ProductRepository   { return memProducts{s} }
func (s *memStore) OrderRepo() repository.OrderRepository       { return memOrders{s} }
func (s *memStore) CheckoutRepo() repository.CheckoutRepository { return memCheckouts{s} }
func (s *memStore) PaymentEventRepo() repository.PaymentEventRepository {
	return memPaymentEvents{s}
}
func (s *memStore) OutboxRepo() repository.OutboxRepository { return memOutbox{s} }
func (s *memStore) CartRepo() repository.CartRepository     { return memCarts{s} }

// Test accessors.

func (s *memStore) product(id uuid.UUID) entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.products[id]
}

func (s *memStore) order(id uuid.UUID) entity.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.orders[id]
}

func (s *memStore) checkout(id uuid.UUID) entity.Checkout {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.checkouts[id]
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.orders)
}

func (s *memStore) outboxTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	types := make([]string, 0, len(s.outbox))
	for _, e := range s.outbox {
		types = append(types, e.EventType)
	}

	return types
}

func (s *memStore) hasCart(userID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.carts[userID]

	return ok
}

func (s *memStore) seedUser(u entity.User) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u

	return &u
}

func (s *memStore) seedCategory(c entity.Category) *entity.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c

	return &c
}

func (s *memStore) seedProduct(p entity.Product) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p

	return &p
}

func (s *memStore) seedCart(userID uuid.UUID, items ...entity.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = entity.Cart{UserID: userID, Items: items}
}

func (s *memStore) seedOrder(o entity.Order) *entity.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o

	return &o
}

func (s *memStore) seedCheckout(c entity.Checkout) *entity.Checkout {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkouts[c.ID] = c

	return &c
}

// --- users ---

type memUsers struct{ s *memStore }

func (r memUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return &u, nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r memUsers) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.User
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, &u)
		}
	}

	return out, nil
}

func (r memUsers) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.s.users[user.ID] = *user

	return nil
}

func (r memUsers) List(_ context.Context) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, &u)
	}

	return out, nil
}

// --- categories ---

type memCategories struct{ s *memStore }

func (r memCategories) List(_ context.Context) ([]*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*entity.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (r memCategories) FindByID(_ context.Context, id uuid.UUID) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}

	return &c, nil
}

func (r memCategories) Create(_ context.Context, category *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.categories {
		if strings.EqualFold(c.Name, category.Name) {
			return repository.ErrDuplicateCategory
		}
	}
	r.s.categories[category.ID] = *category

	return nil
}

func (r memCategories) Update(_ context.Context, category *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[category.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	for id, c := range r.s.categories {
		if id != category.ID && strings.EqualFold(c.Name, category.Name) {
			return repository.ErrDuplicateCategory
		}
	}
	r.s.categories[category.ID] = *category

	return nil
}

func (r memCategories) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	for _, p := range r.s.products {
		if p.CategoryID == id {
			return repository.ErrCategoryInUse
		}
	}
	delete(r.s.categories, id)

	return nil
}

// --- products ---

type memProducts struct{ s *memStore }

func (r memProducts) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []*entity.Product
	for _, p := range r.s.products {
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, &p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := int64(len(matched))
	start := min(filter.Offset, len(matched))
	end := min(start+filter.Limit, len(matched))

	return matched[start:end], total, nil
}

func (r memProducts) FindByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}

	return &p, nil
}

func (r memProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, &p)
		}
	}

	return out, nil
}

func (r memProducts) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[product.CategoryID]; !ok {
		return repository.ErrCategoryNotFound
	}
	r.s.products[product.ID] = *product

	return nil
}

func (r memProducts) Update(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	r.s.products[product.ID] = *product

	return nil
}

func (r memProducts) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(r.s.products, id)

	return nil
}

func (r memProducts) CountByCategory(_ context.Context, categoryID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, p := range r.s.products {
		if p.CategoryID == categoryID {
			n++
		}
	}

	return n, nil
}

func (r memProducts) SetStock(_ context.Context, id uuid.UUID, stock int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.Stock = stock
	r.s.products[id] = p

	return nil
}

func (r memProducts) DecrementStock(_ context.Context, id uuid.UUID, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	if p.Stock < quantity {
		return repository.ErrInsufficientStock
	}
	p.Stock -= quantity
	r.s.products[id] = p

	return nil
}

func (r memProducts) IncrementStock(_ context.Context, id uuid.UUID, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.Stock += quantity
	r.s.products[id] = p

	return nil
}

// --- orders ---

type memOrders struct{ s *memStore }

func (r memOrders) Create(_ context.Context, order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, o := range r.s.orders {
		if o.CheckoutID == order.CheckoutID {
			return repository.ErrDuplicateOrder
		}
	}
	r.s.orders[order.ID] = *order

	return nil
}

func (r memOrders) FindByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}

	return &o, nil
}

func (r memOrders) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.FindByID(ctx, id)
}

func (r memOrders) FindByCheckoutID(_ context.Context, checkoutID uuid.UUID) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, o := range r.s.orders {
		if o.CheckoutID == checkoutID {
			return &o, nil
		}
	}

	return nil, repository.ErrOrderNotFound
}

func (r memOrders) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Order
	for _, id := range ids {
		if o, ok := r.s.orders[id]; ok {
			out = append(out, &o)
		}
	}

	return out, nil
}

func (r memOrders) ListByUser(_ context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, &o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out, nil
}

func (r memOrders) List(_ context.Context, filter repository.OrderFilter) ([]*entity.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []*entity.Order
	for _, o := range r.s.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		matched = append(matched, &o)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := min(filter.Offset, len(matched))
	end := min(start+filter.Limit, len(matched))

	return matched[start:end], total, nil
}

func (r memOrders) UpdateStatus(_ context.Context, order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders[order.ID]; !ok {
		return repository.ErrOrderNotFound
	}
	r.s.orders[order.ID] = *order

	return nil
}

func (r memOrders) UpdateSummary(_ context.Context, id uuid.UUID, summary string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Summary = summary
	r.s.orders[id] = o

	return nil
}

// --- checkouts ---

type memCheckouts struct{ s *memStore }

func (r memCheckouts) Create(_ context.Context, checkout *entity.Checkout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if checkout.IdempotencyKey != "" {
		for _, c := range r.s.checkouts {
			if c.UserID == checkout.UserID && c.IdempotencyKey == checkout.IdempotencyKey {
				return repository.ErrDuplicateCheckout
			}
		}
	}
	r.s.checkouts[checkout.ID] = *checkout

	return nil
}

func (r memCheckouts) FindByID(_ context.Context, id uuid.UUID) (*entity.Checkout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.checkouts[id]
	if !ok {
		return nil, repository.ErrCheckoutNotFound
	}

	return &c, nil
}

func (r memCheckouts) FindByIdempotencyKey(_ context.Context, userID uuid.UUID, key string) (*entity.Checkout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.checkouts {
		if c.UserID == userID && c.IdempotencyKey == key {
			return &c, nil
		}
	}

	return nil, repository.ErrCheckoutNotFound
}

func (r memCheckouts) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Checkout, error) {
	return r.FindByID(ctx, id)
}

func (r memCheckouts) FindByGatewayOrderIDForUpdate(_ context.Context, provider entity.PaymentProvider, gatewayOrderID string) (*entity.Checkout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.checkouts {
		if c.Provider == provider && c.GatewayOrderID == gatewayOrderID {
			return &c, nil
		}
	}

	return nil, repository.ErrCheckoutNotFound
}

func (r memCheckouts) Update(_ context.Context, checkout *entity.Checkout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.checkouts[checkout.ID]; !ok {
		return repository.ErrCheckoutNotFound
	}
	r.s.checkouts[checkout.ID] = *checkout

	return nil
}

// --- payment events and outbox ---

type memPaymentEvents struct{ s *memStore }

func (r memPaymentEvents) Record(_ context.Context, event *entity.PaymentEvent, checkoutID uuid.UUID, _ time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := string(event.Provider) + "|" + event.EventID
	if _, ok := r.s.paymentEvents[key]; ok {
		return repository.ErrDuplicatePaymentEvent
	}
	r.s.paymentEvents[key] = checkoutID

	return nil
}

type memOutbox struct{ s *memStore }

func (r memOutbox) Add(_ context.Context, event *entity.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.outbox = append(r.s.outbox, *event)

	return nil
}

func (r memOutbox) FetchUnpublished(_ context.Context, limit int) ([]*entity.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.OutboxEvent
	for _, e := range r.s.outbox {
		if e.PublishedAt != nil {
			continue
		}
		out = append(out, &e)
		if len(out) == limit {
			break
		}
	}

	return out, nil
}

func (r memOutbox) MarkPublished(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.outbox {
		if r.s.outbox[i].ID == id {
			r.s.outbox[i].PublishedAt = &at

			return nil
		}
	}

	return errors.New("outbox event not found")
}

// --- carts ---

type memCarts struct{ s *memStore }

func (r memCarts) FindByUser(_ context.Context, userID uuid.UUID) (*entity.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	c.Items = slices.Clone(c.Items)

	return &c, nil
}

func (r memCarts) upsert(userID, productID uuid.UUID, quantity int, ttl time.Duration, add bool) *entity.Cart {
	now := time.Now()
	c, ok := r.s.carts[userID]
	if !ok {
		c = entity.Cart{UserID: userID, CreatedAt: now}
	}
	c.Items = slices.Clone(c.Items)

	found := false
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			if add {
				c.Items[i].Quantity += quantity
			} else {
				c.Items[i].Quantity = quantity
			}
			found = true
		}
	}
	if !found {
		c.Items = append(c.Items, entity.CartItem{ProductID: productID, Quantity: quantity, AddedAt: now})
	}
	c.UpdatedAt = now
	c.ExpiresAt = now.Add(ttl)
	r.s.carts[userID] = c

	return &c
}

func (r memCarts) AddItem(_ context.Context, userID, productID uuid.UUID, quantity int, ttl time.Duration) (*entity.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.upsert(userID, productID, quantity, ttl, true), nil
}

func (r memCarts) SetItem(_ context.Context, userID, productID uuid.UUID, quantity int, ttl time.Duration) (*entity.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.upsert(userID, productID, quantity, ttl, false), nil
}

func (r memCarts) RemoveItem(_ context.Context, userID, productID uuid.UUID, ttl time.Duration) (*entity.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	idx := slices.IndexFunc(c.Items, func(i entity.CartItem) bool { return i.ProductID == productID })
	if idx < 0 {
		return nil, repository.ErrCartItemNotFound
	}
	now := time.Now()
	c.Items = slices.Delete(slices.Clone(c.Items), idx, idx+1)
	c.UpdatedAt = now
	c.ExpiresAt = now.Add(ttl)
	r.s.carts[userID] = c

	return &c, nil
}

func (r memCarts) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.carts[userID]; !ok {
		return repository.ErrCartNotFound
	}
	delete(r.s.carts, userID)

	return nil
}

func (r memCarts) List(_ context.Context) ([]*entity.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*entity.Cart, 0, len(r.s.carts))
	for _, c := range r.s.carts {
		out = append(out, &c)
	}

	return out, nil
}

// memCache is a ProductCache that records invalidations.
type memCache struct {
	mu       sync.Mutex
	products map[uuid.UUID]entity.Product
	deleted  []uuid.UUID
}

func newMemCache() *memCache {
	return &memCache{products: map[uuid.UUID]entity.Product{}}
}

func (c *memCache) Get(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	if !ok {
		return nil, repository.ErrCacheMiss
	}

	return &p, nil
}

func (c *memCache) Set(_ context.Context, product *entity.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[product.ID] = *product

	return nil
}

func (c *memCache) Delete(_ context.Context, ids ...uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.products, id)
	}
	c.deleted = append(c.deleted, ids...)

	return nil
}

func (c *memCache) wasDeleted(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Contains(c.deleted, id)
}
