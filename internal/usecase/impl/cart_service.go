package impl

import (
	"context"
	"log/slog"
	"time"

	"storefront/config"
	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

const defaultCartTTL = 7 * 24 * time.Hour

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	ttl         time.Duration
	logger      *slog.Logger
}

// CartServiceParams holds dependencies for CartService, injected by Fx.
type CartServiceParams struct {
	fx.In

	CartRepo    repository.CartRepository
	ProductRepo repository.ProductRepository
	Config      *config.Config
	Logger      *slog.Logger
}

// NewCartService creates a new cart service instance
func NewCartService(params CartServiceParams) usecase.CartUsecase {
	ttl := defaultCartTTL
	if params.Config != nil && params.Config.Mongo != nil && params.Config.Mongo.CartTTL > 0 {
		ttl = params.Config.Mongo.CartTTL
	}

	return &cartService{
		cartRepo:    params.CartRepo,
		productRepo: params.ProductRepo,
		ttl:         ttl,
		logger:      params.Logger,
	}
}

func (srv *cartService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*usecase.CartView, error) {
	cart, err := srv.cartRepo.FindByUser(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return &usecase.CartView{UserID: userID, Items: []usecase.CartLine{}, Total: decimal.Zero}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load cart")
	}

	return srv.view(ctx, cart)
}

// AddItem adds to the line. The stock check is advisory: nothing is
// reserved until checkout.
func (srv *cartService) AddItem(ctx context.Context, userID uuid.UUID, input *usecase.CartItemInput) (*usecase.CartView, error) {
	if input.Quantity < 1 {
		return nil, domainerrors.ErrValidationFailed.WithDetails("quantity must be at least 1")
	}

	product, err := srv.findProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	current := 0
	cart, err := srv.cartRepo.FindByUser(ctx, userID)
	switch {
	case err == nil:
		current = cart.QuantityOf(input.ProductID)
	case !errors.Is(err, repository.ErrCartNotFound):
		return nil, errors.Wrap(err, "failed to load cart")
	}

	if !product.HasStock(current + input.Quantity) {
		return nil, domainerrors.ErrInsufficientStock.WithDetails(product.Name)
	}

	cart, err = srv.cartRepo.AddItem(ctx, userID, input.ProductID, input.Quantity, srv.ttl)
	if err != nil {
		return nil, errors.Wrap(err, "failed to add cart item")
	}

	return srv.view(ctx, cart)
}

func (srv *cartService) SetItem(ctx context.Context, userID uuid.UUID, input *usecase.CartItemInput) (*usecase.CartView, error) {
	if input.Quantity < 1 {
		return nil, domainerrors.ErrValidationFailed.WithDetails("quantity must be at least 1")
	}

	product, err := srv.findProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.HasStock(input.Quantity) {
		return nil, domainerrors.ErrInsufficientStock.WithDetails(product.Name)
	}

	cart, err := srv.cartRepo.SetItem(ctx, userID, input.ProductID, input.Quantity, srv.ttl)
	if err != nil {
		return nil, errors.Wrap(err, "failed to set cart item")
	}

	return srv.view(ctx, cart)
}

func (srv *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*usecase.CartView, error) {
	cart, err := srv.cartRepo.RemoveItem(ctx, userID, productID, srv.ttl)
	if errors.Is(err, repository.ErrCartNotFound) || errors.Is(err, repository.ErrCartItemNotFound) {
		return nil, domainerrors.ErrCartItemNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to remove cart item")
	}

	return srv.view(ctx, cart)
}

// ClearCart empties the cart; clearing an absent cart succeeds.
func (srv *cartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	err := srv.cartRepo.DeleteByUser(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return errors.Wrap(err, "failed to clear cart")
	}

	return nil
}

func (srv *cartService) ListCarts(ctx context.Context) ([]*entity.Cart, error) {
	carts, err := srv.cartRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list carts")
	}

	return carts, nil
}

func (srv *cartService) findProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := srv.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapProductError(err, "failed to find product")
	}

	return product, nil
}

// view resolves the cart lines against current products and prices.
func (srv *cartService) view(ctx context.Context, cart *entity.Cart) (*usecase.CartView, error) {
	view := &usecase.CartView{
		UserID:    cart.UserID,
		Items:     make([]usecase.CartLine, 0, len(cart.Items)),
		Total:     decimal.Zero,
		UpdatedAt: cart.UpdatedAt,
		ExpiresAt: cart.ExpiresAt,
	}
	if cart.IsEmpty() {
		return view, nil
	}

	products, err := srv.productRepo.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve cart products")
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, item := range cart.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			srv.log(ctx).Debug("Dropping cart line for missing product", slog.String("product_id", item.ProductID.String()))

			continue
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Items = append(view.Items, usecase.CartLine{
			Product:   product,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
		})
		view.Total = view.Total.Add(lineTotal)
	}

	return view, nil
}
