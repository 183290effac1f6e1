package impl

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"storefront/config"
	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/lifecycle"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const defaultCurrency = "INR"

// stockShortageError reports the line that could not be reserved.
type stockShortageError struct {
	productID uuid.UUID
	name      string
	cause     error
}

func (e *stockShortageError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (%s)", e.name, e.productID)
}

func (e *stockShortageError) Unwrap() error {
	return e.cause
}

type checkoutService struct {
	txManager      repository.TransactionManager
	cartRepo       repository.CartRepository
	productRepo    repository.ProductRepository
	userRepo       repository.UserRepository
	checkoutRepo   repository.CheckoutRepository
	orderRepo      repository.OrderRepository
	cache          repository.ProductCache
	gateways       service.GatewayRegistry
	textGen        service.TextGenerator
	currency       string
	summaryTimeout time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// CheckoutServiceParams holds dependencies for CheckoutService, injected by Fx.
type CheckoutServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	CartRepo     repository.CartRepository
	ProductRepo  repository.ProductRepository
	UserRepo     repository.UserRepository
	CheckoutRepo repository.CheckoutRepository
	OrderRepo    repository.OrderRepository
	Cache        repository.ProductCache
	Gateways     service.GatewayRegistry
	TextGen      service.TextGenerator
	Config       *config.Config
	Logger       *slog.Logger
}

// NewCheckoutService creates a new checkout service instance
func NewCheckoutService(params CheckoutServiceParams) usecase.CheckoutUsecase {
	currency := defaultCurrency
	summaryTimeout := defaultSummaryTimeout
	if params.Config != nil {
		if params.Config.Payment != nil && params.Config.Payment.Currency != "" {
			currency = params.Config.Payment.Currency
		}
		if params.Config.TextGen != nil && params.Config.TextGen.Timeout > 0 {
			summaryTimeout = params.Config.TextGen.Timeout
		}
	}

	return &checkoutService{
		txManager:      params.TxManager,
		cartRepo:       params.CartRepo,
		productRepo:    params.ProductRepo,
		userRepo:       params.UserRepo,
		checkoutRepo:   params.CheckoutRepo,
		orderRepo:      params.OrderRepo,
		cache:          params.Cache,
		gateways:       params.Gateways,
		textGen:        params.TextGen,
		currency:       currency,
		summaryTimeout: summaryTimeout,
		logger:         params.Logger,
		now:            time.Now,
	}
}

func (srv *checkoutService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *checkoutService) gateway(provider entity.PaymentProvider) (service.PaymentGateway, error) {
	if provider == "" {
		provider = srv.gateways.Default()
	}
	if !provider.IsValid() {
		return nil, domainerrors.ErrUnsupportedProvider.WithDetails(string(provider))
	}

	gateway, err := srv.gateways.Get(provider)
	if err != nil {
		return nil, domainerrors.ErrUnsupportedProvider.WithDetails(fmt.Sprintf("%s is not configured", provider))
	}

	return gateway, nil
}

// InitiateCheckout freezes the cart into a checkout and opens a gateway order
// for it. Stock is only checked here; it is reserved on payment.
func (srv *checkoutService) InitiateCheckout(ctx context.Context, input *usecase.InitiateCheckoutInput) (*usecase.InitiateCheckoutOutput, error) {
	gateway, err := srv.gateway(input.Provider)
	if err != nil {
		return nil, err
	}

	if input.IdempotencyKey != "" {
		existing, err := srv.checkoutRepo.FindByIdempotencyKey(ctx, input.UserID, input.IdempotencyKey)
		switch {
		case err == nil:
			srv.log(ctx).Info("Replaying checkout for idempotency key", slog.String("checkout_id", existing.ID.String()))

			return srv.resume(ctx, existing)
		case !errors.Is(err, repository.ErrCheckoutNotFound):
			return nil, errors.Wrap(err, "failed to look up idempotency key")
		}
	}

	user, err := srv.userRepo.FindByID(ctx, input.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}

	items, err := srv.snapshotCart(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	total := entity.ComputeTotal(items)
	if !total.IsPositive() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("order total must be positive")
	}

	now := srv.now()
	checkout := &entity.Checkout{
		ID:              uuid.New(),
		UserID:          input.UserID,
		IdempotencyKey:  input.IdempotencyKey,
		Provider:        gateway.Provider(),
		Items:           items,
		ShippingAddress: input.ShippingAddress,
		TotalAmount:     total,
		Currency:        srv.currency,
		Status:          entity.CheckoutStatusCreated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := srv.checkoutRepo.Create(ctx, checkout); err != nil {
		// A concurrent request with the same key won the insert.
		if errors.Is(err, repository.ErrDuplicateCheckout) {
			existing, findErr := srv.checkoutRepo.FindByIdempotencyKey(ctx, input.UserID, input.IdempotencyKey)
			if findErr != nil {
				return nil, errors.Wrap(findErr, "failed to load checkout for idempotency key")
			}

			return srv.resume(ctx, existing)
		}

		return nil, errors.Wrap(err, "failed to create checkout")
	}

	if err := srv.openGatewayOrder(ctx, gateway, checkout, user); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Checkout initiated",
		slog.String("checkout_id", checkout.ID.String()),
		slog.String("provider", string(checkout.Provider)),
		slog.String("total", total.StringFixed(2)),
	)

	return checkoutOutput(checkout, gateway), nil
}

// resume answers a repeated request with the checkout it already created,
// retrying the gateway order if that step failed the first time.
func (srv *checkoutService) resume(ctx context.Context, checkout *entity.Checkout) (*usecase.InitiateCheckoutOutput, error) {
	gateway, err := srv.gateway(checkout.Provider)
	if err != nil {
		return nil, err
	}

	if checkout.GatewayOrderID == "" && !checkout.Status.IsTerminal() {
		user, err := srv.userRepo.FindByID(ctx, checkout.UserID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to find user")
		}
		if err := srv.openGatewayOrder(ctx, gateway, checkout, user); err != nil {
			return nil, err
		}
	}

	return checkoutOutput(checkout, gateway), nil
}

func (srv *checkoutService) openGatewayOrder(ctx context.Context, gateway service.PaymentGateway, checkout *entity.Checkout, user *entity.User) error {
	order, err := gateway.CreateOrder(ctx, service.GatewayOrderRequest{
		CheckoutID:  checkout.ID,
		AmountMinor: checkout.AmountMinor(),
		Currency:    checkout.Currency,
		Customer: service.GatewayCustomer{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Phone: checkout.ShippingAddress.Phone,
		},
	})
	if err != nil {
		srv.log(ctx).Error("Gateway order creation failed",
			slog.String("checkout_id", checkout.ID.String()),
			slog.String("provider", string(checkout.Provider)),
			slog.Any("error", err),
		)

		checkout.MarkPaymentFailed("gateway order creation failed", srv.now())
		if updateErr := srv.checkoutRepo.Update(ctx, checkout); updateErr != nil {
			srv.log(ctx).Error("Failed to mark checkout as failed", slog.Any("error", updateErr))
		}

		return domainerrors.ErrExternalService.WrapMessage(err.Error())
	}

	checkout.GatewayOrderID = order.GatewayOrderID
	checkout.PaymentSession = order.PaymentSessionID
	checkout.Status = entity.CheckoutStatusAwaitingPayment
	checkout.FailureReason = ""
	checkout.UpdatedAt = srv.now()

	if err := srv.checkoutRepo.Update(ctx, checkout); err != nil {
		return errors.Wrap(err, "failed to store gateway order")
	}

	return nil
}

func checkoutOutput(checkout *entity.Checkout, gateway service.PaymentGateway) *usecase.InitiateCheckoutOutput {
	return &usecase.InitiateCheckoutOutput{
		Checkout:         checkout,
		GatewayOrderID:   checkout.GatewayOrderID,
		PaymentSessionID: checkout.PaymentSession,
		KeyID:            gateway.PublicKey(),
		AmountMinor:      checkout.AmountMinor(),
	}
}

// snapshotCart freezes names and prices of the cart lines. The stock check
// is advisory; reservation happens on payment.
func (srv *checkoutService) snapshotCart(ctx context.Context, userID uuid.UUID) ([]entity.OrderItem, error) {
	cart, err := srv.cartRepo.FindByUser(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil, domainerrors.ErrCartEmpty
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read cart")
	}
	if cart.IsEmpty() {
		return nil, domainerrors.ErrCartEmpty
	}

	products, err := srv.productRepo.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve cart products")
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]entity.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, domainerrors.ErrProductNotFound.WithDetails(line.ProductID.String())
		}
		if !product.HasStock(line.Quantity) {
			return nil, domainerrors.ErrInsufficientStock.WithDetails(product.Name)
		}

		items = append(items, entity.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
		})
	}

	return items, nil
}

func (srv *checkoutService) VerifyPayment(ctx context.Context, input *usecase.VerifyPaymentInput) (*entity.Order, error) {
	gateway, err := srv.gateway(input.Provider)
	if err != nil {
		return nil, err
	}

	event, err := gateway.VerifyPayment(ctx, service.PaymentVerification{
		GatewayOrderID: input.GatewayOrderID,
		PaymentID:      input.PaymentID,
		Signature:      input.Signature,
	})
	if err != nil {
		return nil, mapGatewayError(err)
	}

	result, err := srv.fulfil(ctx, event, &input.UserID)
	if err != nil {
		return nil, err
	}
	if result.outcome == usecase.WebhookRejected {
		return nil, domainerrors.ErrCheckoutRejected
	}

	return result.order, nil
}

// HandleWebhook verifies the signature over the raw body before parsing it.
// It returns only after the outcome is committed.
func (srv *checkoutService) HandleWebhook(ctx context.Context, input *usecase.WebhookInput) (*usecase.WebhookOutput, error) {
	gateway, err := srv.gateway(input.Provider)
	if err != nil {
		return nil, err
	}

	if err := gateway.VerifyWebhook(input.Header, input.Body); err != nil {
		srv.log(ctx).Warn("Webhook signature rejected", slog.String("provider", string(input.Provider)), slog.Any("error", err))

		return nil, mapGatewayError(err)
	}

	event, err := gateway.ParseEvent(input.Body)
	if err != nil {
		return nil, mapGatewayError(err)
	}

	srv.log(ctx).Info("Webhook received",
		slog.String("provider", string(event.Provider)),
		slog.String("type", string(event.Type)),
		slog.String("event_id", event.EventID),
	)

	switch event.Type {
	case entity.PaymentEventSucceeded:
		result, err := srv.fulfil(ctx, event, nil)
		if err != nil {
			return nil, err
		}

		return &usecase.WebhookOutput{Outcome: result.outcome, Order: result.order}, nil

	case entity.PaymentEventFailed:
		outcome, err := srv.recordFailure(ctx, event)
		if err != nil {
			return nil, err
		}

		return &usecase.WebhookOutput{Outcome: outcome}, nil

	default:
		return &usecase.WebhookOutput{Outcome: usecase.WebhookIgnored}, nil
	}
}

type fulfilment struct {
	outcome usecase.WebhookOutcome
	order   *entity.Order
}

// fulfil turns a verified payment into exactly one order. The checkout row
// lock serialises verify calls and webhook deliveries for the same payment.
func (srv *checkoutService) fulfil(ctx context.Context, event *entity.PaymentEvent, ownerID *uuid.UUID) (*fulfilment, error) {
	var (
		result     fulfilment
		checkoutID uuid.UUID
	)

	err := srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		checkout, err := lockCheckout(ctx, repos, event)
		if err != nil {
			return err
		}
		if ownerID != nil && checkout.UserID != *ownerID {
			return repository.ErrCheckoutNotFound
		}
		checkoutID = checkout.ID

		switch checkout.Status {
		case entity.CheckoutStatusFulfilled:
			order, err := repos.OrderRepo().FindByCheckoutID(ctx, checkout.ID)
			if err != nil {
				return err
			}
			result = fulfilment{outcome: usecase.WebhookDuplicate, order: order}

			return nil
		case entity.CheckoutStatusRejected:
			result = fulfilment{outcome: usecase.WebhookRejected}

			return nil
		}

		if err := checkAmount(checkout, event); err != nil {
			return err
		}

		now := srv.now()
		err = repos.PaymentEventRepo().Record(ctx, event, checkout.ID, now)
		if err != nil && !errors.Is(err, repository.ErrDuplicatePaymentEvent) {
			return err
		}

		if err := reserveStock(ctx, repos.ProductRepo(), checkout.Items); err != nil {
			return err
		}

		order := newOrderFromCheckout(checkout, event, now)
		if err := repos.OrderRepo().Create(ctx, order); err != nil {
			return err
		}

		checkout.MarkFulfilled(order.ID, event.PaymentID, now)
		if err := repos.CheckoutRepo().Update(ctx, checkout); err != nil {
			return err
		}

		outboxEvent, err := entity.NewOutboxEvent(order.ID, entity.EventOrderCreated, entity.OrderCreatedPayload{
			OrderID:     order.ID,
			UserID:      order.UserID,
			CheckoutID:  checkout.ID,
			TotalAmount: order.TotalAmount,
			Currency:    order.Currency,
			Provider:    order.PaymentProvider,
			PaymentID:   order.PaymentID,
		}, deliverycontext.GetRequestIDFromContext(ctx), now)
		if err != nil {
			return err
		}
		if err := repos.OutboxRepo().Add(ctx, outboxEvent); err != nil {
			return err
		}

		result = fulfilment{outcome: usecase.WebhookFulfilled, order: order}

		return nil
	})

	var shortage *stockShortageError
	if errors.As(err, &shortage) {
		srv.log(ctx).Warn("Payment captured but stock is gone, rejecting checkout",
			slog.String("checkout_id", checkoutID.String()),
			slog.String("product_id", shortage.productID.String()),
		)

		return srv.reject(ctx, checkoutID, event, shortage.Error())
	}
	if err != nil {
		return nil, mapCheckoutError(err)
	}

	if result.outcome == usecase.WebhookFulfilled {
		srv.afterFulfilment(ctx, result.order)
	}

	return &result, nil
}

// reject records, in its own transaction, that a captured payment could not
// be honoured. The checkout.rejected event drives the refund.
func (srv *checkoutService) reject(ctx context.Context, checkoutID uuid.UUID, event *entity.PaymentEvent, reason string) (*fulfilment, error) {
	var result fulfilment

	err := srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		checkout, err := repos.CheckoutRepo().FindByIDForUpdate(ctx, checkoutID)
		if err != nil {
			return err
		}

		// Someone else settled it between the two transactions.
		switch checkout.Status {
		case entity.CheckoutStatusFulfilled:
			order, err := repos.OrderRepo().FindByCheckoutID(ctx, checkout.ID)
			if err != nil {
				return err
			}
			result = fulfilment{outcome: usecase.WebhookDuplicate, order: order}

			return nil
		case entity.CheckoutStatusRejected:
			result = fulfilment{outcome: usecase.WebhookRejected}

			return nil
		}

		now := srv.now()
		err = repos.PaymentEventRepo().Record(ctx, event, checkout.ID, now)
		if err != nil && !errors.Is(err, repository.ErrDuplicatePaymentEvent) {
			return err
		}

		checkout.MarkRejected(event.PaymentID, reason, now)
		if err := repos.CheckoutRepo().Update(ctx, checkout); err != nil {
			return err
		}

		outboxEvent, err := entity.NewOutboxEvent(checkout.ID, entity.EventCheckoutRejected, entity.CheckoutRejectedPayload{
			CheckoutID:     checkout.ID,
			UserID:         checkout.UserID,
			Provider:       checkout.Provider,
			GatewayOrderID: checkout.GatewayOrderID,
			PaymentID:      event.PaymentID,
			AmountMinor:    checkout.AmountMinor(),
			Currency:       checkout.Currency,
			Reason:         reason,
		}, deliverycontext.GetRequestIDFromContext(ctx), now)
		if err != nil {
			return err
		}
		if err := repos.OutboxRepo().Add(ctx, outboxEvent); err != nil {
			return err
		}

		result = fulfilment{outcome: usecase.WebhookRejected}

		return nil
	})
	if err != nil {
		return nil, mapCheckoutError(err)
	}

	return &result, nil
}

// recordFailure marks a non-terminal checkout as PaymentFailed. The user
// may still pay again for the same checkout.
func (srv *checkoutService) recordFailure(ctx context.Context, event *entity.PaymentEvent) (usecase.WebhookOutcome, error) {
	outcome := usecase.WebhookPaymentFailed

	err := srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		checkout, err := lockCheckout(ctx, repos, event)
		if err != nil {
			return err
		}
		if checkout.Status.IsTerminal() {
			outcome = usecase.WebhookDuplicate

			return nil
		}

		now := srv.now()
		err = repos.PaymentEventRepo().Record(ctx, event, checkout.ID, now)
		if errors.Is(err, repository.ErrDuplicatePaymentEvent) {
			outcome = usecase.WebhookDuplicate

			return nil
		}
		if err != nil {
			return err
		}

		reason := event.Reason
		if reason == "" {
			reason = "payment failed"
		}
		checkout.MarkPaymentFailed(reason, now)

		return repos.CheckoutRepo().Update(ctx, checkout)
	})
	if err != nil {
		return "", mapCheckoutError(err)
	}

	return outcome, nil
}

// afterFulfilment runs the post-commit steps. None of them can undo the order.
func (srv *checkoutService) afterFulfilment(ctx context.Context, order *entity.Order) {
	// The order is committed; finish the cleanup even if the caller went away.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lifecycle.DefaultTimeout)
	defer cancel()

	if err := srv.cartRepo.DeleteByUser(ctx, order.UserID); err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		srv.log(ctx).Error("Failed to clear cart after order",
			slog.String("order_id", order.ID.String()),
			slog.Any("error", err),
		)
	}

	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	if err := srv.cache.Delete(ctx, ids...); err != nil {
		srv.log(ctx).Warn("Product cache invalidation failed", slog.Any("error", err))
	}

	summary, err := summarizeOrder(ctx, srv.textGen, order, srv.summaryTimeout)
	if err != nil {
		srv.log(ctx).Debug("Order summary skipped", slog.String("order_id", order.ID.String()), slog.Any("error", err))

		return
	}
	if err := srv.orderRepo.UpdateSummary(ctx, order.ID, summary); err != nil {
		srv.log(ctx).Warn("Failed to store order summary", slog.Any("error", err))

		return
	}
	order.Summary = summary
}

func lockCheckout(ctx context.Context, repos repository.RepositoryFactory, event *entity.PaymentEvent) (*entity.Checkout, error) {
	if event.CheckoutID != nil {
		checkout, err := repos.CheckoutRepo().FindByIDForUpdate(ctx, *event.CheckoutID)
		if err != nil {
			return nil, err
		}
		if checkout.Provider != event.Provider ||
			(event.GatewayOrderID != "" && checkout.GatewayOrderID != "" && checkout.GatewayOrderID != event.GatewayOrderID) {
			return nil, errors.Wrap(repository.ErrCheckoutNotFound, "event does not match checkout")
		}

		return checkout, nil
	}

	return repos.CheckoutRepo().FindByGatewayOrderIDForUpdate(ctx, event.Provider, event.GatewayOrderID)
}

// checkAmount compares in minor units. A zero amount means the gateway did
// not report one; the gateway order itself fixed the amount.
func checkAmount(checkout *entity.Checkout, event *entity.PaymentEvent) error {
	if event.AmountMinor != 0 && event.AmountMinor != checkout.AmountMinor() {
		return domainerrors.ErrPaymentAmountMismatch.WithDetails(fmt.Sprintf("expected %d, got %d", checkout.AmountMinor(), event.AmountMinor))
	}
	if event.Currency != "" && !strings.EqualFold(event.Currency, checkout.Currency) {
		return domainerrors.ErrPaymentAmountMismatch.WithDetails(fmt.Sprintf("expected %s, got %s", checkout.Currency, event.Currency))
	}

	return nil
}

// sortedByProduct returns a copy of items ordered by product id. Every
// transaction that touches stock walks lines in this order, so product row
// locks are always taken in the same sequence.
func sortedByProduct(items []entity.OrderItem) []entity.OrderItem {
	sorted := slices.Clone(items)
	slices.SortFunc(sorted, func(a, b entity.OrderItem) int {
		return strings.Compare(a.ProductID.String(), b.ProductID.String())
	})

	return sorted
}

// reserveStock decrements every line in product id order.
func reserveStock(ctx context.Context, products repository.ProductRepository, items []entity.OrderItem) error {
	for _, item := range sortedByProduct(items) {
		err := products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if errors.Is(err, repository.ErrInsufficientStock) || errors.Is(err, repository.ErrProductNotFound) {
			return &stockShortageError{productID: item.ProductID, name: item.Name, cause: repository.ErrInsufficientStock}
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func newOrderFromCheckout(checkout *entity.Checkout, event *entity.PaymentEvent, now time.Time) *entity.Order {
	paidAt := event.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}

	return &entity.Order{
		ID:              uuid.New(),
		UserID:          checkout.UserID,
		CheckoutID:      checkout.ID,
		Items:           slices.Clone(checkout.Items),
		ShippingAddress: checkout.ShippingAddress,
		TotalAmount:     checkout.TotalAmount,
		Currency:        checkout.Currency,
		Status:          entity.OrderStatusPending,
		PaymentProvider: checkout.Provider,
		PaymentMethod:   event.Method,
		PaymentID:       event.PaymentID,
		PaymentStatus:   entity.PaymentStatusPaid,
		PaidAt:          &paidAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func mapGatewayError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidSignature):
		return domainerrors.ErrInvalidSignature
	case errors.Is(err, service.ErrMalformedEvent):
		return domainerrors.ErrMalformedPayload.WithDetails(err.Error())
	default:
		return domainerrors.ErrExternalService.WrapMessage(err.Error())
	}
}

func mapCheckoutError(err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, repository.ErrCheckoutNotFound):
		return domainerrors.ErrCheckoutNotFound
	case errors.Is(err, repository.ErrInsufficientStock):
		return domainerrors.ErrInsufficientStock
	default:
		return errors.Wrap(err, "checkout transaction failed")
	}
}
