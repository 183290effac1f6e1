package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const (
	maxSummarizedOrders = 50
	reportTokens        = 400
)

type assistantService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	textGen   service.TextGenerator
	logger    *slog.Logger
}

// AssistantServiceParams holds dependencies for AssistantService, injected by Fx.
type AssistantServiceParams struct {
	fx.In

	OrderRepo repository.OrderRepository
	UserRepo  repository.UserRepository
	TextGen   service.TextGenerator
	Logger    *slog.Logger
}

// NewAssistantService creates a new assistant service instance
func NewAssistantService(params AssistantServiceParams) usecase.AssistantUsecase {
	return &assistantService{
		orderRepo: params.OrderRepo,
		userRepo:  params.UserRepo,
		textGen:   params.TextGen,
		logger:    params.Logger,
	}
}

func (srv *assistantService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *assistantService) GenerateProductDescription(ctx context.Context, input *usecase.ProductDescriptionInput) (string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(input.Features) == 0 {
		return "", domainerrors.ErrValidationFailed.WithDetails("name and features are required")
	}

	prompt := fmt.Sprintf("Generate a compelling product description for a product named %q. The product has the following key features:\n%s",
		name, strings.Join(input.Features, ", "))

	text, err := srv.textGen.Complete(ctx, prompt, 0)
	if err != nil {
		srv.log(ctx).Warn("Product description generation failed", slog.Any("error", err))

		return "", domainerrors.ErrExternalService.WrapMessage("failed to generate description")
	}

	return text, nil
}

// SummarizeOrders writes a short report over the given orders. Unknown ids
// are skipped; if none are known the call fails with ORDER_NOT_FOUND.
func (srv *assistantService) SummarizeOrders(ctx context.Context, orderIDs []uuid.UUID) (string, error) {
	if len(orderIDs) == 0 {
		return "", domainerrors.ErrValidationFailed.WithDetails("orderIds must not be empty")
	}
	if len(orderIDs) > maxSummarizedOrders {
		return "", domainerrors.ErrValidationFailed.WithDetails(fmt.Sprintf("at most %d orders can be summarized", maxSummarizedOrders))
	}

	orders, err := srv.orderRepo.FindByIDs(ctx, orderIDs)
	if err != nil {
		return "", errors.Wrap(err, "failed to load orders")
	}
	if len(orders) == 0 {
		return "", domainerrors.ErrOrderNotFound
	}

	userIDs := make([]uuid.UUID, 0, len(orders))
	for _, order := range orders {
		userIDs = append(userIDs, order.UserID)
	}
	users, err := srv.userRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return "", errors.Wrap(err, "failed to load order owners")
	}
	emails := make(map[uuid.UUID]string, len(users))
	for _, user := range users {
		emails[user.ID] = user.Email
	}

	text, err := srv.textGen.Complete(ctx, ordersReportPrompt(orders, emails), reportTokens)
	if err != nil {
		srv.log(ctx).Warn("Order summary generation failed", slog.Int("orders", len(orders)), slog.Any("error", err))

		return "", domainerrors.ErrExternalService.WrapMessage("failed to summarize orders")
	}

	return text, nil
}

func ordersReportPrompt(orders []*entity.Order, emails map[uuid.UUID]string) string {
	var b strings.Builder
	b.WriteString("Summarize the following order details into a brief report:\n")
	for i, order := range orders {
		lines := make([]string, 0, len(order.Items))
		for _, item := range order.Items {
			lines = append(lines, fmt.Sprintf("%dx %s", item.Quantity, item.Name))
		}

		email := emails[order.UserID]
		if email == "" {
			email = "unknown customer"
		}
		fmt.Fprintf(&b, "Order %d by %s: %s, total %s %s, status %s\n",
			i+1, email, strings.Join(lines, ", "), order.TotalAmount.StringFixed(2), order.Currency, order.Status)
	}

	return b.String()
}
