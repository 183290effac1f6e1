package impl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"
)

const (
	defaultSummaryTimeout = 5 * time.Second
	summaryTokens         = 120
)

// orderSummaryPrompt asks for a one-paragraph recap of a single order.
func orderSummaryPrompt(order *entity.Order) string {
	var b strings.Builder
	b.WriteString("Summarize this order for the customer in one or two friendly sentences:\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %dx %s at %s %s\n", item.Quantity, item.Name, item.UnitPrice.StringFixed(2), order.Currency)
	}
	fmt.Fprintf(&b, "Total: %s %s\n", order.TotalAmount.StringFixed(2), order.Currency)

	return b.String()
}

// summarizeOrder bounds the generator call by timeout. It never fails the
// caller: an error yields an empty summary.
func summarizeOrder(ctx context.Context, gen service.TextGenerator, order *entity.Order, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = defaultSummaryTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return gen.Complete(ctx, orderSummaryPrompt(order), summaryTokens)
}
