package usecase

import (
	"context"

	"github.com/google/uuid"
)

// ProductDescriptionInput names a product and its selling points.
type ProductDescriptionInput struct {
	Name     string
	Features []string
}

// AssistantUsecase produces generated text for the catalog and admins.
type AssistantUsecase interface {
	GenerateProductDescription(ctx context.Context, input *ProductDescriptionInput) (string, error)
	SummarizeOrders(ctx context.Context, orderIDs []uuid.UUID) (string, error)
}
