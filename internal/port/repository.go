package port

import (
	"context"

	"github.com/LeomarSanguenza/pos-core/internal/core/domain"
)

type CatalogRepository interface {
	// ListCategories returns the active categories
	ListCategories(ctx context.Context) ([]domain.Category, error)

	// ListProducts returns every sellable product with its options
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type OrderRepository interface {
	// SubmitOrder commits the submission; idempotencyKey makes resubmission
	// of the same payload safe across retries
	SubmitOrder(ctx context.Context, sub domain.OrderSubmission, idempotencyKey string) (*domain.Order, error)
}
