package api

import (
	"context"
	"fmt"
	"time"

	"github.com/LeomarSanguenza/pos-core/internal/core/domain"
)

// categoriesTTL matches how rarely the category list changes in practice.
const categoriesTTL = 10 * time.Minute

// CatalogAPI implements port.CatalogRepository over the HTTP client.
// Categories go through the cached read path; the product list is loaded
// fresh, it is the screen's source of truth for prices.
type CatalogAPI struct {
	client *Client
}

func NewCatalogAPI(client *Client) *CatalogAPI {
	return &CatalogAPI{client: client}
}

func (a *CatalogAPI) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := a.client.GetCached(ctx, "/categories?is_active=1", categoriesTTL, &categories); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (a *CatalogAPI) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := a.client.Get(ctx, "/pos/products", &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// OrderAPI implements port.OrderRepository over the HTTP client.
type OrderAPI struct {
	client *Client
}

func NewOrderAPI(client *Client) *OrderAPI {
	return &OrderAPI{client: client}
}

func (a *OrderAPI) SubmitOrder(ctx context.Context, sub domain.OrderSubmission, idempotencyKey string) (*domain.Order, error) {
	var resp struct {
		Order domain.Order `json:"order"`
	}
	if err := a.client.PostIdempotent(ctx, "/orders", idempotencyKey, sub, &resp); err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}
	return &resp.Order, nil
}
