package service

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/LeomarSanguenza/pos-core/internal/core/domain"
	"github.com/LeomarSanguenza/pos-core/internal/port"
)

// Catalog loads and holds the read-only product catalog for the POS
// screen. Filtering happens client-side over the loaded snapshot, the
// backend is only hit by Warm.
type Catalog struct {
	repo port.CatalogRepository
	log  *logrus.Logger

	mu         sync.RWMutex
	products   []domain.Product
	categories []domain.Category
}

func NewCatalog(repo port.CatalogRepository, log *logrus.Logger) *Catalog {
	if log == nil {
		log = logrus.New()
	}
	return &Catalog{repo: repo, log: log}
}

// Warm fetches products and categories concurrently and replaces the
// held snapshot. A failed warm leaves the previous snapshot in place.
func (s *Catalog) Warm(ctx context.Context) error {
	var (
		products   []domain.Product
		categories []domain.Category
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.repo.ListProducts(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.repo.ListCategories(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	s.products = products
	s.categories = categories
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"products":   len(products),
		"categories": len(categories),
	}).Info("catalog warmed")
	return nil
}

func (s *Catalog) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Catalog) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Filter narrows the snapshot by category (0 means all) and a
// case-insensitive search over product and category names.
func (s *Catalog) Filter(categoryID int64, search string) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search = strings.ToLower(strings.TrimSpace(search))
	var out []domain.Product
	for _, p := range s.products {
		if categoryID != 0 && p.Category.ID != categoryID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Category.Name), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}
