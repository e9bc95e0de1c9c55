// Command stubapi is an in-memory stand-in for the shop backend. It
// serves the catalog, accepts logins and order submissions, and honors
// idempotency keys, enough to run a POS terminal locally without the
// real API.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/LeomarSanguenza/pos-core/internal/core/domain"
	"github.com/LeomarSanguenza/pos-core/internal/core/service"
	"github.com/LeomarSanguenza/pos-core/internal/session"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
	}

	taxRate, err := decimal.NewFromString(getenv("STUB_TAX_RATE", "0.12"))
	if err != nil {
		log.Fatalf("invalid STUB_TAX_RATE: %v", err)
	}

	srv := newServer(log, taxRate)

	addr := getenv("STUB_ADDR", ":8000")
	log.Infof("stub API listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		log.Fatal(err)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type server struct {
	log     *logrus.Logger
	taxRate decimal.Decimal

	mu         sync.Mutex
	tokens     map[string]session.User
	orders     map[string]*domain.Order // idempotency key -> order
	orderSeq   int64
	products   []domain.Product
	categories []domain.Category
}

func newServer(log *logrus.Logger, taxRate decimal.Decimal) *server {
	s := &server{
		log:     log,
		taxRate: taxRate,
		tokens:  make(map[string]session.User),
		orders:  make(map[string]*domain.Order),
	}
	s.categories, s.products = seedCatalog()
	return s
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/api/login", s.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/api/user", s.handleUser)
		r.Get("/api/categories", s.handleCategories)
		r.Get("/api/pos/products", s.handleProducts)
		r.Post("/api/orders", s.handleCreateOrder)
	})
	return r
}

func (s *server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		_, ok := s.tokens[token]
		s.mu.Unlock()
		if token == "" || !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthenticated"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "email and password are required"})
		return
	}

	user := session.User{ID: 1, Name: "Counter Staff", Email: req.Email}
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = user
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func (s *server) handleUser(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	user := s.tokens[token]
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.categories)
}

func (s *server) handleProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.products)
}

// handleCreateOrder prices the submission server-side; client prices are
// never trusted. Replays carrying a known Idempotency-Key return the
// original order instead of creating a second one.
func (s *server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	idemKey := r.Header.Get("Idempotency-Key")

	s.mu.Lock()
	if idemKey != "" {
		if existing, ok := s.orders[idemKey]; ok {
			s.mu.Unlock()
			writeJSON(w, http.StatusOK, map[string]any{"order": existing})
			return
		}
	}
	s.mu.Unlock()

	var sub domain.OrderSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid order payload"})
		return
	}
	if len(sub.Items) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "order has no items"})
		return
	}

	order, err := s.buildOrder(sub)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": err.Error()})
		return
	}

	s.mu.Lock()
	s.orderSeq++
	order.ID = s.orderSeq
	order.OrderNumber = fmt.Sprintf("ORD-%06d", s.orderSeq)
	if idemKey != "" {
		s.orders[idemKey] = order
	}
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"total":        order.Total.String(),
	}).Info("order created")
	writeJSON(w, http.StatusCreated, map[string]any{"order": order})
}

func (s *server) buildOrder(sub domain.OrderSubmission) (*domain.Order, error) {
	subtotal := decimal.Zero
	items := make([]domain.OrderItem, 0, len(sub.Items))

	for _, item := range sub.Items {
		product, ok := s.findProduct(item.ProductID)
		if !ok {
			return nil, fmt.Errorf("unknown product %d", item.ProductID)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("invalid quantity for product %d", item.ProductID)
		}

		selections, err := resolveSelections(product, item.Customizations)
		if err != nil {
			return nil, err
		}
		unitPrice := service.UnitPrice(product, selections)
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)

		items = append(items, domain.OrderItem{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Quantity:       item.Quantity,
			UnitPrice:      unitPrice,
			LineTotal:      lineTotal,
			Customizations: selections,
		})
	}

	tax := subtotal.Mul(s.taxRate).Round(2)
	customer := ""
	if sub.CustomerName != nil {
		customer = *sub.CustomerName
	}
	return &domain.Order{
		CustomerName:  customer,
		Items:         items,
		Subtotal:      subtotal,
		Tax:           tax,
		Discount:      decimal.Zero,
		Total:         subtotal.Add(tax),
		PaymentMethod: sub.PaymentMethod,
		Status:        sub.Status,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

func (s *server) findProduct(id int64) (domain.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// resolveSelections maps wire customizations back onto the product's own
// options; the authoritative price modifier comes from the catalog.
func resolveSelections(p domain.Product, customizations []domain.SubmissionCustomization) ([]domain.Selection, error) {
	selections := make([]domain.Selection, 0, len(customizations))
	for _, c := range customizations {
		var opt *domain.ProductOption
		for i := range p.Options {
			if p.Options[i].ID == c.ProductOptionID {
				opt = &p.Options[i]
				break
			}
		}
		if opt == nil {
			return nil, fmt.Errorf("product %d has no option %d", p.ID, c.ProductOptionID)
		}
		selections = append(selections, domain.Selection{
			OptionID:      opt.ID,
			OptionName:    opt.Name,
			SelectedValue: c.SelectedValue,
			PriceModifier: opt.PriceModifier,
		})
	}
	return selections, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func seedCatalog() ([]domain.Category, []domain.Product) {
	categories := []domain.Category{
		{ID: 1, Name: "Coffee"},
		{ID: 2, Name: "Tea"},
		{ID: 3, Name: "Pastries"},
	}

	sizeValues := []string{"Small", "Medium", "Large", "Extra Large"}
	milkValues := []string{"None", "Whole Milk", "Oat Milk", "Almond Milk"}

	products := []domain.Product{
		{
			ID:       1,
			Name:     "Latte",
			Price:    decimal.NewFromFloat(4.00),
			Category: categories[0],
			Options: []domain.ProductOption{
				{
					ID: 11, Name: "Size", Type: domain.OptionTypeSelect,
					AllowedValues: sizeValues, DefaultValue: "Medium",
					IsRequired: true, SortOrder: 1,
				},
				{
					ID: 12, Name: "Milk", Type: domain.OptionTypeSelect,
					AllowedValues: milkValues, DefaultValue: "Whole Milk",
					PriceModifier: decimal.NewFromFloat(0.50), SortOrder: 2,
				},
				{
					ID: 13, Name: "Notes", Type: domain.OptionTypeText, SortOrder: 3,
				},
			},
		},
		{
			ID:       2,
			Name:     "Americano",
			Price:    decimal.NewFromFloat(3.25),
			Category: categories[0],
			Options: []domain.ProductOption{
				{
					ID: 21, Name: "Size", Type: domain.OptionTypeSelect,
					AllowedValues: sizeValues, DefaultValue: "Medium",
					IsRequired: true, SortOrder: 1,
				},
			},
		},
		{
			ID:       3,
			Name:     "Earl Grey",
			Price:    decimal.NewFromFloat(2.75),
			Category: categories[1],
			Options: []domain.ProductOption{
				{
					ID: 31, Name: "Size", Type: domain.OptionTypeSelect,
					AllowedValues: sizeValues[:3], DefaultValue: "Medium",
					IsRequired: true, SortOrder: 1,
				},
			},
		},
		{
			ID:       4,
			Name:     "Butter Croissant",
			Price:    decimal.NewFromFloat(2.50),
			Category: categories[2],
		},
	}
	return categories, products
}
