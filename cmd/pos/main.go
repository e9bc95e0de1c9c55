// Command pos wires the full client stack against a running backend and
// walks one sale through it: login, catalog warm-up, a customized cart,
// submission. It doubles as the reference composition root.
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/LeomarSanguenza/pos-core/internal/adapter/api"
	"github.com/LeomarSanguenza/pos-core/internal/adapter/cache"
	"github.com/LeomarSanguenza/pos-core/internal/core/domain"
	"github.com/LeomarSanguenza/pos-core/internal/core/service"
	"github.com/LeomarSanguenza/pos-core/internal/port"
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

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Terminals in one shop can share a Redis-backed cache; a single
	// terminal runs fine on the in-process one.
	var requestCache port.Cache = cache.NewMemory()
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("redis unreachable, falling back to in-memory cache")
		} else {
			requestCache = cache.NewRedis(rdb)
			log.Info("using redis request cache")
		}
	}

	sess := session.New()
	sess.OnInvalidate(func() {
		log.Warn("session invalidated, operator must log in again")
	})

	client := api.NewClient(api.Config{
		BaseURL: getenv("API_URL", "http://localhost:8000/api"),
	}, sess, requestCache, log)

	// Login
	var login struct {
		Token string       `json:"token"`
		User  session.User `json:"user"`
	}
	err := client.Post(ctx, "/login", map[string]string{
		"email":    getenv("POS_EMAIL", "staff@example.com"),
		"password": getenv("POS_PASSWORD", "secret"),
	}, &login)
	if err != nil {
		log.WithError(err).Fatal("login failed")
	}
	sess.SetCredentials(login.Token, &login.User)
	log.WithField("user", login.User.Name).Info("logged in")

	// Catalog
	catalog := service.NewCatalog(api.NewCatalogAPI(client), log)
	if err := catalog.Warm(ctx); err != nil {
		log.WithError(err).Fatal("catalog warm-up failed")
	}

	products := catalog.Products()
	if len(products) == 0 {
		log.Fatal("catalog is empty")
	}

	// One sale: first customizable product with its defaults, doubled up.
	checkout := service.NewCheckout(api.NewOrderAPI(client), log)
	product := products[0]
	if err := checkout.AddItem(product, nil); err != nil {
		log.WithError(err).Fatal("add item failed")
	}
	if err := checkout.SetQuantity(0, 2); err != nil {
		log.WithError(err).Fatal("set quantity failed")
	}
	checkout.SetCustomerName(getenv("POS_CUSTOMER", "Walk-in Customer"))
	checkout.SetPaymentMethod(domain.PaymentCash)

	log.WithFields(logrus.Fields{
		"product": product.Name,
		"total":   checkout.Total().String(),
	}).Info("cart ready")

	order, err := checkout.Submit(ctx)
	if err != nil {
		log.WithError(err).Fatal("order submission failed")
	}
	log.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"subtotal":     order.Subtotal.String(),
		"tax":          order.Tax.String(),
		"total":        order.Total.String(),
	}).Info("sale complete")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
