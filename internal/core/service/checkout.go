package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/LeomarSanguenza/pos-core/internal/core/domain"
	"github.com/LeomarSanguenza/pos-core/internal/port"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrItemOutOfRange   = errors.New("line item index out of range")
)

type CheckoutState string

const (
	StateEmpty      CheckoutState = "empty"
	StateBuilding   CheckoutState = "building"
	StateSubmitting CheckoutState = "submitting"
	StateCompleted  CheckoutState = "completed"
	StateFailed     CheckoutState = "failed"
)

// Checkout drives one checkout session: Empty -> Building while the cart
// mutates, Submitting while the order request is in flight, then
// Completed (cart cleared, order returned) or Failed (cart preserved so
// the operator can edit or resubmit).
type Checkout struct {
	orders port.OrderRepository
	log    *logrus.Logger

	mu    sync.Mutex
	cart  domain.Cart
	state CheckoutState
}

func NewCheckout(orders port.OrderRepository, log *logrus.Logger) *Checkout {
	if log == nil {
		log = logrus.New()
	}
	return &Checkout{
		orders: orders,
		log:    log,
		cart:   domain.Cart{PaymentMethod: domain.PaymentCash},
		state:  StateEmpty,
	}
}

// AddItem validates and prices the product's customizations, then merges
// the resulting line item into the cart.
func (c *Checkout) AddItem(p domain.Product, chosen map[int64]string) error {
	item, err := NewLineItem(p, chosen)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return ErrSubmitInProgress
	}
	c.cart.Add(item)
	c.state = StateBuilding
	return nil
}

// SetQuantity sets the quantity of line item i; zero or less removes it.
func (c *Checkout) SetQuantity(i, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return ErrSubmitInProgress
	}
	if i < 0 || i >= len(c.cart.Items) {
		return ErrItemOutOfRange
	}
	c.cart.SetQuantity(i, quantity)
	c.syncStateLocked()
	return nil
}

func (c *Checkout) RemoveItem(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return ErrSubmitInProgress
	}
	if i < 0 || i >= len(c.cart.Items) {
		return ErrItemOutOfRange
	}
	c.cart.Remove(i)
	c.syncStateLocked()
	return nil
}

func (c *Checkout) SetCustomerName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart.CustomerName = name
}

func (c *Checkout) SetPaymentMethod(m domain.PaymentMethod) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart.PaymentMethod = m
}

// Cart returns a snapshot of the current cart.
func (c *Checkout) Cart() domain.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := c.cart
	snapshot.Items = make([]domain.LineItem, len(c.cart.Items))
	copy(snapshot.Items, c.cart.Items)
	return snapshot
}

func (c *Checkout) Total() decimal.Decimal {
	return CartTotal(c.Cart())
}

func (c *Checkout) State() CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reset abandons the session: the cart empties and the machine returns
// to Empty.
func (c *Checkout) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart = domain.Cart{PaymentMethod: domain.PaymentCash}
	c.state = StateEmpty
}

// Submit serializes the cart and commits it through the order API. Each
// submission carries a fresh idempotency key that stays constant across
// the transport's retries, so a resent request cannot double-charge. On
// success the cart clears atomically; on failure it is left untouched.
func (c *Checkout) Submit(ctx context.Context) (*domain.Order, error) {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	if c.cart.Empty() {
		c.mu.Unlock()
		return nil, ErrEmptyCart
	}
	sub := domain.NewOrderSubmission(c.cart)
	c.state = StateSubmitting
	c.mu.Unlock()

	idempotencyKey := uuid.NewString()
	order, err := c.orders.SubmitOrder(ctx, sub, idempotencyKey)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateFailed
		c.log.WithError(err).Warn("order submission failed, cart preserved")
		return nil, err
	}

	c.cart = domain.Cart{PaymentMethod: domain.PaymentCash}
	c.state = StateCompleted
	c.log.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"total":        order.Total.String(),
	}).Info("order completed")
	return order, nil
}

// syncStateLocked keeps the Empty/Building pair in step with the cart.
// Mutating after a failed submit implicitly re-enters Building.
func (c *Checkout) syncStateLocked() {
	if c.cart.Empty() {
		c.state = StateEmpty
	} else {
		c.state = StateBuilding
	}
}
