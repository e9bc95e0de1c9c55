package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeomarSanguenza/pos-core/internal/core/domain"
)

// Mock OrderRepository
type mockOrderRepo struct {
	mu       sync.Mutex
	failures int
	err      error
	calls    int
	keys     []string
	lastSub  domain.OrderSubmission
}

func (m *mockOrderRepo) SubmitOrder(ctx context.Context, sub domain.OrderSubmission, idempotencyKey string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.keys = append(m.keys, idempotencyKey)
	m.lastSub = sub
	if m.failures > 0 {
		m.failures--
		return nil, m.err
	}
	return &domain.Order{OrderNumber: "ORD-000001"}, nil
}

func TestCheckout_StatesFollowCart(t *testing.T) {
	c := NewCheckout(&mockOrderRepo{}, nil)
	assert.Equal(t, StateEmpty, c.State())

	require.NoError(t, c.AddItem(latte(), nil))
	assert.Equal(t, StateBuilding, c.State())

	require.NoError(t, c.SetQuantity(0, 0))
	assert.Equal(t, StateEmpty, c.State())
}

func TestCheckout_SubmitEmptyCartIsDisallowed(t *testing.T) {
	repo := &mockOrderRepo{}
	c := NewCheckout(repo, nil)

	_, err := c.Submit(context.Background())
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, repo.calls, "no request must leave the process")
}

func TestCheckout_SubmitSuccessClearsCart(t *testing.T) {
	repo := &mockOrderRepo{}
	c := NewCheckout(repo, nil)
	require.NoError(t, c.AddItem(latte(), nil))
	c.SetCustomerName("Ana")
	c.SetPaymentMethod(domain.PaymentCard)

	order, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ORD-000001", order.OrderNumber)
	assert.Equal(t, StateCompleted, c.State())
	assert.True(t, c.Cart().Empty())

	require.NotNil(t, repo.lastSub.CustomerName)
	assert.Equal(t, "Ana", *repo.lastSub.CustomerName)
	assert.Equal(t, domain.PaymentCard, repo.lastSub.PaymentMethod)
	assert.Equal(t, domain.PaymentStatusPaid, repo.lastSub.PaymentStatus)
	assert.Equal(t, domain.OrderStatusCompleted, repo.lastSub.Status)
}

func TestCheckout_SubmitFailurePreservesCart(t *testing.T) {
	repo := &mockOrderRepo{failures: 1, err: errors.New("network down")}
	c := NewCheckout(repo, nil)
	require.NoError(t, c.AddItem(latte(), nil))
	require.NoError(t, c.SetQuantity(0, 2))

	_, err := c.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateFailed, c.State())

	cart := c.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity, "cart must survive a failed submit unchanged")

	// Resubmission from Failed works without any explicit recovery step.
	order, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, order)
	assert.Equal(t, StateCompleted, c.State())
	assert.True(t, c.Cart().Empty())
}

func TestCheckout_FreshIdempotencyKeyPerSubmission(t *testing.T) {
	repo := &mockOrderRepo{failures: 1, err: errors.New("boom")}
	c := NewCheckout(repo, nil)
	require.NoError(t, c.AddItem(latte(), nil))

	_, _ = c.Submit(context.Background())
	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	require.Len(t, repo.keys, 2)
	assert.NotEmpty(t, repo.keys[0])
	assert.NotEmpty(t, repo.keys[1])
	assert.NotEqual(t, repo.keys[0], repo.keys[1],
		"an explicit resubmission is a new order attempt, not a replay")
}

func TestCheckout_NoPricesOnTheWire(t *testing.T) {
	repo := &mockOrderRepo{}
	c := NewCheckout(repo, nil)
	require.NoError(t, c.AddItem(latte(), map[int64]string{11: "Large", 12: "Oat Milk"}))

	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	require.Len(t, repo.lastSub.Items, 1)
	item := repo.lastSub.Items[0]
	assert.Equal(t, int64(1), item.ProductID)
	require.Len(t, item.Customizations, 2)
	assert.Equal(t, "Large", item.Customizations[0].SelectedValue)
}

func TestCheckout_RequiredOptionBlocksAdd(t *testing.T) {
	p := latte()
	p.Options[0].DefaultValue = ""
	c := NewCheckout(&mockOrderRepo{}, nil)

	err := c.AddItem(p, nil)
	require.ErrorIs(t, err, ErrRequiredOption)
	assert.Equal(t, StateEmpty, c.State(), "validation failures never create line items")
}
