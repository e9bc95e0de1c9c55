package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentCard          PaymentMethod = "card"
	PaymentDigitalWallet PaymentMethod = "digital_wallet"
)

// Selection is one chosen customization value, frozen at the moment the
// line item was built. It is never mutated afterwards; re-customizing an
// item produces a new selection set.
type Selection struct {
	OptionID      int64           `json:"product_option_id"`
	OptionName    string          `json:"option_name"`
	SelectedValue string          `json:"selected_value"`
	PriceModifier decimal.Decimal `json:"price_modifier"`
}

type LineItem struct {
	Product    Product
	Quantity   int
	Selections []Selection
	UnitPrice  decimal.Decimal
}

// LineTotal is the unit price multiplied by the quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart is the state of one checkout session. It is a plain value; callers
// that share a cart across goroutines guard it themselves (the Checkout
// service does).
type Cart struct {
	Items         []LineItem
	CustomerName  string
	PaymentMethod PaymentMethod
}

// Add merges the item into the cart. Two line items are the same cart
// entry when they reference the same product and carry value-identical
// selections; selection order does not matter. Merging sums quantities.
func (c *Cart) Add(item LineItem) {
	key := selectionFingerprint(item.Selections)
	for i := range c.Items {
		if c.Items[i].Product.ID == item.Product.ID &&
			selectionFingerprint(c.Items[i].Selections) == key {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// SetQuantity sets the quantity of the line item at index i. A quantity
// of zero or less removes the item.
func (c *Cart) SetQuantity(i, quantity int) {
	if i < 0 || i >= len(c.Items) {
		return
	}
	if quantity <= 0 {
		c.Remove(i)
		return
	}
	c.Items[i].Quantity = quantity
}

func (c *Cart) Remove(i int) {
	if i < 0 || i >= len(c.Items) {
		return
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

func (c Cart) Empty() bool {
	return len(c.Items) == 0
}

// selectionFingerprint builds a canonical encoding of a selection set:
// sorted by option id, so the order selections were made in never affects
// merge identity.
func selectionFingerprint(sels []Selection) string {
	sorted := make([]Selection, len(sels))
	copy(sorted, sels)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].OptionID < sorted[b].OptionID })

	var sb strings.Builder
	for _, s := range sorted {
		fmt.Fprintf(&sb, "%d=%s;", s.OptionID, s.SelectedValue)
	}
	return sb.String()
}
