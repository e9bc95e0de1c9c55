package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusUnpaid PaymentStatus = "unpaid"
)

// SubmissionCustomization is the wire form of one selection; the price
// modifier is deliberately absent, the server re-resolves it.
type SubmissionCustomization struct {
	ProductOptionID int64  `json:"product_option_id"`
	SelectedValue   string `json:"selected_value"`
}

type SubmissionItem struct {
	ProductID      int64                     `json:"product_id"`
	Quantity       int                       `json:"quantity"`
	Customizations []SubmissionCustomization `json:"customizations"`
}

// OrderSubmission is the payload sent to the order API at submit time. It
// carries no client-computed prices: the server recomputes and is
// authoritative. Built from a Cart and discarded once the request settles.
type OrderSubmission struct {
	CustomerName  *string          `json:"customer_name"`
	Items         []SubmissionItem `json:"items"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	PaymentStatus PaymentStatus    `json:"payment_status"`
	Status        OrderStatus      `json:"status"`
}

// NewOrderSubmission serializes a cart for the order API. POS orders are
// marked paid and completed at the counter.
func NewOrderSubmission(cart Cart) OrderSubmission {
	var customer *string
	if cart.CustomerName != "" {
		name := cart.CustomerName
		customer = &name
	}

	items := make([]SubmissionItem, 0, len(cart.Items))
	for _, li := range cart.Items {
		customizations := make([]SubmissionCustomization, 0, len(li.Selections))
		for _, sel := range li.Selections {
			customizations = append(customizations, SubmissionCustomization{
				ProductOptionID: sel.OptionID,
				SelectedValue:   sel.SelectedValue,
			})
		}
		items = append(items, SubmissionItem{
			ProductID:      li.Product.ID,
			Quantity:       li.Quantity,
			Customizations: customizations,
		})
	}

	return OrderSubmission{
		CustomerName:  customer,
		Items:         items,
		PaymentMethod: cart.PaymentMethod,
		PaymentStatus: PaymentStatusPaid,
		Status:        OrderStatusCompleted,
	}
}

type OrderItem struct {
	ProductID      int64           `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	LineTotal      decimal.Decimal `json:"line_total"`
	Customizations []Selection     `json:"customizations,omitempty"`
}

// Order is the record the order API returns after a successful
// submission; it is handed to the receipt collaborator as-is.
type Order struct {
	ID            int64           `json:"id"`
	OrderNumber   string          `json:"order_number"`
	CustomerName  string          `json:"customer_name"`
	Items         []OrderItem     `json:"order_items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}
