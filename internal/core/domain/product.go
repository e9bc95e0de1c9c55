package domain

import "github.com/shopspring/decimal"

type OptionType string

const (
	OptionTypeSelect OptionType = "select"
	OptionTypeText   OptionType = "text"
)

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductOption is one customization axis of a product, e.g. Size or Milk.
type ProductOption struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Type          OptionType      `json:"type"`
	AllowedValues []string        `json:"options"`
	DefaultValue  string          `json:"default_value"`
	PriceModifier decimal.Decimal `json:"price_modifier"`
	IsRequired    bool            `json:"is_required"`
	SortOrder     int             `json:"sort_order"`
}

type Product struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category Category        `json:"category"`
	Options  []ProductOption `json:"product_options,omitempty"`
}

// Customizable reports whether the product has any options to pick from.
func (p Product) Customizable() bool {
	return len(p.Options) > 0
}
