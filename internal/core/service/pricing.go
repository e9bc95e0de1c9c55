package service

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/LeomarSanguenza/pos-core/internal/core/domain"
)

var ErrRequiredOption = errors.New("required option not selected")

const (
	sizeOptionName = "Size"
	noneValue      = "None"
)

// sizeMultipliers replaces the base price for the Size option; any value
// outside the table prices as Medium.
var sizeMultipliers = map[string]decimal.Decimal{
	"Small":       decimal.NewFromFloat(0.85),
	"Medium":      decimal.NewFromFloat(1.00),
	"Large":       decimal.NewFromFloat(1.25),
	"Extra Large": decimal.NewFromFloat(1.50),
}

func sizeMultiplier(value string) decimal.Decimal {
	if m, ok := sizeMultipliers[value]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}

// UnitPrice computes the per-unit price of a product under the given
// selections. The Size selection replaces the base price with
// basePrice*multiplier; every other selection with a positive modifier
// and a real value (not empty, not "None") adds its modifier on top.
func UnitPrice(p domain.Product, selections []domain.Selection) decimal.Decimal {
	base := p.Price
	extras := decimal.Zero

	for _, sel := range selections {
		if sel.OptionName == sizeOptionName {
			base = p.Price.Mul(sizeMultiplier(sel.SelectedValue))
			continue
		}
		if sel.SelectedValue == "" || sel.SelectedValue == noneValue {
			continue
		}
		if sel.PriceModifier.IsPositive() {
			extras = extras.Add(sel.PriceModifier)
		}
	}
	return base.Add(extras)
}

// CartTotal sums every line total; an empty cart totals exactly zero.
func CartTotal(cart domain.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, li := range cart.Items {
		total = total.Add(li.LineTotal())
	}
	return total
}

// BuildSelections resolves per-option choices for a product: a missing
// choice falls back to the option's default value, and a required option
// with neither fails validation before any line item exists. Selections
// come back in the product's option sort order.
func BuildSelections(p domain.Product, chosen map[int64]string) ([]domain.Selection, error) {
	options := make([]domain.ProductOption, len(p.Options))
	copy(options, p.Options)
	sort.Slice(options, func(a, b int) bool { return options[a].SortOrder < options[b].SortOrder })

	var selections []domain.Selection
	for _, opt := range options {
		value, ok := chosen[opt.ID]
		if !ok || value == "" {
			value = opt.DefaultValue
		}
		if value == "" {
			if opt.IsRequired {
				return nil, fmt.Errorf("%w: %s", ErrRequiredOption, opt.Name)
			}
			continue
		}
		selections = append(selections, domain.Selection{
			OptionID:      opt.ID,
			OptionName:    opt.Name,
			SelectedValue: value,
			PriceModifier: opt.PriceModifier,
		})
	}
	return selections, nil
}

// NewLineItem validates the choices and prices one unit of the product.
func NewLineItem(p domain.Product, chosen map[int64]string) (domain.LineItem, error) {
	selections, err := BuildSelections(p, chosen)
	if err != nil {
		return domain.LineItem{}, err
	}
	return domain.LineItem{
		Product:    p,
		Quantity:   1,
		Selections: selections,
		UnitPrice:  UnitPrice(p, selections),
	}, nil
}
