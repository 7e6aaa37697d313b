// Package pricing derives cart totals. Everything here is pure.
package pricing

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"pos-admin/internal/domain"
)

// Scale is the number of decimal places stored for every money column.
const Scale = 2

// Money rounds d to Scale places, half away from zero.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// PriceFunc resolves the current unit price of an item.
type PriceFunc func(itemID string) (decimal.Decimal, bool)

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Subtotal sums qty*price over the lines. Unit prices are rounded to Scale.
// Lines whose item has no price contribute nothing.
func Subtotal(lines []domain.CartLine, price PriceFunc) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		p, ok := price(l.ItemID)
		if !ok {
			continue
		}
		sum = sum.Add(Money(p).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// Calculate returns subtotal, discount and total = subtotal - discount, with
// the discount rounded to Scale so every figure fits a money column.
// The total is not clamped: a discount above the subtotal yields a negative total.
func Calculate(lines []domain.CartLine, discount decimal.Decimal, price PriceFunc) Totals {
	sub := Subtotal(lines, price)
	discount = Money(discount)
	return Totals{
		Subtotal: sub,
		Discount: discount,
		Total:    sub.Sub(discount),
	}
}

// Amount coerces loosely typed input (numbers, numeric strings, json.Number)
// to a decimal. Anything non-numeric is zero. Negative values pass through.
func Amount(v any) decimal.Decimal {
	switch x := v.(type) {
	case decimal.Decimal:
		return x
	case *decimal.Decimal:
		if x != nil {
			return *x
		}
	case int:
		return decimal.NewFromInt(int64(x))
	case int32:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case float32:
		return fromFloat(float64(x))
	case float64:
		return fromFloat(x)
	case json.Number:
		return fromString(x.String())
	case string:
		return fromString(x)
	}
	return decimal.Zero
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func fromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
