package pricing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pos-admin/internal/domain"
)

func priceTable(prices map[string]int64) PriceFunc {
	return func(id string) (decimal.Decimal, bool) {
		p, ok := prices[id]
		return decimal.NewFromInt(p), ok
	}
}

func TestCalculate(t *testing.T) {
	lines := []domain.CartLine{{ItemID: "a", Quantity: 3}, {ItemID: "b", Quantity: 1}}
	prices := priceTable(map[string]int64{"a": 10, "b": 25})

	tests := []struct {
		name     string
		discount decimal.Decimal
		subtotal int64
		total    int64
	}{
		{name: "no discount", discount: decimal.Zero, subtotal: 55, total: 55},
		{name: "discount", discount: decimal.NewFromInt(5), subtotal: 55, total: 50},
		{name: "discount above subtotal", discount: decimal.NewFromInt(60), subtotal: 55, total: -5},
		{name: "negative discount", discount: decimal.NewFromInt(-5), subtotal: 55, total: 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(lines, tt.discount, prices)
			assert.True(t, got.Subtotal.Equal(decimal.NewFromInt(tt.subtotal)), "subtotal %s", got.Subtotal)
			assert.True(t, got.Total.Equal(decimal.NewFromInt(tt.total)), "total %s", got.Total)
			assert.True(t, got.Total.Equal(got.Subtotal.Sub(got.Discount)))
		})
	}
}

func TestCalculateRoundsDiscount(t *testing.T) {
	lines := []domain.CartLine{{ItemID: "a", Quantity: 1}}
	prices := priceTable(map[string]int64{"a": 10})

	got := Calculate(lines, decimal.RequireFromString("0.005"), prices)
	assert.Equal(t, "0.01", got.Discount.StringFixed(2))
	assert.Equal(t, "9.99", got.Total.StringFixed(2))
	assert.True(t, got.Total.Equal(got.Total.Round(Scale)))

	got = Calculate(lines, decimal.RequireFromString("1.234"), prices)
	assert.True(t, got.Discount.Equal(decimal.RequireFromString("1.23")))
}

func TestSubtotalRoundsUnitPrice(t *testing.T) {
	lines := []domain.CartLine{{ItemID: "a", Quantity: 3}}
	price := func(string) (decimal.Decimal, bool) { return decimal.RequireFromString("1.005"), true }
	assert.Equal(t, "3.03", Subtotal(lines, price).StringFixed(2))
}

func TestSubtotalSkipsUnknownItems(t *testing.T) {
	lines := []domain.CartLine{{ItemID: "a", Quantity: 2}, {ItemID: "gone", Quantity: 4}}
	got := Subtotal(lines, priceTable(map[string]int64{"a": 7}))
	assert.True(t, got.Equal(decimal.NewFromInt(14)))
}

func TestSubtotalEmpty(t *testing.T) {
	assert.True(t, Subtotal(nil, priceTable(nil)).IsZero())
}

func TestAmount(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{in: 5, want: "5"},
		{in: int64(-3), want: "-3"},
		{in: 2.5, want: "2.5"},
		{in: " 7.25 ", want: "7.25"},
		{in: json.Number("1.5"), want: "1.5"},
		{in: "abc", want: "0"},
		{in: "", want: "0"},
		{in: nil, want: "0"},
		{in: true, want: "0"},
		{in: math.NaN(), want: "0"},
		{in: decimal.NewFromInt(9), want: "9"},
	}
	for _, tt := range tests {
		got := Amount(tt.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "Amount(%v) = %s, want %s", tt.in, got, tt.want)
	}
}
