package cart

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-admin/internal/domain"
)

type stubCatalog struct {
	items map[string]domain.Item
}

func (s stubCatalog) Lookup(q string) (domain.Item, bool) {
	for _, it := range s.items {
		if it.Barcode == q {
			return it, true
		}
	}
	return domain.Item{}, false
}

func (s stubCatalog) Price(id string) (decimal.Decimal, bool) {
	it, ok := s.items[id]
	return it.Price, ok
}

var (
	tea    = domain.Item{ID: "tea", Name: "Tea", Price: decimal.NewFromInt(10), Barcode: "111"}
	coffee = domain.Item{ID: "coffee", Name: "Coffee", Price: decimal.NewFromInt(25), Barcode: "222"}
)

func newEngine() *Engine {
	return New(stubCatalog{items: map[string]domain.Item{"tea": tea, "coffee": coffee}})
}

func TestAddItemMergesDuplicates(t *testing.T) {
	e := newEngine()
	e.AddItem(tea)
	e.AddItem(tea)

	lines := e.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, domain.CartLine{ItemID: "tea", Quantity: 2}, lines[0])
}

func TestAddItemKeepsInsertionOrder(t *testing.T) {
	e := newEngine()
	e.AddItem(coffee)
	e.AddItem(tea)
	e.AddItem(coffee)

	lines := e.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "coffee", lines[0].ItemID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "tea", lines[1].ItemID)
}

func TestRemoveItem(t *testing.T) {
	e := newEngine()
	e.AddItem(tea)
	e.AddItem(coffee)

	e.RemoveItem("missing")
	assert.Len(t, e.Lines(), 2)

	e.RemoveItem("tea")
	lines := e.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "coffee", lines[0].ItemID)
}

func TestSetQuantity(t *testing.T) {
	e := newEngine()
	e.AddItem(tea)

	e.SetQuantity("tea", 5)
	assert.Equal(t, 5, e.Lines()[0].Quantity)

	e.SetQuantity("coffee", 3)
	assert.Len(t, e.Lines(), 1, "unknown line is not created")

	e.SetQuantity("tea", 0)
	assert.True(t, e.IsEmpty())
}

func TestScanBarcode(t *testing.T) {
	e := newEngine()

	item, err := e.ScanBarcode("  ")
	require.NoError(t, err)
	assert.Nil(t, item)
	assert.True(t, e.IsEmpty())

	item, err = e.ScanBarcode(" 111 ")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "tea", item.ID)
	assert.Equal(t, 1, e.Lines()[0].Quantity)

	_, err = e.ScanBarcode("999")
	var miss *domain.LookupMissError
	require.True(t, errors.As(err, &miss))
	assert.Equal(t, "999", miss.Query)
	assert.Len(t, e.Lines(), 1)
	assert.Equal(t, 1, e.Lines()[0].Quantity)
}

func TestSetDiscountCoerces(t *testing.T) {
	e := newEngine()

	assert.True(t, e.SetDiscount("12.5").Equal(decimal.RequireFromString("12.5")))
	assert.True(t, e.SetDiscount("ten").IsZero())
	assert.True(t, e.SetDiscount(-4).Equal(decimal.NewFromInt(-4)))
	assert.True(t, e.Discount().Equal(decimal.NewFromInt(-4)))
}

func TestSetDiscountRoundsToCents(t *testing.T) {
	e := newEngine()
	e.AddItem(tea)

	assert.Equal(t, "0.01", e.SetDiscount("0.005").String())
	assert.Equal(t, "1.23", e.SetDiscount(1.234).String())

	e.SetDiscount("0.005")
	totals := e.Totals()
	assert.Equal(t, "9.99", totals.Total.StringFixed(2))
	assert.True(t, totals.Total.Equal(totals.Total.Round(2)))
}

func TestTotals(t *testing.T) {
	e := newEngine()
	for i := 0; i < 3; i++ {
		e.AddItem(tea)
	}
	e.AddItem(coffee)
	e.SetDiscount(5)

	totals := e.Totals()
	assert.True(t, totals.Subtotal.Equal(decimal.NewFromInt(55)))
	assert.True(t, totals.Total.Equal(decimal.NewFromInt(50)))

	e.SetDiscount(100)
	assert.True(t, e.Totals().Total.Equal(decimal.NewFromInt(-45)))
}

func TestClear(t *testing.T) {
	e := newEngine()
	e.AddItem(tea)
	e.SetDiscount(3)
	e.SetCustomer("cust-1")
	require.NotNil(t, e.CustomerRef())

	e.Clear()

	assert.True(t, e.IsEmpty())
	assert.True(t, e.Discount().IsZero())
	assert.Equal(t, domain.WalkInCustomerID, e.Customer())
	assert.Nil(t, e.CustomerRef())
}

func TestSetCustomerBlankIsWalkIn(t *testing.T) {
	e := newEngine()
	e.SetCustomer("cust-1")
	e.SetCustomer("  ")
	assert.Equal(t, domain.WalkInCustomerID, e.Customer())
}
