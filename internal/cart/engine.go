// Package cart is the in-memory billing cart owned by one billing session.
package cart

import (
	"strings"

	"github.com/shopspring/decimal"

	"pos-admin/internal/domain"
	"pos-admin/internal/pricing"
)

// Catalog is the lookup side of the catalog cache the engine depends on.
type Catalog interface {
	Lookup(query string) (domain.Item, bool)
	Price(id string) (decimal.Decimal, bool)
}

// Engine holds the cart lines, discount and selected customer.
// It is not safe for concurrent use; the owning session serializes access.
type Engine struct {
	catalog  Catalog
	lines    []domain.CartLine
	discount decimal.Decimal
	customer string
}

func New(catalog Catalog) *Engine {
	return &Engine{catalog: catalog, discount: decimal.Zero, customer: domain.WalkInCustomerID}
}

// AddItem increments the line for item.ID, or appends a new line with quantity 1.
func (e *Engine) AddItem(item domain.Item) {
	for i := range e.lines {
		if e.lines[i].ItemID == item.ID {
			e.lines[i].Quantity++
			return
		}
	}
	e.lines = append(e.lines, domain.CartLine{ItemID: item.ID, Quantity: 1})
}

// RemoveItem deletes the line for itemID. Absent ids are ignored.
func (e *Engine) RemoveItem(itemID string) {
	for i := range e.lines {
		if e.lines[i].ItemID == itemID {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
			return
		}
	}
}

// SetQuantity sets the quantity of an existing line; qty <= 0 removes it.
func (e *Engine) SetQuantity(itemID string, qty int) {
	if qty <= 0 {
		e.RemoveItem(itemID)
		return
	}
	for i := range e.lines {
		if e.lines[i].ItemID == itemID {
			e.lines[i].Quantity = qty
			return
		}
	}
}

// ScanBarcode resolves code through the catalog and adds the hit.
// Blank input is a no-op and returns (nil, nil). A miss returns
// *domain.LookupMissError and leaves the cart unchanged.
func (e *Engine) ScanBarcode(code string) (*domain.Item, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	item, ok := e.catalog.Lookup(code)
	if !ok {
		return nil, &domain.LookupMissError{Query: code}
	}
	e.AddItem(item)
	return &item, nil
}

// SetDiscount stores amount coerced to a decimal and rounded to cents;
// non-numeric input becomes zero. Negative discounts are accepted.
func (e *Engine) SetDiscount(amount any) decimal.Decimal {
	e.discount = pricing.Money(pricing.Amount(amount))
	return e.discount
}

// SetCustomer selects a customer. Empty selects the walk-in sentinel.
func (e *Engine) SetCustomer(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = domain.WalkInCustomerID
	}
	e.customer = id
}

// Clear empties the lines and resets discount and customer.
func (e *Engine) Clear() {
	e.lines = nil
	e.discount = decimal.Zero
	e.customer = domain.WalkInCustomerID
}

func (e *Engine) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(e.lines))
	copy(out, e.lines)
	return out
}

func (e *Engine) IsEmpty() bool { return len(e.lines) == 0 }

func (e *Engine) Discount() decimal.Decimal { return e.discount }

func (e *Engine) Customer() string { return e.customer }

// CustomerRef is the customer to persist: nil for walk-in.
func (e *Engine) CustomerRef() *string {
	if e.customer == domain.WalkInCustomerID {
		return nil
	}
	id := e.customer
	return &id
}

// Totals prices the cart with live catalog prices.
func (e *Engine) Totals() pricing.Totals {
	return pricing.Calculate(e.lines, e.discount, e.catalog.Price)
}

// PriceFunc exposes the catalog price lookup used by Totals.
func (e *Engine) PriceFunc() pricing.PriceFunc {
	return e.catalog.Price
}
