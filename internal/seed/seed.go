package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"pos-admin/internal/domain"
	customersvc "pos-admin/internal/service/customer"
	productsvc "pos-admin/internal/service/product"
)

type productUpserter interface {
	Upsert(ctx context.Context, in productsvc.Input) (*domain.Item, error)
}

type customerStore interface {
	List(ctx context.Context) ([]domain.Customer, error)
	Create(ctx context.Context, in customersvc.Input) (*domain.Customer, error)
}

type productSeed struct {
	SKU      string
	Barcode  string
	Name     string
	Category string
	Price    string
}

var products = []productSeed{
	{SKU: "SKU-TEA-GREEN", Barcode: "8901000000011", Name: "Green Tea", Category: "Beverages", Price: "2.50"},
	{SKU: "SKU-COFFEE", Barcode: "8901000000028", Name: "Coffee", Category: "Beverages", Price: "3.00"},
	{SKU: "SKU-CROISSANT", Barcode: "8901000000035", Name: "Croissant", Category: "Bakery", Price: "1.75"},
	{SKU: "SKU-MUFFIN", Barcode: "8901000000042", Name: "Blueberry Muffin", Category: "Bakery", Price: "2.25"},
	{SKU: "SKU-WATER", Barcode: "8901000000059", Name: "Mineral Water", Category: "Beverages", Price: "1.00"},
}

var demoCustomer = customersvc.Input{Name: "Demo Customer", Phone: "555-0100", Email: "demo@example.com"}

// Apply inserts demo catalog items and a customer. Products are upserted by
// SKU and the customer is only created when missing, so it is idempotent.
func Apply(ctx context.Context, items productUpserter, customers customerStore) error {
	for _, p := range products {
		price := decimal.RequireFromString(p.Price)
		if _, err := items.Upsert(ctx, productsvc.Input{
			Name:     p.Name,
			Category: p.Category,
			Price:    &price,
			Barcode:  p.Barcode,
			SKU:      p.SKU,
		}); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	existing, err := customers.List(ctx)
	if err != nil {
		return fmt.Errorf("list customers: %w", err)
	}
	for _, c := range existing {
		if strings.EqualFold(c.Email, demoCustomer.Email) {
			return nil
		}
	}
	if _, err := customers.Create(ctx, demoCustomer); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}
