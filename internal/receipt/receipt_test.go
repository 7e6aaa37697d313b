package receipt

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-admin/internal/domain"
	customerrepo "pos-admin/internal/repository/customer"
	invoicerepo "pos-admin/internal/repository/invoice"
	productrepo "pos-admin/internal/repository/product"
	"pos-admin/internal/store"
)

type failingPrinter struct{}

func (failingPrinter) Print(context.Context, *Receipt) error { return errors.New("paper jam") }

type fixture struct {
	invoices  invoicerepo.Repository
	customers customerrepo.Repository
	products  productrepo.Repository
	invoiceID string
}

func newFixture(t *testing.T, withCustomer bool) fixture {
	t.Helper()
	ctx := context.Background()
	gw := store.NewMemory()
	f := fixture{
		invoices:  invoicerepo.New(gw, nil),
		customers: customerrepo.New(gw, nil),
		products:  productrepo.New(gw, nil),
	}
	tea, err := f.products.Create(ctx, domain.Item{Name: "Tea", Category: "drinks", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)
	cake, err := f.products.Create(ctx, domain.Item{Name: "Cake", Category: "bakery", Price: decimal.NewFromInt(25)})
	require.NoError(t, err)

	inv := domain.Invoice{Number: "INV-42", TotalAmount: decimal.NewFromInt(50), Discount: decimal.NewFromInt(5), Status: domain.InvoiceStatusPaid}
	if withCustomer {
		c, err := f.customers.Create(ctx, domain.Customer{Name: "Ada"})
		require.NoError(t, err)
		inv.CustomerID = &c.ID
	}
	header, err := f.invoices.CreateHeader(ctx, inv)
	require.NoError(t, err)
	_, err = f.invoices.CreateLines(ctx, []domain.InvoiceLine{
		{InvoiceID: header.ID, ItemID: tea.ID, Quantity: 3, Price: decimal.NewFromInt(10)},
		{InvoiceID: header.ID, ItemID: cake.ID, Quantity: 1, Price: decimal.NewFromInt(25)},
	})
	require.NoError(t, err)
	f.invoiceID = header.ID
	return f
}

func TestRender(t *testing.T) {
	f := newFixture(t, true)
	r := NewRenderer(f.invoices, f.customers, f.products, Options{Shop: "Corner Shop", Currency: "USD"}, nil)

	rec, err := r.Render(context.Background(), f.invoiceID)
	require.NoError(t, err)
	assert.Equal(t, "INV-42", rec.Number)
	assert.Equal(t, "Ada", rec.Customer)
	require.Len(t, rec.Lines, 2)
	assert.Equal(t, "Tea", rec.Lines[0].Name)
	assert.True(t, rec.Lines[0].Amount.Equal(decimal.NewFromInt(30)))
	assert.True(t, rec.Subtotal.Equal(decimal.NewFromInt(55)))
	assert.True(t, rec.Total.Equal(decimal.NewFromInt(50)))

	text := rec.Text()
	assert.Contains(t, text, "Corner Shop")
	assert.Contains(t, text, "Invoice: INV-42")
	assert.Contains(t, text, "3 x 10.00")
	assert.Contains(t, text, "Total (USD)")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(text), "50.00"))
}

func TestRender_WalkInAndMissing(t *testing.T) {
	f := newFixture(t, false)
	r := NewRenderer(f.invoices, f.customers, f.products, Options{}, nil)

	rec, err := r.Render(context.Background(), f.invoiceID)
	require.NoError(t, err)
	assert.Equal(t, "Walk-in", rec.Customer)

	_, err = r.Render(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHandoffPrints(t *testing.T) {
	f := newFixture(t, false)
	var out bytes.Buffer
	r := NewRenderer(f.invoices, f.customers, f.products, Options{Printer: NewWriterPrinter(&out)}, nil)

	require.NoError(t, r.Handoff(context.Background(), f.invoiceID))
	assert.Contains(t, out.String(), "INV-42")

	out.Reset()
	rec, err := r.Print(context.Background(), f.invoiceID)
	require.NoError(t, err)
	assert.Equal(t, "INV-42", rec.Number)
	assert.Contains(t, out.String(), "INV-42")
}

func TestHandoffWithoutPrinter(t *testing.T) {
	f := newFixture(t, false)
	r := NewRenderer(f.invoices, f.customers, f.products, Options{}, nil)
	require.NoError(t, r.Handoff(context.Background(), f.invoiceID))
}

func TestPrintFailure(t *testing.T) {
	f := newFixture(t, false)
	r := NewRenderer(f.invoices, f.customers, f.products, Options{Printer: failingPrinter{}}, nil)

	err := r.Handoff(context.Background(), f.invoiceID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paper jam")
}
