package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_InsertAssignsIDAndCreatedAt(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	out, err := m.Insert(ctx, TableProducts, Row{"name": "Tea", "price": decimal.NewFromInt(3)})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NotEmpty(t, out[0].String("id"))
	assert.False(t, out[0].Time("created_at").IsZero())
	assert.True(t, out[0].Decimal("price").Equal(decimal.NewFromInt(3)))
}

func TestMemory_RejectsUnknownIdentifiers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Insert(ctx, "orders", Row{"id": "x"})
	assert.ErrorIs(t, err, ErrUnknownTable)

	_, err = m.Insert(ctx, TableProducts, Row{"colour": "red"})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = m.Select(ctx, TableProducts, Filter{Eq("colour", "red")})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestMemory_UniqueInvoiceNumber(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Insert(ctx, TableInvoices, Row{"invoice_number": "INV-1", "status": "paid"})
	require.NoError(t, err)

	_, err = m.Insert(ctx, TableInvoices, Row{"invoice_number": "INV-1", "status": "paid"})
	assert.True(t, errors.Is(err, ErrUniqueViolation))

	rows, err := m.Select(ctx, TableInvoices, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestMemory_BatchInsertIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Insert(ctx, TableInvoices,
		Row{"invoice_number": "INV-1"},
		Row{"invoice_number": "INV-1"},
	)
	require.ErrorIs(t, err, ErrUniqueViolation)

	rows, err := m.Select(ctx, TableInvoices, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMemory_SelectFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	_, err := m.Insert(ctx, TableInvoiceItems,
		Row{"invoice_id": "a", "product_id": "p1", "quantity": 1, "created_at": base},
		Row{"invoice_id": "b", "product_id": "p2", "quantity": 5, "created_at": base.Add(time.Minute)},
		Row{"invoice_id": "c", "product_id": "p3", "quantity": 2, "created_at": base.Add(2 * time.Minute)},
	)
	require.NoError(t, err)

	rows, err := m.Select(ctx, TableInvoiceItems, Filter{In("invoice_id", "a", "b")}, Desc("quantity"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].String("invoice_id"))
	assert.Equal(t, "a", rows[1].String("invoice_id"))

	rows, err = m.Select(ctx, TableInvoiceItems, nil, Desc("created_at"))
	require.NoError(t, err)
	assert.Equal(t, "c", rows[0].String("invoice_id"))
}

func TestMemory_NullFilter(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	cust := "c1"
	_, err := m.Insert(ctx, TableInvoices,
		Row{"invoice_number": "INV-1", "customer_id": (*string)(nil)},
		Row{"invoice_number": "INV-2", "customer_id": &cust},
	)
	require.NoError(t, err)

	rows, err := m.Select(ctx, TableInvoices, Filter{Eq("customer_id", nil)})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "INV-1", rows[0].String("invoice_number"))

	rows, err = m.Select(ctx, TableInvoices, Filter{Eq("customer_id", "c1")})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "INV-2", rows[0].String("invoice_number"))
}

func TestMemory_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	out, err := m.Insert(ctx, TableCustomers, Row{"name": "Ann"})
	require.NoError(t, err)
	id := out[0].String("id")

	updated, err := m.Update(ctx, TableCustomers, Row{"phone": "555"}, Filter{Eq("id", id)})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, "555", updated[0].String("phone"))
	assert.Equal(t, "Ann", updated[0].String("name"))

	require.Error(t, m.Delete(ctx, TableCustomers, nil))
	require.NoError(t, m.Delete(ctx, TableCustomers, Filter{Eq("id", id)}))

	rows, err := m.Select(ctx, TableCustomers, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	out, err := m.Insert(ctx, TableCustomers, Row{"name": "Ann"})
	require.NoError(t, err)
	out[0]["name"] = "mutated"

	rows, err := m.Select(ctx, TableCustomers, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ann", rows[0].String("name"))
}
