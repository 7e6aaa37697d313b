// Package store is the persistence gateway shared by the catalog, billing and
// reporting code. Every remote read and write goes through Gateway so the
// backing store can be swapped for an in-memory double.
package store

import (
	"context"
	"errors"
	"fmt"
)

const (
	TableProducts     = "products"
	TableCustomers    = "customers"
	TableInvoices     = "invoices"
	TableInvoiceItems = "invoice_items"
)

var (
	// ErrUniqueViolation is returned when an insert or update breaks a unique column.
	ErrUniqueViolation = errors.New("unique violation")
	// ErrUnknownTable and ErrUnknownColumn guard the identifier whitelist.
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
)

// Row is one record keyed by column name.
type Row map[string]any

// Gateway is the record-oriented store used by every repository.
type Gateway interface {
	Select(ctx context.Context, table string, filter Filter, order ...Order) ([]Row, error)
	Insert(ctx context.Context, table string, rows ...Row) ([]Row, error)
	Update(ctx context.Context, table string, patch Row, filter Filter) ([]Row, error)
	Delete(ctx context.Context, table string, filter Filter) error
}

type Op int

const (
	OpEq Op = iota
	OpIn
)

// Cond is a single column predicate. Filters are conjunctions of Conds.
type Cond struct {
	Column string
	Op     Op
	Value  any
}

type Filter []Cond

// Eq matches rows where column equals v. A nil v matches NULL.
func Eq(column string, v any) Cond {
	return Cond{Column: column, Op: OpEq, Value: v}
}

// In matches rows where column is one of values.
func In(column string, values ...string) Cond {
	return Cond{Column: column, Op: OpIn, Value: values}
}

type Order struct {
	Column string
	Desc   bool
}

func Asc(column string) Order  { return Order{Column: column} }
func Desc(column string) Order { return Order{Column: column, Desc: true} }

// schema whitelists the tables and columns the gateway will address.
var schema = map[string][]string{
	TableProducts:     {"id", "name", "category", "price", "barcode", "sku", "created_at"},
	TableCustomers:    {"id", "name", "phone", "email", "address", "created_at"},
	TableInvoices:     {"id", "invoice_number", "customer_id", "total_amount", "discount", "status", "created_at"},
	TableInvoiceItems: {"id", "invoice_id", "product_id", "quantity", "price", "created_at"},
}

// uniqueColumns lists the unique constraints besides the primary key.
var uniqueColumns = map[string][]string{
	TableInvoices: {"invoice_number"},
}

func checkTable(table string) error {
	if _, ok := schema[table]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return nil
}

func checkColumn(table, column string) error {
	for _, c := range schema[table] {
		if c == column {
			return nil
		}
	}
	return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, column)
}

func checkRow(table string, row Row) error {
	for col := range row {
		if err := checkColumn(table, col); err != nil {
			return err
		}
	}
	return nil
}

func checkFilter(table string, filter Filter) error {
	for _, c := range filter {
		if err := checkColumn(table, c.Column); err != nil {
			return err
		}
		if c.Op == OpIn {
			if _, ok := c.Value.([]string); !ok {
				return fmt.Errorf("in filter on %s.%s needs []string", table, c.Column)
			}
		}
	}
	return nil
}

func checkOrder(table string, order []Order) error {
	for _, o := range order {
		if err := checkColumn(table, o.Column); err != nil {
			return err
		}
	}
	return nil
}
