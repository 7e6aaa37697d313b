package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrEmptyCart is returned when committing a cart with no lines. No writes happen.
	ErrEmptyCart = errors.New("cart is empty, nothing to commit")
	// ErrCommitInProgress rejects a commit while another one for the same session is in flight.
	ErrCommitInProgress = errors.New("commit already in progress")
	// ErrCartChanged is returned by a resume when the cart no longer matches the stored invoice header.
	ErrCartChanged = errors.New("cart no longer matches invoice header")
)

// LookupMissError reports a barcode, SKU or name that matched no catalog item.
// It is informational; the cart is left untouched.
type LookupMissError struct {
	Query string
}

func (e *LookupMissError) Error() string {
	return fmt.Sprintf("item not found: %q", e.Query)
}

// InvoiceHeaderWriteError wraps a failure to insert the invoice header row.
// Nothing was persisted and the cart was not cleared.
type InvoiceHeaderWriteError struct {
	Err error
}

func (e *InvoiceHeaderWriteError) Error() string {
	return fmt.Sprintf("write invoice header: %v", e.Err)
}

func (e *InvoiceHeaderWriteError) Unwrap() error { return e.Err }

// InvoiceLinesWriteError wraps a failure to insert invoice lines after the
// header was written. The header row is not rolled back: it stays in the
// store without lines until the lines write is resumed by invoice number.
type InvoiceLinesWriteError struct {
	InvoiceID     string
	InvoiceNumber string
	Err           error
}

func (e *InvoiceLinesWriteError) Error() string {
	return fmt.Sprintf("write invoice lines for %s: %v", e.InvoiceNumber, e.Err)
}

func (e *InvoiceLinesWriteError) Unwrap() error { return e.Err }

// ValidationError lists required fields that were missing or invalid.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

// UnknownItemsError names cart lines whose item no longer has a price in the
// catalog. Nothing was written and the cart was kept.
type UnknownItemsError struct {
	ItemIDs []string
}

func (e *UnknownItemsError) Error() string {
	return "items no longer in catalog: " + strings.Join(e.ItemIDs, ", ")
}
