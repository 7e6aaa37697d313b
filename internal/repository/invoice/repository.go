package invoice

import (
	"context"

	"pos-admin/internal/domain"
)

// Repository persists invoice headers (invoices) and their lines (invoice_items).
// Header and lines are separate writes; callers own the sequencing.
type Repository interface {
	CreateHeader(ctx context.Context, inv domain.Invoice) (*domain.Invoice, error)
	CreateLines(ctx context.Context, lines []domain.InvoiceLine) ([]domain.InvoiceLine, error)
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*domain.Invoice, error)
	List(ctx context.Context) ([]domain.Invoice, error)
	// ListByCustomer returns the customer's invoices, newest first.
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Invoice, error)
	LinesFor(ctx context.Context, invoiceIDs ...string) ([]domain.InvoiceLine, error)
}
