package invoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"pos-admin/internal/domain"
	"pos-admin/internal/logger"
	"pos-admin/internal/store"
)

type gatewayRepo struct {
	gw     store.Gateway
	logger *zerolog.Logger
}

func New(gw store.Gateway, log *zerolog.Logger) Repository {
	return &gatewayRepo{gw: gw, logger: logger.OrNop(log)}
}

func (r *gatewayRepo) CreateHeader(ctx context.Context, inv domain.Invoice) (*domain.Invoice, error) {
	row := store.Row{
		"invoice_number": inv.Number,
		"customer_id":    inv.CustomerID,
		"total_amount":   inv.TotalAmount,
		"discount":       inv.Discount,
		"status":         string(inv.Status),
	}
	rows, err := r.gw.Insert(ctx, store.TableInvoices, row)
	if err != nil {
		if errors.Is(err, store.ErrUniqueViolation) {
			return nil, fmt.Errorf("invoice %s: %w", inv.Number, domain.ErrAlreadyExists)
		}
		return nil, err
	}
	if len(rows) != 1 {
		return nil, fmt.Errorf("invoice %s: expected 1 inserted row, got %d", inv.Number, len(rows))
	}
	created := headerFromRow(rows[0])
	r.logger.Debug().Str("invoice_id", created.ID).Str("invoice_number", created.Number).Msg("invoice repo: header created")
	return &created, nil
}

func (r *gatewayRepo) CreateLines(ctx context.Context, lines []domain.InvoiceLine) ([]domain.InvoiceLine, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	rows := make([]store.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, store.Row{
			"invoice_id": l.InvoiceID,
			"product_id": l.ItemID,
			"quantity":   l.Quantity,
			"price":      l.Price,
		})
	}
	inserted, err := r.gw.Insert(ctx, store.TableInvoiceItems, rows...)
	if err != nil {
		return nil, err
	}
	out := make([]domain.InvoiceLine, 0, len(inserted))
	for _, row := range inserted {
		out = append(out, lineFromRow(row))
	}
	return out, nil
}

func (r *gatewayRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	return r.getOne(ctx, store.Filter{store.Eq("id", id)})
}

func (r *gatewayRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	return r.getOne(ctx, store.Filter{store.Eq("invoice_number", number)})
}

// List returns invoices newest first.
func (r *gatewayRepo) List(ctx context.Context) ([]domain.Invoice, error) {
	rows, err := r.gw.Select(ctx, store.TableInvoices, nil, store.Desc("created_at"))
	if err != nil {
		r.logger.Error().Err(err).Msg("invoice repo: list")
		return nil, err
	}
	out := make([]domain.Invoice, 0, len(rows))
	for _, row := range rows {
		out = append(out, headerFromRow(row))
	}
	return out, nil
}

func (r *gatewayRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Invoice, error) {
	rows, err := r.gw.Select(ctx, store.TableInvoices, store.Filter{store.Eq("customer_id", customerID)}, store.Desc("created_at"))
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID).Msg("invoice repo: list by customer")
		return nil, err
	}
	out := make([]domain.Invoice, 0, len(rows))
	for _, row := range rows {
		out = append(out, headerFromRow(row))
	}
	return out, nil
}

func (r *gatewayRepo) LinesFor(ctx context.Context, invoiceIDs ...string) ([]domain.InvoiceLine, error) {
	if len(invoiceIDs) == 0 {
		return nil, nil
	}
	rows, err := r.gw.Select(ctx, store.TableInvoiceItems, store.Filter{store.In("invoice_id", invoiceIDs...)}, store.Asc("created_at"))
	if err != nil {
		r.logger.Error().Err(err).Int("invoices", len(invoiceIDs)).Msg("invoice repo: lines")
		return nil, err
	}
	out := make([]domain.InvoiceLine, 0, len(rows))
	for _, row := range rows {
		out = append(out, lineFromRow(row))
	}
	return out, nil
}

func (r *gatewayRepo) getOne(ctx context.Context, filter store.Filter) (*domain.Invoice, error) {
	rows, err := r.gw.Select(ctx, store.TableInvoices, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	inv := headerFromRow(rows[0])
	return &inv, nil
}

func headerFromRow(row store.Row) domain.Invoice {
	return domain.Invoice{
		ID:          row.String("id"),
		Number:      row.String("invoice_number"),
		CustomerID:  row.StringPtr("customer_id"),
		TotalAmount: row.Decimal("total_amount"),
		Discount:    row.Decimal("discount"),
		Status:      domain.InvoiceStatus(row.String("status")),
		CreatedAt:   row.Time("created_at"),
	}
}

func lineFromRow(row store.Row) domain.InvoiceLine {
	return domain.InvoiceLine{
		ID:        row.String("id"),
		InvoiceID: row.String("invoice_id"),
		ItemID:    row.String("product_id"),
		Quantity:  row.Int("quantity"),
		Price:     row.Decimal("price"),
	}
}
