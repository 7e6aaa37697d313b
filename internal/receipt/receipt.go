// Package receipt renders stored invoices as plain-text receipts and hands
// them to a printer.
package receipt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"pos-admin/internal/domain"
	"pos-admin/internal/logger"
)

const width = 40

type invoiceRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	LinesFor(ctx context.Context, invoiceIDs ...string) ([]domain.InvoiceLine, error)
}

type customerRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}

type productRepo interface {
	List(ctx context.Context) ([]domain.Item, error)
}

// Printer sends a rendered receipt to an output device.
type Printer interface {
	Print(ctx context.Context, r *Receipt) error
}

type Line struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Amount   decimal.Decimal `json:"amount"`
}

type Receipt struct {
	Shop      string               `json:"shop"`
	Currency  string               `json:"currency"`
	InvoiceID string               `json:"invoiceId"`
	Number    string               `json:"invoiceNumber"`
	Status    domain.InvoiceStatus `json:"status"`
	Customer  string               `json:"customer"`
	CreatedAt time.Time            `json:"createdAt"`
	Lines     []Line               `json:"lines"`
	Subtotal  decimal.Decimal      `json:"subtotal"`
	Discount  decimal.Decimal      `json:"discount"`
	Total     decimal.Decimal      `json:"total"`
}

type Options struct {
	Shop     string
	Currency string
	Printer  Printer
}

// Renderer loads an invoice by id and renders it. It reads only from the
// store, never from a cart.
type Renderer struct {
	invoices  invoiceRepo
	customers customerRepo
	products  productRepo
	opts      Options
	logger    *zerolog.Logger
}

func NewRenderer(invoices invoiceRepo, customers customerRepo, products productRepo, opts Options, log *zerolog.Logger) *Renderer {
	return &Renderer{invoices: invoices, customers: customers, products: products, opts: opts, logger: logger.OrNop(log)}
}

// Render fetches the invoice, its lines and the item names concurrently.
func (r *Renderer) Render(ctx context.Context, invoiceID string) (*Receipt, error) {
	var (
		header *domain.Invoice
		lines  []domain.InvoiceLine
		items  []domain.Item
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		header, err = r.invoices.GetByID(gctx, invoiceID)
		return err
	})
	g.Go(func() error {
		var err error
		lines, err = r.invoices.LinesFor(gctx, invoiceID)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = r.products.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("render receipt %s: %w", invoiceID, err)
	}

	rec := &Receipt{
		Shop:      r.opts.Shop,
		Currency:  r.opts.Currency,
		InvoiceID: header.ID,
		Number:    header.Number,
		Status:    header.Status,
		Customer:  "Walk-in",
		CreatedAt: header.CreatedAt,
		Discount:  header.Discount,
		Total:     header.TotalAmount,
		Subtotal:  decimal.Zero,
		Lines:     make([]Line, 0, len(lines)),
	}
	if header.CustomerID != nil {
		c, err := r.customers.GetByID(ctx, *header.CustomerID)
		switch {
		case err == nil:
			rec.Customer = c.Name
		case errors.Is(err, domain.ErrNotFound):
			rec.Customer = *header.CustomerID
		default:
			return nil, fmt.Errorf("render receipt %s: customer: %w", invoiceID, err)
		}
	}

	names := make(map[string]string, len(items))
	for _, it := range items {
		names[it.ID] = it.Name
	}
	for _, l := range lines {
		name := names[l.ItemID]
		if name == "" {
			name = l.ItemID
		}
		amount := l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		rec.Lines = append(rec.Lines, Line{Name: name, Quantity: l.Quantity, Price: l.Price, Amount: amount})
		rec.Subtotal = rec.Subtotal.Add(amount)
	}
	return rec, nil
}

// Handoff renders a freshly committed invoice and prints it. Without a
// printer the receipt is only rendered.
func (r *Renderer) Handoff(ctx context.Context, invoiceID string) error {
	rec, err := r.Render(ctx, invoiceID)
	if err != nil {
		return err
	}
	if r.opts.Printer == nil {
		r.logger.Debug().Str("invoice_number", rec.Number).Msg("receipt: rendered, printing disabled")
		return nil
	}
	return r.print(ctx, rec)
}

// Print is the manual reprint of a stored invoice.
func (r *Renderer) Print(ctx context.Context, invoiceID string) (*Receipt, error) {
	rec, err := r.Render(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if r.opts.Printer == nil {
		return rec, nil
	}
	return rec, r.print(ctx, rec)
}

func (r *Renderer) print(ctx context.Context, rec *Receipt) error {
	if err := r.opts.Printer.Print(ctx, rec); err != nil {
		r.logger.Error().Err(err).Str("invoice_number", rec.Number).Msg("receipt: print failed")
		return fmt.Errorf("print receipt %s: %w", rec.Number, err)
	}
	r.logger.Info().Str("invoice_number", rec.Number).Msg("receipt: printed")
	return nil
}

// Text lays the receipt out for a fixed-width printer.
func (rec *Receipt) Text() string {
	var b strings.Builder
	rule := strings.Repeat("-", width) + "\n"

	if rec.Shop != "" {
		b.WriteString(center(rec.Shop) + "\n")
	}
	fmt.Fprintf(&b, "Invoice: %s\n", rec.Number)
	fmt.Fprintf(&b, "Date:    %s\n", rec.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Customer: %s\n", rec.Customer)
	if rec.Status == domain.InvoiceStatusHold {
		b.WriteString("*** ON HOLD ***\n")
	}
	b.WriteString(rule)
	for _, l := range rec.Lines {
		b.WriteString(l.Name + "\n")
		qty := fmt.Sprintf("  %d x %s", l.Quantity, l.Price.StringFixed(2))
		b.WriteString(columns(qty, l.Amount.StringFixed(2)) + "\n")
	}
	b.WriteString(rule)
	b.WriteString(columns("Subtotal", rec.Subtotal.StringFixed(2)) + "\n")
	b.WriteString(columns("Discount", rec.Discount.StringFixed(2)) + "\n")
	total := "Total"
	if rec.Currency != "" {
		total += " (" + rec.Currency + ")"
	}
	b.WriteString(columns(total, rec.Total.StringFixed(2)) + "\n")
	return b.String()
}

func columns(left, right string) string {
	pad := width - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

func center(s string) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", (width-len(s))/2) + s
}
