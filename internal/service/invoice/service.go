// Package invoice is the read side over stored invoices: headers joined with
// customers, lines and product names.
package invoice

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"pos-admin/internal/domain"
	"pos-admin/internal/logger"
)

type invoiceRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	List(ctx context.Context) ([]domain.Invoice, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Invoice, error)
	LinesFor(ctx context.Context, invoiceIDs ...string) ([]domain.InvoiceLine, error)
}

type customerRepo interface {
	List(ctx context.Context) ([]domain.Customer, error)
}

type productRepo interface {
	List(ctx context.Context) ([]domain.Item, error)
}

type Service struct {
	invoices  invoiceRepo
	customers customerRepo
	products  productRepo
	logger    *zerolog.Logger
}

func New(invoices invoiceRepo, customers customerRepo, products productRepo, log *zerolog.Logger) *Service {
	return &Service{invoices: invoices, customers: customers, products: products, logger: logger.OrNop(log)}
}

// ListDetailed returns every invoice, newest first, with customer and item
// names resolved.
func (s *Service) ListDetailed(ctx context.Context) ([]domain.InvoiceDetail, error) {
	headers, err := s.invoices.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return s.detail(ctx, headers)
}

// ListByCustomer is the customer's purchase history, newest first.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]domain.InvoiceDetail, error) {
	headers, err := s.invoices.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list invoices for customer %s: %w", customerID, err)
	}
	return s.detail(ctx, headers)
}

// Get returns one invoice with its lines.
func (s *Service) Get(ctx context.Context, id string) (*domain.InvoiceDetail, error) {
	header, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.detail(ctx, []domain.Invoice{*header})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *Service) detail(ctx context.Context, headers []domain.Invoice) ([]domain.InvoiceDetail, error) {
	if len(headers) == 0 {
		return []domain.InvoiceDetail{}, nil
	}
	ids := make([]string, 0, len(headers))
	for _, h := range headers {
		ids = append(ids, h.ID)
	}

	var (
		lines     []domain.InvoiceLine
		customers []domain.Customer
		products  []domain.Item
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lines, err = s.invoices.LinesFor(gctx, ids...)
		return err
	})
	g.Go(func() error {
		var err error
		customers, err = s.customers.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.products.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Int("invoices", len(headers)).Msg("invoice: join failed")
		return nil, fmt.Errorf("load invoice details: %w", err)
	}

	customerNames := make(map[string]string, len(customers))
	for _, c := range customers {
		customerNames[c.ID] = c.Name
	}
	itemNames := make(map[string]string, len(products))
	for _, p := range products {
		itemNames[p.ID] = p.Name
	}
	byInvoice := make(map[string][]domain.InvoiceLineDetail, len(headers))
	for _, l := range lines {
		byInvoice[l.InvoiceID] = append(byInvoice[l.InvoiceID], domain.InvoiceLineDetail{
			InvoiceLine: l,
			ItemName:    itemNames[l.ItemID],
		})
	}

	out := make([]domain.InvoiceDetail, 0, len(headers))
	for _, h := range headers {
		d := domain.InvoiceDetail{Invoice: h, Lines: byInvoice[h.ID]}
		if d.Lines == nil {
			d.Lines = []domain.InvoiceLineDetail{}
		}
		if h.CustomerID != nil {
			d.CustomerName = customerNames[*h.CustomerID]
		}
		out = append(out, d)
	}
	return out, nil
}
