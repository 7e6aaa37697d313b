package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pos-admin/internal/domain"
	"pos-admin/internal/logger"
	"pos-admin/internal/metrics"
	"pos-admin/internal/pricing"
)

const (
	paidPrefix = "INV-"
	holdPrefix = "HOLD-"
)

// Cart is the billing cart state the commit sequence reads and clears.
type Cart interface {
	Lines() []domain.CartLine
	Discount() decimal.Decimal
	CustomerRef() *string
	PriceFunc() pricing.PriceFunc
	IsEmpty() bool
	Clear()
}

type invoiceRepo interface {
	CreateHeader(ctx context.Context, inv domain.Invoice) (*domain.Invoice, error)
	CreateLines(ctx context.Context, lines []domain.InvoiceLine) ([]domain.InvoiceLine, error)
	GetByNumber(ctx context.Context, number string) (*domain.Invoice, error)
	LinesFor(ctx context.Context, invoiceIDs ...string) ([]domain.InvoiceLine, error)
}

// ReceiptHandoff receives the id of every paid invoice once it is committed.
type ReceiptHandoff interface {
	Handoff(ctx context.Context, invoiceID string) error
}

// Result describes how far a commit got.
type Result struct {
	State   State                `json:"state"`
	Invoice domain.Invoice       `json:"invoice"`
	Lines   []domain.InvoiceLine `json:"lines,omitempty"`
	Totals  pricing.Totals       `json:"totals"`
	// Held is the confirmation signal for a hold commit.
	Held bool `json:"held"`
	// ReceiptErr is set when the receipt handoff failed after a successful commit.
	ReceiptErr string `json:"receiptError,omitempty"`
	// Replayed marks a resume of an invoice whose lines were already written.
	// No receipt is handed off and the commit is not counted again.
	Replayed bool `json:"replayed,omitempty"`
}

// Service runs the two-step invoice commit: header insert, then line inserts.
// The store gives no atomicity across the two steps and nothing is retried
// automatically.
type Service struct {
	repo     invoiceRepo
	receipts ReceiptHandoff
	metrics  *metrics.Billing
	logger   *zerolog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithReceipts(r ReceiptHandoff) Option { return func(s *Service) { s.receipts = r } }

func WithMetrics(m *metrics.Billing) Option { return func(s *Service) { s.metrics = m } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func New(repo invoiceRepo, log *zerolog.Logger, opts ...Option) *Service {
	s := &Service{repo: repo, logger: logger.OrNop(log), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Commit persists the cart as a paid invoice and hands the invoice to the
// receipt renderer.
func (s *Service) Commit(ctx context.Context, c Cart) (*Result, error) {
	return s.commit(ctx, c, domain.InvoiceStatusPaid)
}

// Hold persists the cart as a parked invoice with status hold.
func (s *Service) Hold(ctx context.Context, c Cart) (*Result, error) {
	return s.commit(ctx, c, domain.InvoiceStatusHold)
}

func (s *Service) commit(ctx context.Context, c Cart, status domain.InvoiceStatus) (*Result, error) {
	began := time.Now()
	defer func() { s.metrics.ObserveCommit(string(status), time.Since(began)) }()

	res := &Result{State: StateIdle}
	if c.IsEmpty() {
		s.metrics.IncCommit(string(status), "empty_cart")
		return res, domain.ErrEmptyCart
	}

	snap, err := snapshotCart(c)
	if err != nil {
		s.metrics.IncCommit(string(status), "unknown_items")
		s.logger.Warn().Err(err).Str("status", string(status)).Msg("billing: cart has items missing from catalog, nothing written")
		return res, err
	}
	res.Totals = snap.totals

	prefix := paidPrefix
	if status == domain.InvoiceStatusHold {
		prefix = holdPrefix
	}
	number := fmt.Sprintf("%s%d", prefix, s.now().UnixMilli())

	res.State = StateHeaderWrite
	log := s.logger.With().Str("invoice_number", number).Str("status", string(status)).Logger()
	log.Debug().Str("state", res.State.String()).Msg("billing: writing invoice header")

	header, err := s.repo.CreateHeader(ctx, domain.Invoice{
		Number:      number,
		CustomerID:  snap.customer,
		TotalAmount: snap.totals.Total,
		Discount:    snap.totals.Discount,
		Status:      status,
	})
	if err != nil {
		res.State = StateFailed
		s.metrics.IncCommit(string(status), "header_failed")
		log.Error().Err(err).Msg("billing: invoice header write failed, cart kept")
		return res, &domain.InvoiceHeaderWriteError{Err: err}
	}
	res.Invoice = *header

	res.State = StateLinesWrite
	written, err := s.repo.CreateLines(ctx, snap.invoiceLines(header.ID))
	if err != nil {
		res.State = StateFailed
		s.metrics.IncCommit(string(status), "lines_failed")
		// The header stays without lines. Resume by invoice number completes it.
		log.Warn().Err(err).Str("invoice_id", header.ID).Msg("billing: invoice lines write failed, header left without lines")
		return res, &domain.InvoiceLinesWriteError{InvoiceID: header.ID, InvoiceNumber: header.Number, Err: err}
	}

	s.finish(ctx, c, res, written)
	return res, nil
}

// Resume completes an invoice whose header was written but whose lines were
// not, using the invoice number as idempotency key. If the lines already
// exist the stored invoice is returned as committed without side effects; the
// cart is cleared only when it still matches that invoice.
func (s *Service) Resume(ctx context.Context, c Cart, invoiceNumber string) (*Result, error) {
	res := &Result{State: StateIdle}
	header, err := s.repo.GetByNumber(ctx, invoiceNumber)
	if err != nil {
		return res, fmt.Errorf("resume %s: %w", invoiceNumber, err)
	}
	res.Invoice = *header
	status := string(header.Status)
	log := s.logger.With().Str("invoice_number", header.Number).Str("status", status).Logger()

	existing, err := s.repo.LinesFor(ctx, header.ID)
	if err != nil {
		return res, fmt.Errorf("resume %s: load lines: %w", invoiceNumber, err)
	}
	if len(existing) > 0 {
		res.Totals = pricing.Totals{
			Subtotal: header.TotalAmount.Add(header.Discount),
			Discount: header.Discount,
			Total:    header.TotalAmount,
		}
		res.Lines = existing
		res.State = StateCommitted
		res.Replayed = true
		res.Held = header.Status == domain.InvoiceStatusHold
		cleared := false
		if snap, err := snapshotCart(c); err == nil && !c.IsEmpty() && snap.matches(*header) {
			c.Clear()
			cleared = true
		}
		log.Info().Int("lines", len(existing)).Bool("cart_cleared", cleared).Msg("billing: resume found lines already written")
		return res, nil
	}

	if c.IsEmpty() {
		return res, domain.ErrEmptyCart
	}
	snap, err := snapshotCart(c)
	if err != nil {
		log.Warn().Err(err).Msg("billing: resume rejected, cart has items missing from catalog")
		return res, err
	}
	res.Totals = snap.totals
	if !snap.matches(*header) {
		return res, domain.ErrCartChanged
	}

	res.State = StateLinesWrite
	written, err := s.repo.CreateLines(ctx, snap.invoiceLines(header.ID))
	if err != nil {
		res.State = StateFailed
		s.metrics.IncCommit(status, "lines_failed")
		log.Warn().Err(err).Msg("billing: resumed lines write failed")
		return res, &domain.InvoiceLinesWriteError{InvoiceID: header.ID, InvoiceNumber: header.Number, Err: err}
	}
	s.finish(ctx, c, res, written)
	return res, nil
}

func (s *Service) finish(ctx context.Context, c Cart, res *Result, lines []domain.InvoiceLine) {
	res.Lines = lines
	res.State = StateCommitted
	c.Clear()
	s.metrics.IncCommit(string(res.Invoice.Status), "committed")

	log := s.logger.With().Str("invoice_id", res.Invoice.ID).Str("invoice_number", res.Invoice.Number).Logger()
	log.Info().Int("lines", len(lines)).Str("total", res.Invoice.TotalAmount.String()).Msg("billing: invoice committed")

	if res.Invoice.Status == domain.InvoiceStatusHold {
		res.Held = true
		return
	}
	if s.receipts == nil {
		return
	}
	if err := s.receipts.Handoff(ctx, res.Invoice.ID); err != nil {
		res.ReceiptErr = err.Error()
		log.Warn().Err(err).Msg("billing: receipt handoff failed")
	}
}

// cartSnapshot freezes prices once so the header total and the line prices agree.
// Prices are rounded to the money scale before any sum is taken.
type cartSnapshot struct {
	lines    []domain.CartLine
	prices   map[string]decimal.Decimal
	customer *string
	totals   pricing.Totals
}

func snapshotCart(c Cart) (cartSnapshot, error) {
	lines := c.Lines()
	live := c.PriceFunc()
	prices := make(map[string]decimal.Decimal, len(lines))
	var missing []string
	for _, l := range lines {
		p, ok := live(l.ItemID)
		if !ok {
			missing = append(missing, l.ItemID)
			continue
		}
		prices[l.ItemID] = pricing.Money(p)
	}
	if len(missing) > 0 {
		return cartSnapshot{}, &domain.UnknownItemsError{ItemIDs: missing}
	}
	frozen := func(id string) (decimal.Decimal, bool) {
		p, ok := prices[id]
		return p, ok
	}
	return cartSnapshot{
		lines:    lines,
		prices:   prices,
		customer: c.CustomerRef(),
		totals:   pricing.Calculate(lines, c.Discount(), frozen),
	}, nil
}

func (s cartSnapshot) matches(header domain.Invoice) bool {
	return s.totals.Total.Equal(header.TotalAmount) && s.totals.Discount.Equal(header.Discount)
}

func (s cartSnapshot) invoiceLines(invoiceID string) []domain.InvoiceLine {
	out := make([]domain.InvoiceLine, 0, len(s.lines))
	for _, l := range s.lines {
		out = append(out, domain.InvoiceLine{
			InvoiceID: invoiceID,
			ItemID:    l.ItemID,
			Quantity:  l.Quantity,
			Price:     s.prices[l.ItemID],
		})
	}
	return out
}

// IsPartialCommit reports whether err left an invoice header without lines.
func IsPartialCommit(err error) (*domain.InvoiceLinesWriteError, bool) {
	var lw *domain.InvoiceLinesWriteError
	if errors.As(err, &lw) {
		return lw, true
	}
	return nil, false
}
