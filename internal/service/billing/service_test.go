package billing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-admin/internal/cart"
	"pos-admin/internal/domain"
	"pos-admin/internal/repository/invoice"
	"pos-admin/internal/store"
)

type stubCatalog struct {
	items map[string]domain.Item
}

func newStubCatalog(items ...domain.Item) *stubCatalog {
	c := &stubCatalog{items: map[string]domain.Item{}}
	for _, it := range items {
		c.items[it.ID] = it
	}
	return c
}

func (c *stubCatalog) Get(id string) (domain.Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

func (c *stubCatalog) Price(id string) (decimal.Decimal, bool) {
	it, ok := c.items[id]
	return it.Price, ok
}

func (c *stubCatalog) Lookup(q string) (domain.Item, bool) {
	for _, it := range c.items {
		if it.Barcode == q {
			return it, true
		}
	}
	return domain.Item{}, false
}

// stubRepo wraps the gateway-backed repository and injects failures.
type stubRepo struct {
	invoice.Repository
	headerErr   error
	linesErr    error
	headerCalls int
	linesCalls  int
	headerGate  chan struct{}
	headerEnter chan struct{}
}

func (r *stubRepo) CreateHeader(ctx context.Context, inv domain.Invoice) (*domain.Invoice, error) {
	r.headerCalls++
	if r.headerEnter != nil {
		r.headerEnter <- struct{}{}
		<-r.headerGate
	}
	if r.headerErr != nil {
		return nil, r.headerErr
	}
	return r.Repository.CreateHeader(ctx, inv)
}

func (r *stubRepo) CreateLines(ctx context.Context, lines []domain.InvoiceLine) ([]domain.InvoiceLine, error) {
	r.linesCalls++
	if r.linesErr != nil {
		return nil, r.linesErr
	}
	return r.Repository.CreateLines(ctx, lines)
}

type stubReceipts struct {
	ids []string
	err error
}

func (s *stubReceipts) Handoff(_ context.Context, invoiceID string) error {
	s.ids = append(s.ids, invoiceID)
	return s.err
}

var (
	itemA = domain.Item{ID: "a", Name: "Tea", Price: decimal.NewFromInt(10), Barcode: "111"}
	itemB = domain.Item{ID: "b", Name: "Cake", Price: decimal.NewFromInt(25), Barcode: "222"}
)

// rawCart bypasses the engine's discount rounding.
type rawCart struct {
	*cart.Engine
	discount decimal.Decimal
}

func (c *rawCart) Discount() decimal.Decimal { return c.discount }

func fixedClock() time.Time { return time.UnixMilli(1700000000000) }

func newTestService(t *testing.T, opts ...Option) (*Service, *stubRepo, *stubReceipts) {
	t.Helper()
	repo := &stubRepo{Repository: invoice.New(store.NewMemory(), nil)}
	receipts := &stubReceipts{}
	opts = append([]Option{WithClock(fixedClock), WithReceipts(receipts)}, opts...)
	return New(repo, nil, opts...), repo, receipts
}

func filledCart() *cart.Engine {
	c := cart.New(newStubCatalog(itemA, itemB))
	for i := 0; i < 3; i++ {
		c.AddItem(itemA)
	}
	c.AddItem(itemB)
	c.SetDiscount(5)
	return c
}

func TestCommit_EmptyCartWritesNothing(t *testing.T) {
	svc, repo, receipts := newTestService(t)
	c := cart.New(newStubCatalog(itemA))

	res, err := svc.Commit(context.Background(), c)
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Equal(t, StateIdle, res.State)
	assert.Zero(t, repo.headerCalls)
	assert.Zero(t, repo.linesCalls)
	assert.Empty(t, receipts.ids)
}

func TestCommit_WritesHeaderThenLines(t *testing.T) {
	svc, repo, receipts := newTestService(t)
	c := filledCart()
	ctx := context.Background()

	res, err := svc.Commit(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, res.State)
	assert.Equal(t, "INV-1700000000000", res.Invoice.Number)
	assert.Equal(t, domain.InvoiceStatusPaid, res.Invoice.Status)
	assert.Nil(t, res.Invoice.CustomerID)
	assert.True(t, res.Invoice.TotalAmount.Equal(decimal.NewFromInt(50)), res.Invoice.TotalAmount.String())
	assert.True(t, res.Invoice.Discount.Equal(decimal.NewFromInt(5)))
	assert.True(t, res.Totals.Subtotal.Equal(decimal.NewFromInt(55)))
	assert.False(t, res.Held)

	lines, err := repo.LinesFor(ctx, res.Invoice.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0].ItemID)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.True(t, lines[0].Price.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "b", lines[1].ItemID)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.True(t, lines[1].Price.Equal(decimal.NewFromInt(25)))

	assert.True(t, c.IsEmpty())
	assert.True(t, c.Discount().IsZero())
	assert.Equal(t, []string{res.Invoice.ID}, receipts.ids)
}

func TestCommit_CustomerIsPersisted(t *testing.T) {
	svc, _, _ := newTestService(t)
	c := filledCart()
	c.SetCustomer("cust-1")

	res, err := svc.Commit(context.Background(), c)
	require.NoError(t, err)
	require.NotNil(t, res.Invoice.CustomerID)
	assert.Equal(t, "cust-1", *res.Invoice.CustomerID)
}

func TestCommit_HeaderFailureKeepsCart(t *testing.T) {
	svc, repo, receipts := newTestService(t)
	repo.headerErr = errors.New("connection reset")
	c := filledCart()

	res, err := svc.Commit(context.Background(), c)
	var hw *domain.InvoiceHeaderWriteError
	require.ErrorAs(t, err, &hw)
	assert.Equal(t, StateFailed, res.State)
	assert.Zero(t, repo.linesCalls)
	assert.Len(t, c.Lines(), 2)
	assert.True(t, c.Discount().Equal(decimal.NewFromInt(5)))
	assert.Empty(t, receipts.ids)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCommit_LinesFailureLeavesHeaderWithoutLines(t *testing.T) {
	svc, repo, receipts := newTestService(t)
	repo.linesErr = errors.New("timeout")
	c := filledCart()
	ctx := context.Background()

	res, err := svc.Commit(ctx, c)
	var lw *domain.InvoiceLinesWriteError
	require.ErrorAs(t, err, &lw)
	assert.Equal(t, "INV-1700000000000", lw.InvoiceNumber)
	assert.Equal(t, StateFailed, res.State)
	assert.Len(t, c.Lines(), 2)
	assert.Empty(t, receipts.ids)

	partial, ok := IsPartialCommit(err)
	require.True(t, ok)
	assert.Equal(t, res.Invoice.ID, partial.InvoiceID)

	header, err := repo.GetByNumber(ctx, lw.InvoiceNumber)
	require.NoError(t, err)
	lines, err := repo.LinesFor(ctx, header.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestHold_UsesHoldPrefixAndSkipsReceipt(t *testing.T) {
	svc, _, receipts := newTestService(t)
	c := filledCart()

	res, err := svc.Hold(context.Background(), c)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Invoice.Number, "HOLD-"))
	assert.Equal(t, domain.InvoiceStatusHold, res.Invoice.Status)
	assert.True(t, res.Held)
	assert.True(t, c.IsEmpty())
	assert.Empty(t, receipts.ids)
}

func TestCommit_ReceiptFailureDoesNotFailCommit(t *testing.T) {
	svc, _, receipts := newTestService(t)
	receipts.err = errors.New("printer offline")

	res, err := svc.Commit(context.Background(), filledCart())
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, res.State)
	assert.Equal(t, "printer offline", res.ReceiptErr)
}

func TestCommit_NegativeTotalIsKept(t *testing.T) {
	svc, _, _ := newTestService(t)
	c := cart.New(newStubCatalog(itemA))
	c.AddItem(itemA)
	c.SetDiscount(25)

	res, err := svc.Commit(context.Background(), c)
	require.NoError(t, err)
	assert.True(t, res.Invoice.TotalAmount.Equal(decimal.NewFromInt(-15)), res.Invoice.TotalAmount.String())
}

func TestResume_CompletesPartialInvoice(t *testing.T) {
	svc, repo, receipts := newTestService(t)
	repo.linesErr = errors.New("timeout")
	c := filledCart()
	ctx := context.Background()

	_, err := svc.Commit(ctx, c)
	lw, ok := IsPartialCommit(err)
	require.True(t, ok)

	repo.linesErr = nil
	res, err := svc.Resume(ctx, c, lw.InvoiceNumber)
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, res.State)
	assert.False(t, res.Replayed)
	assert.Len(t, res.Lines, 2)
	assert.True(t, c.IsEmpty())
	assert.Equal(t, []string{lw.InvoiceID}, receipts.ids)

	lines, err := repo.LinesFor(ctx, lw.InvoiceID)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestResume_CompletedInvoiceHasNoSideEffects(t *testing.T) {
	svc, repo, receipts := newTestService(t)
	repo.linesErr = errors.New("timeout")
	ctx := context.Background()

	_, err := svc.Commit(ctx, filledCart())
	lw, ok := IsPartialCommit(err)
	require.True(t, ok)

	repo.linesErr = nil
	_, err = svc.Resume(ctx, filledCart(), lw.InvoiceNumber)
	require.NoError(t, err)
	require.Len(t, receipts.ids, 1)

	// A cart being rung up for someone else must survive a replayed resume.
	other := cart.New(newStubCatalog(itemA, itemB))
	other.AddItem(itemB)
	again, err := svc.Resume(ctx, other, lw.InvoiceNumber)
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, again.State)
	assert.True(t, again.Replayed)
	assert.Len(t, again.Lines, 2)
	assert.True(t, again.Totals.Total.Equal(decimal.NewFromInt(50)))
	assert.Len(t, other.Lines(), 1)
	assert.Len(t, receipts.ids, 1)
	assert.Equal(t, 2, repo.linesCalls)

	// The same cart contents are recognised and cleared, still without a second receipt.
	same := filledCart()
	_, err = svc.Resume(ctx, same, lw.InvoiceNumber)
	require.NoError(t, err)
	assert.True(t, same.IsEmpty())
	assert.Len(t, receipts.ids, 1)
	assert.Equal(t, 2, repo.linesCalls)
}

func TestResume_ThreeDecimalDiscountMatchesStoredHeader(t *testing.T) {
	svc, repo, receipts := newTestService(t)
	repo.linesErr = errors.New("timeout")
	c := cart.New(newStubCatalog(itemA))
	c.AddItem(itemA)
	c.SetDiscount("0.005")
	ctx := context.Background()

	res, err := svc.Commit(ctx, c)
	lw, ok := IsPartialCommit(err)
	require.True(t, ok)
	assert.Equal(t, "0.01", res.Invoice.Discount.String())
	assert.Equal(t, "9.99", res.Invoice.TotalAmount.String())

	repo.linesErr = nil
	res, err = svc.Resume(ctx, c, lw.InvoiceNumber)
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, res.State)
	assert.True(t, res.Totals.Discount.Equal(decimal.RequireFromString("0.01")))
	assert.Equal(t, []string{lw.InvoiceID}, receipts.ids)
}

func TestCommit_RoundsRawDiscountToCents(t *testing.T) {
	svc, _, _ := newTestService(t)
	c := &rawCart{Engine: cart.New(newStubCatalog(itemA)), discount: decimal.RequireFromString("0.005")}
	c.AddItem(itemA)

	res, err := svc.Commit(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "0.01", res.Invoice.Discount.String())
	assert.Equal(t, "9.99", res.Invoice.TotalAmount.String())
}

func TestCommit_UnknownItemsWriteNothing(t *testing.T) {
	svc, repo, receipts := newTestService(t)
	c := cart.New(newStubCatalog(itemA))
	c.AddItem(itemA)
	c.AddItem(domain.Item{ID: "ghost"})
	ctx := context.Background()

	res, err := svc.Commit(ctx, c)
	var unknown *domain.UnknownItemsError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"ghost"}, unknown.ItemIDs)
	assert.Equal(t, StateIdle, res.State)
	assert.Zero(t, repo.headerCalls)
	assert.Zero(t, repo.linesCalls)
	assert.Len(t, c.Lines(), 2)
	assert.Empty(t, receipts.ids)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestResume_UnknownItemsWriteNothing(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.linesErr = errors.New("timeout")
	catalog := newStubCatalog(itemA, itemB)
	c := cart.New(catalog)
	c.AddItem(itemA)
	c.AddItem(itemB)
	ctx := context.Background()

	_, err := svc.Commit(ctx, c)
	lw, ok := IsPartialCommit(err)
	require.True(t, ok)

	repo.linesErr = nil
	delete(catalog.items, itemB.ID)
	_, err = svc.Resume(ctx, c, lw.InvoiceNumber)
	var unknown *domain.UnknownItemsError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"b"}, unknown.ItemIDs)
	assert.Equal(t, 1, repo.linesCalls)
	assert.Len(t, c.Lines(), 2)

	lines, err := repo.LinesFor(ctx, lw.InvoiceID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestResume_RejectsChangedCart(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.linesErr = errors.New("timeout")
	c := filledCart()
	ctx := context.Background()

	_, err := svc.Commit(ctx, c)
	lw, ok := IsPartialCommit(err)
	require.True(t, ok)

	repo.linesErr = nil
	c.AddItem(itemB)
	_, err = svc.Resume(ctx, c, lw.InvoiceNumber)
	require.ErrorIs(t, err, domain.ErrCartChanged)
	assert.False(t, c.IsEmpty())
}

func TestResume_UnknownNumber(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Resume(context.Background(), filledCart(), "INV-404")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "header_write", StateHeaderWrite.String())
	assert.Equal(t, "committed", StateCommitted.String())
	assert.Equal(t, "unknown", State(42).String())
}
