package billing

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pos-admin/internal/cart"
	"pos-admin/internal/domain"
	"pos-admin/internal/logger"
	"pos-admin/internal/metrics"
	"pos-admin/internal/pricing"
)

// Catalog is what sessions need from the catalog cache: lookups for the cart
// engine and item names for views.
type Catalog interface {
	cart.Catalog
	Get(id string) (domain.Item, bool)
}

// Session owns one cart. Operations on a session run one at a time.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	cart       *cart.Engine
	catalog    Catalog
	committing atomic.Bool
}

// Do runs fn with exclusive access to the session's cart. It waits for an
// in-flight commit to finish.
func (s *Session) Do(fn func(*cart.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.cart)
}

// View is a snapshot of a session suitable for rendering.
type View struct {
	ID         string         `json:"id"`
	CustomerID string         `json:"customerId"`
	Lines      []ViewLine     `json:"lines"`
	Totals     pricing.Totals `json:"totals"`
	Committing bool           `json:"committing"`
	CreatedAt  time.Time      `json:"createdAt"`
}

type ViewLine struct {
	domain.CartLine
	Name  string `json:"name"`
	Price string `json:"price"`
	Known bool   `json:"known"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	lines := s.cart.Lines()
	v := View{
		ID:         s.ID,
		CustomerID: s.cart.Customer(),
		Lines:      make([]ViewLine, 0, len(lines)),
		Totals:     s.cart.Totals(),
		Committing: s.committing.Load(),
		CreatedAt:  s.CreatedAt,
	}
	for _, l := range lines {
		vl := ViewLine{CartLine: l, Price: "0"}
		if it, ok := s.catalog.Get(l.ItemID); ok {
			vl.Name = it.Name
			vl.Price = it.Price.StringFixed(2)
			vl.Known = true
		}
		v.Lines = append(v.Lines, vl)
	}
	return v
}

// Sessions is the registry of open billing sessions.
type Sessions struct {
	billing *Service
	catalog Catalog
	metrics *metrics.Billing
	logger  *zerolog.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessions(billing *Service, catalog Catalog, m *metrics.Billing, log *zerolog.Logger) *Sessions {
	return &Sessions{
		billing:  billing,
		catalog:  catalog,
		metrics:  m,
		logger:   logger.OrNop(log),
		now:      time.Now,
		sessions: map[string]*Session{},
	}
}

// Open creates an empty session.
func (r *Sessions) Open() *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: r.now().UTC(),
		cart:      cart.New(r.catalog),
		catalog:   r.catalog,
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetOpenSessions(n)
	r.logger.Debug().Str("session_id", s.ID).Msg("billing: session opened")
	return s
}

func (r *Sessions) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// Close discards the session and its cart.
func (r *Sessions) Close(id string) error {
	r.mu.Lock()
	if _, ok := r.sessions[id]; !ok {
		r.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetOpenSessions(n)
	r.logger.Debug().Str("session_id", id).Msg("billing: session closed")
	return nil
}

// List returns the open sessions, oldest first.
func (r *Sessions) List() []*Session {
	r.mu.RLock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Commit commits the session's cart as a paid invoice.
func (r *Sessions) Commit(ctx context.Context, id string) (*Result, error) {
	return r.withLatch(id, func(c *cart.Engine) (*Result, error) {
		return r.billing.Commit(ctx, c)
	})
}

// Hold parks the session's cart as a held invoice.
func (r *Sessions) Hold(ctx context.Context, id string) (*Result, error) {
	return r.withLatch(id, func(c *cart.Engine) (*Result, error) {
		return r.billing.Hold(ctx, c)
	})
}

// Resume finishes a partially written invoice from the session's cart.
func (r *Sessions) Resume(ctx context.Context, id, invoiceNumber string) (*Result, error) {
	return r.withLatch(id, func(c *cart.Engine) (*Result, error) {
		return r.billing.Resume(ctx, c, invoiceNumber)
	})
}

// withLatch rejects a second commit on the same session while one is in flight.
func (r *Sessions) withLatch(id string, fn func(*cart.Engine) (*Result, error)) (*Result, error) {
	s, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if !s.committing.CompareAndSwap(false, true) {
		return nil, domain.ErrCommitInProgress
	}
	defer s.committing.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.cart)
}
