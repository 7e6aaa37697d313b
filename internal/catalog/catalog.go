// Package catalog keeps the sellable items in memory for billing lookups.
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"pos-admin/internal/domain"
	"pos-admin/internal/logger"
)

// Source lists the items to cache.
type Source interface {
	List(ctx context.Context) ([]domain.Item, error)
}

// Cache holds the catalog after the first Load. A failed load leaves the cache
// empty and records the error in Err; lookups keep working and simply miss.
type Cache struct {
	source Source
	logger *zerolog.Logger
	group  singleflight.Group

	mu     sync.RWMutex
	items  []domain.Item
	byID   map[string]int
	loaded bool
	err    error
}

func New(source Source, log *zerolog.Logger) *Cache {
	return &Cache{source: source, logger: logger.OrNop(log), byID: map[string]int{}}
}

// Load fetches the catalog once. Later calls return the cached items.
func (c *Cache) Load(ctx context.Context) ([]domain.Item, error) {
	c.mu.RLock()
	if c.loaded {
		items, err := c.snapshot(), c.err
		c.mu.RUnlock()
		return items, err
	}
	c.mu.RUnlock()
	return c.Reload(ctx)
}

// Reload refetches the catalog. Concurrent calls share one fetch.
func (c *Cache) Reload(ctx context.Context) ([]domain.Item, error) {
	_, err, _ := c.group.Do("catalog", func() (interface{}, error) {
		items, err := c.source.List(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.loaded = true
		c.err = err
		c.items = nil
		c.byID = map[string]int{}
		if err != nil {
			c.logger.Error().Err(err).Msg("catalog: load failed")
			return nil, err
		}
		c.items = items
		for i, it := range items {
			c.byID[it.ID] = i
		}
		c.logger.Info().Int("count", len(items)).Msg("catalog: loaded")
		return nil, nil
	})

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot(), err
}

// Err reports the error of the last load, nil when it succeeded.
func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Get returns the item with the given id.
func (c *Cache) Get(id string) (domain.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return domain.Item{}, false
	}
	return c.items[i], true
}

// Price is the live catalog price of an item.
func (c *Cache) Price(id string) (decimal.Decimal, bool) {
	it, ok := c.Get(id)
	if !ok {
		return decimal.Zero, false
	}
	return it.Price, true
}

// Lookup resolves a scanned or typed code. Barcode matches win over SKU
// matches, which win over name matches. All comparisons are trimmed and
// case-insensitive.
func (c *Cache) Lookup(query string) (domain.Item, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return domain.Item{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	fields := []func(domain.Item) string{
		func(it domain.Item) string { return it.Barcode },
		func(it domain.Item) string { return it.SKU },
		func(it domain.Item) string { return it.Name },
	}
	for _, field := range fields {
		for _, it := range c.items {
			if strings.ToLower(strings.TrimSpace(field(it))) == q {
				return it, true
			}
		}
	}
	return domain.Item{}, false
}

// Filter returns items whose name contains text (case-insensitive) and, when
// category is not empty, whose category equals it. Catalog order is kept.
func (c *Cache) Filter(text, category string) []domain.Item {
	needle := strings.ToLower(strings.TrimSpace(text))
	category = strings.TrimSpace(category)

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Item, 0, len(c.items))
	for _, it := range c.items {
		if needle != "" && !strings.Contains(strings.ToLower(it.Name), needle) {
			continue
		}
		if category != "" && it.Category != category {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Categories lists the distinct non-empty categories, sorted.
func (c *Cache) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := map[string]struct{}{}
	var out []string
	for _, it := range c.items {
		if it.Category == "" {
			continue
		}
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		out = append(out, it.Category)
	}
	sort.Strings(out)
	return out
}

// snapshot must be called with the read lock held.
func (c *Cache) snapshot() []domain.Item {
	out := make([]domain.Item, len(c.items))
	copy(out, c.items)
	return out
}
