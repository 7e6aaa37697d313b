package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Memory is an in-process Gateway. It backs STORE_DRIVER=memory and serves as
// the store double in tests. Rows are copied on the way in and out.
type Memory struct {
	mu     sync.RWMutex
	tables map[string][]Row
	now    func() time.Time
}

func NewMemory() *Memory {
	m := &Memory{
		tables: make(map[string][]Row, len(schema)),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for t := range schema {
		m.tables[t] = nil
	}
	return m
}

func (m *Memory) Select(_ context.Context, table string, filter Filter, order ...Order) ([]Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if err := checkFilter(table, filter); err != nil {
		return nil, err
	}
	if err := checkOrder(table, order); err != nil {
		return nil, err
	}

	m.mu.RLock()
	var out []Row
	for _, r := range m.tables[table] {
		if matches(r, filter) {
			out = append(out, r.clone())
		}
	}
	m.mu.RUnlock()

	if len(order) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range order {
				c := compare(out[i][o.Column], out[j][o.Column])
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	return out, nil
}

func (m *Memory) Insert(_ context.Context, table string, rows ...Row) ([]Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := checkRow(table, r); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prepared := make([]Row, 0, len(rows))
	for _, r := range rows {
		row := r.clone()
		if row.String("id") == "" {
			row["id"] = uuid.NewString()
		}
		if _, ok := row["created_at"]; !ok {
			row["created_at"] = m.now()
		}
		if err := m.checkUnique(table, row, prepared, ""); err != nil {
			return nil, err
		}
		prepared = append(prepared, row)
	}

	out := make([]Row, 0, len(prepared))
	for _, row := range prepared {
		m.tables[table] = append(m.tables[table], row)
		out = append(out, row.clone())
	}
	return out, nil
}

func (m *Memory) Update(_ context.Context, table string, patch Row, filter Filter) ([]Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("update %s: empty patch", table)
	}
	if err := checkRow(table, patch); err != nil {
		return nil, err
	}
	if err := checkFilter(table, filter); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Row
	for i, r := range m.tables[table] {
		if !matches(r, filter) {
			continue
		}
		next := r.clone()
		for k, v := range patch {
			next[k] = v
		}
		if err := m.checkUnique(table, next, nil, r.String("id")); err != nil {
			return nil, err
		}
		m.tables[table][i] = next
		out = append(out, next.clone())
	}
	return out, nil
}

func (m *Memory) Delete(_ context.Context, table string, filter Filter) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if len(filter) == 0 {
		return fmt.Errorf("delete from %s: refusing to delete without a filter", table)
	}
	if err := checkFilter(table, filter); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.tables[table][:0]
	for _, r := range m.tables[table] {
		if !matches(r, filter) {
			kept = append(kept, r)
		}
	}
	m.tables[table] = kept
	return nil
}

// checkUnique must be called with the write lock held.
func (m *Memory) checkUnique(table string, row Row, pending []Row, selfID string) error {
	cols := append([]string{"id"}, uniqueColumns[table]...)
	for _, col := range cols {
		v := row.String(col)
		if v == "" {
			continue
		}
		for _, existing := range m.tables[table] {
			if existing.String("id") == selfID {
				continue
			}
			if existing.String(col) == v {
				return fmt.Errorf("%w: %s.%s", ErrUniqueViolation, table, col)
			}
		}
		for _, p := range pending {
			if p.String(col) == v {
				return fmt.Errorf("%w: %s.%s", ErrUniqueViolation, table, col)
			}
		}
	}
	return nil
}

func matches(r Row, filter Filter) bool {
	for _, c := range filter {
		v, present := r[c.Column]
		switch c.Op {
		case OpIn:
			found := false
			s := r.String(c.Column)
			for _, want := range c.Value.([]string) {
				if present && s == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			if c.Value == nil || isNil(c.Value) {
				if present && !isNil(v) {
					return false
				}
				continue
			}
			if !present || isNil(v) || compare(v, c.Value) != 0 {
				return false
			}
		}
	}
	return true
}

func isNil(v any) bool {
	switch p := v.(type) {
	case nil:
		return true
	case *string:
		return p == nil
	}
	return false
}

// compare orders values of the same kind. Mixed kinds fall back to their text form.
func compare(a, b any) int {
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case decimal.Decimal:
		return x.Cmp(Row{"v": b}.Decimal("v"))
	case int, int32, int64:
		return Row{"v": a}.Decimal("v").Cmp(Row{"v": b}.Decimal("v"))
	}
	return strings.Compare(Row{"v": a}.String("v"), Row{"v": b}.String("v"))
}

// Ping always succeeds; it lets the memory store stand in for a pool in readiness checks.
func (m *Memory) Ping(context.Context) error { return nil }
