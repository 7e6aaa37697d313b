// Package report derives search results and daily summaries from detailed
// invoices. Nothing here touches the store.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pos-admin/internal/domain"
)

const topItemsLimit = 5

// Search keeps invoices whose number, customer name or any line's item name
// contains text, case-insensitively. Input order is preserved. Blank text
// keeps everything.
func Search(invoices []domain.InvoiceDetail, text string) []domain.InvoiceDetail {
	needle := strings.ToLower(strings.TrimSpace(text))
	out := make([]domain.InvoiceDetail, 0, len(invoices))
	for _, inv := range invoices {
		if needle == "" || matches(inv, needle) {
			out = append(out, inv)
		}
	}
	return out
}

func matches(inv domain.InvoiceDetail, needle string) bool {
	if strings.Contains(strings.ToLower(inv.Number), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(inv.CustomerName), needle) {
		return true
	}
	for _, l := range inv.Lines {
		if strings.Contains(strings.ToLower(l.ItemName), needle) {
			return true
		}
	}
	return false
}

type ItemQty struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

type Summary struct {
	Date         string          `json:"date"`
	InvoiceCount int             `json:"invoiceCount"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	ItemsSold    int             `json:"itemsSold"`
	TopItems     []ItemQty       `json:"topItems"`
}

// SummarizeToday aggregates the invoices created on now's calendar day, in
// now's location. Items are grouped by name and ranked by quantity; ties keep
// the order in which items were first seen.
func SummarizeToday(invoices []domain.InvoiceDetail, now time.Time) Summary {
	y, m, d := now.Date()
	s := Summary{Date: now.Format(time.DateOnly), TotalAmount: decimal.Zero, TopItems: []ItemQty{}}

	index := map[string]int{}
	var ranked []ItemQty
	for _, inv := range invoices {
		iy, im, id := inv.CreatedAt.In(now.Location()).Date()
		if iy != y || im != m || id != d {
			continue
		}
		s.InvoiceCount++
		s.TotalAmount = s.TotalAmount.Add(inv.TotalAmount)
		for _, l := range inv.Lines {
			s.ItemsSold += l.Quantity
			name := l.ItemName
			if name == "" {
				name = l.ItemID
			}
			i, ok := index[name]
			if !ok {
				i = len(ranked)
				index[name] = i
				ranked = append(ranked, ItemQty{Name: name})
			}
			ranked[i].Qty += l.Quantity
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Qty > ranked[j].Qty })
	if len(ranked) > topItemsLimit {
		ranked = ranked[:topItemsLimit]
	}
	if ranked != nil {
		s.TopItems = ranked
	}
	return s
}
