package report

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pos-admin/internal/domain"
)

// Period selects the invoices a sales report covers.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAll     Period = "all"
)

// ParsePeriod maps a query value to a Period. Blank means monthly.
func ParsePeriod(value string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(value))); p {
	case "":
		return PeriodMonthly, nil
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAll:
		return p, nil
	}
	return "", &domain.ValidationError{Fields: []string{"period"}}
}

// Bucket is one point of the sales chart.
type Bucket struct {
	Label  string          `json:"label"`
	Start  time.Time       `json:"start"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

type SalesReport struct {
	Period       Period                       `json:"period"`
	InvoiceCount int                          `json:"invoiceCount"`
	Revenue      decimal.Decimal              `json:"revenue"`
	ByStatus     map[domain.InvoiceStatus]int `json:"byStatus"`
	Buckets      []Bucket                     `json:"buckets"`
}

// Sales aggregates the invoices that fall in period relative to now. Daily
// keeps now's calendar day and buckets by hour; weekly keeps the closed range
// [now-7d, now] and buckets by day; monthly keeps now's calendar month and
// all keeps everything, both bucketed by month. Calendar comparisons use
// now's location. Buckets are in chronological order.
func Sales(invoices []domain.InvoiceDetail, period Period, now time.Time) SalesReport {
	r := SalesReport{
		Period:   period,
		Revenue:  decimal.Zero,
		ByStatus: map[domain.InvoiceStatus]int{domain.InvoiceStatusPaid: 0, domain.InvoiceStatusHold: 0},
		Buckets:  []Bucket{},
	}
	loc := now.Location()
	index := map[time.Time]int{}
	for _, inv := range invoices {
		at := inv.CreatedAt.In(loc)
		if !inPeriod(at, period, now) {
			continue
		}
		r.InvoiceCount++
		r.Revenue = r.Revenue.Add(inv.TotalAmount)
		r.ByStatus[inv.Status]++

		start, label := bucketOf(at, period)
		i, ok := index[start]
		if !ok {
			i = len(r.Buckets)
			index[start] = i
			r.Buckets = append(r.Buckets, Bucket{Label: label, Start: start, Amount: decimal.Zero})
		}
		r.Buckets[i].Amount = r.Buckets[i].Amount.Add(inv.TotalAmount)
		r.Buckets[i].Count++
	}
	sort.Slice(r.Buckets, func(i, j int) bool { return r.Buckets[i].Start.Before(r.Buckets[j].Start) })
	return r
}

func inPeriod(at time.Time, period Period, now time.Time) bool {
	y, m, d := now.Date()
	ay, am, ad := at.Date()
	switch period {
	case PeriodDaily:
		return ay == y && am == m && ad == d
	case PeriodWeekly:
		return !at.Before(now.AddDate(0, 0, -7)) && !at.After(now)
	case PeriodMonthly:
		return ay == y && am == m
	}
	return true
}

func bucketOf(at time.Time, period Period) (time.Time, string) {
	y, m, d := at.Date()
	switch period {
	case PeriodDaily:
		start := time.Date(y, m, d, at.Hour(), 0, 0, 0, at.Location())
		return start, start.Format("15:00")
	case PeriodWeekly:
		start := time.Date(y, m, d, 0, 0, 0, 0, at.Location())
		return start, start.Format("Mon Jan 2")
	}
	start := time.Date(y, m, 1, 0, 0, 0, 0, at.Location())
	return start, start.Format("Jan 2006")
}
