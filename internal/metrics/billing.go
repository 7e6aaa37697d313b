package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Billing records invoice commit outcomes and open billing sessions.
type Billing struct {
	commits  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	sessions prometheus.Gauge
}

// NewBilling registers the billing metrics on reg. A nil reg yields a no-op recorder.
func NewBilling(reg prometheus.Registerer) *Billing {
	if reg == nil {
		return &Billing{}
	}
	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_invoice_commits_total",
		Help: "Invoice commit attempts by status and outcome.",
	}, []string{"status", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pos_invoice_commit_duration_seconds",
		Help:    "Duration of invoice commit sequences.",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pos_billing_sessions_open",
		Help: "Billing sessions currently open.",
	})
	reg.MustRegister(commits, duration, sessions)
	return &Billing{commits: commits, duration: duration, sessions: sessions}
}

func (b *Billing) IncCommit(status, outcome string) {
	if b == nil || b.commits == nil {
		return
	}
	b.commits.WithLabelValues(normalizeLabel(status), normalizeLabel(outcome)).Inc()
}

func (b *Billing) ObserveCommit(status string, d time.Duration) {
	if b == nil || b.duration == nil {
		return
	}
	b.duration.WithLabelValues(normalizeLabel(status)).Observe(d.Seconds())
}

func (b *Billing) SetOpenSessions(n int) {
	if b == nil || b.sessions == nil {
		return
	}
	b.sessions.Set(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
