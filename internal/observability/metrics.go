package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects synthesis metrics. Intended for operational dashboards,
// never for control flow.
type Metrics struct {
	synthesesTotal   *prometheus.CounterVec
	humanReviewTotal prometheus.Counter
	duration         prometheus.Histogram
}

// NewMetrics creates and registers the synthesis metric collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		synthesesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "governance",
			Subsystem: "synthesis",
			Name:      "rules_total",
			Help:      "Synthesized rules by path and category.",
		}, []string{"path", "category"}),
		humanReviewTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "governance",
			Subsystem: "synthesis",
			Name:      "human_review_total",
			Help:      "Results flagged for mandatory human review.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "governance",
			Subsystem: "synthesis",
			Name:      "duration_seconds",
			Help:      "Wall time per GenerateRule call.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.synthesesTotal, m.humanReviewTotal, m.duration)
	return m
}

// RecordSynthesis records one completed GenerateRule call
func (m *Metrics) RecordSynthesis(path, category string, requiresReview bool, elapsed time.Duration) {
	m.synthesesTotal.WithLabelValues(path, category).Inc()
	if requiresReview {
		m.humanReviewTotal.Inc()
	}
	m.duration.Observe(elapsed.Seconds())
}
