package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// UnlockMetrics records the outcome of unlock attempts.
type UnlockMetrics struct {
	attempts   *prometheus.CounterVec
	pages      prometheus.Histogram
	inputBytes prometheus.Histogram
}

// NewUnlockMetrics creates UnlockMetrics registered on reg.
func NewUnlockMetrics(reg prometheus.Registerer) (*UnlockMetrics, error) {
	m := &UnlockMetrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdf_unlock_total",
				Help: "Unlock attempts by result.",
			},
			[]string{"result"},
		),
		pages: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pdf_unlock_pages",
			Help:    "Page count of successfully unlocked documents.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		inputBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pdf_unlock_input_bytes",
			Help:    "Size of uploaded documents in bytes.",
			Buckets: prometheus.ExponentialBuckets(16<<10, 2, 12),
		}),
	}

	for _, c := range []prometheus.Collector{m.attempts, m.pages, m.inputBytes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one attempt. result is "ok" or an error kind name.
// A nil receiver is a no-op so metrics can be switched off.
func (m *UnlockMetrics) Observe(result string, inputBytes, pages int) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(result).Inc()
	m.inputBytes.Observe(float64(inputBytes))
	if result == "ok" {
		m.pages.Observe(float64(pages))
	}
}
