package submission

import (
	"time"

	"crpt-gateway/client/submission/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa os coletores Prometheus do cliente. Um *Metrics nil é válido
// e não registra nada.
type Metrics struct {
	submissions *prometheus.CounterVec
	admission   prometheus.Histogram
	duration    *prometheus.HistogramVec
}

// NewMetrics registra os coletores em reg (prometheus.DefaultRegisterer se nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crpt_submissions_total",
				Help: "Total number of admitted document submissions by outcome",
			},
			[]string{"outcome"},
		),
		admission: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crpt_admission_wait_seconds",
				Help:    "Time callers spent blocked in the admission gate",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
			},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crpt_submission_duration_seconds",
				Help:    "Duration of the HTTP part of a submission",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) observeAdmission(waited time.Duration) {
	if m == nil {
		return
	}
	m.admission.Observe(waited.Seconds())
}

func (m *Metrics) observeSubmission(outcome domain.Outcome, d time.Duration) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(string(outcome)).Inc()
	m.duration.WithLabelValues(string(outcome)).Observe(d.Seconds())
}
