package screening

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the screening service.
// A nil *Metrics is valid and records nothing, which keeps unit tests
// free of registry bookkeeping.
type Metrics struct {
	ScreeningsTotal   *prometheus.CounterVec
	ScreeningDuration prometheus.Histogram
	AnnotatorFailures *prometheus.CounterVec
	ValidationFailures prometheus.Counter
}

// NewMetrics creates and registers the screening metrics with the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ScreeningsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "amlguard",
				Subsystem: "screening",
				Name:      "runs_total",
				Help:      "Total screening runs by terminal disposition",
			},
			[]string{"disposition"},
		),
		ScreeningDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "amlguard",
				Subsystem: "screening",
				Name:      "run_duration_seconds",
				Help:      "End-to-end screening run duration",
				Buckets:   prometheus.DefBuckets,
			},
		),
		AnnotatorFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "amlguard",
				Subsystem: "screening",
				Name:      "annotator_failures_total",
				Help:      "Annotator calls that exhausted their retry budget, by source",
			},
			[]string{"source"},
		),
		ValidationFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "amlguard",
				Subsystem: "screening",
				Name:      "validation_failures_total",
				Help:      "Screening requests rejected before entering the graph",
			},
		),
	}
}

// RunCompleted records a finished run.
func (m *Metrics) RunCompleted(disposition ReportingStatus, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ScreeningsTotal.WithLabelValues(string(disposition)).Inc()
	m.ScreeningDuration.Observe(elapsed.Seconds())
}

// AnnotatorFailure records an exhausted annotator call.
func (m *Metrics) AnnotatorFailure(source string) {
	if m == nil {
		return
	}
	m.AnnotatorFailures.WithLabelValues(source).Inc()
}

// ValidationFailure records a rejected screening request.
func (m *Metrics) ValidationFailure() {
	if m == nil {
		return
	}
	m.ValidationFailures.Inc()
}
