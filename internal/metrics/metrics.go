// Package metrics exposes the service's Prometheus collectors on a private
// registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glotvold/go-site/pkg/form"
	"github.com/glotvold/go-site/pkg/submission"
)

const namespace = "glotvold"

// Metrics holds the collectors. The zero value is not usable; use New.
type Metrics struct {
	registry *prometheus.Registry

	submissions *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	transitions *prometheus.CounterVec
	invalid     *prometheus.CounterVec
	phoneClicks *prometheus.CounterVec
	throttled   prometheus.Counter
}

var _ submission.Observer = (*Metrics)(nil)

// New registers every collector on a fresh registry. Go runtime and process
// collectors are included when withRuntime is set.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Contact form deliveries by channel and outcome.",
		}, []string{"channel", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submission_duration_seconds",
			Help:      "Time spent in the submission channel.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 1.5, 2.5, 5, 10},
		}, []string{"channel"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "form_transitions_total",
			Help:      "Contact form state changes.",
		}, []string{"surface", "from", "to"}),
		invalid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "form_invalid_fields_total",
			Help:      "Fields rejected at submit.",
		}, []string{"field"}),
		phoneClicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phone_clicks_total",
			Help:      "Clicks on tel: links by page.",
		}, []string{"page"}),
		throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_throttled_total",
			Help:      "Submissions refused by the rate limiter.",
		}),
	}
	m.registry.MustRegister(m.submissions, m.latency, m.transitions, m.invalid, m.phoneClicks, m.throttled)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSubmission implements submission.Observer.
func (m *Metrics) ObserveSubmission(channel, outcome string, elapsed time.Duration) {
	if channel == "" {
		channel = "unknown"
	}
	m.submissions.WithLabelValues(channel, outcome).Inc()
	m.latency.WithLabelValues(channel).Observe(elapsed.Seconds())
}

// TransitionRecorder returns a listener for Orchestrator.OnTransition.
// surface distinguishes the page form from the JSON API.
func (m *Metrics) TransitionRecorder(surface string) form.TransitionFunc {
	return func(t form.Transition) {
		m.transitions.WithLabelValues(surface, t.From.String(), t.To.String()).Inc()
	}
}

// RecordInvalid counts each field a submit rejected.
func (m *Metrics) RecordInvalid(err *form.ValidationError) {
	if err == nil {
		return
	}
	for _, result := range err.Fields {
		m.invalid.WithLabelValues(result.Field.String()).Inc()
	}
}

// RecordPhoneClick counts a tel: link click.
func (m *Metrics) RecordPhoneClick(page string) {
	if page == "" {
		page = "unknown"
	}
	m.phoneClicks.WithLabelValues(page).Inc()
}

// RecordThrottled counts a refused submission.
func (m *Metrics) RecordThrottled() {
	m.throttled.Inc()
}
