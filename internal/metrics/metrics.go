// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tgbridge"

// Request outcomes recorded by the Telegram client.
const (
	OutcomeSuccess        = "success"
	OutcomeFailure        = "failure"
	OutcomeTransportError = "transport_error"
)

// Collectors groups the adapter's counters and histograms. A nil
// *Collectors is valid and records nothing.
type Collectors struct {
	updates    *prometheus.CounterVec
	duplicates prometheus.Counter
	requests   *prometheus.CounterVec
	retries    *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Webhook updates received, by classified event kind.",
		}, []string{"kind"}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_duplicate_total",
			Help:      "Webhook updates dropped because their update_id was already handled.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Bot API request attempts, by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_retries_total",
			Help:      "Bot API request retries, by endpoint.",
		}, []string{"endpoint"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Bot API request attempt latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	if reg != nil {
		reg.MustRegister(c.updates, c.duplicates, c.requests, c.retries, c.latency)
	}
	return c
}

// Update counts one classified webhook update.
func (c *Collectors) Update(kind string) {
	if c == nil {
		return
	}
	c.updates.WithLabelValues(kind).Inc()
}

// Duplicate counts one redelivered update.
func (c *Collectors) Duplicate() {
	if c == nil {
		return
	}
	c.duplicates.Inc()
}

// Request records one Bot API attempt.
func (c *Collectors) Request(endpoint, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(endpoint, outcome).Inc()
	c.latency.WithLabelValues(endpoint).Observe(d.Seconds())
}

// Retry counts one retry of endpoint.
func (c *Collectors) Retry(endpoint string) {
	if c == nil {
		return
	}
	c.retries.WithLabelValues(endpoint).Inc()
}
