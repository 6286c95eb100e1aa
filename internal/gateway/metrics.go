package gateway

import "sync/atomic"

// Metrics tracks webhook traffic with atomic counters. It backs the
// /status snapshot; the Prometheus collectors cover the same ground for
// scraping.
type Metrics struct {
	received atomic.Int64
	errors   atomic.Int64
	unrouted atomic.Int64
}

// RecordReceived records a request routed to a handler.
func (m *Metrics) RecordReceived() {
	m.received.Add(1)
}

// RecordError records a handler failure.
func (m *Metrics) RecordError() {
	m.errors.Add(1)
}

// RecordUnrouted records a request for an unregistered source.
func (m *Metrics) RecordUnrouted() {
	m.unrouted.Add(1)
}

// Snapshot returns a point-in-time view of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Received: m.received.Load(),
		Errors:   m.errors.Load(),
		Unrouted: m.unrouted.Load(),
	}
}

// MetricsSnapshot is a serializable point-in-time metrics view.
type MetricsSnapshot struct {
	Received int64 `json:"received"`
	Errors   int64 `json:"errors"`
	Unrouted int64 `json:"unrouted"`
}
