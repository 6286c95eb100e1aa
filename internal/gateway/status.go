package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Version string          `json:"version,omitempty"`
	Uptime  int64           `json:"uptime_seconds"`
	Sources []string        `json:"sources"`
	Metrics MetricsSnapshot `json:"metrics"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Version: g.opts.Version,
			Uptime:  int64(time.Since(g.startedAt) / time.Second),
			Sources: g.dispatcher.Sources(),
			Metrics: g.metrics.Snapshot(),
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
