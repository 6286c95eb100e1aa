package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
)

// WebhookHandler processes one webhook request. GET requests carry their
// data in query and have an empty body.
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, source string, body []byte, query url.Values, headers http.Header) error
}

// WebhookDispatcher routes incoming webhooks to registered handlers.
type WebhookDispatcher struct {
	mu       sync.RWMutex
	handlers map[string]WebhookHandler
	maxBody  int64
	metrics  *Metrics
	logger   *slog.Logger
}

// NewWebhookDispatcher creates a ready-to-use dispatcher. maxBody <= 0
// means DefaultMaxBodyBytes.
func NewWebhookDispatcher(logger *slog.Logger, maxBody int64, metrics *Metrics) *WebhookDispatcher {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	if metrics == nil {
		metrics = &Metrics{}
	}
	return &WebhookDispatcher{
		handlers: make(map[string]WebhookHandler),
		maxBody:  maxBody,
		metrics:  metrics,
		logger:   logger,
	}
}

// Register adds a handler for the given source, replacing any previous one.
func (d *WebhookDispatcher) Register(source string, h WebhookHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[source] = h
}

// Sources returns the registered source names, sorted.
func (d *WebhookDispatcher) Sources() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.handlers))
	for s := range d.handlers {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ServeHTTP implements http.Handler. POST delivers updates; GET delivers
// login-widget redirects whose fields are in the query string.
func (d *WebhookDispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	source := chi.URLParam(r, "source")
	if source == "" {
		http.Error(w, "missing source", http.StatusBadRequest)
		return
	}

	d.mu.RLock()
	handler, ok := d.handlers[source]
	d.mu.RUnlock()
	if !ok {
		d.metrics.RecordUnrouted()
		d.logger.Warn("webhook received for unregistered source", "source", source)
		http.Error(w, "unknown source", http.StatusNotFound)
		return
	}

	var body []byte
	if r.Method == http.MethodPost {
		var err error
		body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, d.maxBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
	}

	d.metrics.RecordReceived()
	if err := handler.HandleWebhook(r.Context(), source, body, r.URL.Query(), r.Header); err != nil {
		d.metrics.RecordError()
		d.logger.Error("webhook handler failed", "source", source, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}
