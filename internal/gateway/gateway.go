// Package gateway provides the HTTP server that receives Telegram webhooks
// and exposes health, metrics and admin endpoints. It binds to loopback by
// default; put a TLS-terminating proxy in front for Telegram.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// WebhookAdmin manages the bot's webhook registration with Telegram.
type WebhookAdmin interface {
	SetWebhook(ctx context.Context, url string) error
	DeleteWebhook(ctx context.Context, dropPending bool) error
	WebhookInfo(ctx context.Context) (map[string]any, error)
}

// Options wires optional collaborators into a Gateway.
type Options struct {
	Logger *slog.Logger
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Checks   map[string]HealthCheck
	// Admin backs /api/webhook. Nil disables those routes.
	Admin WebhookAdmin
	// ConfigSnapshot returns the running configuration for /api/config.
	// Secrets are redacted before it is served.
	ConfigSnapshot func() (map[string]any, error)
	Version        string
}

// Gateway is the HTTP gateway.
type Gateway struct {
	config     Config
	opts       Options
	logger     *slog.Logger
	metrics    *Metrics
	dispatcher *WebhookDispatcher
	startedAt  time.Time

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates a gateway. Defaults are applied to a copy of cfg.
func New(cfg Config, opts Options) *Gateway {
	cfg.ApplyDefaults()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := &Metrics{}
	return &Gateway{
		config:     cfg,
		opts:       opts,
		logger:     logger,
		metrics:    m,
		dispatcher: NewWebhookDispatcher(logger, cfg.MaxBodyBytes, m),
		startedAt:  time.Now(),
	}
}

// Dispatcher returns the webhook dispatcher so handlers can register.
func (g *Gateway) Dispatcher() *WebhookDispatcher { return g.dispatcher }

// Handler returns the fully wired router.
func (g *Gateway) Handler() http.Handler { return g.buildRouter() }

// Start listens on the configured address and serves in the background.
func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.server != nil {
		return errors.New("gateway: already started")
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", g.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen failed: %w", err)
	}

	g.startedAt = time.Now()
	g.listener = ln
	g.server = &http.Server{
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	srv := g.server
	go func() {
		g.logger.Info("gateway listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address once started.
func (g *Gateway) Addr() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listener == nil {
		return ""
	}
	return g.listener.Addr().String()
}

// Stop shuts the server down gracefully within the configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	g.mu.Lock()
	srv := g.server
	g.server = nil
	g.listener = nil
	g.mu.Unlock()
	if srv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return srv.Shutdown(shutdownCtx)
}
