package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Public, no auth required.
	r.Get("/health", g.handleHealth())
	if g.opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(g.opts.Gatherer, promhttp.HandlerOpts{}))
	}

	// Webhooks authenticate themselves (Telegram secret header, login hash).
	r.Post("/webhooks/{source}", g.dispatcher.ServeHTTP)
	r.Get("/webhooks/{source}", g.dispatcher.ServeHTTP)

	// Admin endpoints, not mounted if no auth configured.
	if g.config.Auth.IsConfigured() {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(g.config.Auth, g.logger))
			r.Get("/status", g.handleStatus())
			r.Route("/api", func(r chi.Router) {
				if g.opts.ConfigSnapshot != nil {
					r.Get("/config", g.handleGetConfig())
				}
				if g.opts.Admin != nil {
					r.Get("/webhook", g.handleWebhookInfo())
					r.Put("/webhook", g.handleSetWebhook())
					r.Delete("/webhook", g.handleDeleteWebhook())
				}
			})
		})
	}

	return r
}
