package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/flemzord/tgbridge/internal/security"
)

// setWebhookRequest is the body of PUT /api/webhook.
type setWebhookRequest struct {
	URL string `json:"url"`
}

// handleGetConfig returns the running config with secrets redacted.
func (g *Gateway) handleGetConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snapshot, err := g.opts.ConfigSnapshot()
		if err != nil {
			g.logger.Error("config snapshot failed", "error", err)
			http.Error(w, "config not available", http.StatusServiceUnavailable)
			return
		}
		security.NewRedactor().RedactMap(snapshot)
		writeJSON(w, http.StatusOK, snapshot)
	}
}

// handleWebhookInfo proxies getWebhookInfo.
func (g *Gateway) handleWebhookInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := g.opts.Admin.WebhookInfo(r.Context())
		if err != nil {
			g.logger.Error("webhook info failed", "error", err)
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

// handleSetWebhook registers the webhook URL given in the body.
func (g *Gateway) handleSetWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setWebhookRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil || req.URL == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be {\"url\": \"https://...\"}"})
			return
		}
		if err := g.opts.Admin.SetWebhook(r.Context(), req.URL); err != nil {
			g.logger.Error("set webhook failed", "error", err)
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}
		g.logger.Info("webhook registered", "url", req.URL)
		writeJSON(w, http.StatusOK, map[string]string{"status": "registered"})
	}
}

// handleDeleteWebhook removes the webhook. ?drop_pending=true also
// discards queued updates.
func (g *Gateway) handleDeleteWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drop, _ := strconv.ParseBool(r.URL.Query().Get("drop_pending"))
		if err := g.opts.Admin.DeleteWebhook(r.Context(), drop); err != nil {
			g.logger.Error("delete webhook failed", "error", err)
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}
		g.logger.Info("webhook deleted", "drop_pending", drop)
		w.WriteHeader(http.StatusNoContent)
	}
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
