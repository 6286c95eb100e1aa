package telegram

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/flemzord/tgbridge/internal/channel"
	"github.com/flemzord/tgbridge/internal/metrics"
	"github.com/flemzord/tgbridge/pkg/message"
)

// UpdateHandler is the application callback for translated events.
type UpdateHandler func(ctx context.Context, d *Driver, in Inbound) error

// Journal remembers handled update_ids so redeliveries are dropped.
type Journal interface {
	Seen(ctx context.Context, updateID int64) (bool, error)
	Record(ctx context.Context, updateID int64, kind string) error
}

// ErrorReporter receives handler failures.
type ErrorReporter interface {
	Capture(ctx context.Context, err error, tags map[string]string)
}

// ReceiverOptions configures a WebhookReceiver. Every field is optional.
type ReceiverOptions struct {
	// AllowList filters translated messages. Nil or empty lets everyone through.
	AllowList *channel.AllowList
	Journal   Journal
	Metrics   *metrics.Collectors
	Reporter  ErrorReporter
	Logger    *slog.Logger
}

// WebhookReceiver processes incoming Telegram webhook requests.
// It implements gateway.WebhookHandler.
type WebhookReceiver struct {
	driver    *Driver
	handler   UpdateHandler
	allowList *channel.AllowList
	journal   Journal
	metrics   *metrics.Collectors
	reporter  ErrorReporter
	logger    *slog.Logger
}

// NewWebhookReceiver creates a receiver that hands translated events to handler.
func NewWebhookReceiver(driver *Driver, handler UpdateHandler, opts ReceiverOptions) *WebhookReceiver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookReceiver{
		driver:    driver,
		handler:   handler,
		allowList: opts.AllowList,
		journal:   opts.Journal,
		metrics:   opts.Metrics,
		reporter:  opts.Reporter,
		logger:    logger,
	}
}

// HandleWebhook processes one request from the gateway dispatcher. Requests
// that are not Telegram events, redeliveries and denied senders are
// acknowledged without error so Telegram does not retry them.
func (w *WebhookReceiver) HandleWebhook(ctx context.Context, source string, body []byte, query url.Values, headers http.Header) error {
	req, err := NewRequest(body, query, headers)
	if err != nil {
		w.logger.Warn("ignoring malformed webhook body", "source", source, "error", err)
		return nil
	}

	updateID, hasID := req.Update().UpdateID()
	if hasID && w.journal != nil {
		seen, err := w.journal.Seen(ctx, updateID)
		switch {
		case err != nil:
			w.logger.Warn("update journal lookup failed", "update_id", updateID, "error", err)
		case seen:
			w.metrics.Duplicate()
			w.logger.Debug("dropping redelivered update", "update_id", updateID)
			return nil
		}
	}

	in, ok, err := w.driver.Handle(ctx, req)
	if !ok {
		w.logger.Debug("skipping unrecognized webhook request", "source", source, "update_id", updateID)
		return nil
	}
	kind := in.Event.Kind.String()
	w.metrics.Update(kind)
	if err != nil {
		w.capture(ctx, err, kind, updateID)
		if errors.Is(err, ErrMalformedUpdate) {
			w.logger.Warn("dropping untranslatable update", "update_id", updateID, "kind", kind, "error", err)
			w.record(ctx, hasID, updateID, kind)
			return nil
		}
		return err
	}

	in.Messages = w.filter(in.Messages)
	if len(in.Messages) == 0 {
		w.logger.Debug("webhook update denied by allow list", "update_id", updateID, "kind", kind)
		w.record(ctx, hasID, updateID, kind)
		return nil
	}

	if in.Event.Kind == KindInlineQuery {
		if _, err := w.driver.AnswerInlineQuery(ctx, in.Event.InlineQuery); err != nil {
			w.capture(ctx, err, kind, updateID)
			return err
		}
	}

	if w.handler != nil {
		if err := w.handler(ctx, w.driver, in); err != nil {
			w.capture(ctx, err, kind, updateID)
			return err
		}
	}

	if err := w.driver.MessagesHandled(ctx, in.Event); err != nil {
		w.logger.Warn("post-handling cleanup failed", "update_id", updateID, "error", err)
	}
	w.record(ctx, hasID, updateID, kind)
	return nil
}

func (w *WebhookReceiver) filter(msgs []message.IncomingMessage) []message.IncomingMessage {
	if w.allowList.Len() == 0 {
		return msgs
	}
	allowed := msgs[:0:0]
	for _, m := range msgs {
		if w.allowList.IsAllowed(m) {
			allowed = append(allowed, m)
		}
	}
	return allowed
}

func (w *WebhookReceiver) record(ctx context.Context, hasID bool, updateID int64, kind string) {
	if !hasID || w.journal == nil {
		return
	}
	if err := w.journal.Record(ctx, updateID, kind); err != nil {
		w.logger.Warn("update journal write failed", "update_id", updateID, "error", err)
	}
}

func (w *WebhookReceiver) capture(ctx context.Context, err error, kind string, updateID int64) {
	if w.reporter == nil {
		return
	}
	w.reporter.Capture(ctx, err, map[string]string{
		"event_kind": kind,
		"update_id":  strconv.FormatInt(updateID, 10),
	})
}
