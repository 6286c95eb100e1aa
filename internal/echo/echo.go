// Package echo is a minimal application handler: it mirrors every message
// back to its chat. It is what `tgbridge serve` runs when no other
// application is wired in, and it exercises every reply shape the adapter
// can compile.
package echo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/flemzord/tgbridge/internal/channel"
	"github.com/flemzord/tgbridge/internal/telegram"
	"github.com/flemzord/tgbridge/pkg/message"
)

// Replier is the part of *telegram.Driver the handler needs.
type Replier interface {
	Reply(ctx context.Context, reply message.Reply, target message.IncomingMessage, extra map[string]any) (*telegram.Response, error)
	SendChatAction(ctx context.Context, target message.IncomingMessage, action telegram.ChatAction) (*telegram.Response, error)
	ConversationAnswer(ev telegram.Event, msg message.IncomingMessage) message.Answer
}

// Options configures a Handler.
type Options struct {
	// Typing sends a typing action before each reply.
	Typing bool
	Logger *slog.Logger
}

// Handler echoes inbound messages.
type Handler struct {
	typing bool
	chunk  channel.ChunkConfig
	logger *slog.Logger
}

// New creates a Handler.
func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		typing: opts.Typing,
		chunk:  channel.ChunkConfig{MaxLength: channel.TelegramMaxMessageLength, PreserveBlocks: true},
		logger: logger,
	}
}

// UpdateHandler adapts h to the webhook receiver callback.
func (h *Handler) UpdateHandler() telegram.UpdateHandler {
	return func(ctx context.Context, d *telegram.Driver, in telegram.Inbound) error {
		return h.Handle(ctx, d, in)
	}
}

// Handle replies to every message in in.
func (h *Handler) Handle(ctx context.Context, r Replier, in telegram.Inbound) error {
	var errs []error
	for _, msg := range in.Messages {
		if err := h.handleOne(ctx, r, in.Event, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *Handler) handleOne(ctx context.Context, r Replier, ev telegram.Event, msg message.IncomingMessage) error {
	switch ev.Kind {
	case telegram.KindLogin:
		h.logger.Info("login verified", "user_id", msg.Sender)
		return nil
	case telegram.KindInlineQuery:
		return nil
	case telegram.KindGenericEvent:
		h.logger.Debug("ignoring service event", "event", ev.Name, "chat_id", msg.ChatID())
		return nil
	}

	if h.typing {
		if _, err := r.SendChatAction(ctx, msg, telegram.ActionTyping); err != nil {
			h.logger.Warn("typing action failed", "chat_id", msg.ChatID(), "error", err)
		}
	}

	for _, reply := range h.replies(ev, r.ConversationAnswer(ev, msg), msg) {
		resp, err := r.Reply(ctx, reply, msg, nil)
		if err != nil {
			return fmt.Errorf("echo: reply to %s: %w", msg.ChatID(), err)
		}
		if !resp.OK() {
			h.logger.Warn("telegram rejected reply", "chat_id", msg.ChatID(), "status", resp.StatusCode)
		}
	}
	return nil
}

func (h *Handler) replies(ev telegram.Event, answer message.Answer, msg message.IncomingMessage) []message.Reply {
	if answer.Interactive {
		return []message.Reply{message.Text("You picked: " + answer.Value)}
	}

	var out []message.Reply
	for _, a := range msg.Attachments {
		if a.IsUnresolved() {
			out = append(out, message.Text(fmt.Sprintf("Could not fetch your %s: %s", a.Expected, a.Reason)))
			continue
		}
		out = append(out, message.NewTextMessage("").WithAttachment(a))
	}
	if len(out) > 0 {
		return out
	}

	text := strings.TrimSpace(msg.Text)
	switch {
	case ev.Kind == telegram.KindText && text == "/start":
		return []message.Reply{message.NewQuestion("Echo bot ready. Pick one:").AddButtons(
			message.NewButton("Yes").WithValue("yes"),
			message.NewButton("No").WithValue("no"),
			message.NewButton("Docs").WithURL("https://core.telegram.org/bots/api"),
		)}
	case text == "":
		return nil
	}

	for _, chunk := range channel.SplitText(text, h.chunk) {
		out = append(out, message.Text(chunk))
	}
	return out
}

// InlineListener answers inline queries with one article quoting the query.
func InlineListener(query map[string]any) []map[string]any {
	q, _ := query["query"].(string)
	if q == "" {
		return nil
	}
	return []map[string]any{telegram.NewArticle(map[string]any{
		"id":           "echo",
		"title":        "Echo: " + q,
		"message_text": q,
	})}
}
