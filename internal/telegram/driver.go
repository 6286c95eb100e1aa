package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/flemzord/tgbridge/pkg/message"
)

// Inbound is the outcome of handling one request.
type Inbound struct {
	Event    Event
	Messages []message.IncomingMessage
}

// Driver is the Telegram adapter facade: it classifies and translates
// inbound requests and compiles and sends replies.
type Driver struct {
	config     Config
	client     *Client
	translator *Translator
	compiler   *Compiler
	inline     *InlineRegistry
	logger     *slog.Logger
	now        func() time.Time
}

// NewDriver composes a driver. inline may be nil when the bot does not
// answer inline queries.
func NewDriver(cfg Config, client *Client, inline *InlineRegistry, logger *slog.Logger) *Driver {
	cfg.ApplyDefaults()
	if inline == nil {
		inline = NewInlineRegistry(cfg.CacheTime)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		config:     cfg,
		client:     client,
		translator: NewTranslator(NewResolver(client), cfg.AttachmentFailure),
		compiler:   NewCompiler(cfg.DefaultAdditionalParameters),
		inline:     inline,
		logger:     logger,
		now:        time.Now,
	}
}

// IsConfigured reports whether a bot token is set.
func (d *Driver) IsConfigured() bool {
	return d.config.Token != ""
}

// Inline returns the inline query registry.
func (d *Driver) Inline() *InlineRegistry { return d.inline }

// Handle classifies req and translates it. It returns false when the
// request is not a Telegram event this driver understands. Inline queries
// are not answered here; callers answer them with AnswerInlineQuery once
// the sender is allowed.
func (d *Driver) Handle(ctx context.Context, req *Request) (Inbound, bool, error) {
	ev, ok := Classify(req, ClassifyConfig{
		Token:       d.config.Token,
		SecretToken: d.config.APISecretToken,
		Now:         d.now(),
	})
	if !ok {
		return Inbound{}, false, nil
	}

	msg, err := d.translator.Translate(ctx, req, ev)
	if err != nil {
		return Inbound{Event: ev}, true, err
	}
	return Inbound{Event: ev, Messages: []message.IncomingMessage{msg}}, true, nil
}

// Reply compiles reply for the chat target came from and sends it.
func (d *Driver) Reply(ctx context.Context, reply message.Reply, target message.IncomingMessage, extra map[string]any) (*Response, error) {
	env, err := d.compiler.Compile(reply, target, extra)
	if err != nil {
		return nil, err
	}
	return d.Send(ctx, env)
}

// Send delivers a prepared envelope.
func (d *Driver) Send(ctx context.Context, env Envelope) (*Response, error) {
	return d.client.Send(ctx, env.Endpoint, nil, env.Params)
}

// SendChatAction shows action in the chat target came from.
func (d *Driver) SendChatAction(ctx context.Context, target message.IncomingMessage, action ChatAction) (*Response, error) {
	return d.Send(ctx, d.compiler.ChatAction(target, action))
}

// Types sends a typing indicator.
func (d *Driver) Types(ctx context.Context, target message.IncomingMessage) error {
	_, err := d.SendChatAction(ctx, target, ActionTyping)
	return err
}

// User looks up the sender of msg in its chat with getChatMember.
func (d *Driver) User(ctx context.Context, msg message.IncomingMessage) (message.User, error) {
	env := getChatMemberEnvelope(msg.ChatID(), msg.Sender)
	resp, err := d.Send(ctx, env)
	if err != nil {
		return message.User{}, &UserLookupError{ChatID: msg.ChatID(), UserID: msg.Sender, Description: err.Error(), Err: err}
	}

	result, err := DecodeResult[map[string]any](resp)
	if err != nil {
		return message.User{}, &UserLookupError{ChatID: msg.ChatID(), UserID: msg.Sender, Description: err.Error(), Err: err}
	}
	if resp.StatusCode != http.StatusOK || !result.OK {
		return message.User{}, &UserLookupError{ChatID: msg.ChatID(), UserID: msg.Sender, Description: result.Description}
	}

	user := object(result.Result["user"])
	return message.User{
		ID:        str(user["id"]),
		FirstName: str(user["first_name"]),
		LastName:  str(user["last_name"]),
		Username:  str(user["username"]),
		Info:      result.Result,
	}, nil
}

// ConversationAnswer wraps msg as an answer. Button presses become
// interactive answers carrying the button value and callback id.
func (d *Driver) ConversationAnswer(ev Event, msg message.IncomingMessage) message.Answer {
	if ev.Kind == KindCallbackQuery {
		return message.Answer{
			Text:        str(ev.Callback["data"]),
			Value:       str(ev.Callback["data"]),
			CallbackID:  str(ev.Callback["id"]),
			Interactive: true,
			Message:     msg,
		}
	}
	return message.Answer{Text: msg.Text, Message: msg}
}

// MessagesHandled runs after the application processed ev. For callback
// queries it removes the inline keyboard the button belonged to, unless
// hide_inline_keyboard is off.
func (d *Driver) MessagesHandled(ctx context.Context, ev Event) error {
	if ev.Kind != KindCallbackQuery || !d.config.HidesInlineKeyboard() {
		return nil
	}
	if id := str(ev.Callback["inline_message_id"]); id != "" {
		_, err := d.Send(ctx, inlineRemoveKeyboardEnvelope(id))
		return err
	}
	chatID := str(field(ev.Callback, "message", "chat", "id"))
	messageID := str(field(ev.Callback, "message", "message_id"))
	if chatID == "" || messageID == "" {
		return nil
	}
	return d.RemoveInlineKeyboard(ctx, chatID, messageID)
}

// RemoveInlineKeyboard clears the inline keyboard of a sent message.
func (d *Driver) RemoveInlineKeyboard(ctx context.Context, chatID, messageID string) error {
	_, err := d.Send(ctx, removeKeyboardEnvelope(chatID, messageID))
	return err
}

// EditInlineKeyboard calls editMessageReplyMarkup with params.
func (d *Driver) EditInlineKeyboard(ctx context.Context, params map[string]any) (*Response, error) {
	return d.Send(ctx, Envelope{Endpoint: EndpointEditMessageReplyMarkup, Params: cloneMap(params)})
}

// DeleteMessage deletes a message from a chat.
func (d *Driver) DeleteMessage(ctx context.Context, chatID, messageID string) (*Response, error) {
	return d.Send(ctx, deleteMessageEnvelope(chatID, messageID))
}

// AnswerInlineQuery answers query with the registry's results.
func (d *Driver) AnswerInlineQuery(ctx context.Context, query map[string]any) (*Response, error) {
	return d.Send(ctx, d.inline.Answer(query))
}

// SetWebhook registers webhookURL with Telegram, passing the configured
// secret token and allowed updates.
func (d *Driver) SetWebhook(ctx context.Context, webhookURL string) error {
	if !d.IsConfigured() {
		return ErrNotConfigured
	}
	params := map[string]any{"url": webhookURL}
	if d.config.APISecretToken != "" {
		params["secret_token"] = d.config.APISecretToken
	}
	if len(d.config.AllowedUpdates) > 0 {
		params["allowed_updates"] = d.config.AllowedUpdates
	}
	return d.expectOK(ctx, Envelope{Endpoint: EndpointSetWebhook, Params: params})
}

// DeleteWebhook removes the webhook registration.
func (d *Driver) DeleteWebhook(ctx context.Context, dropPending bool) error {
	if !d.IsConfigured() {
		return ErrNotConfigured
	}
	params := map[string]any{}
	if dropPending {
		params["drop_pending_updates"] = true
	}
	return d.expectOK(ctx, Envelope{Endpoint: EndpointDeleteWebhook, Params: params})
}

// WebhookInfo returns Telegram's view of the registered webhook: url,
// pending_update_count, last_error_message and so on.
func (d *Driver) WebhookInfo(ctx context.Context) (map[string]any, error) {
	if !d.IsConfigured() {
		return nil, ErrNotConfigured
	}
	resp, err := d.Send(ctx, Envelope{Endpoint: EndpointGetWebhookInfo, Params: map[string]any{}})
	if err != nil {
		return nil, err
	}
	result, err := DecodeResult[map[string]any](resp)
	if err != nil {
		return nil, err
	}
	if !resp.OK() || !result.OK {
		return nil, fmt.Errorf("telegram: %s: status %d: %s", EndpointGetWebhookInfo, resp.StatusCode, result.Description)
	}
	return result.Result, nil
}

func (d *Driver) expectOK(ctx context.Context, env Envelope) error {
	resp, err := d.Send(ctx, env)
	if err != nil {
		return err
	}
	if !resp.OK() {
		result, _ := DecodeResult[any](resp)
		return fmt.Errorf("telegram: %s: status %d: %s", env.Endpoint, resp.StatusCode, result.Description)
	}
	return nil
}
