package telegram

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/flemzord/tgbridge/pkg/message"
)

// Bot API endpoints the adapter calls.
const (
	EndpointSendMessage            = "sendMessage"
	EndpointSendPhoto              = "sendPhoto"
	EndpointSendVideo              = "sendVideo"
	EndpointSendAudio              = "sendAudio"
	EndpointSendDocument           = "sendDocument"
	EndpointSendLocation           = "sendLocation"
	EndpointSendVenue              = "sendVenue"
	EndpointSendContact            = "sendContact"
	EndpointSendChatAction         = "sendChatAction"
	EndpointEditMessageReplyMarkup = "editMessageReplyMarkup"
	EndpointDeleteMessage          = "deleteMessage"
	EndpointGetChatMember          = "getChatMember"
	EndpointAnswerInlineQuery      = "answerInlineQuery"
	EndpointSetWebhook             = "setWebhook"
	EndpointDeleteWebhook          = "deleteWebhook"
	EndpointGetWebhookInfo         = "getWebhookInfo"
)

// ChatAction is an ephemeral status shown in the chat header.
type ChatAction string

// Chat actions accepted by sendChatAction.
const (
	ActionTyping          ChatAction = "typing"
	ActionUploadPhoto     ChatAction = "upload_photo"
	ActionRecordVideo     ChatAction = "record_video"
	ActionUploadVideo     ChatAction = "upload_video"
	ActionRecordVoice     ChatAction = "record_voice"
	ActionUploadVoice     ChatAction = "upload_voice"
	ActionUploadDocument  ChatAction = "upload_document"
	ActionChooseSticker   ChatAction = "choose_sticker"
	ActionFindLocation    ChatAction = "find_location"
	ActionRecordVideoNote ChatAction = "record_video_note"
	ActionUploadVideoNote ChatAction = "upload_video_note"
)

// Envelope is one Bot API call ready to be sent.
type Envelope struct {
	Endpoint string
	Params   map[string]any
}

// Compiler turns replies into envelopes. Configured default parameters are
// merged into every send.
type Compiler struct {
	defaults map[string]any
}

// NewCompiler creates a compiler with the given default parameters.
func NewCompiler(defaults map[string]any) *Compiler {
	return &Compiler{defaults: cloneMap(defaults)}
}

// Compile builds the envelope that delivers reply to the chat target came
// from. extra is merged over the defaults and wins on conflicts.
func (c *Compiler) Compile(reply message.Reply, target message.IncomingMessage, extra map[string]any) (Envelope, error) {
	base := map[string]any{"chat_id": idValue(target.ChatID())}
	if target.ThreadID != "" {
		base["message_thread_id"] = idValue(target.ThreadID)
	}
	params := mergeParams(mergeParams(base, c.defaults), extra)

	switch r := reply.(type) {
	case message.Text:
		params["text"] = string(r)
		return Envelope{Endpoint: EndpointSendMessage, Params: params}, nil
	case message.Question:
		return compileQuestion(r, params), nil
	case *message.Question:
		if r == nil {
			break
		}
		return compileQuestion(*r, params), nil
	case message.OutgoingMessage:
		return compileOutgoing(r, params)
	case *message.OutgoingMessage:
		if r == nil {
			break
		}
		return compileOutgoing(*r, params)
	}
	return Envelope{}, fmt.Errorf("%w: %T", ErrUnsupportedReply, reply)
}

// ChatAction builds a sendChatAction envelope for the chat target came from.
func (c *Compiler) ChatAction(target message.IncomingMessage, action ChatAction) Envelope {
	params := map[string]any{
		"chat_id": idValue(target.ChatID()),
		"action":  string(action),
	}
	if target.ThreadID != "" {
		params["message_thread_id"] = idValue(target.ThreadID)
	}
	return Envelope{Endpoint: EndpointSendChatAction, Params: params}
}

func compileQuestion(q message.Question, params map[string]any) Envelope {
	params["text"] = q.Text
	if _, ok := params["reply_markup"]; !ok {
		params["reply_markup"] = map[string]any{"inline_keyboard": inlineKeyboard(q)}
	}
	return Envelope{Endpoint: EndpointSendMessage, Params: params}
}

// inlineKeyboard renders one button per row, or a single row when the
// question asks for it.
func inlineKeyboard(q message.Question) []any {
	buttons := make([]any, 0, len(q.Buttons))
	for _, b := range q.Buttons {
		btn := map[string]any{"text": b.Text}
		switch {
		case b.URL != "":
			btn["url"] = b.URL
		case hasKey(b.Additional, "switch_inline_query"), hasKey(b.Additional, "switch_inline_query_current_chat"):
		default:
			btn["callback_data"] = b.Value
		}
		for k, v := range b.Additional {
			btn[k] = cloneValue(v)
		}
		buttons = append(buttons, btn)
	}

	if q.SingleRow {
		return []any{buttons}
	}
	rows := make([]any, len(buttons))
	for i, btn := range buttons {
		rows[i] = []any{btn}
	}
	return rows
}

func compileOutgoing(m message.OutgoingMessage, params map[string]any) (Envelope, error) {
	att := m.Attachment
	if att == nil {
		params["text"] = m.Text
		return Envelope{Endpoint: EndpointSendMessage, Params: params}, nil
	}

	if att.Kind.IsMedia() {
		params["caption"] = m.Text
		if att.Title != "" {
			params["caption"] = att.Title
		}
	}

	switch att.Kind {
	case message.KindImage:
		if isGIF(att.URL) {
			params["document"] = att.URL
			return Envelope{Endpoint: EndpointSendDocument, Params: params}, nil
		}
		params["photo"] = att.URL
		return Envelope{Endpoint: EndpointSendPhoto, Params: params}, nil

	case message.KindVideo:
		params["video"] = att.URL
		return Envelope{Endpoint: EndpointSendVideo, Params: params}, nil

	case message.KindAudio:
		params["audio"] = att.URL
		return Envelope{Endpoint: EndpointSendAudio, Params: params}, nil

	case message.KindFile:
		params["document"] = att.URL
		return Envelope{Endpoint: EndpointSendDocument, Params: params}, nil

	case message.KindLocation:
		params["latitude"] = deref(att.Latitude)
		params["longitude"] = deref(att.Longitude)
		if hasKey(params, "title") && hasKey(params, "address") {
			return Envelope{Endpoint: EndpointSendVenue, Params: params}, nil
		}
		return Envelope{Endpoint: EndpointSendLocation, Params: params}, nil

	case message.KindContact:
		params["phone_number"] = att.PhoneNumber
		params["first_name"] = att.FirstName
		params["last_name"] = att.LastName
		if att.UserID != "" {
			params["user_id"] = idValue(att.UserID)
		}
		if att.VCard != "" {
			params["vcard"] = att.VCard
		}
		return Envelope{Endpoint: EndpointSendContact, Params: params}, nil

	case message.KindUnresolved:
		return Envelope{}, fmt.Errorf("%w: expected %s: %s", ErrUnsendableAttachment, att.Expected, att.Reason)
	}
	return Envelope{}, fmt.Errorf("%w: attachment kind %q", ErrUnsupportedReply, att.Kind)
}

// isGIF reports whether the URL path ends in .gif, in any case.
func isGIF(raw string) bool {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	return strings.EqualFold(path.Ext(p), ".gif")
}

func removeKeyboardEnvelope(chatID, messageID string) Envelope {
	return Envelope{
		Endpoint: EndpointEditMessageReplyMarkup,
		Params: map[string]any{
			"chat_id":      idValue(chatID),
			"message_id":   idValue(messageID),
			"reply_markup": map[string]any{"inline_keyboard": []any{}},
		},
	}
}

func inlineRemoveKeyboardEnvelope(inlineMessageID string) Envelope {
	return Envelope{
		Endpoint: EndpointEditMessageReplyMarkup,
		Params: map[string]any{
			"inline_message_id": inlineMessageID,
			"reply_markup":      map[string]any{"inline_keyboard": []any{}},
		},
	}
}

func deleteMessageEnvelope(chatID, messageID string) Envelope {
	return Envelope{
		Endpoint: EndpointDeleteMessage,
		Params: map[string]any{
			"chat_id":    idValue(chatID),
			"message_id": idValue(messageID),
		},
	}
}

func getChatMemberEnvelope(chatID, userID string) Envelope {
	return Envelope{
		Endpoint: EndpointGetChatMember,
		Params: map[string]any{
			"chat_id": idValue(chatID),
			"user_id": idValue(userID),
		},
	}
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
