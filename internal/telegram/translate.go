package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/flemzord/tgbridge/pkg/message"
)

// Translator turns classified events into normalized messages.
type Translator struct {
	resolver *Resolver
	policy   FailurePolicy
}

// NewTranslator creates a translator. policy decides what an unresolvable
// media attachment does to the translation.
func NewTranslator(resolver *Resolver, policy FailurePolicy) *Translator {
	if policy == "" {
		policy = FailurePolicyFail
	}
	return &Translator{resolver: resolver, policy: policy}
}

// Translate builds the message for ev. Media kinds resolve their file
// through getFile.
func (t *Translator) Translate(ctx context.Context, req *Request, ev Event) (message.IncomingMessage, error) {
	switch ev.Kind {
	case KindLogin:
		id := req.Query().Get("id")
		return message.IncomingMessage{
			Sender:    id,
			Recipient: id,
			Payload:   rawJSON(flattenQuery(req.Query())),
		}, nil

	case KindCallbackQuery:
		embedded := object(ev.Callback["message"])
		return message.IncomingMessage{
			Text:      str(ev.Callback["data"]),
			Sender:    str(field(ev.Callback, "from", "id")),
			Recipient: str(field(embedded, "chat", "id")),
			ThreadID:  str(embedded["message_thread_id"]),
			Payload:   rawJSON(embedded),
		}, nil

	case KindInlineQuery:
		from := str(field(ev.InlineQuery, "from", "id"))
		return message.IncomingMessage{
			Text:      str(ev.InlineQuery["query"]),
			Sender:    from,
			Recipient: from,
			Payload:   rawJSON(ev.InlineQuery),
		}, nil

	case KindText, KindGenericEvent:
		msg := baseMessage(ev.Message)
		msg.Text = str(ev.Message["text"])
		if msg.Sender == "" {
			msg.Sender = str(field(ev.Message, "pre_checkout_query", "from", "id"))
		}
		return msg, nil

	case KindPhoto:
		sizes, _ := ev.Message["photo"].([]any)
		return t.media(ctx, ev.Message, message.KindImage, largestPhoto(sizes))

	case KindVideo:
		meta := object(ev.Message["video"])
		if meta == nil {
			meta = object(ev.Message["video_note"])
		}
		return t.media(ctx, ev.Message, message.KindVideo, meta)

	case KindAudio:
		meta := object(ev.Message["audio"])
		if meta == nil {
			meta = object(ev.Message["voice"])
		}
		return t.media(ctx, ev.Message, message.KindAudio, meta)

	case KindDocument:
		return t.media(ctx, ev.Message, message.KindFile, object(ev.Message["document"]))

	case KindLocation:
		loc := object(ev.Message["location"])
		lat, okLat := number(loc["latitude"])
		lon, okLon := number(loc["longitude"])
		if !okLat || !okLon {
			return message.IncomingMessage{}, fmt.Errorf("%w: location without numeric coordinates", ErrMalformedUpdate)
		}
		msg := baseMessage(ev.Message)
		msg.Text = message.PatternLocation
		msg.Attachments = []message.Attachment{message.NewLocation(lat, lon, rawJSON(loc))}
		return msg, nil

	case KindContact:
		c := object(ev.Message["contact"])
		msg := baseMessage(ev.Message)
		msg.Text = message.PatternContact
		msg.Attachments = []message.Attachment{message.NewContact(
			str(c["phone_number"]),
			str(c["first_name"]),
			str(c["last_name"]),
			str(c["user_id"]),
			str(c["vcard"]),
			rawJSON(c),
		)}
		return msg, nil
	}

	return message.IncomingMessage{}, fmt.Errorf("telegram: cannot translate %s event", ev.Kind)
}

func (t *Translator) media(ctx context.Context, body map[string]any, kind message.AttachmentKind, meta map[string]any) (message.IncomingMessage, error) {
	if meta == nil {
		return message.IncomingMessage{}, fmt.Errorf("%w: %s without file metadata", ErrMalformedUpdate, kind)
	}

	att, err := t.resolver.Resolve(ctx, kind, meta)
	if err != nil {
		var aerr *AttachmentError
		if t.policy != FailurePolicyEmbed || !errors.As(err, &aerr) {
			return message.IncomingMessage{}, err
		}
		att = message.NewUnresolved(kind, aerr.Description)
	}

	msg := baseMessage(body)
	msg.Text = kind.Pattern()
	msg.Attachments = []message.Attachment{att}
	return msg, nil
}

func baseMessage(body map[string]any) message.IncomingMessage {
	return message.IncomingMessage{
		Sender:    str(field(body, "from", "id")),
		Recipient: str(field(body, "chat", "id")),
		ThreadID:  str(body["message_thread_id"]),
		Payload:   rawJSON(body),
	}
}
