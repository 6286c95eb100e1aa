package telegram

import (
	"crypto/subtle"
	"time"
)

// SecretTokenHeader carries the webhook secret configured with setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// EventKind tags the variant of an Event.
type EventKind int

// Event kinds.
const (
	KindNone EventKind = iota
	KindText
	KindPhoto
	KindVideo
	KindAudio
	KindDocument
	KindLocation
	KindContact
	KindCallbackQuery
	KindInlineQuery
	KindGenericEvent
	KindLogin
)

var kindNames = [...]string{
	KindNone:          "none",
	KindText:          "text",
	KindPhoto:         "photo",
	KindVideo:         "video",
	KindAudio:         "audio",
	KindDocument:      "document",
	KindLocation:      "location",
	KindContact:       "contact",
	KindCallbackQuery: "callback_query",
	KindInlineQuery:   "inline_query",
	KindGenericEvent:  "generic_event",
	KindLogin:         "login",
}

func (k EventKind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// genericEvents are the service-message keys surfaced as named events, in
// match priority order.
var genericEvents = []string{
	"new_chat_members",
	"left_chat_member",
	"new_chat_title",
	"new_chat_photo",
	"delete_chat_photo",
	"group_chat_created",
	"supergroup_chat_created",
	"channel_chat_created",
	"message_auto_delete_timer_changed",
	"migrate_to_chat_id",
	"migrate_from_chat_id",
	"pinned_message",
	"invoice",
	"successful_payment",
	"user_shared",
	"chat_shared",
	"connected_website",
	"write_access_allowed",
	"passport_data",
	"proximity_alert_triggered",
	"forum_topic_created",
	"forum_topic_edited",
	"forum_topic_closed",
	"forum_topic_reopened",
	"general_forum_topic_hidden",
	"general_forum_topic_unhidden",
	"giveaway_created",
	"giveaway",
	"giveaway_winners",
	"giveaway_completed",
	"video_chat_scheduled",
	"video_chat_started",
	"video_chat_ended",
	"video_chat_participants_invited",
	"web_app_data",
	"reply_markup",
	"pre_checkout_query",
}

// GenericEvents returns the generic event keys in match order.
func GenericEvents() []string {
	out := make([]string, len(genericEvents))
	copy(out, genericEvents)
	return out
}

// attachmentKeys maps message keys to the media kind they announce, in
// match order.
var attachmentKeys = []struct {
	key  string
	kind EventKind
}{
	{"audio", KindAudio},
	{"voice", KindAudio},
	{"document", KindDocument},
	{"video", KindVideo},
	{"video_note", KindVideo},
	{"photo", KindPhoto},
	{"location", KindLocation},
	{"contact", KindContact},
}

// Event is the classified form of a Request. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind EventKind
	// Name is the generic event key, or LoginEvent.
	Name string
	// Payload is the raw value under Name, or the login parameters.
	Payload any
	// Message is the resolved message body.
	Message     map[string]any
	Callback    map[string]any
	InlineQuery map[string]any
}

// ClassifyConfig is the configuration Classify depends on.
type ClassifyConfig struct {
	Token       string
	SecretToken string
	Now         time.Time
}

// Classify decides which single event kind a request represents. A request
// that matches nothing returns false; classification never fails.
func Classify(req *Request, cfg ClassifyConfig) (Event, bool) {
	if req == nil {
		return Event{}, false
	}

	if q := req.Query(); q.Get("hash") != "" && VerifyLogin(q, cfg.Token, cfg.Now) {
		params := make(map[string]any, len(q))
		for key := range q {
			if key != "hash" {
				params[key] = q.Get(key)
			}
		}
		return Event{Kind: KindLogin, Name: LoginEvent, Payload: params}, true
	}

	u := req.Update()
	if _, ok := u.UpdateID(); !ok {
		return Event{}, false
	}
	if cfg.SecretToken != "" {
		got := req.Header().Get(SecretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(cfg.SecretToken), []byte(got)) != 1 {
			return Event{}, false
		}
	}

	if q := object(u["inline_query"]); q != nil {
		return Event{Kind: KindInlineQuery, InlineQuery: q}, true
	}
	if cb := object(u["callback_query"]); cb != nil {
		return Event{Kind: KindCallbackQuery, Callback: cb, Message: object(cb["message"])}, true
	}

	body := req.Body()
	for _, name := range genericEvents {
		if v, ok := body[name]; ok {
			return Event{Kind: KindGenericEvent, Name: name, Payload: v, Message: body}, true
		}
	}

	if body["from"] == nil {
		return Event{}, false
	}
	for _, a := range attachmentKeys {
		if _, ok := body[a.key]; ok {
			return Event{Kind: a.kind, Message: body}, true
		}
	}
	return Event{Kind: KindText, Message: body}, true
}
