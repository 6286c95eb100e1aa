package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/flemzord/tgbridge/pkg/message"
)

func newTestTranslator(t *testing.T, api *fakeAPI, policy FailurePolicy) *Translator {
	t.Helper()
	client := NewClient(testConfig(api.URL), WithLogger(discardLogger()))
	return NewTranslator(NewResolver(client), policy)
}

func translateBody(t *testing.T, tr *Translator, body string) (message.IncomingMessage, error) {
	t.Helper()
	req := mustRequest(t, body)
	ev, ok := Classify(req, ClassifyConfig{Token: testToken, Now: loginNow})
	if !ok {
		t.Fatalf("Classify() mismatch for %s", body)
	}
	return tr.Translate(context.Background(), req, ev)
}

func TestTranslateText(t *testing.T) {
	t.Parallel()
	tr := newTestTranslator(t, newFakeAPI(t, nil), FailurePolicyFail)

	msg, err := translateBody(t, tr, `{"update_id":1,"message":{"message_id":5,"message_thread_id":7,"from":{"id":111},"chat":{"id":-222},"text":"hello"}}`)
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if msg.Sender != "111" || msg.Recipient != "-222" || msg.Text != "hello" {
		t.Errorf("msg = %+v", msg)
	}
	if msg.ThreadID != "7" {
		t.Errorf("ThreadID = %q, want 7", msg.ThreadID)
	}
	var payload map[string]any
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload["text"] != "hello" {
		t.Errorf("Payload = %s", msg.Payload)
	}
}

func TestTranslateCallbackUsesEmbeddedChat(t *testing.T) {
	t.Parallel()
	tr := newTestTranslator(t, newFakeAPI(t, nil), FailurePolicyFail)

	msg, err := translateBody(t, tr, `{"update_id":1,"callback_query":{"id":"cb","data":"yes","from":{"id":111},"message":{"message_id":9,"chat":{"id":-333},"text":"Pick"}}}`)
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if msg.Recipient != "-333" {
		t.Errorf("Recipient = %q, want embedded chat -333", msg.Recipient)
	}
	if msg.Sender != "111" || msg.Text != "yes" {
		t.Errorf("msg = %+v", msg)
	}
}

func TestTranslatePhotoPicksFirstLargest(t *testing.T) {
	t.Parallel()
	api := newFakeAPI(t, nil)
	tr := newTestTranslator(t, api, FailurePolicyFail)

	msg, err := translateBody(t, tr, `{"update_id":1,"message":{"from":{"id":1},"chat":{"id":2},"photo":[
		{"file_id":"p1","width":100,"height":100},
		{"file_id":"p2","width":50,"height":50},
		{"file_id":"p3","width":200,"height":50}]}}`)
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if msg.Text != message.PatternImage {
		t.Errorf("Text = %q, want %q", msg.Text, message.PatternImage)
	}
	if len(msg.Attachments) != 1 {
		t.Fatalf("Attachments = %+v", msg.Attachments)
	}
	want := api.URL + "/file/bot" + testToken + "/files/p1"
	if got := msg.Attachments[0].URL; got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}
	calls := api.CallsTo("getFile")
	if len(calls) != 1 || calls[0].Params["file_id"] != "p1" {
		t.Errorf("getFile calls = %+v", calls)
	}
}

func TestTranslateMediaFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		kind     message.AttachmentKind
		pattern  string
		wantFile string
	}{
		{"video note", `{"update_id":1,"message":{"from":{"id":1},"video_note":{"file_id":"vn"}}}`, message.KindVideo, message.PatternVideo, "vn"},
		{"video preferred", `{"update_id":1,"message":{"from":{"id":1},"video":{"file_id":"v"},"video_note":{"file_id":"vn"}}}`, message.KindVideo, message.PatternVideo, "v"},
		{"voice", `{"update_id":1,"message":{"from":{"id":1},"voice":{"file_id":"vo"}}}`, message.KindAudio, message.PatternAudio, "vo"},
		{"audio preferred", `{"update_id":1,"message":{"from":{"id":1},"audio":{"file_id":"au"},"voice":{"file_id":"vo"}}}`, message.KindAudio, message.PatternAudio, "au"},
		{"document", `{"update_id":1,"message":{"from":{"id":1},"document":{"file_id":"doc"}}}`, message.KindFile, message.PatternFile, "doc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			api := newFakeAPI(t, nil)
			tr := newTestTranslator(t, api, FailurePolicyFail)

			msg, err := translateBody(t, tr, tt.body)
			if err != nil {
				t.Fatalf("Translate() error: %v", err)
			}
			if msg.Text != tt.pattern {
				t.Errorf("Text = %q, want %q", msg.Text, tt.pattern)
			}
			if len(msg.Attachments) != 1 || msg.Attachments[0].Kind != tt.kind {
				t.Fatalf("Attachments = %+v", msg.Attachments)
			}
			var raw map[string]any
			if err := json.Unmarshal(msg.Attachments[0].Raw, &raw); err != nil || raw["file_id"] != tt.wantFile {
				t.Errorf("Raw = %s, want file_id %s", msg.Attachments[0].Raw, tt.wantFile)
			}
		})
	}
}

func TestTranslateLocationAndContact(t *testing.T) {
	t.Parallel()
	tr := newTestTranslator(t, newFakeAPI(t, nil), FailurePolicyFail)

	loc, err := translateBody(t, tr, `{"update_id":1,"message":{"from":{"id":1},"chat":{"id":2},"location":{"latitude":48.85,"longitude":2.35}}}`)
	if err != nil {
		t.Fatalf("Translate(location) error: %v", err)
	}
	if loc.Text != message.PatternLocation {
		t.Errorf("Text = %q", loc.Text)
	}
	a := loc.Attachments[0]
	if a.Kind != message.KindLocation || *a.Latitude != 48.85 || *a.Longitude != 2.35 {
		t.Errorf("location = %+v", a)
	}

	contact, err := translateBody(t, tr, `{"update_id":1,"message":{"from":{"id":1},"chat":{"id":2},"contact":{"phone_number":"+331","user_id":77}}}`)
	if err != nil {
		t.Fatalf("Translate(contact) error: %v", err)
	}
	c := contact.Attachments[0]
	if c.PhoneNumber != "+331" || c.FirstName != "" || c.LastName != "" || c.UserID != "77" || c.VCard != "" {
		t.Errorf("contact = %+v", c)
	}
	if contact.Text != message.PatternContact {
		t.Errorf("Text = %q", contact.Text)
	}
}

func TestTranslateLocationWithoutCoordinates(t *testing.T) {
	t.Parallel()
	tr := newTestTranslator(t, newFakeAPI(t, nil), FailurePolicyFail)

	_, err := translateBody(t, tr, `{"update_id":1,"message":{"from":{"id":1},"location":{"latitude":"north"}}}`)
	if !errors.Is(err, ErrMalformedUpdate) {
		t.Errorf("error = %v, want ErrMalformedUpdate", err)
	}
}

func failingGetFile(endpoint string, params map[string]any) (int, any) {
	if endpoint == "getFile" {
		return http.StatusBadRequest, map[string]any{"ok": false, "error_code": 400, "description": "Bad Request: invalid file_id"}
	}
	return defaultRespond(endpoint, params)
}

func TestTranslateAttachmentFailurePolicy(t *testing.T) {
	t.Parallel()
	body := `{"update_id":1,"message":{"from":{"id":1},"chat":{"id":2},"document":{"file_id":"gone"}}}`

	t.Run("fail", func(t *testing.T) {
		t.Parallel()
		tr := newTestTranslator(t, newFakeAPI(t, failingGetFile), FailurePolicyFail)
		_, err := translateBody(t, tr, body)
		var aerr *AttachmentError
		if !errors.As(err, &aerr) {
			t.Fatalf("error = %v, want *AttachmentError", err)
		}
		if aerr.Description != "Bad Request: invalid file_id" || aerr.Kind != message.KindFile {
			t.Errorf("AttachmentError = %+v", aerr)
		}
	})

	t.Run("embed", func(t *testing.T) {
		t.Parallel()
		tr := newTestTranslator(t, newFakeAPI(t, failingGetFile), FailurePolicyEmbed)
		msg, err := translateBody(t, tr, body)
		if err != nil {
			t.Fatalf("Translate() error: %v", err)
		}
		if len(msg.Attachments) != 1 || !msg.Attachments[0].IsUnresolved() {
			t.Fatalf("Attachments = %+v, want one unresolved", msg.Attachments)
		}
		a := msg.Attachments[0]
		if a.Expected != message.KindFile || a.Reason != "Bad Request: invalid file_id" {
			t.Errorf("unresolved = %+v", a)
		}
		if msg.Text != message.PatternFile {
			t.Errorf("Text = %q", msg.Text)
		}
	})
}

func TestTranslateLogin(t *testing.T) {
	t.Parallel()
	tr := newTestTranslator(t, newFakeAPI(t, nil), FailurePolicyFail)

	req, err := NewRequest(nil, signedLogin(t, loginNow), nil)
	if err != nil {
		t.Fatalf("NewRequest() error: %v", err)
	}
	ev, ok := Classify(req, ClassifyConfig{Token: testToken, Now: loginNow})
	if !ok {
		t.Fatal("login not classified")
	}
	msg, err := tr.Translate(context.Background(), req, ev)
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if msg.Text != "" || msg.Sender != "42" || msg.Recipient != "42" {
		t.Errorf("msg = %+v", msg)
	}
	var payload map[string]string
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload["username"] != "ada" {
		t.Errorf("Payload = %s", msg.Payload)
	}
}

func TestTranslateInlineQueryAndPreCheckout(t *testing.T) {
	t.Parallel()
	tr := newTestTranslator(t, newFakeAPI(t, nil), FailurePolicyFail)

	inline, err := translateBody(t, tr, `{"update_id":1,"inline_query":{"id":"q","query":"cats","from":{"id":5}}}`)
	if err != nil {
		t.Fatalf("Translate(inline) error: %v", err)
	}
	if inline.Text != "cats" || inline.Sender != "5" || inline.Recipient != "5" {
		t.Errorf("inline = %+v", inline)
	}

	pcq, err := translateBody(t, tr, `{"update_id":1,"pre_checkout_query":{"id":"q","from":{"id":6}}}`)
	if err != nil {
		t.Fatalf("Translate(pre_checkout) error: %v", err)
	}
	if pcq.Sender != "6" {
		t.Errorf("Sender = %q, want 6", pcq.Sender)
	}
}
