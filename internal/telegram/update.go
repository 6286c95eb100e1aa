package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strconv"
)

// Update is a decoded webhook body. Values keep their JSON shape: objects are
// map[string]any, arrays []any and numbers json.Number, so 64-bit identifiers
// survive decoding.
type Update map[string]any

// DecodeUpdate parses a webhook body. An empty body yields a nil Update.
func DecodeUpdate(body []byte) (Update, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var u Update
	if err := dec.Decode(&u); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedUpdate, err)
	}
	return u, nil
}

// UpdateID returns the update_id and whether it is present and numeric.
func (u Update) UpdateID() (int64, bool) {
	v, ok := u["update_id"]
	if !ok {
		return 0, false
	}
	n, ok := integer(v)
	return n, ok
}

// Request is everything the adapter knows about one inbound HTTP request.
// It is built once by NewRequest and never mutated afterwards.
type Request struct {
	update Update
	body   map[string]any
	query  url.Values
	header http.Header
}

// NewRequest decodes the body and resolves the message the update is about.
func NewRequest(body []byte, query url.Values, header http.Header) (*Request, error) {
	u, err := DecodeUpdate(body)
	if err != nil {
		return nil, err
	}
	if query == nil {
		query = url.Values{}
	}
	if header == nil {
		header = http.Header{}
	}
	return &Request{
		update: u,
		body:   resolveBody(u),
		query:  query,
		header: header,
	}, nil
}

// Update returns the decoded webhook body.
func (r *Request) Update() Update { return r.update }

// Body returns the message object the update is about, or an empty map.
func (r *Request) Body() map[string]any { return r.body }

// Query returns the URL query parameters.
func (r *Request) Query() url.Values { return r.query }

// Header returns the request headers.
func (r *Request) Header() http.Header { return r.header }

// resolveBody picks message, then edited_message, then channel_post (with a
// synthetic from.id of 0), then a wrapper around pre_checkout_query.
func resolveBody(u Update) map[string]any {
	body := object(u["message"])
	if body == nil {
		body = object(u["edited_message"])
	}
	if len(body) > 0 {
		return body
	}
	if post := object(u["channel_post"]); len(post) > 0 {
		cp := maps.Clone(post)
		cp["from"] = map[string]any{"id": json.Number("0")}
		return cp
	}
	if q, ok := u["pre_checkout_query"]; ok && q != nil {
		return map[string]any{"pre_checkout_query": q}
	}
	return map[string]any{}
}

// object returns v as a JSON object, or nil.
func object(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case Update:
		return m
	}
	return nil
}

// field walks nested objects by key.
func field(v any, path ...string) any {
	for _, key := range path {
		m := object(v)
		if m == nil {
			return nil
		}
		v = m[key]
	}
	return v
}

// str renders a scalar JSON value as a string. Objects, arrays and null
// render as "".
func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// number reads a numeric JSON value. Numeric strings are accepted.
func number(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func integer(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		return n, err == nil
	case int:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		return int64(t), t == float64(int64(t))
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// rawJSON re-encodes a decoded value. Values that cannot be encoded yield nil.
func rawJSON(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// idValue sends numeric identifiers as JSON integers and anything else
// (such as @channelusername) as a string.
func idValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}
