package telegram

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"
	"time"
)

const testToken = "123456789:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsawq"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

// apiCall is one request received by fakeAPI.
type apiCall struct {
	Endpoint string
	Path     string
	Query    string
	Params   map[string]any
}

// respondFunc returns the status and JSON body fakeAPI answers with.
type respondFunc func(endpoint string, params map[string]any) (int, any)

// fakeAPI is an httptest Bot API that records every call.
type fakeAPI struct {
	*httptest.Server

	mu    sync.Mutex
	calls []apiCall
}

func newFakeAPI(t *testing.T, respond respondFunc) *fakeAPI {
	t.Helper()
	if respond == nil {
		respond = defaultRespond
	}
	api := &fakeAPI{}
	api.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var params map[string]any
		if body, _ := io.ReadAll(r.Body); len(body) > 0 {
			if err := json.Unmarshal(body, &params); err != nil {
				t.Errorf("decode request body: %v", err)
			}
		}
		endpoint := path.Base(r.URL.Path)

		api.mu.Lock()
		api.calls = append(api.calls, apiCall{Endpoint: endpoint, Path: r.URL.Path, Query: r.URL.RawQuery, Params: params})
		api.mu.Unlock()

		status, resp := respond(endpoint, params)
		writeJSON(t, w, status, resp)
	}))
	t.Cleanup(api.Close)
	return api
}

func defaultRespond(endpoint string, params map[string]any) (int, any) {
	if endpoint == "getFile" {
		id, _ := params["file_id"].(string)
		return http.StatusOK, map[string]any{
			"ok":     true,
			"result": map[string]any{"file_id": id, "file_path": "files/" + id},
		}
	}
	return http.StatusOK, map[string]any{"ok": true, "result": true}
}

func (a *fakeAPI) Calls() []apiCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]apiCall, len(a.calls))
	copy(out, a.calls)
	return out
}

func (a *fakeAPI) CallsTo(endpoint string) []apiCall {
	var out []apiCall
	for _, c := range a.Calls() {
		if c.Endpoint == endpoint {
			out = append(out, c)
		}
	}
	return out
}

// recordingSleeper records requested waits without sleeping.
type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return nil
}

func (s *recordingSleeper) Waits() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.waits))
	copy(out, s.waits)
	return out
}

func testConfig(apiURL string) Config {
	return Config{Token: testToken, APIURL: apiURL}
}

func newTestDriver(t *testing.T, api *fakeAPI, mutate func(*Config)) *Driver {
	t.Helper()
	cfg := testConfig(api.URL)
	if mutate != nil {
		mutate(&cfg)
	}
	client := NewClient(cfg, WithLogger(discardLogger()), WithSleeper((&recordingSleeper{}).Sleep))
	return NewDriver(cfg, client, nil, discardLogger())
}

func mustRequest(t *testing.T, body string) *Request {
	t.Helper()
	req, err := NewRequest([]byte(body), nil, nil)
	if err != nil {
		t.Fatalf("NewRequest() error: %v", err)
	}
	return req
}
