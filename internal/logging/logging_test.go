package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

const testToken = "123456789:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsawq"

func TestNewFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		check  func(t *testing.T, out string)
	}{
		{FormatText, func(t *testing.T, out string) {
			if !strings.Contains(out, "msg=hello") {
				t.Errorf("text output = %q", out)
			}
		}},
		{FormatJSON, func(t *testing.T, out string) {
			var rec map[string]any
			if err := json.Unmarshal([]byte(out), &rec); err != nil {
				t.Fatalf("json output %q: %v", out, err)
			}
			if rec["msg"] != "hello" {
				t.Errorf("msg = %v", rec["msg"])
			}
		}},
		{FormatConsole, func(t *testing.T, out string) {
			if !strings.Contains(out, "hello") || strings.Contains(out, "\x1b[") {
				t.Errorf("console output = %q", out)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			logger, err := New(&buf, Options{Format: tt.format, NoColor: true})
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			logger.Info("hello")
			tt.check(t, buf.String())
		})
	}
}

func TestNewRedactsSecrets(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(&buf, Options{Format: FormatJSON, Secrets: []string{"hook-secret"}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	logger.Warn("retrying", "url", "https://api.telegram.org/bot"+testToken+"/sendMessage", "secret", "hook-secret")

	out := buf.String()
	if strings.Contains(out, testToken) || strings.Contains(out, "hook-secret") {
		t.Errorf("secret leaked: %s", out)
	}
}

func TestNewLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "warn"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
	if !logger.Enabled(t.Context(), slog.LevelError) {
		t.Error("error level disabled")
	}
}

func TestNewRejectsUnknown(t *testing.T) {
	t.Parallel()

	if _, err := New(&bytes.Buffer{}, Options{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := New(&bytes.Buffer{}, Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}
