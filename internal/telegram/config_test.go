package telegram

import (
	"strings"
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{Token: testToken}
	cfg.ApplyDefaults()

	if !cfg.HidesInlineKeyboard() {
		t.Error("hide_inline_keyboard should default to true")
	}
	if cfg.RetryMultiplier != 2 {
		t.Errorf("RetryMultiplier = %v, want 2", cfg.RetryMultiplier)
	}
	if cfg.AttachmentFailure != FailurePolicyFail {
		t.Errorf("AttachmentFailure = %q, want fail", cfg.AttachmentFailure)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.HTTPTimeout != 60*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
}

func TestConfigKeepsExplicitFalse(t *testing.T) {
	t.Parallel()

	hide := false
	cfg := Config{Token: testToken, HideInlineKeyboard: &hide}
	cfg.ApplyDefaults()
	if cfg.HidesInlineKeyboard() {
		t.Error("explicit hide_inline_keyboard: false was overridden")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	negative := -1
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing token", func(c *Config) { c.Token = "" }, "token"},
		{"malformed token", func(c *Config) { c.Token = "not-a-token" }, "token"},
		{"negative retries", func(c *Config) { c.RetryHTTPExceptions = -1 }, "retry_http_exceptions"},
		{"negative multiplier", func(c *Config) { c.RetryMultiplier = -0.5 }, "retry_http_exceptions_multiplier"},
		{"unknown failure policy", func(c *Config) { c.AttachmentFailure = "ignore" }, "attachment_failure"},
		{"secret with spaces", func(c *Config) { c.APISecretToken = "has space" }, "api_secret_token"},
		{"negative cache time", func(c *Config) { c.CacheTime = &negative }, "cache_time"},
		{"bad api url", func(c *Config) { c.APIURL = "not a url" }, "api_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Config{Token: testToken}
			cfg.ApplyDefaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error mentioning %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
