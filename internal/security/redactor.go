// Package security provides secret redaction for diagnostics and logs.
package security

import (
	"regexp"
	"strings"
	"sync"
)

// RedactPlaceholder is the default replacement string for redacted secrets.
const RedactPlaceholder = "***REDACTED***"

// TokenPlaceholder replaces the bot token in delivery diagnostics.
const TokenPlaceholder = "TELEGRAM-TOKEN-HIDDEN"

// secretKeyPattern matches map keys that likely contain secrets.
var secretKeyPattern = regexp.MustCompile(`(?i)(secret|token|password|key|dsn|credential)`)

// Redactor replaces secret values in strings and maps with a placeholder.
// It supports both regex pattern matching (for known token formats) and
// literal value matching (for credentials loaded at runtime).
// All methods are safe for concurrent use.
type Redactor struct {
	mu          sync.RWMutex
	placeholder string
	patterns    []*regexp.Regexp
	literals    []string
}

// NewRedactor creates a Redactor pre-loaded with DefaultPatterns and the
// default placeholder.
func NewRedactor() *Redactor {
	return &Redactor{
		placeholder: RedactPlaceholder,
		patterns:    DefaultPatterns(),
	}
}

// NewLiteralRedactor creates a Redactor without patterns that replaces each
// of the given literals with placeholder.
func NewLiteralRedactor(placeholder string, literals ...string) *Redactor {
	r := &Redactor{placeholder: placeholder}
	for _, lit := range literals {
		r.AddLiteral(lit)
	}
	return r
}

// Placeholder returns the replacement string used by the redactor.
func (r *Redactor) Placeholder() string {
	if r.placeholder == "" {
		return RedactPlaceholder
	}
	return r.placeholder
}

// AddPattern adds a compiled regex pattern to the redactor.
func (r *Redactor) AddPattern(pattern *regexp.Regexp) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, pattern)
}

// AddLiteral adds a literal secret value that should be redacted on sight.
// Empty strings are ignored.
func (r *Redactor) AddLiteral(secret string) {
	if secret == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.literals = append(r.literals, secret)
}

// Redact replaces all known secret patterns and literal values in s.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}

	r.mu.RLock()
	patterns := r.patterns
	literals := r.literals
	r.mu.RUnlock()

	placeholder := r.Placeholder()

	// Literals first: a pattern may only cover part of a literal.
	for _, lit := range literals {
		if strings.Contains(s, lit) {
			s = strings.ReplaceAll(s, lit, placeholder)
		}
	}

	for _, p := range patterns {
		s = p.ReplaceAllString(s, placeholder)
	}

	return s
}

// RedactMap walks a map and replaces values whose keys match common secret
// key names (secret, token, password, key, dsn, credential).
// It is used when printing a loaded configuration.
func (r *Redactor) RedactMap(m map[string]any) {
	placeholder := r.Placeholder()
	for k, v := range m {
		if secretKeyPattern.MatchString(k) {
			if s, ok := v.(string); ok && s != "" {
				m[k] = placeholder
				continue
			}
		}
		switch val := v.(type) {
		case map[string]any:
			r.RedactMap(val)
		case []any:
			for _, item := range val {
				if sub, ok := item.(map[string]any); ok {
					r.RedactMap(sub)
				}
			}
		case string:
			if redacted := r.Redact(val); redacted != val {
				m[k] = redacted
			}
		}
	}
}

// DefaultPatterns returns compiled regex patterns for common token formats.
func DefaultPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		// Telegram bot token: <bot id>:<35 char secret>, also inside /bot<token>/ URLs.
		regexp.MustCompile(`\d{5,}:[A-Za-z0-9_-]{30,}`),
		// Sentry DSN credentials.
		regexp.MustCompile(`https://[0-9a-f]{32}@`),
		// GitHub: ghp_, gho_, ghs_, github_pat_
		regexp.MustCompile(`(ghp_|gho_|ghs_|github_pat_)[a-zA-Z0-9_]{20,}`),
		// AWS Access Key ID
		regexp.MustCompile(`AKIA[A-Z0-9]{16}`),
	}
}
