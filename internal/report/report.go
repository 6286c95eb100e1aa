// Package report forwards handler failures to Sentry.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/flemzord/tgbridge/internal/security"
)

// Options configures a Sentry reporter.
type Options struct {
	DSN         string
	Environment string
	Release     string
	// Secrets are scrubbed from event messages and exception values.
	Secrets []string

	// transport overrides the HTTP transport in tests.
	transport sentry.Transport
}

// Sentry captures errors on a dedicated hub. It implements
// telegram.ErrorReporter.
type Sentry struct {
	hub *sentry.Hub
}

// New creates a reporter. An empty DSN yields a client that drops events.
func New(opts Options) (*Sentry, error) {
	redactor := security.NewRedactor()
	for _, s := range opts.Secrets {
		redactor.AddLiteral(s)
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         opts.DSN,
		Environment: opts.Environment,
		Release:     opts.Release,
		Transport:   opts.transport,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			event.Message = redactor.Redact(event.Message)
			for i := range event.Exception {
				event.Exception[i].Value = redactor.Redact(event.Exception[i].Value)
			}
			return event
		},
	})
	if err != nil {
		return nil, fmt.Errorf("report: creating sentry client: %w", err)
	}
	return &Sentry{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// Capture sends err with tags attached.
func (s *Sentry) Capture(_ context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}
	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		s.hub.CaptureException(err)
	})
}

// Flush waits up to timeout for buffered events to be delivered.
func (s *Sentry) Flush(timeout time.Duration) bool {
	return s.hub.Flush(timeout)
}
