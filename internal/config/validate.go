package config

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/flemzord/tgbridge/internal/cron"
)

// Validate checks a loaded configuration. Defaults must have been applied.
// Every section is validated and all failures are reported together.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	sections := validation.Errors{
		"telegram": cfg.Telegram.Validate(),
		"gateway":  cfg.Gateway.Validate(),
		"log":      cfg.Log.Validate(),
		"journal":  cfg.Journal.Validate(),
		"sentry":   cfg.Sentry.Validate(),
		"tracing":  cfg.Tracing.Validate(),
	}
	if err := sections.Filter(); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}

	return errors.Join(errs...)
}

// Validate implements validation.Validatable.
func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&l.Format, validation.In("text", "json", "console")),
	)
}

// Validate implements validation.Validatable.
func (j JournalConfig) Validate() error {
	return validation.ValidateStruct(&j,
		validation.Field(&j.Path, validation.When(j.Enabled, validation.Required)),
		validation.Field(&j.PruneSchedule, validation.When(j.Enabled, validation.By(cronSchedule))),
	)
}

// Validate implements validation.Validatable.
func (s SentryConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.DSN, is.URL),
	)
}

// Validate implements validation.Validatable.
func (t TracingConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.EndpointURL, is.URL),
		validation.Field(&t.SampleRatio, validation.Min(0.0), validation.Max(1.0)),
	)
}

func cronSchedule(value any) error {
	expr, _ := value.(string)
	if err := cron.ValidateSchedule(expr); err != nil {
		return errors.New("must be a 5-field cron expression")
	}
	return nil
}
