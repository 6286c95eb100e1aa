// Package config handles YAML configuration loading, environment variable
// expansion, defaults and validation for tgbridge.
package config

import (
	"time"

	"github.com/flemzord/tgbridge/internal/cron"
	"github.com/flemzord/tgbridge/internal/gateway"
	"github.com/flemzord/tgbridge/internal/telegram"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version" json:"version"`

	Telegram telegram.Config `yaml:"telegram" json:"telegram"`
	Gateway  gateway.Config  `yaml:"gateway" json:"gateway"`
	Log      LogConfig       `yaml:"log" json:"log"`
	Journal  JournalConfig   `yaml:"journal" json:"journal"`
	Sentry   SentryConfig    `yaml:"sentry" json:"sentry"`
	Tracing  TracingConfig   `yaml:"tracing" json:"tracing"`
	Echo     EchoConfig      `yaml:"echo" json:"echo"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// JournalConfig controls the update_id journal used to drop redeliveries.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
	// Retention bounds how long handled ids are kept. Telegram gives up
	// redelivering after 24h.
	Retention time.Duration `yaml:"retention" json:"retention"`
	// PruneSchedule is a 5-field cron expression.
	PruneSchedule string `yaml:"prune_schedule" json:"prune_schedule"`
}

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string `yaml:"dsn" json:"dsn"`
	Environment string `yaml:"environment" json:"environment"`
}

// TracingConfig configures OTLP/HTTP trace export.
type TracingConfig struct {
	Enabled     bool              `yaml:"enabled" json:"enabled"`
	EndpointURL string            `yaml:"endpoint_url" json:"endpoint_url"`
	Headers     map[string]string `yaml:"headers" json:"headers"`
	SampleRatio float64           `yaml:"sample_ratio" json:"sample_ratio"`
}

// EchoConfig tunes the built-in echo handler used by `serve`.
type EchoConfig struct {
	// Typing sends a typing action before each reply.
	Typing bool `yaml:"typing" json:"typing"`
}

// ApplyDefaults fills unset fields in every section.
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	c.Telegram.ApplyDefaults()
	c.Gateway.ApplyDefaults()
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Journal.Path == "" {
		c.Journal.Path = DefaultJournalPath()
	}
	if c.Journal.Retention <= 0 {
		c.Journal.Retention = 48 * time.Hour
	}
	if c.Journal.PruneSchedule == "" {
		c.Journal.PruneSchedule = cron.DefaultPruneSchedule
	}
}
