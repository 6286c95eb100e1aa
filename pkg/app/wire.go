package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/flemzord/tgbridge/internal/channel"
	"github.com/flemzord/tgbridge/internal/config"
	"github.com/flemzord/tgbridge/internal/cron"
	"github.com/flemzord/tgbridge/internal/echo"
	"github.com/flemzord/tgbridge/internal/gateway"
	"github.com/flemzord/tgbridge/internal/journal"
	"github.com/flemzord/tgbridge/internal/logging"
	"github.com/flemzord/tgbridge/internal/metrics"
	"github.com/flemzord/tgbridge/internal/report"
	"github.com/flemzord/tgbridge/internal/telegram"
	"github.com/flemzord/tgbridge/internal/tracing"
)

// WebhookSource is the gateway source name Telegram posts to:
// /webhooks/telegram.
const WebhookSource = "telegram"

// Runtime holds every wired component of a running bridge.
type Runtime struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Driver   *telegram.Driver
	Receiver *telegram.WebhookReceiver
	Gateway  *gateway.Gateway

	journal  *journal.Journal
	cron     *cron.Scheduler
	reporter *report.Sentry
	tracing  *tracing.Provider
}

// NewLogger builds the process logger for cfg. The bot token and webhook
// secret are registered as literal secrets.
func NewLogger(w io.Writer, cfg *config.Config) (*slog.Logger, error) {
	return logging.New(w, logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Secrets: []string{cfg.Telegram.Token, cfg.Telegram.APISecretToken, cfg.Gateway.Auth.BearerToken, cfg.Gateway.Auth.BasicPass},
	})
}

// NewDriver builds a Telegram driver with an empty inline registry.
func NewDriver(cfg telegram.Config, logger *slog.Logger, m *metrics.Collectors) *telegram.Driver {
	client := telegram.NewClient(cfg, telegram.WithLogger(logger), telegram.WithMetrics(m))
	return telegram.NewDriver(cfg, client, telegram.NewInlineRegistry(cfg.CacheTime), logger)
}

// Build wires a Runtime from a validated configuration. Nothing listens
// until Start is called.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) (*Runtime, error) {
	rt := &Runtime{Config: cfg, Logger: logger, Registry: prometheus.NewRegistry()}
	rt.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collectorsSet := metrics.New(rt.Registry)

	tp, err := tracing.Setup(ctx, tracing.Options{
		Enabled:        cfg.Tracing.Enabled,
		EndpointURL:    cfg.Tracing.EndpointURL,
		Headers:        cfg.Tracing.Headers,
		SampleRatio:    cfg.Tracing.SampleRatio,
		ServiceName:    "tgbridge",
		ServiceVersion: version,
	})
	if err != nil {
		return nil, err
	}
	rt.tracing = tp

	opts := telegram.ReceiverOptions{
		AllowList: channel.NewAllowList(cfg.Telegram.AllowUsers, cfg.Telegram.AllowGroups),
		Metrics:   collectorsSet,
		Logger:    logger,
	}

	if cfg.Sentry.DSN != "" {
		rep, err := report.New(report.Options{
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			Release:     version,
			Secrets:     []string{cfg.Telegram.Token, cfg.Telegram.APISecretToken},
		})
		if err != nil {
			_ = rt.Close(ctx)
			return nil, err
		}
		rt.reporter = rep
		opts.Reporter = rep
	}

	checks := map[string]gateway.HealthCheck{}
	if cfg.Journal.Enabled {
		j, err := journal.Open(ctx, cfg.Journal.Path)
		if err != nil {
			_ = rt.Close(ctx)
			return nil, err
		}
		rt.journal = j
		opts.Journal = j
		checks["journal"] = j.Ping

		rt.cron = cron.NewScheduler(logger)
		if err := rt.cron.RegisterJob(&cron.JournalPruneJob{
			Journal:      j,
			Retention:    cfg.Journal.Retention,
			Logger:       logger,
			ScheduleExpr: cfg.Journal.PruneSchedule,
		}); err != nil {
			_ = rt.Close(ctx)
			return nil, err
		}
	}

	rt.Driver = NewDriver(cfg.Telegram, logger, collectorsSet)
	rt.Driver.Inline().Listen(echo.InlineListener)

	handler := echo.New(echo.Options{Typing: cfg.Echo.Typing, Logger: logger})
	rt.Receiver = telegram.NewWebhookReceiver(rt.Driver, handler.UpdateHandler(), opts)

	rt.Gateway = gateway.New(cfg.Gateway, gateway.Options{
		Logger:   logger,
		Gatherer: rt.Registry,
		Checks:   checks,
		Admin:    rt.Driver,
		ConfigSnapshot: func() (map[string]any, error) {
			return config.Snapshot(cfg)
		},
		Version: version,
	})
	rt.Gateway.Dispatcher().Register(WebhookSource, rt.Receiver)

	return rt, nil
}

// Start opens the gateway and, when webhook_url is configured, registers
// it with Telegram. It also starts the journal prune schedule.
func (rt *Runtime) Start(ctx context.Context) error {
	if err := rt.Gateway.Start(ctx); err != nil {
		return err
	}

	if url := rt.Config.Telegram.WebhookURL; url != "" {
		if err := rt.Driver.SetWebhook(ctx, url); err != nil {
			return fmt.Errorf("registering webhook: %w", err)
		}
		rt.Logger.Info("webhook registered", "url", url)
	}

	if rt.cron != nil {
		if err := rt.cron.Start(); err != nil {
			return err
		}
	}
	return nil
}

// Close stops the gateway and releases every resource.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.Gateway != nil {
		errs = append(errs, rt.Gateway.Stop(ctx))
	}
	if rt.cron != nil {
		errs = append(errs, rt.cron.Stop(ctx))
	}
	if rt.journal != nil {
		errs = append(errs, rt.journal.Close())
	}
	if rt.reporter != nil {
		rt.reporter.Flush(2 * time.Second)
	}
	if rt.tracing != nil {
		errs = append(errs, rt.tracing.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
