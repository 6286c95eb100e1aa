// Package main is the entry point for the tgbridge CLI.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/flemzord/tgbridge/internal/config"
	"github.com/flemzord/tgbridge/internal/telegram"
	"github.com/flemzord/tgbridge/pkg/app"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tgbridge",
		Short:         "Telegram webhook bridge",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			return loadEnvFile(envFile)
		},
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	root.PersistentFlags().String("env-file", ".env", "Dotenv file loaded before the configuration (skipped if missing)")
	root.AddCommand(versionCmd(), serveCmd(), webhookCmd(), loginCmd(), configCmd())
	return root
}

// loadEnvFile loads path into the environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tgbridge %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook gateway with the echo handler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			level, _ := cmd.Flags().GetString("log-level")
			return app.Run(cmd.Context(), app.RunParams{
				ConfigPath: cfgPath,
				Version:    version,
				Commit:     commit,
				Date:       date,
				LogLevel:   level,
			})
		},
	}
	cmd.Flags().String("log-level", "", "Override log.level (debug, info, warn, error)")
	return cmd
}

// loadConfig resolves, loads and validates the configuration named by the
// --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	explicit, _ := cmd.Flags().GetString("config")
	path, err := config.ResolvePath(explicit)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func driverFromConfig(cmd *cobra.Command) (*telegram.Driver, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := app.NewLogger(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return nil, err
	}
	return app.NewDriver(cfg.Telegram, logger, nil), nil
}

func webhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the bot's webhook registration",
	}

	set := &cobra.Command{
		Use:   "set [url]",
		Short: "Register the webhook URL (defaults to telegram.webhook_url)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			target := cfg.Telegram.WebhookURL
			if len(args) == 1 {
				target = args[0]
			}
			if target == "" {
				return errors.New("no webhook URL given and telegram.webhook_url is empty")
			}
			logger, err := app.NewLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}
			d := app.NewDriver(cfg.Telegram, logger, nil)
			if err := d.SetWebhook(cmd.Context(), target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Webhook registered: %s\n", target)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete",
		Short: "Remove the webhook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := driverFromConfig(cmd)
			if err != nil {
				return err
			}
			drop, _ := cmd.Flags().GetBool("drop-pending")
			if err := d.DeleteWebhook(cmd.Context(), drop); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Webhook deleted")
			return nil
		},
	}
	del.Flags().Bool("drop-pending", false, "Also drop updates waiting for delivery")

	info := &cobra.Command{
		Use:   "info",
		Short: "Show Telegram's view of the webhook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := driverFromConfig(cmd)
			if err != nil {
				return err
			}
			result, err := d.WebhookInfo(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.AddCommand(set, del, info)
	return cmd
}

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Telegram Login Widget helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "verify <query-string>",
		Short: "Check the hash of a login widget redirect (e.g. 'id=1&auth_date=...&hash=...')",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			params, err := url.ParseQuery(strings.TrimPrefix(args[0], "?"))
			if err != nil {
				return fmt.Errorf("parsing query: %w", err)
			}
			if !telegram.VerifyLogin(params, cfg.Telegram.Token, time.Now()) {
				return errors.New("login signature invalid or expired")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Login valid for user %s\n", params.Get("id"))
			return nil
		},
	})
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check [path]",
		Short: "Validate configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := cmd.Flags().Set("config", args[0]); err != nil {
					return err
				}
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if _, err := app.NewLogger(io.Discard, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration OK (gateway %s, journal %t, tracing %t, sentry %t)\n",
				cfg.Gateway.Bind, cfg.Journal.Enabled, cfg.Tracing.Enabled, cfg.Sentry.DSN != "")
			return nil
		},
	})
	return cmd
}
