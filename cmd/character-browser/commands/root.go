package commands

import (
	"context"
	"fmt"
	"net"

	"github.com/Sternrassler/character-browser/pkg/config"
	"github.com/Sternrassler/character-browser/pkg/i18n"
	"github.com/Sternrassler/character-browser/pkg/logging"
	"github.com/Sternrassler/character-browser/pkg/metrics"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	appCtx *app

	stopMetrics context.CancelFunc
)

// Execute runs the root command with os.Args.
func Execute() error {
	root, err := NewRootCmd()
	if err != nil {
		return err
	}
	return root.Execute()
}

// NewRootCmd builds the command tree. Flag defaults come from the
// CHARACTERS_* environment.
func NewRootCmd() (*cobra.Command, error) {
	loaded, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg = loaded
	appCtx = nil

	root := &cobra.Command{
		Use:           "character-browser",
		Short:         "Browse characters of the character API with favorites",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := i18n.Validate(cfg.Locale); err != nil {
				return err
			}

			lc := cfg.LoggingConfig()
			lc.Output = cmd.ErrOrStderr()
			logging.Setup(lc)

			if cfg.MetricsAddr != "" {
				if err := startMetrics(cfg.MetricsAddr); err != nil {
					return err
				}
			}

			a, err := openApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			appCtx = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if stopMetrics != nil {
				stopMetrics()
				stopMetrics = nil
			}
			if appCtx == nil {
				return nil
			}
			err := appCtx.Close()
			appCtx = nil
			return err
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "character API base URL")
	flags.StringVar(&cfg.Store, "store", cfg.Store, "session store: memory, redis or sqlite")
	flags.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis address; enables the response cache")
	flags.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "sqlite file for the session store")
	flags.StringVar(&cfg.Locale, "locale", cfg.Locale, "UI locale (en-US, ru-RU)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	flags.BoolVar(&cfg.LogPretty, "pretty", cfg.LogPretty, "human readable logs")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address")
	flags.BoolVar(&cfg.HTML, "html", cfg.HTML, "print the document as HTML instead of text")

	root.AddCommand(browseCmd(), pageCmd(), favoritesCmd(), toggleCmd(), prefetchCmd(), clearCmd())
	return root, nil
}

func startMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listen: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	stopMetrics = cancel
	go func() {
		if err := metrics.Serve(ctx, ln); err != nil {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()
	return nil
}
