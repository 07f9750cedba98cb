package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/use-agent/pricewatch/config"
	"github.com/use-agent/pricewatch/scraper"
	"github.com/use-agent/pricewatch/source"
)

var (
	rootCmd = &cobra.Command{
		Use:           "pricewatch",
		Short:         "Scrapes live gold and currency prices and serves them as JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cnf, err = config.Load(configPath)
			if err != nil {
				return err
			}
			logger = newLogger(cnf.Log, os.Stderr)
			return nil
		},
	}

	configPath string
	cnf        *config.Config
	logger     *slog.Logger
)

// Execute runs the root command until it returns or a signal arrives.
func Execute() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file; environment variables override it")
	rootCmd.AddCommand(serveCmd, scrapeCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// newProvider builds the page source chain. The returned scraper owns a
// browser process and must be closed by the caller.
func newProvider() (source.Provider, *scraper.Scraper, error) {
	sc, err := scraper.NewScraper(logger, cnf.Browser, cnf.Scraper)
	if err != nil {
		return nil, nil, fmt.Errorf("initialise browser: %w", err)
	}

	providers := []source.Provider{sc}
	if cnf.Scraper.HTTPFirst {
		providers = append([]source.Provider{source.NewHTTPSource(cnf.Scraper.HTTPTimeout)}, providers...)
	}
	return source.NewChain(logger, providers...), sc, nil
}
