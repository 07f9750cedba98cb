package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/use-agent/pricewatch/api"
	"github.com/use-agent/pricewatch/cache"
	"github.com/use-agent/pricewatch/layout"
	"github.com/use-agent/pricewatch/metrics"
	"github.com/use-agent/pricewatch/prices"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := logger.With("component", "cmd")
		ctx := cmd.Context()

		log.Info("pricewatch starting",
			"addr", cnf.Server.Addr(),
			"target", cnf.Scraper.TargetURL,
			"httpFirst", cnf.Scraper.HTTPFirst,
			"maxPages", cnf.Browser.MaxPages,
		)

		// ── 1. Page source (launches browser) ───────────────────────────
		provider, sc, err := newProvider()
		if err != nil {
			return err
		}
		// Drains the page pool and kills Chrome.
		defer sc.Close()

		// ── 2. Metrics ──────────────────────────────────────────────────
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New(reg)

		// ── 3. Service ──────────────────────────────────────────────────
		svc := prices.NewService(logger, provider,
			cache.New(cnf.Cache.TTL, cnf.Cache.MaxEntries, nil),
			prices.Options{
				URL:     cnf.Scraper.TargetURL,
				Timeout: cnf.Scraper.OverallTimeout,
				Metrics: m,
				Tracker: layout.NewTracker(cnf.Scraper.DriftThreshold),
			})

		if cnf.Warmer.Interval > 0 {
			w := prices.NewWarmer(logger, svc, cnf.Warmer.Interval, time.Local)
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()
		}

		// ── 4. HTTP server ──────────────────────────────────────────────
		router := api.NewRouter(ctx, cnf, api.Deps{
			Prices:   svc,
			Pool:     sc,
			Gatherer: reg,
			Metrics:  m,
			Started:  time.Now(),
		})
		srv := &http.Server{
			Addr:              cnf.Server.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("HTTP server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		// ── 5. Graceful shutdown ────────────────────────────────────────
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			log.Info("shutdown signal received")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cnf.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server forced shutdown", "error", err)
		} else {
			log.Info("HTTP server drained gracefully")
		}
		return nil
	},
}
