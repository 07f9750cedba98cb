package prices

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Warmer refreshes the cache on a fixed interval so requests rarely wait
// for the browser.
type Warmer struct {
	s        *gocron.Scheduler
	svc      *Service
	interval time.Duration
	logger   *slog.Logger
}

// NewWarmer creates a Warmer for svc. It does nothing until Start.
func NewWarmer(logger *slog.Logger, svc *Service, interval time.Duration, loc *time.Location) *Warmer {
	if loc == nil {
		loc = time.UTC
	}
	return &Warmer{
		s:        gocron.NewScheduler(loc),
		svc:      svc,
		interval: interval,
		logger:   logger.With("component", "warmer"),
	}
}

// Start schedules the refresh job and returns immediately. Runs never
// overlap; a run still in progress when the next is due is skipped.
func (w *Warmer) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return fmt.Errorf("warmer: interval must be positive, got %s", w.interval)
	}

	_, err := w.s.Every(w.interval).SingletonMode().Do(func() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if _, err := w.svc.Refresh(ctx); err != nil {
			w.logger.Warn("cache pre-warm failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("warmer: schedule job: %w", err)
	}

	w.s.StartAsync()
	w.logger.Info("cache pre-warm scheduled", "interval", w.interval)
	return nil
}

// Stop halts the scheduler.
func (w *Warmer) Stop() {
	w.s.Stop()
}
