// Package prices ties a page source, the extractors and the result cache
// into the operation served by the API.
package prices

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/use-agent/pricewatch/cache"
	"github.com/use-agent/pricewatch/extract"
	"github.com/use-agent/pricewatch/layout"
	"github.com/use-agent/pricewatch/metrics"
	"github.com/use-agent/pricewatch/models"
	"github.com/use-agent/pricewatch/source"
)

// Result is a result set plus how it was obtained.
type Result struct {
	Data       *models.ResultSet
	FromCache  bool
	Provider   string
	CapturedAt time.Time
}

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	// URL is the page to scrape and the cache key.
	URL string

	// Timeout bounds one scrape cycle across all providers.
	Timeout time.Duration

	Metrics *metrics.Metrics
	Tracker *layout.Tracker
	Clock   func() time.Time
}

// Service returns current prices, scraping at most once per cache TTL.
// Concurrent misses share one scrape.
type Service struct {
	provider source.Provider
	cache    *cache.Cache
	url      string
	timeout  time.Duration
	metrics  *metrics.Metrics
	tracker  *layout.Tracker
	now      func() time.Time
	logger   *slog.Logger
	group    singleflight.Group
}

// NewService creates a Service reading from provider and storing into c.
func NewService(logger *slog.Logger, provider source.Provider, c *cache.Cache, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(prometheus.NewRegistry())
	}
	if opts.Tracker == nil {
		opts.Tracker = layout.NewTracker(12)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Service{
		provider: provider,
		cache:    c,
		url:      opts.URL,
		timeout:  opts.Timeout,
		metrics:  opts.Metrics,
		tracker:  opts.Tracker,
		now:      opts.Clock,
		logger:   logger.With("component", "prices"),
	}
}

// URL returns the scraped page address.
func (s *Service) URL() string { return s.url }

// CacheAge reports the age of the cached result, if any.
func (s *Service) CacheAge() (time.Duration, bool) {
	return s.cache.Age(s.url)
}

// Prices returns the cached result set when it is fresh, otherwise scrapes.
func (s *Service) Prices(ctx context.Context) (*Result, error) {
	if rs, capturedAt, ok := s.cache.Get(s.url); ok {
		s.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return &Result{Data: rs, FromCache: true, CapturedAt: capturedAt}, nil
	}
	s.metrics.CacheLookups.WithLabelValues("miss").Inc()
	return s.Refresh(ctx)
}

// Refresh scrapes unconditionally and replaces the cached result. A caller
// that gives up does not abort a scrape other callers are waiting on.
func (s *Service) Refresh(ctx context.Context) (*Result, error) {
	ch := s.group.DoChan(s.url, func() (any, error) {
		return s.scrape(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, source.WrapError(ctx.Err(), "price request canceled")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Result), nil
	}
}

func (s *Service) scrape(ctx context.Context) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	snap, err := s.provider.Fetch(ctx, s.url)
	if err != nil {
		serr := source.WrapError(err, "failed to fetch price page")
		s.metrics.ScrapesTotal.WithLabelValues(s.provider.Name(), "error").Inc()
		s.logger.Error("scrape failed", "url", s.url, "code", serr.Code, "error", err)
		return nil, serr
	}
	s.metrics.ScrapeDurationSeconds.WithLabelValues(snap.Provider).Observe(time.Since(start).Seconds())
	s.metrics.ScrapesTotal.WithLabelValues(snap.Provider, "ok").Inc()

	if !snap.Ready {
		s.metrics.ReadinessMisses.WithLabelValues(snap.Provider).Inc()
	}

	capturedAt := s.now()
	rs := extract.Extract(snap.Doc, capturedAt)

	s.observeLayout(snap)

	for _, c := range models.Categories {
		s.metrics.RecordsCollected.WithLabelValues(c.Key()).Set(float64(len(rs.List(c))))
	}
	if rs.Total() == 0 {
		s.logger.Warn("scrape produced no price records", "url", s.url, "provider", snap.Provider, "ready", snap.Ready)
	}
	s.logger.Info("scrape completed",
		"provider", snap.Provider,
		"gold", len(rs.Gold),
		"currency", len(rs.Currency),
		"silver", len(rs.Silver),
		"other", len(rs.Other),
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)

	s.cache.Set(s.url, rs)
	return &Result{Data: rs, Provider: snap.Provider, CapturedAt: capturedAt}, nil
}

func (s *Service) observeLayout(snap *source.Snapshot) {
	distance, drifted := s.tracker.Observe(s.url, layout.Fingerprint(snap.Doc))
	s.metrics.LayoutDistance.Set(float64(distance))
	if drifted {
		s.metrics.LayoutDrifts.Inc()
		s.logger.Warn("page structure changed since last scrape",
			"url", s.url, "distance", distance)
	}
}
