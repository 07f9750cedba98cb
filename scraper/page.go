package scraper

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/pricewatch/models"
	"github.com/use-agent/pricewatch/source"
)

// Fetch renders target and returns the DOM once price content has appeared,
// or whatever is present when the readiness poll gives up.
//
// Lifecycle:
//
//  1. Acquire page      – borrow a tab from the pool (or create one)
//  2. DEFER: cleanup    – about:blank + return to pool
//  3. Identity          – stealth JS, user agent, extra headers
//  4. Hijack mount      – block images/fonts/media and ad domains
//  5. Navigate          – bounded by NavigationTimeout
//  6. Readiness poll    – bounded by ReadyTimeout, a miss is not fatal
//  7. Settle            – fixed delay for late tiles
//  8. Extract           – page.HTML()
//
// Steps 3 and 4 must happen before step 5: stealth JS and resource blocking
// only take effect for navigations that happen after they are installed.
func (s *Scraper) Fetch(ctx context.Context, target string) (*source.Snapshot, error) {
	// ── 1. Acquire page from pool ─────────────────────────────────────
	s.activePages.Add(1)
	defer s.activePages.Add(-1)

	page, err := s.pagePool.Get(func() (*rod.Page, error) {
		return s.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to acquire page from pool",
			err,
		)
	}

	// ── 2. Cleanup uses the page without request context so it still
	// succeeds after ctx has expired.
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			s.logger.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		s.pagePool.Put(page)
	}()

	// ── 3. Identity ───────────────────────────────────────────────────
	if s.browserCfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			s.logger.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}
	if uaErr := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      source.UserAgent,
		AcceptLanguage: "tr-TR,tr;q=0.9,en;q=0.8",
	}); uaErr != nil {
		s.logger.Warn("failed to set user agent", "error", uaErr)
	}
	if headers := s.extraHeaders(target); len(headers) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}.Call(page)
	}

	// ── 4. Hijack ─────────────────────────────────────────────────────
	if router := setupHijack(page, s.scraperCfg.BlockedResourceTypes, s.scraperCfg.BlockAds); router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)

	// ── 5. Navigate ───────────────────────────────────────────────────
	nav := p.Timeout(s.scraperCfg.NavigationTimeout)
	if err := nav.Navigate(target); err != nil {
		return nil, source.WrapError(err, "navigation to target URL failed")
	}
	if err := nav.WaitLoad(); err != nil {
		return nil, source.WrapError(err, "page did not finish loading")
	}

	// ── 6. Readiness poll ─────────────────────────────────────────────
	ready := true
	if err := p.Timeout(s.scraperCfg.ReadyTimeout).Wait(rod.Eval(source.ReadinessJS)); err != nil {
		if ctx.Err() != nil {
			return nil, source.WrapError(ctx.Err(), "scrape aborted while waiting for prices")
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("readiness poll failed", "error", err)
		}
		ready = false
		s.logger.Info("no price content before readiness timeout, continuing with current DOM",
			"url", target, "timeout", s.scraperCfg.ReadyTimeout)
	}

	// ── 7. Settle ─────────────────────────────────────────────────────
	if err := sleepCtx(ctx, s.scraperCfg.SettleDelay); err != nil {
		return nil, source.WrapError(err, "scrape aborted while settling")
	}

	// ── 8. Extract ────────────────────────────────────────────────────
	rawHTML, err := p.HTML()
	if err != nil {
		return nil, source.WrapError(err, "failed to extract page HTML")
	}

	snap, err := source.NewSnapshot(rawHTML, target, s.Name(), time.Now())
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "failed to parse rendered page", err)
	}
	// The in-page poll saw innerText after layout, which is authoritative
	// for the browser path.
	snap.Ready = ready || snap.Ready
	return snap, nil
}

// extraHeaders merges the configured headers with a search-engine Referer.
func (s *Scraper) extraHeaders(target string) map[string]string {
	headers := make(map[string]string, len(s.scraperCfg.ExtraHeaders)+1)
	if _, ok := s.scraperCfg.ExtraHeaders["Referer"]; !ok {
		if u, err := url.Parse(target); err == nil {
			headers["Referer"] = "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
		}
	}
	for k, v := range s.scraperCfg.ExtraHeaders {
		headers[k] = v
	}
	return headers
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
