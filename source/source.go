// Package source turns a URL into a rendered, queryable DOM snapshot.
//
// Providers range from a headless browser (package scraper) to a plain
// HTTP fetch; Chain escalates between them based on Ready.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/pricewatch/models"
)

// Provider is the interface that all page sources must implement.
type Provider interface {
	// Name returns the provider identifier (e.g. "http", "browser", "static").
	Name() string

	// Fetch loads url and returns its DOM as rendered by the provider.
	Fetch(ctx context.Context, url string) (*Snapshot, error)
}

// Snapshot is a materialized document. It is never modified after Fetch
// returns, so extractors can read it without locking.
type Snapshot struct {
	Doc       *goquery.Document
	HTML      string
	URL       string
	Provider  string
	FetchedAt time.Time

	// Ready reports whether price-like content (a run of 3+ digits) was
	// present when the snapshot was taken.
	Ready bool
}

// NewSnapshot parses html and evaluates the readiness heuristic on it.
func NewSnapshot(html, url, provider string, fetchedAt time.Time) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("source: parse html: %w", err)
	}
	return &Snapshot{
		Doc:       doc,
		HTML:      html,
		URL:       url,
		Provider:  provider,
		FetchedAt: fetchedAt,
		Ready:     Ready(doc),
	}, nil
}

// WrapError converts raw fetch errors into typed ScrapeErrors so the API
// layer can report them consistently.
func WrapError(err error, msg string) *models.ScrapeError {
	var se *models.ScrapeError
	if errors.As(err, &se) {
		return se
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
