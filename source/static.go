package source

import (
	"context"
	"time"
)

// Static serves a fixed document, e.g. a page saved from the browser.
type Static struct {
	html string
}

// NewStatic returns a provider that always yields html.
func NewStatic(html string) *Static {
	return &Static{html: html}
}

func (s *Static) Name() string { return "static" }

func (s *Static) Fetch(ctx context.Context, url string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, WrapError(err, "static fetch aborted")
	}
	return NewSnapshot(s.html, url, s.Name(), time.Now())
}
