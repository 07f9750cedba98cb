package source

import (
	"context"
	"log/slog"
	"strings"

	"github.com/use-agent/pricewatch/models"
)

// Chain tries providers from cheapest to heaviest. A provider that fails,
// or whose snapshot is not Ready, escalates to the next one. The last
// provider's snapshot is returned even when it is not ready: a readiness
// miss degrades to partial data instead of failing the cycle.
type Chain struct {
	providers []Provider
	logger    *slog.Logger
}

// NewChain creates a Chain over providers, in order.
func NewChain(logger *slog.Logger, providers ...Provider) *Chain {
	return &Chain{
		providers: providers,
		logger:    logger.With("component", "source_chain"),
	}
}

func (c *Chain) Name() string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return strings.Join(names, ">")
}

func (c *Chain) Fetch(ctx context.Context, url string) (*Snapshot, error) {
	if len(c.providers) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "no page source configured", nil)
	}

	var lastErr error
	for i, p := range c.providers {
		last := i == len(c.providers)-1

		snap, err := p.Fetch(ctx, url)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			if !last {
				c.logger.Info("provider failed, escalating", "provider", p.Name(), "url", url, "error", err)
			}
			continue
		}

		if snap.Ready || last {
			c.logger.Debug("provider produced snapshot", "provider", p.Name(), "ready", snap.Ready)
			return snap, nil
		}
		c.logger.Info("snapshot has no price content, escalating", "provider", p.Name(), "url", url)
	}

	return nil, WrapError(lastErr, "all page sources failed")
}
