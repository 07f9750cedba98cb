package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/use-agent/pricewatch/api/handler"
	"github.com/use-agent/pricewatch/api/middleware"
	"github.com/use-agent/pricewatch/config"
	"github.com/use-agent/pricewatch/metrics"
)

// PriceService is what the router needs from *prices.Service.
type PriceService interface {
	handler.PriceSource
	handler.CacheAger
}

// Deps are the collaborators served by the router.
type Deps struct {
	Prices   PriceService
	Pool     handler.PoolStater // nil without a browser
	Gatherer prometheus.Gatherer
	Metrics  *metrics.Metrics
	Started  time.Time
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → CORS → Metrics
//	Prices:  Auth (if enabled) → RateLimit
//
// Health and metrics stay outside auth so probes always work. ctx bounds
// background work started by middleware.
func NewRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	r.NoMethod(handler.MethodNotAllowed)

	r.GET("/health", handler.Health(deps.Pool, deps.Prices, deps.Started))
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	protected := r.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(ctx, cfg.RateLimit))

	prices := handler.Prices(deps.Prices, cfg.Scraper.SourceLabel)
	protected.GET("/prices", prices)
	protected.GET("/api/prices", prices)

	return r
}
