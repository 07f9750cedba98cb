package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/pricewatch/models"
)

// Version is reported by the health endpoint.
var Version = "0.1.0"

// PoolStater reports browser page pool usage.
type PoolStater interface {
	Stats() models.PoolStats
}

// CacheAger reports the age of the cached result set.
type CacheAger interface {
	CacheAge() (time.Duration, bool)
}

// Health returns a handler for GET /health.
//
// Reports pool utilisation and degrades status when > 80% of pages are
// active. pool may be nil when no browser is configured.
func Health(pool PoolStater, ca CacheAger, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		var stats models.PoolStats
		if pool != nil {
			stats = pool.Stats()
		}

		status := "healthy"
		if stats.MaxPages > 0 && stats.ActivePages > int(float64(stats.MaxPages)*0.8) {
			status = "degraded"
		}

		resp := models.HealthResponse{
			Status:    status,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			PoolStats: stats,
			Version:   Version,
		}
		if age, ok := ca.CacheAge(); ok {
			resp.CacheAge = age.Round(time.Millisecond).String()
		}

		c.JSON(http.StatusOK, resp)
	}
}
