package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/pricewatch/models"
	"github.com/use-agent/pricewatch/prices"
)

// PriceSource is satisfied by *prices.Service.
type PriceSource interface {
	Prices(ctx context.Context) (*prices.Result, error)
}

// Prices returns a handler for GET /prices.
//
// The optional ?type= query narrows the payload to one category. Unknown
// values return every category, as does an empty one.
func Prices(src PriceSource, sourceLabel string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		filter := c.Query("type")

		res, err := src.Prices(c.Request.Context())
		if err != nil {
			code, msg := models.ErrCodeInternal, err.Error()
			var se *models.ScrapeError
			if errors.As(err, &se) {
				code, msg = se.Code, se.Message
				if se.Err != nil {
					msg += ": " + se.Err.Error()
				}
			}
			c.JSON(http.StatusInternalServerError, models.PricesResponse{
				Success: false,
				Error:   msg,
				Code:    code,
				Hint:    models.StructureHint,
			})
			return
		}

		echo := filter
		if echo == "" {
			echo = "all"
		}

		c.JSON(http.StatusOK, models.PricesResponse{
			Success: true,
			Data:    res.Data.Filter(filter),
			Meta: &models.PricesMeta{
				Source:    sourceLabel,
				ScrapedAt: start.UTC().Format(models.TimestampLayout),
				Duration:  fmt.Sprintf("%dms", time.Since(start).Milliseconds()),
				FromCache: res.FromCache,
				Filter:    echo,
				Provider:  res.Provider,
			},
		})
	}
}

// MethodNotAllowed answers requests whose path exists under another method.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
}
