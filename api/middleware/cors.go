package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	corsMethods = "GET, OPTIONS"
	corsHeaders = "Content-Type"
)

// CORS sets cross-origin headers on every response and answers preflight
// requests with 200 before routing.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin := allowedOrigin(c.GetHeader("Origin"), allowedOrigins); origin != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", corsMethods)
			h.Set("Access-Control-Allow-Headers", corsHeaders)
			if origin != "*" {
				h.Add("Vary", "Origin")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// allowedOrigin returns the value for Access-Control-Allow-Origin, or ""
// when origin is not allowed.
func allowedOrigin(origin string, allowed []string) string {
	for _, a := range allowed {
		if a == "*" {
			return "*"
		}
		if origin != "" && a == origin {
			return origin
		}
	}
	return ""
}
