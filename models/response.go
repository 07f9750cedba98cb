package models

// PricesResponse is the body of GET /prices.
type PricesResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Meta    *PricesMeta    `json:"meta,omitempty"`

	// Error and Hint are populated only when Success is false.
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
	Hint  string `json:"hint,omitempty"`
}

// PricesMeta describes how a response was produced.
type PricesMeta struct {
	Source    string `json:"source"`
	ScrapedAt string `json:"scrapedAt"`
	Duration  string `json:"duration"`
	FromCache bool   `json:"fromCache"`
	Filter    string `json:"filter"`
	Provider  string `json:"provider,omitempty"`
}

// ErrorResponse is used by middleware that rejects a request before it
// reaches a handler.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	CacheAge  string    `json:"cache_age,omitempty"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser page pool.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}
