package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Browser   BrowserConfig   `yaml:"browser"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Cache     CacheConfig     `yaml:"cache"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Warmer    WarmerConfig    `yaml:"warmer"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string `env:"PRICEWATCH_HOST" env-default:"0.0.0.0" yaml:"host"`
	Port int    `env:"PRICEWATCH_PORT" env-default:"8080" yaml:"port"`
	Mode string `env:"PRICEWATCH_MODE" env-default:"release" yaml:"mode"` // gin mode: debug, release, test

	ShutdownTimeout time.Duration `env:"PRICEWATCH_SHUTDOWN_TIMEOUT" env-default:"30s" yaml:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	Headless bool `env:"PRICEWATCH_HEADLESS" env-default:"true" yaml:"headless"`

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int `env:"PRICEWATCH_MAX_PAGES" env-default:"2" yaml:"max_pages"`

	Proxy string `env:"PRICEWATCH_PROXY" yaml:"proxy"`

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool `env:"PRICEWATCH_NO_SANDBOX" env-default:"false" yaml:"no_sandbox"`

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string `env:"PRICEWATCH_BROWSER_BIN" yaml:"browser_bin"`

	Stealth bool `env:"PRICEWATCH_STEALTH" env-default:"true" yaml:"stealth"`
}

// ScraperConfig controls what is scraped and how long each phase may take.
type ScraperConfig struct {
	TargetURL   string `env:"PRICEWATCH_TARGET_URL" env-default:"https://canlipiyasalar.haremaltin.com/" yaml:"target_url"`
	SourceLabel string `env:"PRICEWATCH_SOURCE_LABEL" env-default:"Harem Altın" yaml:"source_label"`

	NavigationTimeout time.Duration `env:"PRICEWATCH_NAV_TIMEOUT" env-default:"25s" yaml:"navigation_timeout"`
	ReadyTimeout      time.Duration `env:"PRICEWATCH_READY_TIMEOUT" env-default:"15s" yaml:"ready_timeout"`
	SettleDelay       time.Duration `env:"PRICEWATCH_SETTLE_DELAY" env-default:"2s" yaml:"settle_delay"`

	// OverallTimeout bounds a whole scrape cycle, all providers included.
	OverallTimeout time.Duration `env:"PRICEWATCH_SCRAPE_TIMEOUT" env-default:"45s" yaml:"overall_timeout"`

	HTTPTimeout time.Duration `env:"PRICEWATCH_HTTP_TIMEOUT" env-default:"10s" yaml:"http_timeout"`

	// HTTPFirst tries a plain fetch before starting the browser.
	HTTPFirst bool `env:"PRICEWATCH_HTTP_FIRST" env-default:"false" yaml:"http_first"`

	BlockedResourceTypes []string `env:"PRICEWATCH_BLOCKED_RESOURCES" env-default:"Image,Font,Media" yaml:"blocked_resource_types"`
	BlockAds             bool     `env:"PRICEWATCH_BLOCK_ADS" env-default:"true" yaml:"block_ads"`

	// ExtraHeaders are sent with every browser request, e.g. "Referer:https://example.com".
	ExtraHeaders map[string]string `env:"PRICEWATCH_EXTRA_HEADERS" yaml:"extra_headers"`

	// DriftThreshold is the Hamming distance between layout fingerprints
	// above which a structure change is reported.
	DriftThreshold int `env:"PRICEWATCH_DRIFT_THRESHOLD" env-default:"12" yaml:"drift_threshold"`
}

// CacheConfig controls the result cache.
type CacheConfig struct {
	TTL        time.Duration `env:"PRICEWATCH_CACHE_TTL" env-default:"30s" yaml:"ttl"`
	MaxEntries int           `env:"PRICEWATCH_CACHE_MAX_ENTRIES" env-default:"16" yaml:"max_entries"`
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	Enabled bool     `env:"PRICEWATCH_AUTH_ENABLED" env-default:"false" yaml:"enabled"`
	APIKeys []string `env:"PRICEWATCH_API_KEYS" yaml:"api_keys"`
}

// RateLimitConfig controls per-client rate limiting. A zero rate disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `env:"PRICEWATCH_RATE_RPS" env-default:"5" yaml:"requests_per_second"`
	Burst             int     `env:"PRICEWATCH_RATE_BURST" env-default:"10" yaml:"burst"`
}

// CORSConfig controls the CORS response headers.
type CORSConfig struct {
	AllowedOrigins []string `env:"PRICEWATCH_CORS_ORIGINS" env-default:"*" yaml:"allowed_origins"`
}

// WarmerConfig controls periodic cache pre-warming. A zero interval disables it.
type WarmerConfig struct {
	Interval time.Duration `env:"PRICEWATCH_WARM_INTERVAL" env-default:"0s" yaml:"interval"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `env:"PRICEWATCH_LOG_LEVEL" env-default:"info" yaml:"level"`
	Format string `env:"PRICEWATCH_LOG_FORMAT" env-default:"json" yaml:"format"` // "json" or "text"
}

// SlogLevel maps Level onto a slog level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads configuration from path when given, otherwise from the
// environment. Environment variables override file values.
func Load(path string) (*Config, error) {
	cnf := &Config{}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cnf)
	} else {
		err = cleanenv.ReadEnv(cnf)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if cnf.Browser.MaxPages < 1 {
		cnf.Browser.MaxPages = 1
	}
	return cnf, nil
}
