package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/pricewatch/api"
	"github.com/use-agent/pricewatch/cache"
	"github.com/use-agent/pricewatch/config"
	"github.com/use-agent/pricewatch/metrics"
	"github.com/use-agent/pricewatch/models"
	"github.com/use-agent/pricewatch/prices"
	"github.com/use-agent/pricewatch/source"
)

const pricePage = `<html><body>
<table>
<tr><th>Ürün</th><th>Alış</th><th>Satış</th></tr>
<tr><td>Gram Altın</td><td>2.450,10</td><td>2.460,20</td><td>%0,12</td></tr>
<tr><td>Amerikan Doları</td><td>34,10</td><td>34,20</td></tr>
<tr><td>Gümüş</td><td>28,40</td><td>28,90</td></tr>
</table>
</body></html>`

type countingSource struct {
	source.Provider
	calls atomic.Int32
	err   error
}

func (c *countingSource) Fetch(ctx context.Context, url string) (*source.Snapshot, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.Provider.Fetch(ctx, url)
}

type pricesEnvelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Meta    models.PricesMeta `json:"meta"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Hint    string            `json:"hint"`
}

func newTestRouter(t *testing.T, src *countingSource, mutate func(*config.Config)) http.Handler {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Server.Mode = "test"
	if mutate != nil {
		mutate(cfg)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := prices.NewService(slog.Default(), src, cache.New(cfg.Cache.TTL, cfg.Cache.MaxEntries, nil), prices.Options{
		URL:     cfg.Scraper.TargetURL,
		Metrics: m,
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return api.NewRouter(ctx, cfg, api.Deps{
		Prices:   svc,
		Gatherer: reg,
		Metrics:  m,
		Started:  time.Now(),
	})
}

func do(t *testing.T, h http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) pricesEnvelope {
	t.Helper()
	var env pricesEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func Test_PricesServedFromCache(t *testing.T) {
	src := &countingSource{Provider: source.NewStatic(pricePage)}
	r := newTestRouter(t, src, nil)

	first := do(t, r, http.MethodGet, "/prices", nil)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, "*", first.Header().Get("Access-Control-Allow-Origin"))

	second := do(t, r, http.MethodGet, "/prices", nil)
	require.Equal(t, http.StatusOK, second.Code)

	a, b := decode(t, first), decode(t, second)
	require.True(t, a.Success)
	require.False(t, a.Meta.FromCache)
	require.True(t, b.Meta.FromCache)
	require.Equal(t, string(a.Data), string(b.Data))
	require.Equal(t, "Harem Altın", b.Meta.Source)
	require.Equal(t, "all", b.Meta.Filter)
	require.True(t, strings.HasSuffix(b.Meta.Duration, "ms"))
	require.EqualValues(t, 1, src.calls.Load())

	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(a.Data, &data))
	require.ElementsMatch(t, []string{"gold", "currency", "silver", "other", "timestamp"}, keys(data))
}

func Test_PricesScrapedAtIsResponseTime(t *testing.T) {
	r := newTestRouter(t, &countingSource{Provider: source.NewStatic(pricePage)}, nil)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/prices", nil).Code)
	time.Sleep(20 * time.Millisecond)
	hit := decode(t, do(t, r, http.MethodGet, "/prices", nil))
	require.True(t, hit.Meta.FromCache)

	var data struct {
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(hit.Data, &data))

	captured, err := time.Parse(models.TimestampLayout, data.Timestamp)
	require.NoError(t, err)
	served, err := time.Parse(models.TimestampLayout, hit.Meta.ScrapedAt)
	require.NoError(t, err)
	require.GreaterOrEqual(t, served.Sub(captured), 20*time.Millisecond)
}

func Test_PricesFilter(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"gold", []string{"gold", "timestamp"}},
		{"altin", []string{"gold", "timestamp"}},
		{"doviz", []string{"currency", "timestamp"}},
		{"gumus", []string{"silver", "timestamp"}},
		{"pilesler", []string{"other", "timestamp"}},
		{"everything", []string{"gold", "currency", "silver", "other", "timestamp"}},
	}

	r := newTestRouter(t, &countingSource{Provider: source.NewStatic(pricePage)}, nil)
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := do(t, r, http.MethodGet, "/api/prices?type="+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)

			env := decode(t, w)
			require.Equal(t, tt.query, env.Meta.Filter)

			var data map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(env.Data, &data))
			require.ElementsMatch(t, tt.want, keys(data))
		})
	}
}

func Test_PricesGoldPayload(t *testing.T) {
	r := newTestRouter(t, &countingSource{Provider: source.NewStatic(pricePage)}, nil)

	w := do(t, r, http.MethodGet, "/prices?type=gold", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Gold []models.PriceRecord `json:"gold"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	require.Len(t, data.Gold, 1)
	require.Equal(t, "Gram Altın", data.Gold[0].Name)
	require.InDelta(t, 2450.10, *data.Gold[0].Buy, 1e-9)
	require.InDelta(t, 2460.20, *data.Gold[0].Sell, 1e-9)
	require.Equal(t, "%0,12", *data.Gold[0].Change)
}

func Test_PricesFailure(t *testing.T) {
	src := &countingSource{
		Provider: source.NewStatic(pricePage),
		err:      models.NewScrapeError(models.ErrCodeNavigation, "navigation to target URL failed", errors.New("net::ERR_NAME_NOT_RESOLVED")),
	}
	r := newTestRouter(t, src, nil)

	w := do(t, r, http.MethodGet, "/prices", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	env := decode(t, w)
	require.False(t, env.Success)
	require.Equal(t, "navigation to target URL failed: net::ERR_NAME_NOT_RESOLVED", env.Error)
	require.Equal(t, models.ErrCodeNavigation, env.Code)
	require.Equal(t, models.StructureHint, env.Hint)
}

func Test_PreflightAndMethods(t *testing.T) {
	r := newTestRouter(t, &countingSource{Provider: source.NewStatic(pricePage)}, nil)

	w := do(t, r, http.MethodOptions, "/prices", map[string]string{"Origin": "https://example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "GET, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	require.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))

	w = do(t, r, http.MethodPost, "/prices", nil)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.JSONEq(t, `{"error":"Method not allowed"}`, w.Body.String())
}

func Test_Auth(t *testing.T) {
	r := newTestRouter(t, &countingSource{Provider: source.NewStatic(pricePage)}, func(cfg *config.Config) {
		cfg.Auth.Enabled = true
		cfg.Auth.APIKeys = []string{"secret"}
	})

	require.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodGet, "/prices", nil).Code)
	require.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodGet, "/prices", map[string]string{"X-API-Key": "wrong"}).Code)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/prices", map[string]string{"Authorization": "Bearer secret"}).Code)

	// Probes bypass auth.
	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/health", nil).Code)
}

func Test_RateLimit(t *testing.T) {
	r := newTestRouter(t, &countingSource{Provider: source.NewStatic(pricePage)}, func(cfg *config.Config) {
		cfg.RateLimit.RequestsPerSecond = 0.001
		cfg.RateLimit.Burst = 1
	})

	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/prices", nil).Code)

	w := do(t, r, http.MethodGet, "/prices", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Contains(t, w.Body.String(), models.ErrCodeRateLimited)
}

func Test_HealthAndMetrics(t *testing.T) {
	r := newTestRouter(t, &countingSource{Provider: source.NewStatic(pricePage)}, nil)

	w := do(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var health models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	require.Equal(t, "healthy", health.Status)
	require.Empty(t, health.CacheAge)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/prices", nil).Code)

	w = do(t, r, http.MethodGet, "/health", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	require.NotEmpty(t, health.CacheAge)

	w = do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "pricewatch_cache_lookups_total")
	require.Contains(t, w.Body.String(), `route="/prices"`)
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
