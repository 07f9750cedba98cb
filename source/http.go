package source

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"

	"github.com/use-agent/pricewatch/models"
)

// UserAgent is the desktop Chrome identity presented by every provider.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxBody caps the bytes read from a single response.
const maxBody = 10 << 20

// chromeH1Spec is a Chrome ClientHello with ALPN locked to http/1.1, since
// http.Transport cannot speak h2 over a utls connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// HTTPSource fetches the page without executing scripts. It is the cheap
// first tier of a Chain: if the server already renders prices, the browser
// is never started for that cycle.
type HTTPSource struct {
	client *http.Client
}

// NewHTTPSource creates an HTTPSource with a Chrome-like TLS fingerprint.
func NewHTTPSource(timeout time.Duration) *HTTPSource {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("http source: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
	return &HTTPSource{
		client: &http.Client{Timeout: timeout, Transport: transport},
	}
}

func (h *HTTPSource) Name() string { return "http" }

func (h *HTTPSource) Fetch(ctx context.Context, url string) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeNavigation, "invalid target URL", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "tr-TR,tr;q=0.9,en;q=0.8")
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, WrapError(err, "http fetch failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, WrapError(err, "failed to read response body")
	}

	if resp.StatusCode >= 400 {
		return nil, models.NewScrapeError(models.ErrCodeNavigation,
			fmt.Sprintf("upstream returned status %d", resp.StatusCode), nil)
	}
	if ct := resp.Header.Get("Content-Type"); !isHTMLContentType(ct) {
		return nil, models.NewScrapeError(models.ErrCodeNotHTML,
			fmt.Sprintf("unexpected content-type %q", ct), nil)
	}

	return NewSnapshot(string(body), resp.Request.URL.String(), h.Name(), time.Now())
}

func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}
