package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/use-agent/pricewatch/models"
)

// pricesResponse mirrors the GET /prices body.
type pricesResponse struct {
	Success bool                       `json:"success"`
	Data    map[string]json.RawMessage `json:"data"`
	Meta    *models.PricesMeta         `json:"meta"`
	Error   string                     `json:"error"`
	Code    string                     `json:"code"`
	Hint    string                     `json:"hint"`
}

type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// prices calls GET /prices with an optional type filter.
func (c *client) prices(ctx context.Context, filter string) (*pricesResponse, error) {
	endpoint := c.baseURL + "/prices"
	if filter != "" && filter != "all" {
		endpoint += "?type=" + url.QueryEscape(filter)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out pricesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = resp.Status
		}
		if out.Code != "" {
			msg = fmt.Sprintf("[%s] %s", out.Code, msg)
		}
		if out.Hint != "" {
			msg += " (" + out.Hint + ")"
		}
		return nil, fmt.Errorf("%s", msg)
	}
	return &out, nil
}

func handleGetPrices(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp, err := c.prices(ctx, request.GetString("type", "all"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var b strings.Builder
		writeHeader(&b, resp)
		for _, cat := range models.Categories {
			records, ok := decodeBucket(resp, cat)
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "\n## %s\n", cat)
			writeRecords(&b, records)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleFindPrice(c *client) server.ToolHandlerFunc {
	fold := cases.Lower(language.Turkish)

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || strings.TrimSpace(name) == "" {
			return mcp.NewToolResultError("name is required"), nil
		}
		needle := fold.String(strings.TrimSpace(name))

		resp, err := c.prices(ctx, "all")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var b strings.Builder
		writeHeader(&b, resp)
		found := 0
		for _, cat := range models.Categories {
			records, _ := decodeBucket(resp, cat)
			var matched []models.PriceRecord
			for _, r := range records {
				if strings.Contains(fold.String(r.Name), needle) {
					matched = append(matched, r)
				}
			}
			if len(matched) == 0 {
				continue
			}
			found += len(matched)
			fmt.Fprintf(&b, "\n## %s\n", cat)
			writeRecords(&b, matched)
		}
		if found == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("no instrument matching %q", name)), nil
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func decodeBucket(resp *pricesResponse, cat models.Category) ([]models.PriceRecord, bool) {
	raw, ok := resp.Data[cat.Key()]
	if !ok {
		return nil, false
	}
	var records []models.PriceRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, false
	}
	return records, true
}

func writeHeader(b *strings.Builder, resp *pricesResponse) {
	if resp.Meta == nil {
		return
	}
	fmt.Fprintf(b, "Source: %s\nScraped at: %s", resp.Meta.Source, resp.Meta.ScrapedAt)
	if resp.Meta.FromCache {
		b.WriteString(" (cached)")
	}
	b.WriteString("\n")
}

func writeRecords(b *strings.Builder, records []models.PriceRecord) {
	if len(records) == 0 {
		b.WriteString("(none)\n")
		return
	}
	for _, r := range records {
		fmt.Fprintf(b, "- %s: buy %s, sell %s", r.Name, formatPrice(r.Buy), formatPrice(r.Sell))
		if r.Change != nil {
			fmt.Fprintf(b, ", change %s", *r.Change)
		}
		b.WriteString("\n")
	}
}

func formatPrice(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *p)
}
