package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

const pricesBody = `{"success":true,"data":{"gold":[{"name":"Gram Altın","buy":2450.1,"sell":2460.2,"change":"%0,12"},{"name":"Çeyrek Altın","buy":4500,"sell":4550,"change":null}],"currency":[{"name":"EURO","buy":37.1,"sell":null,"change":null}],"timestamp":"2025-11-07T09:15:00.123Z"},"meta":{"source":"Harem Altın","scrapedAt":"2025-11-07T09:15:00.123Z","duration":"12ms","fromCache":true,"filter":"all"}}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &client{baseURL: srv.URL, apiKey: "k", http: srv.Client()}
}

func callTool(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args

	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func Test_GetPrices(t *testing.T) {
	var gotQuery, gotKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery, gotKey = r.URL.RawQuery, r.Header.Get("X-API-Key")
		_, _ = w.Write([]byte(pricesBody))
	})

	text, isErr := callTool(t, handleGetPrices(c), map[string]any{"type": "gold"})
	require.False(t, isErr)
	require.Equal(t, "type=gold", gotQuery)
	require.Equal(t, "k", gotKey)
	require.Contains(t, text, "Source: Harem Altın")
	require.Contains(t, text, "(cached)")
	require.Contains(t, text, "- Gram Altın: buy 2450.10, sell 2460.20, change %0,12")
	require.Contains(t, text, "- EURO: buy 37.10, sell n/a")

	_, _ = callTool(t, handleGetPrices(c), map[string]any{})
	require.Empty(t, gotQuery)
}

func Test_GetPricesFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"navigation to target URL failed","code":"NAVIGATION_FAILED","hint":"try later"}`))
	})

	text, isErr := callTool(t, handleGetPrices(c), nil)
	require.True(t, isErr)
	require.Equal(t, "[NAVIGATION_FAILED] navigation to target URL failed (try later)", text)
}

func Test_FindPrice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(pricesBody))
	})

	text, isErr := callTool(t, handleFindPrice(c), map[string]any{"name": "ÇEYREK"})
	require.False(t, isErr)
	require.Contains(t, text, "Çeyrek Altın")
	require.NotContains(t, text, "Gram Altın")

	text, isErr = callTool(t, handleFindPrice(c), map[string]any{"name": "euro"})
	require.False(t, isErr)
	require.Contains(t, text, "## Currency")

	_, isErr = callTool(t, handleFindPrice(c), map[string]any{"name": "platin"})
	require.True(t, isErr)

	_, isErr = callTool(t, handleFindPrice(c), map[string]any{})
	require.True(t, isErr)
}
