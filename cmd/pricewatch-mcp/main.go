package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("PRICEWATCH_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	c := &client{
		baseURL: apiURL,
		apiKey:  os.Getenv("PRICEWATCH_API_KEY"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}

	s := server.NewMCPServer(
		"pricewatch",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	getPricesTool := mcp.NewTool("get_prices",
		mcp.WithDescription("Get live gold, currency and silver prices from the Turkish market (buy/sell in TRY). Results are cached for about 30 seconds."),
		mcp.WithString("type",
			mcp.Description("Category to return: 'gold', 'currency', 'silver', 'other', or 'all' (default)"),
			mcp.Enum("all", "gold", "currency", "silver", "other"),
		),
	)
	s.AddTool(getPricesTool, handleGetPrices(c))

	findPriceTool := mcp.NewTool("find_price",
		mcp.WithDescription("Look up one instrument by name, e.g. 'gram altın', 'çeyrek', 'euro'. Matching is case-insensitive and substring based."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Instrument name or part of it"),
		),
	)
	s.AddTool(findPriceTool, handleFindPrice(c))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
