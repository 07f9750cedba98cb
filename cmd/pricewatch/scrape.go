package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/pricewatch/cache"
	"github.com/use-agent/pricewatch/models"
	"github.com/use-agent/pricewatch/prices"
	"github.com/use-agent/pricewatch/source"
)

var (
	scrapeFile   string
	scrapeFilter string
	scrapeURL    string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape once and print the result as JSON",
	Example: `  pricewatch scrape --type gold
  pricewatch scrape --file saved.html`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		target := cnf.Scraper.TargetURL
		if scrapeURL != "" {
			target = scrapeURL
		}

		var provider source.Provider
		if scrapeFile != "" {
			raw, err := os.ReadFile(scrapeFile)
			if err != nil {
				return fmt.Errorf("read %s: %w", scrapeFile, err)
			}
			provider = source.NewStatic(string(raw))
			target = "file://" + scrapeFile
		} else {
			chain, sc, err := newProvider()
			if err != nil {
				return err
			}
			defer sc.Close()
			provider = chain
		}

		start := time.Now()
		svc := prices.NewService(logger, provider, cache.New(cnf.Cache.TTL, 1, nil), prices.Options{
			URL:     target,
			Timeout: cnf.Scraper.OverallTimeout,
		})
		res, err := svc.Prices(cmd.Context())
		if err != nil {
			return err
		}

		echo := scrapeFilter
		if echo == "" {
			echo = "all"
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(models.PricesResponse{
			Success: true,
			Data:    res.Data.Filter(scrapeFilter),
			Meta: &models.PricesMeta{
				Source:    cnf.Scraper.SourceLabel,
				ScrapedAt: start.UTC().Format(models.TimestampLayout),
				Duration:  fmt.Sprintf("%dms", time.Since(start).Milliseconds()),
				Filter:    echo,
				Provider:  res.Provider,
			},
		})
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeFile, "file", "", "parse a saved HTML page instead of fetching")
	scrapeCmd.Flags().StringVar(&scrapeFilter, "type", "", "category filter: gold, currency, silver, other (or altin, doviz, gumus, diger)")
	scrapeCmd.Flags().StringVar(&scrapeURL, "url", "", "override the target URL")
}
