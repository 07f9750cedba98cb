package extract

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/pricewatch/models"
)

// Extract runs both extractors over doc and aggregates their output.
func Extract(doc *goquery.Document, capturedAt time.Time) *models.ResultSet {
	return Aggregate(ExtractRows(doc), ExtractCards(doc), capturedAt)
}

// Aggregate validates, classifies and deduplicates raw entries into a
// ResultSet. Rows are processed first so a table entry always wins over a
// card entry with the same name.
func Aggregate(rows, cards []models.RawEntry, capturedAt time.Time) *models.ResultSet {
	b := newBuilder(capturedAt)

	for _, e := range rows {
		if e.Name == "" {
			continue
		}
		buy, sell := ParsePriceRaw(e.BuyRaw), ParsePriceRaw(e.SellRaw)
		if buy == nil && sell == nil {
			continue
		}
		c, ok := Classify(e.Name, buy)
		if !ok {
			continue
		}
		b.add(c, models.PriceRecord{Name: e.Name, Buy: buy, Sell: sell, Change: e.ChangeRaw})
	}

	for _, e := range cards {
		if e.Name == "" ||
			b.has(models.CategoryGold, e.Name) ||
			b.has(models.CategoryCurrency, e.Name) ||
			b.has(models.CategorySilver, e.Name) {
			continue
		}
		buy, sell := ParsePriceRaw(e.BuyRaw), ParsePriceRaw(e.SellRaw)
		if buy == nil && sell == nil {
			continue
		}
		c, ok := ClassifyCard(e.Name)
		if !ok {
			continue
		}
		b.add(c, models.PriceRecord{Name: e.Name, Buy: buy, Sell: sell})
	}

	return b.rs
}

type builder struct {
	rs   *models.ResultSet
	seen map[models.Category]map[string]struct{}
}

func newBuilder(capturedAt time.Time) *builder {
	seen := make(map[models.Category]map[string]struct{}, len(models.Categories))
	for _, c := range models.Categories {
		seen[c] = make(map[string]struct{})
	}
	return &builder{rs: models.NewResultSet(capturedAt), seen: seen}
}

func (b *builder) has(c models.Category, name string) bool {
	_, ok := b.seen[c][name]
	return ok
}

// add appends rec unless its name is already listed under c.
func (b *builder) add(c models.Category, rec models.PriceRecord) {
	if b.has(c, rec.Name) {
		return
	}
	b.seen[c][rec.Name] = struct{}{}

	switch c {
	case models.CategoryGold:
		b.rs.Gold = append(b.rs.Gold, rec)
	case models.CategoryCurrency:
		b.rs.Currency = append(b.rs.Currency, rec)
	case models.CategorySilver:
		b.rs.Silver = append(b.rs.Silver, rec)
	case models.CategoryOther:
		b.rs.Other = append(b.rs.Other, rec)
	}
}
