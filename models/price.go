package models

import (
	"strings"
	"time"
)

// TimestampLayout is the layout of ResultSet.Timestamp (ISO 8601, UTC, milliseconds).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// RawEntry is an unparsed, unclassified candidate pulled out of the page.
// Nil fields mean the source structure had no such cell.
type RawEntry struct {
	Name      string
	BuyRaw    *string
	SellRaw   *string
	ChangeRaw *string
}

// PriceRecord is a validated price line. At least one of Buy/Sell is non-nil.
type PriceRecord struct {
	Name   string   `json:"name"`
	Buy    *float64 `json:"buy"`
	Sell   *float64 `json:"sell"`
	Change *string  `json:"change"`
}

// Category is the closed set of price groupings.
type Category int

const (
	CategoryGold Category = iota
	CategoryCurrency
	CategorySilver
	CategoryOther
)

// Categories lists every category in response order.
var Categories = []Category{CategoryGold, CategoryCurrency, CategorySilver, CategoryOther}

func (c Category) String() string {
	switch c {
	case CategoryGold:
		return "Gold"
	case CategoryCurrency:
		return "Currency"
	case CategorySilver:
		return "Silver"
	case CategoryOther:
		return "Other"
	default:
		return "Unknown"
	}
}

// Key is the JSON bucket name of the category.
func (c Category) Key() string {
	switch c {
	case CategoryGold:
		return "gold"
	case CategoryCurrency:
		return "currency"
	case CategorySilver:
		return "silver"
	case CategoryOther:
		return "other"
	default:
		return ""
	}
}

// categoryAliases maps accepted ?type= values to categories. The Turkish
// names are kept for clients written against the original endpoint.
var categoryAliases = map[string]Category{
	"gold":     CategoryGold,
	"altin":    CategoryGold,
	"currency": CategoryCurrency,
	"doviz":    CategoryCurrency,
	"silver":   CategorySilver,
	"gumus":    CategorySilver,
	"other":    CategoryOther,
	"diger":    CategoryOther,
	"pilesler": CategoryOther,
}

// ParseCategory resolves a filter value. ok is false for "all", empty and
// unknown values, all of which mean "no filter".
func ParseCategory(s string) (Category, bool) {
	c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// ResultSet is one scrape cycle's output. Lists are never nil.
type ResultSet struct {
	Gold      []PriceRecord `json:"gold"`
	Currency  []PriceRecord `json:"currency"`
	Silver    []PriceRecord `json:"silver"`
	Other     []PriceRecord `json:"other"`
	Timestamp string        `json:"timestamp"`
}

// NewResultSet returns an empty set stamped with capturedAt.
func NewResultSet(capturedAt time.Time) *ResultSet {
	return &ResultSet{
		Gold:      []PriceRecord{},
		Currency:  []PriceRecord{},
		Silver:    []PriceRecord{},
		Other:     []PriceRecord{},
		Timestamp: capturedAt.UTC().Format(TimestampLayout),
	}
}

// List returns the records of category c.
func (rs *ResultSet) List(c Category) []PriceRecord {
	switch c {
	case CategoryGold:
		return rs.Gold
	case CategoryCurrency:
		return rs.Currency
	case CategorySilver:
		return rs.Silver
	case CategoryOther:
		return rs.Other
	default:
		return nil
	}
}

// Total is the number of records across all categories.
func (rs *ResultSet) Total() int {
	n := 0
	for _, c := range Categories {
		n += len(rs.List(c))
	}
	return n
}

// Filter returns the JSON payload for a ?type= value: the matching bucket
// plus the timestamp, or the whole set when the value is not a category.
func (rs *ResultSet) Filter(filter string) map[string]any {
	if c, ok := ParseCategory(filter); ok {
		return map[string]any{
			c.Key():     rs.List(c),
			"timestamp": rs.Timestamp,
		}
	}
	out := make(map[string]any, len(Categories)+1)
	for _, c := range Categories {
		out[c.Key()] = rs.List(c)
	}
	out["timestamp"] = rs.Timestamp
	return out
}
