package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/use-agent/pricewatch/models"
)

// cardSelector matches the card/grid containers some layouts use instead of
// tables.
var cardSelector = cascadia.MustCompile(`[class*="price"], [class*="card"], [class*="item"]`)

// numberToken is a digit run that may carry '.' or ',' separators.
var numberToken = regexp.MustCompile(`\d[\d.,]*`)

// ExtractCards scans card-like containers. The first visible line is the
// name, the first two numeric tokens of the whole text are buy and sell.
// Change is never read from cards.
func ExtractCards(doc *goquery.Document) []models.RawEntry {
	var entries []models.RawEntry

	doc.FindMatcher(cardSelector).Each(func(_ int, card *goquery.Selection) {
		text := VisibleText(card)
		if text == "" {
			return
		}

		lines := strings.Split(text, "\n")
		if len(lines) < 2 {
			return
		}

		tokens := numberToken.FindAllString(text, 2)
		if len(tokens) == 0 {
			return
		}

		entry := models.RawEntry{
			Name:   lines[0],
			BuyRaw: &tokens[0],
		}
		if len(tokens) > 1 {
			entry.SellRaw = &tokens[1]
		}
		entries = append(entries, entry)
	})

	return entries
}
