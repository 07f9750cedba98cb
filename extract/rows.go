package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/pricewatch/models"
)

// ExtractRows walks every table row in document order and emits one raw
// entry per row with at least two cells:
//
//	td[0] name | td[1] buy | td[2] sell | td[3] change
//
// Nothing is parsed here; the Aggregator drops rows without a name or price.
func ExtractRows(doc *goquery.Document) []models.RawEntry {
	var entries []models.RawEntry

	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return
		}

		texts := make([]string, cells.Length())
		cells.Each(func(i int, td *goquery.Selection) {
			texts[i] = strings.TrimSpace(VisibleText(td))
		})

		entry := models.RawEntry{
			Name:   texts[0],
			BuyRaw: &texts[1],
		}
		if len(texts) > 2 {
			entry.SellRaw = &texts[2]
		}
		if len(texts) > 3 && texts[3] != "" {
			entry.ChangeRaw = &texts[3]
		}
		entries = append(entries, entry)
	})

	return entries
}
