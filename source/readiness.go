package source

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/use-agent/pricewatch/extract"
)

// ReadinessSelector lists the elements whose text is checked for prices.
const ReadinessSelector = `td, .price, [class*="fiyat"]`

// ReadinessJS is the in-page predicate polled by the browser provider. It
// mirrors Ready so both providers agree on when data has arrived.
const ReadinessJS = `() => {
	const els = document.querySelectorAll('td, .price, [class*="fiyat"]');
	for (const el of els) {
		if (el.innerText && /\d{3,}/.test(el.innerText)) {
			return true;
		}
	}
	return false;
}`

var (
	readinessMatcher = cascadia.MustCompile(ReadinessSelector)
	digitRun         = regexp.MustCompile(`\d{3,}`)
)

// Ready reports whether any price-bearing element in doc already contains a
// run of at least three digits.
func Ready(doc *goquery.Document) bool {
	ready := false
	doc.FindMatcher(readinessMatcher).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if digitRun.MatchString(extract.VisibleText(s)) {
			ready = true
			return false
		}
		return true
	})
	return ready
}
