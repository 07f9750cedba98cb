// Package layout detects structural changes in the scraped page.
//
// The extractors rely on the page's table rows and price cards. When the
// site is redesigned they silently return fewer records, so each snapshot's
// tag structure is fingerprinted and compared with the previous one.
package layout

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const shingleSize = 3

// Fingerprint computes a SimHash of doc's element structure. Only tag names
// and the first class of each element count, so price updates leave the
// fingerprint unchanged.
func Fingerprint(doc *goquery.Document) uint64 {
	var tags []string
	for _, body := range doc.Find("body").Nodes {
		for c := body.FirstChild; c != nil; c = c.NextSibling {
			collectTags(c, &tags)
		}
	}

	shingles := makeShingles(tags, shingleSize)
	if len(shingles) == 0 {
		return simhash(tags)
	}
	return simhash(shingles)
}

func collectTags(n *html.Node, tags *[]string) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
		*tags = append(*tags, tagToken(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectTags(c, tags)
	}
}

func tagToken(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "class" {
			if fields := strings.Fields(a.Val); len(fields) > 0 {
				return n.Data + "." + fields[0]
			}
		}
	}
	return n.Data
}

// makeShingles creates n-gram shingles from a slice of tokens.
func makeShingles(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}

	shingles := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+n], "_"))
	}
	return shingles
}
