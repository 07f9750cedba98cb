package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// blockTags start and end a line, like they do in a rendered page.
var blockTags = map[string]struct{}{
	"address": {}, "article": {}, "aside": {}, "blockquote": {}, "dd": {},
	"div": {}, "dl": {}, "dt": {}, "figure": {}, "footer": {}, "form": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"header": {}, "hr": {}, "li": {}, "main": {}, "nav": {}, "ol": {},
	"p": {}, "pre": {}, "section": {}, "table": {}, "tbody": {}, "thead": {},
	"tfoot": {}, "tr": {}, "ul": {},
}

// hiddenTags never contribute visible text.
var hiddenTags = map[string]struct{}{
	"head": {}, "noscript": {}, "script": {}, "style": {}, "template": {},
}

// VisibleText approximates the browser's innerText for a selection of a
// static snapshot: block elements and <br> break lines, table cells are
// separated by a space, whitespace inside a line is collapsed and empty lines
// are dropped.
func VisibleText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeVisible(&b, n)
	}
	return normalizeLines(b.String())
}

func writeVisible(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		// Source newlines are layout noise; only structure breaks lines.
		b.WriteString(strings.Map(func(r rune) rune {
			if r == '\n' || r == '\r' || r == '\t' {
				return ' '
			}
			return r
		}, n.Data))
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if _, hidden := hiddenTags[n.Data]; hidden {
			return
		}
		if n.Data == "br" {
			b.WriteByte('\n')
			return
		}
	}

	_, block := blockTags[n.Data]
	if block && n.Type == html.ElementNode {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeVisible(b, c)
	}
	if n.Type != html.ElementNode {
		return
	}
	switch {
	case block:
		b.WriteByte('\n')
	case n.Data == "td" || n.Data == "th":
		b.WriteByte(' ')
	}
}

func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
