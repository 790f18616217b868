package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// firstMatch returns the first element matched by selector. A selector group
// such as "h1.title, article h1" is tried one alternative at a time, so
// earlier alternatives take priority over document order.
func firstMatch(doc *goquery.Document, selector string) *goquery.Selection {
	for _, alt := range splitSelectorGroup(selector) {
		if s := doc.Find(alt).First(); s.Length() > 0 {
			return s
		}
	}
	return doc.Find(selector).First()
}

// splitSelectorGroup splits a CSS selector group on commas that are not
// nested inside brackets, parentheses or quotes.
func splitSelectorGroup(selector string) []string {
	var (
		parts []string
		depth int
		quote rune
		start int
	)

	for i, r := range selector {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(' || r == '[':
			depth++
		case r == ')' || r == ']':
			depth--
		case r == ',' && depth == 0:
			parts = appendTrimmed(parts, selector[start:i])
			start = i + 1
		}
	}

	return appendTrimmed(parts, selector[start:])
}

func appendTrimmed(parts []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		parts = append(parts, s)
	}
	return parts
}
