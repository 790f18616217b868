package discovery

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// indexKind identifies the format of an index document.
type indexKind int

const (
	kindHTML indexKind = iota
	kindSitemapIndex
	kindURLSet
	kindFeed
)

func (k indexKind) String() string {
	switch k {
	case kindSitemapIndex:
		return "sitemapindex"
	case kindURLSet:
		return "urlset"
	case kindFeed:
		return "feed"
	default:
		return "html"
	}
}

// xmlURLSet is the root element of a standard sitemap XML file.
type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc string `xml:"loc"`
}

// xmlSitemapIndex is the root element of a sitemap index XML file.
type xmlSitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []xmlSitemap `xml:"sitemap"`
}

type xmlSitemap struct {
	Loc string `xml:"loc"`
}

// classify inspects the root element of body. Sitemap roots win, then
// anything gofeed recognizes as a feed; the rest is treated as HTML.
func classify(body []byte) indexKind {
	switch rootElement(body) {
	case "sitemapindex":
		return kindSitemapIndex
	case "urlset":
		return kindURLSet
	}

	if gofeed.DetectFeedType(bytes.NewReader(body)) != gofeed.FeedTypeUnknown {
		return kindFeed
	}

	return kindHTML
}

// rootElement returns the lowercased local name of the first element in
// body, or "" if none can be read.
func rootElement(body []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		if start, ok := tok.(xml.StartElement); ok {
			return strings.ToLower(start.Name.Local)
		}
	}
}

// parseURLSet returns the <loc> values of a sitemap in document order.
func parseURLSet(body []byte) ([]string, error) {
	var urlset xmlURLSet
	if err := xml.Unmarshal(body, &urlset); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}

	locs := make([]string, 0, len(urlset.URLs))
	for _, u := range urlset.URLs {
		locs = append(locs, strings.TrimSpace(u.Loc))
	}
	return locs, nil
}

// parseSitemapIndex returns the child sitemap URLs of a sitemap index whose
// location contains filter. An empty filter keeps every child.
func parseSitemapIndex(body []byte, filter string) ([]string, error) {
	var index xmlSitemapIndex
	if err := xml.Unmarshal(body, &index); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap index: %w", err)
	}

	children := make([]string, 0, len(index.Sitemaps))
	for _, s := range index.Sitemaps {
		loc := strings.TrimSpace(s.Loc)
		if loc == "" {
			continue
		}
		if filter != "" && !strings.Contains(loc, filter) {
			continue
		}
		children = append(children, loc)
	}
	return children, nil
}

// parseFeed returns the item links of an RSS, Atom or JSON feed.
func parseFeed(body []byte) ([]string, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	links := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		links = append(links, strings.TrimSpace(item.Link))
	}
	return links, nil
}
