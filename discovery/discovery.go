// Package discovery enumerates article URLs from a site's sitemap, feed or
// index page.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/moodscrape/fetch"
	"github.com/pevans/moodscrape/logger"
	"github.com/pevans/moodscrape/scraper"
)

// Sentinel causes carried by DiscoveryError.
var (
	ErrEmptyLocation = errors.New("sitemap location is empty")
	ErrInvalidLimit  = errors.New("limit must be a positive integer")
	ErrNoArticles    = errors.New("no article URLs found")
)

// DiscoveryError reports that article URLs could not be enumerated. It is
// fatal to a run.
type DiscoveryError struct {
	Location string
	Err      error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery failed for %q: %v", e.Location, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// Discoverer reads an index page and returns the article URLs it lists.
type Discoverer struct {
	client      *fetch.Client
	childFilter string
	patterns    []*regexp.Regexp
	log         logger.Logger
}

// NewDiscoverer creates a discoverer. It fails if an article pattern is not
// a valid regular expression.
func NewDiscoverer(client *fetch.Client, config scraper.SitemapConfig, log logger.Logger) (*Discoverer, error) {
	patterns := make([]*regexp.Regexp, 0, len(config.ArticlePatterns))
	for _, p := range config.ArticlePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid article pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}

	return &Discoverer{
		client:      client,
		childFilter: config.ChildFilter,
		patterns:    patterns,
		log:         log,
	}, nil
}

// Discover fetches the index at location and returns its article URLs in
// document order without duplicates. A positive limit keeps only the first
// limit URLs; zero means unbounded.
func (d *Discoverer) Discover(ctx context.Context, location string, limit int) ([]string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, &DiscoveryError{Location: location, Err: ErrEmptyLocation}
	}
	if limit < 0 {
		return nil, &DiscoveryError{Location: location, Err: ErrInvalidLimit}
	}

	d.log.Info("Fetching index", logger.String("location", location))

	page, err := d.client.Get(ctx, location)
	if err != nil {
		return nil, &DiscoveryError{Location: location, Err: fmt.Errorf("failed to fetch index: %w", err)}
	}

	c := newCollector(limit, newURLMatcher(page.URL, d.patterns))

	kind := classify(page.Body)
	d.log.Debug("Classified index", logger.String("location", location), logger.String("kind", kind.String()))

	switch kind {
	case kindSitemapIndex:
		err = d.collectSitemapIndex(ctx, page.Body, c)
	case kindURLSet:
		err = collectURLSet(page.Body, c)
	case kindFeed:
		err = collectFeed(page.Body, c)
	default:
		err = collectAnchors(page, c)
	}
	if err != nil {
		return nil, &DiscoveryError{Location: location, Err: err}
	}

	if len(c.urls) == 0 {
		return nil, &DiscoveryError{Location: location, Err: ErrNoArticles}
	}

	d.log.Info("Discovered article URLs", logger.String("location", location), logger.Int("count", len(c.urls)))
	return c.urls, nil
}

// collectSitemapIndex walks the child sitemaps in order until the limit is
// reached. A child that cannot be fetched or parsed is skipped.
func (d *Discoverer) collectSitemapIndex(ctx context.Context, body []byte, c *collector) error {
	children, err := parseSitemapIndex(body, d.childFilter)
	if err != nil {
		return err
	}
	d.log.Debug("Filtered child sitemaps",
		logger.String("filter", d.childFilter),
		logger.Strings("sitemaps", children),
	)

	for _, child := range children {
		if c.full() {
			break
		}

		d.log.Info("Fetching child sitemap", logger.String("sitemap", child))
		page, err := d.client.Get(ctx, child)
		if err != nil {
			d.log.Warn("Skipping child sitemap", logger.String("sitemap", child), logger.Error(err))
			continue
		}

		if err := collectURLSet(page.Body, c); err != nil {
			d.log.Warn("Skipping child sitemap", logger.String("sitemap", child), logger.Error(err))
			continue
		}
	}

	return nil
}

func collectURLSet(body []byte, c *collector) error {
	locs, err := parseURLSet(body)
	if err != nil {
		return err
	}
	for _, loc := range locs {
		c.add(loc, nil, true)
	}
	return nil
}

func collectFeed(body []byte, c *collector) error {
	links, err := parseFeed(body)
	if err != nil {
		return err
	}
	for _, link := range links {
		c.add(link, nil, true)
	}
	return nil
}

func collectAnchors(page *fetch.Page, c *collector) error {
	doc, err := page.Document()
	if err != nil {
		return err
	}

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		c.add(href, page.URL, false)
		return !c.full()
	})
	return nil
}

// collector accumulates unique matching URLs up to a limit.
type collector struct {
	limit   int
	matcher urlMatcher
	seen    map[string]struct{}
	urls    []string
}

func newCollector(limit int, matcher urlMatcher) *collector {
	return &collector{
		limit:   limit,
		matcher: matcher,
		seen:    make(map[string]struct{}),
	}
}

func (c *collector) full() bool {
	return c.limit > 0 && len(c.urls) >= c.limit
}

func (c *collector) add(raw string, base *url.URL, listed bool) {
	if c.full() {
		return
	}

	u, ok := normalizeURL(raw, base)
	if !ok || !c.matcher.match(u, listed) {
		return
	}

	key := u.String()
	if _, dup := c.seen[key]; dup {
		return
	}
	c.seen[key] = struct{}{}
	c.urls = append(c.urls, key)
}
