// Package extract pulls the title, body text and reaction counts out of
// article pages.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/pevans/moodscrape/article"
	"github.com/pevans/moodscrape/fetch"
	"github.com/pevans/moodscrape/logger"
	"github.com/pevans/moodscrape/scraper"
)

// ExtractionError reports that a single article page could not be fetched
// or parsed. It only affects that article.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor fetches article pages and extracts their fields. It holds no
// per-article state and is safe for concurrent use.
type Extractor struct {
	client *fetch.Client
	config scraper.ArticleConfig
	log    logger.Logger
}

// NewExtractor creates an extractor. Empty selectors in config take their
// default values.
func NewExtractor(client *fetch.Client, config scraper.ArticleConfig, log logger.Logger) *Extractor {
	return &Extractor{
		client: client,
		config: config.WithDefaults(),
		log:    log,
	}
}

// Extract fetches the page at url and extracts an Article from it. The
// returned Article always carries url, even alongside an error. Missing
// title, content or reaction markup yields empty fields, not an error.
func (e *Extractor) Extract(ctx context.Context, url string) (article.Article, error) {
	page, err := e.client.Get(ctx, url)
	if err != nil {
		return article.NewArticle(url), &ExtractionError{URL: url, Err: err}
	}

	doc, err := page.Document()
	if err != nil {
		return article.NewArticle(url), &ExtractionError{URL: url, Err: err}
	}

	a := ExtractArticle(doc, e.config, url)

	if a.Content == "" && e.config.ContentFallback == scraper.ContentFallbackReadability {
		a.Content = readabilityContent(page)
		if a.Content != "" {
			e.log.Debug("Used readability fallback for content", logger.String("url", url))
		}
	}

	return a, nil
}

// ExtractArticle extracts article fields from an already parsed document
// using the given selectors.
func ExtractArticle(doc *goquery.Document, config scraper.ArticleConfig, articleURL string) article.Article {
	a := article.NewArticle(articleURL)

	// Normalize whitespace: replace runs of spaces/newlines with one space
	a.Title = strings.Join(strings.Fields(firstMatch(doc, config.TitleSelector).Text()), " ")

	a.Content = extractContent(doc, config)
	extractReactions(doc, config, a.Reactions)

	return a
}

// extractContent joins the trimmed, non-empty paragraphs of the content
// container with newlines.
func extractContent(doc *goquery.Document, config scraper.ArticleConfig) string {
	container := firstMatch(doc, config.ContentSelector)
	if container.Length() == 0 {
		return ""
	}

	var paragraphs []string
	container.Find(config.ParagraphSelector).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	return strings.Join(paragraphs, "\n")
}

// extractReactions pairs the widget's labels with its numeric counters in
// document order. Counters whose text is not a number are skipped.
func extractReactions(doc *goquery.Document, config scraper.ArticleConfig, reactions article.Reactions) {
	widget := firstMatch(doc, config.ReactionSelector)
	if widget.Length() == 0 {
		return
	}

	var labels []string
	widget.Find(config.ReactionLabelSelector).Each(func(_ int, s *goquery.Selection) {
		labels = append(labels, s.Text())
	})

	var counts []int
	widget.Find(config.ReactionCountSelector).Each(func(_ int, s *goquery.Selection) {
		if n, ok := parseCount(s.Text()); ok {
			counts = append(counts, n)
		}
	})

	for i := 0; i < len(labels) && i < len(counts); i++ {
		reactions.Add(labels[i], counts[i])
	}
}

// parseCount reads a counter such as "12", "1,204" or "37%". Decimal values
// are rounded to the nearest integer.
func parseCount(text string) (int, bool) {
	s := strings.NewReplacer("%", "", ",", "", " ", "", "\u00a0", "").Replace(strings.TrimSpace(text))
	if s == "" {
		return 0, false
	}

	if n, err := strconv.Atoi(s); err == nil {
		return n, n >= 0
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Round(f)), true
}

// readabilityContent returns the readable text of the page as trimmed,
// non-empty lines joined with newlines.
func readabilityContent(page *fetch.Page) string {
	parsed, err := readability.FromReader(bytes.NewReader(page.Body), page.URL)
	if err != nil {
		return ""
	}

	var lines []string
	for _, line := range strings.Split(parsed.TextContent, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
