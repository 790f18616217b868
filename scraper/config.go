package scraper

// SitemapConfig defines how article URLs are discovered from a sitemap or
// index page.
type SitemapConfig struct {
	// ChildFilter keeps only child sitemaps of a sitemap index whose URL
	// contains this substring. Empty keeps every child.
	ChildFilter string `yaml:"child_filter"`
	// ArticlePatterns are regular expressions an article URL must match. When
	// empty the built-in article URL heuristics apply.
	ArticlePatterns []string `yaml:"article_patterns"`
}

// ArticleConfig defines how to extract fields from individual article pages.
// Every selector is a CSS selector.
type ArticleConfig struct {
	TitleSelector     string `yaml:"title_selector"`
	ContentSelector   string `yaml:"content_selector"`
	ParagraphSelector string `yaml:"paragraph_selector"`

	// ReactionSelector locates the reaction widget container. Labels and
	// counts are searched for inside it and paired in document order.
	ReactionSelector      string `yaml:"reaction_selector"`
	ReactionLabelSelector string `yaml:"reaction_label_selector"`
	ReactionCountSelector string `yaml:"reaction_count_selector"`

	// ContentFallback is "" (none) or "readability".
	ContentFallback string `yaml:"content_fallback"`
}

// ContentFallbackReadability selects readability extraction when the content
// container yields no paragraphs.
const ContentFallbackReadability = "readability"

// DefaultChildFilter matches the post sitemaps of WordPress-style sitemap
// indexes.
const DefaultChildFilter = "post-sitemap"

// NewSitemapConfig creates a sitemap configuration with default values.
func NewSitemapConfig() SitemapConfig {
	return SitemapConfig{
		ChildFilter: DefaultChildFilter,
	}
}

// NewArticleConfig creates an article configuration with default values.
func NewArticleConfig() ArticleConfig {
	return ArticleConfig{
		TitleSelector:         "h1.post-single__title, article h1",
		ContentSelector:       "div.post-single__content, article",
		ParagraphSelector:     "p",
		ReactionSelector:      `div[class*="xa3V2iPvKCrXH2KVimTv-g=="], .moodmeter, .reactions`,
		ReactionLabelSelector: "h4",
		ReactionCountSelector: "span",
	}
}

// WithDefaults returns a copy of c with empty selectors replaced by the
// defaults from NewArticleConfig.
func (c ArticleConfig) WithDefaults() ArticleConfig {
	d := NewArticleConfig()
	if c.TitleSelector == "" {
		c.TitleSelector = d.TitleSelector
	}
	if c.ContentSelector == "" {
		c.ContentSelector = d.ContentSelector
	}
	if c.ParagraphSelector == "" {
		c.ParagraphSelector = d.ParagraphSelector
	}
	if c.ReactionSelector == "" {
		c.ReactionSelector = d.ReactionSelector
	}
	if c.ReactionLabelSelector == "" {
		c.ReactionLabelSelector = d.ReactionLabelSelector
	}
	if c.ReactionCountSelector == "" {
		c.ReactionCountSelector = d.ReactionCountSelector
	}
	return c
}
