package discovery

import (
	"net/url"
	"regexp"
	"strings"
)

// Minimum number of hyphen-separated words for a slug to look like an
// article.
const minSlugWordCount = 4

// datePathPattern matches date-based paths like /2023/05/01/headline or
// /2023/05/headline.
var datePathPattern = regexp.MustCompile(`/\d{4}/\d{2}(/\d{2})?/[^/]+`)

// nonArticleSegments are path segments of navigation, listing and account
// pages.
var nonArticleSegments = map[string]bool{
	"about":    true,
	"account":  true,
	"author":   true,
	"category": true,
	"contact":  true,
	"feed":     true,
	"login":    true,
	"page":     true,
	"privacy":  true,
	"rss":      true,
	"search":   true,
	"section":  true,
	"signin":   true,
	"sitemap":  true,
	"tag":      true,
	"terms":    true,
	"topic":    true,
	"wp-admin": true,
}

// nonArticleExtensions are asset extensions.
var nonArticleExtensions = []string{
	".css", ".gif", ".ico", ".jpeg", ".jpg", ".js", ".json", ".mp3", ".mp4",
	".pdf", ".png", ".svg", ".webp", ".woff", ".xml", ".zip",
}

// articlePathSegments suggest an article when followed by more path.
var articlePathSegments = map[string]bool{
	"article":  true,
	"articles": true,
	"news":     true,
	"post":     true,
	"story":    true,
}

// urlMatcher decides whether a candidate URL is an article page.
type urlMatcher struct {
	// host restricts matches to one site; empty accepts any host.
	host     string
	patterns []*regexp.Regexp
	// acceptAll skips the path checks.
	acceptAll bool
}

func newURLMatcher(base *url.URL, patterns []*regexp.Regexp) urlMatcher {
	m := urlMatcher{patterns: patterns}
	if base != nil && (base.Scheme == "http" || base.Scheme == "https") {
		m.host = canonicalHost(base.Host)
	}
	return m
}

// match reports whether u is an article. Listed URLs come from a sitemap or
// feed that only enumerates posts, so the path heuristics are skipped for
// them; host and explicit patterns still apply.
func (m urlMatcher) match(u *url.URL, listed bool) bool {
	if m.host != "" && canonicalHost(u.Host) != m.host {
		return false
	}
	if m.acceptAll {
		return true
	}

	if len(m.patterns) > 0 {
		s := u.String()
		for _, p := range m.patterns {
			if p.MatchString(s) {
				return true
			}
		}
		return false
	}

	if listed {
		return true
	}
	return looksLikeArticle(u.Path)
}

func looksLikeArticle(path string) bool {
	path = strings.TrimRight(path, "/")
	if path == "" {
		return false
	}

	lower := strings.ToLower(path)
	for _, ext := range nonArticleExtensions {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}

	segments := strings.Split(strings.TrimLeft(lower, "/"), "/")
	for _, seg := range segments {
		if nonArticleSegments[seg] {
			return false
		}
	}

	if datePathPattern.MatchString(path) {
		return true
	}

	for i, seg := range segments {
		if articlePathSegments[seg] && i < len(segments)-1 {
			return true
		}
	}

	for _, seg := range segments {
		if len(strings.Split(seg, "-")) >= minSlugWordCount {
			return true
		}
	}

	return false
}

// normalizeURL resolves raw against base, drops the fragment and requires
// an absolute http(s) URL.
func normalizeURL(raw string, base *url.URL) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if u.Host == "" {
		return nil, false
	}

	u.Fragment = ""
	u.RawFragment = ""
	return u, true
}

func canonicalHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
