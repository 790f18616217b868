package article

import (
	"encoding/json"
	"sort"
	"strings"
)

// Article is a single scraped news article. An Article is built once by the
// extractor and treated as a value afterwards.
type Article struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Reactions Reactions `json:"reactions"`
}

// NewArticle returns an Article for the given URL with an empty (non-nil)
// reactions map.
func NewArticle(url string) Article {
	return Article{
		URL:       url,
		Reactions: Reactions{},
	}
}

// IsComplete reports whether every extracted field has a value.
func (a Article) IsComplete() bool {
	return a.Title != "" && a.Content != "" && len(a.Reactions) > 0
}

// Reactions maps a normalized reaction label to its count. encoding/json
// writes map keys in sorted order, so output is stable across runs.
type Reactions map[string]int

// MarshalJSON keeps an empty or nil Reactions as {} rather than null.
func (r Reactions) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(plainReactions(r))
}

// plainReactions drops the MarshalJSON method so the map can be encoded with
// the default rules.
type plainReactions map[string]int

// Add records count under the normalized form of label. Counts for labels
// that normalize to the same key are summed. Empty labels and negative counts
// are ignored.
func (r Reactions) Add(label string, count int) {
	key := NormalizeLabel(label)
	if key == "" || count < 0 {
		return
	}
	r[key] += count
}

// Labels returns the reaction labels in sorted order.
func (r Reactions) Labels() []string {
	labels := make([]string, 0, len(r))
	for label := range r {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// NormalizeLabel trims and lowercases a reaction label and collapses inner
// whitespace to single spaces.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}
