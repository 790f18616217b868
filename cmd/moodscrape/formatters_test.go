package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/moodscrape/article"
	"github.com/pevans/moodscrape/config"
	"github.com/pevans/moodscrape/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleArticles() []article.Article {
	return []article.Article{
		{
			URL:       "https://site.example/a",
			Title:     "A",
			Content:   "Body A",
			Reactions: article.Reactions{"happy": 10, "sad": 2},
		},
		{
			URL:       "https://site.example/b",
			Title:     "B",
			Content:   "Body B",
			Reactions: article.Reactions{"happy": 5, "angry": 40},
		},
		{
			URL:       "https://site.example/c",
			Reactions: article.Reactions{},
		},
	}
}

// TestSummarize verifies per-label totals and completeness counts
func TestSummarize(t *testing.T) {
	s := summarize(sampleArticles())

	assert.Equal(t, 3, s.Articles)
	assert.Equal(t, 2, s.WithTitle)
	assert.Equal(t, 2, s.WithContent)
	assert.Equal(t, 2, s.WithReactions)
	assert.Equal(t, 1, s.Incomplete)
	assert.Equal(t, map[string]int{"happy": 15, "sad": 2, "angry": 40}, s.Totals)
	assert.Equal(t, map[string]int{"happy": 2, "sad": 1, "angry": 1}, s.Counts)
	assert.Equal(t, []string{"angry", "happy", "sad"}, s.labels(), "should order by descending total")
}

// TestRenderStats verifies the summary and reaction table are printed
func TestRenderStats(t *testing.T) {
	var buf bytes.Buffer

	renderStats(&buf, "articles.json", summarize(sampleArticles()))

	out := buf.String()
	assert.Contains(t, out, "Articles: 3")
	assert.Contains(t, out, "angry")
	assert.Contains(t, out, "57", "should print the grand total")
}

// TestRenderRuns verifies the empty message and table rows
func TestRenderRuns(t *testing.T) {
	var empty bytes.Buffer
	renderRuns(&empty, nil)
	assert.Equal(t, "No runs recorded.\n", empty.String())

	id := uuid.New()
	var buf bytes.Buffer
	renderRuns(&buf, []history.Run{{
		RunID:      id,
		Location:   "https://site.example/sitemap_index.xml",
		StartedAt:  time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Discovered: 5,
		Extracted:  4,
		Failed:     1,
		Status:     history.StatusSucceeded,
	}})
	assert.Contains(t, buf.String(), id.String()[:8])
	assert.Contains(t, buf.String(), history.StatusSucceeded)
}

// TestRenderRunDetail verifies the fatal error and failures are shown
func TestRenderRunDetail(t *testing.T) {
	msg := "failed to fetch index"
	run := &history.Run{RunID: uuid.New(), Status: history.StatusFailed, Error: &msg}
	var buf bytes.Buffer

	renderRunDetail(&buf, run, []history.Failure{{URL: "https://site.example/x", Error: "HTTP error: 404 Not Found"}})

	assert.Contains(t, buf.String(), msg)
	assert.Contains(t, buf.String(), "https://site.example/x")
}

// TestTruncate verifies strings are cut on rune boundaries
func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ñañ...", truncate("ñañañañaña", 6))
}

// TestApplyRunFlags_RejectsNonPositiveLimit verifies an explicit -m 0 fails
func TestApplyRunFlags_RejectsNonPositiveLimit(t *testing.T) {
	flag := runCmd.Flags().Lookup("max-articles")
	t.Cleanup(func() {
		flag.Changed = false
		runLimit = 0
	})

	require.NoError(t, runCmd.Flags().Set("max-articles", "0"))
	err := applyRunFlags(runCmd, config.Default())
	assert.Error(t, err)

	require.NoError(t, runCmd.Flags().Set("max-articles", "7"))
	c := config.Default()
	require.NoError(t, applyRunFlags(runCmd, c))
	assert.Equal(t, 7, c.Run.Limit)
}
