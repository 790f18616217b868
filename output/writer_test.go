package output

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pevans/moodscrape/article"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleArticles() []article.Article {
	first := article.NewArticle("https://site.example/2023/05/01/headline-slug")
	first.Title = "Example Headline"
	first.Content = "Paragraph one.\nParagraph two."
	first.Reactions.Add("Happy", 12)
	first.Reactions.Add("Sad", 3)

	second := article.NewArticle("https://site.example/2023/05/02/other-slug")
	second.Title = "Q&A: <Markets>"

	return []article.Article{first, second}
}

// TestWrite_RoundTrip verifies re-reading yields the same articles in order
func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.json")
	articles := sampleArticles()

	require.NoError(t, Write(articles, path))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, articles, got)
}

// TestWrite_Format verifies the indented layout and unescaped HTML characters
func TestWrite_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.json")
	require.NoError(t, Write(sampleArticles()[:1], path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := `[
  {
    "url": "https://site.example/2023/05/01/headline-slug",
    "title": "Example Headline",
    "content": "Paragraph one.\nParagraph two.",
    "reactions": {
      "happy": 12,
      "sad": 3
    }
  }
]
`
	assert.Equal(t, want, string(data))

	require.NoError(t, Write(sampleArticles()[1:], path))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "Q&A: <Markets>"`)
	assert.Contains(t, string(data), `"reactions": {}`)
}

// TestWrite_Empty verifies an empty collection writes []
func TestWrite_Empty(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Write([]article.Article{}, filepath.Join(dir, "empty.json")))
	data, err := os.ReadFile(filepath.Join(dir, "empty.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	require.NoError(t, Write(nil, filepath.Join(dir, "nil.json")))
	data, err = os.ReadFile(filepath.Join(dir, "nil.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

// TestWrite_Overwrites verifies an existing file is replaced
func TestWrite_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.json")
	require.NoError(t, os.WriteFile(path, []byte("old contents that are longer than []"), 0o644))

	require.NoError(t, Write(nil, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

// TestWrite_MissingDirectory verifies a PersistenceError for a bad parent
func TestWrite_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "articles.json")

	err := Write(sampleArticles(), path)
	require.Error(t, err)

	var persistErr *PersistenceError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, path, persistErr.Path)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

// TestWrite_LeavesNoTempFiles verifies only the destination remains
func TestWrite_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(sampleArticles(), filepath.Join(dir, "articles.json")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "articles.json", entries[0].Name())
}

// TestWriteAtomic_FailureKeepsDestination verifies a failed write leaves the
// previous file and no temp file behind
func TestWriteAtomic_FailureKeepsDestination(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "articles.json")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	err := writeAtomic(path, func(w io.Writer) error {
		if _, err := w.Write([]byte("partial")); err != nil {
			return err
		}
		return errors.New("boom")
	})

	var persistErr *PersistenceError
	require.True(t, errors.As(err, &persistErr))

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "previous", string(data))

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Len(t, entries, 1)
}

// TestWriteURLs verifies one URL per line
func TestWriteURLs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, WriteURLs([]string{"https://site.example/a", "https://site.example/b"}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://site.example/a\nhttps://site.example/b\n", string(data))
}

// TestRead_Invalid verifies malformed files are reported
func TestRead_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Read(path)
	assert.Error(t, err)
}
