package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pevans/moodscrape/logger"
	"github.com/pevans/moodscrape/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: write a config file into a temp dir
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, DefaultOutputPath, cfg.Run.Output)
	assert.Equal(t, "post-sitemap", cfg.Sitemap.ChildFilter)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `sitemap:
  location: "https://www.rappler.com/sitemap_index.xml"
  child_filter: ""
  article_patterns:
    - "^https://www\\.rappler\\.com/.+/.+"
article:
  title_selector: "h2.headline"
  content_fallback: readability
http:
  timeout: 5s
  user_agent: "test-agent"
run:
  limit: 25
  output: "/tmp/out.json"
  save_urls: "/tmp/urls.txt"
history:
  dsn: "/tmp/history.db"
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://www.rappler.com/sitemap_index.xml", cfg.Sitemap.Location)
	assert.Equal(t, "", cfg.Sitemap.ChildFilter, "explicit empty filter keeps every child")
	assert.Equal(t, []string{`^https://www\.rappler\.com/.+/.+`}, cfg.Sitemap.ArticlePatterns)
	assert.Equal(t, "h2.headline", cfg.Article.TitleSelector)
	assert.Equal(t, scraper.NewArticleConfig().ContentSelector, cfg.Article.ContentSelector, "unset selectors keep defaults")
	assert.Equal(t, scraper.ContentFallbackReadability, cfg.Article.ContentFallback)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "test-agent", cfg.HTTP.UserAgent)
	assert.Equal(t, 25, cfg.Run.Limit)
	assert.Equal(t, "/tmp/out.json", cfg.Run.Output)
	assert.Equal(t, "/tmp/urls.txt", cfg.Run.SaveURLs)
	assert.Equal(t, "/tmp/history.db", cfg.History.DSN)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PartialConfig(t *testing.T) {
	path := writeConfig(t, `run:
  limit: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Run.Limit)
	assert.Equal(t, DefaultOutputPath, cfg.Run.Output, "unspecified output keeps the default")
	assert.Equal(t, "post-sitemap", cfg.Sitemap.ChildFilter)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `run:
  - this is invalid yaml because run should be an object not a list
`)

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestResolveConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	path, err := ResolveConfigPath("")
	require.NoError(t, err)
	assert.Equal(t, "", path, "no file is not an error")

	_, err = ResolveConfigPath(filepath.Join(tmpDir, "missing.yaml"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(FileName, []byte("run: {limit: 1}\n"), 0o600))
	path, err = ResolveConfigPath("")
	require.NoError(t, err)
	assert.Equal(t, FileName, path)

	xdg := filepath.Join(tmpDir, ".config", "moodscrape")
	require.NoError(t, os.MkdirAll(xdg, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(xdg, FileName), []byte("run: {limit: 2}\n"), 0o600))
	path, err = ResolveConfigPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, FileName), path, "config dir wins over working directory")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"MOODSCRAPE_SITEMAP":     "https://site.example/sitemap.xml",
		"MOODSCRAPE_HISTORY_DSN": "runs.db",
		"MOODSCRAPE_LOG_LEVEL":   "warn",
	}

	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "https://site.example/sitemap.xml", cfg.Sitemap.Location)
	assert.Equal(t, "runs.db", cfg.History.DSN)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, DefaultOutputPath, cfg.Run.Output, "unset variables change nothing")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sitemap location is required")

	cfg.Run.URLsFile = "urls.txt"
	assert.NoError(t, cfg.Validate(), "a URLs file replaces the sitemap")

	cfg = Default()
	cfg.Sitemap.Location = "https://site.example/sitemap.xml"
	cfg.Run.Limit = -1
	cfg.Run.Output = ""
	cfg.HTTP.Timeout = 0
	cfg.Sitemap.ArticlePatterns = []string{"("}
	cfg.Article.ContentFallback = "magic"

	err = cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"limit", "output path", "timeout", "article pattern", "content fallback"} {
		assert.Contains(t, err.Error(), want)
	}
}

// TestDefault_LoggingFormat verifies the built-in logging format matches the
// logger's own default
func TestDefault_LoggingFormat(t *testing.T) {
	cfg := Default()

	assert.Equal(t, logger.DefaultFormat, cfg.Logging.Format)
	assert.Equal(t, "json", cfg.Logging.Format)
}
