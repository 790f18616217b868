package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/pevans/moodscrape/fetch"
	"github.com/pevans/moodscrape/logger"
	"github.com/pevans/moodscrape/scraper"
	"gopkg.in/yaml.v3"
)

// FileName is the config file name looked up in the config directory and
// the working directory.
const FileName = "moodscrape.yaml"

// DefaultOutputPath is where articles are written when nothing else is set.
const DefaultOutputPath = "articles.json"

// Config represents the structure of moodscrape.yaml.
type Config struct {
	Sitemap SitemapConfig         `yaml:"sitemap"`
	Article scraper.ArticleConfig `yaml:"article"`
	HTTP    HTTPConfig            `yaml:"http"`
	Run     RunConfig             `yaml:"run"`
	History HistoryConfig         `yaml:"history"`
	Logging logger.Config         `yaml:"logging"`
}

// SitemapConfig names the index to discover from and how to filter it.
type SitemapConfig struct {
	Location              string `yaml:"location"`
	scraper.SitemapConfig `yaml:",inline"`
}

// HTTPConfig controls page fetching.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// RunConfig holds per-run settings.
type RunConfig struct {
	// Limit caps the number of articles; 0 means unbounded.
	Limit int `yaml:"limit"`
	// Output is the destination file for the articles.
	Output string `yaml:"output"`
	// URLsFile, when set, replaces discovery with a saved URL list.
	URLsFile string `yaml:"urls_file"`
	// SaveURLs, when set, writes the discovered URLs to this file.
	SaveURLs string `yaml:"save_urls"`
}

// HistoryConfig points at the run history database. An empty DSN disables
// history.
type HistoryConfig struct {
	DSN string `yaml:"dsn"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sitemap: SitemapConfig{
			SitemapConfig: scraper.NewSitemapConfig(),
		},
		Article: scraper.NewArticleConfig(),
		HTTP: HTTPConfig{
			Timeout:   fetch.DefaultTimeout,
			UserAgent: fetch.DefaultUserAgent,
		},
		Run: RunConfig{
			Output: DefaultOutputPath,
		},
		Logging: logger.Config{
			Level:  logger.DefaultLevel,
			Format: logger.DefaultFormat,
		},
	}
}

// ConfigDir returns the XDG config directory for moodscrape.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "moodscrape")
}

// ResolveConfigPath finds the config file following priority: explicit path
// > ~/.config/moodscrape/moodscrape.yaml > ./moodscrape.yaml. It returns ""
// (not an error) when no file exists and none was requested.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, candidate := range []string{filepath.Join(ConfigDir(), FileName), FileName} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", nil
}

// Load reads the config file at path on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return parse(data)
}

func parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.Article = cfg.Article.WithDefaults()
	return cfg, nil
}

// ApplyEnv overrides settings from MOODSCRAPE_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("MOODSCRAPE_SITEMAP"); v != "" {
		c.Sitemap.Location = v
	}
	if v := getenv("MOODSCRAPE_OUTPUT"); v != "" {
		c.Run.Output = v
	}
	if v := getenv("MOODSCRAPE_HISTORY_DSN"); v != "" {
		c.History.DSN = v
	}
	if v := getenv("MOODSCRAPE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	var errs []error

	if c.Sitemap.Location == "" && c.Run.URLsFile == "" {
		errs = append(errs, errors.New("sitemap location is required (or a URLs file)"))
	}
	if c.Run.Output == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	if c.Run.Limit < 0 {
		errs = append(errs, fmt.Errorf("limit must be a positive integer, got %d", c.Run.Limit))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("http timeout must be positive, got %s", c.HTTP.Timeout))
	}
	for _, p := range c.Sitemap.ArticlePatterns {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("invalid article pattern %q: %w", p, err))
		}
	}
	if fb := c.Article.ContentFallback; fb != "" && fb != scraper.ContentFallbackReadability {
		errs = append(errs, fmt.Errorf("unknown content fallback %q", fb))
	}

	return errors.Join(errs...)
}
