package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pevans/moodscrape/config"
	"github.com/pevans/moodscrape/discovery"
	"github.com/pevans/moodscrape/extract"
	"github.com/pevans/moodscrape/fetch"
	"github.com/pevans/moodscrape/history"
	"github.com/pevans/moodscrape/logger"
	"github.com/pevans/moodscrape/pipeline"
	"github.com/spf13/cobra"
)

var (
	runSitemap    string
	runLimit      int
	runOutput     string
	runURLsFile   string
	runSaveURLs   string
	runTimeout    time.Duration
	runHistoryDSN string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Discover, extract and write articles",
	Long: `Discover article URLs from a sitemap index, urlset, feed or HTML listing
page, extract each article and write the collection as a JSON array.

Articles that fail to download are logged and skipped. The command fails only
when discovery or writing the output fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyRunFlags(cmd, cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, closeFn, err := buildPipeline(cfg, log)
		if err != nil {
			return err
		}
		defer closeFn()

		result, err := p.Run(ctx, pipeline.Options{
			SitemapLocation: cfg.Sitemap.Location,
			URLsFile:        cfg.Run.URLsFile,
			Limit:           cfg.Run.Limit,
			OutputPath:      cfg.Run.Output,
			SaveURLsPath:    cfg.Run.SaveURLs,
		})
		if err != nil {
			return err
		}

		printRunSummary(result, cfg.Run.Output)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runSitemap, "sitemap", "s", "", "Sitemap, feed or listing page URL (or local path)")
	runCmd.Flags().IntVarP(&runLimit, "max-articles", "m", 0, "Maximum number of articles to scrape")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Output JSON file")
	runCmd.Flags().StringVarP(&runURLsFile, "urls-file", "f", "", "Read article URLs from a file instead of discovering them")
	runCmd.Flags().StringVarP(&runSaveURLs, "save-urls", "u", "", "Save discovered article URLs to a file")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Per-request timeout")
	runCmd.Flags().StringVar(&runHistoryDSN, "history", "", "Run history database path")
}

// applyRunFlags copies explicitly set flags over the loaded configuration.
func applyRunFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("sitemap") {
		c.Sitemap.Location = runSitemap
	}
	if flags.Changed("max-articles") {
		if runLimit <= 0 {
			return fmt.Errorf("max-articles must be a positive integer, got %d", runLimit)
		}
		c.Run.Limit = runLimit
	}
	if flags.Changed("output") {
		c.Run.Output = runOutput
	}
	if flags.Changed("urls-file") {
		c.Run.URLsFile = runURLsFile
	}
	if flags.Changed("save-urls") {
		c.Run.SaveURLs = runSaveURLs
	}
	if flags.Changed("timeout") {
		c.HTTP.Timeout = runTimeout
	}
	if flags.Changed("history") {
		c.History.DSN = runHistoryDSN
	}
	return nil
}

// buildPipeline wires the pipeline stages from configuration. The returned
// function releases the history store, if one was opened.
func buildPipeline(c *config.Config, log logger.Logger) (*pipeline.Pipeline, func(), error) {
	client := fetch.NewClient(c.HTTP.Timeout, c.HTTP.UserAgent)

	discoverer, err := discovery.NewDiscoverer(client, c.Sitemap.SitemapConfig, log)
	if err != nil {
		return nil, nil, err
	}
	extractor := extract.NewExtractor(client, c.Article, log)

	if c.History.DSN == "" {
		return pipeline.New(discoverer, extractor, nil, log), func() {}, nil
	}

	store, err := history.NewStore(c.History.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history store: %w", err)
	}
	closeFn := func() {
		if err := store.Close(); err != nil {
			log.Warn("Failed to close history store", logger.Error(err))
		}
	}
	return pipeline.New(discoverer, extractor, store, log), closeFn, nil
}

func printRunSummary(result *pipeline.Result, outputPath string) {
	fmt.Printf("Wrote %d articles to %s\n", len(result.Articles), outputPath)
	fmt.Printf("  Discovered: %d\n", len(result.URLs))
	fmt.Printf("  Failed: %d\n", len(result.Failures))
	fmt.Printf("  Incomplete: %d\n", result.Incomplete)
	fmt.Printf("  Duration: %s\n", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	for _, f := range result.Failures {
		fmt.Printf("  - %s: %v\n", f.URL, f.Err)
	}
}
