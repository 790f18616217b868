// Package pipeline drives one moodscrape run: discover article URLs, extract
// each article, and write the collection to disk.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/moodscrape/article"
	"github.com/pevans/moodscrape/discovery"
	"github.com/pevans/moodscrape/history"
	"github.com/pevans/moodscrape/logger"
	"github.com/pevans/moodscrape/output"
)

// ErrNoOutputPath is returned before any work starts when the run has no
// destination.
var ErrNoOutputPath = errors.New("output path is required")

// Discoverer enumerates article URLs from an index.
type Discoverer interface {
	Discover(ctx context.Context, location string, limit int) ([]string, error)
}

// Extractor turns one article URL into an Article.
type Extractor interface {
	Extract(ctx context.Context, url string) (article.Article, error)
}

// Recorder stores a summary of each run.
type Recorder interface {
	RecordRun(run history.Run, failures []history.Failure) error
}

// Options are the settings of a single run.
type Options struct {
	// SitemapLocation is the index to discover from. Ignored when URLsFile
	// is set.
	SitemapLocation string
	// URLsFile is a saved list of article URLs used instead of discovery.
	URLsFile string
	// Limit caps the number of articles; 0 means unbounded.
	Limit int
	// OutputPath is the destination file.
	OutputPath string
	// SaveURLsPath, when set, receives the discovered URL list.
	SaveURLsPath string
}

func (o Options) location() string {
	if o.URLsFile != "" {
		return o.URLsFile
	}
	return o.SitemapLocation
}

// Failure records an article that could not be extracted.
type Failure struct {
	URL string
	Err error
}

// Result holds the outcome of a run.
type Result struct {
	RunID      uuid.UUID
	URLs       []string
	Articles   []article.Article
	Failures   []Failure
	Incomplete int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Pipeline runs discovery, extraction and persistence in sequence.
type Pipeline struct {
	discoverer Discoverer
	extractor  Extractor
	recorder   Recorder
	log        logger.Logger
}

// New creates a pipeline. recorder may be nil to disable run history.
func New(discoverer Discoverer, extractor Extractor, recorder Recorder, log logger.Logger) *Pipeline {
	return &Pipeline{
		discoverer: discoverer,
		extractor:  extractor,
		recorder:   recorder,
		log:        log,
	}
}

// Run executes one run. Discovery and persistence errors are returned and
// fail the run; extraction errors are collected in Result.Failures and never
// returned. The Result is non-nil even when an error is returned.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	r := &Result{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
	}
	log := p.log.With(logger.String("run_id", r.RunID.String()))

	err := p.run(ctx, opts, r, log)
	r.FinishedAt = time.Now()

	p.record(opts, r, err, log)

	if err != nil {
		log.Error("Run failed", logger.Error(err))
		return r, err
	}

	log.Info("Run complete",
		logger.String("output", opts.OutputPath),
		logger.Int("discovered", len(r.URLs)),
		logger.Int("extracted", len(r.Articles)),
		logger.Int("failed", len(r.Failures)),
		logger.Int("incomplete", r.Incomplete),
		logger.Duration("duration", r.FinishedAt.Sub(r.StartedAt)),
	)
	return r, nil
}

func (p *Pipeline) run(ctx context.Context, opts Options, r *Result, log logger.Logger) error {
	if opts.OutputPath == "" {
		return ErrNoOutputPath
	}

	urls, err := p.discover(ctx, opts)
	if err != nil {
		return err
	}
	r.URLs = urls

	if opts.SaveURLsPath != "" {
		if err := output.WriteURLs(urls, opts.SaveURLsPath); err != nil {
			log.Warn("Failed to save article URLs", logger.Error(err))
		} else {
			log.Info("Saved article URLs", logger.String("path", opts.SaveURLsPath))
		}
	}

	r.Articles, r.Failures = p.extractAll(ctx, urls, r.Failures, log)
	for _, a := range r.Articles {
		if !a.IsComplete() {
			r.Incomplete++
		}
	}

	log.Info("Writing articles", logger.String("path", opts.OutputPath), logger.Int("count", len(r.Articles)))
	return output.Write(r.Articles, opts.OutputPath)
}

func (p *Pipeline) discover(ctx context.Context, opts Options) ([]string, error) {
	if opts.URLsFile != "" {
		p.log.Info("Reading article URLs from file", logger.String("path", opts.URLsFile))
		return discovery.ReadURLList(opts.URLsFile, opts.Limit)
	}
	return p.discoverer.Discover(ctx, opts.SitemapLocation, opts.Limit)
}

// extractAll extracts every URL in order, one at a time. Failed URLs are
// appended to failures and left out of the returned articles.
func (p *Pipeline) extractAll(
	ctx context.Context,
	urls []string,
	failures []Failure,
	log logger.Logger,
) ([]article.Article, []Failure) {
	articles := make([]article.Article, 0, len(urls))

	for i, u := range urls {
		log.Debug("Extracting article",
			logger.String("url", u),
			logger.Int("index", i+1),
			logger.Int("total", len(urls)),
		)

		a, err := p.extractor.Extract(ctx, u)
		if err != nil {
			log.Warn("Skipping article", logger.String("url", u), logger.Error(err))
			failures = append(failures, Failure{URL: u, Err: err})
			continue
		}

		log.Info("Extracted article",
			logger.String("url", u),
			logger.String("title", a.Title),
			logger.Int("reactions", len(a.Reactions)),
		)
		articles = append(articles, a)
	}

	return articles, failures
}

// record stores the run summary when history is enabled. Failing to record
// never fails the run.
func (p *Pipeline) record(opts Options, r *Result, runErr error, log logger.Logger) {
	if p.recorder == nil {
		return
	}

	run := history.Run{
		RunID:      r.RunID,
		Location:   opts.location(),
		OutputPath: opts.OutputPath,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Discovered: len(r.URLs),
		Extracted:  len(r.Articles),
		Failed:     len(r.Failures),
		Incomplete: r.Incomplete,
		Status:     history.StatusSucceeded,
	}
	if runErr != nil {
		msg := runErr.Error()
		run.Status = history.StatusFailed
		run.Error = &msg
	}

	failures := make([]history.Failure, 0, len(r.Failures))
	for _, f := range r.Failures {
		failures = append(failures, history.Failure{URL: f.URL, Error: f.Err.Error()})
	}

	if err := p.recorder.RecordRun(run, failures); err != nil {
		log.Error("Failed to record run history", logger.Error(err))
	}
}
