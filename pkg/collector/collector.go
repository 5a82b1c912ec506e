// Package collector searches the asset site for each catalog query, extracts
// candidate audio links and downloads a bounded number of new files per
// query into category directories.
//
// No failure escapes a run: a query whose page cannot be fetched is reported
// as StatusQueryFailed and the run moves on, and a candidate that cannot be
// downloaded is recorded as a DownloadFailure while the next candidate is
// tried.
package collector

import (
	"bytes"
	"context"
	"errors"
	"time"

	"audiofetch/internal/worker"
	"audiofetch/pkg/catalog"
	errs "audiofetch/pkg/errors"
	"audiofetch/pkg/extract"
	"audiofetch/pkg/history"
	"audiofetch/pkg/logger"
	"audiofetch/pkg/opengameart"
	"audiofetch/pkg/ratelimit"
	"audiofetch/pkg/storage"
)

// Options tunes the download loop
type Options struct {
	// MaxPerQuery caps newly written files per query
	MaxPerQuery int
	// Delay is slept after every successful download
	Delay time.Duration
	// Workers is the number of queries processed at once
	Workers int
	// DryRun extracts and plans downloads without fetching files
	DryRun bool
}

// Collector runs the search, extract and download procedure
type Collector struct {
	fetcher   Fetcher
	store     Store
	endpoints *opengameart.Endpoints
	chain     *extract.Chain
	opts      Options
	pause     *ratelimit.Pause
	ledger    Ledger
	observer  Observer
	logger    logger.Logger
	closers   []func() error
}

// Option configures optional collaborators
type Option func(*Collector)

// WithLedger records runs and downloads in l
func WithLedger(l Ledger) Option {
	return func(c *Collector) { c.ledger = l }
}

// WithObserver reports progress to o
func WithObserver(o Observer) Option {
	return func(c *Collector) { c.observer = o }
}

// New creates a Collector
func New(fetcher Fetcher, store Store, endpoints *opengameart.Endpoints, chain *extract.Chain, opts Options, log logger.Logger, options ...Option) *Collector {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.MaxPerQuery < 1 {
		opts.MaxPerQuery = 1
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	c := &Collector{
		fetcher:   fetcher,
		store:     store,
		endpoints: endpoints,
		chain:     chain,
		opts:      opts,
		pause:     ratelimit.NewPause(opts.Delay),
		logger:    log,
	}

	for _, opt := range options {
		opt(c)
	}

	return c
}

// SetObserver replaces the progress observer
func (c *Collector) SetObserver(o Observer) {
	c.observer = o
}

// Close releases resources opened by NewFromConfig
func (c *Collector) Close() error {
	var closeErrs []error
	for _, closeFn := range c.closers {
		closeErrs = append(closeErrs, closeFn())
	}
	return errors.Join(closeErrs...)
}

type job struct {
	category string
	query    string
}

// Run processes every query of every category in catalog order and returns
// the per-query results. It never fails; interrupted queries are reported as
// StatusCancelled.
func (c *Collector) Run(ctx context.Context, cat catalog.Catalog) *RunReport {
	report := &RunReport{Started: time.Now(), DryRun: c.opts.DryRun}

	var jobs []job
	for _, category := range cat {
		for _, query := range category.Queries {
			jobs = append(jobs, job{category: category.Name, query: query})
		}
	}

	if c.ledger != nil && !c.opts.DryRun {
		id, err := c.ledger.StartRun(ctx)
		if err != nil {
			c.logger.WithError(err).Warn("Failed to start history run, continuing without history")
		}
		report.RunID = id
	}

	log := c.logger.WithField("run_id", report.RunID)
	log.InfoWithFields("Run started", map[string]interface{}{
		"categories": len(cat),
		"queries":    len(jobs),
		"workers":    c.opts.Workers,
		"dry_run":    c.opts.DryRun,
	})

	report.Results = worker.Run(ctx, c.opts.Workers, jobs, func(ctx context.Context, j job) *QueryResult {
		return c.process(ctx, report.RunID, j.category, j.query)
	}, c.logger)

	report.Finished = time.Now()

	if report.RunID != "" {
		err := c.ledger.FinishRun(context.WithoutCancel(ctx), report.RunID,
			len(report.Results), report.Downloaded(), report.FailedDownloads())
		if err != nil {
			log.WithError(err).Warn("Failed to finish history run")
		}
	}

	log.InfoWithFields("Run finished", map[string]interface{}{
		"downloaded":     report.Downloaded(),
		"failed_files":   report.FailedDownloads(),
		"failed_queries": report.CountStatus(StatusQueryFailed),
		"empty_queries":  report.CountStatus(StatusExtractionEmpty),
		"cancelled":      report.CountStatus(StatusCancelled),
		"duration_ms":    report.Duration().Milliseconds(),
	})

	return report
}

// Process runs the procedure for a single query
func (c *Collector) Process(ctx context.Context, category, query string) *QueryResult {
	return c.process(ctx, "", category, query)
}

func (c *Collector) process(ctx context.Context, runID, category, query string) *QueryResult {
	start := time.Now()
	res := &QueryResult{
		Category:  category,
		Query:     query,
		TargetURL: c.endpoints.TargetURL(query),
	}
	defer func() {
		res.Duration = time.Since(start)
		logger.LogQuery(c.logger, category, query, string(res.Status), res.Count(), res.Candidates)
		if c.observer != nil {
			c.observer.QueryFinished(res)
		}
	}()

	if ctx.Err() != nil {
		res.Status = StatusCancelled
		return res
	}

	log := c.logger.WithFields(map[string]interface{}{
		"category": category,
		"query":    query,
	})

	body, err := c.fetcher.FetchPage(ctx, res.TargetURL)
	if err != nil {
		if ctx.Err() != nil {
			res.Status = StatusCancelled
			return res
		}
		res.Status = StatusQueryFailed
		res.Err = err
		log.WithError(err).Warn("Query failed")
		return res
	}

	extracted, err := c.chain.Extract(body)
	if err != nil {
		res.Status = StatusQueryFailed
		res.Err = errs.New(errs.ErrorTypeParsing, 0, "%v", err)
		log.WithError(err).Warn("Extraction failed")
		return res
	}

	res.Rule = extracted.Rule
	res.Candidates = len(extracted.Links)
	if res.Candidates == 0 {
		res.Status = StatusExtractionEmpty
		log.Debug("No candidate links found")
		return res
	}

	log.DebugWithFields("Extracted candidates", map[string]interface{}{
		"rule":       extracted.Rule,
		"candidates": res.Candidates,
	})

	res.Status = StatusCompleted
	c.downloadCandidates(ctx, runID, res, extracted.Links, log)
	return res
}

// downloadCandidates walks the candidates in order until MaxPerQuery new
// files exist. Skipped and failed candidates do not count.
func (c *Collector) downloadCandidates(ctx context.Context, runID string, res *QueryResult, links []string, log logger.Logger) {
	for i, link := range links {
		if res.Count()+len(res.Planned) >= c.opts.MaxPerQuery {
			return
		}
		if ctx.Err() != nil {
			res.Status = StatusCancelled
			return
		}

		fileURL, err := c.endpoints.Resolve(link)
		if err != nil {
			res.Failures = append(res.Failures, DownloadFailure{URL: link, Err: err})
			log.WithError(err).Warn("Skipping unresolvable link")
			continue
		}

		key := storage.KeyFor(res.Category, res.Query, i+1, fileURL)
		if c.store.Exists(key) {
			res.Skipped++
			continue
		}

		if c.opts.DryRun {
			res.Planned = append(res.Planned, key)
			continue
		}

		data, err := c.fetcher.Download(ctx, fileURL)
		if err == nil {
			var saved storage.SavedFile
			saved, err = c.store.Save(key, bytes.NewReader(data))
			if err == nil {
				c.recordFile(ctx, runID, res, key, fileURL, saved)
				if sleepErr := c.pause.Sleep(ctx); sleepErr != nil {
					res.Status = StatusCancelled
					return
				}
				continue
			}
		}

		if ctx.Err() != nil {
			res.Status = StatusCancelled
			return
		}
		res.Failures = append(res.Failures, DownloadFailure{URL: fileURL, Key: key, Err: err})
		logger.LogDownload(log, res.Category, key.Filename, 0, err)
	}
}

func (c *Collector) recordFile(ctx context.Context, runID string, res *QueryResult, key storage.Key, fileURL string, saved storage.SavedFile) {
	file := DownloadedFile{
		Key:    key,
		URL:    fileURL,
		Path:   saved.Path,
		Size:   saved.Size,
		SHA256: saved.SHA256,
	}
	res.Downloaded = append(res.Downloaded, file)
	logger.LogDownload(c.logger, res.Category, key.Filename, saved.Size, nil)

	if c.observer != nil {
		c.observer.FileDownloaded(res.Category, file)
	}

	if c.ledger == nil || runID == "" {
		return
	}
	ctx = context.WithoutCancel(ctx)

	// same bytes under another name, e.g. a pack listed on two pages
	if dup, err := c.ledger.HasChecksum(ctx, saved.SHA256); err == nil && dup {
		c.logger.DebugWithFields("Downloaded file matches an earlier download", map[string]interface{}{
			"category": res.Category,
			"filename": key.Filename,
			"sha256":   saved.SHA256,
		})
	}

	err := c.ledger.RecordDownload(ctx, history.Download{
		RunID:    runID,
		Category: res.Category,
		Query:    res.Query,
		URL:      fileURL,
		Path:     saved.Path,
		Size:     saved.Size,
		SHA256:   saved.SHA256,
	})
	if err != nil {
		c.logger.WithError(err).Warn("Failed to record download in history")
	}
}
