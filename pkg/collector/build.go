package collector

import (
	"fmt"

	"audiofetch/pkg/config"
	"audiofetch/pkg/extract"
	"audiofetch/pkg/history"
	"audiofetch/pkg/logger"
	"audiofetch/pkg/opengameart"
	"audiofetch/pkg/ratelimit"
	"audiofetch/pkg/retry"
	"audiofetch/pkg/storage"
)

// NewFromConfig wires the site client, storage, extraction chain and, when
// configured, the history ledger. Call Close when done.
func NewFromConfig(cfg *config.Config, log logger.Logger) (*Collector, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	endpoints, err := opengameart.NewEndpoints(cfg.Site)
	if err != nil {
		return nil, err
	}

	client := opengameart.NewClient(cfg.Site, cfg.Download.Timeout, log,
		opengameart.WithLimiter(ratelimit.New(cfg.RateLimit.RequestsPerMinute)),
		opengameart.WithRetry(retry.FromSettings(cfg.Retry, log)),
		opengameart.WithMaxFileSize(cfg.Download.MaxFileSize),
		opengameart.WithRobots(cfg.Site.RespectRobots),
	)

	var store *storage.Manager
	if cfg.Download.DryRun {
		store = storage.Open(cfg.Output.BaseDirectory)
	} else {
		store, err = storage.NewManager(cfg.Output.BaseDirectory, cfg.Catalog.Names())
		if err != nil {
			return nil, err
		}
	}

	opts := Options{
		MaxPerQuery: cfg.Download.MaxPerQuery,
		Delay:       cfg.Download.Delay,
		Workers:     cfg.Download.Workers,
		DryRun:      cfg.Download.DryRun,
	}

	c := New(client, store, endpoints, extract.DefaultChain(cfg.Site.FilePrefix), opts, log)

	if cfg.History.Path != "" && !cfg.Download.DryRun {
		ledger, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		c.ledger = ledger
		c.closers = append(c.closers, ledger.Close)
	}

	return c, nil
}
