package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"audiofetch/pkg/collector"
	"audiofetch/pkg/config"
	"audiofetch/pkg/logger"
	"audiofetch/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	// Run command flags
	outputDir   string
	maxPerQuery int
	delay       time.Duration
	workers     int
	categories  []string
	dryRun      bool
	historyPath string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search, extract and download audio for every catalog query",
	Long: `Process every query of the catalog in order.

For each query the search page (or the content page, for URL queries) is
fetched, candidate audio links are extracted and up to --max-per-query new
files are downloaded into <output>/<category>/. A failed query or file is
reported and skipped; the run always finishes with a summary.`,
	Example: `  # Collect with defaults into ./audio
  audiofetch run

  # Only the npc category, three files per query, no delay
  audiofetch run --category npc --max-per-query 3 --delay 0

  # Show what would be downloaded
  audiofetch run --dry-run`,
	Args: cobra.NoArgs,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "root directory for downloaded audio (default ./audio)")
	cmd.Flags().IntVarP(&maxPerQuery, "max-per-query", "n", 2, "maximum new files per query")
	cmd.Flags().DurationVar(&delay, "delay", time.Second, "pause after each successful download")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "queries processed at once")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "only process these categories (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "extract and list candidates without downloading")
	cmd.Flags().StringVar(&historyPath, "history", "", "SQLite file recording runs and downloads")
}

// collectFlags returns the explicitly set flags of cmd for config merging
func collectFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("output") {
		flags["output"] = outputDir
	}
	if changed("max-per-query") {
		flags["max-per-query"] = maxPerQuery
	}
	if changed("delay") {
		flags["delay"] = delay
	}
	if changed("workers") {
		flags["workers"] = workers
	}
	if changed("dry-run") {
		flags["dry-run"] = dryRun
	}
	if changed("history") {
		flags["history"] = historyPath
	}
	if changed("log-level") {
		flags["log-level"] = logLevel
	}
	if changed("no-color") {
		flags["no-color"] = noColor
	}
	return flags
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, collectFlags(cmd))
	if err != nil {
		return nil, err
	}

	// progress output replaces per-query log lines unless asked for
	if !verbose && !cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = "warn"
	}
	if quiet && !cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = "error"
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cat, err := cfg.Catalog.Filter(categories)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout(), cfg.Logging.NoColor, quiet)
	printer.Logo()
	printer.Info("Output", cfg.Output.BaseDirectory)
	printer.Info("Queries", strconv.Itoa(cat.QueryCount()))
	printer.Info("Max per query", strconv.Itoa(cfg.Download.MaxPerQuery))
	if cfg.Download.DryRun {
		printer.Highlight("[DRY RUN] nothing will be written")
	}

	c, err := collector.NewFromConfig(cfg, logger.GetLogger())
	if err != nil {
		return err
	}
	defer c.Close()

	c.SetObserver(ui.NewTracker(printer, cat.QueryCount()))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.GetLogger().WithField("version", version).Info("audiofetch starting")

	report := c.Run(ctx, cat)
	if ctx.Err() != nil {
		printer.Warning("Interrupted, stopping after the current request")
	}

	printer.PrintSummary(report)
	return nil
}
