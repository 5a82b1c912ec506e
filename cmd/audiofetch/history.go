package main

import (
	"errors"
	"fmt"
	"time"

	"audiofetch/pkg/config"
	"audiofetch/pkg/history"
	"audiofetch/pkg/storage"
	"audiofetch/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	showRuns     bool
)

// historyCmd reads the run ledger
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently downloaded files or past runs",
	Long: `Show entries from the history database.

The database is only written when a history path is configured
(history.path in the config file, AUDIOFETCH_HISTORY_PATH or --history).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := map[string]interface{}{}
		if cmd.Flags().Changed("history") {
			flags["history"] = historyPath
		}

		cfg, err := config.Load(configFile, flags)
		if err != nil {
			return err
		}
		if cfg.History.Path == "" {
			return errors.New("no history database configured")
		}

		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		printer := ui.NewPrinter(cmd.OutOrStdout(), noColor, false)
		out := cmd.OutOrStdout()

		if showRuns {
			runs, err := store.Runs(cmd.Context(), historyLimit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printer.Dim("No runs recorded")
				return nil
			}
			for _, r := range runs {
				finished := "unfinished"
				if !r.FinishedAt.IsZero() {
					finished = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
				}
				fmt.Fprintf(out, "%s  %s  %3d queries  %3d downloaded  %3d failed  %s\n",
					r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.ID[:8],
					r.Queries, r.Downloaded, r.Failed, finished)
			}
			return nil
		}

		downloads, err := store.RecentDownloads(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(downloads) == 0 {
			printer.Dim("No downloads recorded")
		}
		for _, d := range downloads {
			fmt.Fprintf(out, "%s  %-10s %10s  %s\n",
				d.DownloadedAt.Local().Format("2006-01-02 15:04:05"), d.Category,
				ui.FormatBytes(d.Size), d.Path)
		}

		return printOnDisk(printer, cfg)
	},
}

// printOnDisk prints how many files each category directory holds
func printOnDisk(printer *ui.Printer, cfg *config.Config) error {
	files := storage.Open(cfg.Output.BaseDirectory)
	if err := files.Index(cfg.Catalog.Names()...); err != nil {
		return err
	}

	printer.Highlight("On disk (%s)", files.OutputDir())
	for _, name := range cfg.Catalog.Names() {
		printer.Info(name, fmt.Sprintf("%d files", files.Count(name)))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyPath, "history", "", "SQLite history file")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "number of entries to show")
	historyCmd.Flags().BoolVar(&showRuns, "runs", false, "list runs instead of files")
}
