package main

import (
	"fmt"

	"audiofetch/pkg/catalog"
	"audiofetch/pkg/config"
	"audiofetch/pkg/opengameart"
	"audiofetch/pkg/ui"

	"github.com/spf13/cobra"
)

var showURLs bool

// catalogCmd lists the categories and queries that a run would process
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the categories and queries a run would process",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, collectFlags(cmd))
		if err != nil {
			return err
		}

		cat, err := cfg.Catalog.Filter(categories)
		if err != nil {
			return err
		}

		endpoints, err := opengameart.NewEndpoints(cfg.Site)
		if err != nil {
			return err
		}

		printer := ui.NewPrinter(cmd.OutOrStdout(), noColor, false)
		if showURLs {
			printer.Info("Site", endpoints.BaseURL())
		}
		for _, c := range cat {
			printer.Highlight("%s (%d queries)", c.Name, len(c.Queries))
			for _, q := range c.Queries {
				kind := "search"
				if catalog.IsURL(q) {
					kind = "page"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %-6s  %s\n", kind, q)
				if showURLs {
					printer.Dim("          %s", endpoints.TargetURL(q))
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().StringSliceVar(&categories, "category", nil, "only list these categories")
	catalogCmd.Flags().BoolVar(&showURLs, "urls", false, "show the URL fetched for each query")
}
