package main

import (
	"fmt"
	"os"

	"audiofetch/pkg/config"
	"audiofetch/pkg/ui"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var forceInit bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage audiofetch configuration",
	Long: `Manage audiofetch configuration files.

Configuration is loaded from (in order of precedence):
1. Command line flags
2. Environment variables (AUDIOFETCH_*)
3. .env files
4. Configuration file (.audiofetch.yaml)
5. Default values`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	Long: `Write a configuration file containing every default setting,
including the built-in catalog, so it can be edited.

The file is written to --config when given, otherwise to ./.audiofetch.yaml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if path == "" {
			path = ".audiofetch.yaml"
		}

		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}

		printer := ui.NewPrinter(cmd.OutOrStdout(), noColor, quiet)
		printer.Success("Configuration written to %s", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  `Print the configuration after files, environment and flags have been merged.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, collectFlags(cmd))
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}

		printer := ui.NewPrinter(cmd.OutOrStdout(), noColor, quiet)
		if path := configFile; path != "" {
			printer.Dim("# from %s", path)
		} else if path := config.FindConfigFile(); path != "" {
			printer.Dim("# from %s", path)
		} else {
			printer.Dim("# defaults (no config file found)")
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for errors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := ui.NewPrinter(cmd.OutOrStdout(), noColor, quiet)

		cfg, err := config.Load(configFile, collectFlags(cmd))
		if err != nil {
			printer.Error("Configuration is invalid")
			return err
		}

		printer.Success("Configuration is valid")
		printer.Info("Categories", fmt.Sprintf("%d", len(cfg.Catalog)))
		printer.Info("Queries", fmt.Sprintf("%d", cfg.Catalog.QueryCount()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing file")
}
