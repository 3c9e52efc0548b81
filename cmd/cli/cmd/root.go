// Package cmd provides the CLI commands for ispbill.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"isp-billing/internal/config"
	"isp-billing/internal/logging"
)

// Version is set at build time with -ldflags "-X isp-billing/cmd/cli/cmd.Version=..."
var Version = "dev"

var (
	cfgFile      string
	verbose      bool
	outputFormat string
	noColor      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ispbill",
	Short: "Classify ISP connections and pick the right subscription plan",
	Long: `ispbill turns per-ISP connection counts into billable usage, recommends
the cheapest subscription plan that covers it, and prices the assigned plan.

Active, suspended and damaged connections are billable; voluntary and
forced cancellations are not.

Examples:
  ispbill classify --snapshots snapshots.yaml
  ispbill recommend --plans plans.yaml --billable 150
  ispbill cost --plans plans.yaml --plan basic --billable 250
  ispbill evaluate --plans plans.yaml --snapshots snapshots.yaml --assigned basic
  ispbill serve --addr :8080`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, YAML or JSON (ISPBILL_* environment variables override it)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "", "output format (text, json, markdown); default from config")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if noColor {
		cfg.Output.NoColor = true
	}
	if outputFormat != "" {
		cfg.Output.DefaultFormat = outputFormat
	}
	config.Set(cfg)

	// Initialize logging
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
	return nil
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ispbill version %s\n", Version)
	},
}

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configForce bool

// configInitCmd writes the default configuration
var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "ispbill.yaml"
		if len(args) > 0 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.Default().Save(path); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
}
