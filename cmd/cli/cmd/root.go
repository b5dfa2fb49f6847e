// Package cmd provides the CLI commands for cost-projections.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cost-projections/internal/config"
	"cost-projections/internal/logging"
)

// Version is set at build time
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cost-projections",
	Short: "Project technology investment and fixed O&M costs",
	Long: `cost-projections prepares technology cost inputs for an energy-systems model.

It differentiates surveyed costs across regions, extrapolates them with learning
rates, adjusts regional ratios with projected GDP and writes the result as model
parameter records.

Examples:
  cost-projections project
  cost-projections project --node R20 --method gdp --writer xlsx
  cost-projections plot --technology solar_pv_ppl --scenario SSP2
  cost-projections compare --scenario-version previous --against-version updated`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	defer logging.Sync()
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cost-projections.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(plotCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cost-projections version %s\n", Version)
	},
}
