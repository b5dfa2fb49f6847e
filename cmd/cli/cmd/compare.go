// Package cmd - compare command
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	adapter "cost-projections/adapters/cli"
	"cost-projections/core/diff"
	"cost-projections/core/projections"
	"cost-projections/internal/config"
)

// againstFlags override the first run's selection for the second run
type againstFlags struct {
	scenarioVersion string
	scenario        string
	method          string
	convergenceYear int
}

func (f *againstFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.scenarioVersion, "against-version", "", "survey version of the second run")
	cmd.Flags().StringVar(&f.scenario, "against-scenario", "", "scenario of the second run")
	cmd.Flags().StringVar(&f.method, "against-method", "", "method of the second run")
	cmd.Flags().IntVar(&f.convergenceYear, "against-convergence-year", 0, "convergence year of the second run")
}

func (f *againstFlags) apply(opts projections.Options) projections.Options {
	if f.scenarioVersion != "" {
		opts.ScenarioVersion = f.scenarioVersion
	}
	if f.scenario != "" {
		opts.Scenario = f.scenario
	}
	if f.method != "" {
		opts.Method = f.method
	}
	if f.convergenceYear != 0 {
		opts.ConvergenceYear = f.convergenceYear
	}
	return opts
}

var (
	compareFlags   selectionFlags
	compareAgainst againstFlags
	compareField   string
	compareRegion  string
	compareSummary string
	compareTop     int
	compareNoColor bool
	compareThresh  float64
)

// compareCmd diffs two pipeline runs
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the projections of two selections",
	Long: `Run the pipeline twice and list the costs that differ between the runs.

The first run uses the regular selection flags, the second run the same
selection with the --against-* overrides applied.

Examples:
  cost-projections compare --scenario-version previous --against-version updated
  cost-projections compare --method learning --against-method convergence --region R12_AFR
  cost-projections compare --scenario SSP1 --against-scenario SSP2 --field fix_cost`,
	Args: cobra.NoArgs,
	RunE: runCompare,
}

func init() {
	compareFlags.register(compareCmd)
	compareAgainst.register(compareCmd)
	compareCmd.Flags().StringVar(&compareField, "field", "inv_cost", "compared cost (inv_cost, fix_cost)")
	compareCmd.Flags().StringVar(&compareRegion, "region", "", "restrict the comparison to one region")
	compareCmd.Flags().StringVar(&compareSummary, "summary", "table", "output format (table, json, none)")
	compareCmd.Flags().IntVar(&compareTop, "top", 10, "number of changes to list")
	compareCmd.Flags().Float64Var(&compareThresh, "threshold", 0.1, "relative change in percent treated as unchanged")
	compareCmd.Flags().BoolVar(&compareNoColor, "no-color", false, "disable colored output")
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	field, err := diff.ParseField(compareField)
	if err != nil {
		return err
	}
	summary, err := adapter.ParseSummaryFormat(compareSummary)
	if err != nil {
		return err
	}

	cfg, opts := compareFlags.apply(config.Get())
	p, err := adapter.NewProjector(cfg)
	if err != nil {
		return err
	}

	a := adapter.NewCLIAdapter(p, Version)
	a.SetOutput(cmd.OutOrStdout())
	a.SetFormat(summary)
	_, err = a.Compare(ctx, &adapter.CompareRequest{
		Before:    opts,
		After:     compareAgainst.apply(opts),
		Field:     field,
		Threshold: compareThresh / 100,
		Region:    compareRegion,
		Top:       compareTop,
		NoColor:   compareNoColor,
	})
	return err
}
