// Package cmd - plot command
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	adapter "cost-projections/adapters/cli"
	"cost-projections/core/chart"
	"cost-projections/core/projections"
	"cost-projections/core/types"
	"cost-projections/internal/config"
	"cost-projections/internal/errors"
)

var (
	plotFlags      selectionFlags
	plotTechnology string
	plotDir        string
)

// plotCmd renders trajectories
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Chart investment cost trajectories for one technology",
	Long: `Render the learning-only, GDP-adjusted and converged investment cost
trajectories of one technology to PNG, one line per region.

Examples:
  cost-projections plot --technology solar_pv_ppl --scenario SSP2
  cost-projections plot --technology wind_ppl --node R20 --scenario SSP1`,
	Args: cobra.NoArgs,
	RunE: runPlot,
}

func init() {
	plotFlags.register(plotCmd)
	plotCmd.Flags().StringVarP(&plotTechnology, "technology", "t", "", "technology to chart (required)")
	plotCmd.Flags().StringVarP(&plotDir, "output", "o", "", "output directory (default from config)")
	_ = plotCmd.MarkFlagRequired("technology")
}

func runPlot(cmd *cobra.Command, args []string) error {
	cfg, opts := plotFlags.apply(config.Get())
	if err := checkPlotSelection(opts); err != nil {
		return err
	}

	p, err := adapter.NewProjector(cfg)
	if err != nil {
		return err
	}
	res, err := p.Project(context.Background(), opts)
	if err != nil {
		return err
	}

	dir := cfg.Output.Directory
	if plotDir != "" {
		dir = plotDir
	}
	paths, err := chart.Trajectories(res.Trajectories, chart.Selection{
		Technology:      plotTechnology,
		ScenarioVersion: opts.ScenarioVersion,
		Scenario:        opts.Scenario,
	}, dir)
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}

// checkPlotSelection requires one series per region: a chart cannot show "all".
func checkPlotSelection(opts projections.Options) error {
	if strings.EqualFold(opts.ScenarioVersion, types.All) {
		return errors.Input("plot needs a single --scenario-version")
	}
	if strings.EqualFold(opts.Scenario, types.All) {
		return errors.Input("plot needs a single --scenario")
	}
	return nil
}
