// Package cmd - project command
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	adapter "cost-projections/adapters/cli"
	"cost-projections/core/projections"
	"cost-projections/internal/config"
)

// selectionFlags are shared by commands that run the pipeline
type selectionFlags struct {
	node            string
	referenceRegion string
	baseYear        int
	scenarioVersion string
	scenario        string
	method          string
	convergenceYear int
	format          string
	assumptions     string
	surveyWorkbook  string
	gdpWorkbook     string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.node, "node", "n", "", "spatial resolution (R11, R12, R20)")
	cmd.Flags().StringVar(&f.referenceRegion, "reference-region", "", "reference region (default <node>_NAM)")
	cmd.Flags().IntVar(&f.baseYear, "base-year", 0, "base year of the cost survey")
	cmd.Flags().StringVar(&f.scenarioVersion, "scenario-version", "", "survey version or \"all\"")
	cmd.Flags().StringVarP(&f.scenario, "scenario", "s", "", "scenario or \"all\"")
	cmd.Flags().StringVarP(&f.method, "method", "m", "", "learning, gdp or convergence")
	cmd.Flags().IntVar(&f.convergenceYear, "convergence-year", 0, "year regional costs converge")
	cmd.Flags().StringVar(&f.format, "format", "", "record layout (message, iamc)")
	cmd.Flags().StringVar(&f.assumptions, "assumptions", "", "HCL assumptions file or directory")
	cmd.Flags().StringVar(&f.surveyWorkbook, "survey-workbook", "", "xlsx workbook replacing the survey costs")
	cmd.Flags().StringVar(&f.gdpWorkbook, "gdp-workbook", "", "xlsx workbook with GDP per capita projections")
}

// apply overlays the flags that were set on the configuration
func (f *selectionFlags) apply(cfg *config.Config) (*config.Config, projections.Options) {
	c := *cfg
	if f.assumptions != "" {
		c.Data.AssumptionsFile = f.assumptions
	}
	if f.surveyWorkbook != "" {
		c.Data.SurveyWorkbook = f.surveyWorkbook
	}
	if f.gdpWorkbook != "" {
		c.Data.GDPWorkbook = f.gdpWorkbook
	}

	opts := projections.OptionsFromConfig(&c)
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&opts.Node, f.node)
	set(&opts.ReferenceRegion, f.referenceRegion)
	set(&opts.ScenarioVersion, f.scenarioVersion)
	set(&opts.Scenario, f.scenario)
	set(&opts.Method, f.method)
	set(&opts.Format, f.format)
	if f.baseYear != 0 {
		opts.BaseYear = f.baseYear
	}
	if f.convergenceYear != 0 {
		opts.ConvergenceYear = f.convergenceYear
	}
	return &c, opts
}

var (
	projectFlags  selectionFlags
	outputDir     string
	writerName    string
	summaryFormat string
	noWrite       bool
)

// projectCmd runs the pipeline
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project technology costs and write model records",
	Long: `Run the cost projection pipeline and write the resulting tables.

Examples:
  cost-projections project
  cost-projections project --node R11 --scenario SSP2 --method learning
  cost-projections project --format iamc --writer xlsx --output ./out`,
	Args: cobra.NoArgs,
	RunE: runProject,
}

func init() {
	projectFlags.register(projectCmd)
	projectCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default from config)")
	projectCmd.Flags().StringVarP(&writerName, "writer", "w", "", "table writer (csv, json, xlsx)")
	projectCmd.Flags().StringVar(&summaryFormat, "summary", "table", "summary format (table, json, markdown, none)")
	projectCmd.Flags().BoolVar(&noWrite, "no-write", false, "print the summary without writing tables")
}

func runProject(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, opts := projectFlags.apply(config.Get())
	p, err := adapter.NewProjector(cfg)
	if err != nil {
		return err
	}

	summary, err := adapter.ParseSummaryFormat(summaryFormat)
	if err != nil {
		return err
	}

	req := &adapter.CLIRequest{
		Options:   opts,
		OutputDir: cfg.Output.Directory,
		Writer:    cfg.Output.Writer,
	}
	if outputDir != "" {
		req.OutputDir = outputDir
	}
	if writerName != "" {
		req.Writer = writerName
	}
	if noWrite {
		req.OutputDir = ""
	}

	a := adapter.NewCLIAdapter(p, Version)
	a.SetOutput(cmd.OutOrStdout())
	a.SetFormat(summary)
	_, err = a.Run(ctx, req)
	return err
}
