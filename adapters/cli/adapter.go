// Package adapter provides thin adapters over the projection pipeline.
// The CLI handles input and output only; all logic is in core/projections.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cost-projections/adapters/excel"
	"cost-projections/core/assumptions"
	"cost-projections/core/catalog"
	"cost-projections/core/gdp"
	"cost-projections/core/output"
	"cost-projections/core/projections"
	"cost-projections/core/types"
	"cost-projections/internal/config"
	"cost-projections/internal/errors"
	"cost-projections/internal/logging"
)

// CLIAdapter is a THIN wrapper around the projector.
type CLIAdapter struct {
	projector *projections.Projector
	writers   *output.Registry
	output    io.Writer
	format    SummaryFormat
	version   string
}

// SummaryFormat specifies how the run summary is printed
type SummaryFormat int

const (
	SummaryTable SummaryFormat = iota
	SummaryJSON
	SummaryMarkdown
	SummaryNone
)

// ParseSummaryFormat maps a flag value to a SummaryFormat
func ParseSummaryFormat(s string) (SummaryFormat, error) {
	switch s {
	case "table", "":
		return SummaryTable, nil
	case "json":
		return SummaryJSON, nil
	case "markdown":
		return SummaryMarkdown, nil
	case "none":
		return SummaryNone, nil
	}
	return SummaryTable, errors.Inputf("unknown summary format %q: expected table, json, markdown or none", s)
}

// NewCLIAdapter creates a new CLI adapter
func NewCLIAdapter(p *projections.Projector, version string) *CLIAdapter {
	return &CLIAdapter{
		projector: p,
		writers:   output.NewRegistry(),
		output:    os.Stdout,
		format:    SummaryTable,
		version:   version,
	}
}

// SetOutput sets the summary writer
func (a *CLIAdapter) SetOutput(w io.Writer) {
	a.output = w
}

// SetFormat sets the summary format
func (a *CLIAdapter) SetFormat(f SummaryFormat) {
	a.format = f
}

// CLIRequest is the CLI input
type CLIRequest struct {
	// Options for the pipeline
	Options projections.Options

	// OutputDir receives the tables; nothing is written when empty
	OutputDir string

	// Writer is csv, json or xlsx
	Writer string

	// SummaryYears are the columns of the printed summary
	SummaryYears []int
}

// Run executes the pipeline, writes tables and prints a summary
func (a *CLIAdapter) Run(ctx context.Context, req *CLIRequest) (*projections.Result, error) {
	var w output.Writer
	if req.OutputDir != "" {
		var err error
		if w, err = a.writers.Get(req.Writer); err != nil {
			return nil, err
		}
	}

	res, err := a.projector.Project(ctx, req.Options)
	if err != nil {
		return nil, err
	}

	var files []string
	if w != nil {
		if files, err = w.Write(req.OutputDir, output.FromResult(res, a.version)); err != nil {
			return nil, err
		}
		logging.Info("tables written",
			zap.String("run_id", res.RunID),
			zap.String("writer", string(w.Format())),
			zap.String("directory", req.OutputDir),
			zap.Int("files", len(files)))
	}

	s := Summarize(res, req.SummaryYears)
	s.Files = files

	switch a.format {
	case SummaryJSON:
		err = a.outputJSON(s)
	case SummaryMarkdown:
		err = a.outputMarkdown(s)
	case SummaryNone:
	default:
		err = a.outputTable(s)
	}
	return res, err
}

// Summary is the printed view of a run: the reference region's investment cost
// per technology and scenario at selected years.
type Summary struct {
	RunID           string         `json:"run_id"`
	Node            string         `json:"node"`
	ReferenceRegion string         `json:"reference_region"`
	Method          string         `json:"method"`
	Format          string         `json:"format"`
	Years           []int          `json:"years"`
	Rows            []SummaryRow   `json:"rows"`
	Records         map[string]int `json:"records"`
	Files           []string       `json:"files,omitempty"`
}

// SummaryRow is one reference-region trajectory
type SummaryRow struct {
	ScenarioVersion string            `json:"scenario_version"`
	Scenario        string            `json:"scenario"`
	Technology      string            `json:"technology"`
	Costs           []decimal.Decimal `json:"costs"`
}

// Summarize builds the summary of a result
func Summarize(res *projections.Result, years []int) *Summary {
	if len(years) == 0 {
		years = []int{2020, 2050, 2100}
	}
	s := &Summary{
		RunID:           res.RunID,
		Node:            res.Selection.Node.String(),
		ReferenceRegion: res.Selection.ReferenceRegion,
		Method:          string(res.Method),
		Format:          string(res.Format),
		Years:           years,
		Records:         make(map[string]int),
	}

	idx := make(map[types.SeriesKey]map[int]float64)
	var keys []types.SeriesKey
	for _, p := range res.Projections {
		if p.Region != res.Selection.ReferenceRegion {
			continue
		}
		k := p.Key()
		if _, ok := idx[k]; !ok {
			idx[k] = make(map[int]float64)
			keys = append(keys, k)
		}
		idx[k][p.Year] = p.InvCost
	}
	for _, k := range keys {
		row := SummaryRow{ScenarioVersion: k.ScenarioVersion, Scenario: k.Scenario, Technology: k.Technology}
		for _, y := range years {
			row.Costs = append(row.Costs, decimal.NewFromFloat(idx[k][y]).Round(0))
		}
		s.Rows = append(s.Rows, row)
	}

	s.Records["projections"] = len(res.Projections)
	if res.Records != nil {
		s.Records["inv_cost"] = len(res.Records.Inv)
		s.Records["fix_cost"] = len(res.Records.Fix)
	}
	if res.IAMC != nil {
		s.Records["iamc"] = len(res.IAMC)
	}
	return s
}

func (a *CLIAdapter) outputTable(s *Summary) error {
	fmt.Fprintln(a.output, "")
	fmt.Fprintln(a.output, "╔══════════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(a.output, "║                 TECHNOLOGY COST PROJECTIONS                      ║")
	fmt.Fprintln(a.output, "╚══════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(a.output, "")

	fmt.Fprintf(a.output, "Run:              %s\n", s.RunID)
	fmt.Fprintf(a.output, "Node/Reference:   %s / %s\n", s.Node, s.ReferenceRegion)
	fmt.Fprintf(a.output, "Method/Format:    %s / %s\n", s.Method, s.Format)
	fmt.Fprintln(a.output, "")

	fmt.Fprintf(a.output, "INVESTMENT COST IN %s (USD/kW)\n", s.ReferenceRegion)
	fmt.Fprintln(a.output, "─────────────────────────────────────────────────────────────────────")
	fmt.Fprintf(a.output, "%-10s %-6s %-22s", "VERSION", "SCEN", "TECHNOLOGY")
	for _, y := range s.Years {
		fmt.Fprintf(a.output, " %8d", y)
	}
	fmt.Fprintln(a.output, "")
	fmt.Fprintln(a.output, "─────────────────────────────────────────────────────────────────────")
	for _, r := range s.Rows {
		fmt.Fprintf(a.output, "%-10s %-6s %-22s", truncate(r.ScenarioVersion, 10), truncate(r.Scenario, 6), truncate(r.Technology, 22))
		for _, c := range r.Costs {
			fmt.Fprintf(a.output, " %8s", c.String())
		}
		fmt.Fprintln(a.output, "")
	}
	fmt.Fprintln(a.output, "")

	if len(s.Files) > 0 {
		fmt.Fprintln(a.output, "FILES")
		fmt.Fprintln(a.output, "─────────────────────────────────────────────────────────────────────")
		for _, f := range s.Files {
			fmt.Fprintf(a.output, "  %s\n", f)
		}
		fmt.Fprintln(a.output, "")
	}
	return nil
}

func (a *CLIAdapter) outputJSON(s *Summary) error {
	encoder := json.NewEncoder(a.output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(s)
}

func (a *CLIAdapter) outputMarkdown(s *Summary) error {
	fmt.Fprintln(a.output, "# Technology Cost Projections")
	fmt.Fprintln(a.output, "")
	fmt.Fprintf(a.output, "**Node:** %s, **reference region:** %s, **method:** %s\n", s.Node, s.ReferenceRegion, s.Method)
	fmt.Fprintln(a.output, "")

	fmt.Fprint(a.output, "| Version | Scenario | Technology |")
	for _, y := range s.Years {
		fmt.Fprintf(a.output, " %d |", y)
	}
	fmt.Fprintln(a.output, "")
	fmt.Fprint(a.output, "|---------|----------|------------|")
	for range s.Years {
		fmt.Fprint(a.output, "------|")
	}
	fmt.Fprintln(a.output, "")

	for _, r := range s.Rows {
		fmt.Fprintf(a.output, "| %s | %s | `%s` |", r.ScenarioVersion, r.Scenario, r.Technology)
		for _, c := range r.Costs {
			fmt.Fprintf(a.output, " %s |", c.String())
		}
		fmt.Fprintln(a.output, "")
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// NewProjector builds a projector from configuration, loading the assumptions
// file and workbooks it names.
func NewProjector(cfg *config.Config) (*projections.Projector, error) {
	c, err := LoadCatalog(cfg.Data)
	if err != nil {
		return nil, err
	}
	return ProjectorFor(c, cfg)
}

// ProjectorFor builds a projector over an already loaded catalog
func ProjectorFor(c *catalog.Catalog, cfg *config.Config) (*projections.Projector, error) {
	p := projections.NewProjector(c, cfg.Horizon, cfg.FixedCost)

	if cfg.Data.GDPWorkbook != "" {
		obs, err := excel.ReadGDP(cfg.Data.GDPWorkbook)
		if err != nil {
			return nil, err
		}
		table, err := gdp.NewTable(obs)
		if err != nil {
			return nil, err
		}
		p.SetGDPSource(table)
	}
	return p, nil
}

// LoadCatalog returns the embedded or configured assumptions, with the survey
// replaced by the survey workbook when one is configured.
func LoadCatalog(data config.DataConfig) (*catalog.Catalog, error) {
	var (
		c   *catalog.Catalog
		err error
	)
	if data.AssumptionsFile != "" {
		c, err = assumptions.Load(data.AssumptionsFile)
	} else {
		c, err = assumptions.Default()
	}
	if err != nil {
		return nil, err
	}

	if data.SurveyWorkbook != "" {
		survey, err := excel.ReadSurvey(data.SurveyWorkbook)
		if err != nil {
			return nil, err
		}
		c.SetSurvey(survey)
		if errs := c.Validate(catalog.DefaultValidationRules()); len(errs) > 0 {
			return nil, errors.Wrap(errors.TypeData, "survey workbook "+data.SurveyWorkbook, errs[0]).
				WithContext("problems", len(errs))
		}
	}
	return c, nil
}
