package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cost-projections/core/diff"
	"cost-projections/core/projections"
	"cost-projections/core/types"
	"cost-projections/core/ui"
	"cost-projections/internal/logging"
)

// CompareRequest describes two pipeline runs to compare
type CompareRequest struct {
	// Before and After are the selections of the two runs
	Before projections.Options
	After  projections.Options

	// Field is the compared cost
	Field diff.Field

	// Threshold is the relative change treated as unchanged
	Threshold float64

	// Region restricts the comparison to one region when set
	Region string

	// Top limits the listed changes
	Top int

	// NoColor disables terminal colors
	NoColor bool
}

// Compare runs the pipeline twice and prints the differences
func (a *CLIAdapter) Compare(ctx context.Context, req *CompareRequest) (*diff.Result, error) {
	before, err := a.projector.Project(ctx, req.Before)
	if err != nil {
		return nil, err
	}
	after, err := a.projector.Project(ctx, req.After)
	if err != nil {
		return nil, err
	}

	d := diff.NewDiffer(req.Threshold, req.Field)
	d.IgnoreScenario = !strings.EqualFold(req.Before.Scenario, req.After.Scenario)

	res, err := d.Diff(filterRegion(before.Projections, req.Region), filterRegion(after.Projections, req.Region))
	if err != nil {
		return nil, err
	}

	logging.Info("runs compared",
		zap.String("first_run", before.RunID),
		zap.String("second_run", after.RunID),
		zap.String("field", string(res.Field)),
		zap.Int("added", len(res.Added)),
		zap.Int("removed", len(res.Removed)),
		zap.Int("changed", len(res.Changed)))

	switch a.format {
	case SummaryJSON:
		encoder := json.NewEncoder(a.output)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(res)
	case SummaryNone:
	default:
		a.renderDiff(req, before, after, res)
	}
	return res, err
}

func filterRegion(rows []types.Projection, region string) []types.Projection {
	if region == "" {
		return rows
	}
	var out []types.Projection
	for _, p := range rows {
		if strings.EqualFold(p.Region, region) {
			out = append(out, p)
		}
	}
	return out
}

func describe(res *projections.Result, opts projections.Options) string {
	return fmt.Sprintf("%s %s/%s method=%s convergence=%d (run %s)",
		res.Selection.Node, opts.ScenarioVersion, opts.Scenario, res.Method, opts.ConvergenceYear, res.RunID)
}

func (a *CLIAdapter) renderDiff(req *CompareRequest, before, after *projections.Result, res *diff.Result) {
	w := ui.NewWriter(a.output, req.NoColor)

	w.Header("Cost Comparison")
	w.Info("first:  %s", describe(before, req.Before))
	w.Info("second: %s", describe(after, req.After))
	w.Println("")

	counts := w.NewTable("CHANGE", "VALUES")
	counts.AddRow(diff.ChangeAdded.String(), fmt.Sprint(len(res.Added)))
	counts.AddRow(diff.ChangeRemoved.String(), fmt.Sprint(len(res.Removed)))
	counts.AddRow(diff.ChangeModified.String(), fmt.Sprint(len(res.Changed)))
	counts.AddRow(diff.ChangeUnchanged.String(), fmt.Sprint(res.UnchangedCount))
	counts.Render()

	top := req.Top
	if top <= 0 {
		top = 10
	}
	cl := w.NewChangeList("Largest Changes (" + string(res.Field) + ")")
	for _, e := range limit(res.Added, top) {
		cl.Added = append(cl.Added, ui.ChangeItem{Label: e.Key.String(), NewCost: e.After.Round(2).String()})
	}
	for _, e := range limit(res.Removed, top) {
		cl.Removed = append(cl.Removed, ui.ChangeItem{Label: e.Key.String(), OldCost: e.Before.Round(2).String()})
	}
	for _, e := range res.TopChanges(top) {
		cl.Changed = append(cl.Changed, ui.ChangeItem{
			Label:      e.Key.String(),
			OldCost:    e.Before.Round(2).String(),
			NewCost:    e.After.Round(2).String(),
			Change:     fmt.Sprintf("%+.1f%%", e.DeltaPercent),
			IsIncrease: e.DeltaPercent > 0,
		})
	}
	cl.Footer = strings.TrimRight(res.Summary(), "\n")
	cl.Render()

	if len(res.Added) > top || len(res.Removed) > top {
		w.Warning("only the first %d added and removed values are listed", top)
	}
}

func limit(entries []*diff.Entry, n int) []*diff.Entry {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}
