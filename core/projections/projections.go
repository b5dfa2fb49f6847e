// Package projections is the entry point of the cost projection pipeline.
// The CLI is a thin wrapper around Projector.
package projections

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cost-projections/core/catalog"
	"cost-projections/core/gdp"
	"cost-projections/core/learning"
	"cost-projections/core/message"
	"cost-projections/core/regional"
	"cost-projections/core/splines"
	"cost-projections/core/types"
	"cost-projections/internal/config"
	"cost-projections/internal/errors"
	"cost-projections/internal/logging"
)

// Options selects what the pipeline projects and how results are laid out
type Options struct {
	// Node is the spatial resolution (R11, R12, R20)
	Node string

	// ReferenceRegion defaults to the node's reference when empty
	ReferenceRegion string

	// BaseYear is the year survey costs are attached to
	BaseYear int

	// ScenarioVersion is a survey version or "all"
	ScenarioVersion string

	// Scenario is a scenario name or "all"
	Scenario string

	// Method is learning, gdp or convergence
	Method string

	// ConvergenceYear is used by the convergence method
	ConvergenceYear int

	// Format is message or iamc
	Format string
}

// OptionsFromConfig returns the configured default options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Node:            cfg.Projection.Node,
		ReferenceRegion: cfg.Projection.ReferenceRegion,
		BaseYear:        cfg.Horizon.BaseYear,
		ScenarioVersion: cfg.Projection.ScenarioVersion,
		Scenario:        cfg.Projection.Scenario,
		Method:          cfg.Projection.Method,
		ConvergenceYear: cfg.Projection.ConvergenceYear,
		Format:          cfg.Projection.Format,
	}
}

// Projector runs the five pipeline stages against one assumptions catalog
type Projector struct {
	catalog   *catalog.Catalog
	horizon   config.Horizon
	fixedCost config.FixedCostConfig

	// gdpSource overrides the catalog's parametric GDP projections
	gdpSource gdp.Source
}

// NewProjector creates a projector
func NewProjector(c *catalog.Catalog, horizon config.Horizon, fixedCost config.FixedCostConfig) *Projector {
	return &Projector{
		catalog:   c,
		horizon:   horizon,
		fixedCost: fixedCost,
	}
}

// SetGDPSource replaces the parametric GDP projections, e.g. with a workbook table
func (p *Projector) SetGDPSource(src gdp.Source) {
	p.gdpSource = src
}

// Result is the output of one pipeline run
type Result struct {
	// RunID identifies the run in logs and written metadata
	RunID string

	// Selection is the validated spatial selection
	Selection regional.Selection

	// Method and Format as resolved from the options
	Method types.Method
	Format types.Format

	// Trajectories holds every candidate investment cost path
	Trajectories []types.InvTrajectory

	// Projections holds the final costs for the chosen method
	Projections []types.Projection

	// Records is set for the message format
	Records *message.Records

	// IAMC is set for the iamc format
	IAMC []types.IAMCRow

	// Timing
	StartedAt time.Time
	Duration  time.Duration
}

// Project runs the pipeline
func (p *Projector) Project(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	h := p.horizon
	if opts.BaseYear != 0 {
		h.BaseYear = opts.BaseYear
	}
	sel, err := regional.Resolve(p.catalog, opts.Node, opts.ReferenceRegion, h.BaseYear)
	if err != nil {
		return nil, err
	}

	method, err := types.ParseMethod(opts.Method)
	if err != nil {
		return nil, err
	}
	format, err := types.ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	if method == types.MethodConvergence && opts.ConvergenceYear <= 0 {
		return nil, errors.Inputf("convergence method needs a convergence year, got %d", opts.ConvergenceYear)
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Selection: sel,
		Method:    method,
		Format:    format,
		StartedAt: start.UTC(),
	}
	log := logging.Logger.With(zap.String("run_id", result.RunID))
	log.Info("projecting technology costs",
		zap.String("node", sel.Node.String()),
		zap.String("reference_region", sel.ReferenceRegion),
		zap.Int("base_year", sel.BaseYear),
		zap.String("scenario_version", opts.ScenarioVersion),
		zap.String("scenario", opts.Scenario),
		zap.String("method", string(method)),
		zap.Int("convergence_year", opts.ConvergenceYear),
		zap.String("format", string(format)))

	costs, err := regional.Differentiate(p.catalog, sel)
	if err != nil {
		return nil, errors.Wrap(errors.TypeOf(err), "differentiating regional costs", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	learn, err := learning.Project(p.catalog, costs, h, sel)
	if err != nil {
		return nil, errors.Wrap(errors.TypeOf(err), "projecting learning costs", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := p.gdpSource
	if src == nil {
		if src, err = gdp.NewParametric(p.catalog, sel.Node, h.BaseYear); err != nil {
			return nil, err
		}
	}
	ratios, err := gdp.AdjustRatios(p.catalog, costs, src, h, sel)
	if err != nil {
		return nil, errors.Wrap(errors.TypeOf(err), "adjusting cost ratios", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Trajectories, err = splines.Blend(costs, learn, ratios, h, splines.BlendOptions{
		ConvergenceYear: opts.ConvergenceYear,
		ScenarioVersion: opts.ScenarioVersion,
		Scenario:        opts.Scenario,
	})
	if err != nil {
		return nil, err
	}

	result.Projections = Finalize(result.Trajectories, method)

	switch format {
	case types.FormatMessage:
		if result.Records, err = message.Build(result.Projections, h, p.fixedCost); err != nil {
			return nil, err
		}
	case types.FormatIAMC:
		result.IAMC = message.BuildIAMC(result.Projections)
	}

	result.Duration = time.Since(start)
	log.Info("projection complete",
		zap.Int("projections", len(result.Projections)),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// Finalize keeps the investment cost of the chosen method and derives the fixed
// O&M cost from the fix-to-inv ratio.
func Finalize(traj []types.InvTrajectory, method types.Method) []types.Projection {
	out := make([]types.Projection, len(traj))
	for i, t := range traj {
		inv := t.Converged
		switch method {
		case types.MethodLearning:
			inv = t.LearningOnly
		case types.MethodGDP:
			inv = t.GDPAdjusted
		}
		out[i] = types.Projection{
			ScenarioVersion: t.ScenarioVersion,
			Scenario:        t.Scenario,
			Technology:      t.Technology,
			Region:          t.Region,
			Year:            t.Year,
			InvCost:         inv,
			FixCost:         inv * t.FixToInvRatio,
		}
	}
	return out
}
