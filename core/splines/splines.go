// Package splines combines learning-curve and GDP-adjusted costs into regional
// investment cost trajectories, including a smooth convergence path between them.
package splines

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/interp"

	"cost-projections/core/determinism"
	"cost-projections/core/gdp"
	"cost-projections/core/learning"
	"cost-projections/core/types"
	"cost-projections/internal/config"
	"cost-projections/internal/errors"
	"cost-projections/internal/logging"
)

// BlendOptions selects what to blend and where the trajectories meet
type BlendOptions struct {
	// ConvergenceYear is the first year the converged cost equals the GDP-adjusted cost
	ConvergenceYear int

	// ScenarioVersion selects a survey version or "all"
	ScenarioVersion string

	// Scenario selects a scenario or "all"
	Scenario string
}

// Blend builds investment cost trajectories for every selected version, scenario,
// technology and region.
func Blend(costs []types.RegionCost, learn []types.LearningCost, ratios []types.AdjustedRatio, h config.Horizon, opts BlendOptions) ([]types.InvTrajectory, error) {
	log := logging.Stage("splines")

	versions := determinism.Unique(costs, func(rc types.RegionCost) string { return rc.ScenarioVersion })
	scenarios := determinism.Unique(learn, func(lc types.LearningCost) string { return lc.Scenario })
	if err := checkSelector("scenario version", opts.ScenarioVersion, versions); err != nil {
		return nil, err
	}
	if err := checkSelector("scenario", opts.Scenario, scenarios); err != nil {
		return nil, err
	}

	years := h.ModelYears()
	if len(years) == 0 {
		return nil, errors.Newf(errors.TypeConfig, "empty model horizon %d..%d", h.FirstModelYear, h.LastModelYear)
	}
	convYear := opts.ConvergenceYear
	if last := years[len(years)-1]; convYear > last {
		log.Debug("convergence year after horizon, anchoring at last model year",
			zap.Int("convergence_year", convYear),
			zap.Int("last_model_year", last))
		convYear = last
	}

	refIdx := learning.NewIndex(learn)
	adjIdx := gdp.NewIndex(ratios)

	var result []types.InvTrajectory
	for _, rc := range costs {
		if !types.Matches(opts.ScenarioVersion, rc.ScenarioVersion) {
			continue
		}
		for _, scenario := range scenarios {
			if !types.Matches(opts.Scenario, scenario) {
				continue
			}
			rows, err := blendSeries(rc, scenario, years, convYear, refIdx, adjIdx)
			if err != nil {
				return nil, err
			}
			result = append(result, rows...)
		}
	}

	if len(result) == 0 {
		return nil, errors.Inputf("no costs for scenario version %q and scenario %q",
			opts.ScenarioVersion, opts.Scenario)
	}

	determinism.SortRows(result,
		determinism.By(func(r types.InvTrajectory) string { return r.ScenarioVersion }),
		determinism.By(func(r types.InvTrajectory) string { return r.Scenario }),
		determinism.By(func(r types.InvTrajectory) string { return r.Technology }),
		determinism.By(func(r types.InvTrajectory) string { return r.Region }),
		determinism.By(func(r types.InvTrajectory) int { return r.Year }),
	)

	log.Info("trajectories blended",
		zap.String("scenario_version", opts.ScenarioVersion),
		zap.String("scenario", opts.Scenario),
		zap.Int("convergence_year", convYear),
		zap.Int("rows", len(result)))
	return result, nil
}

func blendSeries(rc types.RegionCost, scenario string, years []int, convYear int, refIdx learning.Index, adjIdx gdp.Index) ([]types.InvTrajectory, error) {
	start := rc.LearningStart()
	rows := make([]types.InvTrajectory, len(years))

	for i, y := range years {
		ref, ok := refIdx[learning.IndexKey{
			ScenarioVersion: rc.ScenarioVersion,
			Scenario:        scenario,
			Technology:      rc.Technology,
			Year:            y,
		}]
		if !ok {
			return nil, errors.NotFound("reference cost", seriesName(rc, scenario, y))
		}
		adj, ok := adjIdx[gdp.IndexKey{
			ScenarioVersion: rc.ScenarioVersion,
			Scenario:        scenario,
			Technology:      rc.Technology,
			Region:          rc.Region,
			Year:            y,
		}]
		if !ok {
			return nil, errors.NotFound("adjusted cost ratio", seriesName(rc, scenario, y))
		}

		row := types.InvTrajectory{
			ScenarioVersion: rc.ScenarioVersion,
			Scenario:        scenario,
			Technology:      rc.Technology,
			Region:          rc.Region,
			Year:            y,
			LearningOnly:    rc.RegCostBaseYear,
			GDPAdjusted:     rc.RegCostBaseYear,
			FixToInvRatio:   rc.FixToInvRatio,
		}
		if y > start {
			row.LearningOnly = ref * rc.CostRatio
			row.GDPAdjusted = ref * adj
		}
		rows[i] = row
	}

	if convYear <= start {
		for i := range rows {
			rows[i].Converged = rows[i].GDPAdjusted
		}
		return rows, nil
	}

	xs := []float64{float64(start)}
	ys := []float64{rc.RegCostBaseYear}
	for _, r := range rows {
		if r.Year >= convYear {
			xs = append(xs, float64(r.Year))
			ys = append(ys, r.GDPAdjusted)
		}
	}
	curve, err := fit(xs, ys)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInternal, err, "convergence curve %s", seriesName(rc, scenario, convYear))
	}

	for i := range rows {
		switch y := rows[i].Year; {
		case y <= start:
			rows[i].Converged = rc.RegCostBaseYear
		case y >= convYear:
			rows[i].Converged = rows[i].GDPAdjusted
		default:
			rows[i].Converged = math.Max(0, curve.Predict(float64(y)))
		}
	}
	return rows, nil
}

// fit uses a monotone cubic when there are enough anchors to shape one.
func fit(xs, ys []float64) (interp.Predictor, error) {
	if len(xs) >= 3 {
		var fb interp.FritschButland
		if err := fb.Fit(xs, ys); err != nil {
			return nil, err
		}
		return &fb, nil
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, err
	}
	return &pl, nil
}

func checkSelector(kind, selector string, known []string) error {
	if strings.EqualFold(selector, types.All) {
		return nil
	}
	for _, k := range known {
		if strings.EqualFold(selector, k) {
			return nil
		}
	}
	return errors.Inputf("unknown %s %q: expected one of %s or %s",
		kind, selector, strings.Join(known, ", "), types.All).
		WithContext(kind, selector)
}

func seriesName(rc types.RegionCost, scenario string, year int) string {
	return types.SeriesKey{
		ScenarioVersion: rc.ScenarioVersion,
		Scenario:        scenario,
		Technology:      rc.Technology,
		Region:          rc.Region,
	}.String() + "@" + strconv.Itoa(year)
}
