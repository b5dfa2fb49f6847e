package message

import (
	"go.uber.org/zap"

	"cost-projections/core/determinism"
	"cost-projections/core/types"
	"cost-projections/internal/logging"
)

// IAMCUnit is the unit of wide-format cost variables
const IAMCUnit = "USD/kW"

const (
	capitalCostPrefix = "Capital Cost|Electricity|"
	omCostPrefix      = "OM Cost|Electricity|"
)

// BuildIAMC pivots projections into one row per version, scenario, region and
// variable with a value per model year.
func BuildIAMC(projs []types.Projection) []types.IAMCRow {
	type rowKey struct {
		version, scenario, region, variable string
	}
	rows := make(map[rowKey]*types.IAMCRow)
	get := func(p types.Projection, variable string) *types.IAMCRow {
		k := rowKey{p.ScenarioVersion, p.Scenario, p.Region, variable}
		r, ok := rows[k]
		if !ok {
			r = &types.IAMCRow{
				ScenarioVersion: p.ScenarioVersion,
				Scenario:        p.Scenario,
				Region:          p.Region,
				Variable:        variable,
				Unit:            IAMCUnit,
				Values:          make(map[int]float64),
			}
			rows[k] = r
		}
		return r
	}

	for _, p := range projs {
		get(p, capitalCostPrefix+p.Technology).Values[p.Year] = p.InvCost
		get(p, omCostPrefix+p.Technology).Values[p.Year] = p.FixCost
	}

	out := make([]types.IAMCRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	determinism.SortRows(out,
		determinism.By(func(r types.IAMCRow) string { return r.ScenarioVersion }),
		determinism.By(func(r types.IAMCRow) string { return r.Scenario }),
		determinism.By(func(r types.IAMCRow) string { return r.Region }),
		determinism.By(func(r types.IAMCRow) string { return r.Variable }),
	)

	logging.Stage("message").Info("IAMC rows built", zap.Int("rows", len(out)))
	return out
}

// Years returns the sorted union of years across rows.
func Years(rows []types.IAMCRow) []int {
	seen := make(map[int]struct{})
	for _, r := range rows {
		for y := range r.Values {
			seen[y] = struct{}{}
		}
	}
	return determinism.SortedKeys(seen)
}
