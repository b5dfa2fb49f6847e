// Package learning extrapolates the reference region's investment cost over the
// model horizon with a per-technology annual cost-reduction rate.
package learning

import (
	"math"

	"go.uber.org/zap"

	"cost-projections/core/catalog"
	"cost-projections/core/determinism"
	"cost-projections/core/regional"
	"cost-projections/core/types"
	"cost-projections/internal/config"
	"cost-projections/internal/errors"
	"cost-projections/internal/logging"
)

// CostAt returns the learning-curve cost in year given the base cost, the last
// year that keeps it, and the annual reduction rate.
func CostAt(base float64, start, year int, rate float64) float64 {
	if year <= start {
		return base
	}
	return base * math.Pow(1-rate, float64(year-start))
}

// Project returns the reference-region cost trajectory for every survey version,
// scenario and technology found in costs.
func Project(c *catalog.Catalog, costs []types.RegionCost, h config.Horizon, sel regional.Selection) ([]types.LearningCost, error) {
	log := logging.Stage("learning")
	years := h.ModelYears()
	if len(years) == 0 {
		return nil, errors.Newf(errors.TypeConfig, "empty model horizon %d..%d", h.FirstModelYear, h.LastModelYear)
	}

	var result []types.LearningCost
	for _, rc := range costs {
		if rc.Region != sel.ReferenceRegion {
			continue
		}
		tech, ok := c.Technology(rc.Technology)
		if !ok {
			return nil, errors.NotFound("technology", rc.Technology)
		}

		start := rc.LearningStart()
		for _, scenario := range c.Scenarios() {
			rate, err := c.CostReduction(tech, scenario.Name)
			if err != nil {
				return nil, err
			}
			for _, y := range years {
				result = append(result, types.LearningCost{
					ScenarioVersion: rc.ScenarioVersion,
					Scenario:        scenario.Name,
					Technology:      rc.Technology,
					Year:            y,
					CostReduction:   rate,
					InvCost:         CostAt(rc.RefCostBaseYear, start, y, rate),
				})
			}
		}
	}

	if len(result) == 0 {
		return nil, errors.NotFound("reference region costs", sel.ReferenceRegion)
	}

	determinism.SortRows(result,
		determinism.By(func(r types.LearningCost) string { return r.ScenarioVersion }),
		determinism.By(func(r types.LearningCost) string { return r.Scenario }),
		determinism.By(func(r types.LearningCost) string { return r.Technology }),
		determinism.By(func(r types.LearningCost) int { return r.Year }),
	)

	log.Info("reference costs projected",
		zap.String("reference_region", sel.ReferenceRegion),
		zap.Int("rows", len(result)))
	return result, nil
}

// Index keys learning costs for lookups by the blender.
type Index map[IndexKey]float64

// IndexKey identifies one learning cost
type IndexKey struct {
	ScenarioVersion string
	Scenario        string
	Technology      string
	Year            int
}

// NewIndex builds an Index from rows
func NewIndex(rows []types.LearningCost) Index {
	idx := make(Index, len(rows))
	for _, r := range rows {
		idx[IndexKey{r.ScenarioVersion, r.Scenario, r.Technology, r.Year}] = r.InvCost
	}
	return idx
}
