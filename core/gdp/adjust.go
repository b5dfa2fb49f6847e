package gdp

import (
	"math"

	"go.uber.org/zap"

	"cost-projections/core/catalog"
	"cost-projections/core/determinism"
	"cost-projections/core/regional"
	"cost-projections/core/types"
	"cost-projections/internal/config"
	"cost-projections/internal/logging"
)

// ratioTolerance treats base-year GDP ratios this close to 1 as equal to the reference.
const ratioTolerance = 1e-9

// AdjustedRatio places a region's cost ratio on the line through the reference
// point (1, 1) and the region's base-year point (g0, r0).
func AdjustedRatio(r0, g0, g float64) float64 {
	if math.Abs(g0-1) < ratioTolerance {
		return r0
	}
	slope := (r0 - 1) / (g0 - 1)
	return math.Max(0, slope*g+(1-slope))
}

// AdjustRatios computes GDP-dependent cost ratios for every region cost row,
// scenario and model year.
func AdjustRatios(c *catalog.Catalog, costs []types.RegionCost, src Source, h config.Horizon, sel regional.Selection) ([]types.AdjustedRatio, error) {
	log := logging.Stage("gdp")
	years := h.ModelYears()

	// GDP ratios do not depend on version or technology; compute them once per
	// scenario and region.
	type ratioKey struct {
		scenario string
		region   string
	}
	base := make(map[ratioKey]float64)
	series := make(map[ratioKey][]float64)

	ratio := func(scenario, region string, year int) (float64, error) {
		g, err := src.PerCapita(scenario, region, year)
		if err != nil {
			return 0, err
		}
		gRef, err := src.PerCapita(scenario, sel.ReferenceRegion, year)
		if err != nil {
			return 0, err
		}
		return g / gRef, nil
	}

	regions := determinism.Unique(costs, func(rc types.RegionCost) string { return rc.Region })
	for _, scenario := range c.Scenarios() {
		for _, region := range regions {
			k := ratioKey{scenario.Name, region}
			g0, err := ratio(scenario.Name, region, sel.BaseYear)
			if err != nil {
				return nil, err
			}
			base[k] = g0
			gs := make([]float64, len(years))
			for i, y := range years {
				if gs[i], err = ratio(scenario.Name, region, y); err != nil {
					return nil, err
				}
			}
			series[k] = gs
		}
	}

	result := make([]types.AdjustedRatio, 0, len(costs)*len(c.Scenarios())*len(years))
	for _, rc := range costs {
		for _, scenario := range c.Scenarios() {
			k := ratioKey{scenario.Name, rc.Region}
			for i, y := range years {
				g := series[k][i]
				adj := 1.0
				if rc.Region != sel.ReferenceRegion {
					adj = AdjustedRatio(rc.CostRatio, base[k], g)
				}
				result = append(result, types.AdjustedRatio{
					ScenarioVersion: rc.ScenarioVersion,
					Scenario:        scenario.Name,
					Technology:      rc.Technology,
					Region:          rc.Region,
					Year:            y,
					GDPRatio:        g,
					CostRatio:       adj,
				})
			}
		}
	}

	log.Info("GDP-adjusted cost ratios computed",
		zap.Int("regions", len(regions)),
		zap.Int("rows", len(result)))
	return result, nil
}

// Index keys adjusted ratios for lookups by the blender.
type Index map[IndexKey]float64

// IndexKey identifies one adjusted ratio
type IndexKey struct {
	ScenarioVersion string
	Scenario        string
	Technology      string
	Region          string
	Year            int
}

// NewIndex builds an Index from rows
func NewIndex(rows []types.AdjustedRatio) Index {
	idx := make(Index, len(rows))
	for _, r := range rows {
		idx[IndexKey{r.ScenarioVersion, r.Scenario, r.Technology, r.Region, r.Year}] = r.CostRatio
	}
	return idx
}
