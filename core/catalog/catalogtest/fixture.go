// Package catalogtest provides a small, fully known catalog for tests.
package catalogtest

import (
	"cost-projections/core/catalog"
	"cost-projections/core/types"
)

// Fixture returns an R12 catalog with three regions, two scenarios and two technologies.
//
// solar_pv_ppl is surveyed in both versions for every region. coal_adv_ccs is only
// surveyed in "updated", has no value for africa, and becomes available in 2030.
func Fixture() *catalog.Catalog {
	c := catalog.NewCatalog()

	c.RegisterNode(catalog.Node{
		Name: types.NodeR12,
		Regions: []catalog.Region{
			{Code: "R12_AFR", SurveyRegion: "africa", GDPPerCapita: 5, GDPGrowth: 0.04},
			{Code: "R12_NAM", SurveyRegion: "united_states", GDPPerCapita: 50, GDPGrowth: 0.01},
			{Code: "R12_WEU", SurveyRegion: "european_union", GDPPerCapita: 50, GDPGrowth: 0.01},
		},
	})

	c.RegisterLearningCategory("none", 0)
	c.RegisterLearningCategory("medium", 0.01)

	c.RegisterScenario(catalog.Scenario{Name: "SSP1", GDPGrowthFactor: 1})
	c.RegisterScenario(catalog.Scenario{Name: "SSP2", GDPGrowthFactor: 0.5})

	c.RegisterTechnology(catalog.Technology{
		Name:             "solar_pv_ppl",
		SurveyTechnology: "solar_pv",
		FirstYear:        2020,
		Learning:         map[string]string{"SSP1": "medium", "SSP2": "none"},
	})
	c.RegisterTechnology(catalog.Technology{
		Name:             "coal_adv_ccs",
		SurveyTechnology: "coal_ccus",
		FirstYear:        2030,
		Learning:         map[string]string{"SSP1": "medium", "SSP2": "medium"},
	})

	s := c.Survey()
	s.Add(catalog.SurveyCost{Version: "updated", Technology: "solar_pv", Region: "united_states", Year: 2022, Capital: 1000, OM: 20})
	s.Add(catalog.SurveyCost{Version: "updated", Technology: "solar_pv", Region: "africa", Year: 2022, Capital: 1500, OM: 30})
	s.Add(catalog.SurveyCost{Version: "updated", Technology: "solar_pv", Region: "european_union", Year: 2022, Capital: 800, OM: 16})
	s.Add(catalog.SurveyCost{Version: "updated", Technology: "coal_ccus", Region: "united_states", Year: 2022, Capital: 5000, OM: 150})
	s.Add(catalog.SurveyCost{Version: "updated", Technology: "coal_ccus", Region: "european_union", Year: 2022, Capital: 5500, OM: 165})
	s.Add(catalog.SurveyCost{Version: "previous", Technology: "solar_pv", Region: "united_states", Year: 2021, Capital: 1200, OM: 24})
	s.Add(catalog.SurveyCost{Version: "previous", Technology: "solar_pv", Region: "africa", Year: 2021, Capital: 1800, OM: 36})
	s.Add(catalog.SurveyCost{Version: "previous", Technology: "solar_pv", Region: "european_union", Year: 2021, Capital: 900, OM: 18})

	return c
}
