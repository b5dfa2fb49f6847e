// Package types - Cost table rows passed between pipeline stages
package types

import "github.com/shopspring/decimal"

// RegionCost is the differentiator output for one region and technology
type RegionCost struct {
	// ScenarioVersion is the survey vintage
	ScenarioVersion string `json:"scenario_version"`

	// Technology is the model technology name
	Technology string `json:"technology"`

	// Region is the model region code
	Region string `json:"region"`

	// ReferenceRegion anchors the ratio
	ReferenceRegion string `json:"reference_region"`

	// BaseYear is the year the costs are attached to
	BaseYear int `json:"base_year"`

	// FirstTechnologyYear is the first year the technology can be built
	FirstTechnologyYear int `json:"first_technology_year"`

	// RefCostBaseYear is the reference region's investment cost
	RefCostBaseYear float64 `json:"ref_cost_base_year"`

	// CostRatio is the regional cost relative to the reference region
	CostRatio float64 `json:"cost_ratio"`

	// RegCostBaseYear is the regional investment cost
	RegCostBaseYear float64 `json:"reg_cost_base_year"`

	// FixToInvRatio converts investment cost into fixed O&M cost
	FixToInvRatio float64 `json:"fix_to_inv_ratio"`
}

// LearningStart is the last year that carries the base-year cost.
func (c RegionCost) LearningStart() int {
	if c.FirstTechnologyYear > c.BaseYear {
		return c.FirstTechnologyYear
	}
	return c.BaseYear
}

// LearningCost is the reference-region investment cost on the learning curve
type LearningCost struct {
	ScenarioVersion string  `json:"scenario_version"`
	Scenario        string  `json:"scenario"`
	Technology      string  `json:"technology"`
	Year            int     `json:"year"`
	CostReduction   float64 `json:"cost_reduction"`
	InvCost         float64 `json:"inv_cost"`
}

// AdjustedRatio is a GDP-dependent cost ratio for one year
type AdjustedRatio struct {
	ScenarioVersion string  `json:"scenario_version"`
	Scenario        string  `json:"scenario"`
	Technology      string  `json:"technology"`
	Region          string  `json:"region"`
	Year            int     `json:"year"`
	GDPRatio        float64 `json:"gdp_ratio"`
	CostRatio       float64 `json:"cost_ratio"`
}

// InvTrajectory carries every candidate investment cost for one year
type InvTrajectory struct {
	ScenarioVersion string  `json:"scenario_version"`
	Scenario        string  `json:"scenario"`
	Technology      string  `json:"technology"`
	Region          string  `json:"region"`
	Year            int     `json:"year"`
	LearningOnly    float64 `json:"inv_cost_learning_only"`
	GDPAdjusted     float64 `json:"inv_cost_gdp_adj"`
	Converged       float64 `json:"inv_cost_converge"`
	FixToInvRatio   float64 `json:"fix_to_inv_ratio"`
}

// Projection is the final cost pair for one year
type Projection struct {
	ScenarioVersion string  `json:"scenario_version"`
	Scenario        string  `json:"scenario"`
	Technology      string  `json:"technology"`
	Region          string  `json:"region"`
	Year            int     `json:"year"`
	InvCost         float64 `json:"inv_cost"`
	FixCost         float64 `json:"fix_cost"`
}

// SeriesKey identifies one trajectory
type SeriesKey struct {
	ScenarioVersion string
	Scenario        string
	Technology      string
	Region          string
}

// Key returns the series key of a projection row
func (p Projection) Key() SeriesKey {
	return SeriesKey{p.ScenarioVersion, p.Scenario, p.Technology, p.Region}
}

// String joins the key parts for logs and sorting
func (k SeriesKey) String() string {
	return k.ScenarioVersion + "/" + k.Scenario + "/" + k.Technology + "/" + k.Region
}

// InvCostRecord is an investment cost parameter row
type InvCostRecord struct {
	ScenarioVersion string          `json:"scenario_version"`
	Scenario        string          `json:"scenario"`
	NodeLoc         string          `json:"node_loc"`
	Technology      string          `json:"technology"`
	YearVtg         int             `json:"year_vtg"`
	Value           decimal.Decimal `json:"value"`
	Unit            string          `json:"unit"`
}

// FixCostRecord is a fixed O&M cost parameter row
type FixCostRecord struct {
	ScenarioVersion string          `json:"scenario_version"`
	Scenario        string          `json:"scenario"`
	NodeLoc         string          `json:"node_loc"`
	Technology      string          `json:"technology"`
	YearVtg         int             `json:"year_vtg"`
	YearAct         int             `json:"year_act"`
	Value           decimal.Decimal `json:"value"`
	Unit            string          `json:"unit"`
}

// IAMCRow is one wide-format row
type IAMCRow struct {
	ScenarioVersion string          `json:"scenario_version"`
	Scenario        string          `json:"scenario"`
	Region          string          `json:"region"`
	Variable        string          `json:"variable"`
	Unit            string          `json:"unit"`
	Values          map[int]float64 `json:"values"`
}
