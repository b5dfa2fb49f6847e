// Package gdp turns projected GDP per capita into time-varying regional cost ratios.
package gdp

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/interp"

	"cost-projections/core/catalog"
	"cost-projections/core/types"
	"cost-projections/internal/errors"
)

// Source provides GDP per capita by scenario, region and year.
type Source interface {
	PerCapita(scenario, region string, year int) (float64, error)
}

// Parametric projects GDP per capita from the catalog's base values and growth rates,
// scaled by the scenario's growth factor.
type Parametric struct {
	catalog  *catalog.Catalog
	node     *catalog.Node
	baseYear int
}

// NewParametric creates a parametric source for one node
func NewParametric(c *catalog.Catalog, node types.Node, baseYear int) (*Parametric, error) {
	n, err := c.Node(node)
	if err != nil {
		return nil, err
	}
	return &Parametric{catalog: c, node: n, baseYear: baseYear}, nil
}

// PerCapita implements Source
func (p *Parametric) PerCapita(scenario, region string, year int) (float64, error) {
	r, ok := p.node.Region(region)
	if !ok {
		return 0, errors.NotFound("region", region)
	}
	s, ok := p.catalog.Scenario(scenario)
	if !ok {
		return 0, errors.NotFound("scenario", scenario)
	}
	growth := r.GDPGrowth * s.GDPGrowthFactor
	return r.GDPPerCapita * math.Pow(1+growth, float64(year-p.baseYear)), nil
}

// Observation is one tabulated GDP per capita value
type Observation struct {
	Scenario string
	Region   string
	Year     int
	Value    float64
}

type seriesKey struct {
	scenario string
	region   string
}

// Table serves tabulated GDP, interpolating linearly between tabulated years
// and holding the first and last values outside them.
type Table struct {
	series map[seriesKey]interp.Predictor
}

// NewTable builds a Table from observations
func NewTable(obs []Observation) (*Table, error) {
	grouped := make(map[seriesKey][]Observation)
	for _, o := range obs {
		if o.Value <= 0 {
			return nil, errors.Newf(errors.TypeData, "GDP for %s/%s in %d must be positive", o.Scenario, o.Region, o.Year)
		}
		k := seriesKey{strings.ToUpper(o.Scenario), strings.ToUpper(o.Region)}
		grouped[k] = append(grouped[k], o)
	}
	if len(grouped) == 0 {
		return nil, errors.Data("GDP table is empty")
	}

	t := &Table{series: make(map[seriesKey]interp.Predictor, len(grouped))}
	for k, rows := range grouped {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
		xs := make([]float64, len(rows))
		ys := make([]float64, len(rows))
		for i, r := range rows {
			if i > 0 && r.Year == rows[i-1].Year {
				return nil, errors.Newf(errors.TypeData, "GDP for %s/%s has year %d twice", k.scenario, k.region, r.Year)
			}
			xs[i] = float64(r.Year)
			ys[i] = r.Value
		}
		if len(rows) == 1 {
			t.series[k] = constant(ys[0])
			continue
		}
		var pl interp.PiecewiseLinear
		if err := pl.Fit(xs, ys); err != nil {
			return nil, errors.Wrapf(errors.TypeData, err, "GDP series %s/%s", k.scenario, k.region)
		}
		t.series[k] = &pl
	}
	return t, nil
}

// PerCapita implements Source
func (t *Table) PerCapita(scenario, region string, year int) (float64, error) {
	p, ok := t.series[seriesKey{strings.ToUpper(scenario), strings.ToUpper(region)}]
	if !ok {
		return 0, errors.NotFound("GDP series", scenario+"/"+region)
	}
	return p.Predict(float64(year)), nil
}

type constant float64

func (c constant) Predict(float64) float64 { return float64(c) }
