package gdp

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"cost-projections/core/catalog/catalogtest"
	"cost-projections/core/regional"
	"cost-projections/core/types"
	"cost-projections/internal/config"
	"cost-projections/internal/errors"
	"cost-projections/internal/logging"
)

func init() {
	logging.SetLogger(zap.NewNop())
}

func TestAdjustedRatio(t *testing.T) {
	tests := []struct {
		name      string
		r0, g0, g float64
		want      float64
	}{
		{"base year keeps static ratio", 1.5, 0.1, 0.1, 1.5},
		{"reaching reference income reaches ratio one", 1.5, 0.1, 1, 1},
		{"halfway in income is halfway in ratio", 1.5, 0.2, 0.6, 1.25},
		{"equal base income keeps static ratio", 0.8, 1, 3, 0.8},
		{"negative results are clamped", 0.5, 2, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdjustedRatio(tt.r0, tt.g0, tt.g)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected %g, got %g", tt.want, got)
			}
		})
	}
}

func TestParametricSource(t *testing.T) {
	src, err := NewParametric(catalogtest.Fixture(), types.NodeR12, 2020)
	if err != nil {
		t.Fatal(err)
	}

	got, err := src.PerCapita("SSP2", "R12_AFR", 2030)
	if err != nil {
		t.Fatal(err)
	}
	want := 5 * math.Pow(1.02, 10)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %g, got %g", want, got)
	}

	if _, err := src.PerCapita("SSP9", "R12_AFR", 2030); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected not found for unknown scenario, got %v", err)
	}
	if _, err := src.PerCapita("SSP2", "R11_AFR", 2030); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected not found for foreign region, got %v", err)
	}
}

func TestTableSource(t *testing.T) {
	table, err := NewTable([]Observation{
		{Scenario: "SSP2", Region: "R12_AFR", Year: 2030, Value: 6},
		{Scenario: "SSP2", Region: "R12_AFR", Year: 2020, Value: 4},
		{Scenario: "ssp2", Region: "r12_nam", Year: 2020, Value: 50},
	})
	if err != nil {
		t.Fatalf("NewTable error: %v", err)
	}

	tests := []struct {
		region string
		year   int
		want   float64
	}{
		{"R12_AFR", 2020, 4},
		{"R12_AFR", 2025, 5},
		{"R12_AFR", 2010, 4},
		{"R12_AFR", 2050, 6},
		{"R12_NAM", 2070, 50},
	}
	for _, tt := range tests {
		got, err := table.PerCapita("SSP2", tt.region, tt.year)
		if err != nil {
			t.Fatalf("%s %d: %v", tt.region, tt.year, err)
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%s %d: expected %g, got %g", tt.region, tt.year, tt.want, got)
		}
	}

	if _, err := table.PerCapita("SSP1", "R12_AFR", 2020); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestTableRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		obs  []Observation
	}{
		{"empty", nil},
		{"non-positive", []Observation{{"SSP2", "R12_AFR", 2020, 0}}},
		{"duplicate year", []Observation{{"SSP2", "R12_AFR", 2020, 1}, {"SSP2", "R12_AFR", 2020, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTable(tt.obs); !errors.IsType(err, errors.TypeData) {
				t.Errorf("expected data error, got %v", err)
			}
		})
	}
}

func TestAdjustRatios(t *testing.T) {
	c := catalogtest.Fixture()
	h := config.DefaultHorizon()
	sel, err := regional.Resolve(c, "R12", "", h.BaseYear)
	if err != nil {
		t.Fatal(err)
	}
	costs, err := regional.Differentiate(c, sel)
	if err != nil {
		t.Fatal(err)
	}
	src, err := NewParametric(c, sel.Node, h.BaseYear)
	if err != nil {
		t.Fatal(err)
	}

	rows, err := AdjustRatios(c, costs, src, h, sel)
	if err != nil {
		t.Fatalf("AdjustRatios error: %v", err)
	}
	if want := len(costs) * 2 * 17; len(rows) != want {
		t.Fatalf("expected %d rows, got %d", want, len(rows))
	}

	type staticKey struct{ version, tech, region string }
	static := make(map[staticKey]float64, len(costs))
	for _, rc := range costs {
		static[staticKey{rc.ScenarioVersion, rc.Technology, rc.Region}] = rc.CostRatio
	}

	idx := NewIndex(rows)
	for _, r := range rows {
		if r.CostRatio < 0 {
			t.Errorf("%+v: negative ratio", r)
		}
		if r.Region == "R12_NAM" && r.CostRatio != 1 {
			t.Errorf("%+v: reference ratio must be 1", r)
		}
		// R12_WEU has the reference region's income path
		want := static[staticKey{r.ScenarioVersion, r.Technology, r.Region}]
		if r.Region == "R12_WEU" && math.Abs(r.CostRatio-want) > 1e-12 {
			t.Errorf("%+v: equal-income region should keep its static ratio %g", r, want)
		}
	}

	if got := idx[IndexKey{"previous", "SSP2", "solar_pv_ppl", "R12_WEU", 2050}]; math.Abs(got-0.75) > 1e-12 {
		t.Errorf("previous survey ratio: expected 0.75, got %g", got)
	}
	if got := idx[IndexKey{"updated", "SSP2", "solar_pv_ppl", "R12_WEU", 2050}]; math.Abs(got-0.8) > 1e-12 {
		t.Errorf("updated survey ratio: expected 0.8, got %g", got)
	}

	base := idx[IndexKey{"updated", "SSP1", "solar_pv_ppl", "R12_AFR", 2020}]
	if math.Abs(base-1.5) > 1e-12 {
		t.Errorf("expected base-year ratio 1.5, got %g", base)
	}

	g := 0.1 * math.Pow(1.04/1.01, 30)
	want := AdjustedRatio(1.5, 0.1, g)
	got := idx[IndexKey{"updated", "SSP1", "solar_pv_ppl", "R12_AFR", 2050}]
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("2050 ratio: expected %g, got %g", want, got)
	}
	if got >= base {
		t.Errorf("faster-growing region should move toward the reference ratio, got %g from %g", got, base)
	}
}
