package message

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cost-projections/core/types"
	"cost-projections/internal/config"
	"cost-projections/internal/errors"
	"cost-projections/internal/logging"
)

func init() {
	logging.SetLogger(zap.NewNop())
}

func invAt(year int) float64 { return 1000 - float64(year-2020) }
func fixAt(year int) float64 { return invAt(year) * 0.02 }

// filled clamps a record year to the projected model years.
func filled(year int) int { return min(max(year, 2020), 2100) }

func projections(h config.Horizon, region string) []types.Projection {
	var out []types.Projection
	for _, y := range h.ModelYears() {
		out = append(out, types.Projection{
			ScenarioVersion: "updated",
			Scenario:        "SSP2",
			Technology:      "solar_pv_ppl",
			Region:          region,
			Year:            y,
			InvCost:         invAt(y),
			FixCost:         fixAt(y),
		})
	}
	return out
}

func defaultFixedCost() config.FixedCostConfig {
	return config.Default().FixedCost
}

func TestBuildInvestmentFill(t *testing.T) {
	h := config.DefaultHorizon()
	recs, err := Build(projections(h, "R12_NAM"), h, defaultFixedCost())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if len(recs.Inv) != 31 {
		t.Fatalf("expected 31 investment records, got %d", len(recs.Inv))
	}
	if recs.Inv[0].YearVtg != 1960 || recs.Inv[len(recs.Inv)-1].YearVtg != 2110 {
		t.Errorf("expected vintages 1960..2110, got %d..%d", recs.Inv[0].YearVtg, recs.Inv[len(recs.Inv)-1].YearVtg)
	}

	for _, r := range recs.Inv {
		want := invAt(filled(r.YearVtg))
		if !r.Value.Equal(decimal.NewFromFloat(want)) {
			t.Errorf("vintage %d: expected %g, got %s", r.YearVtg, want, r.Value)
		}
		if r.Unit != "USD/kWa" {
			t.Errorf("vintage %d: unexpected unit %q", r.YearVtg, r.Unit)
		}
		if r.NodeLoc != "R12_NAM" || r.Technology != "solar_pv_ppl" {
			t.Errorf("vintage %d: unexpected key %s/%s", r.YearVtg, r.NodeLoc, r.Technology)
		}
	}
}

func TestBuildFixedCostDecay(t *testing.T) {
	h := config.DefaultHorizon()
	fc := defaultFixedCost()
	recs, err := Build(projections(h, "R12_NAM"), h, fc)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if want := 31 * 32 / 2; len(recs.Fix) != want {
		t.Fatalf("expected %d fixed cost records, got %d", want, len(recs.Fix))
	}

	for _, r := range recs.Fix {
		if r.YearAct < r.YearVtg {
			t.Fatalf("activity year %d before vintage %d", r.YearAct, r.YearVtg)
		}
		got := r.Value.InexactFloat64()
		if got < 0 {
			t.Errorf("vtg %d act %d: negative value %g", r.YearVtg, r.YearAct, got)
		}

		var want float64
		switch {
		case r.YearAct <= 2020:
			want = fixAt(2020)
		case r.YearVtg <= 2020:
			want = fixAt(2020) * math.Pow(1-fc.AnnualDecay, float64(r.YearAct-r.YearVtg))
		default:
			want = fixAt(filled(r.YearVtg)) * math.Pow(1-fc.AnnualDecay, float64(r.YearAct-r.YearVtg))
		}
		if math.Abs(got-want) > 1e-9*want {
			t.Errorf("vtg %d act %d: expected %g, got %g", r.YearVtg, r.YearAct, want, got)
		}
	}
}

func TestBuildSameVintageStartsAtProjectedValue(t *testing.T) {
	h := config.DefaultHorizon()
	recs, err := Build(projections(h, "R12_NAM"), h, defaultFixedCost())
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range recs.Fix {
		if r.YearVtg == r.YearAct && r.YearVtg >= 2020 && r.YearVtg <= 2100 {
			if !r.Value.Equal(decimal.NewFromFloat(fixAt(r.YearVtg))) {
				t.Errorf("vintage %d: expected %g, got %s", r.YearVtg, fixAt(r.YearVtg), r.Value)
			}
		}
	}
}

func TestBuildErrors(t *testing.T) {
	h := config.DefaultHorizon()

	var noAnchor []types.Projection
	for _, p := range projections(h, "R12_NAM") {
		if p.Year != 2020 {
			noAnchor = append(noAnchor, p)
		}
	}

	badDecay := defaultFixedCost()
	badDecay.AnnualDecay = 1.5

	tests := []struct {
		name    string
		projs   []types.Projection
		fc      config.FixedCostConfig
		errType errors.Type
	}{
		{"missing anchor year", noAnchor, defaultFixedCost(), errors.TypeNotFound},
		{"decay out of range", projections(h, "R12_NAM"), badDecay, errors.TypeConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.projs, h, tt.fc)
			if !errors.IsType(err, tt.errType) {
				t.Errorf("expected %s, got %v", tt.errType, err)
			}
		})
	}
}

func TestBuildOrdersSeries(t *testing.T) {
	h := config.DefaultHorizon()
	projs := append(projections(h, "R12_WEU"), projections(h, "R12_AFR")...)
	recs, err := Build(projs, h, defaultFixedCost())
	if err != nil {
		t.Fatal(err)
	}
	if recs.Inv[0].NodeLoc != "R12_AFR" || recs.Inv[len(recs.Inv)-1].NodeLoc != "R12_WEU" {
		t.Errorf("expected regions in ascending order, got %s first and %s last",
			recs.Inv[0].NodeLoc, recs.Inv[len(recs.Inv)-1].NodeLoc)
	}
}

func TestBuildIAMC(t *testing.T) {
	h := config.DefaultHorizon()
	rows := BuildIAMC(projections(h, "R12_NAM"))

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	vars := []string{rows[0].Variable, rows[1].Variable}
	want := []string{"Capital Cost|Electricity|solar_pv_ppl", "OM Cost|Electricity|solar_pv_ppl"}
	if diff := cmp.Diff(want, vars); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}
	if got := rows[0].Values[2050]; got != invAt(2050) {
		t.Errorf("capital cost 2050: expected %g, got %g", invAt(2050), got)
	}
	if got := rows[1].Values[2050]; got != fixAt(2050) {
		t.Errorf("OM cost 2050: expected %g, got %g", fixAt(2050), got)
	}
	if diff := cmp.Diff(h.ModelYears(), Years(rows)); diff != "" {
		t.Errorf("years mismatch (-want +got):\n%s", diff)
	}
}
