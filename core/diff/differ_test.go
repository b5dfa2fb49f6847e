package diff

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"cost-projections/core/types"
	"cost-projections/internal/errors"
)

func proj(version, scenario, tech, region string, year int, inv float64) types.Projection {
	return types.Projection{
		ScenarioVersion: version,
		Scenario:        scenario,
		Technology:      tech,
		Region:          region,
		Year:            year,
		InvCost:         inv,
		FixCost:         inv / 50,
	}
}

func keys(entries []*Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key.String())
	}
	return out
}

func TestDiffClassifiesChanges(t *testing.T) {
	before := []types.Projection{
		proj("previous", "SSP2", "solar_pv_ppl", "R12_NAM", 2020, 1200),
		proj("previous", "SSP2", "solar_pv_ppl", "R12_NAM", 2030, 1000),
		proj("previous", "SSP2", "wind_ppl", "R12_NAM", 2020, 1500),
		proj("previous", "SSP2", "hydro_ppl", "R12_NAM", 2020, 2000),
	}
	after := []types.Projection{
		proj("updated", "SSP2", "solar_pv_ppl", "R12_NAM", 2020, 1000),
		proj("updated", "SSP2", "solar_pv_ppl", "R12_NAM", 2030, 1000.5),
		proj("updated", "SSP2", "wind_ppl", "R12_NAM", 2020, 1500),
		proj("updated", "SSP2", "coal_adv_ccs", "R12_NAM", 2020, 5000),
	}

	res, err := NewDiffer(0.001, FieldInvCost).Diff(before, after)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}

	tests := []struct {
		name    string
		entries []*Entry
		want    []string
	}{
		{"added", res.Added, []string{"SSP2/coal_adv_ccs/R12_NAM/2020"}},
		{"removed", res.Removed, []string{"SSP2/hydro_ppl/R12_NAM/2020"}},
		{"changed", res.Changed, []string{"SSP2/solar_pv_ppl/R12_NAM/2020"}},
		{"unchanged", res.Unchanged, []string{"SSP2/solar_pv_ppl/R12_NAM/2030", "SSP2/wind_ppl/R12_NAM/2020"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, keys(tt.entries)); diff != "" {
				t.Errorf("%s mismatch (-want +got):\n%s", tt.name, diff)
			}
		})
	}

	changed := res.Changed[0]
	if got := changed.Delta.String(); got != "-200" {
		t.Errorf("expected delta -200, got %s", got)
	}
	if changed.DeltaPercent > -16.66 || changed.DeltaPercent < -16.67 {
		t.Errorf("expected about -16.67%%, got %f", changed.DeltaPercent)
	}
	if res.MaxDecrease != changed.DeltaPercent || res.MaxIncrease != 0 {
		t.Errorf("unexpected extremes %f / %f", res.MaxDecrease, res.MaxIncrease)
	}
	if res.Added[0].Before.String() != "0" || res.Added[0].After.String() != "5000" {
		t.Errorf("unexpected added entry %+v", res.Added[0])
	}
	if res.Total() != 5 {
		t.Errorf("expected 5 keys, got %d", res.Total())
	}
}

func TestDiffFixCostField(t *testing.T) {
	before := []types.Projection{proj("updated", "SSP1", "solar_pv_ppl", "R12_AFR", 2050, 1000)}
	after := []types.Projection{proj("updated", "SSP1", "solar_pv_ppl", "R12_AFR", 2050, 1100)}

	res, err := NewDiffer(0, FieldFixCost).Diff(before, after)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if len(res.Changed) != 1 {
		t.Fatalf("expected one change, got %d", len(res.Changed))
	}
	if got := res.Changed[0].Delta.String(); got != "2" {
		t.Errorf("expected fixed cost delta 2, got %s", got)
	}
}

func TestDiffIgnoreScenario(t *testing.T) {
	before := []types.Projection{proj("updated", "SSP1", "solar_pv_ppl", "R12_NAM", 2050, 800)}
	after := []types.Projection{proj("updated", "SSP2", "solar_pv_ppl", "R12_NAM", 2050, 1000)}

	d := NewDiffer(0, FieldInvCost)
	res, err := d.Diff(before, after)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if len(res.Added) != 1 || len(res.Removed) != 1 {
		t.Errorf("scenario keys should not match: %s", res.Summary())
	}

	d.IgnoreScenario = true
	res, err = d.Diff(before, after)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if len(res.Changed) != 1 || res.Changed[0].DeltaPercent != 25 {
		t.Errorf("expected a 25%% change, got %s", res.Summary())
	}
}

func TestDiffRejectsDuplicateKeys(t *testing.T) {
	rows := []types.Projection{
		proj("previous", "SSP1", "solar_pv_ppl", "R12_NAM", 2020, 1200),
		proj("updated", "SSP1", "solar_pv_ppl", "R12_NAM", 2020, 1000),
	}
	_, err := NewDiffer(0, FieldInvCost).Diff(rows, nil)
	if !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected input error, got %v", err)
	}
}

func TestTopChangesOrder(t *testing.T) {
	before := []types.Projection{
		proj("updated", "SSP1", "a", "R12_NAM", 2020, 100),
		proj("updated", "SSP1", "b", "R12_NAM", 2020, 100),
		proj("updated", "SSP1", "c", "R12_NAM", 2020, 100),
	}
	after := []types.Projection{
		proj("updated", "SSP1", "a", "R12_NAM", 2020, 110),
		proj("updated", "SSP1", "b", "R12_NAM", 2020, 50),
		proj("updated", "SSP1", "c", "R12_NAM", 2020, 120),
	}
	res, err := NewDiffer(0, FieldInvCost).Diff(before, after)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}

	top := res.TopChanges(2)
	want := []string{"SSP1/b/R12_NAM/2020", "SSP1/c/R12_NAM/2020"}
	if diff := cmp.Diff(want, keys(top)); diff != "" {
		t.Errorf("TopChanges mismatch (-want +got):\n%s", diff)
	}
	if got := len(res.TopChanges(10)); got != 3 {
		t.Errorf("expected all 3 changes, got %d", got)
	}
	if !strings.Contains(res.Summary(), "3 values changed") {
		t.Errorf("unexpected summary %q", res.Summary())
	}
}

func TestParseField(t *testing.T) {
	for in, want := range map[string]Field{"": FieldInvCost, "INV_COST": FieldInvCost, "fix_cost": FieldFixCost} {
		got, err := ParseField(in)
		if err != nil || got != want {
			t.Errorf("ParseField(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseField("var_cost"); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected input error, got %v", err)
	}
}
