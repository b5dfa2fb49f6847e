package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"cost-projections/core/types"
	"cost-projections/internal/errors"
)

func TestValidateReportsEveryProblem(t *testing.T) {
	c := NewCatalog()
	c.RegisterNode(Node{
		Name:    types.NodeR11,
		Regions: []Region{{Code: "R11_AFR", SurveyRegion: "africa", GDPPerCapita: 0}},
	})
	c.RegisterLearningCategory("broken", 1.5)
	c.RegisterScenario(Scenario{Name: "SSP2", GDPGrowthFactor: -1})
	c.RegisterTechnology(Technology{Name: "gas_cc", SurveyTechnology: "ccgt", Learning: map[string]string{}})
	c.Survey().Add(SurveyCost{Version: "updated", Technology: "ccgt", Region: "africa", Capital: -1})

	errs := c.Validate(DefaultValidationRules())

	// missing learning entry, rate out of range, negative survey cost,
	// missing default reference, non-positive GDP, negative growth factor
	if len(errs) != 6 {
		t.Fatalf("expected 6 validation errors, got %d: %v", len(errs), errs)
	}
}

func TestCostReductionLookups(t *testing.T) {
	c := NewCatalog()
	c.RegisterLearningCategory("high", 0.01)
	tech := Technology{Name: "wind_ppl", Learning: map[string]string{"SSP1": "high", "SSP3": "unknown"}}
	c.RegisterTechnology(tech)

	rate, err := c.CostReduction(&tech, "SSP1")
	if err != nil || rate != 0.01 {
		t.Errorf("expected 0.01, got %g (%v)", rate, err)
	}
	if _, err := c.CostReduction(&tech, "SSP2"); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected not found for missing scenario, got %v", err)
	}
	if _, err := c.CostReduction(&tech, "SSP3"); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected not found for unknown category, got %v", err)
	}
}

func TestSurveyOrdering(t *testing.T) {
	s := NewSurvey()
	s.Add(SurveyCost{Version: "updated", Technology: "solar_pv", Region: "china", Capital: 600})
	s.Add(SurveyCost{Version: "previous", Technology: "solar_pv", Region: "africa", Capital: 750})
	s.Add(SurveyCost{Version: "updated", Technology: "ccgt", Region: "africa", Capital: 800})
	s.Add(SurveyCost{Version: "updated", Technology: "ccgt", Region: "africa", Capital: 810})

	if s.Len() != 3 {
		t.Errorf("expected replacement on duplicate key, got %d entries", s.Len())
	}
	if diff := cmp.Diff([]string{"previous", "updated"}, s.Versions()); diff != "" {
		t.Errorf("Versions mismatch (-want +got):\n%s", diff)
	}

	var order []string
	for _, e := range s.All() {
		order = append(order, e.Version+"/"+e.Technology+"/"+e.Region)
	}
	want := []string{"previous/solar_pv/africa", "updated/ccgt/africa", "updated/solar_pv/china"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("All order mismatch (-want +got):\n%s", diff)
	}

	if !s.HasTechnology("updated", "ccgt") || s.HasTechnology("previous", "ccgt") {
		t.Error("HasTechnology returned the wrong answer")
	}
}
