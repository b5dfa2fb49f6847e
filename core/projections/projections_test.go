package projections

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"cost-projections/core/assumptions"
	"cost-projections/core/catalog/catalogtest"
	"cost-projections/core/gdp"
	"cost-projections/core/types"
	"cost-projections/internal/config"
	"cost-projections/internal/errors"
	"cost-projections/internal/logging"
)

func init() {
	logging.SetLogger(zap.NewNop())
}

func newTestProjector() *Projector {
	cfg := config.Default()
	return NewProjector(catalogtest.Fixture(), cfg.Horizon, cfg.FixedCost)
}

func defaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

func TestProjectDefaults(t *testing.T) {
	res, err := newTestProjector().Project(context.Background(), defaultOptions())
	if err != nil {
		t.Fatalf("Project error: %v", err)
	}

	if res.Selection.ReferenceRegion != "R12_NAM" {
		t.Errorf("expected reference region R12_NAM, got %s", res.Selection.ReferenceRegion)
	}
	if res.Method != types.MethodConvergence || res.Format != types.FormatMessage {
		t.Errorf("unexpected method/format %s/%s", res.Method, res.Format)
	}
	if res.RunID == "" {
		t.Error("expected a run ID")
	}
	if res.Records == nil || len(res.Records.Inv) == 0 || len(res.Records.Fix) == 0 {
		t.Fatal("expected model records")
	}
	if res.IAMC != nil {
		t.Error("IAMC rows must not be built for the message format")
	}
	for _, p := range res.Projections {
		if p.InvCost < 0 || p.FixCost < 0 {
			t.Errorf("%+v: negative cost", p)
		}
	}
	for _, r := range res.Records.Inv {
		if r.Value.IsNegative() {
			t.Errorf("%+v: negative record", r)
		}
	}
}

func TestProjectInvalidNode(t *testing.T) {
	opts := defaultOptions()
	opts.Node = "R99"

	_, err := newTestProjector().Project(context.Background(), opts)
	if err == nil {
		t.Fatal("expected an error for R99")
	}
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("expected a domain error, got %T", err)
	}
	if e.Type != errors.TypeInput || e.Message != types.InvalidNodeMessage {
		t.Errorf("unexpected error %v", e)
	}
}

func TestProjectInvalidNodeReportedFirst(t *testing.T) {
	opts := defaultOptions()
	opts.Node = "R99"
	opts.Method = "spline"
	opts.Format = "parquet"

	_, err := newTestProjector().Project(context.Background(), opts)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Message != types.InvalidNodeMessage {
		t.Errorf("expected the invalid resolution message, got %v", err)
	}
}

func TestProjectConvergenceYearOnlyForConvergence(t *testing.T) {
	opts := defaultOptions()
	opts.Method = "learning"
	opts.ConvergenceYear = 0

	if _, err := newTestProjector().Project(context.Background(), opts); err != nil {
		t.Errorf("learning method must not need a convergence year: %v", err)
	}
}

func TestProjectRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"method", func(o *Options) { o.Method = "spline" }},
		{"format", func(o *Options) { o.Format = "parquet" }},
		{"reference region", func(o *Options) { o.ReferenceRegion = "R11_NAM" }},
		{"scenario", func(o *Options) { o.Scenario = "SSP9" }},
		{"missing convergence year", func(o *Options) { o.ConvergenceYear = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			tt.modify(&opts)
			_, err := newTestProjector().Project(context.Background(), opts)
			if !errors.IsType(err, errors.TypeInput) {
				t.Errorf("expected input error, got %v", err)
			}
		})
	}
}

func TestProjectAllScenariosIsUnion(t *testing.T) {
	p := newTestProjector()
	all, err := p.Project(context.Background(), defaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	var union []types.Projection
	for _, scenario := range []string{"SSP1", "SSP2"} {
		opts := defaultOptions()
		opts.ScenarioVersion = types.All
		opts.Scenario = scenario
		res, err := p.Project(context.Background(), opts)
		if err != nil {
			t.Fatalf("%s: %v", scenario, err)
		}
		union = append(union, res.Projections...)
	}

	allOpts := defaultOptions()
	allOpts.ScenarioVersion = types.All
	everything, err := p.Project(context.Background(), allOpts)
	if err != nil {
		t.Fatal(err)
	}
	if len(everything.Projections) != len(union) {
		t.Fatalf("expected %d projections, got %d", len(union), len(everything.Projections))
	}

	present := make(map[types.Projection]bool, len(everything.Projections))
	for _, pr := range everything.Projections {
		present[pr] = true
	}
	for _, pr := range union {
		if !present[pr] {
			t.Errorf("%+v missing from the all-scenario selection", pr)
		}
	}

	for _, pr := range all.Projections {
		if pr.ScenarioVersion != "updated" {
			t.Fatalf("default version selection leaked %q", pr.ScenarioVersion)
		}
	}
}

func TestFinalizeMethods(t *testing.T) {
	traj := []types.InvTrajectory{{
		ScenarioVersion: "updated",
		Scenario:        "SSP2",
		Technology:      "solar_pv_ppl",
		Region:          "R12_AFR",
		Year:            2050,
		LearningOnly:    100,
		GDPAdjusted:     80,
		Converged:       90,
		FixToInvRatio:   0.02,
	}}

	tests := []struct {
		method types.Method
		inv    float64
	}{
		{types.MethodLearning, 100},
		{types.MethodGDP, 80},
		{types.MethodConvergence, 90},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			got := Finalize(traj, tt.method)
			want := []types.Projection{{
				ScenarioVersion: "updated",
				Scenario:        "SSP2",
				Technology:      "solar_pv_ppl",
				Region:          "R12_AFR",
				Year:            2050,
				InvCost:         tt.inv,
				FixCost:         tt.inv * 0.02,
			}}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Finalize mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProjectIAMCFormat(t *testing.T) {
	opts := defaultOptions()
	opts.Format = "iamc"
	res, err := newTestProjector().Project(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Records != nil {
		t.Error("model records must not be built for the iamc format")
	}
	// two variables per version, scenario, technology and region
	if want := 2 * len(res.Projections) / 17; len(res.IAMC) != want {
		t.Errorf("expected %d IAMC rows, got %d", want, len(res.IAMC))
	}
}

func TestProjectCustomGDPSource(t *testing.T) {
	p := newTestProjector()
	table, err := gdp.NewTable([]gdp.Observation{
		{Scenario: "SSP1", Region: "R12_NAM", Year: 2020, Value: 50},
	})
	if err != nil {
		t.Fatal(err)
	}
	p.SetGDPSource(table)

	_, err = p.Project(context.Background(), defaultOptions())
	if !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected not found for missing GDP series, got %v", err)
	}
}

func TestProjectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestProjector().Project(ctx, defaultOptions())
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestProjectEmbeddedAssumptions(t *testing.T) {
	c, err := assumptions.Default()
	if err != nil {
		t.Fatalf("assumptions.Default error: %v", err)
	}
	cfg := config.Default()
	p := NewProjector(c, cfg.Horizon, cfg.FixedCost)

	for _, node := range []string{"R11", "R12", "R20"} {
		t.Run(node, func(t *testing.T) {
			opts := OptionsFromConfig(cfg)
			opts.Node = node
			opts.Scenario = "SSP2"
			opts.Format = "iamc"
			res, err := p.Project(context.Background(), opts)
			if err != nil {
				t.Fatalf("Project error: %v", err)
			}
			if res.Selection.ReferenceRegion != node+"_NAM" {
				t.Errorf("expected reference %s_NAM, got %s", node, res.Selection.ReferenceRegion)
			}
			for _, pr := range res.Projections {
				if pr.InvCost < 0 || pr.FixCost < 0 {
					t.Fatalf("%+v: negative cost", pr)
				}
			}
		})
	}
}
