package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultHorizon(t *testing.T) {
	h := DefaultHorizon()
	if err := h.Validate(); err != nil {
		t.Fatalf("default horizon invalid: %v", err)
	}

	model := h.ModelYears()
	if len(model) != 17 || model[0] != 2020 || model[len(model)-1] != 2100 {
		t.Errorf("unexpected model years %v", model)
	}
	records := h.RecordYears()
	if len(records) != 31 || records[0] != 1960 || records[len(records)-1] != 2110 {
		t.Errorf("unexpected record years %v", records)
	}
}

func TestHorizonValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Horizon)
	}{
		{"zero step", func(h *Horizon) { h.YearStep = 0 }},
		{"reversed model years", func(h *Horizon) { h.FirstModelYear = 2110 }},
		{"record horizon too short", func(h *Horizon) { h.End = 2050 }},
		{"anchor outside model years", func(h *Horizon) { h.AnchorYear = 2000 }},
		{"misaligned start", func(h *Horizon) { h.Start = 1962 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := DefaultHorizon()
			tt.modify(&h)
			if err := h.Validate(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Projection.Node != "R12" || cfg.FixedCost.AnnualDecay != 0.0025 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Projection.Node = "R20"
	cfg.Output.Writer = "xlsx"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Projection.Node != "R20" || loaded.Output.Writer != "xlsx" {
		t.Errorf("values not persisted: %+v", loaded)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"projection": {"method": "gdp"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Projection.Method != "gdp" {
		t.Errorf("expected method gdp, got %s", cfg.Projection.Method)
	}
	if cfg.Horizon.End != HorizonEnd || cfg.Projection.ConvergenceYear != 2050 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsInvalidHorizon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"horizon": {"year_step": 0}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for a zero year step")
	}
}
