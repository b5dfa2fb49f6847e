// Package config provides configuration management.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cost-projections/internal/logging"
)

// Module-wide year constants.
const (
	// BaseYear is the default year the cost survey is anchored to
	BaseYear = 2020

	// FirstModelYear is the first year of the projected trajectories
	FirstModelYear = 2020

	// LastModelYear is the final year with independently projected values
	LastModelYear = 2100

	// AnchorYear is the historical year whose value fills earlier horizon years
	AnchorYear = 2020

	// HorizonStart is the first vintage year written to model records
	HorizonStart = 1960

	// HorizonEnd is the terminal year written to model records
	HorizonEnd = 2110

	// YearStep is the spacing of the model year axis
	YearStep = 5
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Horizon contains the model time axis
	Horizon Horizon `json:"horizon"`

	// Projection contains default pipeline selections
	Projection ProjectionConfig `json:"projection"`

	// FixedCost contains fixed O&M derivation settings
	FixedCost FixedCostConfig `json:"fixed_cost"`

	// Data contains input data locations
	Data DataConfig `json:"data"`

	// Output contains output-related settings
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// Horizon describes the model year axis
type Horizon struct {
	// BaseYear is the year regional costs are attached to
	BaseYear int `json:"base_year"`

	// FirstModelYear is the first projected year
	FirstModelYear int `json:"first_model_year"`

	// LastModelYear is the last projected year
	LastModelYear int `json:"last_model_year"`

	// YearStep is the spacing between model years
	YearStep int `json:"year_step"`

	// Start is the first year of the model record horizon
	Start int `json:"start"`

	// End is the last year of the model record horizon
	End int `json:"end"`

	// AnchorYear is the year whose value is repeated for earlier years
	AnchorYear int `json:"anchor_year"`
}

// ModelYears returns FirstModelYear..LastModelYear at YearStep.
func (h Horizon) ModelYears() []int {
	return yearRange(h.FirstModelYear, h.LastModelYear, h.YearStep)
}

// RecordYears returns Start..End at YearStep.
func (h Horizon) RecordYears() []int {
	return yearRange(h.Start, h.End, h.YearStep)
}

// Validate checks the horizon for internal consistency.
func (h Horizon) Validate() error {
	switch {
	case h.YearStep <= 0:
		return fmt.Errorf("year_step must be positive, got %d", h.YearStep)
	case h.FirstModelYear > h.LastModelYear:
		return fmt.Errorf("first_model_year %d after last_model_year %d", h.FirstModelYear, h.LastModelYear)
	case h.Start > h.FirstModelYear || h.End < h.LastModelYear:
		return fmt.Errorf("record horizon %d..%d must cover model years %d..%d",
			h.Start, h.End, h.FirstModelYear, h.LastModelYear)
	case h.AnchorYear < h.FirstModelYear || h.AnchorYear > h.LastModelYear:
		return fmt.Errorf("anchor_year %d outside model years", h.AnchorYear)
	case (h.FirstModelYear-h.Start)%h.YearStep != 0:
		return fmt.Errorf("record horizon start %d not aligned to model years", h.Start)
	}
	return nil
}

func yearRange(from, to, step int) []int {
	if step <= 0 || from > to {
		return nil
	}
	years := make([]int, 0, (to-from)/step+1)
	for y := from; y <= to; y += step {
		years = append(years, y)
	}
	return years
}

// ProjectionConfig holds defaults for pipeline selections
type ProjectionConfig struct {
	// Node is the spatial resolution (R11, R12, R20)
	Node string `json:"node"`

	// ReferenceRegion overrides the node's default reference region
	ReferenceRegion string `json:"reference_region,omitempty"`

	// ScenarioVersion selects the cost-survey vintage
	ScenarioVersion string `json:"scenario_version"`

	// Scenario selects one scenario or "all"
	Scenario string `json:"scenario"`

	// Method is learning, gdp or convergence
	Method string `json:"method"`

	// ConvergenceYear is used by the convergence method
	ConvergenceYear int `json:"convergence_year"`

	// Format is message or iamc
	Format string `json:"format"`
}

// FixedCostConfig holds fixed O&M settings
type FixedCostConfig struct {
	// AnnualDecay is the fractional yearly reduction after the base year
	AnnualDecay float64 `json:"annual_decay"`

	// Unit is written to every model record
	Unit string `json:"unit"`
}

// DataConfig points at optional external data
type DataConfig struct {
	// AssumptionsFile replaces the embedded HCL assumptions
	AssumptionsFile string `json:"assumptions_file,omitempty"`

	// SurveyWorkbook replaces the embedded survey costs
	SurveyWorkbook string `json:"survey_workbook,omitempty"`

	// GDPWorkbook replaces the parametric GDP projections
	GDPWorkbook string `json:"gdp_workbook,omitempty"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// Directory receives the written tables
	Directory string `json:"directory"`

	// Writer is csv, json or xlsx
	Writer string `json:"writer"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Horizon: DefaultHorizon(),
		Projection: ProjectionConfig{
			Node:            "R12",
			ScenarioVersion: "updated",
			Scenario:        "all",
			Method:          "convergence",
			ConvergenceYear: 2050,
			Format:          "message",
		},
		FixedCost: FixedCostConfig{
			AnnualDecay: 0.0025,
			Unit:        "USD/kWa",
		},
		Output: OutputConfig{
			Directory: "cost-projections-out",
			Writer:    "csv",
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultHorizon returns the horizon built from the module constants.
func DefaultHorizon() Horizon {
	return Horizon{
		BaseYear:       BaseYear,
		FirstModelYear: FirstModelYear,
		LastModelYear:  LastModelYear,
		YearStep:       YearStep,
		Start:          HorizonStart,
		End:            HorizonEnd,
		AnchorYear:     AnchorYear,
	}
}

// DefaultPath returns $HOME/.cost-projections.json
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".cost-projections.json")
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}
	if err := config.Horizon.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
