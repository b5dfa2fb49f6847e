// Package catalog - Catalog validation
// Ensures catalog integrity before any projection runs.
package catalog

import (
	"fmt"
)

// ValidationRule is a catalog validation rule
type ValidationRule func(*Catalog) []error

// DefaultValidationRules returns the standard validation rules
func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		validateLearningCoverage,
		validateSurveyValues,
		validateNodes,
		validateScenarios,
	}
}

// Validate checks a catalog against validation rules
func (c *Catalog) Validate(rules []ValidationRule) []error {
	var errs []error
	for _, rule := range rules {
		errs = append(errs, rule(c)...)
	}
	return errs
}

// validateLearningCoverage ensures every technology has a known category for every scenario
func validateLearningCoverage(c *Catalog) []error {
	var errs []error
	for _, t := range c.Technologies() {
		for _, s := range c.Scenarios() {
			category, ok := t.Learning[s.Name]
			if !ok {
				errs = append(errs, fmt.Errorf("technology %s: no learning category for scenario %s", t.Name, s.Name))
				continue
			}
			if _, ok := c.learning[category]; !ok {
				errs = append(errs, fmt.Errorf("technology %s: unknown learning category %q", t.Name, category))
			}
		}
	}
	for name, rate := range c.learning {
		if rate < 0 || rate >= 1 {
			errs = append(errs, fmt.Errorf("learning category %s: annual reduction %g outside [0, 1)", name, rate))
		}
	}
	return errs
}

// validateSurveyValues ensures surveyed costs are non-negative
func validateSurveyValues(c *Catalog) []error {
	var errs []error
	for _, e := range c.survey.All() {
		if e.Capital < 0 || e.OM < 0 {
			errs = append(errs, fmt.Errorf("survey %s/%s/%s: negative cost", e.Version, e.Technology, e.Region))
		}
	}
	return errs
}

// validateNodes ensures each node lists its reference region
func validateNodes(c *Catalog) []error {
	var errs []error
	for name, n := range c.nodes {
		if len(n.Regions) == 0 {
			errs = append(errs, fmt.Errorf("node %s: no regions", name))
			continue
		}
		if _, ok := n.Region(n.DefaultReference); !ok {
			errs = append(errs, fmt.Errorf("node %s: default reference %s is not one of its regions", name, n.DefaultReference))
		}
		for _, r := range n.Regions {
			if r.GDPPerCapita <= 0 {
				errs = append(errs, fmt.Errorf("region %s: GDP per capita must be positive", r.Code))
			}
		}
	}
	return errs
}

// validateScenarios ensures growth factors are usable
func validateScenarios(c *Catalog) []error {
	var errs []error
	for _, s := range c.Scenarios() {
		if s.GDPGrowthFactor < 0 {
			errs = append(errs, fmt.Errorf("scenario %s: negative GDP growth factor", s.Name))
		}
	}
	return errs
}
