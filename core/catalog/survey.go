// Package catalog - Cost-survey values per version, technology and survey region
package catalog

import (
	"sort"
)

// SurveyCost is one surveyed capital and O&M cost
type SurveyCost struct {
	Version    string
	Technology string
	Region     string
	Year       int
	Capital    float64
	OM         float64
}

type surveyKey struct {
	version    string
	technology string
	region     string
}

// Survey indexes surveyed costs
type Survey struct {
	entries map[surveyKey]SurveyCost
}

// NewSurvey creates an empty survey
func NewSurvey() *Survey {
	return &Survey{entries: make(map[surveyKey]SurveyCost)}
}

// Add inserts or replaces a surveyed cost
func (s *Survey) Add(c SurveyCost) {
	s.entries[surveyKey{c.Version, c.Technology, c.Region}] = c
}

// Lookup returns the cost for a survey technology and region
func (s *Survey) Lookup(version, technology, region string) (SurveyCost, bool) {
	c, ok := s.entries[surveyKey{version, technology, region}]
	return c, ok
}

// Versions returns the distinct survey versions in sorted order
func (s *Survey) Versions() []string {
	seen := make(map[string]struct{})
	for k := range s.entries {
		seen[k.version] = struct{}{}
	}
	versions := make([]string, 0, len(seen))
	for v := range seen {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

// HasTechnology reports whether any region has a value for the technology in a version
func (s *Survey) HasTechnology(version, technology string) bool {
	for k := range s.entries {
		if k.version == version && k.technology == technology {
			return true
		}
	}
	return false
}

// All returns every entry ordered by version, technology and region
func (s *Survey) All() []SurveyCost {
	result := make([]SurveyCost, 0, len(s.entries))
	for _, c := range s.entries {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Version != b.Version {
			return a.Version < b.Version
		}
		if a.Technology != b.Technology {
			return a.Technology < b.Technology
		}
		return a.Region < b.Region
	})
	return result
}

// Len returns the number of entries
func (s *Survey) Len() int {
	return len(s.entries)
}
