// Package catalog - Authoritative assumption catalog
// Holds the node/region mapping, technologies, scenarios, learning categories
// and cost-survey values that every pipeline stage reads from.
package catalog

import (
	"sort"
	"strings"

	"cost-projections/core/types"
	"cost-projections/internal/errors"
)

// Region is a model region inside a node
type Region struct {
	// Code is the model region code, e.g. R12_NAM
	Code string

	// SurveyRegion is the cost-survey region the code maps to
	SurveyRegion string

	// GDPPerCapita is base-year GDP per capita (thousand USD, PPP)
	GDPPerCapita float64

	// GDPGrowth is the annual per-capita growth rate under a neutral scenario
	GDPGrowth float64
}

// Node is a spatial resolution and its regions
type Node struct {
	Name             types.Node
	DefaultReference string
	Regions          []Region
}

// Region looks up a region by code
func (n *Node) Region(code string) (Region, bool) {
	for _, r := range n.Regions {
		if r.Code == code {
			return r, true
		}
	}
	return Region{}, false
}

// Technology is a model technology and its learning assumptions
type Technology struct {
	// Name is the model technology name
	Name string

	// SurveyTechnology is the cost-survey technology it maps to
	SurveyTechnology string

	// FirstYear is the first year the technology is available
	FirstYear int

	// Learning maps scenario name to learning category
	Learning map[string]string
}

// Scenario is a socioeconomic pathway
type Scenario struct {
	Name            string
	Description     string
	GDPGrowthFactor float64
}

// Catalog is the authoritative assumption catalog
type Catalog struct {
	nodes        map[types.Node]*Node
	technologies map[string]*Technology
	scenarios    map[string]*Scenario
	learning     map[string]float64
	survey       *Survey
}

// NewCatalog creates a new catalog
func NewCatalog() *Catalog {
	return &Catalog{
		nodes:        make(map[types.Node]*Node),
		technologies: make(map[string]*Technology),
		scenarios:    make(map[string]*Scenario),
		learning:     make(map[string]float64),
		survey:       NewSurvey(),
	}
}

// RegisterNode adds a node to the catalog
func (c *Catalog) RegisterNode(n Node) {
	if n.DefaultReference == "" {
		n.DefaultReference = n.Name.DefaultReference()
	}
	c.nodes[n.Name] = &n
}

// RegisterTechnology adds a technology to the catalog
func (c *Catalog) RegisterTechnology(t Technology) {
	c.technologies[t.Name] = &t
}

// RegisterScenario adds a scenario to the catalog
func (c *Catalog) RegisterScenario(s Scenario) {
	c.scenarios[strings.ToUpper(s.Name)] = &s
}

// RegisterLearningCategory sets the annual cost reduction of a category
func (c *Catalog) RegisterLearningCategory(name string, annualReduction float64) {
	c.learning[name] = annualReduction
}

// SetSurvey replaces the cost survey
func (c *Catalog) SetSurvey(s *Survey) {
	c.survey = s
}

// Survey returns the cost survey
func (c *Catalog) Survey() *Survey {
	return c.survey
}

// Node returns a registered node
func (c *Catalog) Node(n types.Node) (*Node, error) {
	node, ok := c.nodes[n]
	if !ok {
		return nil, errors.NotFound("node", string(n))
	}
	return node, nil
}

// Technologies returns all technologies sorted by name
func (c *Catalog) Technologies() []*Technology {
	result := make([]*Technology, 0, len(c.technologies))
	for _, t := range c.technologies {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Technology returns a technology by name
func (c *Catalog) Technology(name string) (*Technology, bool) {
	t, ok := c.technologies[name]
	return t, ok
}

// Scenarios returns all scenarios sorted by name
func (c *Catalog) Scenarios() []*Scenario {
	result := make([]*Scenario, 0, len(c.scenarios))
	for _, s := range c.scenarios {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Scenario returns a scenario by name, case-insensitively
func (c *Catalog) Scenario(name string) (*Scenario, bool) {
	s, ok := c.scenarios[strings.ToUpper(name)]
	return s, ok
}

// CostReduction returns the annual cost reduction of a technology in a scenario.
func (c *Catalog) CostReduction(tech *Technology, scenario string) (float64, error) {
	category, ok := tech.Learning[scenario]
	if !ok {
		return 0, errors.NotFound("learning category", tech.Name+"/"+scenario)
	}
	rate, ok := c.learning[category]
	if !ok {
		return 0, errors.NotFound("learning rate", category)
	}
	return rate, nil
}

// Stats returns catalog statistics
func (c *Catalog) Stats() CatalogStats {
	stats := CatalogStats{
		Technologies:    len(c.technologies),
		Scenarios:       len(c.scenarios),
		SurveyVersions:  len(c.survey.Versions()),
		SurveyEntries:   c.survey.Len(),
		RegionsByNode:   make(map[types.Node]int),
	}
	for name, n := range c.nodes {
		stats.RegionsByNode[name] = len(n.Regions)
	}
	return stats
}

// CatalogStats holds catalog statistics
type CatalogStats struct {
	Technologies   int
	Scenarios      int
	SurveyVersions int
	SurveyEntries  int
	RegionsByNode  map[types.Node]int
}
