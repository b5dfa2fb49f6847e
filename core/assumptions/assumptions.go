// Package assumptions decodes the HCL assumption files into a catalog.
// The default assumptions are embedded; a user file or directory can replace them.
package assumptions

import (
	"embed"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"cost-projections/core/catalog"
	"cost-projections/core/types"
	"cost-projections/internal/errors"
)

//go:embed data/*.hcl
var embedded embed.FS

type fileSchema struct {
	Nodes              []nodeBlock     `hcl:"node,block"`
	LearningCategories []categoryBlock `hcl:"learning_category,block"`
	Scenarios          []scenarioBlock `hcl:"scenario,block"`
	Technologies       []techBlock     `hcl:"technology,block"`
	Surveys            []surveyBlock   `hcl:"survey,block"`
}

type nodeBlock struct {
	Name             string        `hcl:"name,label"`
	DefaultReference string        `hcl:"default_reference,optional"`
	Regions          []regionBlock `hcl:"region,block"`
}

type regionBlock struct {
	Code         string  `hcl:"code,label"`
	SurveyRegion string  `hcl:"survey_region"`
	GDPPerCapita float64 `hcl:"gdp_per_capita"`
	GDPGrowth    float64 `hcl:"gdp_growth"`
}

type categoryBlock struct {
	Name            string  `hcl:"name,label"`
	AnnualReduction float64 `hcl:"annual_reduction"`
}

type scenarioBlock struct {
	Name            string  `hcl:"name,label"`
	Description     string  `hcl:"description,optional"`
	GDPGrowthFactor float64 `hcl:"gdp_growth_factor"`
}

type techBlock struct {
	Name             string            `hcl:"name,label"`
	SurveyTechnology string            `hcl:"survey_technology"`
	FirstYear        int               `hcl:"first_year,optional"`
	Learning         map[string]string `hcl:"learning"`
}

type surveyBlock struct {
	Version    string             `hcl:"version,label"`
	Technology string             `hcl:"technology,label"`
	Year       int                `hcl:"year"`
	Capital    map[string]float64 `hcl:"capital"`
	OM         map[string]float64 `hcl:"om"`
}

// Default decodes the embedded assumption files.
func Default() (*catalog.Catalog, error) {
	entries, err := embedded.ReadDir("data")
	if err != nil {
		return nil, errors.Internal("failed to list embedded assumptions", err)
	}
	sources := make(map[string][]byte, len(entries))
	for _, e := range entries {
		name := "data/" + e.Name()
		src, err := embedded.ReadFile(name)
		if err != nil {
			return nil, errors.Internal("failed to read embedded assumptions", err)
		}
		sources[name] = src
	}
	return Decode(sources)
}

// Load decodes a single .hcl file or every .hcl file in a directory.
func Load(path string) (*catalog.Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Config("cannot read assumptions", err).WithContext("path", path)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(path, "*.hcl"))
		if err != nil {
			return nil, errors.Config("cannot list assumptions", err)
		}
		if len(files) == 0 {
			return nil, errors.Newf(errors.TypeConfig, "no .hcl files in %s", path)
		}
	}

	sources := make(map[string][]byte, len(files))
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return nil, errors.Config("cannot read assumptions", err).WithContext("path", f)
		}
		sources[f] = src
	}
	return Decode(sources)
}

// Decode parses HCL sources, merges them and builds a validated catalog.
func Decode(sources map[string][]byte) (*catalog.Catalog, error) {
	parser := hclparse.NewParser()

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	var files []*hcl.File
	var diags hcl.Diagnostics
	for _, name := range names {
		f, d := parser.ParseHCL(sources[name], name)
		diags = append(diags, d...)
		if f != nil {
			files = append(files, f)
		}
	}
	if diags.HasErrors() {
		return nil, errors.Parsing("invalid assumptions", diags)
	}

	var schema fileSchema
	if d := gohcl.DecodeBody(hcl.MergeFiles(files), nil, &schema); d.HasErrors() {
		return nil, errors.Parsing("invalid assumptions", d)
	}

	c, err := build(&schema)
	if err != nil {
		return nil, err
	}
	if errs := c.Validate(catalog.DefaultValidationRules()); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, errors.Data("assumption catalog is inconsistent: " + strings.Join(msgs, "; "))
	}
	return c, nil
}

func build(s *fileSchema) (*catalog.Catalog, error) {
	c := catalog.NewCatalog()

	for _, n := range s.Nodes {
		node, err := types.ParseNode(n.Name)
		if err != nil {
			return nil, err
		}
		regions := make([]catalog.Region, 0, len(n.Regions))
		for _, r := range n.Regions {
			regions = append(regions, catalog.Region{
				Code:         strings.ToUpper(r.Code),
				SurveyRegion: r.SurveyRegion,
				GDPPerCapita: r.GDPPerCapita,
				GDPGrowth:    r.GDPGrowth,
			})
		}
		c.RegisterNode(catalog.Node{
			Name:             node,
			DefaultReference: strings.ToUpper(n.DefaultReference),
			Regions:          regions,
		})
	}

	for _, lc := range s.LearningCategories {
		c.RegisterLearningCategory(lc.Name, lc.AnnualReduction)
	}

	for _, sc := range s.Scenarios {
		c.RegisterScenario(catalog.Scenario{
			Name:            strings.ToUpper(sc.Name),
			Description:     sc.Description,
			GDPGrowthFactor: sc.GDPGrowthFactor,
		})
	}

	for _, t := range s.Technologies {
		learning := make(map[string]string, len(t.Learning))
		for scenario, category := range t.Learning {
			learning[strings.ToUpper(scenario)] = category
		}
		c.RegisterTechnology(catalog.Technology{
			Name:             t.Name,
			SurveyTechnology: t.SurveyTechnology,
			FirstYear:        t.FirstYear,
			Learning:         learning,
		})
	}

	for _, sv := range s.Surveys {
		for region, capital := range sv.Capital {
			om, ok := sv.OM[region]
			if !ok {
				return nil, errors.Newf(errors.TypeData, "survey %s/%s: capital cost for %s has no O&M cost",
					sv.Version, sv.Technology, region)
			}
			c.Survey().Add(catalog.SurveyCost{
				Version:    sv.Version,
				Technology: sv.Technology,
				Region:     region,
				Year:       sv.Year,
				Capital:    capital,
				OM:         om,
			})
		}
	}

	return c, nil
}
