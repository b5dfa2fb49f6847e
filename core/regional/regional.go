// Package regional differentiates survey costs across the regions of a node,
// expressing every region's cost as a ratio to the reference region.
package regional

import (
	"strings"

	"go.uber.org/zap"

	"cost-projections/core/catalog"
	"cost-projections/core/types"
	"cost-projections/internal/errors"
	"cost-projections/internal/logging"
)

// Selection is a validated spatial selection
type Selection struct {
	Node            types.Node
	ReferenceRegion string
	BaseYear        int
}

// Resolve validates the node and reference region. An empty reference region
// resolves to the node's default.
func Resolve(c *catalog.Catalog, node, refRegion string, baseYear int) (Selection, error) {
	n, err := types.ParseNode(node)
	if err != nil {
		return Selection{}, err
	}
	catNode, err := c.Node(n)
	if err != nil {
		return Selection{}, err
	}

	ref := strings.ToUpper(strings.TrimSpace(refRegion))
	if ref == "" {
		ref = catNode.DefaultReference
	}
	if _, ok := catNode.Region(ref); !ok {
		return Selection{}, errors.Inputf("reference region %s is not part of node %s", ref, n)
	}
	if baseYear <= 0 {
		return Selection{}, errors.Inputf("invalid base year %d", baseYear)
	}

	return Selection{Node: n, ReferenceRegion: ref, BaseYear: baseYear}, nil
}

// Differentiate computes regional cost ratios for every survey version and technology.
func Differentiate(c *catalog.Catalog, sel Selection) ([]types.RegionCost, error) {
	log := logging.Stage("regional")

	node, err := c.Node(sel.Node)
	if err != nil {
		return nil, err
	}
	ref, ok := node.Region(sel.ReferenceRegion)
	if !ok {
		return nil, errors.NotFound("reference region", sel.ReferenceRegion)
	}

	survey := c.Survey()
	var result []types.RegionCost

	for _, version := range survey.Versions() {
		for _, tech := range c.Technologies() {
			if !survey.HasTechnology(version, tech.SurveyTechnology) {
				log.Debug("technology not surveyed",
					zap.String("version", version),
					zap.String("technology", tech.Name))
				continue
			}

			refCost, ok := survey.Lookup(version, tech.SurveyTechnology, ref.SurveyRegion)
			if !ok || refCost.Capital <= 0 {
				return nil, errors.NotFound("reference survey cost",
					version+"/"+tech.SurveyTechnology+"/"+ref.SurveyRegion).
					WithContext("reference_region", ref.Code)
			}

			for _, region := range node.Regions {
				cost, ok := survey.Lookup(version, tech.SurveyTechnology, region.SurveyRegion)
				if !ok {
					log.Warn("no survey cost for region, using reference cost",
						zap.String("version", version),
						zap.String("technology", tech.Name),
						zap.String("region", region.Code))
					cost = refCost
				}

				fixToInv := 0.0
				if cost.Capital > 0 {
					fixToInv = cost.OM / cost.Capital
				}

				result = append(result, types.RegionCost{
					ScenarioVersion:     version,
					Technology:          tech.Name,
					Region:              region.Code,
					ReferenceRegion:     ref.Code,
					BaseYear:            sel.BaseYear,
					FirstTechnologyYear: tech.FirstYear,
					RefCostBaseYear:     refCost.Capital,
					CostRatio:           cost.Capital / refCost.Capital,
					RegCostBaseYear:     cost.Capital,
					FixToInvRatio:       fixToInv,
				})
			}
		}
	}

	if len(result) == 0 {
		return nil, errors.Data("cost survey has no entries for any technology")
	}

	log.Info("regional costs differentiated",
		zap.String("node", sel.Node.String()),
		zap.String("reference_region", sel.ReferenceRegion),
		zap.Int("rows", len(result)))
	return result, nil
}
