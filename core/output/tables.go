package output

import (
	"strconv"

	"github.com/shopspring/decimal"

	"cost-projections/core/message"
	"cost-projections/core/projections"
	"cost-projections/core/types"
)

// FromResult builds the document for a pipeline result
func FromResult(res *projections.Result, version string) *Document {
	doc := &Document{
		Metadata: Metadata{
			RunID:           res.RunID,
			Node:            res.Selection.Node.String(),
			ReferenceRegion: res.Selection.ReferenceRegion,
			BaseYear:        res.Selection.BaseYear,
			Method:          string(res.Method),
			Format:          string(res.Format),
			StartedAt:       res.StartedAt,
			Duration:        res.Duration,
			Version:         version,
		},
	}

	switch res.Format {
	case types.FormatMessage:
		if res.Records != nil {
			doc.Tables = append(doc.Tables, InvCostTable(res.Records.Inv), FixCostTable(res.Records.Fix))
		}
	case types.FormatIAMC:
		doc.Tables = append(doc.Tables, IAMCTable(res.IAMC))
	}
	doc.Tables = append(doc.Tables, ProjectionTable(res.Projections))
	return doc
}

// InvCostTable renders investment cost records
func InvCostTable(recs []types.InvCostRecord) Table {
	t := Table{
		Name:   "inv_cost",
		Header: []string{"scenario_version", "scenario", "node_loc", "technology", "year_vtg", "value", "unit"},
		Rows:   make([][]string, 0, len(recs)),
	}
	for _, r := range recs {
		t.Rows = append(t.Rows, []string{
			r.ScenarioVersion, r.Scenario, r.NodeLoc, r.Technology,
			strconv.Itoa(r.YearVtg), r.Value.String(), r.Unit,
		})
	}
	return t
}

// FixCostTable renders fixed cost records
func FixCostTable(recs []types.FixCostRecord) Table {
	t := Table{
		Name:   "fix_cost",
		Header: []string{"scenario_version", "scenario", "node_loc", "technology", "year_vtg", "year_act", "value", "unit"},
		Rows:   make([][]string, 0, len(recs)),
	}
	for _, r := range recs {
		t.Rows = append(t.Rows, []string{
			r.ScenarioVersion, r.Scenario, r.NodeLoc, r.Technology,
			strconv.Itoa(r.YearVtg), strconv.Itoa(r.YearAct), r.Value.String(), r.Unit,
		})
	}
	return t
}

// ProjectionTable renders final projections
func ProjectionTable(projs []types.Projection) Table {
	t := Table{
		Name:   "projections",
		Header: []string{"scenario_version", "scenario", "technology", "region", "year", "inv_cost", "fix_cost"},
		Rows:   make([][]string, 0, len(projs)),
	}
	for _, p := range projs {
		t.Rows = append(t.Rows, []string{
			p.ScenarioVersion, p.Scenario, p.Technology, p.Region,
			strconv.Itoa(p.Year), number(p.InvCost), number(p.FixCost),
		})
	}
	return t
}

// IAMCTable renders wide-format rows with one column per year
func IAMCTable(rows []types.IAMCRow) Table {
	years := message.Years(rows)
	t := Table{
		Name:   "iamc",
		Header: []string{"scenario_version", "scenario", "region", "variable", "unit"},
		Rows:   make([][]string, 0, len(rows)),
	}
	for _, y := range years {
		t.Header = append(t.Header, strconv.Itoa(y))
	}
	for _, r := range rows {
		row := []string{r.ScenarioVersion, r.Scenario, r.Region, r.Variable, r.Unit}
		for _, y := range years {
			cell := ""
			if v, ok := r.Values[y]; ok {
				cell = number(v)
			}
			row = append(row, cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func number(v float64) string {
	return decimal.NewFromFloat(v).String()
}
