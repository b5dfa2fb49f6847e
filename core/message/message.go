// Package message reshapes final cost projections into the model's parameter
// records, filling the full record horizon from the projected model years.
package message

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cost-projections/core/determinism"
	"cost-projections/core/types"
	"cost-projections/internal/config"
	"cost-projections/internal/errors"
	"cost-projections/internal/logging"
)

// Records holds the investment and fixed cost parameter tables
type Records struct {
	Inv []types.InvCostRecord
	Fix []types.FixCostRecord
}

// series is one (version, scenario, technology, region) trajectory keyed by year.
type series struct {
	key types.SeriesKey
	inv map[int]float64
	fix map[int]float64
}

// Build expands projections to the record horizon and derives fixed cost records
// for every vintage and activity year.
func Build(projs []types.Projection, h config.Horizon, fc config.FixedCostConfig) (*Records, error) {
	log := logging.Stage("message")
	if err := h.Validate(); err != nil {
		return nil, errors.Config("invalid horizon", err)
	}
	if fc.AnnualDecay < 0 || fc.AnnualDecay >= 1 {
		return nil, errors.Newf(errors.TypeConfig, "annual fixed cost decay %g outside [0, 1)", fc.AnnualDecay)
	}

	groups := group(projs)
	years := h.RecordYears()
	recs := &Records{}

	for _, s := range groups {
		filled, err := s.fill(h, years)
		if err != nil {
			return nil, err
		}

		for _, y := range years {
			recs.Inv = append(recs.Inv, types.InvCostRecord{
				ScenarioVersion: s.key.ScenarioVersion,
				Scenario:        s.key.Scenario,
				NodeLoc:         s.key.Region,
				Technology:      s.key.Technology,
				YearVtg:         y,
				Value:           decimal.NewFromFloat(filled.inv[y]),
				Unit:            fc.Unit,
			})
		}

		for _, vtg := range years {
			initial := filled.fix[vtg]
			if vtg <= h.AnchorYear {
				initial = filled.fix[h.AnchorYear]
			}
			for _, act := range years {
				if act < vtg {
					continue
				}
				value := filled.fix[act]
				if act > h.BaseYear {
					value = initial * math.Pow(1-fc.AnnualDecay, float64(act-vtg))
				}
				recs.Fix = append(recs.Fix, types.FixCostRecord{
					ScenarioVersion: s.key.ScenarioVersion,
					Scenario:        s.key.Scenario,
					NodeLoc:         s.key.Region,
					Technology:      s.key.Technology,
					YearVtg:         vtg,
					YearAct:         act,
					Value:           decimal.NewFromFloat(value),
					Unit:            fc.Unit,
				})
			}
		}
	}

	log.Info("model records built",
		zap.Int("series", len(groups)),
		zap.Int("inv_records", len(recs.Inv)),
		zap.Int("fix_records", len(recs.Fix)))
	return recs, nil
}

// fill returns the series over the record years: model years are copied, earlier
// years repeat the anchor year and later years repeat the last model year.
func (s *series) fill(h config.Horizon, years []int) (*series, error) {
	for _, y := range []int{h.AnchorYear, h.LastModelYear} {
		if _, ok := s.inv[y]; !ok {
			return nil, errors.NotFound("projection year", s.key.String()+"@"+strconv.Itoa(y))
		}
	}

	out := &series{key: s.key, inv: make(map[int]float64, len(years)), fix: make(map[int]float64, len(years))}
	for _, y := range years {
		src := y
		switch {
		case y < h.FirstModelYear:
			src = h.AnchorYear
		case y > h.LastModelYear:
			src = h.LastModelYear
		}
		inv, ok := s.inv[src]
		if !ok {
			return nil, errors.NotFound("projection year", s.key.String()+"@"+strconv.Itoa(src))
		}
		out.inv[y] = inv
		out.fix[y] = s.fix[src]
	}
	return out, nil
}

func group(projs []types.Projection) []*series {
	byKey := make(map[types.SeriesKey]*series)
	for _, p := range projs {
		s, ok := byKey[p.Key()]
		if !ok {
			s = &series{key: p.Key(), inv: make(map[int]float64), fix: make(map[int]float64)}
			byKey[p.Key()] = s
		}
		s.inv[p.Year] = p.InvCost
		s.fix[p.Year] = p.FixCost
	}

	out := make([]*series, 0, len(byKey))
	for _, s := range byKey {
		out = append(out, s)
	}
	determinism.SortRows(out,
		determinism.By(func(s *series) string { return s.key.ScenarioVersion }),
		determinism.By(func(s *series) string { return s.key.Scenario }),
		determinism.By(func(s *series) string { return s.key.Region }),
		determinism.By(func(s *series) string { return s.key.Technology }),
	)
	return out
}
