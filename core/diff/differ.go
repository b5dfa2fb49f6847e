// Package diff compares two runs of the projection pipeline year by year.
package diff

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"cost-projections/core/determinism"
	"cost-projections/core/types"
	"cost-projections/internal/errors"
)

// Field selects the compared cost
type Field string

const (
	FieldInvCost Field = "inv_cost"
	FieldFixCost Field = "fix_cost"
)

// ParseField validates a field name
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldInvCost, FieldFixCost:
		return f, nil
	case "":
		return FieldInvCost, nil
	}
	return "", errors.Inputf("unknown field %q: expected inv_cost or fix_cost", s)
}

func (f Field) value(p types.Projection) float64 {
	if f == FieldFixCost {
		return p.FixCost
	}
	return p.InvCost
}

// ChangeType indicates the type of change
type ChangeType int

const (
	ChangeAdded     ChangeType = iota // Only in the second run
	ChangeRemoved                     // Only in the first run
	ChangeModified                    // Cost changed beyond the threshold
	ChangeUnchanged                   // No significant cost change
)

// String returns the change type name
func (c ChangeType) String() string {
	switch c {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeModified:
		return "modified"
	case ChangeUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// Key identifies a compared cost. The scenario version is not part of the key
// so that two survey vintages can be compared against each other.
type Key struct {
	Scenario   string `json:"scenario,omitempty"`
	Technology string `json:"technology"`
	Region     string `json:"region"`
	Year       int    `json:"year"`
}

// String renders the key for tables and logs
func (k Key) String() string {
	if k.Scenario == "" {
		return fmt.Sprintf("%s/%s/%d", k.Technology, k.Region, k.Year)
	}
	return fmt.Sprintf("%s/%s/%s/%d", k.Scenario, k.Technology, k.Region, k.Year)
}

// Entry describes the change of one cost
type Entry struct {
	Key        Key             `json:"key"`
	ChangeType ChangeType      `json:"-"`
	Change     string          `json:"change"`
	Before     decimal.Decimal `json:"before"`
	After      decimal.Decimal `json:"after"`
	Delta      decimal.Decimal `json:"delta"`

	// DeltaPercent is relative to Before, 100 when Before is zero
	DeltaPercent float64 `json:"delta_percent"`
}

// Result is the complete diff between two runs
type Result struct {
	Field Field `json:"field"`

	Added     []*Entry `json:"added"`
	Removed   []*Entry `json:"removed"`
	Changed   []*Entry `json:"changed"`
	Unchanged []*Entry `json:"-"`

	UnchangedCount int `json:"unchanged_count"`

	// Largest relative changes among Changed
	MaxIncrease float64 `json:"max_increase_percent"`
	MaxDecrease float64 `json:"max_decrease_percent"`
}

// Differ computes diffs between projection runs
type Differ struct {
	// ChangeThreshold is the relative change treated as unchanged (0.001 = 0.1%)
	ChangeThreshold float64

	// Field is the compared cost
	Field Field

	// IgnoreScenario drops the scenario from the key, for comparing two scenarios
	IgnoreScenario bool
}

// NewDiffer creates a new differ
func NewDiffer(changeThreshold float64, field Field) *Differ {
	if changeThreshold <= 0 {
		changeThreshold = 0.001
	}
	if field == "" {
		field = FieldInvCost
	}
	return &Differ{ChangeThreshold: changeThreshold, Field: field}
}

// Diff computes the diff between before and after. Each side must hold at most
// one row per key, i.e. a single scenario version.
func (d *Differ) Diff(before, after []types.Projection) (*Result, error) {
	beforeMap, err := d.index(before, "first")
	if err != nil {
		return nil, err
	}
	afterMap, err := d.index(after, "second")
	if err != nil {
		return nil, err
	}

	result := &Result{
		Field:     d.Field,
		Added:     []*Entry{},
		Removed:   []*Entry{},
		Changed:   []*Entry{},
		Unchanged: []*Entry{},
	}

	for k, a := range afterMap {
		b, existed := beforeMap[k]
		if !existed {
			result.Added = append(result.Added, d.entry(k, nil, &a, ChangeAdded))
			continue
		}
		e := d.compare(k, b, a)
		if e.ChangeType == ChangeModified {
			result.Changed = append(result.Changed, e)
			result.MaxIncrease = max(result.MaxIncrease, e.DeltaPercent)
			result.MaxDecrease = min(result.MaxDecrease, e.DeltaPercent)
		} else {
			result.Unchanged = append(result.Unchanged, e)
		}
	}
	for k, b := range beforeMap {
		if _, exists := afterMap[k]; !exists {
			result.Removed = append(result.Removed, d.entry(k, &b, nil, ChangeRemoved))
		}
	}
	result.UnchangedCount = len(result.Unchanged)

	sortEntries(result.Added)
	sortEntries(result.Removed)
	sortEntries(result.Changed)
	sortEntries(result.Unchanged)

	return result, nil
}

func (d *Differ) key(p types.Projection) Key {
	k := Key{Technology: p.Technology, Region: p.Region, Year: p.Year}
	if !d.IgnoreScenario {
		k.Scenario = p.Scenario
	}
	return k
}

func (d *Differ) index(rows []types.Projection, side string) (map[Key]types.Projection, error) {
	m := make(map[Key]types.Projection, len(rows))
	for _, p := range rows {
		k := d.key(p)
		if prev, dup := m[k]; dup {
			return nil, errors.Inputf("%s run has more than one row for %s (%s/%s and %s/%s): select a single scenario version and scenario",
				side, k, prev.ScenarioVersion, prev.Scenario, p.ScenarioVersion, p.Scenario)
		}
		m[k] = p
	}
	return m, nil
}

func (d *Differ) entry(k Key, before, after *types.Projection, changeType ChangeType) *Entry {
	e := &Entry{Key: k, ChangeType: changeType, Change: changeType.String()}
	if before != nil {
		e.Before = decimal.NewFromFloat(d.Field.value(*before))
	}
	if after != nil {
		e.After = decimal.NewFromFloat(d.Field.value(*after))
	}
	e.Delta = e.After.Sub(e.Before)
	return e
}

func (d *Differ) compare(k Key, before, after types.Projection) *Entry {
	e := d.entry(k, &before, &after, ChangeUnchanged)

	b, a := d.Field.value(before), d.Field.value(after)
	if b == 0 && a == 0 {
		return e
	}

	var percentChange float64
	if b > 0 {
		percentChange = (a - b) / b
	} else {
		percentChange = 1.0
	}
	e.DeltaPercent = percentChange * 100

	if abs(percentChange) > d.ChangeThreshold {
		e.ChangeType = ChangeModified
		e.Change = ChangeModified.String()
	}
	return e
}

func sortEntries(entries []*Entry) {
	determinism.SortRows(entries,
		determinism.By(func(e *Entry) string { return e.Key.Scenario }),
		determinism.By(func(e *Entry) string { return e.Key.Technology }),
		determinism.By(func(e *Entry) string { return e.Key.Region }),
		determinism.By(func(e *Entry) int { return e.Key.Year }),
	)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Total is the number of keys present in either run
func (r *Result) Total() int {
	return len(r.Added) + len(r.Removed) + len(r.Changed) + r.UnchangedCount
}

// Summary provides a human-readable summary
func (r *Result) Summary() string {
	var sb strings.Builder
	if len(r.Added)+len(r.Removed)+len(r.Changed) == 0 {
		fmt.Fprintf(&sb, "No %s change across %d values\n", r.Field, r.Total())
		return sb.String()
	}

	if n := len(r.Added); n > 0 {
		fmt.Fprintf(&sb, "  + %d values added\n", n)
	}
	if n := len(r.Removed); n > 0 {
		fmt.Fprintf(&sb, "  - %d values removed\n", n)
	}
	if n := len(r.Changed); n > 0 {
		fmt.Fprintf(&sb, "  ~ %d values changed (%+.1f%% .. %+.1f%%)\n", n, r.MaxDecrease, r.MaxIncrease)
	}
	return sb.String()
}

// TopChanges returns the modified values with the largest relative change.
func (r *Result) TopChanges(n int) []*Entry {
	all := slices.Clone(r.Changed)
	slices.SortStableFunc(all, func(a, b *Entry) int {
		return cmp.Compare(abs(b.DeltaPercent), abs(a.DeltaPercent))
	})

	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}
