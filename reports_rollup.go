package ledgerdiff

import (
	"fmt"
	"sort"
	"strings"
)

// Dimension is the grouping key of a rollup.
type Dimension int

const (
	ByAccountType Dimension = iota
	ByBranch
)

// Dimensions lists every dimension a report is rolled up by.
var Dimensions = []Dimension{ByAccountType, ByBranch}

// ParseDimension parses "category" (or "type") and "branch".
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "category", "type", "actype", "account-type":
		return ByAccountType, nil
	case "branch":
		return ByBranch, nil
	}
	return 0, fmt.Errorf("unknown dimension %q, want category or branch", s)
}

func (d Dimension) String() string {
	if d == ByBranch {
		return "branch"
	}
	return "category"
}

// Title returns the header used for the group column.
func (d Dimension) Title() string {
	if d == ByBranch {
		return "Branch"
	}
	return "Account Type"
}

// Column returns the column the dimension groups by.
func (d Dimension) Column() Column {
	if d == ByBranch {
		return ColumnBranch
	}
	return ColumnAccountType
}

func (d Dimension) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Dimension) UnmarshalText(b []byte) (err error) {
	*d, err = ParseDimension(string(b))
	return err
}

// key returns the grouping key of a record and its displayed label.
// Account types are matched case-insensitively, like the exclusions.
func (d Dimension) key(r AccountRecord) (key, label string) {
	if d == ByBranch {
		label = strings.TrimSpace(r.BranchName)
		return label, label
	}
	return normalizeLabel(r.AccountTypeDesc), strings.TrimSpace(r.AccountTypeDesc)
}

// TotalGroup is the label of the synthetic total row.
const TotalGroup = "Total"

// RollupRow compares the sum and count of one group.
type RollupRow struct {
	Group         string  `json:"group"`
	PreviousSum   Money   `json:"previousSum"`
	PreviousCount int     `json:"previousCount"`
	CurrentSum    Money   `json:"currentSum"`
	CurrentCount  int     `json:"currentCount"`
	Change        Money   `json:"change"`
	PercentChange Percent `json:"percentChange"`
}

// settle computes the change columns from the sums.
func (r *RollupRow) settle() {
	c := NewComparison(r.PreviousSum, r.CurrentSum)
	r.Change = c.Change()
	r.PercentChange = c.Percent()
}

// DimensionalRollup is the previous versus current comparison of the
// groups of a dimension.
type DimensionalRollup struct {
	Dimension Dimension   `json:"dimension"`
	Rows      []RollupRow `json:"rows"` // sorted by group
	Total     RollupRow   `json:"total"`

	// Names of the tables the rollup was computed from.
	PreviousSheet string `json:"previousSheet,omitempty"`
	CurrentSheet  string `json:"currentSheet,omitempty"`
}

// ZeroBaseGroups returns the groups without previous balance, for which the
// percent change is reported as 0.
func (r DimensionalRollup) ZeroBaseGroups() []string {
	var groups []string
	for _, row := range r.Rows {
		if row.PreviousSum.IsZero() {
			groups = append(groups, row.Group)
		}
	}
	return groups
}

// RollupColumns are required on both sides for any rollup, whatever the
// dimension.
var RollupColumns = RequiredColumns

// Rollup groups two normalized snapshots by dim.
//
// It returns false, and no rollup, when either snapshot misses one of the
// RollupColumns.
func Rollup(previous, current Snapshot, dim Dimension) (DimensionalRollup, bool) {
	if !previous.Has(RollupColumns...) || !current.Has(RollupColumns...) {
		return DimensionalRollup{}, false
	}

	groups := make(map[string]*RollupRow)
	get := func(r AccountRecord) *RollupRow {
		k, label := dim.key(r)
		row, ok := groups[k]
		if !ok {
			// the first label seen names the group.
			row = &RollupRow{Group: label}
			groups[k] = row
		}
		return row
	}
	for _, r := range previous.records {
		row := get(r)
		row.PreviousSum = row.PreviousSum.Add(r.Balance)
		row.PreviousCount++
	}
	for _, r := range current.records {
		row := get(r)
		row.CurrentSum = row.CurrentSum.Add(r.Balance)
		row.CurrentCount++
	}

	res := DimensionalRollup{
		Dimension:     dim,
		Rows:          make([]RollupRow, 0, len(groups)),
		Total:         RollupRow{Group: TotalGroup},
		PreviousSheet: previous.label,
		CurrentSheet:  current.label,
	}
	for _, row := range groups {
		row.settle()
		res.Rows = append(res.Rows, *row)
	}
	sort.Slice(res.Rows, func(i, j int) bool { return res.Rows[i].Group < res.Rows[j].Group })

	for _, row := range res.Rows {
		res.Total.PreviousSum = res.Total.PreviousSum.Add(row.PreviousSum)
		res.Total.PreviousCount += row.PreviousCount
		res.Total.CurrentSum = res.Total.CurrentSum.Add(row.CurrentSum)
		res.Total.CurrentCount += row.CurrentCount
	}
	// the total percentage is relative to the total previous sum, not an
	// average of the group percentages.
	res.Total.settle()
	return res, true
}

// SkippedTable is a table left out of a rollup because it could not be
// parsed.
type SkippedTable struct {
	Workbook string
	Table    string
	Err      error
}

func (s SkippedTable) Error() string {
	return fmt.Sprintf("%s: %v", s.Workbook, s.Err)
}

func (s SkippedTable) Unwrap() error { return s.Err }

// RollupPairs rolls up every pair of tables (one from previous, one from
// current) that exposes the RollupColumns.
//
// Pairs are visited in previous-major order and the last matching pair
// wins. It returns false when no pair matches. Tables of a matching pair
// are parsed and normalized with opts; a table that fails to parse is
// skipped, with every pair it belongs to, and returned once in skipped.
func RollupPairs(previous, current *Workbook, dim Dimension, opts Options) (res DimensionalRollup, found bool, skipped []SkippedTable) {
	type loaded struct {
		s  Snapshot
		ok bool
	}
	cache := make(map[*Table]loaded)
	load := func(wb *Workbook, t *Table) (Snapshot, bool) {
		if l, ok := cache[t]; ok {
			return l.s, l.ok
		}
		s, err := NormalizeTable(t, opts.Currency, opts.exclusions())
		if err != nil {
			skipped = append(skipped, SkippedTable{Workbook: wb.Name, Table: t.Name, Err: err})
		}
		cache[t] = loaded{s, err == nil}
		return s, err == nil
	}

	for _, pt := range previous.Tables {
		if !pt.Has(RollupColumns...) {
			continue
		}
		for _, ct := range current.Tables {
			if !ct.Has(RollupColumns...) {
				continue
			}
			prev, ok := load(previous, pt)
			if !ok {
				break
			}
			curr, ok := load(current, ct)
			if !ok {
				continue
			}
			if r, ok := Rollup(prev, curr, dim); ok {
				res, found = r, true
			}
		}
	}
	return res, found, skipped
}
