package ledgerdiff

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func fixedNow(t *testing.T) time.Time {
	t.Helper()
	ts := time.Date(2025, time.June, 30, 18, 0, 0, 0, time.UTC)
	old := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = old })
	return ts
}

func TestCompare(t *testing.T) {
	ts := fixedNow(t)
	prev := NewWorkbook("may.xlsx", ledgerTable("May",
		[]string{"A", "Alice", "Savings", "North", "100", "1"},
		[]string{"B", "Bob", "Current", "South", "50", "1"},
		[]string{"C", "Carol", "Savings", "North", "0", "0"},
		[]string{"E", "Eve", "Staff Loan", "North", "999", "1"},
		[]string{"Grand Total", "", "", "", "1149", ""},
	))
	curr := NewWorkbook("june.xlsx", ledgerTable("June",
		[]string{"A", "Alice", "Savings", "North", "120", "1"},
		[]string{"D", "Dan", "Current", "East", "30", "1"},
	))

	r, err := Compare(context.Background(), prev, curr, Options{})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if r.ID == "" {
		t.Error("ID is empty")
	}
	if !r.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", r.Timestamp, ts)
	}
	if r.Previous != "may.xlsx" || r.Current != "june.xlsx" {
		t.Errorf("Previous, Current = %q, %q", r.Previous, r.Current)
	}
	if diff := cmp.Diff([]string{"B"}, codes(r.Settled)); diff != "" {
		t.Errorf("Settled mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"D"}, codes(r.New)); diff != "" {
		t.Errorf("New mismatch (-want +got):\n%s", diff)
	}
	if len(r.Movements) != 1 || !r.Movements[0].Change.Equal(NO(20)) {
		t.Errorf("Movements = %+v, want A changed by 20", r.Movements)
	}
	if !r.Waterfall.Adjusted().Equal(NO(150)) || !r.Waterfall.Closing().Equal(NO(150)) {
		t.Errorf("Waterfall = %+v, want adjusted and closing at 150", r.Waterfall)
	}
	if !r.Diagnostics.Discrepancy.IsZero() || r.Diagnostics.DuplicateRows != 0 {
		t.Errorf("Diagnostics = %+v, want none", r.Diagnostics)
	}

	cat, ok := r.Rollup(ByAccountType)
	if !ok {
		t.Fatal("category rollup missing")
	}
	groups := make([]string, 0, len(cat.Rows))
	for _, row := range cat.Rows {
		groups = append(groups, row.Group)
	}
	if diff := cmp.Diff([]string{"Current", "Savings"}, groups); diff != "" {
		t.Errorf("category groups mismatch (-want +got):\n%s", diff)
	}
	if !r.CommonDimensionPresent(ByBranch) {
		t.Fatal("branch rollup missing")
	}
	if diff := cmp.Diff([]string{"branch: East"}, r.Diagnostics.ZeroBaseGroups); diff != "" {
		t.Errorf("ZeroBaseGroups mismatch (-want +got):\n%s", diff)
	}
}

func TestCompare_MissingColumn(t *testing.T) {
	prev := NewWorkbook("may.xlsx", &Table{Name: "May", Header: []string{"Code", "Balance", "Limit"}})
	curr := NewWorkbook("june.xlsx", ledgerTable("June"))

	_, err := Compare(context.Background(), prev, curr, Options{})
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("Compare() error = %v, want ErrMissingColumn", err)
	}
	var mce *MissingColumnError
	if !errors.As(err, &mce) || mce.Column != ColumnAccountType {
		t.Errorf("Compare() error = %v, want the account type column", err)
	}
}

func TestCompare_Sheet(t *testing.T) {
	summary := &Table{Name: "Summary", Header: []string{"Total"}, Rows: [][]string{{"150"}}}
	prev := NewWorkbook("may.xlsx", summary, ledgerTable("Ledger", []string{"A", "Alice", "Savings", "North", "100", "1"}))
	curr := NewWorkbook("june.xlsx", summary, ledgerTable("Ledger", []string{"A", "Alice", "Savings", "North", "90", "1"}))

	if _, err := Compare(context.Background(), prev, curr, Options{}); !errors.Is(err, ErrMissingColumn) {
		t.Errorf("Compare() on the first sheet error = %v, want ErrMissingColumn", err)
	}

	r, err := Compare(context.Background(), prev, curr, Options{Sheet: "Ledger"})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if !r.Waterfall.IncreaseDecrease().Equal(NO(-10)) {
		t.Errorf("IncreaseDecrease() = %v, want -10", r.Waterfall.IncreaseDecrease())
	}
}

func TestCompare_UnparsableExtraSheet(t *testing.T) {
	ledger := ledgerTable("Ledger", []string{"A", "Alice", "Savings", "North", "100", "1"})
	notes := ledgerTable("Notes", []string{"A", "Alice", "Savings", "North", "n/a", "1"})
	prev := NewWorkbook("may.xlsx", ledger, notes)
	curr := NewWorkbook("june.xlsx", ledgerTable("Ledger", []string{"A", "Alice", "Savings", "North", "90", "1"}))

	r, err := Compare(context.Background(), prev, curr, Options{})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	for _, dim := range Dimensions {
		if !r.CommonDimensionPresent(dim) {
			t.Errorf("CommonDimensionPresent(%v) = false, want true", dim)
		}
	}
	if !r.ByBranch.Total.Change.Equal(NO(-10)) {
		t.Errorf("ByBranch.Total.Change = %v, want -10", r.ByBranch.Total.Change)
	}
	want := []string{
		`category rollup skipped may.xlsx: Notes: row 1, column "Balance": cannot parse "n/a"`,
		`branch rollup skipped may.xlsx: Notes: row 1, column "Balance": cannot parse "n/a"`,
	}
	if len(r.Diagnostics.Notes) != len(want) {
		t.Fatalf("Notes = %q, want %d notes", r.Diagnostics.Notes, len(want))
	}
	for i, note := range r.Diagnostics.Notes {
		if !strings.HasPrefix(note, want[i]) {
			t.Errorf("Notes[%d] = %q, want prefix %q", i, note, want[i])
		}
	}

	// the primary sheet must parse.
	prev = NewWorkbook("may.xlsx", notes, ledger)
	var ce *CellError
	if _, err := Compare(context.Background(), prev, curr, Options{}); !errors.As(err, &ce) {
		t.Errorf("Compare() error = %v, want a *CellError", err)
	}
}

func TestCompare_Diagnostics(t *testing.T) {
	prev := NewWorkbook("may.xlsx", ledgerTable("May",
		[]string{"A", "Alice", "Savings", "North", "10", "1"},
	))
	curr := NewWorkbook("june.xlsx", ledgerTable("June",
		[]string{"A", "Alice", "Savings", "North", "10", "1"},
		[]string{"A", "Alice", "Savings", "North", "10", "1"},
	))

	r, err := Compare(context.Background(), prev, curr, Options{Exclusions: NewExclusionSet()})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	d := r.Diagnostics
	if d.DuplicateRows != 1 {
		t.Errorf("DuplicateRows = %d, want 1", d.DuplicateRows)
	}
	if !d.Discrepancy.Equal(NO(10)) {
		t.Errorf("Discrepancy = %v, want 10", d.Discrepancy)
	}
	if len(d.Notes) != 2 {
		t.Errorf("Notes = %q, want a duplicate and a discrepancy note", d.Notes)
	}
}

func TestCompare_BranchlessRollup(t *testing.T) {
	minimal := func(name, balance string) *Table {
		return &Table{
			Name:   name,
			Header: []string{"Code", "AcType Desc", "Balance", "Limit"},
			Rows:   [][]string{{"A", "Savings", balance, "1"}},
		}
	}
	prev := NewWorkbook("may.xlsx", minimal("May", "10"))
	curr := NewWorkbook("june.xlsx", minimal("June", "12"))

	r, err := Compare(context.Background(), prev, curr, Options{})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	// both dimensions share the same precondition, a missing branch column
	// yields a single blank branch group.
	if !r.CommonDimensionPresent(ByAccountType) || !r.CommonDimensionPresent(ByBranch) {
		t.Fatalf("rollups = %v, %v, want both", r.ByCategory, r.ByBranch)
	}
	if got := r.ByBranch.Rows[0].Group; got != "" {
		t.Errorf("branch group = %q, want blank", got)
	}
	if !r.ByBranch.Total.Change.Equal(NO(2)) {
		t.Errorf("branch total change = %v, want 2", r.ByBranch.Total.Change)
	}
}
