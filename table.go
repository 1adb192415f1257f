package ledgerdiff

import (
	"fmt"
	"strings"
)

// Column identifies a logical column of a ledger snapshot.
type Column int

const (
	ColumnCode Column = iota
	ColumnAccountType
	ColumnBranch
	ColumnName
	ColumnBalance
	ColumnLimit
	numColumns
)

var columnNames = [numColumns]string{
	ColumnCode:        "Code",
	ColumnAccountType: "AcType Desc",
	ColumnBranch:      "Branch Name",
	ColumnName:        "Name",
	ColumnBalance:     "Balance",
	ColumnLimit:       "Limit",
}

// String returns the canonical header of the column.
func (c Column) String() string {
	if c < 0 || c >= numColumns {
		return fmt.Sprintf("Column(%d)", int(c))
	}
	return columnNames[c]
}

// headerAliases maps normalized headers to their column.
var headerAliases = map[string]Column{
	"CODE":              ColumnCode,
	"ACCOUNT CODE":      ColumnCode,
	"ACTYPE DESC":       ColumnAccountType,
	"ACCOUNTTYPEDESC":   ColumnAccountType,
	"ACCOUNT TYPE":      ColumnAccountType,
	"ACCOUNT TYPE DESC": ColumnAccountType,
	"BRANCH NAME":       ColumnBranch,
	"BRANCHNAME":        ColumnBranch,
	"BRANCH":            ColumnBranch,
	"NAME":              ColumnName,
	"ACCOUNT NAME":      ColumnName,
	"BALANCE":           ColumnBalance,
	"LIMIT":             ColumnLimit,
}

// LookupColumn returns the column a header refers to. Headers are matched
// case-insensitively, ignoring surrounding spaces.
func LookupColumn(header string) (Column, bool) {
	c, ok := headerAliases[strings.ToUpper(strings.Join(strings.Fields(header), " "))]
	return c, ok
}

// RequiredColumns must be present in a table for it to be compared.
var RequiredColumns = []Column{ColumnAccountType, ColumnLimit, ColumnCode, ColumnBalance}

// columnSet is a bit set of columns.
type columnSet uint8

func (s columnSet) with(c Column) columnSet { return s | 1<<c }
func (s columnSet) has(c Column) bool      { return s&(1<<c) != 0 }

func allColumns() (s columnSet) {
	for c := Column(0); c < numColumns; c++ {
		s = s.with(c)
	}
	return s
}

// Table is a named tabular dataset: a header and rows of cells.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// index maps each recognized column to its position. The first header
// matching a column wins.
func (t *Table) index() map[Column]int {
	idx := make(map[Column]int, numColumns)
	for i, h := range t.Header {
		c, ok := LookupColumn(h)
		if !ok {
			continue
		}
		if _, exists := idx[c]; !exists {
			idx[c] = i
		}
	}
	return idx
}

// Has returns true if the table exposes all the columns.
func (t *Table) Has(cols ...Column) bool {
	return t.Require(cols...) == nil
}

// Require returns a *MissingColumnError for the first missing column.
func (t *Table) Require(cols ...Column) error {
	idx := t.index()
	for _, c := range cols {
		if _, ok := idx[c]; !ok {
			return &MissingColumnError{Table: t.Name, Column: c}
		}
	}
	return nil
}

// Workbook is an ordered list of tables loaded from the same source.
type Workbook struct {
	Name   string
	Tables []*Table
}

func NewWorkbook(name string, tables ...*Table) *Workbook {
	return &Workbook{Name: name, Tables: tables}
}

// Table returns the table called name.
func (w *Workbook) Table(name string) (*Table, bool) {
	for _, t := range w.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// primary returns the table used for the account level comparison: the one
// called sheet, or the first table when sheet is empty.
func (w *Workbook) primary(sheet string) (*Table, error) {
	if sheet != "" {
		t, ok := w.Table(sheet)
		if !ok {
			return nil, fmt.Errorf("%s: %w: %q", w.Name, ErrSheetNotFound, sheet)
		}
		return t, nil
	}
	if len(w.Tables) == 0 {
		return nil, fmt.Errorf("%s: %w", w.Name, ErrEmptyWorkbook)
	}
	return w.Tables[0], nil
}
