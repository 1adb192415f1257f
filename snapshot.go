package ledgerdiff

import (
	"strings"
)

// AccountRecord is one row of a ledger snapshot.
type AccountRecord struct {
	Code            string `json:"code"`
	AccountTypeDesc string `json:"accountTypeDesc"`
	BranchName      string `json:"branchName,omitempty"`
	Name            string `json:"name,omitempty"`
	Balance         Money  `json:"balance"`
	Limit           Money  `json:"limit"`
}

// Snapshot is a point-in-time list of account records.
//
// A Snapshot is immutable: every operation on it returns a new value. Its
// zero value is an empty snapshot that exposes no column at all.
type Snapshot struct {
	label   string
	records []AccountRecord
	columns columnSet
}

// NewSnapshot returns a snapshot exposing every column, holding a copy of
// records.
//
// Balances and limits must share one currency, or have none: sums over
// records of different currencies panic.
func NewSnapshot(label string, records ...AccountRecord) Snapshot {
	return Snapshot{
		label:   label,
		records: append([]AccountRecord(nil), records...),
		columns: allColumns(),
	}
}

// ParseSnapshot reads the rows of t into a snapshot.
//
// The columns listed in RequiredColumns must be present, otherwise a
// *MissingColumnError is returned. Branch and name are optional. Rows whose
// cells are all blank are skipped.
func ParseSnapshot(t *Table, currency string) (Snapshot, error) {
	if err := t.Require(RequiredColumns...); err != nil {
		return Snapshot{}, err
	}
	idx := t.index()

	s := Snapshot{label: t.Name}
	for c := range idx {
		s.columns = s.columns.with(c)
	}

	cell := func(row []string, c Column) string {
		i, ok := idx[c]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	s.records = make([]AccountRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		if isBlank(row) {
			continue
		}
		balance, err := ParseMoney(cell(row, ColumnBalance), currency)
		if err != nil {
			return Snapshot{}, &CellError{Table: t.Name, Row: i + 1, Column: ColumnBalance, Value: cell(row, ColumnBalance), Err: err}
		}
		limit, err := ParseMoney(cell(row, ColumnLimit), currency)
		if err != nil {
			return Snapshot{}, &CellError{Table: t.Name, Row: i + 1, Column: ColumnLimit, Value: cell(row, ColumnLimit), Err: err}
		}
		s.records = append(s.records, AccountRecord{
			Code:            cell(row, ColumnCode),
			AccountTypeDesc: cell(row, ColumnAccountType),
			BranchName:      cell(row, ColumnBranch),
			Name:            cell(row, ColumnName),
			Balance:         balance,
			Limit:           limit,
		})
	}
	return s, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Label returns the name of the table the snapshot was read from.
func (s Snapshot) Label() string { return s.label }

// Len returns the number of records.
func (s Snapshot) Len() int { return len(s.records) }

// Records returns a copy of the records, in their original order.
func (s Snapshot) Records() []AccountRecord {
	return append([]AccountRecord(nil), s.records...)
}

// Has returns true if the snapshot exposes all the columns.
func (s Snapshot) Has(cols ...Column) bool {
	return s.require(cols...) == nil
}

func (s Snapshot) require(cols ...Column) error {
	for _, c := range cols {
		if !s.columns.has(c) {
			return &MissingColumnError{Table: s.label, Column: c}
		}
	}
	return nil
}

// Codes returns the distinct account codes in order of first appearance.
func (s Snapshot) Codes() []string {
	seen := make(map[string]struct{}, len(s.records))
	codes := make([]string, 0, len(s.records))
	for _, r := range s.records {
		if _, ok := seen[r.Code]; ok {
			continue
		}
		seen[r.Code] = struct{}{}
		codes = append(codes, r.Code)
	}
	return codes
}

// Total returns the sum of all balances.
func (s Snapshot) Total() Money {
	var total Money
	for _, r := range s.records {
		total = total.Add(r.Balance)
	}
	return total
}

// filter returns a snapshot with the records accepted by keep.
func (s Snapshot) filter(keep func(AccountRecord) bool) Snapshot {
	out := Snapshot{label: s.label, columns: s.columns}
	out.records = make([]AccountRecord, 0, len(s.records))
	for _, r := range s.records {
		if keep(r) {
			out.records = append(out.records, r)
		}
	}
	return out
}
