package ledgerdiff

// Movement is a continuing account: present in both snapshots.
type Movement struct {
	Code            string `json:"code"`
	AccountTypeDesc string `json:"accountTypeDesc"`
	BranchName      string `json:"branchName,omitempty"`
	Name            string `json:"name,omitempty"`
	CurrentBalance  Money  `json:"currentBalance"`
	PreviousBalance Money  `json:"previousBalance"`
	Change          Money  `json:"change"` // CurrentBalance - PreviousBalance
}

// DuplicateCode is a code found on more than one row of a snapshot.
type DuplicateCode struct {
	Code string `json:"code"`
	Rows int    `json:"rows"`
}

// Duplicates lists the duplicated codes of each snapshot.
type Duplicates struct {
	Previous []DuplicateCode `json:"previous,omitempty"`
	Current  []DuplicateCode `json:"current,omitempty"`
}

// Count returns the number of extra rows, on both sides.
func (d Duplicates) Count() int {
	n := 0
	for _, list := range [][]DuplicateCode{d.Previous, d.Current} {
		for _, c := range list {
			n += c.Rows - 1
		}
	}
	return n
}

// Partition is the three-way split of two snapshots by account code.
type Partition struct {
	Settled    []AccountRecord // previous records whose code is gone
	New        []AccountRecord // current records whose code is new
	Continuing []Movement      // one per previous x current pair of a shared code

	// Distinct codes, in order of first appearance.
	PreviousCodes []string
	CurrentCodes  []string
	SettledCodes  []string
	NewCodes      []string
	SharedCodes   []string

	Duplicates Duplicates
}

// SettledTotal returns the sum of the settled balances.
func (p Partition) SettledTotal() Money { return sumBalances(p.Settled) }

// NewTotal returns the sum of the new balances.
func (p Partition) NewTotal() Money { return sumBalances(p.New) }

// ChangeTotal returns the sum of the continuing changes.
func (p Partition) ChangeTotal() Money {
	var total Money
	for _, m := range p.Continuing {
		total = total.Add(m.Change)
	}
	return total
}

func sumBalances(records []AccountRecord) Money {
	var total Money
	for _, r := range records {
		total = total.Add(r.Balance)
	}
	return total
}

// codeIndex groups records by code, keeping the order of first appearance.
type codeIndex struct {
	order []string
	rows  map[string][]AccountRecord
}

func indexByCode(records []AccountRecord) codeIndex {
	idx := codeIndex{rows: make(map[string][]AccountRecord, len(records))}
	for _, r := range records {
		if _, ok := idx.rows[r.Code]; !ok {
			idx.order = append(idx.order, r.Code)
		}
		idx.rows[r.Code] = append(idx.rows[r.Code], r)
	}
	return idx
}

func (idx codeIndex) contains(code string) bool {
	_, ok := idx.rows[code]
	return ok
}

func (idx codeIndex) duplicates() []DuplicateCode {
	var dups []DuplicateCode
	for _, code := range idx.order {
		if n := len(idx.rows[code]); n > 1 {
			dups = append(dups, DuplicateCode{Code: code, Rows: n})
		}
	}
	return dups
}

// Diff partitions accounts into settled, new and continuing.
//
// A code found several times in a snapshot is not an error: every previous
// row of a shared code is paired with every current row of that code, and
// the duplicates are reported in Partition.Duplicates.
func Diff(previous, current Snapshot) Partition {
	prev := indexByCode(previous.records)
	curr := indexByCode(current.records)

	p := Partition{
		PreviousCodes: prev.order,
		CurrentCodes:  curr.order,
		Duplicates: Duplicates{
			Previous: prev.duplicates(),
			Current:  curr.duplicates(),
		},
	}

	for _, code := range prev.order {
		if curr.contains(code) {
			p.SharedCodes = append(p.SharedCodes, code)
		} else {
			p.SettledCodes = append(p.SettledCodes, code)
		}
	}
	for _, code := range curr.order {
		if !prev.contains(code) {
			p.NewCodes = append(p.NewCodes, code)
		}
	}

	for _, r := range previous.records {
		if !curr.contains(r.Code) {
			p.Settled = append(p.Settled, r)
			continue
		}
		for _, c := range curr.rows[r.Code] {
			p.Continuing = append(p.Continuing, newMovement(r, c))
		}
	}
	for _, r := range current.records {
		if !prev.contains(r.Code) {
			p.New = append(p.New, r)
		}
	}
	return p
}

// newMovement pairs two records of the same code. The descriptive fields
// of the current record win, the previous ones fill the blanks.
func newMovement(previous, current AccountRecord) Movement {
	return Movement{
		Code:            current.Code,
		AccountTypeDesc: firstNonBlank(current.AccountTypeDesc, previous.AccountTypeDesc),
		BranchName:      firstNonBlank(current.BranchName, previous.BranchName),
		Name:            firstNonBlank(current.Name, previous.Name),
		CurrentBalance:  current.Balance,
		PreviousBalance: previous.Balance,
		Change:          NewComparison(previous.Balance, current.Balance).Change(),
	}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
