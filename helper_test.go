package ledgerdiff

import "testing"

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// NO is a helper for test to create money from const with no currency set
func NO(v float64) Money { return M(v, "") }

// acc is a helper for test to create an active savings account.
func acc(code string, balance float64) AccountRecord {
	return AccountRecord{
		Code:            code,
		AccountTypeDesc: "Savings",
		BranchName:      "Main",
		Name:            "Holder " + code,
		Balance:         NO(balance),
		Limit:           NO(1),
	}
}

// withLimit returns a copy of r with another limit.
func withLimit(r AccountRecord, limit float64) AccountRecord {
	r.Limit = NO(limit)
	return r
}

// withType returns a copy of r with another account type.
func withType(r AccountRecord, accountType string) AccountRecord {
	r.AccountTypeDesc = accountType
	return r
}

// withBranch returns a copy of r with another branch.
func withBranch(r AccountRecord, branch string) AccountRecord {
	r.BranchName = branch
	return r
}

// codes returns the codes of records, in order.
func codes(records []AccountRecord) []string {
	var res []string
	for _, r := range records {
		res = append(res, r.Code)
	}
	return res
}

// mustNormalize normalizes s with no exclusion.
func mustNormalize(t *testing.T, s Snapshot) Snapshot {
	t.Helper()
	n, err := Normalize(s, nil)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	return n
}

// ledgerTable builds a table with the usual export header.
func ledgerTable(name string, rows ...[]string) *Table {
	return &Table{
		Name:   name,
		Header: []string{"Code", "Name", "AcType Desc", "Branch Name", "Balance", "Limit"},
		Rows:   rows,
	}
}
