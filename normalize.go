package ledgerdiff

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Marker rows written by the core banking export between and after the
// account type groups. They are not accounts.
const (
	SubtotalMarker   = "AcType Total"
	GrandTotalMarker = "Grand Total"
)

// normalizeLabel returns the comparison form of a label.
func normalizeLabel(s string) string {
	// a Caser is stateful, it must not be shared.
	return cases.Upper(language.Und).String(strings.TrimSpace(s))
}

// ExclusionSet is a case-insensitive set of account types left out of the
// comparison.
type ExclusionSet map[string]struct{}

func NewExclusionSet(accountTypes ...string) ExclusionSet {
	set := make(ExclusionSet, len(accountTypes))
	for _, t := range accountTypes {
		if n := normalizeLabel(t); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// DefaultAccountTypeExclusions are the staff and employee loan products.
var DefaultAccountTypeExclusions = []string{
	"STAFF LOAN",
	"STAFF HOUSING LOAN",
	"STAFF CAR LOAN",
	"STAFF PERSONAL LOAN",
	"STAFF OVERDRAFT",
	"STAFF CREDIT CARD",
	"EMPLOYEE LOAN",
	"EMPLOYEE HOUSING LOAN",
}

// DefaultExclusions returns a new set made of DefaultAccountTypeExclusions.
func DefaultExclusions() ExclusionSet {
	return NewExclusionSet(DefaultAccountTypeExclusions...)
}

// Contains returns true if accountType is excluded.
func (e ExclusionSet) Contains(accountType string) bool {
	_, ok := e[normalizeLabel(accountType)]
	return ok
}

// List returns the normalized account types in alphabetical order.
func (e ExclusionSet) List() []string {
	list := make([]string, 0, len(e))
	for t := range e {
		list = append(list, t)
	}
	sort.Strings(list)
	return list
}

// isMarker returns true for the total rows of an export.
func isMarker(code string) bool {
	return code == SubtotalMarker || code == GrandTotalMarker
}

// Normalize returns the comparable part of s.
//
// Records are dropped when their account type is excluded, their limit is
// zero, or their code is a total marker. Kept records are returned unchanged
// and in order; the case-insensitive account type is only used to decide.
// Normalize(Normalize(s)) is Normalize(s).
func Normalize(s Snapshot, excluded ExclusionSet) (Snapshot, error) {
	if err := s.require(RequiredColumns...); err != nil {
		return Snapshot{}, err
	}
	return s.filter(func(r AccountRecord) bool {
		switch {
		case isMarker(r.Code):
			return false
		case r.Limit.IsZero():
			return false
		case excluded.Contains(r.AccountTypeDesc):
			return false
		}
		return true
	}), nil
}

// NormalizeTable parses t and normalizes the resulting snapshot.
func NormalizeTable(t *Table, currency string, excluded ExclusionSet) (Snapshot, error) {
	s, err := ParseSnapshot(t, currency)
	if err != nil {
		return Snapshot{}, err
	}
	return Normalize(s, excluded)
}
