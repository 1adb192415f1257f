package ledgerdiff

import "strconv"

// Waterfall row labels, in order.
const (
	LabelOpening          = "Opening"
	LabelSettled          = "Settled"
	LabelNew              = "New"
	LabelIncreaseDecrease = "Increase/Decrease"
	LabelAdjusted         = "Adjusted"
	LabelClosing          = "Closing"
)

const (
	rowOpening = iota
	rowSettled
	rowNew
	rowIncreaseDecrease
	rowAdjusted
	rowClosing
)

// WaterfallRow is one step of the bridge from opening to closing balance.
type WaterfallRow struct {
	Description string `json:"description"`
	// Amount is the effect of the row on the running total.
	Amount Money `json:"amount"`
	// Count is the number of accounts, nil when the row has none.
	Count *int `json:"accountCount"`
}

// CountString returns the account count, or "" when there is none.
func (r WaterfallRow) CountString() string {
	if r.Count == nil {
		return ""
	}
	return strconv.Itoa(*r.Count)
}

// Waterfall bridges the opening balance to the closing balance.
//
// Adjusted is always exactly Opening + Settled + New + Increase/Decrease
// (Settled being already negative). Closing is computed independently from
// the current snapshot, the two are not forced to agree.
type Waterfall struct {
	Rows []WaterfallRow `json:"rows"`
}

func (w Waterfall) row(i int) WaterfallRow {
	if i >= len(w.Rows) {
		return WaterfallRow{}
	}
	return w.Rows[i]
}

func (w Waterfall) Opening() Money { return w.row(rowOpening).Amount }

// Settled returns the settled amount as shown, that is negated.
func (w Waterfall) Settled() Money          { return w.row(rowSettled).Amount }
func (w Waterfall) New() Money              { return w.row(rowNew).Amount }
func (w Waterfall) IncreaseDecrease() Money { return w.row(rowIncreaseDecrease).Amount }
func (w Waterfall) Adjusted() Money         { return w.row(rowAdjusted).Amount }
func (w Waterfall) Closing() Money          { return w.row(rowClosing).Amount }

// Discrepancy returns Closing - Adjusted. It is zero when every account of
// the current snapshot is explained by the bridge.
func (w Waterfall) Discrepancy() Money {
	return w.Closing().Sub(w.Adjusted())
}

// Balanced returns true when the bridge lands on the closing balance.
func (w Waterfall) Balanced() bool { return w.Discrepancy().IsZero() }

func count(n int) *int { return &n }

// Reconcile builds the waterfall of a partition computed from previous and
// current.
//
// Both snapshots must expose the code and balance columns, otherwise a
// *MissingColumnError is returned and nothing is computed.
func Reconcile(previous, current Snapshot, p Partition) (Waterfall, error) {
	for _, s := range []Snapshot{previous, current} {
		if err := s.require(ColumnCode, ColumnBalance); err != nil {
			return Waterfall{}, err
		}
	}

	opening := previous.Total()
	settled := p.SettledTotal()
	added := p.NewTotal()
	increaseDecrease := p.ChangeTotal()
	adjusted := opening.Sub(settled).Add(added).Add(increaseDecrease)
	closing := current.Total()

	return Waterfall{Rows: []WaterfallRow{
		{Description: LabelOpening, Amount: opening, Count: count(len(p.PreviousCodes))},
		{Description: LabelSettled, Amount: settled.Neg(), Count: count(-len(p.SettledCodes))},
		{Description: LabelNew, Amount: added, Count: count(len(p.NewCodes))},
		{Description: LabelIncreaseDecrease, Amount: increaseDecrease},
		{Description: LabelAdjusted, Amount: adjusted},
		{Description: LabelClosing, Amount: closing, Count: count(len(p.CurrentCodes))},
	}}, nil
}
