package ledgerdiff

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestReconcile(t *testing.T) {
	prev, curr := scenario(t)

	w, err := Reconcile(prev, curr, Diff(prev, curr))
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	want := []WaterfallRow{
		{Description: LabelOpening, Amount: NO(150), Count: count(2)},
		{Description: LabelSettled, Amount: NO(-50), Count: count(-1)},
		{Description: LabelNew, Amount: NO(30), Count: count(1)},
		{Description: LabelIncreaseDecrease, Amount: NO(20)},
		{Description: LabelAdjusted, Amount: NO(150)},
		{Description: LabelClosing, Amount: NO(150), Count: count(2)},
	}
	if diff := cmp.Diff(want, w.Rows); diff != "" {
		t.Errorf("Reconcile() mismatch (-want +got):\n%s", diff)
	}
	if !w.Balanced() {
		t.Errorf("Discrepancy() = %v, want 0", w.Discrepancy())
	}
	if got := w.Rows[3].CountString(); got != "" {
		t.Errorf("CountString() = %q, want empty", got)
	}
	if got := w.Rows[1].CountString(); got != "-1" {
		t.Errorf("CountString() = %q, want -1", got)
	}
}

func TestReconcile_MissingColumn(t *testing.T) {
	prev, _ := scenario(t)

	_, err := Reconcile(prev, Snapshot{}, Diff(prev, Snapshot{}))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("Reconcile() error = %v, want ErrMissingColumn", err)
	}
}

// randomSnapshot returns n accounts with unique codes drawn from pool, and
// cents balances.
func randomSnapshot(r *rand.Rand, label string, pool, n int) Snapshot {
	seen := make(map[int]bool)
	var records []AccountRecord
	for len(records) < n {
		k := r.Intn(pool)
		if seen[k] {
			continue
		}
		seen[k] = true
		rec := acc(fmt.Sprintf("AC%03d", k), 0)
		rec.Balance = M(decimal.New(r.Int63n(2_000_000_00)-1_000_000_00, -2), "")
		records = append(records, rec)
	}
	return NewSnapshot(label, records...)
}

func TestReconcile_Identity(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		prev := randomSnapshot(r, "prev", 60, r.Intn(40))
		curr := randomSnapshot(r, "curr", 60, r.Intn(40))
		p := Diff(prev, curr)

		w, err := Reconcile(prev, curr, p)
		if err != nil {
			t.Fatalf("Reconcile() error = %v", err)
		}
		sum := Sum(w.Opening(), w.Settled(), w.New(), w.IncreaseDecrease())
		if !w.Adjusted().Equal(sum) {
			t.Fatalf("round %d: Adjusted = %v, want %v", i, w.Adjusted(), sum)
		}
		// with unique codes every current account is explained.
		if !w.Balanced() {
			t.Fatalf("round %d: Discrepancy = %v, want 0", i, w.Discrepancy())
		}
		if got, want := *w.Rows[rowOpening].Count+*w.Rows[rowSettled].Count+*w.Rows[rowNew].Count, *w.Rows[rowClosing].Count; got != want {
			t.Fatalf("round %d: counts bridge to %d, want %d", i, got, want)
		}
	}
}

func TestReconcile_DuplicatesDiscrepancy(t *testing.T) {
	prev := NewSnapshot("prev", acc("A", 10))
	curr := NewSnapshot("curr", acc("A", 10), acc("A", 10))

	w, err := Reconcile(prev, curr, Diff(prev, curr))
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	// the bridge counts the cross join twice with no change; the closing
	// balance sees 20.
	if got := w.Discrepancy(); !got.Equal(NO(10)) {
		t.Errorf("Discrepancy() = %v, want 10", got)
	}
}
