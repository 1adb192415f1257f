package ledgerdiff

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/etnz/ledgerdiff/logger"
)

// Options tune how workbooks are read into snapshots.
type Options struct {
	// Currency of the balances, used for display only.
	Currency string
	// Exclusions are the account types left out. Nil means DefaultExclusions.
	Exclusions ExclusionSet
	// Sheet is the table compared account by account. Empty means the first
	// table of each workbook.
	Sheet string
}

func (o Options) exclusions() ExclusionSet {
	if o.Exclusions == nil {
		return DefaultExclusions()
	}
	return o.Exclusions
}

// Diagnostics collects the conditions that did not stop the comparison.
type Diagnostics struct {
	// DuplicateRows is the number of extra rows sharing a code.
	DuplicateRows int        `json:"duplicateRows"`
	Duplicates    Duplicates `json:"duplicates"`
	// Discrepancy is Closing - Adjusted.
	Discrepancy Money `json:"discrepancy"`
	// ZeroBaseGroups are rollup groups without previous balance, prefixed
	// by their dimension.
	ZeroBaseGroups []string `json:"zeroBaseGroups,omitempty"`
	Notes          []string `json:"notes,omitempty"`
}

// Report is the full comparison of two ledger snapshots.
type Report struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Previous  string    `json:"previous"`
	Current   string    `json:"current"`
	Currency  string    `json:"currency,omitempty"`

	Settled   []AccountRecord `json:"settled"`
	New       []AccountRecord `json:"new"`
	Movements []Movement      `json:"movements"`
	Waterfall Waterfall       `json:"waterfall"`

	// Rollups are nil when no pair of tables exposes the rollup columns.
	ByCategory *DimensionalRollup `json:"byCategory,omitempty"`
	ByBranch   *DimensionalRollup `json:"byBranch,omitempty"`

	Diagnostics Diagnostics `json:"diagnostics"`
}

// Rollup returns the rollup for d, if it was produced.
func (r *Report) Rollup(d Dimension) (*DimensionalRollup, bool) {
	res := r.ByCategory
	if d == ByBranch {
		res = r.ByBranch
	}
	return res, res != nil
}

// CommonDimensionPresent returns true if the rollup for d was produced.
func (r *Report) CommonDimensionPresent(d Dimension) bool {
	_, ok := r.Rollup(d)
	return ok
}

// now is replaced in tests.
var now = time.Now

// Compare reconciles two workbooks.
//
// The primary table of each workbook (see Options.Sheet) is normalized,
// diffed and reconciled; a missing required column there aborts the whole
// comparison. Both rollups scan every pair of tables and are simply left
// out when no pair qualifies.
func Compare(ctx context.Context, previous, current *Workbook, opts Options) (*Report, error) {
	log := logger.FromContext(ctx).With().Str("previous", previous.Name).Str("current", current.Name).Logger()

	pt, err := previous.primary(opts.Sheet)
	if err != nil {
		return nil, err
	}
	ct, err := current.primary(opts.Sheet)
	if err != nil {
		return nil, err
	}
	prev, err := NormalizeTable(pt, opts.Currency, opts.exclusions())
	if err != nil {
		return nil, fmt.Errorf("previous snapshot: %w", err)
	}
	curr, err := NormalizeTable(ct, opts.Currency, opts.exclusions())
	if err != nil {
		return nil, fmt.Errorf("current snapshot: %w", err)
	}
	log.Debug().Int("previousRows", prev.Len()).Int("currentRows", curr.Len()).Msg("snapshots normalized")

	partition := Diff(prev, curr)
	waterfall, err := Reconcile(prev, curr, partition)
	if err != nil {
		return nil, err
	}

	// the two rollups only read the workbooks.
	rollups := make([]*DimensionalRollup, len(Dimensions))
	skipped := make([][]SkippedTable, len(Dimensions))
	var g errgroup.Group
	for i, dim := range Dimensions {
		g.Go(func() error {
			r, ok, sk := RollupPairs(previous, current, dim, opts)
			if ok {
				rollups[i] = &r
			}
			skipped[i] = sk
			return nil
		})
	}
	g.Wait()

	report := &Report{
		ID:         uuid.NewString(),
		Timestamp:  now(),
		Previous:   previous.Name,
		Current:    current.Name,
		Currency:   opts.Currency,
		Settled:    partition.Settled,
		New:        partition.New,
		Movements:  partition.Continuing,
		Waterfall:  waterfall,
		ByCategory: rollups[0],
		ByBranch:   rollups[1],
		Diagnostics: Diagnostics{
			DuplicateRows: partition.Duplicates.Count(),
			Duplicates:    partition.Duplicates,
			Discrepancy:   waterfall.Discrepancy(),
		},
	}

	d := &report.Diagnostics
	if d.DuplicateRows > 0 {
		log.Warn().Int("rows", d.DuplicateRows).Msg("duplicate account codes, rows were cross joined")
		d.Notes = append(d.Notes, fmt.Sprintf("%d duplicate account rows", d.DuplicateRows))
	}
	if !d.Discrepancy.IsZero() {
		log.Warn().Str("discrepancy", d.Discrepancy.String()).Msg("adjusted balance differs from closing balance")
		d.Notes = append(d.Notes, fmt.Sprintf("adjusted balance differs from closing balance by %s", d.Discrepancy))
	}
	for i, dim := range Dimensions {
		for _, sk := range skipped[i] {
			log.Warn().Stringer("dimension", dim).Str("workbook", sk.Workbook).Str("table", sk.Table).Err(sk.Err).Msg("table left out of the rollup")
			d.Notes = append(d.Notes, fmt.Sprintf("%s rollup skipped %s", dim, sk))
		}
		r, ok := report.Rollup(dim)
		if !ok {
			log.Info().Stringer("dimension", dim).Msg("no common dimension, rollup omitted")
			d.Notes = append(d.Notes, fmt.Sprintf("no pair of sheets for the %s rollup", dim))
			continue
		}
		if zero := r.ZeroBaseGroups(); len(zero) > 0 {
			log.Debug().Stringer("dimension", dim).Strs("groups", zero).Msg("groups without previous balance")
			for _, group := range zero {
				d.ZeroBaseGroups = append(d.ZeroBaseGroups, dim.String()+": "+group)
			}
		}
	}
	return report, nil
}
