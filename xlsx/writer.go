package xlsx

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/etnz/ledgerdiff"
)

// Sheet names of a written report.
const (
	SheetSettled    = "Settled"
	SheetNew        = "New"
	SheetMovement   = "Movement"
	SheetWaterfall  = "Waterfall"
	SheetByCategory = "By Category"
	SheetByBranch   = "By Branch"
)

var recordHeader = []any{"Code", "Name", "AcType Desc", "Branch Name", "Balance", "Limit"}

// WriteReport writes r as a workbook. Rollup sheets are only written for the
// rollups that were produced; their Total row is bold.
//
// Amounts are number cells when a float64 holds them back exactly. Beyond
// float64 precision they are written as their exact decimal text.
func WriteReport(w io.Writer, r *ledgerdiff.Report) error {
	f, err := reportFile(r)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// SaveReport writes r to the file at path.
func SaveReport(path string, r *ledgerdiff.Report) error {
	f, err := reportFile(r)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func reportFile(r *ledgerdiff.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	sw := sheetWriter{f: f, bold: bold}

	sw.records(SheetSettled, r.Settled)
	sw.records(SheetNew, r.New)
	sw.movements(r.Movements)
	sw.waterfall(r.Waterfall)
	for _, dim := range ledgerdiff.Dimensions {
		if ru, ok := r.Rollup(dim); ok {
			sw.rollup(rollupSheet(dim), ru)
		}
	}

	if sw.err == nil {
		// the default sheet of a new file.
		sw.err = f.DeleteSheet("Sheet1")
	}
	if sw.err == nil {
		var idx int
		idx, sw.err = f.GetSheetIndex(SheetWaterfall)
		f.SetActiveSheet(idx)
	}
	if sw.err != nil {
		f.Close()
		return nil, fmt.Errorf("writing report: %w", sw.err)
	}
	return f, nil
}

// amount returns the cell value of m.
func amount(m ledgerdiff.Money) any {
	f := m.Float()
	if decimal.NewFromFloat(f).Equal(m.Decimal()) {
		return f
	}
	return m.Decimal().String()
}

func rollupSheet(d ledgerdiff.Dimension) string {
	if d == ledgerdiff.ByBranch {
		return SheetByBranch
	}
	return SheetByCategory
}

// sheetWriter writes sheets until the first error.
type sheetWriter struct {
	f    *excelize.File
	bold int
	err  error
}

func (w *sheetWriter) sheet(name string, header []any) {
	if w.err != nil {
		return
	}
	if _, w.err = w.f.NewSheet(name); w.err != nil {
		return
	}
	w.row(name, 1, header)
	w.style(name, 1, len(header))
}

func (w *sheetWriter) row(sheet string, n int, values []any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

// style makes the first width cells of row n bold.
func (w *sheetWriter) style(sheet string, n, width int) {
	if w.err != nil {
		return
	}
	first, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	last, err := excelize.CoordinatesToCellName(width, n)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(sheet, first, last, w.bold)
}

func (w *sheetWriter) records(sheet string, records []ledgerdiff.AccountRecord) {
	w.sheet(sheet, recordHeader)
	for i, r := range records {
		w.row(sheet, i+2, []any{r.Code, r.Name, r.AccountTypeDesc, r.BranchName, amount(r.Balance), amount(r.Limit)})
	}
}

func (w *sheetWriter) movements(movements []ledgerdiff.Movement) {
	w.sheet(SheetMovement, []any{"Code", "Name", "AcType Desc", "Branch Name", "Current Balance", "Previous Balance", "Change"})
	for i, m := range movements {
		w.row(SheetMovement, i+2, []any{m.Code, m.Name, m.AccountTypeDesc, m.BranchName, amount(m.CurrentBalance), amount(m.PreviousBalance), amount(m.Change)})
	}
}

func (w *sheetWriter) waterfall(wf ledgerdiff.Waterfall) {
	w.sheet(SheetWaterfall, []any{"Description", "Amount", "Account Count"})
	for i, r := range wf.Rows {
		var count any
		if r.Count != nil {
			count = *r.Count
		}
		w.row(SheetWaterfall, i+2, []any{r.Description, amount(r.Amount), count})
	}
}

func (w *sheetWriter) rollup(sheet string, r *ledgerdiff.DimensionalRollup) {
	header := []any{r.Dimension.Title(), "Previous Sum", "Previous Count", "Current Sum", "Current Count", "Change", "Percent Change"}
	w.sheet(sheet, header)
	line := func(n int, row ledgerdiff.RollupRow) {
		w.row(sheet, n, []any{row.Group, amount(row.PreviousSum), row.PreviousCount, amount(row.CurrentSum), row.CurrentCount, amount(row.Change), float64(row.PercentChange)})
	}
	for i, row := range r.Rows {
		line(i+2, row)
	}
	n := len(r.Rows) + 2
	line(n, r.Total)
	w.style(sheet, n, len(header))
}
