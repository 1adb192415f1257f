// Package xlsx reads ledger exports into workbooks and writes reconciliation
// reports as spreadsheets.
package xlsx

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/ledgerdiff"
	"github.com/xuri/excelize/v2"
)

// headerScanRows is how deep a sheet is searched for its header row.
const headerScanRows = 20

// ReadWorkbook loads every sheet of an .xlsx file, or the single table of a
// .csv file.
func ReadWorkbook(path string) (*ledgerdiff.Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadWorkbookFrom(f, path)
}

// ReadWorkbookFrom loads a workbook from r. The extension of name selects the
// format, and its base name becomes the workbook name.
func ReadWorkbookFrom(r io.Reader, name string) (*ledgerdiff.Workbook, error) {
	base := filepath.Base(name)
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		t, err := readCSV(r, strings.TrimSuffix(base, filepath.Ext(base)))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", base, err)
		}
		wb := ledgerdiff.NewWorkbook(base)
		if t != nil {
			wb.Tables = append(wb.Tables, t)
		}
		return wb, nil
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", base, err)
	}
	defer f.Close()

	wb := ledgerdiff.NewWorkbook(base)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("reading %s sheet %q: %w", base, sheet, err)
		}
		if t := newTable(sheet, rows); t != nil {
			wb.Tables = append(wb.Tables, t)
		}
	}
	return wb, nil
}

func readCSV(r io.Reader, name string) (*ledgerdiff.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return newTable(name, rows), nil
}

// newTable splits rows into a header and data rows. It returns nil for a
// sheet without any value.
func newTable(name string, rows [][]string) *ledgerdiff.Table {
	h := headerRow(rows)
	if h < 0 {
		return nil
	}
	return &ledgerdiff.Table{Name: name, Header: rows[h], Rows: rows[h+1:]}
}

// headerRow returns the index of the first row naming both the code and the
// balance columns, or else of the first non-blank row. Exports often start
// with a title block.
func headerRow(rows [][]string) int {
	first := -1
	for i, row := range rows {
		if i >= headerScanRows && first >= 0 {
			break
		}
		if first < 0 && !blank(row) {
			first = i
		}
		var code, balance bool
		for _, cell := range row {
			c, ok := ledgerdiff.LookupColumn(cell)
			if !ok {
				continue
			}
			code = code || c == ledgerdiff.ColumnCode
			balance = balance || c == ledgerdiff.ColumnBalance
		}
		if code && balance {
			return i
		}
	}
	return first
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
