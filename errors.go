package ledgerdiff

import (
	"errors"
	"fmt"
)

// ErrMissingColumn is matched by every *MissingColumnError.
var ErrMissingColumn = errors.New("missing column")

// ErrEmptyWorkbook is returned when a workbook has no table to compare.
var ErrEmptyWorkbook = errors.New("workbook has no table")

// ErrSheetNotFound is returned when the requested sheet is not in a workbook.
var ErrSheetNotFound = errors.New("sheet not found")

// MissingColumnError reports a required column absent from a table or a
// snapshot.
type MissingColumnError struct {
	Table  string
	Column Column
}

func (e *MissingColumnError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("missing column %q", e.Column)
	}
	return fmt.Sprintf("%s: missing column %q", e.Table, e.Column)
}

func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }

// CellError reports a cell that could not be parsed.
type CellError struct {
	Table  string
	Row    int // 1-based, counting data rows only
	Column Column
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("%s: row %d, column %q: cannot parse %q: %v", e.Table, e.Row, e.Column, e.Value, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }
