package stamp

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Value is a single cell value: string, int64, float64, bool, or nil for a
// blank cell.
type Value = any

// Range is an absolute, 0-based rectangle on a worksheet.
type Range struct {
	Row  int
	Col  int
	Rows int
	Cols int
}

// RangeByIndexes returns the range starting at row/col spanning rows x cols.
func RangeByIndexes(row, col, rows, cols int) Range {
	return Range{Row: row, Col: col, Rows: rows, Cols: cols}
}

// Empty reports whether the range covers no cells.
func (r Range) Empty() bool {
	return r.Rows <= 0 || r.Cols <= 0
}

// LastRow returns the 0-based index of the bottom row.
func (r Range) LastRow() int {
	return r.Row + r.Rows - 1
}

// LastCol returns the 0-based index of the rightmost column.
func (r Range) LastCol() int {
	return r.Col + r.Cols - 1
}

// Address returns the A1 reference of the range, e.g. "A1:B3". A single cell
// is returned without the colon.
func (r Range) Address() string {
	if r.Empty() {
		return ""
	}
	start, err := excelize.CoordinatesToCellName(r.Col+1, r.Row+1)
	if err != nil {
		return ""
	}
	if r.Rows == 1 && r.Cols == 1 {
		return start
	}
	end, err := excelize.CoordinatesToCellName(r.LastCol()+1, r.LastRow()+1)
	if err != nil {
		return ""
	}
	return start + ":" + end
}

func (r Range) String() string {
	if r.Empty() {
		return "<empty>"
	}
	return r.Address()
}

// ParseAddress parses an A1 reference ("B2", "A1:C4", "'My Sheet'!A1:B2")
// into a Range. Any sheet prefix is ignored.
func ParseAddress(address string) (Range, error) {
	ref := address
	if i := strings.LastIndex(ref, "!"); i >= 0 {
		ref = ref[i+1:]
	}
	ref = strings.ReplaceAll(ref, "$", "")
	if ref == "" {
		return Range{}, fmt.Errorf("invalid range address %q", address)
	}

	parts := strings.SplitN(ref, ":", 2)
	col1, row1, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return Range{}, fmt.Errorf("invalid range address %q: %w", address, err)
	}
	col2, row2 := col1, row1
	if len(parts) == 2 {
		col2, row2, err = excelize.CellNameToCoordinates(parts[1])
		if err != nil {
			return Range{}, fmt.Errorf("invalid range address %q: %w", address, err)
		}
	}
	if col2 < col1 {
		col1, col2 = col2, col1
	}
	if row2 < row1 {
		row1, row2 = row2, row1
	}
	return RangeByIndexes(row1-1, col1-1, row2-row1+1, col2-col1+1), nil
}

// Worksheet is the set of host capabilities the routine consumes. The host
// owns the worksheet; implementations only translate calls.
type Worksheet interface {
	// Name returns the worksheet name as known to the host.
	Name() string
	// UsedRange returns the minimal rectangle containing data, or an empty
	// Range when the worksheet holds none.
	UsedRange(ctx context.Context) (Range, error)
	// Values returns the cell values of r, r.Rows rows of r.Cols values.
	Values(ctx context.Context, r Range) ([][]Value, error)
	// SetValues writes values into r, row by row from its top-left cell.
	SetValues(ctx context.Context, r Range, values [][]Value) error
	// AutofitColumns sizes the columns of r to their content.
	AutofitColumns(ctx context.Context, r Range) error
	// AddTable creates a table named name over r.
	AddTable(ctx context.Context, r Range, name string, hasHeaders bool) error
}

// TableRanger is implemented by hosts that may resize a table while
// creating it. Run reports the range returned here instead of the one it
// requested.
type TableRanger interface {
	TableRange(ctx context.Context, name string) (Range, error)
}
