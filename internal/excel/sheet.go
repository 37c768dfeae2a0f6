package excel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sheetStamp/internal/stamp"

	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"
)

// MinColumnWidth is the narrowest width autofit assigns, close to the
// default width of a new sheet.
const MinColumnWidth = 8.43

// columnPadding is added to the widest display width in a column.
const columnPadding = 2

// DefaultTableStyle is applied to created tables unless configured otherwise.
const DefaultTableStyle = "TableStyleMedium2"

// Sheet is a stamp.Worksheet backed by one sheet of an excelize workbook.
// Context arguments are ignored; every call works on the in-memory file.
type Sheet struct {
	file       *excelize.File
	name       string
	tableStyle string
}

func (s *Sheet) Name() string {
	return s.name
}

// UsedRange returns the bounding box of non-empty cells.
func (s *Sheet) UsedRange(ctx context.Context) (stamp.Range, error) {
	rows, err := s.file.GetRows(s.name, excelize.Options{RawCellValue: true})
	if err != nil {
		return stamp.Range{}, err
	}

	minRow, maxRow, minCol, maxCol := findDataBounds(rows)
	if minRow < 0 {
		return stamp.Range{}, nil
	}
	return stamp.RangeByIndexes(minRow, minCol, maxRow-minRow+1, maxCol-minCol+1), nil
}

// Values reads r with each cell typed back from its raw text.
func (s *Sheet) Values(ctx context.Context, r stamp.Range) ([][]stamp.Value, error) {
	rows, err := s.file.GetRows(s.name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	values := make([][]stamp.Value, r.Rows)
	for i := range values {
		values[i] = make([]stamp.Value, r.Cols)
		rowIdx := r.Row + i
		if rowIdx >= len(rows) {
			continue
		}
		for j := range values[i] {
			colIdx := r.Col + j
			if colIdx >= len(rows[rowIdx]) || rows[rowIdx][colIdx] == "" {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, err
			}
			values[i][j], err = s.typedValue(cellName, rows[rowIdx][colIdx])
			if err != nil {
				return nil, err
			}
		}
	}
	return values, nil
}

// typedValue converts raw cell text back to the value it was written as.
func (s *Sheet) typedValue(cellName, raw string) (stamp.Value, error) {
	cellType, err := s.file.GetCellType(s.name, cellName)
	if err != nil {
		return nil, err
	}
	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "TRUE"), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError, excelize.CellTypeDate:
		return raw, nil
	default:
		return parseNumericValue(raw), nil
	}
}

// SetValues writes values row by row starting at the top-left cell of r.
// Blank values clear the cell content.
func (s *Sheet) SetValues(ctx context.Context, r stamp.Range, values [][]stamp.Value) error {
	for i, row := range values {
		cell, err := excelize.CoordinatesToCellName(r.Col+1, r.Row+i+1)
		if err != nil {
			return err
		}
		rowValues := make([]interface{}, r.Cols)
		copy(rowValues, row)
		if err := s.file.SetSheetRow(s.name, cell, &rowValues); err != nil {
			return fmt.Errorf("failed to write row %s: %w", cell, err)
		}
	}
	return nil
}

// AutofitColumns sets each column of r to the widest displayed value in r.
func (s *Sheet) AutofitColumns(ctx context.Context, r stamp.Range) error {
	if r.Empty() {
		return nil
	}
	rows, err := s.file.GetRows(s.name)
	if err != nil {
		return err
	}

	for j := 0; j < r.Cols; j++ {
		colIdx := r.Col + j
		widest := 0
		for i := r.Row; i <= r.LastRow() && i < len(rows); i++ {
			if colIdx >= len(rows[i]) {
				continue
			}
			if w := displayWidth(rows[i][colIdx]); w > widest {
				widest = w
			}
		}

		colName, err := excelize.ColumnNumberToName(colIdx + 1)
		if err != nil {
			return err
		}
		if err := s.file.SetColWidth(s.name, colName, colName, columnWidth(widest)); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", colName, err)
		}
	}
	return nil
}

// AddTable creates a table over r. A name already used anywhere in the
// workbook fails with stamp.ErrTableExists.
func (s *Sheet) AddTable(ctx context.Context, r stamp.Range, name string, hasHeaders bool) error {
	table := &excelize.Table{
		Range:     rangeRef(r),
		Name:      name,
		StyleName: s.tableStyle,
	}
	if !hasHeaders {
		showHeader := false
		table.ShowHeaderRow = &showHeader
	}

	err := s.file.AddTable(s.name, table)
	if errors.Is(err, excelize.ErrExistsTableName) {
		return fmt.Errorf("%w: %s", stamp.ErrTableExists, name)
	}
	return err
}

// TableRange returns the range of the named table on the sheet as stored in
// the workbook.
func (s *Sheet) TableRange(ctx context.Context, name string) (stamp.Range, error) {
	tables, err := s.file.GetTables(s.name)
	if err != nil {
		return stamp.Range{}, err
	}
	for _, t := range tables {
		if t.Name == name {
			return stamp.ParseAddress(t.Range)
		}
	}
	return stamp.Range{}, fmt.Errorf("table %s not found on sheet %s", name, s.name)
}

// Tables returns the names of the tables on the sheet.
func (s *Sheet) Tables() ([]string, error) {
	tables, err := s.file.GetTables(s.name)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.Name)
	}
	return names, nil
}

// rangeRef returns the address of r with both corners, as excelize expects
// for tables even when r is a single cell.
func rangeRef(r stamp.Range) string {
	addr := r.Address()
	if !strings.Contains(addr, ":") {
		addr += ":" + addr
	}
	return addr
}

func displayWidth(value string) int {
	widest := 0
	for _, line := range strings.Split(value, "\n") {
		if w := runewidth.StringWidth(line); w > widest {
			widest = w
		}
	}
	return widest
}

func columnWidth(textWidth int) float64 {
	width := float64(textWidth + columnPadding)
	if width < MinColumnWidth {
		return MinColumnWidth
	}
	if width > excelize.MaxColumnWidth {
		return excelize.MaxColumnWidth
	}
	return width
}

// findDataBounds finds the bounding box of non-empty cells.
func findDataBounds(rows [][]string) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell == "" {
				continue
			}
			if minRow < 0 || rowIdx < minRow {
				minRow = rowIdx
			}
			if rowIdx > maxRow {
				maxRow = rowIdx
			}
			if minCol < 0 || colIdx < minCol {
				minCol = colIdx
			}
			if colIdx > maxCol {
				maxCol = colIdx
			}
		}
	}

	return
}
