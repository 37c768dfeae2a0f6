package excel

import (
	"fmt"
	"strconv"
	"strings"

	"sheetStamp/internal/stamp"

	"github.com/xuri/excelize/v2"
)

type Editor struct {
	file     *excelize.File
	filepath string
}

// OpenFile opens an existing Excel file
func OpenFile(filepath string) (*Editor, error) {
	file, err := excelize.OpenFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return &Editor{
		file:     file,
		filepath: filepath,
	}, nil
}

// CreateNewFile creates a new Excel file in memory
func CreateNewFile() *Editor {
	return &Editor{
		file:     excelize.NewFile(),
		filepath: "",
	}
}

// File exposes the underlying workbook
func (e *Editor) File() *excelize.File {
	return e.file
}

// GetSheetNames returns all sheet names in the workbook
func (e *Editor) GetSheetNames() []string {
	return e.file.GetSheetList()
}

// ActiveSheet returns the name of the sheet that was active when the file was saved
func (e *Editor) ActiveSheet() string {
	return e.file.GetSheetName(e.file.GetActiveSheetIndex())
}

// Worksheet returns the stamp host for a sheet. An empty name selects the
// active sheet.
func (e *Editor) Worksheet(sheet, tableStyle string) (*Sheet, error) {
	if sheet == "" {
		sheet = e.ActiveSheet()
	}
	idx, err := e.file.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("invalid sheet name %q: %w", sheet, err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", stamp.ErrSheetNotFound, sheet)
	}
	return &Sheet{
		file:       e.file,
		name:       sheet,
		tableStyle: tableStyle,
	}, nil
}

// SetCellValue sets a value in a specific cell
func (e *Editor) SetCellValue(sheet, cell string, value interface{}) error {
	return e.file.SetCellValue(sheet, cell, value)
}

// GetCellValue returns the value in a specific cell
func (e *Editor) GetCellValue(sheet, cell string) (string, error) {
	return e.file.GetCellValue(sheet, cell)
}

// GetAllRows returns all rows from a sheet
func (e *Editor) GetAllRows(sheet string) ([][]string, error) {
	return e.file.GetRows(sheet)
}

// Save saves the Excel file to the original filepath
func (e *Editor) Save() error {
	if e.filepath == "" {
		return fmt.Errorf("no filepath specified, use SaveAs instead")
	}
	return e.file.SaveAs(e.filepath)
}

// SaveAs saves the Excel file with a new name
func (e *Editor) SaveAs(filepath string) error {
	e.filepath = filepath
	return e.file.SaveAs(filepath)
}

// Close closes the Excel file
func (e *Editor) Close() error {
	return e.file.Close()
}

// parseNumericValue attempts to parse a string as a number and returns the appropriate type
// Returns the original string if it's not a valid number
func parseNumericValue(value string) interface{} {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return value
	}

	// Try to parse as integer first
	if intVal, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return intVal
	}

	if floatVal, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return floatVal
	}

	return value
}
