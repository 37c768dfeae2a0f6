package excel

import (
	"context"
	"testing"
	"time"

	"sheetStamp/internal/stamp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestSheet(t *testing.T, cells map[string]interface{}) (*Editor, *Sheet) {
	t.Helper()
	editor := CreateNewFile()
	t.Cleanup(func() { editor.Close() })

	for cell, value := range cells {
		require.NoError(t, editor.SetCellValue("Sheet1", cell, value))
	}
	sheet, err := editor.Worksheet("Sheet1", DefaultTableStyle)
	require.NoError(t, err)
	return editor, sheet
}

func stampOptions(t *testing.T) stamp.Options {
	t.Helper()
	f, err := stamp.NewLabelFormatter("", "sk-SK", "UTC")
	require.NoError(t, err)
	f.Now = func() time.Time { return time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC) }
	return stamp.Options{Formatter: f}
}

func TestSheet_UsedRange(t *testing.T) {
	ctx := context.Background()

	_, empty := newTestSheet(t, nil)
	used, err := empty.UsedRange(ctx)
	require.NoError(t, err)
	assert.True(t, used.Empty())

	_, sheet := newTestSheet(t, map[string]interface{}{
		"C3": "x",
		"E7": 1,
	})
	used, err = sheet.UsedRange(ctx)
	require.NoError(t, err)
	assert.Equal(t, "C3:E7", used.Address())
}

func TestSheet_ValuesAreTyped(t *testing.T) {
	_, sheet := newTestSheet(t, map[string]interface{}{
		"A1": "Name",
		"B1": int64(42),
		"C1": 2.5,
		"A2": true,
		"B2": false,
		"C2": "007",
	})

	values, err := sheet.Values(context.Background(), stamp.RangeByIndexes(0, 0, 3, 3))
	require.NoError(t, err)
	assert.Equal(t, [][]stamp.Value{
		{"Name", int64(42), 2.5},
		{true, false, "007"},
		{nil, nil, nil},
	}, values)
}

func TestSheet_SetValuesClearsBlanks(t *testing.T) {
	editor, sheet := newTestSheet(t, map[string]interface{}{
		"A1": "old",
		"B1": "old",
	})

	err := sheet.SetValues(context.Background(), stamp.RangeByIndexes(0, 0, 1, 2), [][]stamp.Value{{"new", nil}})
	require.NoError(t, err)

	a1, _ := editor.GetCellValue("Sheet1", "A1")
	b1, _ := editor.GetCellValue("Sheet1", "B1")
	assert.Equal(t, "new", a1)
	assert.Equal(t, "", b1)
}

func TestSheet_AutofitColumns(t *testing.T) {
	editor, sheet := newTestSheet(t, map[string]interface{}{
		"A1": "a fairly long header value",
		"B1": "x",
		"C1": "日本語テキスト",
	})

	require.NoError(t, sheet.AutofitColumns(context.Background(), stamp.RangeByIndexes(0, 0, 1, 3)))

	widthA, err := editor.File().GetColWidth("Sheet1", "A")
	require.NoError(t, err)
	widthB, err := editor.File().GetColWidth("Sheet1", "B")
	require.NoError(t, err)
	widthC, err := editor.File().GetColWidth("Sheet1", "C")
	require.NoError(t, err)

	assert.Equal(t, float64(len("a fairly long header value")+columnPadding), widthA)
	assert.Equal(t, MinColumnWidth, widthB)
	assert.Equal(t, float64(14+columnPadding), widthC)
}

func TestColumnWidth_Clamped(t *testing.T) {
	assert.Equal(t, MinColumnWidth, columnWidth(0))
	assert.Equal(t, float64(excelize.MaxColumnWidth), columnWidth(1000))
	assert.Equal(t, 4, displayWidth("ab\nabcd\nabc"))
}

func TestSheet_AddTableDuplicateName(t *testing.T) {
	_, sheet := newTestSheet(t, map[string]interface{}{
		"A1": "Name",
		"A2": "Alice",
	})
	ctx := context.Background()
	r := stamp.RangeByIndexes(0, 0, 2, 1)

	require.NoError(t, sheet.AddTable(ctx, r, "Users", true))
	err := sheet.AddTable(ctx, stamp.RangeByIndexes(0, 2, 2, 1), "Users", true)
	assert.ErrorIs(t, err, stamp.ErrTableExists)

	names, err := sheet.Tables()
	require.NoError(t, err)
	assert.Equal(t, []string{"Users"}, names)
}

func TestEditor_WorksheetNotFound(t *testing.T) {
	editor := CreateNewFile()
	defer editor.Close()

	_, err := editor.Worksheet("Missing", "")
	assert.ErrorIs(t, err, stamp.ErrSheetNotFound)

	sheet, err := editor.Worksheet("", "")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", sheet.Name())
}

func TestRun_OnWorkbook(t *testing.T) {
	editor, sheet := newTestSheet(t, map[string]interface{}{
		"A1": "Name",
		"B1": "Status",
		"A2": "Alice",
		"B2": "Inactive",
	})

	res, err := stamp.Run(context.Background(), sheet, stampOptions(t))
	require.NoError(t, err)
	assert.Equal(t, "A1:B3", res.TableRange.Address())

	rows, err := editor.GetAllRows("Sheet1")
	require.NoError(t, err)
	// The host names the blank header cell when it creates the table.
	assert.Equal(t, [][]string{
		{"Dátum spracovania: 07.03.2024", "Column2"},
		{"Name", "Status"},
		{"Alice", "Inactive"},
	}, rows)

	tables, err := editor.File().GetTables("Sheet1")
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, stamp.DefaultTableName, tables[0].Name)
	assert.Equal(t, "A1:B3", tables[0].Range)
	assert.Equal(t, DefaultTableStyle, tables[0].StyleName)

	_, err = stamp.Run(context.Background(), sheet, stampOptions(t))
	assert.True(t, stamp.IsRerun(err))
}

func TestParseNumericValue(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"123", int64(123)},
		{"123.45", 123.45},
		{"-100", int64(-100)},
		{"hello", "hello"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseNumericValue(tt.input), tt.input)
	}
}

func TestRun_EmptySheetReportsStoredTableRange(t *testing.T) {
	editor, sheet := newTestSheet(t, nil)

	res, err := stamp.Run(context.Background(), sheet, stampOptions(t))
	require.NoError(t, err)
	assert.Equal(t, "A1:A2", res.TableRange.Address())

	tables, err := editor.File().GetTables("Sheet1")
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, tables[0].Range, res.TableRange.Address())

	_, err = sheet.TableRange(context.Background(), "Missing")
	assert.Error(t, err)
}
