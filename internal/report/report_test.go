package report

import (
	"errors"
	"path/filepath"
	"testing"

	"sheetStamp/internal/stamp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_AddAndSummary(t *testing.T) {
	r := New()
	r.Add("a.xlsx", "", &stamp.Result{
		Sheet:       "Sheet1",
		Label:       "Dátum spracovania: 07.03.2024",
		RowsShifted: 2,
		Columns:     2,
		Table:       stamp.DefaultTableName,
		TableRange:  stamp.RangeByIndexes(0, 0, 3, 2),
	}, nil)
	r.Add("b.xlsx", "Users", nil, errors.New("input file not found: b.xlsx"))

	require.Len(t, r.Entries, 2)
	assert.Equal(t, "Sheet1", r.Entries[0].Sheet)
	assert.Equal(t, "A1:B3", r.Entries[0].Range)
	assert.False(t, r.Entries[0].Failed())
	assert.Equal(t, "Users", r.Entries[1].Sheet)
	assert.True(t, r.Entries[1].Failed())

	succeeded, failed := r.Summary()
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
}

func TestReport_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "stamp_report.json")

	r := New()
	r.Add("a.xlsx", "Sheet1", &stamp.Result{RowsShifted: 1, Columns: 1, TableRange: stamp.RangeByIndexes(0, 0, 2, 1)}, nil)
	require.NoError(t, r.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.True(t, r.StartedAt.Equal(loaded.StartedAt))
	assert.Equal(t, r.Entries, loaded.Entries)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
