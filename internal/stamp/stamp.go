// Package stamp implements the row-shift-and-date-stamp routine over an
// injected worksheet host.
package stamp

import (
	"context"
	"sheetStamp/internal/logger"
)

// DefaultTableName is the fixed display name of the table the run creates.
const DefaultTableName = "InactiveUsersTable"

const (
	opUsedRange = "used_range"
	opValues    = "values"
	opSetValues = "set_values"
	opAutofit   = "autofit"
	opAddTable  = "add_table"
)

// Options configures a run. The zero value uses the default label, locale
// and table name.
type Options struct {
	Formatter *LabelFormatter
	TableName string
}

// Result describes what a completed run did to the worksheet. TableRange is
// the extent the host gave the table, which can be larger than the used
// range (a one-row table grows to two rows in xlsx).
type Result struct {
	Sheet       string
	Label       string
	RowsShifted int
	Columns     int
	Table       string
	TableRange  Range
}

// Run stamps ws with the processing date, moves every used row one row down,
// autofits the columns and wraps the final used range in a table.
//
// The first host failure aborts the run and is returned as a *HostError.
// Writes already applied stay in place. Running twice over the same sheet
// fails at table creation, see IsRerun.
func Run(ctx context.Context, ws Worksheet, opts Options) (*Result, error) {
	formatter := opts.Formatter
	if formatter == nil {
		formatter = DefaultLabelFormatter()
	}
	tableName := opts.TableName
	if tableName == "" {
		tableName = DefaultTableName
	}

	label := formatter.Label()
	logger.Debug("Stamping worksheet", "sheet", ws.Name(), "label", label)

	used, err := ws.UsedRange(ctx)
	if err != nil {
		return nil, hostError(opUsedRange, Range{}, err)
	}

	// Counts and values are captured once, before the first write. The label
	// row is written after this read so it is not shifted with the data; a
	// failed read therefore leaves the worksheet without a stamp.
	var snapshot [][]Value
	cols := 1
	if !used.Empty() {
		values, err := ws.Values(ctx, used)
		if err != nil {
			return nil, hostError(opValues, used, err)
		}
		snapshot = normalize(values, used.Rows, used.Cols)
		cols = used.Cols
		logger.Debug("Captured used range", "sheet", ws.Name(), "range", used.Address(),
			"rows", used.Rows, "columns", used.Cols)
	} else {
		logger.Debug("Worksheet has no used range, skipping shift", "sheet", ws.Name())
	}

	layout := Shift(snapshot, label)
	for i, row := range layout {
		dest := RangeByIndexes(i, 0, 1, cols)
		if err := ws.SetValues(ctx, dest, [][]Value{row}); err != nil {
			return nil, hostError(opSetValues, dest, err)
		}
	}

	final, err := ws.UsedRange(ctx)
	if err != nil {
		return nil, hostError(opUsedRange, Range{}, err)
	}
	if err := ws.AutofitColumns(ctx, final); err != nil {
		return nil, hostError(opAutofit, final, err)
	}
	if err := ws.AddTable(ctx, final, tableName, true); err != nil {
		return nil, hostError(opAddTable, final, err)
	}

	tableRange := final
	if tr, ok := ws.(TableRanger); ok {
		if r, err := tr.TableRange(ctx, tableName); err != nil {
			logger.Warn("Could not read back table range", "sheet", ws.Name(), "table", tableName, "error", err)
		} else {
			tableRange = r
		}
	}

	logger.Info("Worksheet stamped",
		"sheet", ws.Name(),
		"rows_shifted", len(snapshot),
		"columns", cols,
		"table", tableName,
		"table_range", tableRange.Address())

	return &Result{
		Sheet:       ws.Name(),
		Label:       label,
		RowsShifted: len(snapshot),
		Columns:     cols,
		Table:       tableName,
		TableRange:  tableRange,
	}, nil
}
