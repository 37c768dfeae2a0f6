package stamp

import (
	"context"
	"fmt"
)

// memSheet is an in-memory Worksheet host. Blank cells (nil or "") are not
// stored, so the used range is the bounding box of stored cells.
type memSheet struct {
	name       string
	cells      map[[2]int]Value
	tables     map[string]Range
	headers    map[string]bool
	writes     []Range
	autofitted []Range
	failOn     map[string]error
	failAt     map[string]int
	calls      map[string]int
}

func newMemSheet(name string, rows [][]Value) *memSheet {
	m := &memSheet{
		name:    name,
		cells:   make(map[[2]int]Value),
		tables:  make(map[string]Range),
		headers: make(map[string]bool),
		failOn:  make(map[string]error),
		failAt:  make(map[string]int),
		calls:   make(map[string]int),
	}
	for i, row := range rows {
		for j, v := range row {
			m.set(i, j, v)
		}
	}
	return m
}

func isBlank(v Value) bool {
	return v == nil || v == ""
}

func (m *memSheet) set(row, col int, v Value) {
	if isBlank(v) {
		delete(m.cells, [2]int{row, col})
		return
	}
	m.cells[[2]int{row, col}] = v
}

func (m *memSheet) get(row, col int) Value {
	return m.cells[[2]int{row, col}]
}

// fail returns the error injected for op. With failAt[op] set, only that
// call (1-based) fails.
func (m *memSheet) fail(op string) error {
	m.calls[op]++
	err := m.failOn[op]
	if err == nil {
		return nil
	}
	if n := m.failAt[op]; n > 0 && m.calls[op] != n {
		return nil
	}
	return err
}

func (m *memSheet) Name() string {
	return m.name
}

func (m *memSheet) UsedRange(ctx context.Context) (Range, error) {
	if err := m.fail(opUsedRange); err != nil {
		return Range{}, err
	}
	if len(m.cells) == 0 {
		return Range{}, nil
	}
	minRow, minCol, maxRow, maxCol := -1, -1, -1, -1
	for key := range m.cells {
		if minRow < 0 || key[0] < minRow {
			minRow = key[0]
		}
		if key[0] > maxRow {
			maxRow = key[0]
		}
		if minCol < 0 || key[1] < minCol {
			minCol = key[1]
		}
		if key[1] > maxCol {
			maxCol = key[1]
		}
	}
	return RangeByIndexes(minRow, minCol, maxRow-minRow+1, maxCol-minCol+1), nil
}

func (m *memSheet) Values(ctx context.Context, r Range) ([][]Value, error) {
	if err := m.fail(opValues); err != nil {
		return nil, err
	}
	out := make([][]Value, r.Rows)
	for i := range out {
		out[i] = make([]Value, r.Cols)
		for j := range out[i] {
			out[i][j] = m.get(r.Row+i, r.Col+j)
		}
	}
	return out, nil
}

func (m *memSheet) SetValues(ctx context.Context, r Range, values [][]Value) error {
	if err := m.fail(opSetValues); err != nil {
		return err
	}
	if len(values) != r.Rows {
		return fmt.Errorf("got %d rows for %s", len(values), r.Address())
	}
	m.writes = append(m.writes, r)
	for i, row := range values {
		for j := 0; j < r.Cols; j++ {
			var v Value
			if j < len(row) {
				v = row[j]
			}
			m.set(r.Row+i, r.Col+j, v)
		}
	}
	return nil
}

func (m *memSheet) AutofitColumns(ctx context.Context, r Range) error {
	if err := m.fail(opAutofit); err != nil {
		return err
	}
	m.autofitted = append(m.autofitted, r)
	return nil
}

func (m *memSheet) AddTable(ctx context.Context, r Range, name string, hasHeaders bool) error {
	if err := m.fail(opAddTable); err != nil {
		return err
	}
	if _, ok := m.tables[name]; ok {
		return fmt.Errorf("%w: %s", ErrTableExists, name)
	}
	m.tables[name] = r
	m.headers[name] = hasHeaders
	return nil
}

// grid returns rows 0..last used row, columns 0..last used column.
func (m *memSheet) grid() [][]Value {
	used, _ := m.UsedRange(context.Background())
	if used.Empty() {
		return nil
	}
	out, _ := m.Values(context.Background(), RangeByIndexes(0, 0, used.LastRow()+1, used.LastCol()+1))
	return out
}
