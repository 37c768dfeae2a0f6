package stamp

// Shift returns the sheet content after the run: the label row followed by
// every snapshot row one position lower, in the original order and column
// alignment. The label row holds label in column 0 and blanks across the
// remaining columns. The result is rectangular, at least one column wide,
// and shares no rows with snapshot.
func Shift(snapshot [][]Value, label string) [][]Value {
	cols := 1
	for _, row := range snapshot {
		if len(row) > cols {
			cols = len(row)
		}
	}

	out := make([][]Value, 0, len(snapshot)+1)
	labelRow := make([]Value, cols)
	labelRow[0] = label
	out = append(out, labelRow)

	for _, row := range snapshot {
		shifted := make([]Value, cols)
		copy(shifted, row)
		out = append(out, shifted)
	}
	return out
}

// normalize fits values to exactly rows x cols, padding with blanks and
// dropping anything outside. Hosts may return ragged rows.
func normalize(values [][]Value, rows, cols int) [][]Value {
	out := make([][]Value, rows)
	for i := range out {
		out[i] = make([]Value, cols)
		if i < len(values) {
			copy(out[i], values[i])
		}
	}
	return out
}
