package stamp

import (
	"errors"
	"fmt"
)

// ErrTableExists indicates a table with the requested name is already
// present. A second run over an already stamped sheet ends with it.
var ErrTableExists = errors.New("table name already in use")

// ErrUnsupportedLocale indicates no date layout matches the configured locale.
var ErrUnsupportedLocale = errors.New("unsupported locale")

// ErrSheetNotFound indicates the requested worksheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// HostError is a failed host operation. The run stops at the first one.
type HostError struct {
	Op    string // "used_range", "values", "set_values", "autofit", "add_table"
	Range Range
	Err   error
}

func (e *HostError) Error() string {
	if e.Range.Empty() {
		return fmt.Sprintf("host operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("host operation %s on %s failed: %v", e.Op, e.Range.Address(), e.Err)
}

func (e *HostError) Unwrap() error {
	return e.Err
}

func hostError(op string, r Range, err error) *HostError {
	return &HostError{Op: op, Range: r, Err: err}
}

// IsRerun reports whether err is the failure produced by running the routine
// a second time over the same sheet.
func IsRerun(err error) bool {
	var hostErr *HostError
	return errors.As(err, &hostErr) && hostErr.Op == opAddTable && errors.Is(err, ErrTableExists)
}
