package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sheetStamp/internal/stamp"
)

// Entry records the outcome of stamping one worksheet
type Entry struct {
	File        string `json:"file"`
	Sheet       string `json:"sheet,omitempty"`
	Label       string `json:"label,omitempty"`
	RowsShifted int    `json:"rows_shifted"`
	Columns     int    `json:"columns"`
	Table       string `json:"table,omitempty"`
	Range       string `json:"range,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Failed reports whether the run recorded an error
func (e Entry) Failed() bool {
	return e.Error != ""
}

// Report holds the entries of one batch run
type Report struct {
	StartedAt time.Time `json:"started_at"`
	Entries   []Entry   `json:"entries"`
}

// New starts an empty report stamped with the current time
func New() *Report {
	return &Report{StartedAt: time.Now()}
}

// Add appends the outcome of a run. res may be nil when the run failed
// before producing a result.
func (r *Report) Add(file, sheet string, res *stamp.Result, err error) {
	entry := Entry{File: file, Sheet: sheet}
	if res != nil {
		if res.Sheet != "" {
			entry.Sheet = res.Sheet
		}
		entry.Label = res.Label
		entry.RowsShifted = res.RowsShifted
		entry.Columns = res.Columns
		entry.Table = res.Table
		if !res.TableRange.Empty() {
			entry.Range = res.TableRange.Address()
		}
	}
	if err != nil {
		entry.Error = err.Error()
	}
	r.Entries = append(r.Entries, entry)
}

// Summary counts succeeded and failed entries
func (r *Report) Summary() (succeeded, failed int) {
	for _, e := range r.Entries {
		if e.Failed() {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}

// SaveToFile saves the report as indented JSON
func (r *Report) SaveToFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadFromFile loads a report written by SaveToFile
func LoadFromFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return &r, nil
}
