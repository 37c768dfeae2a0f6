// Package gsheet adapts one tab of a Google Sheets spreadsheet to the
// stamp.Worksheet host interface.
package gsheet

import (
	"context"
	"fmt"
	"math"
	"strings"

	"sheetStamp/internal/logger"
	"sheetStamp/internal/stamp"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet and how to authenticate.
type Config struct {
	SpreadsheetID   string
	Sheet           string
	CredentialsFile string
	APIKey          string
	Endpoint        string
}

// NewService builds a Sheets client from cfg. Extra options are appended
// last and win over the ones derived from cfg.
func NewService(ctx context.Context, cfg Config, extra ...option.ClientOption) (*sheets.Service, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	opts = append(opts, extra...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets client: %w", err)
	}
	return svc, nil
}

// Sheet is a stamp.Worksheet backed by one tab of a spreadsheet.
type Sheet struct {
	svc           *sheets.Service
	spreadsheetID string
	title         string
	sheetID       int64
}

// Open resolves the tab named title. An empty title selects the first tab.
func Open(ctx context.Context, svc *sheets.Service, spreadsheetID, title string) (*Sheet, error) {
	ss, err := svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets(properties(sheetId,title,index))").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to load spreadsheet %s: %w", spreadsheetID, err)
	}

	var first *sheets.SheetProperties
	for _, s := range ss.Sheets {
		if s.Properties == nil {
			continue
		}
		if first == nil || s.Properties.Index < first.Index {
			first = s.Properties
		}
		if title != "" && s.Properties.Title == title {
			return newSheet(svc, spreadsheetID, s.Properties), nil
		}
	}
	if title == "" && first != nil {
		return newSheet(svc, spreadsheetID, first), nil
	}
	return nil, fmt.Errorf("%w: %q in spreadsheet %s", stamp.ErrSheetNotFound, title, spreadsheetID)
}

func newSheet(svc *sheets.Service, spreadsheetID string, props *sheets.SheetProperties) *Sheet {
	logger.Debug("Resolved Google sheet", "spreadsheet_id", spreadsheetID, "title", props.Title, "sheet_id", props.SheetId)
	return &Sheet{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		title:         props.Title,
		sheetID:       props.SheetId,
	}
}

func (s *Sheet) Name() string {
	return s.title
}

// a1 returns the A1 notation of r on this tab, e.g. 'Users'!A1:B3.
func (s *Sheet) a1(r stamp.Range) string {
	quoted := "'" + strings.ReplaceAll(s.title, "'", "''") + "'"
	if r.Empty() {
		return quoted
	}
	return quoted + "!" + r.Address()
}

// UsedRange returns the bounding box of non-empty cells on the tab.
func (s *Sheet) UsedRange(ctx context.Context) (stamp.Range, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.a1(stamp.Range{})).
		ValueRenderOption("UNFORMATTED_VALUE").
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return stamp.Range{}, err
	}
	if len(resp.Values) == 0 {
		return stamp.Range{}, nil
	}

	origin, err := stamp.ParseAddress(resp.Range)
	if err != nil {
		return stamp.Range{}, err
	}

	minRow, maxRow, minCol, maxCol := -1, -1, -1, -1
	for i, row := range resp.Values {
		for j, v := range row {
			if isBlank(v) {
				continue
			}
			if minRow < 0 || i < minRow {
				minRow = i
			}
			if i > maxRow {
				maxRow = i
			}
			if minCol < 0 || j < minCol {
				minCol = j
			}
			if j > maxCol {
				maxCol = j
			}
		}
	}
	if minRow < 0 {
		return stamp.Range{}, nil
	}
	return stamp.RangeByIndexes(origin.Row+minRow, origin.Col+minCol, maxRow-minRow+1, maxCol-minCol+1), nil
}

// Values reads r as unformatted values.
func (s *Sheet) Values(ctx context.Context, r stamp.Range) ([][]stamp.Value, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.a1(r)).
		ValueRenderOption("UNFORMATTED_VALUE").
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	values := make([][]stamp.Value, r.Rows)
	for i := range values {
		values[i] = make([]stamp.Value, r.Cols)
		if i >= len(resp.Values) {
			continue
		}
		for j := 0; j < r.Cols && j < len(resp.Values[i]); j++ {
			values[i][j] = fromAPI(resp.Values[i][j])
		}
	}
	return values, nil
}

// SetValues writes values into r as raw input, blanks clear the cell.
func (s *Sheet) SetValues(ctx context.Context, r stamp.Range, values [][]stamp.Value) error {
	rows := make([][]interface{}, len(values))
	for i, row := range values {
		rows[i] = make([]interface{}, r.Cols)
		for j := range rows[i] {
			if j < len(row) && row[j] != nil {
				rows[i][j] = row[j]
			} else {
				rows[i][j] = ""
			}
		}
	}

	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.a1(r), &sheets.ValueRange{
		Range:          s.a1(r),
		MajorDimension: "ROWS",
		Values:         rows,
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// AutofitColumns asks Sheets to resize the columns spanned by r.
func (s *Sheet) AutofitColumns(ctx context.Context, r stamp.Range) error {
	if r.Empty() {
		return nil
	}
	return s.batchUpdate(ctx, &sheets.Request{
		AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
			Dimensions: &sheets.DimensionRange{
				SheetId:    s.sheetID,
				Dimension:  "COLUMNS",
				StartIndex: int64(r.Col),
				EndIndex:   int64(r.Col + r.Cols),
			},
		},
	})
}

// AddTable creates a table over r. Table names are unique per spreadsheet;
// an existing one fails with stamp.ErrTableExists. Sheets tables always
// carry a header row.
func (s *Sheet) AddTable(ctx context.Context, r stamp.Range, name string, hasHeaders bool) error {
	if !hasHeaders {
		return fmt.Errorf("tables without a header row are not supported by Google Sheets")
	}

	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets(properties(sheetId),tables(name))").
		Context(ctx).
		Do()
	if err != nil {
		return err
	}
	for _, sh := range ss.Sheets {
		for _, t := range sh.Tables {
			if t.Name == name {
				return fmt.Errorf("%w: %s", stamp.ErrTableExists, name)
			}
		}
	}

	return s.batchUpdate(ctx, &sheets.Request{
		AddTable: &sheets.AddTableRequest{
			Table: &sheets.Table{
				Name:  name,
				Range: s.gridRange(r),
			},
		},
	})
}

func (s *Sheet) gridRange(r stamp.Range) *sheets.GridRange {
	return &sheets.GridRange{
		SheetId:          s.sheetID,
		StartRowIndex:    int64(r.Row),
		EndRowIndex:      int64(r.Row + r.Rows),
		StartColumnIndex: int64(r.Col),
		EndColumnIndex:   int64(r.Col + r.Cols),
	}
}

func (s *Sheet) batchUpdate(ctx context.Context, requests ...*sheets.Request) error {
	_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}

func isBlank(v interface{}) bool {
	return v == nil || v == ""
}

// fromAPI maps a decoded JSON cell to a stamp value. Whole numbers come back
// as int64.
func fromAPI(v interface{}) stamp.Value {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return val
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return int64(val)
		}
		return val
	default:
		return val
	}
}
