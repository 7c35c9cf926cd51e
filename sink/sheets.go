package sink

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// valuesAPI is the slice of the Sheets API the sink uses.
type valuesAPI interface {
	EnsureSheet(ctx context.Context, sheet string) error
	Header(ctx context.Context, sheet string) ([]string, error)
	WriteHeader(ctx context.Context, sheet string, header []string) error
	AppendRows(ctx context.Context, sheet string, rows [][]string) error
}

// Sheets appends to worksheets of one Google spreadsheet.
type Sheets struct {
	api valuesAPI
}

// NewSheets authenticates with a service-account or authorized-user JSON
// file and targets spreadsheetID.
func NewSheets(ctx context.Context, spreadsheetID, credentialsFile string, opts ...option.ClientOption) (*Sheets, error) {
	opts = append([]option.ClientOption{
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	}, opts...)
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	return &Sheets{api: &googleValues{srv: srv, id: spreadsheetID}}, nil
}

// Append merges t into worksheet, writing the header first when needed.
func (s *Sheets) Append(ctx context.Context, worksheet string, t Table) error {
	if len(t.Rows) == 0 {
		return nil
	}
	if err := s.api.EnsureSheet(ctx, worksheet); err != nil {
		return err
	}
	existing, err := s.api.Header(ctx, worksheet)
	if err != nil {
		return err
	}
	header, rows := merge(existing, t)
	if !slices.Equal(header, existing) {
		if err := s.api.WriteHeader(ctx, worksheet, header); err != nil {
			return err
		}
	}
	if err := s.api.AppendRows(ctx, worksheet, rows); err != nil {
		return err
	}
	slog.Info("sheet appended", "worksheet", worksheet, "rows", len(rows))
	return nil
}

// googleValues implements valuesAPI on the generated client.
type googleValues struct {
	srv *sheets.Service
	id  string
}

func (g *googleValues) EnsureSheet(ctx context.Context, sheet string) error {
	ss, err := g.srv.Spreadsheets.Get(g.id).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: get spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheet {
			return nil
		}
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{Requests: []*sheets.Request{{
		AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: sheet}},
	}}}
	if _, err := g.srv.Spreadsheets.BatchUpdate(g.id, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheets: add worksheet %q: %w", sheet, err)
	}
	return nil
}

func (g *googleValues) Header(ctx context.Context, sheet string) ([]string, error) {
	resp, err := g.srv.Spreadsheets.Values.Get(g.id, a1(sheet, "1:1")).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: read header of %q: %w", sheet, err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	header := make([]string, len(resp.Values[0]))
	for i, v := range resp.Values[0] {
		header[i] = fmt.Sprint(v)
	}
	return header, nil
}

func (g *googleValues) WriteHeader(ctx context.Context, sheet string, header []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(header)}}
	_, err := g.srv.Spreadsheets.Values.Update(g.id, a1(sheet, "1:1"), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: write header of %q: %w", sheet, err)
	}
	return nil
}

func (g *googleValues) AppendRows(ctx context.Context, sheet string, rows [][]string) error {
	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		values[i] = toCells(r)
	}
	_, err := g.srv.Spreadsheets.Values.Append(g.id, a1(sheet, "A1"), &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: append to %q: %w", sheet, err)
	}
	return nil
}

// a1 quotes a worksheet name for an A1 range; names may contain ':'.
func a1(sheet, rng string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + rng
}

func toCells(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
