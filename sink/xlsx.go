package sink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSX appends to worksheets of a local workbook, creating it on first use.
type XLSX struct {
	path string
	mu   sync.Mutex
}

// NewXLSX returns a sink writing to path.
func NewXLSX(path string) *XLSX {
	return &XLSX{path: path}
}

// Append merges t into worksheet and saves the workbook.
func (x *XLSX) Append(ctx context.Context, worksheet string, t Table) error {
	if len(t.Rows) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	f, fresh, err := x.open()
	if err != nil {
		return err
	}
	defer f.Close()

	name := SheetName(worksheet)
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("xlsx: look up %q: %w", name, err)
	}
	if idx == -1 {
		if idx, err = f.NewSheet(name); err != nil {
			return fmt.Errorf("xlsx: create %q: %w", name, err)
		}
		if fresh && name != defaultSheet {
			f.SetActiveSheet(idx)
			if err := f.DeleteSheet(defaultSheet); err != nil {
				return fmt.Errorf("xlsx: drop default sheet: %w", err)
			}
		}
	}

	existing, err := f.GetRows(name)
	if err != nil {
		return fmt.Errorf("xlsx: read %q: %w", name, err)
	}
	var current []string
	if len(existing) > 0 {
		current = existing[0]
	}
	header, rows := merge(current, t)

	if err := f.SetSheetRow(name, "A1", rowPtr(header)); err != nil {
		return fmt.Errorf("xlsx: write header: %w", err)
	}
	next := len(existing) + 1
	if next < 2 {
		next = 2
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, next+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, rowPtr(r)); err != nil {
			return fmt.Errorf("xlsx: write row %d: %w", next+i, err)
		}
	}

	if err := f.SaveAs(x.path); err != nil {
		return fmt.Errorf("xlsx: save %s: %w", x.path, err)
	}
	slog.Info("workbook appended", "path", x.path, "worksheet", name, "rows", len(rows))
	return nil
}

func (x *XLSX) open() (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(x.path)
	if err == nil {
		return f, false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	if _, statErr := os.Stat(x.path); errors.Is(statErr, fs.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	return nil, false, fmt.Errorf("xlsx: open %s: %w", x.path, err)
}

// SheetName makes a worksheet name legal for Excel: the characters
// : \ / ? * [ ] become '-', and the name is cut to 31 characters.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, name)
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	if name == "" {
		return defaultSheet
	}
	return name
}

func rowPtr(row []string) *[]interface{} {
	cells := toCells(row)
	return &cells
}
