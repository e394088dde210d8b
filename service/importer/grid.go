package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Grid is one decoded sheet: a rectangular, read-only view over cell text
// plus the fill color of each row's marker cell (column 0) where the source
// format carries styling. Every downstream component consumes this shape,
// so binary and CSV inputs are indistinguishable past this point.
type Grid struct {
	Name string
	rows [][]string
	// markerFill[r] is the RRGGBB fill of cell (r, 0), "" when unstyled.
	markerFill []string
}

// RowCount returns the number of rows in the grid.
func (g *Grid) RowCount() int { return len(g.rows) }

// Cell returns the trimmed text of (row, col); out-of-range access yields "".
func (g *Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g.rows) || col < 0 {
		return ""
	}
	r := g.rows[row]
	if col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// RowWidth returns the cell count of a single row.
func (g *Grid) RowWidth(row int) int {
	if row < 0 || row >= len(g.rows) {
		return 0
	}
	return len(g.rows[row])
}

// MarkerFill returns the normalized RRGGBB fill color of the row's
// column-0 cell, or "" when the row carries no fill.
func (g *Grid) MarkerFill(row int) string {
	if row < 0 || row >= len(g.markerFill) {
		return ""
	}
	return g.markerFill[row]
}

// LoadWorkbook decodes a binary spreadsheet into one Grid per sheet,
// preserving workbook sheet order. Corrupt input surfaces as an error,
// never a panic.
func LoadWorkbook(data []byte) (grids []*Grid, err error) {
	defer func() {
		if r := recover(); r != nil {
			grids, err = nil, fmt.Errorf("decode workbook: %v", r)
		}
	}()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode workbook: %w", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		g := &Grid{Name: name, rows: rows, markerFill: make([]string, len(rows))}
		for r := range rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				continue
			}
			g.markerFill[r] = cellFillColor(f, name, cell)
		}
		grids = append(grids, g)
	}
	return grids, nil
}

// cellFillColor reads the pattern fill of a single cell, best effort.
func cellFillColor(f *excelize.File, sheet, cell string) string {
	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return ""
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil || len(style.Fill.Color) == 0 {
		return ""
	}
	return normalizeRGB(style.Fill.Color[0])
}

// normalizeRGB uppercases a hex color and strips "#" and a leading alpha
// byte so "#ff7f7f7f" and "7F7F7F" compare equal.
func normalizeRGB(c string) string {
	c = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(c), "#"))
	if len(c) == 8 {
		c = c[2:]
	}
	return c
}

// LoadCSV decodes delimited text into a single unnamed Grid. CSV has no
// style metadata, so marker fills are empty and color-based row exclusion
// does not apply to this kind.
func LoadCSV(data []byte) (*Grid, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return &Grid{Name: "csv", rows: rows, markerFill: make([]string, len(rows))}, nil
}

// NewGrid builds an in-memory grid; used by tests and callers that already
// hold tabular data.
func NewGrid(name string, rows [][]string) *Grid {
	return &Grid{Name: name, rows: rows, markerFill: make([]string, len(rows))}
}

// SetMarkerFill overrides the marker-cell fill for one row (tests only use
// this to simulate styled workbooks without building real files).
func (g *Grid) SetMarkerFill(row int, rgb string) {
	if row >= 0 && row < len(g.markerFill) {
		g.markerFill[row] = normalizeRGB(rgb)
	}
}
