package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var nonNumeric = regexp.MustCompile(`[^\d.\-]`)

// ParseQtyFloat extracts a non-negative float from a cell: all characters
// other than digits, dot and minus are stripped before parsing, and
// non-numeric results become 0.
func ParseQtyFloat(cell string) float64 {
	cleaned := nonNumeric.ReplaceAllString(strings.TrimSpace(cell), "")
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// ParseQty extracts a whole quantity from a cell, rounding to the nearest
// integer and flooring at zero.
func ParseQty(cell string) int {
	v := math.Round(ParseQtyFloat(cell))
	if v < 0 {
		return 0
	}
	return int(v)
}

// rowQuantities resolves per-unit and total needed quantities for one data
// row under a fixed priority:
//
//  1. Tool columns, when present, win over any generic qty column: generic
//     columns in observed files are ambiguous between per-unit and total,
//     while tool columns are unambiguous per-tool requirements. Per-unit is
//     the first tool column's value; total is the sum across all of them.
//     A generic total column is consulted only when every tool cell is zero.
//  2. Otherwise dedicated per-unit and total columns are read independently.
//  3. Missing total is derived as per-unit x tool count.
//  4. Missing per-unit is derived as ceil(total / tool count).
//
// Both results can still be zero; the caller decides whether the row
// contributes a line item.
func rowQuantities(g *Grid, row int, m ColumnMapping, toolCount int) (perUnit, total int) {
	if toolCount < 1 {
		toolCount = 1
	}

	if len(m.Tools) > 0 {
		perUnit = ParseQty(g.Cell(row, m.Tools[0].Col))
		for _, tc := range m.Tools {
			total += ParseQty(g.Cell(row, tc.Col))
		}
		// When every tool cell is blank or zero the row may still carry an
		// explicit total in a generic column; only then is it consulted.
		if perUnit == 0 && total == 0 && m.TotalQty >= 0 {
			total = ParseQty(g.Cell(row, m.TotalQty))
		}
	} else {
		if m.QtyPerUnit >= 0 {
			perUnit = ParseQty(g.Cell(row, m.QtyPerUnit))
		}
		if m.TotalQty >= 0 {
			total = ParseQty(g.Cell(row, m.TotalQty))
		}
	}
	if total == 0 && perUnit > 0 {
		total = perUnit * toolCount
	}
	if perUnit == 0 && total > 0 {
		perUnit = int(math.Ceil(float64(total) / float64(toolCount)))
	}
	return perUnit, total
}

// isRepeatedHeader reports whether a part-number cell is really a stray
// header row repeated mid-data.
func isRepeatedHeader(partNumber string) bool {
	lower := strings.ToLower(partNumber)
	return strings.Contains(lower, "part") && strings.Contains(lower, "number")
}

// newLineItem builds an emitted line item, enforcing that both quantity
// fields end up >= 1.
func newLineItem(part, desc, loc string, perUnit, total int) ImportedLineItem {
	if perUnit <= 0 {
		perUnit = 1
	}
	if total <= 0 {
		total = perUnit
	}
	return ImportedLineItem{
		PartNumber:     part,
		Description:    desc,
		Location:       loc,
		QtyPerUnit:     perUnit,
		TotalQtyNeeded: total,
	}
}
