package importer

import (
	"fmt"
	"regexp"
	"strings"
)

// headerSearchRows is how deep into a grid the header row is searched for.
const headerSearchRows = 10

// ToolColumn ties one normalized tool number to the column holding its
// per-tool quantities.
type ToolColumn struct {
	Number string
	Col    int
}

// ColumnMapping is the detected semantic layout of a grid. Role indices are
// -1 when the role was not found. Tools preserves left-to-right scan order,
// which matters: the first tool column doubles as the per-unit quantity
// source.
type ColumnMapping struct {
	PartNumber  int
	Description int
	Location    int
	QtyPerUnit  int
	TotalQty    int
	Level       int
	Tools       []ToolColumn
}

func emptyMapping() ColumnMapping {
	return ColumnMapping{
		PartNumber:  -1,
		Description: -1,
		Location:    -1,
		QtyPerUnit:  -1,
		TotalQty:    -1,
		Level:       -1,
	}
}

// ToolColumnIndex returns the column for a tool number, or -1.
func (m *ColumnMapping) ToolColumnIndex(number string) int {
	for _, tc := range m.Tools {
		if tc.Number == number {
			return tc.Col
		}
	}
	return -1
}

type columnRole int

const (
	rolePartNumber columnRole = iota
	roleDescription
	roleLocation
	roleQtyPerUnit
	roleTotalQty
	roleLevel
)

type headerRule struct {
	role  columnRole
	match func(cell string) bool
}

func has(sub string) func(string) bool {
	return func(s string) bool { return strings.Contains(s, sub) }
}

func hasAll(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if !strings.Contains(s, sub) {
				return false
			}
		}
		return true
	}
}

func isOneOf(vals ...string) func(string) bool {
	return func(s string) bool {
		for _, v := range vals {
			if s == v {
				return true
			}
		}
		return false
	}
}

func allOf(preds ...func(string) bool) func(string) bool {
	return func(s string) bool {
		for _, p := range preds {
			if !p(s) {
				return false
			}
		}
		return true
	}
}

func not(p func(string) bool) func(string) bool {
	return func(s string) bool { return !p(s) }
}

func either(preds ...func(string) bool) func(string) bool {
	return func(s string) bool {
		for _, p := range preds {
			if p(s) {
				return true
			}
		}
		return false
	}
}

// headerRules is the ordered classification table applied to each header
// cell, top to bottom; the LAST matching rule decides the cell's role.
// The rule strings are the literal header vocabulary observed in real
// customer files, so keep additions narrow.
var headerRules = []headerRule{
	// Part number
	{rolePartNumber, allOf(has("part"), either(has("num"), has("#"), has("no")))},
	{rolePartNumber, isOneOf("part", "part#", "pn", "ref_pn")},

	// Description
	{roleDescription, has("desc")},
	{roleDescription, isOneOf("description", "name")},

	// Location
	{roleLocation, has("loc")},
	{roleLocation, isOneOf("location", "bin")},
	{roleLocation, has("stock")},

	// Per-unit quantity
	{roleQtyPerUnit, allOf(has("qty"), either(has("per"), has("unit")))},
	{roleQtyPerUnit, isOneOf("qty", "qty.", "quantity")},
	{roleQtyPerUnit, hasAll("qty", "ea")},
	{roleQtyPerUnit, allOf(has("qty"), has("need"), not(has("tool")))},

	// Total quantity. Listed after per-unit so "tool qty need" lands here,
	// overriding the qty-need rule above: a tool-wide need is a total.
	{roleTotalQty, hasAll("total", "qty")},
	{roleTotalQty, isOneOf("total")},
	{roleTotalQty, hasAll("ext", "qty")},
	{roleTotalQty, hasAll("tool", "qty", "need")},

	// BOM nesting level (multi-level assembly sheets)
	{roleLevel, isOneOf("level", "lvl", "bom level")},
}

// toolColumnPattern matches per-tool quantity headers: "3137-1", "Tool 1",
// "Unit 1", "SN1", or a short letter prefix plus digits ("NG1", "PT2").
var toolColumnPattern = regexp.MustCompile(`(?i)^(\d+-\d+)$|^tool\s*(\d+)$|^unit\s*(\d+)$|^sn(\d+)$|^([a-z]{1,3})(\d+)$`)

// normalizeToolNumber maps a matched header to its canonical tool number,
// or "" when the header is not a tool column.
func normalizeToolNumber(cell string) string {
	m := toolColumnPattern.FindStringSubmatch(cell)
	if m == nil {
		return ""
	}
	switch {
	case m[1] != "":
		return m[1] // SO-style "3137-1", kept verbatim
	case m[2] != "":
		return "Tool-" + m[2]
	case m[3] != "":
		return "Unit-" + m[3]
	case m[4] != "":
		return "SN" + m[4]
	case m[5] != "" && m[6] != "":
		return strings.ToUpper(m[5]) + m[6]
	}
	return ""
}

// mapRow classifies every cell of one candidate header row.
func mapRow(g *Grid, row int) ColumnMapping {
	m := emptyMapping()

	for col := 0; col < g.RowWidth(row); col++ {
		cell := strings.ToLower(g.Cell(row, col))
		if cell == "" {
			continue
		}

		role := columnRole(-1)
		for _, rule := range headerRules {
			if rule.match(cell) {
				role = rule.role
			}
		}
		if role >= 0 {
			m.claim(role, col)
		}

		if tool := normalizeToolNumber(cell); tool != "" && m.ToolColumnIndex(tool) < 0 {
			m.Tools = append(m.Tools, ToolColumn{Number: tool, Col: col})
		}
	}
	return m
}

// claim assigns a role to a column unless an earlier (further left) column
// already holds it.
func (m *ColumnMapping) claim(role columnRole, col int) {
	slot := map[columnRole]*int{
		rolePartNumber:  &m.PartNumber,
		roleDescription: &m.Description,
		roleLocation:    &m.Location,
		roleQtyPerUnit:  &m.QtyPerUnit,
		roleTotalQty:    &m.TotalQty,
		roleLevel:       &m.Level,
	}[role]
	if slot != nil && *slot < 0 {
		*slot = col
	}
}

// DetectColumns scans the first rows of a grid for the first row yielding a
// part-number column; that row is the header and its mapping is
// authoritative. Rows are never re-scored against each other. Failing to
// find one is a structural error.
func DetectColumns(g *Grid) (headerRow int, m ColumnMapping, err error) {
	limit := headerSearchRows
	if g.RowCount() < limit {
		limit = g.RowCount()
	}
	for row := 0; row < limit; row++ {
		candidate := mapRow(g, row)
		if candidate.PartNumber >= 0 {
			return row, candidate, nil
		}
	}
	return -1, emptyMapping(), fmt.Errorf("could not find header row with Part Number column")
}
