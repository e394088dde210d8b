package importer

// InactiveFillRGB is the reserved fill color that marks a source row as
// greyed out: present on the row's column-0 cell, the row must not
// contribute anything downstream.
const InactiveFillRGB = "7F7F7F"

// ExcludedRows returns the zero-based indices of rows whose marker cell
// carries the inactive fill. Every row-iterating component consults this
// set; there is no textual "is active" field in source files.
func ExcludedRows(g *Grid) map[int]bool {
	excluded := make(map[int]bool)
	for r := 0; r < g.RowCount(); r++ {
		if g.MarkerFill(r) == InactiveFillRGB {
			excluded[r] = true
		}
	}
	return excluded
}
