package importer

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	soFilenamePattern = regexp.MustCompile(`(?i)SO[- ]?(\d+)`)
	fileExtPattern    = regexp.MustCompile(`(?i)\.(xlsx|xls|csv)$`)
)

// soNumberFromFilename pulls the SO number out of names like
// "SO-3137.xlsx"; when no SO pattern is present the stripped filename
// itself becomes the SO number.
func soNumberFromFilename(filename string) string {
	if m := soFilenamePattern.FindStringSubmatch(filename); m != nil {
		return m[1]
	}
	return fileExtPattern.ReplaceAllString(filename, "")
}

// ParseOrderFile normalizes one source file into an ImportedOrder.
//
// Workbooks are classified by sheet names into one of three shapes:
// a legacy single parts sheet, an order-info sheet plus one parts sheet,
// or an order-info sheet plus one sheet per tool type. CSV input always
// takes the legacy path. All expected failures are reported through the
// returned ParseResult; only the decoding library's own errors are caught
// here and converted into a structural error.
func ParseOrderFile(data []byte, filename string, kind FileKind) ParseResult {
	var warnings []string

	if kind == KindCSV {
		g, err := LoadCSV(data)
		if err != nil {
			return failure(warnings, fmt.Sprintf("Failed to parse CSV file: %v", err))
		}
		return parseLegacyGrid(g, soNumberFromFilename(filename), warnings)
	}

	grids, err := LoadWorkbook(data)
	if err != nil {
		return failure(warnings, fmt.Sprintf("Failed to parse Excel file: %v", err))
	}
	if len(grids) == 0 {
		return failure(warnings, "No sheets found in workbook")
	}

	infoGrid := findOrderInfoGrid(grids)
	if infoGrid == nil {
		return parseLegacyGrid(grids[0], soNumberFromFilename(filename), warnings)
	}

	info, err := ParseOrderInfo(infoGrid)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("Order Info sheet not fully readable: %v", err))
	}
	soNumber := info.SONumber
	if soNumber == "" {
		soNumber = soNumberFromFilename(filename)
		warnings = append(warnings, "SO number not found in Order Info sheet, using filename")
	}

	partsGrid := findPartsGrid(grids)
	var others []*Grid
	for _, g := range grids {
		if g != infoGrid && g != partsGrid {
			others = append(others, g)
		}
	}

	switch {
	case partsGrid != nil && len(others) == 0:
		return parsePartsSheet(partsGrid, soNumber, info, warnings)
	case len(others) > 0:
		return parseToolTypeSheets(others, soNumber, info, warnings)
	default:
		return parseLegacyGrid(grids[0], soNumber, warnings)
	}
}

func findOrderInfoGrid(grids []*Grid) *Grid {
	for _, g := range grids {
		name := strings.ToLower(g.Name)
		if strings.Contains(name, "order") && strings.Contains(name, "info") {
			return g
		}
	}
	return nil
}

func findPartsGrid(grids []*Grid) *Grid {
	for _, g := range grids {
		name := strings.ToLower(g.Name)
		if name == "parts" || (strings.Contains(name, "part") && !strings.Contains(name, "order")) {
			return g
		}
	}
	return nil
}

// skipRow filters out rows invisible to every strategy: excluded (greyed)
// rows, rows without a part number, and stray repeated header rows. The
// last two are expected noise in real files, skipped silently.
func skipRow(g *Grid, row int, m ColumnMapping, excluded map[int]bool) (partNumber string, skip bool) {
	if excluded[row] {
		return "", true
	}
	partNumber = g.Cell(row, m.PartNumber)
	if partNumber == "" || isRepeatedHeader(partNumber) {
		return "", true
	}
	return partNumber, false
}

// itemAccumulator merges same-part rows, keeping first-seen order.
type itemAccumulator struct {
	items []ImportedLineItem
	index map[string]int
}

func newItemAccumulator() *itemAccumulator {
	return &itemAccumulator{index: make(map[string]int)}
}

// add sums quantities into an existing item for the part, or appends a new
// one. When sumPerUnit is false only the total is accumulated (the
// cross-sheet merge rule: per-unit is not re-derived on merge).
func (a *itemAccumulator) add(item ImportedLineItem, sumPerUnit bool) {
	if i, ok := a.index[item.PartNumber]; ok {
		a.items[i].TotalQtyNeeded += item.TotalQtyNeeded
		if sumPerUnit {
			a.items[i].QtyPerUnit += item.QtyPerUnit
		}
		return
	}
	a.index[item.PartNumber] = len(a.items)
	a.items = append(a.items, item)
}

// parseLegacyGrid handles the original single-sheet format: tool columns
// (or a single synthetic tool) plus one row per part. Sheets carrying a
// nesting-level column are flattened through the hierarchy resolver first.
func parseLegacyGrid(g *Grid, soNumber string, warnings []string) ParseResult {
	if g.RowCount() < 2 {
		return failure(warnings, "Sheet has no data rows")
	}

	excluded := ExcludedRows(g)
	headerRow, m, err := DetectColumns(g)
	if err != nil {
		return failure(warnings, err.Error())
	}

	tools := ToolsFromMapping(m)
	toolCount := len(tools)
	if toolCount < 1 {
		toolCount = 1
	}

	acc := newItemAccumulator()
	if m.Level >= 0 {
		parseHierarchyRows(g, headerRow, m, excluded, toolCount, acc)
	} else {
		for row := headerRow + 1; row < g.RowCount(); row++ {
			partNumber, skip := skipRow(g, row, m, excluded)
			if skip {
				continue
			}
			perUnit, total := rowQuantities(g, row, m, toolCount)
			if perUnit == 0 && total == 0 {
				continue
			}
			acc.add(newLineItem(
				partNumber,
				g.Cell(row, m.Description),
				g.Cell(row, m.Location),
				perUnit, total,
			), true)
		}
	}

	if len(acc.items) == 0 {
		return failure(warnings, "No valid line items found in the file")
	}
	if len(tools) == 0 {
		tools = SyntheticTools(soNumber, 1, "")
	}

	return ParseResult{
		Success:  true,
		Warnings: warnings,
		Errors:   []string{},
		Order: &ImportedOrder{
			SONumber:  soNumber,
			Tools:     tools,
			LineItems: acc.items,
		},
	}
}

// parseHierarchyRows flattens a leveled BOM sheet into leaf line items.
// The leaf's effective quantity is per tool; totals multiply through the
// tool count like any other per-unit figure.
func parseHierarchyRows(g *Grid, headerRow int, m ColumnMapping, excluded map[int]bool, toolCount int, acc *itemAccumulator) {
	qtyCol := m.QtyPerUnit
	if qtyCol < 0 {
		qtyCol = m.TotalQty
	}

	var rows []HierarchyRow
	for row := headerRow + 1; row < g.RowCount(); row++ {
		partNumber, skip := skipRow(g, row, m, excluded)
		if skip {
			continue
		}
		qty := 1.0
		if qtyCol >= 0 {
			if v := ParseQtyFloat(g.Cell(row, qtyCol)); v > 0 {
				qty = v
			}
		}
		rows = append(rows, HierarchyRow{
			Level:       ParseQty(g.Cell(row, m.Level)),
			PartNumber:  partNumber,
			Qty:         qty,
			Description: g.Cell(row, m.Description),
		})
	}

	for _, leaf := range ResolveHierarchyLeaves(rows) {
		item := newLineItem(leaf.PartNumber, leaf.Description, "", leaf.EffectiveQty, leaf.EffectiveQty*toolCount)
		item.AssemblyGroup = leaf.AssemblyGroup
		acc.add(item, true)
	}
}

// parsePartsSheet handles the order-info + single "Parts" sheet format.
// This shape has no tool columns: every tool shares the flat per-unit
// figure, and totals are per-unit times the order-level tool count.
func parsePartsSheet(g *Grid, soNumber string, info OrderInfo, warnings []string) ParseResult {
	headerRow, m, err := DetectColumns(g)
	if err != nil {
		return failure(warnings, "Could not find header row in Parts sheet")
	}

	toolQty := info.ToolQty
	if toolQty < 1 {
		toolQty = 1
	}
	tools := SyntheticTools(soNumber, toolQty, info.ToolModel)

	excluded := ExcludedRows(g)
	acc := newItemAccumulator()
	for row := headerRow + 1; row < g.RowCount(); row++ {
		partNumber, skip := skipRow(g, row, m, excluded)
		if skip {
			continue
		}
		perUnit := 1
		if m.QtyPerUnit >= 0 {
			perUnit = ParseQty(g.Cell(row, m.QtyPerUnit))
		}
		if perUnit <= 0 {
			continue
		}
		acc.add(newLineItem(
			partNumber,
			g.Cell(row, m.Description),
			g.Cell(row, m.Location),
			perUnit, perUnit*toolQty,
		), true)
	}

	if len(acc.items) == 0 {
		return failure(warnings, "No valid line items found in the file")
	}

	return ParseResult{
		Success:  true,
		Warnings: warnings,
		Errors:   []string{},
		Order:    orderFromInfo(soNumber, info, tools, acc.items, nil),
	}
}

// toolTypeSheet is one parsed tool-type sheet in the multi-sheet format.
type toolTypeSheet struct {
	toolModel string
	toolQty   int
	lineItems []ImportedLineItem
}

// parseToolTypeGrid parses one tool-type sheet. The count of tools of this
// type sits in the first data row's first cell, but only when that
// column's own header says it holds a quantity; otherwise one tool of the
// type is assumed. Returns nil when the sheet has no usable parts.
func parseToolTypeGrid(g *Grid) *toolTypeSheet {
	if g.RowCount() < 2 {
		return nil
	}
	headerRow, m, err := DetectColumns(g)
	if err != nil {
		return nil
	}

	toolQty := 1
	firstColHeader := strings.ToLower(g.Cell(headerRow, 0))
	if strings.Contains(firstColHeader, "qty") || strings.Contains(firstColHeader, "quantity") {
		if v := ParseQty(g.Cell(headerRow+1, 0)); v > 0 {
			toolQty = v
		}
	}

	excluded := ExcludedRows(g)
	acc := newItemAccumulator()
	for row := headerRow + 1; row < g.RowCount(); row++ {
		partNumber, skip := skipRow(g, row, m, excluded)
		if skip {
			continue
		}
		perUnit := 1
		if m.QtyPerUnit >= 0 {
			perUnit = ParseQty(g.Cell(row, m.QtyPerUnit))
		}
		total := perUnit * toolQty
		if m.TotalQty >= 0 {
			total = ParseQty(g.Cell(row, m.TotalQty))
			// A blank total cell still means per-unit times tool count.
			if total == 0 && perUnit > 0 {
				total = perUnit * toolQty
			}
		}
		if perUnit == 0 && total > 0 {
			perUnit = (total + toolQty - 1) / toolQty
		}
		if perUnit == 0 && total == 0 {
			continue
		}
		acc.add(newLineItem(partNumber, g.Cell(row, m.Description), g.Cell(row, m.Location), perUnit, total), true)
	}

	if len(acc.items) == 0 {
		return nil
	}
	return &toolTypeSheet{toolModel: g.Name, toolQty: toolQty, lineItems: acc.items}
}

// parseToolTypeSheets handles the order-info + multiple tool-type sheets
// format. Tools are numbered sequentially across all sheets with a shared
// counter; line items naming the same part across sheets are merged into
// the first occurrence by adding totals, and the tool numbers each part
// applies to are recorded for later association.
func parseToolTypeSheets(others []*Grid, soNumber string, info OrderInfo, warnings []string) ParseResult {
	var tools []ImportedTool
	acc := newItemAccumulator()
	assignments := make(map[string][]string)
	toolCounter := 1

	for _, g := range others {
		sheet := parseToolTypeGrid(g)
		if sheet == nil {
			warnings = append(warnings, fmt.Sprintf("Could not parse sheet %q - skipping", g.Name))
			continue
		}

		sheetTools := make([]string, 0, sheet.toolQty)
		for i := 0; i < sheet.toolQty; i++ {
			number := fmt.Sprintf("%s-%d", soNumber, toolCounter)
			tools = append(tools, ImportedTool{ToolNumber: number, ToolModel: sheet.toolModel})
			sheetTools = append(sheetTools, number)
			toolCounter++
		}

		for _, item := range sheet.lineItems {
			acc.add(item, false)
			assignments[item.PartNumber] = append(assignments[item.PartNumber], sheetTools...)
		}
	}

	if len(acc.items) == 0 {
		return failure(warnings, "No valid line items found in the file")
	}
	if len(tools) == 0 {
		tools = SyntheticTools(soNumber, 1, "")
	}

	return ParseResult{
		Success:  true,
		Warnings: warnings,
		Errors:   []string{},
		Order:    orderFromInfo(soNumber, info, tools, acc.items, assignments),
	}
}

func orderFromInfo(soNumber string, info OrderInfo, tools []ImportedTool, items []ImportedLineItem, assignments map[string][]string) *ImportedOrder {
	return &ImportedOrder{
		SONumber:        soNumber,
		PONumber:        info.PONumber,
		CustomerName:    info.CustomerName,
		OrderDate:       info.OrderDate,
		DueDate:         info.DueDate,
		Tools:           tools,
		LineItems:       items,
		ToolAssignments: assignments,
	}
}
