package importer

// FileKind declares how raw import bytes should be decoded.
type FileKind int

const (
	// KindWorkbook is a binary spreadsheet (.xlsx / .xls).
	KindWorkbook FileKind = iota
	// KindCSV is delimited text with a single implicit sheet.
	KindCSV
)

// ImportedTool is one physical tool instance to be created for an order.
type ImportedTool struct {
	ToolNumber   string `json:"tool_number"`
	ToolModel    string `json:"tool_model,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
}

// ImportedLineItem is one part requirement row of the order's BOM.
// QtyPerUnit and TotalQtyNeeded are always >= 1 when emitted.
type ImportedLineItem struct {
	PartNumber     string `json:"part_number"`
	Description    string `json:"description,omitempty"`
	Location       string `json:"location,omitempty"`
	QtyPerUnit     int    `json:"qty_per_unit"`
	TotalQtyNeeded int    `json:"total_qty_needed"`
	AssemblyGroup  string `json:"assembly_group,omitempty"`
}

// ImportedOrder is the normalized order extracted from one workbook.
// ToolAssignments maps part number to the tool numbers that need it; it is
// only populated by the multi tool-type sheet format, where different
// sheets contribute to the same merged line item.
type ImportedOrder struct {
	SONumber        string              `json:"so_number"`
	PONumber        string              `json:"po_number,omitempty"`
	CustomerName    string              `json:"customer_name,omitempty"`
	OrderDate       string              `json:"order_date,omitempty"`
	DueDate         string              `json:"due_date,omitempty"`
	Tools           []ImportedTool      `json:"tools"`
	LineItems       []ImportedLineItem  `json:"line_items"`
	ToolAssignments map[string][]string `json:"tool_assignments,omitempty"`
}

// ParseResult is the outcome of parsing one source file. Expected failures
// land in Errors with Success=false; the parser never panics across this
// boundary.
type ParseResult struct {
	Success  bool           `json:"success"`
	Order    *ImportedOrder `json:"order,omitempty"`
	Errors   []string       `json:"errors"`
	Warnings []string       `json:"warnings"`
}

func failure(warnings []string, errs ...string) ParseResult {
	return ParseResult{Success: false, Errors: errs, Warnings: warnings}
}
