package importer

import (
	"fmt"
	"strings"
)

// InventoryRecord is the latest known stock for one part number.
type InventoryRecord struct {
	PartNumber   string `json:"part_number"`
	Location     string `json:"location"`
	QtyAvailable int    `json:"qty_available"`
	LotID        string `json:"lot_id"`
}

// InventoryParseResult reports one inventory snapshot import.
type InventoryParseResult struct {
	Success      bool                       `json:"success"`
	Inventory    map[string]InventoryRecord `json:"inventory"`
	TotalRecords int                        `json:"total_records"`
	UniqueParts  int                        `json:"unique_parts"`
	Errors       []string                   `json:"errors"`
}

// Locations that hold uninspected or quarantined stock; records there are
// not pickable and are dropped from the snapshot.
var skipLocations = []string{"awaiting inspection", "receiving", "qa", "quarantine"}

type inventoryColumns struct {
	productID    int
	lotID        int
	location     int
	qtyAvailable int
}

var inventoryRules = []struct {
	assign func(*inventoryColumns, int)
	match  func(string) bool
}{
	{func(c *inventoryColumns, i int) { c.productID = i }, hasAll("product", "id")},
	{func(c *inventoryColumns, i int) { c.productID = i }, isOneOf("product id", "productid", "part number", "part_number")},
	{func(c *inventoryColumns, i int) { c.lotID = i }, hasAll("lot", "id")},
	{func(c *inventoryColumns, i int) { c.lotID = i }, isOneOf("lot id", "lotid")},
	{func(c *inventoryColumns, i int) { c.location = i }, isOneOf("location", "loc", "bin")},
	{func(c *inventoryColumns, i int) { c.qtyAvailable = i }, hasAll("qty", "available")},
	{func(c *inventoryColumns, i int) { c.qtyAvailable = i }, isOneOf("qty available", "qtyavailable", "available")},
}

func detectInventoryColumns(g *Grid) inventoryColumns {
	cols := inventoryColumns{productID: -1, lotID: -1, location: -1, qtyAvailable: -1}
	for i := 0; i < g.RowWidth(0); i++ {
		header := strings.ToLower(g.Cell(0, i))
		for _, rule := range inventoryRules {
			if rule.match(header) {
				rule.assign(&cols, i)
				break
			}
		}
	}
	return cols
}

func inventoryFailure(msg string) InventoryParseResult {
	return InventoryParseResult{Success: false, Inventory: map[string]InventoryRecord{}, Errors: []string{msg}}
}

// ParseInventoryFile reads an inventory workbook and keeps, per part
// number, only the record with the lexicographically newest lot id.
func ParseInventoryFile(data []byte) InventoryParseResult {
	grids, err := LoadWorkbook(data)
	if err != nil {
		return inventoryFailure(fmt.Sprintf("Failed to parse inventory file: %v", err))
	}
	if len(grids) == 0 {
		return inventoryFailure("No sheets found in workbook")
	}
	return ParseInventoryGrid(grids[0])
}

// ParseInventoryGrid is the grid-level inventory parser, shared by the
// workbook entry point and tests.
func ParseInventoryGrid(g *Grid) InventoryParseResult {
	if g.RowCount() < 2 {
		return inventoryFailure("Sheet has no data rows")
	}

	cols := detectInventoryColumns(g)
	if cols.productID == -1 {
		return inventoryFailure("Could not find Product Id column in inventory file")
	}

	inventory := make(map[string]InventoryRecord)
	total := 0
	for row := 1; row < g.RowCount(); row++ {
		partNumber := g.Cell(row, cols.productID)
		if partNumber == "" {
			continue
		}
		location := g.Cell(row, cols.location)
		if location == "" || isSkippedLocation(location) {
			continue
		}

		record := InventoryRecord{
			PartNumber:   partNumber,
			Location:     location,
			QtyAvailable: ParseQty(g.Cell(row, cols.qtyAvailable)),
			LotID:        g.Cell(row, cols.lotID),
		}
		total++

		if existing, ok := inventory[partNumber]; !ok || record.LotID > existing.LotID {
			inventory[partNumber] = record
		}
	}

	return InventoryParseResult{
		Success:      true,
		Inventory:    inventory,
		TotalRecords: total,
		UniqueParts:  len(inventory),
		Errors:       []string{},
	}
}

func isSkippedLocation(location string) bool {
	lower := strings.ToLower(location)
	for _, skip := range skipLocations {
		if strings.Contains(lower, skip) {
			return true
		}
	}
	return false
}
