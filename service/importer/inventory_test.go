package importer

import "testing"

func TestParseInventoryGrid_NewestLotWins(t *testing.T) {
	g := NewGrid("inventory", [][]string{
		{"Product Id", "Lot Id", "Location", "Qty Available"},
		{"P-100", "LOT-2024-01", "A1", "5"},
		{"P-100", "LOT-2026-03", "B2", "8"},
		{"P-100", "LOT-2025-07", "C3", "2"},
		{"P-200", "LOT-0001", "A4", "1"},
	})
	res := ParseInventoryGrid(g)
	if !res.Success {
		t.Fatalf("parse failed: %v", res.Errors)
	}
	if res.TotalRecords != 4 || res.UniqueParts != 2 {
		t.Errorf("counts = (%d, %d), want (4, 2)", res.TotalRecords, res.UniqueParts)
	}
	rec := res.Inventory["P-100"]
	if rec.LotID != "LOT-2026-03" || rec.QtyAvailable != 8 || rec.Location != "B2" {
		t.Errorf("P-100 = %+v, want the LOT-2026-03 record", rec)
	}
}

func TestParseInventoryGrid_SkipsHoldLocations(t *testing.T) {
	g := NewGrid("inventory", [][]string{
		{"Product Id", "Lot Id", "Location", "Qty Available"},
		{"P-100", "L1", "Awaiting Inspection", "5"},
		{"P-200", "L1", "QA Hold", "5"},
		{"P-300", "L1", "Receiving Dock", "5"},
		{"P-400", "L1", "Quarantine", "5"},
		{"P-500", "L1", "A1", "5"},
		{"P-600", "L1", "", "5"},
	})
	res := ParseInventoryGrid(g)
	if !res.Success {
		t.Fatalf("parse failed: %v", res.Errors)
	}
	if res.UniqueParts != 1 {
		t.Fatalf("UniqueParts = %d, want only P-500: %+v", res.UniqueParts, res.Inventory)
	}
	if _, ok := res.Inventory["P-500"]; !ok {
		t.Error("P-500 missing from inventory")
	}
}

func TestParseInventoryGrid_MissingProductColumn(t *testing.T) {
	g := NewGrid("inventory", [][]string{
		{"SKU", "Qty"},
		{"P-1", "2"},
	})
	res := ParseInventoryGrid(g)
	if res.Success {
		t.Fatal("expected failure without a Product Id column")
	}
	if res.Errors[0] != "Could not find Product Id column in inventory file" {
		t.Errorf("error = %q", res.Errors[0])
	}
}
