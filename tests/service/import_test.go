package servicetest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	entity "toolpick.GO/model/entity"
	catalogEntity "toolpick.GO/model/entity/catalog"
	inventoryEntity "toolpick.GO/model/entity/inventory"
	catalogRepo "toolpick.GO/model/repository/catalog"
	catalogService "toolpick.GO/service/catalog"
	"toolpick.GO/service/importer"
	orderService "toolpick.GO/service/order"
)

func serviceDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a temp file DB so multiple connections see the same tables
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("service_test_%s_%d.db", t.Name(), time.Now().UnixNano()))
	t.Cleanup(func() { os.Remove(tmpFile) })
	db, err := gorm.Open(sqlite.Open(tmpFile), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA synchronous=OFF")
	db.Exec("PRAGMA busy_timeout=5000")

	if err := db.AutoMigrate(
		&entity.Order{},
		&entity.Tool{},
		&entity.LineItem{},
		&entity.Pick{},
		&catalogEntity.PartsCatalogItem{},
		&inventoryEntity.InventoryItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func parsedOrder() *importer.ImportedOrder {
	return &importer.ImportedOrder{
		SONumber:     "3137",
		CustomerName: "Acme Tooling",
		Tools: []importer.ImportedTool{
			{ToolNumber: "3137-1", ToolModel: "M-200"},
			{ToolNumber: "3137-2", ToolModel: "M-200"},
		},
		LineItems: []importer.ImportedLineItem{
			{PartNumber: "P-100", Description: "Bracket", Location: "A1", QtyPerUnit: 2, TotalQtyNeeded: 4},
			{PartNumber: "P-200", Description: "Bolt", QtyPerUnit: 1, TotalQtyNeeded: 2},
		},
		ToolAssignments: map[string][]string{
			"P-100": {"3137-1", "3137-2"},
		},
	}
}

func TestImportService_Commit(t *testing.T) {
	db := serviceDB(t)
	svc := orderService.NewImportService(db)

	report, err := svc.Commit(parsedOrder())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if report.ToolsCreated != 2 || report.ItemsCreated != 2 {
		t.Errorf("report = %+v, want 2 tools and 2 items", report)
	}
	if report.SONumber != "3137" || report.OrderID == 0 {
		t.Errorf("report identity = %q/%d", report.SONumber, report.OrderID)
	}

	var item entity.LineItem
	if err := db.First(&item, "part_number = ?", "P-100").Error; err != nil {
		t.Fatalf("load line item: %v", err)
	}
	var toolNumbers []string
	if err := json.Unmarshal(item.ToolNumbers, &toolNumbers); err != nil {
		t.Fatalf("decode tool_numbers: %v", err)
	}
	if len(toolNumbers) != 2 || toolNumbers[0] != "3137-1" {
		t.Errorf("tool_numbers = %v", toolNumbers)
	}
}

func TestImportService_DuplicateSOFailsBeforeWrite(t *testing.T) {
	db := serviceDB(t)
	svc := orderService.NewImportService(db)

	if _, err := svc.Commit(parsedOrder()); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if _, err := svc.Commit(parsedOrder()); err == nil {
		t.Fatal("second commit of same SO should fail")
	}

	var count int64
	db.Model(&entity.Order{}).Count(&count)
	if count != 1 {
		t.Errorf("orders = %d, want 1", count)
	}
}

func TestReconciler_ConflictsAndResolutions(t *testing.T) {
	db := serviceDB(t)
	repo := catalogRepo.NewCatalogRepository(db)

	db.Create(&catalogEntity.PartsCatalogItem{
		PartNumber:      "P-100",
		Description:     "Bracket",
		DefaultLocation: "A1",
	})
	db.Create(&catalogEntity.PartsCatalogItem{
		PartNumber:  "P-200",
		Description: "Bolt",
	})

	items := []importer.ImportedLineItem{
		{PartNumber: "P-100", Description: "Bracket", Location: "A1"}, // identical
		{PartNumber: "P-200", Description: "Bolt", Location: "B4"},   // location differs (catalog empty)
		{PartNumber: "P-300", Description: "Washer"},                 // not in catalog
	}

	reconciler := catalogService.NewReconciler(repo)
	catalog, err := repo.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	conflicts := reconciler.CheckForConflicts(items, catalog)
	if len(conflicts) != 1 {
		t.Fatalf("conflicts = %+v, want only P-200", conflicts)
	}
	c := conflicts[0]
	if c.PartNumber != "P-200" || c.CatalogLocation != "" || c.ImportedLocation != "B4" {
		t.Errorf("conflict = %+v", c)
	}

	// Unresolved conflicts keep catalog values.
	if err := reconciler.ApplyResolutions(conflicts, nil); err != nil {
		t.Fatalf("ApplyResolutions(keep): %v", err)
	}
	var kept catalogEntity.PartsCatalogItem
	db.First(&kept, "part_number = ?", "P-200")
	if kept.DefaultLocation != "" {
		t.Errorf("keep resolution changed location to %q", kept.DefaultLocation)
	}

	// Explicit update applies the imported values.
	err = reconciler.ApplyResolutions(conflicts, map[string]catalogService.Resolution{
		"P-200": catalogService.ResolutionUpdate,
	})
	if err != nil {
		t.Fatalf("ApplyResolutions(update): %v", err)
	}
	var updated catalogEntity.PartsCatalogItem
	db.First(&updated, "part_number = ?", "P-200")
	if updated.DefaultLocation != "B4" {
		t.Errorf("update resolution location = %q, want B4", updated.DefaultLocation)
	}

	// Against the refreshed catalog the same import is conflict free.
	refreshed, err := repo.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll after update: %v", err)
	}
	if remaining := reconciler.CheckForConflicts(items, refreshed); len(remaining) != 0 {
		t.Errorf("conflicts after update = %+v, want none", remaining)
	}

	created, err := reconciler.SaveNewParts(items, catalog)
	if err != nil {
		t.Fatalf("SaveNewParts: %v", err)
	}
	if created != 1 {
		t.Errorf("SaveNewParts created = %d, want only P-300", created)
	}
}
