package modeltest

import (
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
	inventoryRepo "toolpick.GO/model/repository/inventory"
	orderRepo "toolpick.GO/model/repository/order"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a temp file DB so multiple connections see the same tables
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("repo_test_%s_%d.db", t.Name(), time.Now().UnixNano()))
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

func TestCatalogRepository_UpsertNewSkipsExisting(t *testing.T) {
	db := testDB(t)
	repo := catalogRepo.NewCatalogRepository(db)

	seed := catalogEntity.PartsCatalogItem{
		PartNumber:  "P-100",
		Description: "Original description",
	}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	created, err := repo.UpsertNew([]catalogEntity.PartsCatalogItem{
		{PartNumber: "P-100", Description: "Imported description"},
		{PartNumber: "P-200", Description: "New part"},
		{PartNumber: "P-300", Description: "Another new part"},
	})
	if err != nil {
		t.Fatalf("UpsertNew: %v", err)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}

	var existing catalogEntity.PartsCatalogItem
	if err := db.First(&existing, "part_number = ?", "P-100").Error; err != nil {
		t.Fatalf("reload P-100: %v", err)
	}
	if existing.Description != "Original description" {
		t.Errorf("existing description = %q, want untouched original", existing.Description)
	}
}

func TestCatalogRepository_FetchAllPagesAndUpdate(t *testing.T) {
	db := testDB(t)
	repo := catalogRepo.NewCatalogRepository(db)

	items := make([]catalogEntity.PartsCatalogItem, 0, 120)
	for i := 0; i < 120; i++ {
		items = append(items, catalogEntity.PartsCatalogItem{
			PartNumber: fmt.Sprintf("P-%03d", i),
		})
	}
	if _, err := repo.UpsertNew(items); err != nil {
		t.Fatalf("UpsertNew: %v", err)
	}

	all, err := repo.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(all) != 120 {
		t.Errorf("FetchAll returned %d items, want 120", len(all))
	}

	if err := repo.ApplyUpdate("P-005", "Updated", "A9"); err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	var updated catalogEntity.PartsCatalogItem
	if err := db.First(&updated, "part_number = ?", "P-005").Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if updated.Description != "Updated" || updated.DefaultLocation != "A9" {
		t.Errorf("updated row = %+v", updated)
	}
}

func TestOrderRepository_CreateWithChildren(t *testing.T) {
	db := testDB(t)
	repo := orderRepo.NewOrderRepository(db)

	ord := &entity.Order{SONumber: "3137", Status: "active"}
	tools := []entity.Tool{{ToolNumber: "3137-1"}, {ToolNumber: "3137-2"}}
	items := []entity.LineItem{
		{PartNumber: "P-1", QtyPerUnit: 2, TotalQtyNeeded: 4},
		{PartNumber: "P-2", QtyPerUnit: 1, TotalQtyNeeded: 2},
	}

	stats, err := repo.CreateWithChildren(ord, tools, items)
	if err != nil {
		t.Fatalf("CreateWithChildren: %v", err)
	}
	if stats.ToolsCreated != 2 || stats.LineItemsCreated != 2 {
		t.Errorf("stats = %+v, want 2 tools and 2 items", stats)
	}
	if len(stats.FailedBatches) != 0 {
		t.Errorf("unexpected failed batches: %v", stats.FailedBatches)
	}

	found, err := repo.FindBySONumber("3137")
	if err != nil {
		t.Fatalf("FindBySONumber: %v", err)
	}
	if found == nil {
		t.Fatal("order not found after create")
	}
	if len(found.Tools) != 2 || len(found.LineItems) != 2 {
		t.Errorf("loaded children = %d tools, %d items", len(found.Tools), len(found.LineItems))
	}

	exists, err := repo.ExistsBySONumber("3137")
	if err != nil || !exists {
		t.Errorf("ExistsBySONumber = (%v, %v), want (true, nil)", exists, err)
	}
}

func TestOrderRepository_FailedBatchDoesNotAbort(t *testing.T) {
	db := testDB(t)
	repo := orderRepo.NewOrderRepository(db)

	items := make([]entity.LineItem, 0, 120)
	for i := 0; i < 120; i++ {
		items = append(items, entity.LineItem{
			PartNumber:     fmt.Sprintf("P-%03d", i),
			QtyPerUnit:     1,
			TotalQtyNeeded: 1,
		})
	}
	// Duplicate explicit primary keys inside the middle batch make that
	// one insert fail; the surrounding batches must still land.
	items[60].LineItemID = 9001
	items[61].LineItemID = 9001

	ord := &entity.Order{SONumber: "4412", Status: "active"}
	stats, err := repo.CreateWithChildren(ord, nil, items)
	if err != nil {
		t.Fatalf("CreateWithChildren: %v", err)
	}
	if len(stats.FailedBatches) != 1 {
		t.Fatalf("failed batches = %v, want exactly one", stats.FailedBatches)
	}
	if stats.LineItemsCreated != 70 {
		t.Errorf("LineItemsCreated = %d, want 70 (two of three batches)", stats.LineItemsCreated)
	}

	var count int64
	db.Model(&entity.LineItem{}).Count(&count)
	if count != 70 {
		t.Errorf("persisted items = %d, want 70", count)
	}
}

func TestOrderRepository_ListAndDelete(t *testing.T) {
	db := testDB(t)
	repo := orderRepo.NewOrderRepository(db)

	for i := 0; i < 3; i++ {
		ord := &entity.Order{SONumber: fmt.Sprintf("100%d", i), Status: "active"}
		if _, err := repo.CreateWithChildren(ord, []entity.Tool{{ToolNumber: "T-1"}}, nil); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	orders, total, err := repo.List(1, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(orders) != 2 {
		t.Errorf("List = %d of %d, want page of 2 from 3", len(orders), total)
	}

	first, err := repo.FindBySONumber("1000")
	if err != nil || first == nil {
		t.Fatalf("FindBySONumber: %v", err)
	}
	if err := repo.Delete(first.OrderID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var toolCount int64
	db.Model(&entity.Tool{}).Where("order_id = ?", first.OrderID).Count(&toolCount)
	if toolCount != 0 {
		t.Errorf("tools left after delete = %d, want 0", toolCount)
	}
}

func TestInventoryRepository_SnapshotAndRemaining(t *testing.T) {
	db := testDB(t)
	repo, err := inventoryRepo.NewInventoryRepository(db)
	if err != nil {
		t.Fatalf("NewInventoryRepository: %v", err)
	}

	inserted, err := repo.ReplaceSnapshot([]inventoryEntity.InventoryItem{
		{PartNumber: "P-1", Location: "A1", QtyAvailable: 10, LotID: "L-2"},
		{PartNumber: "P-2", Location: "B2", QtyAvailable: 0, LotID: "L-1"},
	})
	if err != nil {
		t.Fatalf("ReplaceSnapshot: %v", err)
	}
	if inserted != 2 {
		t.Errorf("inserted = %d, want 2", inserted)
	}

	// A second snapshot fully replaces the first.
	if _, err := repo.ReplaceSnapshot([]inventoryEntity.InventoryItem{
		{PartNumber: "P-1", Location: "C3", QtyAvailable: 4, LotID: "L-3"},
	}); err != nil {
		t.Fatalf("second ReplaceSnapshot: %v", err)
	}
	if item, _ := repo.GetByPart("P-2"); item != nil {
		t.Error("P-2 survived snapshot replacement")
	}
	qty, found := repo.QtyAvailable("P-1")
	if !found || qty != 4 {
		t.Errorf("QtyAvailable(P-1) = (%d, %v), want (4, true)", qty, found)
	}

	db.Create(&entity.LineItem{OrderID: 1, PartNumber: "P-1", QtyPerUnit: 1, TotalQtyNeeded: 6, QtyPicked: 2})
	db.Create(&entity.LineItem{OrderID: 1, PartNumber: "P-9", QtyPerUnit: 1, TotalQtyNeeded: 3, QtyPicked: 3})

	remaining, err := repo.Remaining()
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("remaining = %+v, want only P-1", remaining)
	}
	r := remaining[0]
	if r.PartNumber != "P-1" || r.TotalNeeded != 6 || r.TotalPicked != 2 || r.QtyAvailable != 4 {
		t.Errorf("remaining row = %+v", r)
	}
}
