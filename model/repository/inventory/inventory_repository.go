package inventory

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	inventoryEntity "toolpick.GO/model/entity/inventory"
)

// snapshotBatchSize caps rows per insert statement when replacing the
// snapshot.
const snapshotBatchSize = 50

type InventoryRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

func NewInventoryRepository(db *gorm.DB) (*InventoryRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &InventoryRepository{db: db, sqlDB: sqlDB}, nil
}

// ReplaceSnapshot swaps the whole inventory table for a freshly imported
// snapshot. The snapshot already holds one row per part (newest lot), so a
// plain delete+insert keeps the table consistent.
func (r *InventoryRepository) ReplaceSnapshot(items []inventoryEntity.InventoryItem) (int, error) {
	inserted := 0
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&inventoryEntity.InventoryItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(items, snapshotBatchSize).Error; err != nil {
			return err
		}
		inserted = len(items)
		return nil
	})
	return inserted, err
}

// GetByPart returns the snapshot row for one part number, nil when absent.
func (r *InventoryRepository) GetByPart(partNumber string) (*inventoryEntity.InventoryItem, error) {
	var item inventoryEntity.InventoryItem
	err := r.db.First(&item, "part_number = ?", partNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// QtyAvailable returns available stock for a part number.
// Uses raw SQL for minimal overhead
func (r *InventoryRepository) QtyAvailable(partNumber string) (int, bool) {
	const query = `SELECT qty_available FROM inventory_items WHERE part_number = ? LIMIT 1`
	var qty sql.NullInt64
	if err := r.sqlDB.QueryRow(query, partNumber).Scan(&qty); err != nil || !qty.Valid {
		return 0, false
	}
	return int(qty.Int64), true
}

// RemainingPart is one part still short across all orders, paired with what
// the inventory snapshot says is on hand.
type RemainingPart struct {
	PartNumber   string `json:"part_number"`
	TotalNeeded  int    `json:"total_needed"`
	TotalPicked  int    `json:"total_picked"`
	QtyAvailable int    `json:"qty_available"`
}

// Remaining aggregates line items that still need picking, joined against
// the inventory snapshot.
func (r *InventoryRepository) Remaining() ([]RemainingPart, error) {
	const query = `
		SELECT li.part_number,
		       SUM(li.total_qty_needed) AS total_needed,
		       SUM(li.qty_picked)       AS total_picked,
		       COALESCE(MAX(inv.qty_available), 0) AS qty_available
		FROM line_items li
		LEFT JOIN inventory_items inv ON inv.part_number = li.part_number
		GROUP BY li.part_number
		HAVING SUM(li.total_qty_needed) > SUM(li.qty_picked)
		ORDER BY li.part_number`

	rows, err := r.sqlDB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RemainingPart
	for rows.Next() {
		var p RemainingPart
		if err := rows.Scan(&p.PartNumber, &p.TotalNeeded, &p.TotalPicked, &p.QtyAvailable); err != nil {
			continue
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
