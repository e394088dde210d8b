package inventory

import "time"

// InventoryItem is the newest-lot stock snapshot row for one part number.
type InventoryItem struct {
	PartNumber   string    `gorm:"column:part_number;type:varchar(128);primaryKey" json:"part_number"`
	Location     string    `gorm:"column:location;type:varchar(64);not null" json:"location"`
	QtyAvailable int       `gorm:"column:qty_available;not null;default:0" json:"qty_available"`
	LotID        string    `gorm:"column:lot_id;type:varchar(64)" json:"lot_id,omitempty"`
	ImportedAt   time.Time `gorm:"column:imported_at;autoCreateTime" json:"imported_at"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}
