package catalog

import "time"

// PartsCatalogItem is the master record for a part number: its canonical
// description and default stock location.
type PartsCatalogItem struct {
	PartNumber      string    `gorm:"column:part_number;type:varchar(128);primaryKey" json:"part_number"`
	Description     string    `gorm:"column:description;type:varchar(255)" json:"description,omitempty"`
	DefaultLocation string    `gorm:"column:default_location;type:varchar(64)" json:"default_location,omitempty"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PartsCatalogItem) TableName() string {
	return "parts_catalog"
}
