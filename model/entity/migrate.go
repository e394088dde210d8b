package entity

import (
	"gorm.io/gorm"

	catalogEntity "toolpick.GO/model/entity/catalog"
	inventoryEntity "toolpick.GO/model/entity/inventory"
)

// Migrate creates or updates the schema for every table the app owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Order{},
		&Tool{},
		&LineItem{},
		&Pick{},
		&catalogEntity.PartsCatalogItem{},
		&inventoryEntity.InventoryItem{},
	)
}
