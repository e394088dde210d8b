package entity

import "gorm.io/datatypes"

// LineItem is one part requirement row of an order's BOM. ToolNumbers holds
// the tool numbers the part applies to, populated by multi-sheet imports
// where different sheets feed the same merged row.
type LineItem struct {
	LineItemID     uint           `gorm:"column:line_item_id;primaryKey;autoIncrement" json:"line_item_id"`
	OrderID        uint           `gorm:"column:order_id;not null;index" json:"order_id"`
	PartNumber     string         `gorm:"column:part_number;type:varchar(128);not null;index" json:"part_number"`
	Description    string         `gorm:"column:description;type:varchar(255)" json:"description,omitempty"`
	Location       string         `gorm:"column:location;type:varchar(64)" json:"location,omitempty"`
	QtyPerUnit     int            `gorm:"column:qty_per_unit;not null;default:1" json:"qty_per_unit"`
	TotalQtyNeeded int            `gorm:"column:total_qty_needed;not null;default:1" json:"total_qty_needed"`
	QtyPicked      int            `gorm:"column:qty_picked;not null;default:0" json:"qty_picked"`
	AssemblyGroup  string         `gorm:"column:assembly_group;type:varchar(128)" json:"assembly_group,omitempty"`
	ToolNumbers    datatypes.JSON `gorm:"column:tool_numbers" json:"tool_numbers,omitempty"`
}

func (LineItem) TableName() string {
	return "line_items"
}
