package entity

import "time"

// Pick records one picking event against a line item.
type Pick struct {
	PickID     uint      `gorm:"column:pick_id;primaryKey;autoIncrement" json:"pick_id"`
	LineItemID uint      `gorm:"column:line_item_id;not null;index" json:"line_item_id"`
	ToolID     *uint     `gorm:"column:tool_id;index" json:"tool_id,omitempty"`
	Qty        int       `gorm:"column:qty;not null" json:"qty"`
	PickedBy   string    `gorm:"column:picked_by;type:varchar(64)" json:"picked_by,omitempty"`
	PickedAt   time.Time `gorm:"column:picked_at;autoCreateTime" json:"picked_at"`
}

func (Pick) TableName() string {
	return "picks"
}
