package entity

import "time"

// Order is one customer tool order created from an imported file.
type Order struct {
	OrderID      uint      `gorm:"column:order_id;primaryKey;autoIncrement" json:"order_id"`
	SONumber     string    `gorm:"column:so_number;type:varchar(64);not null;uniqueIndex" json:"so_number"`
	PONumber     *string   `gorm:"column:po_number;type:varchar(64)" json:"po_number,omitempty"`
	CustomerName *string   `gorm:"column:customer_name;type:varchar(128)" json:"customer_name,omitempty"`
	OrderDate    *string   `gorm:"column:order_date;type:varchar(32)" json:"order_date,omitempty"`
	DueDate      *string   `gorm:"column:due_date;type:varchar(32)" json:"due_date,omitempty"`
	Status       string    `gorm:"column:status;type:varchar(16);not null;default:active" json:"status"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Tools     []Tool     `gorm:"foreignKey:OrderID" json:"tools,omitempty"`
	LineItems []LineItem `gorm:"foreignKey:OrderID" json:"line_items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// Tool is one physical tool instance belonging to an order.
type Tool struct {
	ToolID       uint    `gorm:"column:tool_id;primaryKey;autoIncrement" json:"tool_id"`
	OrderID      uint    `gorm:"column:order_id;not null;index" json:"order_id"`
	ToolNumber   string  `gorm:"column:tool_number;type:varchar(64);not null" json:"tool_number"`
	ToolModel    *string `gorm:"column:tool_model;type:varchar(64)" json:"tool_model,omitempty"`
	SerialNumber *string `gorm:"column:serial_number;type:varchar(64)" json:"serial_number,omitempty"`
}

func (Tool) TableName() string {
	return "tools"
}
