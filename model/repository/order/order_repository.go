package order

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	entity "toolpick.GO/model/entity"
)

// createBatchSize caps rows per child insert statement.
const createBatchSize = 50

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateStats reports what CreateWithChildren actually persisted. A failed
// child batch is recorded here and does not abort the remaining batches.
type CreateStats struct {
	ToolsCreated     int
	LineItemsCreated int
	FailedBatches    []string
}

// CreateWithChildren persists an order with its tools and line items. The
// order row itself is all-or-nothing; child rows go in batches, and a batch
// that fails is skipped and reported while the rest continue.
func (r *OrderRepository) CreateWithChildren(order *entity.Order, tools []entity.Tool, items []entity.LineItem) (*CreateStats, error) {
	if err := r.db.Create(order).Error; err != nil {
		return nil, fmt.Errorf("create order %s: %w", order.SONumber, err)
	}

	stats := &CreateStats{}

	for i := 0; i < len(tools); i += createBatchSize {
		end := i + createBatchSize
		if end > len(tools) {
			end = len(tools)
		}
		chunk := tools[i:end]
		for j := range chunk {
			chunk[j].OrderID = order.OrderID
		}
		if err := r.db.Create(&chunk).Error; err != nil {
			stats.FailedBatches = append(stats.FailedBatches,
				fmt.Sprintf("tools batch %d: %v", i/createBatchSize, err))
			continue
		}
		stats.ToolsCreated += len(chunk)
	}

	for i := 0; i < len(items); i += createBatchSize {
		end := i + createBatchSize
		if end > len(items) {
			end = len(items)
		}
		chunk := items[i:end]
		for j := range chunk {
			chunk[j].OrderID = order.OrderID
		}
		if err := r.db.Create(&chunk).Error; err != nil {
			stats.FailedBatches = append(stats.FailedBatches,
				fmt.Sprintf("line items batch %d: %v", i/createBatchSize, err))
			continue
		}
		stats.LineItemsCreated += len(chunk)
	}

	return stats, nil
}

// ExistsBySONumber reports whether an order with the SO number exists.
func (r *OrderRepository) ExistsBySONumber(soNumber string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.Order{}).Where("so_number = ?", soNumber).Count(&count).Error
	return count > 0, err
}

// FindBySONumber loads one order with its tools and line items.
func (r *OrderRepository) FindBySONumber(soNumber string) (*entity.Order, error) {
	var order entity.Order
	err := r.db.Preload("Tools").Preload("LineItems").
		First(&order, "so_number = ?", soNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// FindByID loads one order with its tools and line items.
func (r *OrderRepository) FindByID(id uint) (*entity.Order, error) {
	var order entity.Order
	err := r.db.Preload("Tools").Preload("LineItems").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List returns one page of orders, newest first, plus the total count.
func (r *OrderRepository) List(page, pageSize int) ([]entity.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	var total int64
	if err := r.db.Model(&entity.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []entity.Order
	err := r.db.Order("created_at DESC").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&orders).Error
	return orders, total, err
}

// Delete removes an order and its children. Child tables carry no cascade,
// so they are cleared explicitly.
func (r *OrderRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&entity.Tool{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&entity.LineItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Order{}, id).Error
	})
}
