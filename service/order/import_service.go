package order

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	entity "toolpick.GO/model/entity"
	orderRepo "toolpick.GO/model/repository/order"
	"toolpick.GO/service/importer"
)

// ImportReport holds counters and timing from committing one parsed order.
type ImportReport struct {
	SONumber     string
	OrderID      uint
	ToolsCreated int
	ItemsCreated int
	Warnings     []string
	ProcessTime  time.Duration
	DBTime       time.Duration
	TotalTime    time.Duration
}

type ImportService struct {
	orders *orderRepo.OrderRepository
}

func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{orders: orderRepo.NewOrderRepository(db)}
}

// Commit persists a successfully parsed order. The SO number must not exist
// yet; duplicates fail before any write.
func (s *ImportService) Commit(parsed *importer.ImportedOrder) (*ImportReport, error) {
	startTotal := time.Now()

	if parsed == nil || parsed.SONumber == "" {
		return nil, fmt.Errorf("nothing to commit: no parsed order")
	}

	exists, err := s.orders.ExistsBySONumber(parsed.SONumber)
	if err != nil {
		return nil, fmt.Errorf("check existing SO %s: %w", parsed.SONumber, err)
	}
	if exists {
		return nil, fmt.Errorf("order with SO number %s already exists", parsed.SONumber)
	}

	startProcess := time.Now()
	ord, tools, items := buildEntities(parsed)
	processTime := time.Since(startProcess)

	startDB := time.Now()
	stats, err := s.orders.CreateWithChildren(ord, tools, items)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{
		SONumber:     parsed.SONumber,
		OrderID:      ord.OrderID,
		ToolsCreated: stats.ToolsCreated,
		ItemsCreated: stats.LineItemsCreated,
		Warnings:     stats.FailedBatches,
		ProcessTime:  processTime,
		DBTime:       time.Since(startDB),
		TotalTime:    time.Since(startTotal),
	}
	return report, nil
}

// buildEntities maps a parsed order onto persistence rows. Tool assignments
// from multi-sheet imports land in each line item's tool_numbers JSON.
func buildEntities(parsed *importer.ImportedOrder) (*entity.Order, []entity.Tool, []entity.LineItem) {
	ord := &entity.Order{
		SONumber:     parsed.SONumber,
		PONumber:     optional(parsed.PONumber),
		CustomerName: optional(parsed.CustomerName),
		OrderDate:    optional(parsed.OrderDate),
		DueDate:      optional(parsed.DueDate),
		Status:       "active",
	}

	tools := make([]entity.Tool, 0, len(parsed.Tools))
	for _, t := range parsed.Tools {
		tools = append(tools, entity.Tool{
			ToolNumber:   t.ToolNumber,
			ToolModel:    optional(t.ToolModel),
			SerialNumber: optional(t.SerialNumber),
		})
	}

	items := make([]entity.LineItem, 0, len(parsed.LineItems))
	for _, li := range parsed.LineItems {
		item := entity.LineItem{
			PartNumber:     li.PartNumber,
			Description:    li.Description,
			Location:       li.Location,
			QtyPerUnit:     li.QtyPerUnit,
			TotalQtyNeeded: li.TotalQtyNeeded,
			AssemblyGroup:  li.AssemblyGroup,
		}
		if numbers, ok := parsed.ToolAssignments[li.PartNumber]; ok && len(numbers) > 0 {
			if raw, err := json.Marshal(numbers); err == nil {
				item.ToolNumbers = datatypes.JSON(raw)
			}
		}
		items = append(items, item)
	}
	return ord, tools, items
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
