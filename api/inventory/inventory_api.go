package inventory

import (
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"toolpick.GO/api"
	inventoryEntity "toolpick.GO/model/entity/inventory"
	inventoryRepo "toolpick.GO/model/repository/inventory"
	"toolpick.GO/service/importer"
)

func init() {
	api.RegisterModule(RegisterInventoryRoutes)
}

var (
	repoInstance *inventoryRepo.InventoryRepository
	repoOnce     sync.Once
	repoErr      error
)

func getRepo(db *gorm.DB) (*inventoryRepo.InventoryRepository, error) {
	repoOnce.Do(func() {
		repoInstance, repoErr = inventoryRepo.NewInventoryRepository(db)
	})
	return repoInstance, repoErr
}

func RegisterInventoryRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/inventory")

	// POST /api/inventory/import – upload an inventory workbook; replaces
	// the whole snapshot.
	g.POST("/import", func(c echo.Context) error {
		start := time.Now()

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
		}
		f, err := fileHeader.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		result := importer.ParseInventoryFile(data)
		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		if !result.Success {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"errors":              result.Errors,
				"request_duration_ms": duration,
			})
		}

		repo, err := getRepo(db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "repository init failed"})
		}

		items := make([]inventoryEntity.InventoryItem, 0, len(result.Inventory))
		for _, rec := range result.Inventory {
			items = append(items, inventoryEntity.InventoryItem{
				PartNumber:   rec.PartNumber,
				Location:     rec.Location,
				QtyAvailable: rec.QtyAvailable,
				LotID:        rec.LotID,
			})
		}
		inserted, err := repo.ReplaceSnapshot(items)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}

		return c.JSON(http.StatusOK, echo.Map{
			"total_records":       result.TotalRecords,
			"unique_parts":        result.UniqueParts,
			"imported":            inserted,
			"request_duration_ms": duration,
		})
	})

	// GET /api/inventory/remaining – parts still short across all orders.
	g.GET("/remaining", func(c echo.Context) error {
		start := time.Now()

		repo, err := getRepo(db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "repository init failed"})
		}
		parts, err := repo.Remaining()
		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}

		return c.JSON(http.StatusOK, echo.Map{
			"items":               parts,
			"count":               len(parts),
			"request_duration_ms": duration,
		})
	})
}
