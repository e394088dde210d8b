package parts

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"toolpick.GO/api"
	catalogRepo "toolpick.GO/model/repository/catalog"
	catalogService "toolpick.GO/service/catalog"
)

func init() {
	api.RegisterModule(RegisterPartsRoutes)
}

var (
	repoInstance *catalogRepo.CatalogRepository
	repoOnce     sync.Once
)

func getRepo(db *gorm.DB) *catalogRepo.CatalogRepository {
	repoOnce.Do(func() {
		repoInstance = catalogRepo.NewCatalogRepository(db)
	})
	return repoInstance
}

func RegisterPartsRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/parts")

	// GET /api/parts/search?q=...&limit=20
	g.GET("/search", func(c echo.Context) error {
		start := time.Now()

		query := c.QueryParam("q")
		if query == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "q required"})
		}
		limit, _ := strconv.Atoi(c.QueryParam("limit"))

		items, err := catalogService.GetSearchService().
			Search(c.Request().Context(), query, limit, getRepo(db))
		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}

		return c.JSON(http.StatusOK, echo.Map{
			"items":               items,
			"count":               len(items),
			"request_duration_ms": duration,
		})
	})

	// GET /api/parts/:part
	g.GET("/:part", func(c echo.Context) error {
		item, err := getRepo(db).Get(c.Param("part"))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		if item == nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "part not found"})
		}
		return c.JSON(http.StatusOK, item)
	})
}
