package orders

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"toolpick.GO/api"
	entity "toolpick.GO/model/entity"
	orderRepo "toolpick.GO/model/repository/order"
)

func init() {
	api.RegisterModule(RegisterOrderRoutes)
}

var (
	repoInstance *orderRepo.OrderRepository
	repoOnce     sync.Once
)

func getRepo(db *gorm.DB) *orderRepo.OrderRepository {
	repoOnce.Do(func() {
		repoInstance = orderRepo.NewOrderRepository(db)
	})
	return repoInstance
}

func RegisterOrderRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/orders")

	// GET /api/orders?page=1&page_size=50
	g.GET("", func(c echo.Context) error {
		start := time.Now()

		page, _ := strconv.Atoi(c.QueryParam("page"))
		pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

		orders, total, err := getRepo(db).List(page, pageSize)
		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}

		return c.JSON(http.StatusOK, echo.Map{
			"items":               orders,
			"total":               total,
			"request_duration_ms": duration,
		})
	})

	// GET /api/orders/:id – numeric id or SO number
	g.GET("/:id", func(c echo.Context) error {
		start := time.Now()
		repo := getRepo(db)

		idParam := c.Param("id")
		var (
			ord *entity.Order
			err error
		)
		if id, convErr := strconv.ParseUint(idParam, 10, 32); convErr == nil {
			ord, err = repo.FindByID(uint(id))
			if ord == nil && err == nil {
				// Numeric SO numbers are indistinguishable from ids.
				ord, err = repo.FindBySONumber(idParam)
			}
		} else {
			ord, err = repo.FindBySONumber(idParam)
		}

		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		if ord == nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusOK, ord)
	})

	// DELETE /api/orders/:id
	g.DELETE("/:id", func(c echo.Context) error {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "numeric id required"})
		}
		if err := getRepo(db).Delete(uint(id)); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"deleted": id})
	})
}
