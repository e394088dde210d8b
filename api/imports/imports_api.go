package imports

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"toolpick.GO/api"
	"toolpick.GO/core/cache"
	catalogRepo "toolpick.GO/model/repository/catalog"
	catalogService "toolpick.GO/service/catalog"
	"toolpick.GO/service/importer"
	orderService "toolpick.GO/service/order"
)

func init() {
	api.RegisterModule(RegisterImportRoutes)
}

// previewTTLSeconds is how long a parsed upload stays committable.
const previewTTLSeconds = 15 * 60

const previewCacheTag = "import_preview"

// preview is the cached payload between parse and commit.
type preview struct {
	Result    importer.ParseResult
	Conflicts []catalogService.PartConflict
}

var (
	catalogRepoInstance *catalogRepo.CatalogRepository
	repoOnce            sync.Once
)

func getCatalogRepo(db *gorm.DB) *catalogRepo.CatalogRepository {
	repoOnce.Do(func() {
		catalogRepoInstance = catalogRepo.NewCatalogRepository(db)
	})
	return catalogRepoInstance
}

// fileKindFromName classifies an upload by extension.
func fileKindFromName(name string) importer.FileKind {
	if strings.HasSuffix(strings.ToLower(name), ".csv") {
		return importer.KindCSV
	}
	return importer.KindWorkbook
}

func RegisterImportRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/imports")

	// POST /api/imports/parse – upload a BOM file and get the normalized
	// order plus catalog conflicts and a preview token.
	g.POST("/parse", func(c echo.Context) error {
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

		result := importer.ParseOrderFile(data, fileHeader.Filename, fileKindFromName(fileHeader.Filename))

		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))

		if !result.Success {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"result":              result,
				"request_duration_ms": duration,
			})
		}

		repo := getCatalogRepo(db)
		catalog, err := repo.FetchAll()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		reconciler := catalogService.NewReconciler(repo)
		conflicts := reconciler.CheckForConflicts(result.Order.LineItems, catalog)

		newParts := 0
		for _, item := range result.Order.LineItems {
			if _, ok := catalog[item.PartNumber]; !ok {
				newParts++
			}
		}

		token := uuid.New().String()
		cache.GetInstance().Set("import:preview:"+token, preview{
			Result:    result,
			Conflicts: conflicts,
		}, previewTTLSeconds, []string{previewCacheTag})

		return c.JSON(http.StatusOK, echo.Map{
			"result":              result,
			"conflicts":           conflicts,
			"new_parts":           newParts,
			"preview_token":       token,
			"request_duration_ms": duration,
		})
	})

	// POST /api/imports/commit – turn a parsed preview into a stored order.
	g.POST("/commit", func(c echo.Context) error {
		start := time.Now()

		var body struct {
			PreviewToken string                               `json:"preview_token"`
			Resolutions  map[string]catalogService.Resolution `json:"resolutions"`
			SaveNewParts bool                                 `json:"save_new_parts"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.PreviewToken == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "preview_token is required"})
		}

		key := "import:preview:" + body.PreviewToken
		v, ok := cache.GetInstance().Get(key)
		if !ok {
			return c.JSON(http.StatusGone, echo.Map{"error": "preview expired or unknown"})
		}
		pv, ok := v.(preview)
		if !ok || pv.Result.Order == nil {
			return c.JSON(http.StatusGone, echo.Map{"error": "preview expired or unknown"})
		}

		repo := getCatalogRepo(db)
		reconciler := catalogService.NewReconciler(repo)
		if err := reconciler.ApplyResolutions(pv.Conflicts, body.Resolutions); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		savedParts := 0
		if body.SaveNewParts {
			catalog, err := repo.FetchAll()
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
			}
			savedParts, err = reconciler.SaveNewParts(pv.Result.Order.LineItems, catalog)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
			}
		}

		report, err := orderService.NewImportService(db).Commit(pv.Result.Order)
		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		if err != nil {
			if strings.Contains(err.Error(), "already exists") {
				return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}

		cache.GetInstance().Delete(key)

		return c.JSON(http.StatusOK, echo.Map{
			"so_number":           report.SONumber,
			"order_id":            report.OrderID,
			"tools_created":       report.ToolsCreated,
			"items_created":       report.ItemsCreated,
			"saved_parts":         savedParts,
			"warnings":            report.Warnings,
			"request_duration_ms": duration,
		})
	})
}
