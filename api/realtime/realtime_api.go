package realtime

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"toolpick.GO/api"
	"toolpick.GO/config"
	catalogEntity "toolpick.GO/model/entity/catalog"
	catalogRepo "toolpick.GO/model/repository/catalog"
	inventoryRepo "toolpick.GO/model/repository/inventory"
)

func init() {
	api.RegisterModule(RegisterRealtimeRoutes)
}

// Response for the part-stock endpoint
type PartStockResponse struct {
	PartNumber      string `json:"part_number"`
	Description     string `json:"description,omitempty"`
	DefaultLocation string `json:"default_location,omitempty"`
	QtyAvailable    int    `json:"qty_available"`
}

// Singleton repositories (created once per DB)
var (
	catalogRepoInstance   *catalogRepo.CatalogRepository
	inventoryRepoInstance *inventoryRepo.InventoryRepository
	repoOnce              sync.Once
	repoErr               error
)

func getRepositories(db *gorm.DB) (*catalogRepo.CatalogRepository, *inventoryRepo.InventoryRepository, error) {
	repoOnce.Do(func() {
		catalogRepoInstance = catalogRepo.NewCatalogRepository(db)
		inventoryRepoInstance, repoErr = inventoryRepo.NewInventoryRepository(db)
	})
	return catalogRepoInstance, inventoryRepoInstance, repoErr
}

func getSigningKey() string {
	return config.GetEnv("CLIENT_SIGNING_KEY", "")
}

// verifyClientSignature validates HMAC-SHA256 signature using constant-time comparison
func verifyClientSignature(clientID, signature, signingKey string) bool {
	if signingKey == "" || clientID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(signingKey))
	mac.Write([]byte(clientID))
	expected := mac.Sum(nil)
	sig, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, sig)
}

// RegisterRealtimeRoutes sets up the low-latency stock lookup API used by
// pickers on the floor.
func RegisterRealtimeRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/realtime")

	// GET /api/realtime/part-stock?part=XXX
	g.GET("/part-stock", func(c echo.Context) error {
		start := time.Now()

		clientID := c.Request().Header.Get("X-Client-ID")
		clientSig := c.Request().Header.Get("X-Client-Sig")
		signingKey := getSigningKey()

		if signingKey != "" && !verifyClientSignature(clientID, clientSig, signingKey) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signature"})
		}

		part := c.QueryParam("part")
		if part == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "part required"})
		}

		catalogR, inventoryR, err := getRepositories(db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "repository init failed"})
		}

		var catalogItem *catalogEntity.PartsCatalogItem
		var qty int
		var stockFound bool

		// Parallel fetch using errgroup
		eg := new(errgroup.Group)

		eg.Go(func() error {
			catalogItem, _ = catalogR.Get(part)
			return nil
		})

		eg.Go(func() error {
			qty, stockFound = inventoryR.QtyAvailable(part)
			return nil
		})

		_ = eg.Wait()

		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))

		if catalogItem == nil && !stockFound {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error":               "part not found",
				"request_duration_ms": duration,
			})
		}

		resp := PartStockResponse{PartNumber: part, QtyAvailable: qty}
		if catalogItem != nil {
			resp.Description = catalogItem.Description
			resp.DefaultLocation = catalogItem.DefaultLocation
		}
		return c.JSON(http.StatusOK, resp)
	})

	// GET /api/realtime/stock?part=XXX - stock only, no catalog lookup
	g.GET("/stock", func(c echo.Context) error {
		start := time.Now()

		part := c.QueryParam("part")
		if part == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "part required"})
		}

		_, inventoryR, err := getRepositories(db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "repository init failed"})
		}

		qty, found := inventoryR.QtyAvailable(part)
		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))

		if !found {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "stock not found"})
		}

		return c.JSON(http.StatusOK, echo.Map{"part_number": part, "qty_available": qty})
	})
}
