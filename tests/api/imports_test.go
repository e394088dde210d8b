package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	imports "toolpick.GO/api/imports"
	entity "toolpick.GO/model/entity"
	catalogEntity "toolpick.GO/model/entity/catalog"
	inventoryEntity "toolpick.GO/model/entity/inventory"
)

func apiDB(t *testing.T) *gorm.DB {
	t.Helper()
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("api_test_%s_%d.db", t.Name(), time.Now().UnixNano()))
	t.Cleanup(func() { os.Remove(tmpFile) })
	db, err := gorm.Open(sqlite.Open(tmpFile), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA synchronous=OFF")
	db.Exec("PRAGMA busy_timeout=5000")

	if err := db.AutoMigrate(
		&entity.Order{},
		&entity.Tool{},
		&entity.LineItem{},
		&entity.Pick{},
		&catalogEntity.PartsCatalogItem{},
		&inventoryEntity.InventoryItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func uploadCSV(t *testing.T, e *echo.Echo, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/imports/parse", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, e *echo.Echo, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestImportsAPI_ParseThenCommit(t *testing.T) {
	db := apiDB(t)
	e := echo.New()
	imports.RegisterImportRoutes(e.Group("/api"), db)

	db.Create(&catalogEntity.PartsCatalogItem{
		PartNumber:      "P-100",
		Description:     "Bracket",
		DefaultLocation: "A1",
	})

	csv := strings.Join([]string{
		"Part Number,Description,Location,Qty Per Unit,Total Qty",
		"P-100,Bracket,B7,2,4",
		"P-900,Spacer,C2,1,2",
	}, "\n")

	rec := uploadCSV(t, e, "SO-4412 order.csv", csv)
	if rec.Code != http.StatusOK {
		t.Fatalf("parse status = %d, body %s", rec.Code, rec.Body.String())
	}
	var parsed struct {
		Result struct {
			Success bool `json:"success"`
			Order   struct {
				SONumber  string `json:"so_number"`
				LineItems []struct {
					PartNumber string `json:"part_number"`
				} `json:"line_items"`
			} `json:"order"`
		} `json:"result"`
		Conflicts    []struct{ PartNumber string } `json:"conflicts"`
		NewParts     int                           `json:"new_parts"`
		PreviewToken string                        `json:"preview_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("decode parse response: %v", err)
	}
	if !parsed.Result.Success || parsed.Result.Order.SONumber != "4412" {
		t.Fatalf("parse result = %+v", parsed.Result)
	}
	if len(parsed.Result.Order.LineItems) != 2 {
		t.Fatalf("line items = %d, want 2", len(parsed.Result.Order.LineItems))
	}
	if len(parsed.Conflicts) != 1 || parsed.NewParts != 1 {
		t.Errorf("conflicts = %d new = %d, want 1 and 1", len(parsed.Conflicts), parsed.NewParts)
	}
	if parsed.PreviewToken == "" {
		t.Fatal("missing preview token")
	}

	rec = postJSON(t, e, "/api/imports/commit", map[string]interface{}{
		"preview_token":  parsed.PreviewToken,
		"resolutions":    map[string]string{"P-100": "update"},
		"save_new_parts": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("commit status = %d, body %s", rec.Code, rec.Body.String())
	}
	var committed struct {
		SONumber     string `json:"so_number"`
		OrderID      uint   `json:"order_id"`
		ItemsCreated int    `json:"items_created"`
		SavedParts   int    `json:"saved_parts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &committed); err != nil {
		t.Fatalf("decode commit response: %v", err)
	}
	if committed.SONumber != "4412" || committed.ItemsCreated != 2 || committed.SavedParts != 1 {
		t.Errorf("commit response = %+v", committed)
	}

	var order entity.Order
	if err := db.Preload("LineItems").First(&order, "so_number = ?", "4412").Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if len(order.LineItems) != 2 {
		t.Errorf("stored line items = %d, want 2", len(order.LineItems))
	}
	var part catalogEntity.PartsCatalogItem
	db.First(&part, "part_number = ?", "P-100")
	if part.DefaultLocation != "B7" {
		t.Errorf("resolved location = %q, want B7", part.DefaultLocation)
	}

	// The token is single use.
	rec = postJSON(t, e, "/api/imports/commit", map[string]interface{}{
		"preview_token": parsed.PreviewToken,
	})
	if rec.Code != http.StatusGone {
		t.Errorf("reused token status = %d, want 410", rec.Code)
	}
}

func TestImportsAPI_ParseFailureAndUnknownToken(t *testing.T) {
	db := apiDB(t)
	e := echo.New()
	imports.RegisterImportRoutes(e.Group("/api"), db)

	rec := uploadCSV(t, e, "notes.csv", "just,some,text\nwith,no,headers")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("unparseable upload status = %d, want 422", rec.Code)
	}

	rec = postJSON(t, e, "/api/imports/commit", map[string]interface{}{
		"preview_token": "does-not-exist",
	})
	if rec.Code != http.StatusGone {
		t.Errorf("unknown token status = %d, want 410", rec.Code)
	}
}
