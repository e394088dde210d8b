package jobs

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"toolpick.GO/config"
	"toolpick.GO/cron"
	entity "toolpick.GO/model/entity"
	"toolpick.GO/service/importer"
	orderService "toolpick.GO/service/order"
)

func init() {
	cron.Register("import_watch", config.GetEnv("IMPORT_WATCH_SCHEDULE", "@every 15m"), ImportWatchJob)
}

// ImportWatchJob scans IMPORT_WATCH_DIR for dropped BOM files and commits
// them as orders. Handled files move to processed/, broken ones to failed/.
func ImportWatchJob(args ...string) {
	dir := config.GetEnv("IMPORT_WATCH_DIR", "")
	if dir == "" {
		log.Println("[import_watch] IMPORT_WATCH_DIR not set, skipping run")
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("[import_watch] read dir %s: %v", dir, err)
		return
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".xlsx", ".xls", ".csv":
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return
	}

	db, err := config.NewDB()
	if err != nil {
		log.Printf("[import_watch] db connect: %v", err)
		return
	}
	if err := entity.Migrate(db); err != nil {
		log.Printf("[import_watch] migrate: %v", err)
		return
	}
	svc := orderService.NewImportService(db)

	imported, failed, skipped := 0, 0, 0
	for _, name := range files {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[import_watch] read %s: %v", name, err)
			failed++
			moveTo(dir, name, "failed")
			continue
		}

		kind := importer.KindWorkbook
		if strings.HasSuffix(strings.ToLower(name), ".csv") {
			kind = importer.KindCSV
		}
		result := importer.ParseOrderFile(data, name, kind)
		if !result.Success {
			log.Printf("[import_watch] parse %s failed: %v", name, result.Errors)
			failed++
			moveTo(dir, name, "failed")
			continue
		}

		report, err := svc.Commit(result.Order)
		if err != nil {
			if strings.Contains(err.Error(), "already exists") {
				log.Printf("[import_watch] %s: SO %s already imported, skipping", name, result.Order.SONumber)
				skipped++
				moveTo(dir, name, "processed")
				continue
			}
			log.Printf("[import_watch] commit %s: %v", name, err)
			failed++
			moveTo(dir, name, "failed")
			continue
		}

		log.Printf("[import_watch] imported %s: SO %s, %d tools, %d items (%s)",
			name, report.SONumber, report.ToolsCreated, report.ItemsCreated, report.TotalTime)
		imported++
		moveTo(dir, name, "processed")
	}

	log.Printf("[import_watch] run done: %d imported, %d skipped, %d failed", imported, skipped, failed)
}

func moveTo(dir, name, sub string) {
	target := filepath.Join(dir, sub)
	if err := os.MkdirAll(target, 0o755); err != nil {
		log.Printf("[import_watch] mkdir %s: %v", target, err)
		return
	}
	if err := os.Rename(filepath.Join(dir, name), filepath.Join(target, name)); err != nil {
		log.Printf("[import_watch] move %s to %s: %v", name, sub, err)
	}
}
