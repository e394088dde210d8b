package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"toolpick.GO/config"
	entity "toolpick.GO/model/entity"
	catalogRepo "toolpick.GO/model/repository/catalog"
	catalogService "toolpick.GO/service/catalog"
	"toolpick.GO/service/importer"
	orderService "toolpick.GO/service/order"
)

var (
	orderImportFile    string
	orderImportCommit  bool
	orderImportNewPart bool
)

var ordersImportCmd = &cobra.Command{
	Use:   "orders:import",
	Short: "Parse a BOM spreadsheet into an order, optionally committing it",
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(orderImportFile)
		if err != nil {
			fmt.Printf("Failed to read file: %v\n", err)
			return
		}

		kind := importer.KindWorkbook
		if strings.HasSuffix(strings.ToLower(orderImportFile), ".csv") {
			kind = importer.KindCSV
		}
		result := importer.ParseOrderFile(data, orderImportFile, kind)

		for _, w := range result.Warnings {
			fmt.Printf("  [warn] %s\n", w)
		}
		if !result.Success {
			for _, e := range result.Errors {
				fmt.Printf("  [error] %s\n", e)
			}
			fmt.Println("Parse failed.")
			os.Exit(1)
		}

		order := result.Order
		fmt.Printf(`
=== Parse Report ===
SO number:      %s
Customer:       %s
Tools:          %d
Line items:     %d
====================
`, order.SONumber, order.CustomerName, len(order.Tools), len(order.LineItems))

		if !orderImportCommit {
			fmt.Println("Dry run (use --commit to persist).")
			return
		}

		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			return
		}
		if err := entity.Migrate(db); err != nil {
			fmt.Printf("Schema migration failed: %v\n", err)
			return
		}

		repo := catalogRepo.NewCatalogRepository(db)
		catalog, err := repo.FetchAll()
		if err != nil {
			fmt.Printf("Catalog fetch failed: %v\n", err)
			return
		}
		reconciler := catalogService.NewReconciler(repo)
		conflicts := reconciler.CheckForConflicts(order.LineItems, catalog)
		for _, c := range conflicts {
			fmt.Printf("  [conflict] %s: catalog values kept\n", c.PartNumber)
		}

		savedParts := 0
		if orderImportNewPart {
			savedParts, err = reconciler.SaveNewParts(order.LineItems, catalog)
			if err != nil {
				fmt.Printf("Saving new parts failed: %v\n", err)
				return
			}
		}

		report, err := orderService.NewImportService(db).Commit(order)
		if err != nil {
			fmt.Printf("Import failed: %v\n", err)
			return
		}

		for _, w := range report.Warnings {
			fmt.Printf("  [warn] %s\n", w)
		}
		fmt.Printf(`
=== Import Report ===
SO number:      %s
Tools created:  %d
Items created:  %d
New parts:      %d
Total time:     %s
  - Processing: %s
  - DB insert:  %s
=====================
`, report.SONumber, report.ToolsCreated, report.ItemsCreated, savedParts,
			report.TotalTime.Round(time.Millisecond),
			report.ProcessTime.Round(time.Millisecond),
			report.DBTime.Round(time.Millisecond))
	},
}

func init() {
	ordersImportCmd.Flags().StringVarP(&orderImportFile, "file", "f", "", "BOM file to import (.xlsx, .xls or .csv)")
	ordersImportCmd.Flags().BoolVar(&orderImportCommit, "commit", false, "Persist the parsed order")
	ordersImportCmd.Flags().BoolVar(&orderImportNewPart, "save-new-parts", false, "Add unknown parts to the catalog")
	ordersImportCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(ordersImportCmd)
}
