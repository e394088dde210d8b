package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"toolpick.GO/config"
	entity "toolpick.GO/model/entity"
	inventoryEntity "toolpick.GO/model/entity/inventory"
	inventoryRepo "toolpick.GO/model/repository/inventory"
	"toolpick.GO/service/importer"
)

var inventoryImportFile string

var inventoryImportCmd = &cobra.Command{
	Use:   "inventory:import",
	Short: "Replace the inventory snapshot from a stock workbook",
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(inventoryImportFile)
		if err != nil {
			fmt.Printf("Failed to read file: %v\n", err)
			return
		}

		result := importer.ParseInventoryFile(data)
		if !result.Success {
			for _, e := range result.Errors {
				fmt.Printf("  [error] %s\n", e)
			}
			os.Exit(1)
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
		repo, err := inventoryRepo.NewInventoryRepository(db)
		if err != nil {
			fmt.Printf("Repository init failed: %v\n", err)
			return
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
			fmt.Printf("Snapshot replace failed: %v\n", err)
			return
		}

		fmt.Printf("Inventory snapshot replaced: %d records read, %d unique parts stored.\n",
			result.TotalRecords, inserted)
	},
}

func init() {
	inventoryImportCmd.Flags().StringVarP(&inventoryImportFile, "file", "f", "", "Inventory workbook (.xlsx)")
	inventoryImportCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(inventoryImportCmd)
}
