package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/krishnakath/dairyshop-backend/config"
	"github.com/krishnakath/dairyshop-backend/internal/app/model"
	"github.com/krishnakath/dairyshop-backend/internal/app/repository"
	"github.com/krishnakath/dairyshop-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Expected workbook layout, first sheet, header row included:
// Name | Category | Description | Price | Stock | ImageURL
const expectedColumns = 6

var validCategories = map[model.ProductCategory]bool{
	model.CategoryMilk:   true,
	model.CategoryCurd:   true,
	model.CategoryPaneer: true,
	model.CategoryButter: true,
	model.CategoryGhee:   true,
	model.CategoryCheese: true,
	model.CategorySweets: true,
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(products))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 100
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := db.GetDB().CreateInBatches(products, batchSize).Error; err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	// Keep the training corpus in step with the catalog so the offline
	// trainer picks up the new products on its next run.
	corpus := make([]model.MLProduct, 0, len(products))
	for _, p := range products {
		corpus = append(corpus, model.MLProduct{
			ProductID:   p.ID,
			ProductName: p.Name,
			Description: p.Description,
		})
	}
	mlRepo := repository.NewMLProductRepository(db.GetDB())
	if err := mlRepo.Upsert(corpus); err != nil {
		log.Fatal("Failed to upsert training corpus:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", len(products))
}

func readProductsFromXLSX(filePath string) ([]model.Product, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var products []model.Product
	seen := make(map[string]bool)
	skippedCount := 0
	invalidCategoryCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < expectedColumns {
			skippedCount++
			continue
		}

		name := strings.TrimSpace(row[0])
		category := model.ProductCategory(strings.ToLower(strings.TrimSpace(row[1])))
		description := strings.TrimSpace(row[2])
		priceStr := strings.TrimSpace(row[3])
		stockStr := strings.TrimSpace(row[4])
		imageURL := strings.TrimSpace(row[5])

		if name == "" || priceStr == "" {
			skippedCount++
			continue
		}

		if !validCategories[category] {
			invalidCategoryCount++
			skippedCount++
			continue
		}

		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price <= 0 {
			skippedCount++
			continue
		}

		stock := 0
		if stockStr != "" {
			stock, err = strconv.Atoi(stockStr)
			if err != nil || stock < 0 {
				skippedCount++
				continue
			}
		}

		// Product names are unique in the catalog, keep the first row.
		key := strings.ToLower(name)
		if seen[key] {
			skippedCount++
			continue
		}
		seen[key] = true

		products = append(products, model.Product{
			Name:          name,
			Category:      category,
			Description:   description,
			Price:         price,
			StockQuantity: stock,
			ImageURL:      imageURL,
		})

		if len(products)%100 == 0 {
			fmt.Printf("Processed %d products...\n", len(products))
		}
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid products: %d\n", len(products))
	fmt.Printf("  Skipped rows: %d\n", skippedCount)
	fmt.Printf("  Rows with unknown category: %d\n", invalidCategoryCount)

	return products, nil
}
