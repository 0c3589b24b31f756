package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/vastrakart/vastrakart-backend/config"
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/internal/app/repository"
	"github.com/vastrakart/vastrakart-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Imports a catalog workbook. One row per variant; rows sharing the same
// brand + product name collapse into one product with multiple size variants.
//
// Expected columns:
//   0 brand | 1 product name | 2 category | 3 pattern | 4 description
//   5 gst rate | 6 image url | 7 size | 8 color | 9 price | 10 strike price
//   11 weight grams | 12 stock
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

	productRepo := repository.NewProductRepository(db.GetDB())

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

	imported := 0
	for i := range products {
		if err := productRepo.Create(&products[i]); err != nil {
			log.Printf("Failed to import %q: %v", products[i].ProductName, err)
			continue
		}
		imported++
		if imported%100 == 0 {
			fmt.Printf("Imported %d products...\n", imported)
		}
	}

	fmt.Println("Import completed!")
	fmt.Printf("Total products imported: %d\n", imported)
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
	productIndex := make(map[string]int) // brand|name -> index into products
	skippedCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 13 {
			skippedCount++
			continue
		}

		brand := strings.TrimSpace(row[0])
		name := strings.TrimSpace(row[1])
		category := strings.TrimSpace(strings.ToLower(row[2]))
		pattern := strings.TrimSpace(row[3])
		description := strings.TrimSpace(row[4])
		gstRateStr := strings.TrimSpace(row[5])
		imageURL := strings.TrimSpace(row[6])
		size := strings.TrimSpace(strings.ToUpper(row[7]))
		color := strings.TrimSpace(row[8])
		priceStr := strings.TrimSpace(row[9])
		strikePriceStr := strings.TrimSpace(row[10])
		weightStr := strings.TrimSpace(row[11])
		stockStr := strings.TrimSpace(row[12])

		if brand == "" || name == "" || category == "" || size == "" {
			skippedCount++
			continue
		}

		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price <= 0 {
			skippedCount++
			continue
		}

		gstRate, _ := strconv.ParseFloat(gstRateStr, 64)
		strikePrice, _ := strconv.ParseFloat(strikePriceStr, 64)
		weightGrams, _ := strconv.Atoi(weightStr)
		stock, _ := strconv.Atoi(stockStr)
		if stock < 0 {
			stock = 0
		}

		variant := model.ProductVariant{
			Size:          size,
			Color:         color,
			Price:         price,
			StrikePrice:   strikePrice,
			WeightGrams:   weightGrams,
			StockQuantity: stock,
		}

		key := fmt.Sprintf("%s|%s", brand, name)
		if idx, exists := productIndex[key]; exists {
			products[idx].Variants = append(products[idx].Variants, variant)
			continue
		}

		products = append(products, model.Product{
			BrandName:   brand,
			ProductName: name,
			Description: description,
			Pattern:     pattern,
			Category:    model.ProductCategory(category),
			GSTRate:     gstRate,
			ImageURL:    imageURL,
			Variants:    []model.ProductVariant{variant},
		})
		productIndex[key] = len(products) - 1
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Products: %d\n", len(products))
	fmt.Printf("  Skipped rows: %d\n", skippedCount)

	return products, nil
}
