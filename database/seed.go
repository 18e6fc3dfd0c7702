package database

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-orders/models"
	"gorm.io/gorm"
)

type seedRecipe struct {
	product    string
	ingredient string
	quantity   int
}

var (
	seedIngredients = []models.Ingredient{
		{Name: "Pão de Hambúrguer", StockQuantity: 50},
		{Name: "Carne Bovina 150g", StockQuantity: 20},
		{Name: "Queijo Cheddar", StockQuantity: 100},
		{Name: "Bacon Fatiado", StockQuantity: 100},
		{Name: "Alface Americana", StockQuantity: 40},
		{Name: "Tomate", StockQuantity: 40},
		{Name: "Maionese Especial", StockQuantity: 200},
	}

	seedProducts = []models.Product{
		{Name: "X-Burger", Price: decimal.RequireFromString("15.00"), Category: "Hambúrgueres", Available: true},
		{Name: "X-Bacon", Price: decimal.RequireFromString("18.00"), Category: "Hambúrgueres", Available: true},
		{Name: "X-Salada", Price: decimal.RequireFromString("16.00"), Category: "Hambúrgueres", Available: true},
		{Name: "Coca-Cola 350ml", Price: decimal.RequireFromString("5.00"), Category: "Bebidas", Available: true},
		{Name: "Água Mineral", Price: decimal.RequireFromString("3.00"), Category: "Bebidas", Available: true},
	}

	seedRecipes = []seedRecipe{
		{"X-Burger", "Pão de Hambúrguer", 1},
		{"X-Burger", "Carne Bovina 150g", 1},
		{"X-Burger", "Queijo Cheddar", 2},

		{"X-Bacon", "Pão de Hambúrguer", 1},
		{"X-Bacon", "Carne Bovina 150g", 1},
		{"X-Bacon", "Queijo Cheddar", 2},
		{"X-Bacon", "Bacon Fatiado", 3},

		{"X-Salada", "Pão de Hambúrguer", 1},
		{"X-Salada", "Carne Bovina 150g", 1},
		{"X-Salada", "Queijo Cheddar", 1},
		{"X-Salada", "Alface Americana", 1},
		{"X-Salada", "Tomate", 2},
	}
)

// CatalogIsEmpty reports whether no product has been created yet.
func CatalogIsEmpty(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count products: %w", err)
	}
	return count == 0, nil
}

// SeedCatalog inserts the demo menu with its ingredients and recipes.
func SeedCatalog(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		ingredients := make([]models.Ingredient, len(seedIngredients))
		copy(ingredients, seedIngredients)
		if err := tx.Create(&ingredients).Error; err != nil {
			return fmt.Errorf("seed ingredients: %w", err)
		}

		products := make([]models.Product, len(seedProducts))
		copy(products, seedProducts)
		if err := tx.Create(&products).Error; err != nil {
			return fmt.Errorf("seed products: %w", err)
		}

		ingredientIDs := make(map[string]uint, len(ingredients))
		for _, i := range ingredients {
			ingredientIDs[i.Name] = i.ID
		}
		productIDs := make(map[string]uint, len(products))
		for _, p := range products {
			productIDs[p.Name] = p.ID
		}

		entries := make([]models.RecipeEntry, 0, len(seedRecipes))
		for _, r := range seedRecipes {
			entries = append(entries, models.RecipeEntry{
				ProductID:      productIDs[r.product],
				IngredientID:   ingredientIDs[r.ingredient],
				QuantityNeeded: r.quantity,
			})
		}
		if err := tx.Create(&entries).Error; err != nil {
			return fmt.Errorf("seed recipes: %w", err)
		}
		return nil
	})
}
