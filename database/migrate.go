package database

import (
	"fmt"

	"github.com/yeremiapane/restaurant-orders/models"
	"github.com/yeremiapane/restaurant-orders/utils"
	"gorm.io/gorm"
)

// Migrate creates or updates the catalog and order tables.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Ingredient{},
		&models.Product{},
		&models.RecipeEntry{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if utils.InfoLogger != nil {
		utils.InfoLogger.Println("AutoMigrate completed.")
	}
	return nil
}
