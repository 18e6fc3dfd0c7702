package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-orders/database"
	"github.com/yeremiapane/restaurant-orders/models"
)

type kitchen struct {
	db      *gorm.DB
	bun     models.Ingredient
	cheddar models.Ingredient
	bacon   models.Ingredient
	tomato  models.Ingredient
	burger  models.Product
	xbacon  models.Product
	salad   models.Product
	water   models.Product
}

type stockLevels struct {
	bun, cheddar, bacon, tomato int
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(database.MemoryDSN(uuid.NewString()), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// setupKitchen seeds a small menu. X-Burger uses bun 1 and cheddar 2, X-Bacon
// adds bacon 3, X-Salada uses bun 1, cheddar 1 and tomato 2. Water has no recipe.
func setupKitchen(t *testing.T, stock stockLevels) *kitchen {
	t.Helper()
	db := setupTestDB(t)
	k := &kitchen{db: db}

	k.bun = models.Ingredient{Name: "Bun", StockQuantity: stock.bun}
	k.cheddar = models.Ingredient{Name: "Cheddar", StockQuantity: stock.cheddar}
	k.bacon = models.Ingredient{Name: "Bacon", StockQuantity: stock.bacon}
	k.tomato = models.Ingredient{Name: "Tomato", StockQuantity: stock.tomato}
	for _, ing := range []*models.Ingredient{&k.bun, &k.cheddar, &k.bacon, &k.tomato} {
		require.NoError(t, db.Create(ing).Error)
	}

	k.burger = models.Product{Name: "X-Burger", Price: decimal.RequireFromString("15.00"), Category: "Burgers", Available: true}
	k.xbacon = models.Product{Name: "X-Bacon", Price: decimal.RequireFromString("18.50"), Category: "Burgers", Available: true}
	k.salad = models.Product{Name: "X-Salada", Price: decimal.RequireFromString("16.00"), Category: "Burgers", Available: true}
	k.water = models.Product{Name: "Water", Price: decimal.RequireFromString("3.00"), Category: "Drinks", Available: true}
	for _, p := range []*models.Product{&k.burger, &k.xbacon, &k.salad, &k.water} {
		require.NoError(t, db.Create(p).Error)
	}

	recipes := []models.RecipeEntry{
		{ProductID: k.burger.ID, IngredientID: k.bun.ID, QuantityNeeded: 1},
		{ProductID: k.burger.ID, IngredientID: k.cheddar.ID, QuantityNeeded: 2},
		{ProductID: k.xbacon.ID, IngredientID: k.bun.ID, QuantityNeeded: 1},
		{ProductID: k.xbacon.ID, IngredientID: k.cheddar.ID, QuantityNeeded: 2},
		{ProductID: k.xbacon.ID, IngredientID: k.bacon.ID, QuantityNeeded: 3},
		{ProductID: k.salad.ID, IngredientID: k.bun.ID, QuantityNeeded: 1},
		{ProductID: k.salad.ID, IngredientID: k.cheddar.ID, QuantityNeeded: 1},
		{ProductID: k.salad.ID, IngredientID: k.tomato.ID, QuantityNeeded: 2},
	}
	require.NoError(t, db.Create(&recipes).Error)
	return k
}

func (k *kitchen) stock(t *testing.T) stockLevels {
	t.Helper()
	read := func(id uint) int {
		var ing models.Ingredient
		require.NoError(t, k.db.First(&ing, id).Error)
		return ing.StockQuantity
	}
	return stockLevels{
		bun:     read(k.bun.ID),
		cheddar: read(k.cheddar.ID),
		bacon:   read(k.bacon.ID),
		tomato:  read(k.tomato.ID),
	}
}

func (k *kitchen) orderCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, k.db.Model(&models.Order{}).Count(&count).Error)
	return count
}
