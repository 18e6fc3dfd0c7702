package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-orders/config"
	"github.com/yeremiapane/restaurant-orders/database"
	"github.com/yeremiapane/restaurant-orders/kds"
	"github.com/yeremiapane/restaurant-orders/repository"
	"github.com/yeremiapane/restaurant-orders/router"
	"github.com/yeremiapane/restaurant-orders/utils"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	utils.InitLogger(cfg.LogLevel)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize DB
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	seedIfNeeded(db, cfg)

	opts := router.Options{
		Hub:            kds.NewHub(utils.InfoLogger),
		RateLimit:      cfg.RateLimit,
		TrustedProxies: cfg.TrustedProxies,
		Log:            utils.InfoLogger,
	}
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		rdb, err := repository.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			utils.ErrorLogger.Errorf("Product cache disabled: %v", err)
		} else {
			defer rdb.Close()
			opts.Products = repository.NewCachedProductRepository(repository.NewProductRepository(db), rdb, cfg.ProductCacheTTL, utils.InfoLogger)
			utils.InfoLogger.Printf("Caching products in redis at %s", cfg.RedisAddr)
		}
	}

	r := router.SetupRouter(db, opts)

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

// seedIfNeeded loads the demo menu when asked to, or when a sqlite database
// starts out empty.
func seedIfNeeded(db *gorm.DB, cfg config.Server) {
	empty, err := database.CatalogIsEmpty(db)
	if err != nil {
		utils.ErrorLogger.Errorf("Skipping seed: %v", err)
		return
	}
	if !empty {
		return
	}
	if !cfg.SeedCatalog && db.Dialector.Name() != config.DriverSQLite {
		return
	}

	if err := database.SeedCatalog(db); err != nil {
		utils.ErrorLogger.Errorf("Seeding catalog failed: %v", err)
		return
	}
	utils.InfoLogger.Println("Seeded demo catalog")
}
