package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-orders/database"
	"github.com/yeremiapane/restaurant-orders/utils"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// InitDB opens the database selected by DB_DRIVER (mysql by default).
//
// mysql reads DB_DSN, or builds one from DB_HOST, DB_PORT, DB_USER, DB_PASSWORD and DB_NAME.
// sqlite reads SQLITE_PATH (default restaurant.db).
func InitDB() (*gorm.DB, error) {
	driver := strings.ToLower(getEnv("DB_DRIVER", DriverMySQL))
	logLevel := logger.Warn
	if os.Getenv("DB_DEBUG") == "true" {
		logLevel = logger.Info
	}

	switch driver {
	case DriverSQLite:
		path := getEnv("SQLITE_PATH", "restaurant.db")
		utils.InfoLogger.Printf("Opening sqlite database %s", path)
		return database.OpenSQLite(path, logLevel)
	case DriverMySQL:
		return openMySQL(mysqlDSN(), logLevel)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func mysqlDSN() string {
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		getEnv("DB_USER", "root"),
		os.Getenv("DB_PASSWORD"),
		getEnv("DB_HOST", "127.0.0.1"),
		getEnv("DB_PORT", "3306"),
		getEnv("DB_NAME", "restaurant"),
	)
}

func openMySQL(dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("mysql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	utils.InfoLogger.Println("Connected to mysql")
	return db, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
