package db

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/detailops/backoffice/internal/models"
)

func ConnectAndMigrate() (*gorm.DB, error) {
	dsn := GetNormalizedDSN()
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check the environment configuration")
	}
	var db *gorm.DB
	var err error
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		fmt.Println("Retrying DB connection...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	// Basic connectivity test
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	// Always print masked DSN once for diagnostics (before migrations for visibility)
	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	fmt.Println("[DB] Using DSN:", masked)
	// If MIGRATIONS=1 (or true) we run sql migrations via golang-migrate; otherwise keep the AutoMigrate fallback (dev convenience)
	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if migErr := AutoMigrate(db); migErr != nil {
			return nil, migErr
		}
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"users", "customers", "invoices"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	// Seeding only when explicitly requested (e.g. development) via DB_SEED=1|true
	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		Seed(db)
	}
	return db, nil
}

// AutoMigrate creates or updates every table of the schema. Exported so tests
// can run it against an in-memory sqlite database.
func AutoMigrate(db *gorm.DB) error {
	modelsToMigrate := []interface{}{
		&models.User{}, &models.ShopSettings{}, &models.Customer{}, &models.Vehicle{}, &models.Booking{}, &models.Product{}, &models.ProductVariant{}, &models.Invoice{}, &models.LineItem{}, &models.Payment{}, &models.Expense{},
	}
	for _, m := range modelsToMigrate {
		if migErr := db.AutoMigrate(m); migErr != nil {
			fmt.Printf("[DB] AutoMigrate detailed error model=%T type=%T value=%#v\n", m, migErr, migErr)
			return fmt.Errorf("automigrate %T: %w", m, migErr)
		}
	}
	return nil
}

// Seed inserts the base detailing catalog if it is not present already.
func Seed(db *gorm.DB) {
	catalog := []models.Product{
		{
			Name:     "Exterior Wash",
			Category: "exterior",
			Variants: []models.ProductVariant{
				{SKU: "EXT-WASH-SEDAN", VariantName: "Sedan", Price: decimal.NewFromInt(25), Quantity: 0},
				{SKU: "EXT-WASH-SUV", VariantName: "SUV", Price: decimal.NewFromInt(35), Quantity: 0},
			},
		},
		{
			Name:     "Interior Detail",
			Category: "interior",
			Variants: []models.ProductVariant{
				{SKU: "INT-DET-SEDAN", VariantName: "Sedan", Price: decimal.NewFromInt(120), Quantity: 0},
				{SKU: "INT-DET-SUV", VariantName: "SUV", Price: decimal.NewFromInt(150), Quantity: 0},
			},
		},
		{
			Name:     "Ceramic Coating",
			Category: "protection",
			Variants: []models.ProductVariant{
				{SKU: "CERA-STD", VariantName: "Standard", Price: decimal.NewFromInt(500), Quantity: 0},
			},
		},
		{
			Name:     "Microfiber Towel Pack",
			Category: "supplies",
			Variants: []models.ProductVariant{
				{SKU: "SUP-TOWEL-6", VariantName: "6 pack", Price: decimal.NewFromInt(18), Quantity: 40},
			},
		},
	}
	for _, p := range catalog {
		var existing models.Product
		if err := db.Where("name = ?", p.Name).First(&existing).Error; err == gorm.ErrRecordNotFound {
			db.Create(&p)
		}
	}
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate file source.
func runSQLMigrations(dsn string) error {
	// golang-migrate expects DSN without gorm specific extras; reuse as-is (URL form supported)
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
