package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"beo-inventory-backend/config"
	"beo-inventory-backend/internal/model"
)

// Init initializes the database connection, runs migrations and seeds reference data.
func Init(cfg *config.Config) (*gorm.DB, error) {
	db, err := Open(&cfg.Database)
	if err != nil {
		return nil, err
	}

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.Database.EnforceSingleActiveLoan {
		log.Println("Applying single-active-loan index...")
		if err := ApplyConstraints(db); err != nil {
			return nil, err
		}
	}

	if err := Seed(db, cfg.Lending); err != nil {
		return nil, err
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Open connects to the configured driver and applies pool settings.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	logLevel := logger.Warn
	if cfg.LogSQL {
		logLevel = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}
	return db, nil
}

// Migrate creates or updates every table, including foreign keys,
// unique indexes and the status check constraints declared on the models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

// ApplyConstraints adds the partial unique index that rejects a second
// active loan for the same item at the storage level.
func ApplyConstraints(db *gorm.DB) error {
	ddls := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_loans_one_active_per_item ON loans (item_id) WHERE status = 'active';",
		"CREATE INDEX IF NOT EXISTS idx_loans_active_expected_return ON loans (expected_return_date) WHERE status = 'active';",
	}
	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}

// Seed inserts the default categories and the default location if missing.
func Seed(db *gorm.DB, cfg config.LendingConfig) error {
	if len(cfg.SeedCategories) > 0 {
		categories := make([]model.Category, 0, len(cfg.SeedCategories))
		for _, name := range cfg.SeedCategories {
			categories = append(categories, model.Category{Name: name, Active: true})
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&categories).Error; err != nil {
			return fmt.Errorf("seed categories failed: %w", err)
		}
	}

	if cfg.DefaultLocation != "" {
		loc := model.Location{Name: cfg.DefaultLocation, Active: true}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&loc).Error; err != nil {
			return fmt.Errorf("seed default location failed: %w", err)
		}
	}
	return nil
}
