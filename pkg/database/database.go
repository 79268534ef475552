package database

import (
	"fmt"

	"billing-service/internal/model"
	"billing-service/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open establishes the database connection described by cfg and runs
// migrations. The returned handle is owned by the caller; nothing in this
// package keeps a reference to it.
func Open(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Error
	if cfg.Server.Env == "development" {
		logLevel = logger.Info
	}
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DB.Driver {
	case "postgres":
		pgConfig := postgres.Config{
			DSN:                  cfg.DB.GetDSN(),
			PreferSimpleProtocol: true, // Disables implicit prepared statement usage
		}
		db, err = gorm.Open(postgres.New(pgConfig), gormConfig)
	default:
		// Local development fallback, mirrors the DATABASE_URL-or-sqlite
		// behavior of the deployment environment.
		db, err = gorm.Open(sqlite.Open(cfg.DB.Path), gormConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database object: %w", err)
	}

	// Set connection pool settings from config
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if cfg.DB.Driver != "postgres" {
		// BillItem rows must disappear with their Bill on sqlite too.
		_, _ = sqlDB.Exec("PRAGMA foreign_keys = ON;")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the three billing relations.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Bill{}, &model.BillItem{}, &model.Product{}); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}
