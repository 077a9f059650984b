package db

import (
	"fmt"
	"time"

	"mayday/coordinator/internal/config"
	"mayday/coordinator/internal/logging"
	gormModels "mayday/coordinator/internal/models/gorm"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitORM opens the GORM connection: Postgres when a DSN is configured,
// otherwise a local SQLite file. Connection attempts are retried.
func InitORM(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	}
	if cfg.LogQueries {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	driver := "sqlite"
	if cfg.URL != "" {
		dialector = postgres.Open(cfg.URL)
		driver = "postgres"
	} else {
		dialector = sqlite.Open(cfg.SQLitePath + "?_busy_timeout=5000")
	}

	retries := cfg.MaxRetries
	if retries < 1 {
		retries = 1
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < retries; i++ {
		db, err = gorm.Open(dialector, gormCfg)
		if err == nil {
			break
		}
		logging.Warn("Database not ready, retrying", "driver", driver, "attempt", i+1, "error", err.Error())
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// SQLite serialises writers; one connection avoids "database is locked".
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	logging.Info("Connected to database via GORM", "driver", driver)
	return db, nil
}

// AutoMigrate creates or updates every table the coordinator owns.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(gormModels.All()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}
