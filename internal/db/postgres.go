package db

import (
	"fmt"
	"time"

	"mayday/coordinator/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/gorm"
)

// InitSQLX returns the sqlx handle used for read-only aggregate queries and
// health checks. Postgres gets its own lib/pq pool; SQLite shares the GORM
// connection because a second pool on the same file would contend for the lock.
func InitSQLX(cfg config.DatabaseConfig, orm *gorm.DB) (*sqlx.DB, error) {
	if cfg.URL == "" {
		sqlDB, err := orm.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql handle: %w", err)
		}
		return sqlx.NewDb(sqlDB, "sqlite3"), nil
	}

	var (
		db  *sqlx.DB
		err error
	)
	for i := 0; i < max(cfg.MaxRetries, 1); i++ {
		db, err = sqlx.Connect("postgres", cfg.URL)
		if err == nil {
			db.SetMaxOpenConns(10)
			db.SetConnMaxIdleTime(5 * time.Minute)
			return db, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("failed to connect to postgres (sqlx): %w", err)
}
