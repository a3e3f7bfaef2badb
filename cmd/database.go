package cmd

import (
	"fmt"
	"time"

	"github.com/frahmantamala/procurement-inventory/internal"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const driver = "pgx"

// Database owns the single connection pool of the process. Repositories get
// the gorm view, reports and health checks the sqlx view; Close releases both.
type Database struct {
	SQL  *sqlx.DB
	Gorm *gorm.DB
}

func openDatabase(cfg internal.DatabaseConfig, debug bool) (*Database, error) {
	sqlDB, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	level := gormLogger.Warn
	if debug {
		level = gormLogger.Info
	}
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB.DB}), &gorm.Config{
		Logger:  gormLogger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return &Database{SQL: sqlDB, Gorm: gdb}, nil
}

func (d *Database) Close() error {
	return d.SQL.Close()
}
