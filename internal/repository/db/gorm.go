package db

import (
	"fmt"
	"log/slog"
	"solicitations/internal/config"

	sloggorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open returns a gorm session for the configured driver. Postgres sessions
// run on top of a lib/pq pool so the same *sql.DB can be handed to the
// migrator.
func Open(cfg *config.PostgresConfig, log *slog.Logger) (*gorm.DB, error) {
	gormCfg := NewGormConfig(log.Handler())

	switch cfg.Driver {
	case config.DriverPostgres:
		sqlDB, err := NewPostgresDB(cfg, log)
		if err != nil {
			return nil, fmt.Errorf("db.Open: %w", err)
		}

		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormCfg)
		if err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("db.Open: %w", err)
		}
		return db, nil

	case config.DriverSQLite:
		log.Info("opening sqlite", slog.String("path", cfg.SQLitePath))
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("db.Open: %w", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("db.Open: %w", err)
		}
		// sqlite serializes writers anyway
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	return nil, fmt.Errorf("db.Open: unsupported driver %q", cfg.Driver)
}

func NewGormConfig(h slog.Handler) *gorm.Config {
	return &gorm.Config{
		Logger: sloggorm.New(sloggorm.WithHandler(h)),
	}
}
