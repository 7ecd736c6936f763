package repository

import (
	"errors"
	"fmt"
	"log/slog"

	"solicitations/internal/config"
	"solicitations/internal/models"
	"solicitations/internal/repository/db"

	"gorm.io/gorm"
)

type Repository struct {
	db  *gorm.DB
	cfg *config.PostgresConfig
	log *slog.Logger
}

// NewRepository uses the given session, or opens one from cfg when it is nil.
func NewRepository(gdb *gorm.DB, cfg *config.PostgresConfig, log *slog.Logger) (*Repository, error) {
	var err error

	repo := &Repository{
		db:  gdb,
		cfg: cfg,
		log: log,
	}

	if repo.log == nil {
		repo.log = slog.Default()
	}

	if repo.cfg == nil {
		repo.cfg, err = config.NewPostgresConfig()
		if err != nil {
			return nil, fmt.Errorf("repository.NewRepository: could not load postgres config: %w", err)
		}
	}

	if repo.db == nil {
		repo.db, err = db.Open(repo.cfg, repo.log)
		if err != nil {
			return nil, fmt.Errorf("repository.NewRepository: could not open db: %w", err)
		}
	}

	if repo.cfg.AutoMigrateUp {
		err = repo.MigrateUp()
		if err != nil {
			return nil, err
		}
	}

	return repo, nil
}

// MigrateUp applies the SQL migrations on postgres. Other dialects get their
// schema from the models.
func (repo *Repository) MigrateUp() error {
	if repo.db.Dialector.Name() != config.DriverPostgres {
		err := repo.db.AutoMigrate(models.Schema()...)
		if err != nil {
			return fmt.Errorf("repository.Repository.MigrateUp: %w", err)
		}
		return nil
	}

	sqlDB, err := repo.db.DB()
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateUp: %w", err)
	}

	err = db.MigrateUp(sqlDB, repo.cfg.MigrationsURL, repo.log)
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateUp: %w", err)
	}
	return nil
}

func (repo *Repository) MigrateDown() error {
	if repo.db.Dialector.Name() != config.DriverPostgres {
		schema := models.Schema()
		for i := len(schema) - 1; i >= 0; i-- {
			err := repo.db.Migrator().DropTable(schema[i])
			if err != nil {
				return fmt.Errorf("repository.Repository.MigrateDown: %w", err)
			}
		}
		return nil
	}

	sqlDB, err := repo.db.DB()
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateDown: %w", err)
	}

	err = db.MigrateDown(sqlDB, repo.cfg.MigrationsURL, repo.log)
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateDown: %w", err)
	}
	return nil
}

func (repo *Repository) Close() error {
	var migErr error
	if repo.cfg.AutoMigrateDown {
		migErr = repo.MigrateDown()
	}

	sqlDB, err := repo.db.DB()
	if err != nil {
		return errors.Join(migErr, err)
	}

	err = sqlDB.Close()
	return errors.Join(migErr, err)
}
