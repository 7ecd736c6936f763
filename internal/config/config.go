package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	ServerAddress   string        `env:"SERVER_ADDRESS" envDefault:"0.0.0.0:8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"DEBUG"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	PostgresConfig
}

// NewConfig reads the environment, after loading a .env file from the
// working directory if there is one.
func NewConfig() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("config.NewConfig: %w", err)
	}

	config := &Config{}

	err := env.Parse(config)
	if err != nil {
		return config, fmt.Errorf("config.NewConfig: %w", err)
	}

	if err = config.PostgresConfig.validate(); err != nil {
		return config, fmt.Errorf("config.NewConfig: %w", err)
	}
	return config, nil
}

type PostgresConfig struct {
	Driver          string `env:"DB_DRIVER" envDefault:"postgres"`
	Conn            string `env:"POSTGRES_CONN" envDefault:"postgres://test:test@db:5432/test?sslmode=disable"`
	SQLitePath      string `env:"SQLITE_PATH" envDefault:"solicitations.db"`
	MaxOpenConns    int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	AutoMigrateUp   bool   `env:"AUTO_MIGRATE_UP" envDefault:"true"`
	AutoMigrateDown bool   `env:"AUTO_MIGRATE_DOWN" envDefault:"false"`
	// Empty means the migrations embedded in the binary.
	MigrationsURL string `env:"MIGRATIONS_URL"`
}

func NewPostgresConfig() (*PostgresConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("config.NewPostgresConfig: %w", err)
	}

	config := &PostgresConfig{}

	err := env.Parse(config)
	if err != nil {
		return config, fmt.Errorf("config.NewPostgresConfig: %w", err)
	}

	if err = config.validate(); err != nil {
		return config, fmt.Errorf("config.NewPostgresConfig: %w", err)
	}
	return config, nil
}

func (c *PostgresConfig) validate() error {
	switch c.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q, should be one of: %s, %s", c.Driver, DriverPostgres, DriverSQLite)
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 {
		return errors.New("connection pool sizes cannot be negative")
	}
	return nil
}

func loadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
