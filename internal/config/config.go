package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DriverBigQuery = "bigquery"
	DriverPostgres = "postgres"

	defaultPort            = 8080
	defaultShutdownTimeout = 30 * time.Second
)

// Config contains runtime configuration required by the relay.
// It is loaded once at startup and never mutated afterwards.
type Config struct {
	DatasetID    string
	ProjectID    string
	TableID      string
	SignatureKey string
	Port         int

	WarehouseDriver string
	DBURL           string // only used by the postgres driver

	ShutdownTimeout time.Duration
	LogLevel        string
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads required values from environment variables.
// DATASET, PROJECT_ID, TABLE and SIGNATURE are required; everything else has a default.
func Load() (Config, error) {
	cfg := Config{
		DatasetID:       env("DATASET"),
		ProjectID:       env("PROJECT_ID"),
		TableID:         env("TABLE"),
		SignatureKey:    os.Getenv("SIGNATURE"),
		Port:            defaultPort,
		WarehouseDriver: strings.ToLower(env("WAREHOUSE_DRIVER")),
		DBURL:           env("DB_URL"),
		ShutdownTimeout: defaultShutdownTimeout,
		LogLevel:        strings.ToLower(env("LOG_LEVEL")),
	}

	if cfg.WarehouseDriver == "" {
		cfg.WarehouseDriver = DriverBigQuery
	}
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "warning":
		cfg.LogLevel = "warn"
	}

	if raw := env("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port < 1 || port > 65535 {
			return Config{}, errors.Errorf("PORT must be an integer between 1 and 65535, got %q", raw)
		}
		cfg.Port = port
	}

	if raw := env("SHUTDOWN_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, errors.Errorf("SHUTDOWN_TIMEOUT must be a positive duration, got %q", raw)
		}
		cfg.ShutdownTimeout = d
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var missing []string
	if c.DatasetID == "" {
		missing = append(missing, "DATASET")
	}
	if c.ProjectID == "" {
		missing = append(missing, "PROJECT_ID")
	}
	if c.TableID == "" {
		missing = append(missing, "TABLE")
	}
	if c.SignatureKey == "" {
		missing = append(missing, "SIGNATURE")
	}
	if c.WarehouseDriver == DriverPostgres && c.DBURL == "" {
		missing = append(missing, "DB_URL")
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required env: %s", strings.Join(missing, ", "))
	}

	switch c.WarehouseDriver {
	case DriverBigQuery, DriverPostgres:
	default:
		return errors.Errorf("WAREHOUSE_DRIVER must be %q or %q, got %q", DriverBigQuery, DriverPostgres, c.WarehouseDriver)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
