// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers a YAML file and PRHEALTH_* environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
)

// Supported values for DBDriver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Supported values for VelocityGrouping.
const (
	GroupingDetection   = "detection"
	GroupingPublication = "publication"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DBDriver is either sqlite or postgres.
	DBDriver string `koanf:"db_driver"`

	// DBDSN is the data source name. Empty selects a sqlite file under the XDG data home.
	DBDSN string `koanf:"db_dsn"`

	// QueryTimeoutMS bounds every read issued by the record store.
	QueryTimeoutMS int `koanf:"query_timeout_ms"`

	// Sequential disables concurrent sub-score computation.
	Sequential bool `koanf:"sequential"`

	// BatchWorkers bounds concurrency of batch scoring.
	BatchWorkers int `koanf:"batch_workers"`

	// TriggerQueueSize bounds the in-memory summary trigger queue.
	TriggerQueueSize int `koanf:"trigger_queue_size"`

	// TriggerWorkers sets the number of trigger delivery workers.
	TriggerWorkers int `koanf:"trigger_workers"`

	// TriggerDedupeSize sets the capacity of the per-day trigger deduper.
	TriggerDedupeSize int `koanf:"trigger_dedupe_size"`

	// SummaryWebhookURL receives summary triggers as JSON when set.
	SummaryWebhookURL string `koanf:"summary_webhook_url"`

	// TelegramToken and TelegramChatID enable the Telegram sink when both are set.
	TelegramToken  string `koanf:"telegram_token"`
	TelegramChatID int64  `koanf:"telegram_chat_id"`

	// VelocityGrouping selects the calendar-date key: detection or publication.
	VelocityGrouping string `koanf:"velocity_grouping"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		DBDriver:          DriverSQLite,
		QueryTimeoutMS:    5_000,
		BatchWorkers:      runtime.NumCPU() * 2,
		TriggerQueueSize:  1_000,
		TriggerWorkers:    4,
		TriggerDedupeSize: 10_000,
		VelocityGrouping:  GroupingDetection,
	}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("%w: db_dsn is required for postgres", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown db_driver %q", ErrInvalidConfig, c.DBDriver)
	}
	switch strings.ToLower(c.VelocityGrouping) {
	case GroupingDetection, GroupingPublication:
	default:
		return fmt.Errorf("%w: unknown velocity_grouping %q", ErrInvalidConfig, c.VelocityGrouping)
	}
	if c.QueryTimeoutMS < 0 {
		return fmt.Errorf("%w: query_timeout_ms must not be negative", ErrInvalidConfig)
	}
	if c.BatchWorkers <= 0 || c.TriggerWorkers <= 0 {
		return fmt.Errorf("%w: worker counts must be positive", ErrInvalidConfig)
	}
	if c.TriggerQueueSize <= 0 || c.TriggerDedupeSize <= 0 {
		return fmt.Errorf("%w: trigger queue and dedupe sizes must be positive", ErrInvalidConfig)
	}
	return nil
}

// DSN returns the configured data source name, defaulting sqlite to
// $XDG_DATA_HOME/prhealth/prhealth.db.
func (c *Config) DSN() (string, error) {
	if c.DBDSN != "" {
		return c.DBDSN, nil
	}
	if c.DBDriver != DriverSQLite {
		return "", fmt.Errorf("%w: db_dsn is required for %s", ErrInvalidConfig, c.DBDriver)
	}
	path, err := xdg.DataFile(filepath.Join("prhealth", "prhealth.db"))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	return path, nil
}
