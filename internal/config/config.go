package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Config holds the settings shared by the daemon and the CLI.
type Config struct {
	// GRPCAddress is the address the daemon listens on and the CLI dials.
	GRPCAddress string `yaml:"grpc_addr"`
	// HTTPAddress is the listen address of the HTTP surface. Empty disables it.
	HTTPAddress string `yaml:"http_addr,omitempty"`
	// LogLevel is the minimum level written by the daemon.
	LogLevel string `yaml:"log_level,omitempty"`
	// LogFile receives a copy of the daemon log when set.
	LogFile string `yaml:"log_file,omitempty"`
	// Timeout bounds RPC calls and graceful shutdown.
	Timeout time.Duration `yaml:"timeout"`
	// WebhookURL receives alarm actions as JSON when set.
	WebhookURL string `yaml:"webhook_url,omitempty"`
	// ClockCheckInterval is how often the wall clock is checked for jumps.
	ClockCheckInterval time.Duration `yaml:"clock_check_interval,omitempty"`
	// Storage selects where alarm records are kept.
	Storage Storage `yaml:"storage"`
	// Prefs are the global alarm durations and presentation settings.
	Prefs alarm.Prefs `yaml:"prefs"`
}

// Storage selects the repository implementation.
type Storage struct {
	// Driver is either DriverSQLite or DriverFile.
	Driver string `yaml:"driver"`
	// Path is the database or YAML file location.
	Path string `yaml:"path"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"

	// DefaultGRPCAddress is used when no gRPC address is configured.
	DefaultGRPCAddress = "127.0.0.1:50151"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultClockCheckInterval is the default wall clock polling period.
	DefaultClockCheckInterval = 10 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// DriverSQLite stores alarms in a SQLite database.
	DriverSQLite = "sqlite"
	// DriverFile stores alarms in a YAML file.
	DriverFile = "file"

	// DefaultSQLitePath is the default database location.
	DefaultSQLitePath = "alarm-clock.db"
	// DefaultFilePath is the default YAML store location.
	DefaultFilePath = "alarm-clock-alarms.yaml"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errGRPCAddressRequired is returned when the gRPC address is missing.
	errGRPCAddressRequired = errors.New("grpc address must be provided")
	// errUnknownDriver is returned for unsupported storage drivers.
	errUnknownDriver = errors.New("unknown storage driver")
	// errUnknownLogLevel is returned for unparsable log levels.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Default returns a configuration with every optional field filled in.
func Default() *Config {
	return &Config{
		GRPCAddress:        DefaultGRPCAddress,
		LogLevel:           "info",
		Timeout:            DefaultTimeout,
		ClockCheckInterval: DefaultClockCheckInterval,
		Storage: Storage{
			Driver: DriverSQLite,
			Path:   DefaultSQLitePath,
		},
		Prefs: alarm.DefaultPrefs(),
	}
}

// Load reads configuration from the provided path on top of Default and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and formats, filling defaults where empty.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.GRPCAddress == "" {
		return errGRPCAddressRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.GRPCAddress); err != nil {
		return fmt.Errorf("invalid grpc address: %w", err)
	}

	if cfg.HTTPAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", cfg.HTTPAddress); err != nil {
			return fmt.Errorf("invalid http address: %w", err)
		}
	}

	if cfg.LogLevel != "" {
		if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
			return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
		}
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.ClockCheckInterval <= 0 {
		cfg.ClockCheckInterval = DefaultClockCheckInterval
	}

	if err := validateStorage(&cfg.Storage); err != nil {
		return err
	}

	if err := cfg.Prefs.Validate(); err != nil {
		return fmt.Errorf("invalid prefs: %w", err)
	}

	if cfg.WebhookURL == "" {
		return nil
	}

	if _, err := url.ParseRequestURI(cfg.WebhookURL); err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}

	return nil
}

func validateStorage(storage *Storage) error {
	switch storage.Driver {
	case "", DriverSQLite:
		storage.Driver = DriverSQLite
		if storage.Path == "" {
			storage.Path = DefaultSQLitePath
		}
	case DriverFile:
		if storage.Path == "" {
			storage.Path = DefaultFilePath
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownDriver, storage.Driver)
	}

	return nil
}
