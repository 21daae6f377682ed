package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Store drivers
const (
	StoreDriverSQLite = "sqlite"
	StoreDriverAPI    = "api"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Store    StoreConfig    `mapstructure:"store"`
	Receipts ReceiptsConfig `mapstructure:"receipts"`
	UI       UIConfig       `mapstructure:"ui"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	SessionSecret string        `mapstructure:"session_secret"`
	Mode          string        `mapstructure:"mode"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// StoreConfig selects where bills are read from and written to
type StoreConfig struct {
	Driver string    `mapstructure:"driver"`
	API    APIConfig `mapstructure:"api"`
}

// APIConfig holds the remote bills API settings
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ReceiptsConfig holds where uploaded receipts are kept and served
type ReceiptsConfig struct {
	Dir       string `mapstructure:"dir"`
	URLPrefix string `mapstructure:"url_prefix"`
}

// UIConfig holds view settings
type UIConfig struct {
	ModalWidth int `mapstructure:"modal_width"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load loads configuration from file and environment variables. A .env file
// next to the working directory is read first; an empty configPath uses
// defaults and environment only.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("billed")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.mode", "release")

	// Database defaults
	v.SetDefault("database.path", "data/billed.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrations_dir", "")

	// Store defaults
	v.SetDefault("store.driver", StoreDriverSQLite)
	v.SetDefault("store.api.timeout", 30*time.Second)

	// Receipts defaults
	v.SetDefault("receipts.dir", "data/receipts")
	v.SetDefault("receipts.url_prefix", "/receipts")

	v.SetDefault("ui.modal_width", 800)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) error {
	// Sensitive credentials from environment
	bindings := map[string]string{
		"store.api.token":       "BILLED_API_TOKEN",
		"store.api.base_url":    "BILLED_API_BASE_URL",
		"server.session_secret": "BILLED_SESSION_SECRET",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.SessionSecret == "" {
		return fmt.Errorf("server.session_secret is required")
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}

	switch c.Store.Driver {
	case StoreDriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite store")
		}
	case StoreDriverAPI:
		if c.Store.API.BaseURL == "" {
			return fmt.Errorf("store.api.base_url is required for the api store")
		}
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", StoreDriverSQLite, StoreDriverAPI, c.Store.Driver)
	}

	if c.Receipts.Dir == "" {
		return fmt.Errorf("receipts.dir is required")
	}
	if !strings.HasPrefix(c.Receipts.URLPrefix, "/") {
		return fmt.Errorf("receipts.url_prefix must start with /")
	}
	if c.UI.ModalWidth <= 0 {
		return fmt.Errorf("ui.modal_width must be positive")
	}

	return nil
}
