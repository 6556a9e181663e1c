package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "STOREFRONT_CONFIG_PATH"

	DefaultPath = "configs/config.yaml"
)

type Config struct {
	HTTP struct {
		Address             string   `yaml:"address" toml:"address"`
		AllowedOrigins      []string `yaml:"allowed_origins" toml:"allowed_origins"`
		ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds" toml:"read_timeout_seconds"`
		WriteTimeoutSeconds int      `yaml:"write_timeout_seconds" toml:"write_timeout_seconds"`
		RateLimitPerMinute  int      `yaml:"rate_limit_per_minute" toml:"rate_limit_per_minute"`
		RateLimitBurst      int      `yaml:"rate_limit_burst" toml:"rate_limit_burst"`
	} `yaml:"http" toml:"http"`

	Auth struct {
		JWTSecret   string `yaml:"jwt_secret" toml:"jwt_secret"`
		AdminAPIKey string `yaml:"admin_api_key" toml:"admin_api_key"`
	} `yaml:"auth" toml:"auth"`

	Database struct {
		Path string `yaml:"path" toml:"path"`
	} `yaml:"database" toml:"database"`

	Backup BackupConfig `yaml:"backup" toml:"backup"`

	Redis struct {
		Address         string `yaml:"address" toml:"address"`
		Password        string `yaml:"password" toml:"password"`
		DB              int    `yaml:"db" toml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds" toml:"cache_ttl_seconds"`
	} `yaml:"redis" toml:"redis"`

	Fleet struct {
		Path                 string `yaml:"path" toml:"path"`
		WatchIntervalSeconds int    `yaml:"watch_interval_seconds" toml:"watch_interval_seconds"`
	} `yaml:"fleet" toml:"fleet"`

	Sessions struct {
		TimeoutMinutes  int    `yaml:"timeout_minutes" toml:"timeout_minutes"`
		CleanupSchedule string `yaml:"cleanup_schedule" toml:"cleanup_schedule"`
	} `yaml:"sessions" toml:"sessions"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port" toml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled" toml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port" toml:"prometheus_port"`
	} `yaml:"monitoring" toml:"monitoring"`

	Telegram TelegramConfig `yaml:"telegram" toml:"telegram"`
	Email    EmailConfig    `yaml:"email" toml:"email"`
	AMQP     AMQPConfig     `yaml:"amqp" toml:"amqp"`
	Google   GoogleConfig   `yaml:"google" toml:"google"`
	Export   ExportConfig   `yaml:"export" toml:"export"`

	Reminders struct {
		Enabled  bool   `yaml:"enabled" toml:"enabled"`
		Schedule string `yaml:"schedule" toml:"schedule"`
	} `yaml:"reminders" toml:"reminders"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled" toml:"enabled"`
	Schedule      string `yaml:"schedule" toml:"schedule"`
	StoragePath   string `yaml:"storage_path" toml:"storage_path"`
	RetentionDays int    `yaml:"retention_days" toml:"retention_days"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	BotToken string `yaml:"bot_token" toml:"bot_token"`
	ChatID   int64  `yaml:"chat_id" toml:"chat_id"`
	Debug    bool   `yaml:"debug" toml:"debug"`
}

type EmailConfig struct {
	Enabled      bool   `yaml:"enabled" toml:"enabled"`
	APIKey       string `yaml:"api_key" toml:"api_key"`
	FromAddress  string `yaml:"from_address" toml:"from_address"`
	FromName     string `yaml:"from_name" toml:"from_name"`
	AdminAddress string `yaml:"admin_address" toml:"admin_address"`
}

type AMQPConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	URL     string `yaml:"url" toml:"url"`
	Queue   string `yaml:"queue" toml:"queue"`
}

type GoogleConfig struct {
	Enabled         bool   `yaml:"enabled" toml:"enabled"`
	CredentialsFile string `yaml:"credentials_file" toml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id" toml:"spreadsheet_id"`
	SheetName       string `yaml:"sheet_name" toml:"sheet_name"`
}

type ExportConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	Schedule string `yaml:"schedule" toml:"schedule"`
	Path     string `yaml:"path" toml:"path"`
}

// Load reads the config file. An empty path falls back to STOREFRONT_CONFIG_PATH
// and then to configs/config.yaml. Files ending in .toml are decoded as TOML.
// A .env file next to the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err = toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parse toml config: %w", err)
		}
	} else if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml config: %w", err)
	}

	cfg.applyDefaults()

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.RateLimitPerMinute <= 0 {
		c.HTTP.RateLimitPerMinute = 10
	}
	if c.HTTP.RateLimitBurst <= 0 {
		c.HTTP.RateLimitBurst = 3
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/rentacar.db"
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "data/backups"
	}
	if c.Backup.Schedule == "" {
		c.Backup.Schedule = "0 3 * * *"
	}
	if c.Fleet.Path == "" {
		c.Fleet.Path = "configs/fleet.yaml"
	}
	if c.Sessions.CleanupSchedule == "" {
		c.Sessions.CleanupSchedule = "*/5 * * * *"
	}
	if c.Export.Schedule == "" {
		c.Export.Schedule = "0 4 1 * *"
	}
	if c.Export.Path == "" {
		c.Export.Path = "data/exports"
	}
	if c.Reminders.Schedule == "" {
		c.Reminders.Schedule = "0 9 * * *"
	}
	if c.AMQP.Queue == "" {
		c.AMQP.Queue = "reservations"
	}
	if c.Google.SheetName == "" {
		c.Google.SheetName = "Reservations"
	}
}

func (c *Config) ReadTimeout() time.Duration {
	if c.HTTP.ReadTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.HTTP.ReadTimeoutSeconds) * time.Second
}

func (c *Config) WriteTimeout() time.Duration {
	if c.HTTP.WriteTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.HTTP.WriteTimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

func (c *Config) SessionTimeout() time.Duration {
	if c.Sessions.TimeoutMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Sessions.TimeoutMinutes) * time.Minute
}

func (c *Config) FleetWatchInterval() time.Duration {
	if c.Fleet.WatchIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Fleet.WatchIntervalSeconds) * time.Second
}
