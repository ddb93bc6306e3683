// Package config provides application configuration loaded from defaults,
// an optional YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	App      AppConfig      `koanf:"app"`
	CORS     CORSConfig     `koanf:"cors"`
	Logging  LoggingConfig  `koanf:"logging"`
	Import   ImportConfig   `koanf:"import"`
	Assets   AssetsConfig   `koanf:"assets"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

// DatabaseConfig holds database connection settings.
// URL wins over the discrete fields when set; a "sqlite:" URL selects the
// embedded driver.
type DatabaseConfig struct {
	URL          string `koanf:"url"`
	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	User         string `koanf:"user"`
	Password     string `koanf:"password"`
	DBName       string `koanf:"name"`
	SSLMode      string `koanf:"sslmode"`
	Debug        bool   `koanf:"debug"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool `koanf:"dev"`
	Migrations bool `koanf:"migrations"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	Origins []string `koanf:"origins"`
}

// LoggingConfig controls the zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// ImportConfig bounds spreadsheet uploads.
type ImportConfig struct {
	MaxUploadMB int `koanf:"max_upload_mb"`
	RateLimit   int `koanf:"rate_limit"` // requests per minute per client IP, 0 disables
}

// AssetsConfig locates downloadable files.
type AssetsConfig struct {
	DashboardPath string `koanf:"dashboard_path"`
}

// DSN returns the connection string handed to the driver.
// It returns URL as-is when set, otherwise a PostgreSQL key=value DSN.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

// MaxUploadBytes returns the upload cap in bytes.
func (i ImportConfig) MaxUploadBytes() int64 {
	return int64(i.MaxUploadMB) << 20
}

// Validate checks the values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Database.URL == "" && (c.Database.Port <= 0 || c.Database.Port > 65535) {
		errs = append(errs, fmt.Errorf("database.port out of range: %d", c.Database.Port))
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		errs = append(errs, errors.New("database connection limits must not be negative"))
	}
	if c.Import.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("import.max_upload_mb must be positive: %d", c.Import.MaxUploadMB))
	}
	if c.Import.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("import.rate_limit must not be negative: %d", c.Import.RateLimit))
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console: %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}
