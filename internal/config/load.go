package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// envKeys maps environment variable names (lowercased) to config keys.
// Variables not listed here are ignored.
var envKeys = map[string]string{
	"port":                 "server.port",
	"server_read_timeout":  "server.read_timeout",
	"server_write_timeout": "server.write_timeout",
	"server_idle_timeout":  "server.idle_timeout",

	"database_url":      "database.url",
	"db_host":           "database.host",
	"db_port":           "database.port",
	"db_user":           "database.user",
	"db_password":       "database.password",
	"db_name":           "database.name",
	"db_sslmode":        "database.sslmode",
	"db_debug":          "database.debug",
	"db_max_open_conns": "database.max_open_conns",
	"db_max_idle_conns": "database.max_idle_conns",

	"dev":        "app.dev",
	"migrations": "app.migrations",

	"cors_origins": "cors.origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"import_max_upload_mb": "import.max_upload_mb",
	"import_rate_limit":    "import.rate_limit",

	"dashboard_path": "assets.dashboard_path",
}

// sliceKeys hold comma-separated lists when they come from the environment.
var sliceKeys = []string{"cors.origins"}

// Default returns the configuration used when nothing overrides it.
// It uses sensible defaults for local development.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			User:         "viajante",
			Password:     "viajante",
			DBName:       "viajante",
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		App: AppConfig{
			Dev:        true,
			Migrations: true,
		},
		CORS: CORSConfig{
			Origins: []string{
				"http://localhost:5173",
				"http://localhost:5174",
				"http://localhost:3000",
				"http://localhost:8080",
				"http://localhost",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Import: ImportConfig{
			MaxUploadMB: 32,
			RateLimit:   30,
		},
		Assets: AssetsConfig{
			DashboardPath: "static/Analise_Viajante.pbix",
		},
	}
}

// Load reads configuration: defaults, then the config file (if any), then
// environment variables. Call godotenv.Load beforehand to honour a .env file.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := splitSliceKeys(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envTransform returns the config key for a known variable, or "" to skip it.
func envTransform(name string) string {
	return envKeys[strings.ToLower(name)]
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func splitSliceKeys(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(key, parts); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}
