// Package config reads the service configuration from environment variables.
//
// Every variable carries the CONTACTS_ prefix, e.g. CONTACTS_PORT or CONTACTS_DB_PATH. A .env file
// in the working directory is loaded first if present.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Prefix is the common prefix of all environment variables read by this package.
const Prefix = "CONTACTS_"

// Config is the root configuration of the service and its tools.
type Config struct {
	Port        int      `koanf:"port"         validate:"required,min=1,max=65535"`
	HttpLogging bool     `koanf:"http_logging"`
	LogLevel    string   `koanf:"log_level"    validate:"required,oneof=trace debug info warn error"`
	LogPretty   bool     `koanf:"log_pretty"`
	CorsOrigins []string `koanf:"cors_origins" validate:"dive,url"`
	Database    Database `koanf:",squash"`
}

// Database holds the connection parameters. The sqlite3 driver only needs DBPath, the mysql
// driver uses host, user, password and name.
type Database struct {
	Driver       string `koanf:"db_driver"         validate:"required,oneof=sqlite3 mysql"`
	Path         string `koanf:"db_path"           validate:"required_if=Driver sqlite3"`
	Host         string `koanf:"db_host"           validate:"required_if=Driver mysql"`
	User         string `koanf:"db_user"           validate:"required_if=Driver mysql"`
	Password     string `koanf:"db_password"`
	Name         string `koanf:"db_name"           validate:"required_if=Driver mysql"`
	MaxOpenConns int    `koanf:"db_max_open_conns" validate:"min=1"`
}

// defaults are applied before the environment is read.
var defaults = map[string]any{
	"port":              8080,
	"http_logging":      true,
	"log_level":         "info",
	"log_pretty":        false,
	"db_driver":         "sqlite3",
	"db_path":           "contatos.db",
	"db_name":           "contacts",
	"db_max_open_conns": 8,
}

// Load reads the configuration from the process environment, applies defaults for missing values
// and validates the result.
//
// Usage example on the command line:
// > CONTACTS_PORT=8080 CONTACTS_DB_PATH=/var/lib/contacts/contatos.db go run ./cmd/service
func Load() (*Config, error) {
	k := koanf.New(".")
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	err := k.Load(env.Provider(Prefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, Prefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	// Lists arrive as a single comma-separated string.
	if raw := k.String("cors_origins"); raw != "" {
		var origins []string
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		if err := k.Set("cors_origins", origins); err != nil {
			return nil, fmt.Errorf("set cors_origins: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// DSN returns the data source name for the configured driver.
func (d Database) DSN() string {
	if d.Driver == "mysql" {
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&clientFoundRows=true", d.User, d.Password, d.Host, d.Name)
	}
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", d.Path)
}
