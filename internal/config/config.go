// Package config handles external configuration loading from YAML and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverSQLite    = "sqlite"
	DriverSurrealDB = "surrealdb"
)

const insecureSecret = "CHANGE_THIS_SECRET_IN_PRODUCTION"

// Config holds all application configuration
type Config struct {
	Debug     bool    `yaml:"debug"`
	PublicURL string  `yaml:"public_url"`
	Server    Server  `yaml:"server"`
	Store     Store   `yaml:"store"`
	JWT       JWT     `yaml:"jwt"`
	Admin     Admin   `yaml:"admin"`
	Logging   Logging `yaml:"logging"`
}

// Server holds HTTP server configuration
type Server struct {
	Port         int    `yaml:"port"`
	Host         string `yaml:"host"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`
}

// Store selects and configures the entity store backend
type Store struct {
	Driver    string    `yaml:"driver"`
	SQLite    SQLite    `yaml:"sqlite"`
	SurrealDB SurrealDB `yaml:"surrealdb"`
}

// SQLite holds the embedded database settings
type SQLite struct {
	Path string `yaml:"path"`
}

// SurrealDB holds the document database connection settings
type SurrealDB struct {
	URL       string `yaml:"url"`
	Namespace string `yaml:"namespace"`
	Database  string `yaml:"database"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
}

// JWT holds JWT configuration
type JWT struct {
	Secret          string `yaml:"secret"`
	Issuer          string `yaml:"issuer"`
	ExpirationHours int    `yaml:"expiration_hours"`
}

// Admin is the account created when the user table is empty
type Admin struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// Logging holds logger settings
type Logging struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the settings used when no file is present
func DefaultConfig() *Config {
	return &Config{
		PublicURL: "http://localhost:8080",
		Server: Server{
			Port:         8080,
			ReadTimeout:  15,
			WriteTimeout: 15,
		},
		Store: Store{
			Driver: DriverSQLite,
			SQLite: SQLite{Path: "data/campaignhub.db"},
			SurrealDB: SurrealDB{
				URL:       "ws://localhost:8000",
				Namespace: "campaignhub",
				Database:  "campaignhub",
			},
		},
		JWT: JWT{
			Issuer:          "campaignhub",
			ExpirationHours: 24,
		},
		Admin: Admin{
			Email: "admin@campaignhub.local",
			Name:  "Administrator",
		},
		Logging: Logging{Level: "info"},
	}
}

// Load reads configuration from the specified YAML file and overrides with environment variables
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// A missing file leaves the defaults in place for env-only deployments

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables if set
func (c *Config) applyEnvOverrides() {
	if debug := os.Getenv("DEBUG"); debug != "" {
		c.Debug = debug == "true" || debug == "1"
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if driver := os.Getenv("STORE_DRIVER"); driver != "" {
		c.Store.Driver = driver
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		c.Store.SQLite.Path = dbPath
	}
	if v := os.Getenv("SURREAL_URL"); v != "" {
		c.Store.SurrealDB.URL = v
	}
	if v := os.Getenv("SURREAL_NAMESPACE"); v != "" {
		c.Store.SurrealDB.Namespace = v
	}
	if v := os.Getenv("SURREAL_DATABASE"); v != "" {
		c.Store.SurrealDB.Database = v
	}
	if v := os.Getenv("SURREAL_USER"); v != "" {
		c.Store.SurrealDB.Username = v
	}
	if v := os.Getenv("SURREAL_PASS"); v != "" {
		c.Store.SurrealDB.Password = v
	}

	// JWT secret (critical for production)
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// validate checks that all required configuration values are present
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("database path is required")
		}
		cleanDBPath := filepath.Clean(c.Store.SQLite.Path)
		if !filepath.IsLocal(cleanDBPath) && !filepath.IsAbs(cleanDBPath) {
			return fmt.Errorf("invalid database path: potential path traversal detected")
		}
	case DriverSurrealDB:
		if c.Store.SurrealDB.URL == "" {
			return fmt.Errorf("surrealdb url is required")
		}
		if c.Store.SurrealDB.Namespace == "" || c.Store.SurrealDB.Database == "" {
			return fmt.Errorf("surrealdb namespace and database are required")
		}
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}

	if c.JWT.Secret == "" || c.JWT.Secret == insecureSecret {
		if !c.Debug {
			return fmt.Errorf("JWT secret must be changed for production")
		}
		c.JWT.Secret = insecureSecret
	}

	if c.JWT.ExpirationHours <= 0 {
		c.JWT.ExpirationHours = 24
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	case "":
		c.Logging.Level = "info"
	default:
		return fmt.Errorf("unknown log level: %q", c.Logging.Level)
	}

	return nil
}

// Address returns the full server address (host:port)
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetDatabasePath returns the cleaned and validated database path
func (c *Config) GetDatabasePath() string {
	return filepath.Clean(c.Store.SQLite.Path)
}

// TokenTTL is the lifetime of issued session tokens
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.ExpirationHours) * time.Hour
}
