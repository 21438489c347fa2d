package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Admin    AdminConfig    `yaml:"admin"`
	Alerts   AlertsConfig   `yaml:"alerts"`
}

type ServerConfig struct {
	Port      int    `yaml:"port"`
	Host      string `yaml:"host"`
	Templates string `yaml:"templates"`
}

// DatabaseConfig selects the store. Driver is "sqlite" (Path is used) or
// "postgres" (DSN is used).
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

type AdminConfig struct {
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

type AlertsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

var AppConfig *Config

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      8990,
			Host:      "0.0.0.0",
			Templates: "./web/templates",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "./data/privacy-guard.db",
		},
		JWT: JWTConfig{
			Secret: "change-this-secret-in-production",
			Expiry: 24 * time.Hour,
		},
		Admin: AdminConfig{
			Email:     "admin@localhost",
			Password:  "admin123",
			FirstName: "Privacy",
			LastName:  "Admin",
		},
		Alerts: AlertsConfig{
			Enabled:  true,
			Schedule: "@hourly",
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error. Environment variables win over both.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	AppConfig = config
	return config, nil
}

func applyEnv(config *Config) {
	if port := os.Getenv("PRIVACY_GUARD_PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
			config.Server.Port = p
		}
	}
	if secret := os.Getenv("PRIVACY_GUARD_JWT_SECRET"); secret != "" {
		config.JWT.Secret = secret
	}
	if driver := os.Getenv("PRIVACY_GUARD_DB_DRIVER"); driver != "" {
		config.Database.Driver = driver
	}
	if dsn := os.Getenv("PRIVACY_GUARD_DB_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.JWT.Expiry <= 0 {
		return fmt.Errorf("jwt.expiry must be positive")
	}
	return nil
}
