package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c := qt.New(t)

	cfg, err := Load(filepath.Join(c.TempDir(), "absent.yaml"))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg, qt.DeepEquals, Default())
	c.Assert(AppConfig, qt.Equals, cfg)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(c.TempDir(), "config.yaml")
	data := `
server:
  port: 9000
database:
  driver: sqlite
  path: /var/lib/privacy-guard/pg.db
jwt:
  expiry: 2h
alerts:
  enabled: false
`
	c.Assert(os.WriteFile(path, []byte(data), 0o600), qt.IsNil)

	c.Setenv("PRIVACY_GUARD_PORT", "9100")
	c.Setenv("PRIVACY_GUARD_JWT_SECRET", "from-env")

	cfg, err := Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Server.Port, qt.Equals, 9100)
	c.Assert(cfg.Server.Host, qt.Equals, "0.0.0.0")
	c.Assert(cfg.Database.Path, qt.Equals, "/var/lib/privacy-guard/pg.db")
	c.Assert(cfg.JWT.Secret, qt.Equals, "from-env")
	c.Assert(cfg.JWT.Expiry, qt.Equals, 2*time.Hour)
	c.Assert(cfg.Alerts.Enabled, qt.IsFalse)
	c.Assert(cfg.Alerts.Schedule, qt.Equals, "@hourly")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Database.Driver = "postgres" }, wantErr: "database.dsn is required.*"},
		{name: "postgres", mutate: func(c *Config) {
			c.Database.Driver = "postgres"
			c.Database.DSN = "host=localhost user=pg dbname=privacy"
		}},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "database.path is required.*"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: `unsupported database driver "mysql"`},
		{name: "zero expiry", mutate: func(c *Config) { c.JWT.Expiry = 0 }, wantErr: "jwt.expiry must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				c.Assert(err, qt.IsNil)
				return
			}
			c.Assert(err, qt.ErrorMatches, tt.wantErr)
		})
	}
}
