package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BILLED_SESSION_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Server.SessionSecret)
	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "data/billed.db", cfg.Database.Path)
	assert.Equal(t, "/receipts", cfg.Receipts.URLPrefix)
	assert.Equal(t, 800, cfg.UI.ModalWidth)
	assert.Equal(t, 30*time.Second, cfg.Store.API.Timeout)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  session_secret: from-file
store:
  driver: api
  api:
    base_url: https://bills.example.test
    timeout: 5s
ui:
  modal_width: 500
logger:
  level: debug
  format: console
`)
	t.Setenv("BILLED_API_TOKEN", "tok")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.Server.SessionSecret)
	assert.Equal(t, StoreDriverAPI, cfg.Store.Driver)
	assert.Equal(t, "https://bills.example.test", cfg.Store.API.BaseURL)
	assert.Equal(t, "tok", cfg.Store.API.Token)
	assert.Equal(t, 5*time.Second, cfg.Store.API.Timeout)
	assert.Equal(t, 500, cfg.UI.ModalWidth)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 8080, SessionSecret: "x"},
			Database: DatabaseConfig{Path: "bills.db"},
			Store:    StoreConfig{Driver: StoreDriverSQLite},
			Receipts: ReceiptsConfig{Dir: "receipts", URLPrefix: "/receipts"},
			UI:       UIConfig{ModalWidth: 800},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing secret", func(c *Config) { c.Server.SessionSecret = "" }, "server.session_secret"},
		{"unknown mode", func(c *Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "firestore" }, "store.driver"},
		{"api without url", func(c *Config) { c.Store.Driver = StoreDriverAPI }, "store.api.base_url"},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"relative url prefix", func(c *Config) { c.Receipts.URLPrefix = "receipts" }, "receipts.url_prefix"},
		{"zero modal width", func(c *Config) { c.UI.ModalWidth = 0 }, "ui.modal_width"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
