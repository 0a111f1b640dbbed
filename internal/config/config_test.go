package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.4, cfg.Search.ItemThreshold)
	assert.Equal(t, 0.6, cfg.Search.TagThreshold)
	assert.Equal(t, 12, cfg.Search.PopularLimit)
	assert.Equal(t, DriverLocal, cfg.Storage.Driver)
	assert.Empty(t, cfg.PrivateAccess.Password)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: "127.0.0.1:9000"
  read_timeout: 5s
storage:
  driver: minio
  bucket: media
  minio:
    endpoint: localhost:9000
    secure: true
auth:
  session_ttl: 2h
search:
  popular_limit: 6
log:
  level: debug
  format: console
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, DriverMinIO, cfg.Storage.Driver)
	assert.True(t, cfg.Storage.MinIO.Secure)
	assert.Equal(t, "us-east-1", cfg.Storage.MinIO.Region)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 6, cfg.Search.PopularLimit)
	assert.Equal(t, 0.4, cfg.Search.ItemThreshold)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORTFOLIO_ADDR":             ":9999",
		"PORTFOLIO_PRIVATE_PASSWORD": "hunter2",
		"PORTFOLIO_STORAGE_DRIVER":   DriverS3,
		"PORTFOLIO_S3_PATH_STYLE":    "true",
		"PORTFOLIO_TRUST_PROXY":      "true",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "hunter2", cfg.PrivateAccess.Password)
	assert.Equal(t, DriverS3, cfg.Storage.Driver)
	assert.True(t, cfg.Storage.S3.PathStyle)
	assert.True(t, cfg.Server.TrustProxy)
	assert.False(t, DefaultConfig().Server.TrustProxy)
	assert.Equal(t, "portfolio.db", cfg.Database.Path)

	env["PORTFOLIO_MINIO_SECURE"] = "maybe"
	assert.Error(t, cfg.ApplyEnv(lookup))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "ftp" }},
		{"minio without endpoint", func(c *Config) { c.Storage.Driver = DriverMinIO }},
		{"s3 without bucket", func(c *Config) { c.Storage.Driver = DriverS3; c.Storage.Bucket = "" }},
		{"item threshold above one", func(c *Config) { c.Search.ItemThreshold = 1.5 }},
		{"negative tag threshold", func(c *Config) { c.Search.TagThreshold = -0.1 }},
		{"negative popular limit", func(c *Config) { c.Search.PopularLimit = -1 }},
		{"zero session ttl", func(c *Config) { c.Auth.SessionTTL = 0 }},
		{"unknown log level", func(c *Config) { c.Log.Level = "trace" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
