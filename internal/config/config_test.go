package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, 0.01, cfg.Validation.Tolerance)
	assert.Equal(t, 6, cfg.Validation.CycleWindow)
	assert.Equal(t, 0.01, cfg.Validation.QEThreshold)
	assert.NoError(t, cfg.validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"invalid port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, "read timeout"},
		{"zero write timeout", func(c *Config) { c.Server.WriteTimeout = 0 }, "write timeout"},
		{"no origins", func(c *Config) { c.Security.AllowedOrigins = nil }, "allowed origin"},
		{"negative tolerance", func(c *Config) { c.Validation.Tolerance = -1 }, "tolerance"},
		{
			"inverted range",
			func(c *Config) {
				c.Validation.Ranges = map[string]RangeConfig{"velocity": {Min: 10, Max: 1}}
			},
			"invalid range",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("forces json format", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Format = "text"
		require.NoError(t, cfg.validate())
		assert.Equal(t, "json", cfg.Logging.Format)
	})
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
validation:
  tolerance: 0.5
  ranges:
    velocity:
      min: 1.0
      max: 20.0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := loadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 0.5, cfg.Validation.Tolerance)
	require.Contains(t, cfg.Validation.Ranges, "velocity")
	assert.Equal(t, 1.0, cfg.Validation.Ranges["velocity"].Min)
	assert.Equal(t, 20.0, cfg.Validation.Ranges["velocity"].Max)

	t.Run("missing file", func(t *testing.T) {
		_, err := loadFromFile(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("server: ["), 0o644))
		_, err := loadFromFile(bad)
		assert.Error(t, err)
	})
}

func TestMergeConfigs(t *testing.T) {
	fileCfg := *Default()
	fileCfg.Server.Port = 9999
	fileCfg.Validation.Tolerance = 0.25

	var envCfg Config
	envCfg.Server.Port = 8081

	merged := mergeConfigs(fileCfg, envCfg)
	assert.Equal(t, 8081, merged.Server.Port, "env value wins")
	assert.Equal(t, 0.25, merged.Validation.Tolerance, "file fills in unset values")
}

func TestPathResolution(t *testing.T) {
	cfg := Default()
	cfg.Paths.ExecutableDir = "/opt/gml"

	assert.Equal(t, filepath.Join("/opt/gml", "data"), cfg.GetDataDir())
	assert.Equal(t, filepath.Join("/opt/gml", "reports"), cfg.GetReportsDir())
	assert.Equal(t, filepath.Join("/opt/gml", "logs"), cfg.GetLogsDir())

	cfg.Paths.DataDir = "/var/lib/gml"
	assert.Equal(t, "/var/lib/gml", cfg.GetDataDir(), "absolute paths pass through")
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	paths := PathsFrom(base)

	require.NoError(t, paths.EnsureDirectories())
	for _, dir := range []string{paths.DataDir, paths.ReportsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
