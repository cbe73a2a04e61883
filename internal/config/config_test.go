package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/framectl/internal/config"
	"codeberg.org/mutker/framectl/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "framectl.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
interval = 10
staleness = 30
log_level = "debug"
monitor = true
profile = "/tmp/profile.toml"
ec_tool = "/usr/bin/framework_tool"
history = true
database = "/tmp/history.db"
`)
	t.Setenv("FRAMECTL_CONFIG", path)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Interval)
	assert.Equal(t, 30, cfg.Staleness)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Monitor)
	assert.Equal(t, "/tmp/profile.toml", cfg.ProfilePath)
	assert.Equal(t, "/usr/bin/framework_tool", cfg.ECTool)
	assert.True(t, cfg.History)
	assert.Equal(t, "/tmp/history.db", cfg.HistoryDB)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FRAMECTL_CONFIG", writeConfig(t, ""))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DefaultInterval, cfg.Interval)
	assert.Equal(t, config.DefaultStaleness, cfg.Staleness)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.Monitor)
	assert.Equal(t, config.DefaultProfilePath, cfg.ProfilePath)
	assert.Equal(t, config.DefaultECTool, cfg.ECTool)
	assert.False(t, cfg.History)
	assert.Equal(t, config.DefaultHistoryDB, cfg.HistoryDB)
}

func TestLoadInvalidFormat(t *testing.T) {
	t.Setenv("FRAMECTL_CONFIG", writeConfig(t, "This is not a valid TOML file"))

	_, err := config.Load()
	require.Error(t, err)
	assert.Equal(t, errors.ErrReadConfig, errors.CodeOf(err))
}

func TestLoadInvalidInterval(t *testing.T) {
	t.Setenv("FRAMECTL_CONFIG", writeConfig(t, "interval = 0"))

	_, err := config.Load()
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidInterval, errors.CodeOf(err))
}

func TestLoadInvalidLogLevel(t *testing.T) {
	t.Setenv("FRAMECTL_CONFIG", writeConfig(t, `log_level = "invalid"`))

	_, err := config.Load()
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidLogLevel, errors.CodeOf(err))
}

func TestLogLevelFlag(t *testing.T) {
	t.Setenv("FRAMECTL_CONFIG", writeConfig(t, `log_level = "error"`))

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"framectl", "--log-level", "debug"}

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "flag must override the config file")
}

func TestValidate(t *testing.T) {
	base := config.Config{
		Interval:    config.DefaultInterval,
		Staleness:   config.DefaultStaleness,
		LogLevel:    config.DefaultLogLevel,
		ProfilePath: config.DefaultProfilePath,
		ECTool:      config.DefaultECTool,
		HistoryDB:   config.DefaultHistoryDB,
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name     string
		mutate   func(*config.Config)
		wantCode errors.ErrorCode
	}{
		{"interval too large", func(c *config.Config) { c.Interval = 120 }, errors.ErrInvalidInterval},
		{"negative staleness", func(c *config.Config) { c.Staleness = -1 }, errors.ErrInvalidConfig},
		{"empty ec tool", func(c *config.Config) { c.ECTool = "" }, errors.ErrMissingConfig},
		{"empty profile path", func(c *config.Config) { c.ProfilePath = "" }, errors.ErrMissingConfig},
		{"history without database", func(c *config.Config) { c.History = true; c.HistoryDB = "" }, errors.ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
		})
	}
}
