package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activitylog/internal/platform/config"
)

func TestNewDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.New(dir)
	require.NoError(t, err)

	assert.Equal(t, config.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, filepath.Join(dir, config.DBFileName), cfg.DBPath)
	assert.Equal(t, time.Minute, cfg.TickInterval)
	assert.Equal(t, []string{"Work", "Study", "Break", "Waste", "Projects"}, cfg.Activities)
	assert.Len(t, cfg.Keys, 5)
	assert.Equal(t, config.KeyBinding{Key: "1", Activity: "Work"}, cfg.Keys[0])
	assert.True(t, cfg.Autostart.Enabled)
	assert.Equal(t, config.ReportConfig{Style: "dark", Width: 100}, cfg.Report)
	require.NoError(t, cfg.Validate())

	_, err = config.New("  ")
	require.Error(t, err)
}

func TestLoadOverlaysYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	yaml := `
tick_interval: 30s
timezone: UTC
autostart:
  enabled: false
activities: [Coding, Reading]
keys:
  - key: c
    activity: Coding
storage:
  retry_attempts: 5
  retry_interval: 1s
plugins:
  - name: fifo
    version: 1.0.0
    binary: plugins/fifo
    sha256: "0000000000000000000000000000000000000000000000000000000000000000"
    enabled: true
    settings:
      path: triggers.txt
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(yaml), 0o644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.TickInterval)
	assert.False(t, cfg.Autostart.Enabled)
	assert.Equal(t, []string{"Coding", "Reading"}, cfg.Activities)
	assert.Equal(t, []config.KeyBinding{{Key: "c", Activity: "Coding"}}, cfg.Keys)
	assert.Equal(t, 5, cfg.Storage.RetryAttempts)
	assert.Equal(t, time.Second, cfg.Storage.RetryInterval)
	require.Len(t, cfg.Plugins, 1)
	assert.Equal(t, filepath.Join(dir, "plugins", "fifo"), cfg.Plugins[0].Binary)
	assert.Equal(t, config.DefaultPollInterval, cfg.Plugins[0].PollInterval)
	assert.Equal(t, "triggers.txt", cfg.Plugins[0].Settings["path"])

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadRejectsUnknownFieldsAndBadValues(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"unknown field":   "tick_intervall: 30s\n",
		"zero tick":       "tick_interval: 0s\n",
		"bad driver":      "database:\n  driver: mysql\n",
		"postgres no dsn": "database:\n  driver: postgres\n",
		"bad timezone":    "timezone: Mars/Olympus\n",
		"duplicate key":   "keys:\n  - {key: a, activity: Work}\n  - {key: a, activity: Study}\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(body), 0o644))
			_, err := config.Load(dir)
			require.Error(t, err)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { _ = os.Unsetenv(config.EnvHTTPListen) })
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.EnvFileName), []byte(config.EnvHTTPListen+"=127.0.0.1:7878\n"), 0o600))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7878", cfg.HTTP.Listen)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("log:\n  level: info\n"), 0o644))
	t.Setenv(config.EnvLogLevel, "debug")
	t.Setenv(config.EnvTick, "15s")
	t.Setenv(config.EnvDBDSN, "custom.db")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 15*time.Second, cfg.TickInterval)
	assert.Equal(t, filepath.Join(dir, "custom.db"), cfg.DBPath)
}
