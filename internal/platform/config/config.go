package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	FileName    = "config.yaml"
	EnvFileName = ".env"
	DBFileName  = "activity_log.db"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultTickInterval       = time.Minute
	DefaultPollInterval       = 250 * time.Millisecond
	DefaultRetryAttempts      = 3
	DefaultRetryInterval      = 200 * time.Millisecond
	DefaultSQLiteBusyTimeout  = 5 * time.Second
	DefaultHTTPRequestTimeout = 5 * time.Second
	DefaultReportStyle        = "dark"
	DefaultReportWidth        = 100
)

// Environment overrides, applied after config.yaml and .env.
const (
	EnvDBDriver   = "ACTIVITYLOG_DB_DRIVER"
	EnvDBDSN      = "ACTIVITYLOG_DB_DSN"
	EnvLogLevel   = "ACTIVITYLOG_LOG_LEVEL"
	EnvHTTPListen = "ACTIVITYLOG_HTTP_LISTEN"
	EnvTimezone   = "ACTIVITYLOG_TIMEZONE"
	EnvTick       = "ACTIVITYLOG_TICK_INTERVAL"
)

// DefaultActivities are seeded into the registry on startup.
var DefaultActivities = []string{"Work", "Study", "Break", "Waste", "Projects"}

type Config struct {
	DataDir string `yaml:"-"`
	DBPath  string `yaml:"-"`

	Database     DatabaseConfig  `yaml:"database"`
	TickInterval time.Duration   `yaml:"tick_interval"`
	Timezone     string          `yaml:"timezone"`
	Autostart    AutostartConfig `yaml:"autostart"`
	Activities   []string        `yaml:"activities"`
	Keys         []KeyBinding    `yaml:"keys"`
	Storage      StorageConfig   `yaml:"storage"`
	Log          LogConfig       `yaml:"log"`
	HTTP         HTTPConfig      `yaml:"http"`
	Report       ReportConfig    `yaml:"report"`
	Plugins      []PluginConfig  `yaml:"plugins"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	// DSN is the postgres connection string, or an sqlite file path overriding the default.
	DSN         string        `yaml:"dsn"`
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// AutostartConfig starts an activity when the tracker launches.
// An empty Activity selects the first registry name that is not the Custom sentinel.
type AutostartConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Activity string `yaml:"activity"`
}

type KeyBinding struct {
	Key      string `yaml:"key"`
	Activity string `yaml:"activity"`
}

type StorageConfig struct {
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryInterval time.Duration `yaml:"retry_interval"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type HTTPConfig struct {
	Listen         string        `yaml:"listen"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ReportConfig controls terminal rendering of reports that are not written to a file.
type ReportConfig struct {
	Style string `yaml:"style"`
	Width int    `yaml:"width"`
}

type PluginConfig struct {
	Name         string            `yaml:"name"`
	Version      string            `yaml:"version"`
	Binary       string            `yaml:"binary"`
	SHA256       string            `yaml:"sha256"`
	Enabled      bool              `yaml:"enabled"`
	PollInterval time.Duration     `yaml:"poll_interval"`
	Settings     map[string]string `yaml:"settings"`
}

// New returns the default configuration rooted at dataDir.
func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	keys := make([]KeyBinding, 0, len(DefaultActivities))
	for i, name := range DefaultActivities {
		keys = append(keys, KeyBinding{Key: strconv.Itoa(i + 1), Activity: name})
	}
	cfg := Config{
		DataDir:      dataDir,
		Database:     DatabaseConfig{Driver: DriverSQLite, BusyTimeout: DefaultSQLiteBusyTimeout},
		TickInterval: DefaultTickInterval,
		Timezone:     "Local",
		Autostart:    AutostartConfig{Enabled: true},
		Activities:   append([]string(nil), DefaultActivities...),
		Keys:         keys,
		Storage:      StorageConfig{RetryAttempts: DefaultRetryAttempts, RetryInterval: DefaultRetryInterval},
		Log:          LogConfig{Level: "info"},
		HTTP:         HTTPConfig{RequestTimeout: DefaultHTTPRequestTimeout},
		Report:       ReportConfig{Style: DefaultReportStyle, Width: DefaultReportWidth},
	}
	cfg.resolvePaths()
	return cfg, nil
}

// Load overlays <dataDir>/config.yaml, <dataDir>/.env and the process environment on the defaults.
func Load(dataDir string) (Config, error) {
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}
	raw, err := os.ReadFile(filepath.Join(dataDir, FileName))
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(raw))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("decode %s: %w", FileName, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return Config{}, fmt.Errorf("read %s: %w", FileName, err)
	}
	if err := godotenv.Load(filepath.Join(dataDir, EnvFileName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", EnvFileName, err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.resolvePaths()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDBDriver); ok && v != "" {
		c.Database.Driver = v
	}
	if v, ok := lookup(EnvDBDSN); ok && v != "" {
		c.Database.DSN = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvHTTPListen); ok {
		c.HTTP.Listen = v
	}
	if v, ok := lookup(EnvTimezone); ok && v != "" {
		c.Timezone = v
	}
	if v, ok := lookup(EnvTick); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvTick, err)
		}
		c.TickInterval = d
	}
	return nil
}

func (c *Config) resolvePaths() {
	c.DBPath = filepath.Join(c.DataDir, DBFileName)
	if c.Database.Driver == DriverSQLite && c.Database.DSN != "" {
		c.DBPath = c.Database.DSN
	}
	if !filepath.IsAbs(c.DBPath) {
		c.DBPath = filepath.Join(c.DataDir, c.DBPath)
	}
	for i := range c.Plugins {
		if c.Plugins[i].Binary != "" && !filepath.IsAbs(c.Plugins[i].Binary) {
			c.Plugins[i].Binary = filepath.Clean(filepath.Join(c.DataDir, c.Plugins[i].Binary))
		}
		if c.Plugins[i].PollInterval <= 0 {
			c.Plugins[i].PollInterval = DefaultPollInterval
		}
	}
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database dsn is required for driver %q", DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Storage.RetryAttempts < 0 {
		return fmt.Errorf("storage.retry_attempts must not be negative")
	}
	if c.Report.Width < 0 {
		return fmt.Errorf("report.width must not be negative")
	}
	seen := map[string]struct{}{}
	for _, k := range c.Keys {
		if k.Key == "" || strings.TrimSpace(k.Activity) == "" {
			return fmt.Errorf("key bindings need both key and activity")
		}
		if _, ok := seen[k.Key]; ok {
			return fmt.Errorf("duplicate key binding %q", k.Key)
		}
		seen[k.Key] = struct{}{}
	}
	return nil
}

// Location resolves Timezone; "" and "Local" mean the host zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
