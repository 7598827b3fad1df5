// Package config resolves runtime settings from an optional YAML file and
// FIRMDESK_* environment variables. Environment wins over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/celerix-dev/firmdesk/internal/offsite"
	"github.com/celerix-dev/firmdesk/pkg/sdk"
)

// Config is the full set of process settings.
type Config struct {
	Driver      sdk.Driver `yaml:"driver"`
	DataDir     string     `yaml:"data_dir"`
	DSN         string     `yaml:"dsn"`
	Prefix      string     `yaml:"prefix"`
	LogLimit    int        `yaml:"log_limit"`
	HTTPPort    string     `yaml:"http_port"`
	LogLevel    string     `yaml:"log_level"`
	GeminiModel string     `yaml:"gemini_model"`
	OffsiteDir  string     `yaml:"offsite_dir"`
	S3          S3         `yaml:"s3"`
}

// S3 mirrors offsite.S3Config for the YAML file.
type S3 struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	Prefix    string `yaml:"prefix"`
	PathStyle bool   `yaml:"path_style"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Driver:      sdk.DriverFile,
		DataDir:     "./data",
		Prefix:      sdk.DefaultPrefix,
		LogLimit:    sdk.DefaultLogLimit,
		HTTPPort:    "7002",
		LogLevel:    "info",
		GeminiModel: "gemini-2.5-flash",
	}
}

// Load reads the file named by FIRMDESK_CONFIG, if any, then applies the
// environment.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("FIRMDESK_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// LoadFile is Load with an explicit file path. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("FIRMDESK_DRIVER"); v != "" {
		c.Driver = sdk.Driver(strings.ToLower(v))
	}
	str("FIRMDESK_DATA_DIR", &c.DataDir)
	str("FIRMDESK_DSN", &c.DSN)
	str("FIRMDESK_PREFIX", &c.Prefix)
	str("FIRMDESK_HTTP_PORT", &c.HTTPPort)
	str("FIRMDESK_LOG_LEVEL", &c.LogLevel)
	str("FIRMDESK_GEMINI_MODEL", &c.GeminiModel)
	str("FIRMDESK_OFFSITE_DIR", &c.OffsiteDir)
	str("FIRMDESK_S3_BUCKET", &c.S3.Bucket)
	str("FIRMDESK_S3_REGION", &c.S3.Region)
	str("FIRMDESK_S3_ENDPOINT", &c.S3.Endpoint)
	str("FIRMDESK_S3_PREFIX", &c.S3.Prefix)
	if v := os.Getenv("FIRMDESK_S3_PATH_STYLE"); v != "" {
		c.S3.PathStyle = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("FIRMDESK_LOG_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FIRMDESK_LOG_LIMIT: %w", err)
		}
		c.LogLimit = n
	}
	return nil
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	switch c.Driver {
	case sdk.DriverFile, sdk.DriverSQLite, sdk.DriverMemory:
	case sdk.DriverPostgres:
		if c.DSN == "" {
			return errors.New("postgres driver requires FIRMDESK_DSN")
		}
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if c.LogLimit <= 0 {
		return fmt.Errorf("log limit must be positive, got %d", c.LogLimit)
	}
	if c.Prefix == "" {
		return errors.New("namespace prefix must not be empty")
	}
	return nil
}

// Backend returns the storage selection.
func (c Config) Backend() sdk.BackendConfig {
	return sdk.BackendConfig{Driver: c.Driver, DataDir: c.DataDir, DSN: c.DSN}
}

// StoreOptions returns the namespace options for sdk.Open.
func (c Config) StoreOptions() []sdk.Option {
	return []sdk.Option{sdk.WithPrefix(c.Prefix), sdk.WithLogLimit(c.LogLimit)}
}

// S3Config returns the offsite S3 settings; ok is false when no bucket is set.
func (c Config) S3Config() (offsite.S3Config, bool) {
	return offsite.S3Config{
		Bucket:    c.S3.Bucket,
		Region:    c.S3.Region,
		Endpoint:  c.S3.Endpoint,
		Prefix:    c.S3.Prefix,
		PathStyle: c.S3.PathStyle,
	}, c.S3.Bucket != ""
}

// Level parses LogLevel, defaulting to info.
func (c Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
