// Package config loads factoryvision settings.
//
// Values are resolved in three layers: built-in defaults, an optional YAML
// file, then FACTORY_* environment variables. Env vars only override what
// they set.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/emiliopalmerini/factoryvision/internal/util"
)

const DefaultAPIURL = "https://factory-backendw.onrender.com/api/metrics"

// API holds the metrics backend configuration.
type API struct {
	URL     string        `envconfig:"FACTORY_API_URL" yaml:"url"`
	Timeout time.Duration `envconfig:"FACTORY_API_TIMEOUT" yaml:"timeout"`
}

// Refresh holds the polling schedule.
type Refresh struct {
	Interval time.Duration `envconfig:"FACTORY_REFRESH_INTERVAL" yaml:"interval"`
	Settle   time.Duration `envconfig:"FACTORY_REFRESH_SETTLE" yaml:"settle"`
}

type Server struct {
	Port int `envconfig:"FACTORY_PORT" yaml:"port"`
}

// History holds the snapshot history database. An empty URL disables it.
type History struct {
	URL       string `envconfig:"FACTORY_HISTORY_URL" yaml:"url"`
	AuthToken string `envconfig:"FACTORY_HISTORY_AUTH_TOKEN" yaml:"auth_token"`
}

type Telemetry struct {
	Enabled  bool   `envconfig:"FACTORY_OTEL_ENABLED" yaml:"enabled"`
	Endpoint string `envconfig:"FACTORY_OTEL_ENDPOINT" yaml:"endpoint"`
	Insecure bool   `envconfig:"FACTORY_OTEL_INSECURE" yaml:"insecure"`
}

type Log struct {
	Level  string `envconfig:"FACTORY_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"FACTORY_LOG_FORMAT" yaml:"format"`
}

// Config is the full application configuration.
type Config struct {
	API       API       `yaml:"api"`
	Refresh   Refresh   `yaml:"refresh"`
	Server    Server    `yaml:"server"`
	History   History   `yaml:"history"`
	Telemetry Telemetry `yaml:"telemetry"`
	Log       Log       `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API:     API{URL: DefaultAPIURL, Timeout: 10 * time.Second},
		Refresh: Refresh{Interval: 10 * time.Second, Settle: time.Second},
		Server:  Server{Port: 8080},
		Log:     Log{Level: "info", Format: "console"},
	}
}

// DefaultPath returns the config file looked up when no path is given.
func DefaultPath() string {
	dir, err := util.GetXDGConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load resolves the configuration. An explicit path must exist; the
// default path is used only if present.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.mergeFile(path, explicit); err != nil {
			return nil, err
		}
	}

	sections := []any{&cfg.API, &cfg.Refresh, &cfg.Server, &cfg.History, &cfg.Telemetry, &cfg.Log}
	for _, s := range sections {
		if err := envconfig.Process("", s); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api url %q must be an absolute http(s) URL", c.API.URL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api timeout must be positive"))
	}
	if c.Refresh.Interval <= 0 {
		errs = append(errs, errors.New("refresh interval must be positive"))
	}
	if c.Refresh.Settle < 0 {
		errs = append(errs, errors.New("refresh settle delay must not be negative"))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Server.Port))
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		errs = append(errs, errors.New("telemetry enabled without an endpoint"))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log format %q must be console or json", c.Log.Format))
	}

	return errors.Join(errs...)
}
