package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/kylycht/currconv/service/forex"
	"github.com/kylycht/currconv/storage/persistence"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "config.yaml"

type Config struct {
	RatesURL          string        `yaml:"rates_url"`           // daily rates feed
	SnapshotPath      string        `yaml:"snapshot_path"`       // rates file location
	Attempts          int           `yaml:"attempts"`            // fetch attempts before giving up
	RetryBackoff      time.Duration `yaml:"retry_backoff"`       // pause between fetch attempts
	RequestTimeout    time.Duration `yaml:"request_timeout"`     // single request timeout
	RequestsPerSecond float64       `yaml:"requests_per_second"` // outbound limit, 0 means unlimited
	HTTPPort          string        `yaml:"http_port"`           // serve mode listen address
	RefreshInterval   time.Duration `yaml:"refresh_interval"`    // serve mode cache refresh, 0 disables
	LogLevel          string        `yaml:"log_level"`
	NoColor           bool          `yaml:"no_color"`
}

func DefaultConfig() Config {
	opts := forex.DefaultOptions()

	return Config{
		RatesURL:        opts.URL,
		SnapshotPath:    persistence.DefaultFileName,
		Attempts:        opts.Attempts,
		RetryBackoff:    opts.Backoff,
		RequestTimeout:  opts.Timeout,
		HTTPPort:        ":3000",
		RefreshInterval: time.Hour,
		LogLevel:        zerolog.WarnLevel.String(),
	}
}

// LoadConfig reads path over the defaults. A missing file is only
// an error when it was asked for explicitly.
func LoadConfig(fsys afero.Fs, path string, required bool) (Config, error) {
	cfg := DefaultConfig()

	content, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("unable to read configuration file: %w", err)
	}

	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("unable to parse configuration file %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Attempts < 1 {
		return fmt.Errorf("attempts must be at least 1, got %d", c.Attempts)
	}
	if c.RetryBackoff < 0 || c.RequestTimeout < 0 || c.RefreshInterval < 0 {
		return errors.New("durations must not be negative")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative, got %v", c.RequestsPerSecond)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return nil
}

func (c Config) ForexOptions() forex.Options {
	return forex.Options{
		URL:           c.RatesURL,
		Attempts:      c.Attempts,
		Backoff:       c.RetryBackoff,
		Timeout:       c.RequestTimeout,
		RatePerSecond: c.RequestsPerSecond,
	}
}
