package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/wcpairing/logging"
	"github.com/hupe1980/wcpairing/relay"
)

// Config is the wcpair configuration. It is loaded from the YAML file given
// with --config and then overridden by explicit flags.
type Config struct {
	RelayURL  string `yaml:"relay_url"`
	ProjectID string `yaml:"project_id"`
	Codec     string `yaml:"codec"`

	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
	LogSuffix       string `yaml:"log_suffix"`
	RecordAllLevels bool   `yaml:"record_all_levels"`

	// Timeout bounds the pairing handshake and the final disconnect.
	Timeout time.Duration `yaml:"timeout"`
	// ExpiryCheckInterval enables the expiry sweep when > 0.
	ExpiryCheckInterval time.Duration `yaml:"expiry_check_interval"`

	URI string `yaml:"-"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		RelayURL:  "wss://relay.walletconnect.com",
		Codec:     "json",
		LogLevel:  "warn",
		LogFormat: "text",
		LogSuffix: "[wcpair]",
		Timeout:   30 * time.Second,
	}
}

// LoadConfig reads path over the defaults. An empty path returns defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values and returns every problem found.
func (c Config) Validate() error {
	var errs []error
	if !strings.HasPrefix(c.RelayURL, "ws://") && !strings.HasPrefix(c.RelayURL, "wss://") {
		errs = append(errs, fmt.Errorf("relay_url %q: must use ws:// or wss://", c.RelayURL))
	}
	if _, ok := relay.CodecByName(c.Codec); !ok {
		errs = append(errs, fmt.Errorf("codec %q: want json or cbor", c.Codec))
	}
	if _, err := logging.ParseLoggingLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q: want text or json", c.LogFormat))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout %s: must be positive", c.Timeout))
	}
	if c.URI == "" {
		errs = append(errs, errors.New("pairing uri required (use --help for usage)"))
	}
	return errors.Join(errs...)
}
