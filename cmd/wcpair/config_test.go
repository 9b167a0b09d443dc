package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wcpair.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
relay_url: ws://localhost:8080
project_id: abc
codec: cbor
log_level: debug
timeout: 5s
expiry_check_interval: 1m
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080", cfg.RelayURL)
	assert.Equal(t, "abc", cfg.ProjectID)
	assert.Equal(t, "cbor", cfg.Codec)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, time.Minute, cfg.ExpiryCheckInterval)
	// untouched keys keep their defaults
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "[wcpair]", cfg.LogSuffix)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: [1, 2]"), 0o600))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URI = "wc:abc@2?relay-protocol=irn&symKey=00"
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.RelayURL = "http://relay"
	bad.Codec = "xml"
	bad.LogLevel = "loud"
	bad.LogFormat = "yaml"
	bad.Timeout = 0
	bad.URI = ""

	err := bad.Validate()
	require.Error(t, err)
	for _, want := range []string{"relay_url", "codec", "logging level", "log_format", "timeout", "pairing uri"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestExecute_VersionAndValidation(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Execute(context.Background(), []string{"--version"}, &out))
	assert.Contains(t, out.String(), "wcpair ")

	err := Execute(context.Background(), []string{"--relay", "ftp://x", "wc:abc@2"}, &out)
	assert.ErrorContains(t, err, "relay_url")
}
