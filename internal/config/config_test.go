package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harness.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:8080", cfg.APIServerURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout.Duration())
	assert.Equal(t, 30*time.Second, cfg.Wait.Timeout.Duration())
	assert.Equal(t, 5*time.Second, cfg.Wait.Interval.Duration())
	assert.Equal(t, 2*time.Second, cfg.Wait.DeletionInterval.Duration())
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvAPIServerURL, "")
	t.Setenv(EnvAPIKey, "")
	t.Setenv("HARNESS_TEST_KEY", "dn_from_env")

	path := writeConfig(t, `
api_server_url: http://api:8080
api_key: ${HARNESS_TEST_KEY}
wait:
  timeout: 2m
  interval: 1s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://api:8080", cfg.APIServerURL)
	assert.Equal(t, "dn_from_env", cfg.APIKey)
	assert.Equal(t, 2*time.Minute, cfg.Wait.Timeout.Duration())
	assert.Equal(t, time.Second, cfg.Wait.Interval.Duration())
	assert.Equal(t, 2*time.Second, cfg.Wait.DeletionInterval.Duration())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv(EnvAPIServerURL, "http://override:9000")
	t.Setenv(EnvAPIKey, "override-key")

	cfg, err := Load(writeConfig(t, "api_server_url: http://api:8080\napi_key: file-key\n"))
	require.NoError(t, err)

	assert.Equal(t, "http://override:9000", cfg.APIServerURL)
	assert.Equal(t, "override-key", cfg.APIKey)
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := Load(writeConfig(t, "wait:\n  timeout: soon\n"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvAPIServerURL, "http://env:8080")
	t.Setenv(EnvAPIKey, "env-key")

	cfg := FromEnv()
	assert.Equal(t, "http://env:8080", cfg.APIServerURL)
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Wait.Timeout.Duration())
}
