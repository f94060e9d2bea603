package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mrusso91/aiofile/internal/bytesize"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 4, cfg.IO.Workers)
	assert.Equal(t, 256, cfg.IO.QueueDepth)
	assert.Equal(t, 4*bytesize.MiB, cfg.IO.BufferSize)
	assert.Equal(t, 8, cfg.IO.Window)
	assert.False(t, cfg.Metrics.Enabled)
	assert.NoError(t, Validate(cfg))
}

func TestLoadNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: DEBUG
  format: json
io:
  workers: 8
  buffer_size: 64Ki
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 8, cfg.IO.Workers)
	assert.Equal(t, 64*bytesize.KiB, cfg.IO.BufferSize)
	// Unset fields keep their defaults.
	assert.Equal(t, 256, cfg.IO.QueueDepth)
	assert.Equal(t, 8, cfg.IO.Window)
}

func TestLoadRoundTrip(t *testing.T) {
	want := Default()
	want.Logging.Level = "ERROR"
	want.Metrics.Enabled = true
	want.Metrics.Listen = "127.0.0.1:9200"
	want.IO.Workers = 12
	want.IO.BufferSize = 2 * bytesize.MiB

	data, err := yaml.Marshal(want)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, data, 0600))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("AIOFILE_IO_WORKERS", "16")
	t.Setenv("AIOFILE_LOGGING_LEVEL", "WARN")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.IO.Workers)
	assert.Equal(t, "WARN", cfg.Logging.Level)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Logging.Level = "CHATTY"
	assert.Error(t, Validate(cfg))

	cfg = Default()
	cfg.IO.Workers = 0
	assert.Error(t, Validate(cfg))

	cfg = Default()
	cfg.Metrics.Listen = "not a listen address"
	assert.Error(t, Validate(cfg))
}

func TestLoadInvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("io:\n  workers: -2\n"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}
