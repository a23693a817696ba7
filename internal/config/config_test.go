package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/retrier/pkg/retrier"
)

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `policy:
  min: 250ms
  max: 10s
  initial: 1s
  max_attempts: 8
  max_time: 2m
  factor: 1.5
  jitter: 0.2
  fatal_exit_codes: [2, 64]

postgres:
  dsn: postgres://app@db:5432/app
  connect_timeout: 3s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "250ms", cfg.Policy.Min)
	assert.Equal(t, "10s", cfg.Policy.Max)
	assert.Equal(t, "1s", cfg.Policy.Initial)
	require.NotNil(t, cfg.Policy.MaxAttempts)
	assert.Equal(t, 8, *cfg.Policy.MaxAttempts)
	assert.Equal(t, "2m", cfg.Policy.MaxTime)
	require.NotNil(t, cfg.Policy.Factor)
	assert.Equal(t, 1.5, *cfg.Policy.Factor)
	require.NotNil(t, cfg.Policy.Jitter)
	assert.Equal(t, 0.2, *cfg.Policy.Jitter)
	assert.Equal(t, []int{2, 64}, cfg.Policy.FatalExitCodes)
	assert.Equal(t, "postgres://app@db:5432/app", cfg.Postgres.DSN)
	assert.Equal(t, "3s", cfg.Postgres.ConnectTimeout)
}

func TestLoad_MinimalYAML(t *testing.T) {
	dir := t.TempDir()
	content := `policy:
  max_attempts: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "", cfg.Policy.Min)
	assert.Nil(t, cfg.Policy.Factor)
	assert.Equal(t, 3, *cfg.Policy.MaxAttempts)
	assert.Equal(t, "", cfg.Postgres.DSN)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{{invalid"), 0644))

	cfg, err := Load(dir)
	assert.ErrorIs(t, err, retrier.ErrInvalidConfig)
	assert.Nil(t, cfg)
}

func TestEnvironment_DotenvFallback(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, ".env")
	second := filepath.Join(dir, ".env.local")
	require.NoError(t, os.WriteFile(first, []byte("RETRIER_TEST_A=from-first\nRETRIER_TEST_B=from-first\n"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("RETRIER_TEST_B=from-second\nRETRIER_TEST_C=from-second\n"), 0644))
	t.Setenv("RETRIER_TEST_A", "from-process")

	lookup, err := Environment(first, second, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	v, ok := lookup("RETRIER_TEST_A")
	assert.True(t, ok)
	assert.Equal(t, "from-process", v)

	v, _ = lookup("RETRIER_TEST_B")
	assert.Equal(t, "from-first", v)

	v, _ = lookup("RETRIER_TEST_C")
	assert.Equal(t, "from-second", v)

	_, ok = lookup("RETRIER_TEST_UNSET")
	assert.False(t, ok)
}

func TestEnvironment_EmptyProcessValueFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RETRIER_TEST_D=from-file\n"), 0644))
	t.Setenv("RETRIER_TEST_D", "")

	lookup, err := Environment(path)
	require.NoError(t, err)

	v, ok := lookup("RETRIER_TEST_D")
	assert.True(t, ok)
	assert.Equal(t, "from-file", v)
}
