package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemabind.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
catalog: ./catalog
driver: gojson
language: ja
parse:
  max_depth: 32
  max_bytes: 1048576
  duplicate_keys: warn
validate:
  strict: true
  collect: true
logging:
  level: debug
  format: json
server:
  addr: 127.0.0.1:9090
  request_timeout: 5s
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./catalog", cfg.Catalog)
	assert.Equal(t, "gojson", cfg.Driver)
	assert.Equal(t, "ja", cfg.Language)
	assert.True(t, cfg.Validate.Strict)
	assert.True(t, cfg.Validate.Collect)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)

	opt := cfg.ParseOpt()
	assert.Equal(t, schemabind.Warn, opt.Strictness.OnDuplicateKey)
	assert.Equal(t, 32, opt.MaxDepth)
	assert.EqualValues(t, 1<<20, opt.MaxBytes)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Catalog)
	assert.Equal(t, "json", cfg.Driver)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, "error", cfg.Parse.DuplicateKeys)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, schemabind.Error, cfg.ParseOpt().Strictness.OnDuplicateKey)
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("CATALOG_ROOT", "/srv/catalog")
	cfg, err := config.Load(writeConfig(t, "catalog: ${CATALOG_ROOT}/r4\n"))
	require.NoError(t, err)
	assert.Equal(t, "/srv/catalog/r4", cfg.Catalog)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SCHEMABIND_DRIVER", "gojson")
	t.Setenv("SCHEMABIND_LOG_LEVEL", "error")
	t.Setenv("SCHEMABIND_VALIDATE_STRICT", "yes")
	t.Setenv("SCHEMABIND_PARSE_MAX_DEPTH", "8")
	t.Setenv("SCHEMABIND_SERVER_ADDR", ":9999")
	t.Setenv("SCHEMABIND_SERVER_TIMEOUT", "2m")
	cfg, err := config.Load(writeConfig(t, "driver: json\nlogging:\n  level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, "gojson", cfg.Driver)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.True(t, cfg.Validate.Strict)
	assert.Equal(t, 8, cfg.Parse.MaxDepth)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 2*time.Minute, cfg.Server.RequestTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := config.Load(writeConfig(t, "driver: xml\nlanguage: fr\nparse:\n  duplicate_keys: sometimes\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "driver must be")
	assert.Contains(t, err.Error(), "language must be")
	assert.Contains(t, err.Error(), "parse.duplicate_keys")

	_, err = config.Load(writeConfig(t, "parse: [1, 2]\n"))
	assert.ErrorContains(t, err, "parse config")

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestLoadWithFallback(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SCHEMABIND_LANGUAGE", "ja")

	cfg, err := config.LoadWithFallback("")
	require.NoError(t, err)
	assert.Equal(t, "ja", cfg.Language)

	_, err = config.LoadWithFallback("nope.yaml")
	assert.ErrorContains(t, err, "config file not found")

	require.NoError(t, os.WriteFile(config.DefaultFile, []byte("driver: gojson\n"), 0o644))
	cfg, err = config.LoadWithFallback("")
	require.NoError(t, err)
	assert.Equal(t, "gojson", cfg.Driver)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
