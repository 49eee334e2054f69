package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	assert.Equal(t, nil, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, "paperboy.db", cfg.ArchiveDB)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, false, cfg.EnrichDescriptions)
	assert.Equal(t, "", cfg.RefreshSchedule)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paperboy.yaml")
	content := `
listen_addr: ":9090"
output_dir: "/tmp/digests"
log_level: "debug"
request_timeout: "30s"
enrich_descriptions: true
refresh_schedule: "0 6 * * *"
`
	assert.Equal(t, nil, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	assert.Equal(t, nil, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/digests", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, true, cfg.EnrichDescriptions)
	assert.Equal(t, "0 6 * * *", cfg.RefreshSchedule)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.NotEqual(t, nil, err)
}

func TestLoadAPIKeyFromEnv(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "from-env")

	cfg, err := Load("")
	assert.Equal(t, nil, err)
	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, true, cfg.Keyed())
}

func TestLoadPrefixedEnvOverride(t *testing.T) {
	t.Setenv("PAPERBOY_LOG_LEVEL", "warn")

	cfg, err := Load("")
	assert.Equal(t, nil, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestKeyed(t *testing.T) {
	cfg := &Config{APIKey: "   "}
	assert.Equal(t, false, cfg.Keyed())

	cfg.APIKey = "abc"
	assert.Equal(t, true, cfg.Keyed())
}

func TestValidate(t *testing.T) {
	valid := Config{
		ListenAddr:     ":8080",
		OutputDir:      ".",
		LogLevel:       "info",
		RequestTimeout: time.Second,
	}
	assert.Equal(t, nil, valid.Validate())

	bad := valid
	bad.RequestTimeout = 0
	assert.Equal(t, true, errors.Is(bad.Validate(), ErrInvalidTimeout))

	bad = valid
	bad.LogLevel = "verbose"
	assert.Equal(t, true, errors.Is(bad.Validate(), ErrInvalidLogLevel))

	bad = valid
	bad.ListenAddr = "  "
	assert.Equal(t, true, errors.Is(bad.Validate(), ErrMissingListen))

	bad = valid
	bad.OutputDir = ""
	assert.Equal(t, true, errors.Is(bad.Validate(), ErrMissingOutputDir))
}
