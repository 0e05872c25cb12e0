package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 20, cfg.HistoryDepth)
	assert.Equal(t, 100*time.Millisecond, cfg.BatchDelay)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"IOPAINT_URL":          "http://gpu:8080",
		"IOPAINT_TIMEOUT":      "30s",
		"LISTEN_ADDR":          ":9000",
		"HISTORY_DEPTH":        "50",
		"CACHE_MAX_BYTES":      "1048576",
		"BATCH_CONCURRENCY":    "4",
		"BATCH_DELAY":          "0s",
		"SENTRY_DSN":           "https://key@sentry.example/1",
		"ENV":                  "production",
		"IOPAINT_ALLOWED_URLS": " http://a:8080/ ,,http://b:8080",
	}))
	require.NoError(t, err)

	assert.Equal(t, "http://gpu:8080", cfg.IOPaintURL)
	assert.Equal(t, 30*time.Second, cfg.IOPaintTimeout)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 50, cfg.HistoryDepth)
	assert.Equal(t, int64(1<<20), cfg.CacheMaxBytes)
	assert.Equal(t, 4, cfg.BatchConcurrency)
	assert.Zero(t, cfg.BatchDelay)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, []string{"http://a:8080", "http://b:8080"}, cfg.AllowedIOPaintURLs)
}

func TestFromEnvInvalid(t *testing.T) {
	tests := map[string]string{
		"IOPAINT_TIMEOUT":   "soon",
		"BATCH_DELAY":       "-1s",
		"HISTORY_DEPTH":     "0",
		"BATCH_CONCURRENCY": "many",
		"CACHE_MAX_BYTES":   "-5",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := FromEnv(env(map[string]string{key: value}))
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HISTORY_DEPTH=7\n"), 0o644))
	t.Setenv("HISTORY_DEPTH", "")
	require.NoError(t, os.Unsetenv("HISTORY_DEPTH"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.HistoryDepth)
}
