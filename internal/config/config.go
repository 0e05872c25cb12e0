// Package config reads runtime settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the settings shared by the desktop app, the server and the
// batch tool.
type Config struct {
	IOPaintURL       string
	IOPaintTimeout   time.Duration
	ListenAddr       string
	HistoryDepth     int
	CacheMaxBytes    int64
	BatchConcurrency int
	BatchDelay       time.Duration
	SentryDSN        string
	Environment      string

	// AllowedIOPaintURLs lists the servers a request may name instead of
	// IOPaintURL. Empty means requests cannot override it.
	AllowedIOPaintURLs []string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		IOPaintURL:       "http://localhost:8080",
		IOPaintTimeout:   120 * time.Second,
		ListenAddr:       ":3010",
		HistoryDepth:     20,
		CacheMaxBytes:    256 << 20,
		BatchConcurrency: 1,
		BatchDelay:       100 * time.Millisecond,
		Environment:      "development",
	}
}

// Load reads the given .env files (".env" when none are given) and then the
// process environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		logrus.Debug("No .env file found")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, starting from Default.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	var err error

	if v := getenv("IOPAINT_URL"); v != "" {
		cfg.IOPaintURL = v
	}
	for _, u := range strings.Split(getenv("IOPAINT_ALLOWED_URLS"), ",") {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			cfg.AllowedIOPaintURLs = append(cfg.AllowedIOPaintURLs, u)
		}
	}
	if v := getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	cfg.SentryDSN = getenv("SENTRY_DSN")
	if v := getenv("ENV"); v != "" {
		cfg.Environment = v
	}

	if cfg.IOPaintTimeout, err = duration(getenv, "IOPAINT_TIMEOUT", cfg.IOPaintTimeout); err != nil {
		return cfg, err
	}
	if cfg.BatchDelay, err = duration(getenv, "BATCH_DELAY", cfg.BatchDelay); err != nil {
		return cfg, err
	}
	if cfg.HistoryDepth, err = positiveInt(getenv, "HISTORY_DEPTH", cfg.HistoryDepth); err != nil {
		return cfg, err
	}
	if cfg.BatchConcurrency, err = positiveInt(getenv, "BATCH_CONCURRENCY", cfg.BatchConcurrency); err != nil {
		return cfg, err
	}
	cacheBytes, err := positiveInt(getenv, "CACHE_MAX_BYTES", int(cfg.CacheMaxBytes))
	if err != nil {
		return cfg, err
	}
	cfg.CacheMaxBytes = int64(cacheBytes)
	return cfg, nil
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return def, fmt.Errorf("invalid %s: negative duration", key)
	}
	return d, nil
}

func positiveInt(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < 1 {
		return def, fmt.Errorf("invalid %s: must be positive", key)
	}
	return n, nil
}
