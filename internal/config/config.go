// Package config loads the bpmlookup settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	PortalURL   string
	Headless    bool
	TimeoutMs   int
	ChromeBin   string
	HumanTyping bool

	PerformanceMode   bool
	NumericCacheMax   int
	EnvCacheMax       int
	LookupConcurrency int

	HistoryDB string
	LogLevel  string
}

// Load reads .env from the working directory if present; variables already
// set in the environment win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		PortalURL:   getEnv("BPM_URL", ""),
		Headless:    getEnvBool("BPM_HEADLESS", true),
		TimeoutMs:   getEnvInt("BPM_TIMEOUT_MS", 30000),
		ChromeBin:   getEnv("BPM_CHROME_BIN", ""),
		HumanTyping: getEnvBool("BPM_HUMAN_TYPING", false),

		PerformanceMode:   getEnvBool("BPM_PERFORMANCE_MODE", false),
		NumericCacheMax:   getEnvInt("BPM_NUMERIC_CACHE_MAX", 1000),
		EnvCacheMax:       getEnvInt("BPM_ENV_CACHE_MAX", 500),
		LookupConcurrency: getEnvInt("BPM_LOOKUP_CONCURRENCY", 4),

		HistoryDB: getEnv("BPM_HISTORY_DB", filepath.Join(cwd, "data", "lookups.db")),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// Timeout is TimeoutMs as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
