package main

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := loadConfig(env(nil))

	assert.Equal(t, defaultConfig(), cfg)
	assert.Equal(t, ":3000", cfg.ListenAddr)
	assert.Equal(t, time.Minute, cfg.DrawCacheTTL)
	assert.Equal(t, slog.LevelInfo, cfg.level())
}

func TestLoadConfig_Env(t *testing.T) {
	cfg := loadConfig(env(map[string]string{
		"DATABASE_URL":            "postgres://localhost/workflows",
		"WORKFLOW_LISTEN_ADDR":    ":8080",
		"WORKFLOW_LOG_LEVEL":      "debug",
		"WORKFLOW_DRAW_CACHE_TTL": "5s",
	}))

	assert.Equal(t, "postgres://localhost/workflows", cfg.DatabaseURL)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.DrawCacheTTL)
	assert.Equal(t, slog.LevelDebug, cfg.level())
}

func TestLoadConfig_MalformedValuesIgnored(t *testing.T) {
	cfg := loadConfig(env(map[string]string{
		"WORKFLOW_LOG_LEVEL":      "loud",
		"WORKFLOW_DRAW_CACHE_TTL": "-1m",
	}))

	assert.Equal(t, time.Minute, cfg.DrawCacheTTL)
	assert.Equal(t, slog.LevelInfo, cfg.level())

	cfg = loadConfig(env(map[string]string{"WORKFLOW_DRAW_CACHE_TTL": "soon"}))
	assert.Equal(t, time.Minute, cfg.DrawCacheTTL)
}
