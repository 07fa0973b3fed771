package main

import (
	"log/slog"
	"time"
)

// Config holds the server configuration.
// Priority: env vars > defaults.
type Config struct {
	ListenAddr   string
	DatabaseURL  string
	LogLevel     string
	DrawCacheTTL time.Duration
}

func defaultConfig() Config {
	return Config{
		ListenAddr:   ":3000",
		LogLevel:     "info",
		DrawCacheTTL: time.Minute,
	}
}

// loadConfig layers the environment, read through getenv, over the defaults.
// Malformed values are ignored.
func loadConfig(getenv func(string) string) Config {
	cfg := defaultConfig()

	if v := getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := getenv("WORKFLOW_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := getenv("WORKFLOW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("WORKFLOW_DRAW_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.DrawCacheTTL = d
		}
	}

	return cfg
}

// level returns the slog level named by LogLevel, falling back to info.
func (c Config) level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
