package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPAddr string

	RedisURL    string
	DatabaseURL string

	RealtimeBaseURL   string
	RealtimeAuthToken string

	ClockInitialSec int
	SessionTTLSec   int
	TickIntervalMS  int
	HistoryLimit    int

	MessagesDir    string
	AllowedOrigins []string
}

func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSec) * time.Second
}

func (c *AppConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:        ":8080",
		ClockInitialSec: 600,
		SessionTTLSec:   86400,
		TickIntervalMS:  1000,
		HistoryLimit:    20,
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.RealtimeBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("REALTIME_BASE_URL")), "/")
	cfg.RealtimeAuthToken = strings.TrimSpace(os.Getenv("REALTIME_AUTH_TOKEN"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))
	cfg.AllowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))

	positiveInt("CLOCK_INITIAL_SEC", &cfg.ClockInitialSec)
	positiveInt("SESSION_TTL_SEC", &cfg.SessionTTLSec)
	positiveInt("TICK_INTERVAL_MS", &cfg.TickIntervalMS)
	positiveInt("HISTORY_LIMIT", &cfg.HistoryLimit)

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	return cfg, nil
}

// positiveInt overwrites dst when the variable holds a positive integer;
// anything else keeps the default.
func positiveInt(key string, dst *int) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		*dst = n
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
