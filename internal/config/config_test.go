package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadRequiresRedis(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without REDIS_URL")
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("CLOCK_INITIAL_SEC", "300")
	t.Setenv("TICK_INTERVAL_MS", "-5")
	t.Setenv("SESSION_TTL_SEC", "abc")
	t.Setenv("REALTIME_BASE_URL", "https://rt.example.com/ ")
	t.Setenv("ALLOWED_ORIGINS", " a.example.com, ,b.example.com")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.ClockInitialSec != 300 || cfg.TickInterval() != time.Second || cfg.SessionTTL() != 24*time.Hour {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.RealtimeBaseURL != "https://rt.example.com" {
		t.Fatalf("realtime base = %q", cfg.RealtimeBaseURL)
	}
	if diff := cmp.Diff([]string{"a.example.com", "b.example.com"}, cfg.AllowedOrigins); diff != "" {
		t.Fatalf("origins (-want +got):\n%s", diff)
	}
}
