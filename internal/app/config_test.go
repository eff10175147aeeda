package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.HTTPAddr != ":3000" {
		t.Errorf("HTTPAddr = %q, want :3000", cfg.HTTPAddr)
	}
	if cfg.RoomIdleTimeout != 5*time.Minute {
		t.Errorf("RoomIdleTimeout = %v, want 5m", cfg.RoomIdleTimeout)
	}
	if cfg.StaticDir != "./public" {
		t.Errorf("StaticDir = %q, want ./public", cfg.StaticDir)
	}
	if len(cfg.CORSAllow) == 0 {
		t.Error("CORSAllow empty")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("ROOM_IDLE_TIMEOUT", "30s")
	t.Setenv("CORS_ALLOW", "http://a.example, http://b.example ,")

	cfg := LoadConfig()
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q, want :9999", cfg.HTTPAddr)
	}
	if cfg.RoomIdleTimeout != 30*time.Second {
		t.Errorf("RoomIdleTimeout = %v, want 30s", cfg.RoomIdleTimeout)
	}
	if len(cfg.CORSAllow) != 2 || cfg.CORSAllow[1] != "http://b.example" {
		t.Errorf("CORSAllow = %v", cfg.CORSAllow)
	}
}

func TestLoadConfigBadDurationFallsBack(t *testing.T) {
	t.Setenv("ROOM_IDLE_TIMEOUT", "not-a-duration")
	cfg := LoadConfig()
	if cfg.RoomIdleTimeout != 5*time.Minute {
		t.Errorf("RoomIdleTimeout = %v, want default 5m", cfg.RoomIdleTimeout)
	}
}
