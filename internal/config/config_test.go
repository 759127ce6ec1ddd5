package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("CACHE_TTL", "")

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.ServerPort)
	}
	if cfg.CacheTTL != 1800 {
		t.Errorf("expected default cache TTL 1800, got %d", cfg.CacheTTL)
	}
}

func TestLoadReadsCacheTTL(t *testing.T) {
	t.Setenv("CACHE_TTL", "60")

	cfg := Load()
	if cfg.CacheTTL != 60 {
		t.Errorf("expected cache TTL 60 from environment, got %d", cfg.CacheTTL)
	}
}

func TestLoadIgnoresMalformedCacheTTL(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")

	cfg := Load()
	if cfg.CacheTTL != 1800 {
		t.Errorf("expected fallback to default 1800, got %d", cfg.CacheTTL)
	}
}
