package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validConfig = `
port: "8080"
logLevel: "debug"
bookServiceURL: "http://books:8081"
cartServiceURL: "http://carts:8082"
redisAddr: "redis:6379"
addToCartCooldownSeconds: 30
visitTtlMinutes: 30
visitRateLimitPerMinute: 60
sessionRateLimitPerMinute: 10
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.BookServiceURL != "http://books:8081" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.AddToCartCooldownSeconds != 30 || cfg.VisitRateLimitPerMinute != 60 {
		t.Fatalf("unexpected numeric config: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_PORT", "9090")
	t.Setenv("STOREFRONT_BOOK_SERVICE_URL", "http://other-books:8081")
	t.Setenv("STOREFRONT_COOLDOWN_SECONDS", "10")

	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("port = %q, want env override 9090", cfg.Port)
	}
	if cfg.BookServiceURL != "http://other-books:8081" {
		t.Fatalf("bookServiceURL = %q, want env override", cfg.BookServiceURL)
	}
	if cfg.AddToCartCooldownSeconds != 10 {
		t.Fatalf("cooldown = %d, want env override 10", cfg.AddToCartCooldownSeconds)
	}
}

func TestLoadRejectsMissingUpstreams(t *testing.T) {
	if _, err := Load(writeConfig(t, `port: "8080"`)); err == nil {
		t.Fatal("expected validation error for missing upstream URLs")
	}
}

func TestParseSessionTTL(t *testing.T) {
	if ttl, err := ParseSessionTTL(""); err != nil || ttl != 24*time.Hour {
		t.Fatalf("empty ttl = (%v, %v), want 24h default", ttl, err)
	}
	if ttl, err := ParseSessionTTL("30m"); err != nil || ttl != 30*time.Minute {
		t.Fatalf("ttl = (%v, %v), want 30m", ttl, err)
	}
	if _, err := ParseSessionTTL("-1h"); err == nil {
		t.Fatal("expected error for negative ttl")
	}
	if _, err := ParseSessionTTL("soon"); err == nil {
		t.Fatal("expected error for junk ttl")
	}
}
