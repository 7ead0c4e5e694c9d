package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("MAX_BODY_BYTES", "")
	t.Setenv("SHUTDOWN_TIMEOUT", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "")

	cfg := Load()
	if cfg.RateLimitPerMin != 120 {
		t.Fatalf("expected 120, got %d", cfg.RateLimitPerMin)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.Addr)
	}
	if cfg.MaxBodyBytes != 1048576 {
		t.Fatalf("expected 1048576, got %d", cfg.MaxBodyBytes)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected 10s, got %v", cfg.ShutdownTimeout)
	}
}

func TestLoadOverridesAndBadValues(t *testing.T) {
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("DB_MAX_CONNS", "not-a-number")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg := Load()
	if cfg.Addr != ":9090" || cfg.RunMigrations {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.DBMaxConns != 10 {
		t.Fatalf("expected fallback 10, got %d", cfg.DBMaxConns)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("expected 3s, got %v", cfg.ShutdownTimeout)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{DatabaseURL: "postgres://localhost/geoattend", MaxBodyBytes: 4096, DBMaxConns: 5, ShutdownTimeout: time.Second}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	negativeLimit := cfg
	negativeLimit.RateLimitPerMin = -1
	if err := negativeLimit.Validate(); err == nil {
		t.Fatal("expected error for negative rate limit")
	}

	missingDB := cfg
	missingDB.DatabaseURL = " "
	if err := missingDB.Validate(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}

	prod := cfg
	prod.Environment = "production"
	if err := prod.Validate(); err == nil {
		t.Fatal("expected error for missing encryption key in production")
	}
	prod.DataEncryptionKey = "secret"
	if err := prod.Validate(); err != nil {
		t.Fatalf("expected valid production config, got %v", err)
	}
}

func TestTrustedProxyPrefixes(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.0/8, 192.168.1.10 ,,")
	cfg := Load()
	if len(cfg.TrustedProxies) != 2 {
		t.Fatalf("expected 2 entries, got %v", cfg.TrustedProxies)
	}
	prefixes, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if prefixes[0].String() != "10.0.0.0/8" || prefixes[1].String() != "192.168.1.10/32" {
		t.Fatalf("unexpected prefixes %v", prefixes)
	}

	bad := Config{DatabaseURL: "postgres://localhost/geoattend", MaxBodyBytes: 4096, DBMaxConns: 5, ShutdownTimeout: time.Second, TrustedProxies: []string{"proxy.internal"}}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for invalid trusted proxy")
	}
}
