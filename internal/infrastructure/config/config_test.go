package config_test

import (
	"testing"
	"time"

	"github.com/iho/stockledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.LedgerPrecision != 2 {
		t.Fatalf("expected default precision 2, got %d", cfg.LedgerPrecision)
	}

	if cfg.InvoiceLockTTL != 30*time.Second || cfg.SettingsCacheTTL != 5*time.Minute {
		t.Fatalf("unexpected lock/cache ttl: %s/%s", cfg.InvoiceLockTTL, cfg.SettingsCacheTTL)
	}

	if cfg.OutboxPollInterval != 5*time.Second || cfg.OutboxBatchSize != 100 {
		t.Fatalf("unexpected outbox defaults: %s/%d", cfg.OutboxPollInterval, cfg.OutboxBatchSize)
	}

	if cfg.DatabaseLockTimeout != 5*time.Second {
		t.Fatalf("expected default lock timeout 5s, got %s", cfg.DatabaseLockTimeout)
	}

	if cfg.RedisPoolSize != 20 || cfg.RedisDialTimeout != 5*time.Second || cfg.RedisReadTimeout != 3*time.Second {
		t.Fatalf("unexpected redis defaults: pool=%d dial=%s read=%s", cfg.RedisPoolSize, cfg.RedisDialTimeout, cfg.RedisReadTimeout)
	}

	if cfg.MigrationsPath != "migrations" {
		t.Fatalf("expected default migrations path, got %s", cfg.MigrationsPath)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("LEDGER_PRECISION", "3")
	t.Setenv("INVOICE_LOCK_TTL", "10s")
	t.Setenv("RATE_LIMIT_RPS", "0")
	t.Setenv("REDIS_POOL_SIZE", "4")
	t.Setenv("DATABASE_LOCK_TIMEOUT", "750ms")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.LedgerPrecision != 3 || cfg.InvoiceLockTTL != 10*time.Second {
		t.Fatalf("expected ledger overrides, got precision=%d lock=%s", cfg.LedgerPrecision, cfg.InvoiceLockTTL)
	}

	if cfg.RedisPoolSize != 4 || cfg.DatabaseLockTimeout != 750*time.Millisecond {
		t.Fatalf("expected pool/lock overrides, got pool=%d lock=%s", cfg.RedisPoolSize, cfg.DatabaseLockTimeout)
	}

	if cfg.RateLimitRPS != 0 {
		t.Fatalf("expected rate limiting disabled, got %v", cfg.RateLimitRPS)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"duration", "HTTP_READ_TIMEOUT", "not-a-duration"},
		{"precision", "LEDGER_PRECISION", "two"},
		{"batch size", "OUTBOX_BATCH_SIZE", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := config.Load(); err == nil {
				t.Fatalf("expected error for invalid %s", tt.key)
			}
		})
	}
}
