package infra

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("COUNTER_STORE", "")
	t.Setenv("DEMO_STORE", "")
	t.Setenv("REDIS_URL", "")
}

func TestLoadConfigQuotaDefaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("QUOTA_FREE_LIMIT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Quota.FreeLimit != 5 {
		t.Fatalf("FreeLimit = %d, want 5", cfg.Quota.FreeLimit)
	}
	if cfg.Quota.MaxRetries != 3 {
		t.Fatalf("MaxRetries = %d, want 3", cfg.Quota.MaxRetries)
	}
	if cfg.Quota.IncrementTimeout != 10*time.Second {
		t.Fatalf("IncrementTimeout = %s, want 10s", cfg.Quota.IncrementTimeout)
	}
	if cfg.Quota.BackoffBase != time.Second || cfg.Quota.BackoffMax != 5*time.Second {
		t.Fatalf("backoff mismatch: base=%s max=%s", cfg.Quota.BackoffBase, cfg.Quota.BackoffMax)
	}
	if cfg.CounterStore != CounterStorePostgres || cfg.DemoStore != DemoStoreFile {
		t.Fatalf("store defaults mismatch: %q %q", cfg.CounterStore, cfg.DemoStore)
	}
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}

func TestLoadConfigRedisStoreRequiresURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("COUNTER_STORE", "redis")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when REDIS_URL is missing")
	}

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.CounterStore != CounterStoreRedis {
		t.Fatalf("CounterStore = %q, want redis", cfg.CounterStore)
	}
}

func TestLoadConfigRejectsUnknownDemoStore(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DEMO_STORE", "indexeddb")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported DEMO_STORE")
	}
}

func TestLoadConfigSplitsCORSOrigins(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, ,http://localhost:5173 ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	expected := []string{"https://app.example.com", "http://localhost:5173"}
	if len(cfg.CORSAllowedOrigins) != len(expected) {
		t.Fatalf("CORSAllowedOrigins mismatch: got %#v want %#v", cfg.CORSAllowedOrigins, expected)
	}
	for i, origin := range expected {
		if cfg.CORSAllowedOrigins[i] != origin {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], origin)
		}
	}
}
