package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: "9090"
postgres:
  url: postgres://quiz@localhost/quizdb
redis:
  addr: localhost:6379
quiz:
  cacheTTL: 10m
submission:
  lockTTL: 5s
auth:
  secret: s3cret
  tokenTTL: 12h
log:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" || cfg.Auth.Secret != "s3cret" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if got := TTLDuration(cfg.Quiz.CacheTTL, time.Minute); got != 10*time.Minute {
		t.Fatalf("expected 10m cache ttl, got %v", got)
	}
	if got := TTLDuration(cfg.Submission.LockTTL, time.Minute); got != 5*time.Second {
		t.Fatalf("expected 5s lock ttl, got %v", got)
	}
}

func TestLoadSecretFromEnv(t *testing.T) {
	t.Setenv("QUIZHUB_AUTH_SECRET", "from-env")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.Secret != "from-env" {
		t.Fatalf("expected env secret, got %q", cfg.Auth.Secret)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for bad value, got %v", got)
	}
}
