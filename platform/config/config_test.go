package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/realty")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ALLOW_ALL", "false")
	t.Setenv("CORS_ORIGINS", "http://localhost:4200")
}

func TestLoadAppliesMatchingDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.GetMatchMaxCandidates() != 500 {
		t.Fatalf("expected default max candidates 500, got %d", cfg.GetMatchMaxCandidates())
	}
	if cfg.GetMatchEvaluationTimeout() != 30*time.Second {
		t.Fatalf("expected default timeout 30s, got %s", cfg.GetMatchEvaluationTimeout())
	}
	if cfg.GetContactPhonePolicy() != "snapshot" {
		t.Fatalf("expected snapshot policy by default, got %q", cfg.GetContactPhonePolicy())
	}
	if cfg.GetPhoneDefaultRegion() != "BR" {
		t.Fatalf("expected BR default region, got %q", cfg.GetPhoneDefaultRegion())
	}
}

func TestLoadRejectsUnknownContactPolicy(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CONTACT_PHONE_POLICY", "live")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown contact policy to be rejected")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected missing DATABASE_URL to be rejected")
	}
}

func TestAsyncTriggersFollowRedisURL(t *testing.T) {
	cfg := &Config{}
	if cfg.IsAsyncTriggersEnabled() {
		t.Fatal("expected async triggers disabled without REDIS_URL")
	}
	cfg.RedisURL = "redis://localhost:6379/0"
	if !cfg.IsAsyncTriggersEnabled() {
		t.Fatal("expected async triggers enabled with REDIS_URL")
	}
}
