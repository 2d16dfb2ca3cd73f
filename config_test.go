package uauth_test

import (
	"testing"
	"time"

	oa "github.com/Amsiam/uauth"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("UAUTH_SECRET_KEY", "env-secret")
	t.Setenv("UAUTH_ACCESS_TOKEN_TTL", "15m")
	t.Setenv("UAUTH_CORS_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("UAUTH_GITHUB_CLIENT_ID", "gh-id")
	t.Setenv("UAUTH_GITHUB_CLIENT_SECRET", "gh-secret")

	cfg, err := oa.ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}

	if cfg.SecretKey != "env-secret" {
		t.Errorf("SecretKey = %q", cfg.SecretKey)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 168*time.Hour {
		t.Errorf("RefreshTokenTTL default = %v", cfg.RefreshTokenTTL)
	}
	if cfg.AppName != "uauth" || cfg.ListenAddr != ":8000" {
		t.Errorf("defaults wrong: app %q addr %q", cfg.AppName, cfg.ListenAddr)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "https://a.example.com" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}

	registry := cfg.ProviderRegistry()
	enabled := registry.Enabled()
	if len(enabled) != 1 || enabled[0].Name != "github" {
		t.Errorf("enabled providers = %v", enabled)
	}
}

func TestConfigFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("UAUTH_SECRET_KEY", "")

	if _, err := oa.ConfigFromEnv(); err == nil {
		t.Fatal("expected error for missing secret key")
	}
}
