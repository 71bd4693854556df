package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/retailhub/backoffice/internal/core/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "0123456789abcdef0123",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Auth.TokenTTL != 12*time.Hour {
		t.Fatalf("unexpected defaults: port=%s ttl=%s", cfg.Port, cfg.Auth.TokenTTL)
	}
	if cfg.Role() != domain.RoleUser {
		t.Fatalf("expected default role user, got %s", cfg.Role())
	}
	if cfg.Auth.MaxFailures != 5 || cfg.Auth.FailureWindow != 15*time.Minute {
		t.Fatalf("unexpected throttle defaults: %+v", cfg.Auth)
	}
	if cfg.Bootstrap.Enabled() {
		t.Fatalf("bootstrap must be disabled without credentials")
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development env by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":               "0123456789abcdef0123",
		"TOKEN_TTL":                "30m",
		"CORS_ORIGINS":             "https://a.example,https://b.example",
		"BOOTSTRAP_ADMIN_EMAIL":    "root@example.com",
		"BOOTSTRAP_ADMIN_PASSWORD": "changeme",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Fatalf("expected 30m ttl, got %s", cfg.Auth.TokenTTL)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.CORSOrigins)
	}
	if !cfg.Bootstrap.Enabled() {
		t.Fatalf("expected bootstrap enabled")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "JWT_SECRET"},
		{"short secret", map[string]string{"JWT_SECRET": "short"}, "at least"},
		{"unknown role", map[string]string{"JWT_SECRET": "0123456789abcdef0123", "DEFAULT_ROLE": "root"}, "DEFAULT_ROLE"},
		{"zero failures", map[string]string{"JWT_SECRET": "0123456789abcdef0123", "LOGIN_MAX_FAILURES": "0"}, "LOGIN_MAX_FAILURES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(tt.env))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
