package config

import (
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "tareas")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "tareas")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.DB.Host != "localhost" || cfg.DB.Port != 5432 {
		t.Fatalf("unexpected DB defaults: %+v", cfg.DB)
	}
	if cfg.DB.MaxSize != 10 {
		t.Fatalf("DB_POOL_SIZE default = %d, want 10", cfg.DB.MaxSize)
	}
	if cfg.Auth.AccessTokenDuration != 15*time.Minute {
		t.Fatalf("access token duration default = %v", cfg.Auth.AccessTokenDuration)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Fatalf("session TTL default = %v", cfg.Session.TTL)
	}
	if cfg.Session.CookieName != "session_id" {
		t.Fatalf("cookie name default = %q", cfg.Session.CookieName)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("server port default = %q", cfg.Server.Port)
	}
}

func TestLoadConfigCollectsAllErrors(t *testing.T) {
	// Deliberately leave every required variable unset and poison a duration.
	t.Setenv("JWT_ACCESS_TOKEN_DURATION", "not-a-duration")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("expected an error with no required variables set")
	}
	msg := err.Error()
	for _, want := range []string{"DB_USER", "DB_PASSWORD", "DB_NAME", "JWT_SECRET", "JWT_ACCESS_TOKEN_DURATION"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error should mention %s, got:\n%s", want, msg)
		}
	}
}

func TestLoadConfigClampsPoolSize(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_POOL_SIZE", "500")

	// An out-of-range pool size is reported rather than silently accepted.
	_, err := LoadConfig()
	if err == nil || !strings.Contains(err.Error(), "DB_POOL_SIZE") {
		t.Fatalf("expected pool size error, got %v", err)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("PORT", "9000")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Fatalf("SESSION_TTL override = %v, want 30m", cfg.Session.TTL)
	}
	if cfg.Server.Port != "9000" {
		t.Fatalf("PORT override = %q, want 9000", cfg.Server.Port)
	}
}
