package configs_test

import (
	"testing"
	"time"

	"github.com/identitykit/account-service/configs"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("SENDGRID_API_KEY", "SG.test")
	t.Setenv("BASE_URL", "https://accounts.example.com")
	t.Setenv("VERIFICATION_TOKEN_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := configs.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected default port: %s", cfg.Server.Port)
	}
	if cfg.Verification.TokenExpiry != 24*time.Hour {
		t.Fatalf("unexpected default token expiry: %v", cfg.Verification.TokenExpiry)
	}
	if cfg.Verification.ResendLimit != 5*time.Minute {
		t.Fatalf("unexpected default resend limit: %v", cfg.Verification.ResendLimit)
	}
	if !cfg.Scheduler.Enabled {
		t.Fatal("expected scheduler enabled by default")
	}
	if cfg.Scheduler.HardDeleteAfter != 7*24*time.Hour {
		t.Fatalf("unexpected default hard-delete retention: %v", cfg.Scheduler.HardDeleteAfter)
	}
	if cfg.Database.DSN == "" {
		t.Fatal("expected DSN to be assembled")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("VERIFICATION_TOKEN_EXPIRY", "48")
	t.Setenv("RESEND_LIMIT_MINUTES", "10")
	t.Setenv("HARD_DELETE_DAYS", "30")
	t.Setenv("SCHEDULER_ENABLED", "false")

	cfg, err := configs.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Verification.TokenExpiry != 48*time.Hour {
		t.Fatalf("unexpected token expiry: %v", cfg.Verification.TokenExpiry)
	}
	if cfg.Verification.ResendLimit != 10*time.Minute {
		t.Fatalf("unexpected resend limit: %v", cfg.Verification.ResendLimit)
	}
	if cfg.Scheduler.HardDeleteAfter != 30*24*time.Hour {
		t.Fatalf("unexpected hard-delete retention: %v", cfg.Scheduler.HardDeleteAfter)
	}
	if cfg.Scheduler.Enabled {
		t.Fatal("expected scheduler disabled")
	}
}
