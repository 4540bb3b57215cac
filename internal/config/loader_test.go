package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"ROOMBOOKING_HTTP_PORT",
			"ROOMBOOKING_SQLITE_DSN",
			"ROOMBOOKING_SESSION_TTL",
			"ROOMBOOKING_OPEN_HOUR",
			"ROOMBOOKING_CLOSE_HOUR",
			"ROOMBOOKING_SLOT_MINUTES",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:roombooking.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default TTL of 24h, got %v", cfg.SessionTTL)
		}
		if cfg.OpenHour != 8 || cfg.CloseHour != 18 || cfg.SlotMinutes != 60 {
			t.Fatalf("unexpected default operating window: %+v", cfg)
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("ROOMBOOKING_HTTP_PORT", "9090")
		t.Setenv("ROOMBOOKING_SQLITE_DSN", "file:/tmp/roombooking.db")
		t.Setenv("ROOMBOOKING_SESSION_TTL", "1h30m")
		t.Setenv("ROOMBOOKING_OPEN_HOUR", "9")
		t.Setenv("ROOMBOOKING_CLOSE_HOUR", "17")
		t.Setenv("ROOMBOOKING_SLOT_MINUTES", "30")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/roombooking.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 90*time.Minute {
			t.Fatalf("expected TTL of 90m, got %v", cfg.SessionTTL)
		}
		if cfg.OpenHour != 9 || cfg.CloseHour != 17 || cfg.SlotMinutes != 30 {
			t.Fatalf("unexpected operating window: %+v", cfg)
		}
	})

	t.Run("reports every invalid variable", func(t *testing.T) {
		t.Setenv("ROOMBOOKING_HTTP_PORT", "not-a-port")
		t.Setenv("ROOMBOOKING_SESSION_TTL", "-5m")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		for _, key := range []string{"ROOMBOOKING_HTTP_PORT", "ROOMBOOKING_SESSION_TTL"} {
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected error to name %s, got %q", key, err.Error())
			}
		}
	})

	t.Run("rejects an inverted operating window", func(t *testing.T) {
		t.Setenv("ROOMBOOKING_OPEN_HOUR", "18")
		t.Setenv("ROOMBOOKING_CLOSE_HOUR", "8")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for inverted window")
		}
	})
}
