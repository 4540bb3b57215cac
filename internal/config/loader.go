package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort    int
	SQLiteDSN   string
	SessionTTL  time.Duration
	OpenHour    int
	CloseHour   int
	SlotMinutes int
}

// Load parses configuration values from the current process environment.
//
// Every field has a sensible default; set values are validated and all
// offending variables are reported together.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:    8080,
		SQLiteDSN:   "file:roombooking.db?_foreign_keys=on",
		SessionTTL:  24 * time.Hour,
		OpenHour:    8,
		CloseHour:   18,
		SlotMinutes: 60,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ROOMBOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ROOMBOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ROOMBOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("ROOMBOOKING_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "ROOMBOOKING_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if openValue := strings.TrimSpace(os.Getenv("ROOMBOOKING_OPEN_HOUR")); openValue != "" {
		open, err := strconv.Atoi(openValue)
		if err != nil || open < 0 || open > 23 {
			invalid = append(invalid, "ROOMBOOKING_OPEN_HOUR")
		} else {
			cfg.OpenHour = open
		}
	}

	if closeValue := strings.TrimSpace(os.Getenv("ROOMBOOKING_CLOSE_HOUR")); closeValue != "" {
		closeHour, err := strconv.Atoi(closeValue)
		if err != nil || closeHour < 1 || closeHour > 24 {
			invalid = append(invalid, "ROOMBOOKING_CLOSE_HOUR")
		} else {
			cfg.CloseHour = closeHour
		}
	}

	if slotValue := strings.TrimSpace(os.Getenv("ROOMBOOKING_SLOT_MINUTES")); slotValue != "" {
		minutes, err := strconv.Atoi(slotValue)
		if err != nil || minutes <= 0 || minutes > 24*60 {
			invalid = append(invalid, "ROOMBOOKING_SLOT_MINUTES")
		} else {
			cfg.SlotMinutes = minutes
		}
	}

	if cfg.CloseHour <= cfg.OpenHour {
		invalid = append(invalid, "ROOMBOOKING_OPEN_HOUR/ROOMBOOKING_CLOSE_HOUR")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
