package config

import (
	"fmt"
	"os"
	"time"

	"github.com/csg33k/workreports/internal/domain"
)

// Config is read from the environment after .env has been loaded.
type Config struct {
	Port          string
	DBPath        string
	DefaultInputs domain.Inputs
	// OnTimeCutoff is an offset from local midnight in Location.
	OnTimeCutoff time.Duration
	Location     *time.Location
	SessionIdle  time.Duration
}

func Load() (Config, error) {
	cfg := Config{
		Port:   getenv("PORT", "8080"),
		DBPath: getenv("DB_PATH", "reports.db"),
		DefaultInputs: domain.Inputs{
			EmployeeAddress: getenv("DEFAULT_EMPLOYEE_ADDRESS", domain.DefaultEmployeeAddress),
			WorkingTime:     getenv("DEFAULT_WORKING_TIME", domain.DefaultWorkingTime),
		},
	}

	cutoff, err := ParseClock(getenv("ONTIME_CUTOFF", "09:00"))
	if err != nil {
		return Config{}, err
	}
	cfg.OnTimeCutoff = cutoff

	tz := getenv("REPORTS_TZ", "UTC")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return Config{}, fmt.Errorf("load REPORTS_TZ %q: %w", tz, err)
	}

	idle := getenv("SESSION_IDLE", "24h")
	if cfg.SessionIdle, err = time.ParseDuration(idle); err != nil {
		return Config{}, fmt.Errorf("parse SESSION_IDLE %q: %w", idle, err)
	}
	return cfg, nil
}

// ParseClock parses an "HH:MM" clock time into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
