// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env           string         // APP_ENV, e.g. "dev", "prod"
	Port          string         // APP_PORT
	JWTSecret     string         // JWT_SECRET
	AccessTTLMin  int            // ACCESS_TOKEN_TTL_MIN
	BcryptCost    int            // BCRYPT_COST
	AdminUsername string         // ADMIN_USERNAME, seeded at startup
	AdminPassword string         // ADMIN_PASSWORD
	LogLevel      string         // LOG_LEVEL
	LogFormat     string         // LOG_FORMAT: json or text
	ReportTZ      *time.Location // REPORT_TIMEZONE, used for report day boundaries
	RollupAt      string         // SALES_ROLLUP_AT, HH:MM in ReportTZ
}

// LoadDotEnv loads variables from the given files into the process
// environment without overriding ones that are already set.  Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration values from the environment.  APP_PORT and
// JWT_SECRET are required; everything else has a default.
func Load() (Config, error) {
	var missing []string
	must := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := Config{
		Env:           getenv("APP_ENV", "dev"),
		Port:          must("APP_PORT"),
		JWTSecret:     must("JWT_SECRET"),
		AccessTTLMin:  envInt("ACCESS_TOKEN_TTL_MIN", 60),
		BcryptCost:    envInt("BCRYPT_COST", 10),
		AdminUsername: getenv("ADMIN_USERNAME", "admin"),
		AdminPassword: getenv("ADMIN_PASSWORD", "admin123"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		LogFormat:     getenv("LOG_FORMAT", "json"),
		RollupAt:      getenv("SALES_ROLLUP_AT", "00:05"),
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if cfg.AccessTTLMin <= 0 {
		return Config{}, fmt.Errorf("invalid ACCESS_TOKEN_TTL_MIN: %d", cfg.AccessTTLMin)
	}

	tz := getenv("REPORT_TIMEZONE", "Asia/Manila")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", tz, err)
	}
	cfg.ReportTZ = loc

	if _, _, err := ParseClock(cfg.RollupAt); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseClock parses an HH:MM wall-clock time.
func ParseClock(s string) (hour, minute uint, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock %q: want HH:MM", s)
	}
	return uint(t.Hour()), uint(t.Minute()), nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}
