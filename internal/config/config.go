package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/subosito/gotenv"
)

const (
	StorageMemory = "memory"
	StorageMySQL  = "mysql"
	StorageSQLite = "sqlite"
)

type Config struct {
	Env      string
	Port     string
	LogLevel string
	LogDir   string
	Timezone string

	Storage    string
	SQLitePath string

	DBUser  string
	DBPass  string
	DBHost  string
	DBPort  string
	DBName  string
	FullDSN string

	MoodRulesFile string
	// bcrypt hash; empty disables the passcode check
	PasscodeHash string
	SeedSamples  bool
}

// Load reads a .env file when present, then the process environment.
func Load() (*Config, error) {
	if err := gotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	cfg := &Config{
		Env:      strings.ToLower(getEnv("APP_ENV", "development")),
		Port:     getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogDir:   getEnv("LOG_DIR", "./logging/logs"),
		Timezone: getEnv("APP_TIMEZONE", "Local"),

		Storage:    strings.ToLower(getEnv("STORAGE", StorageMemory)),
		SQLitePath: getEnv("SQLITE_PATH", "./data/mood_ledger.db"),

		DBUser:  os.Getenv("DB_USER"),
		DBPass:  os.Getenv("DB_PASS"),
		DBHost:  os.Getenv("DB_HOST"),
		DBPort:  os.Getenv("DB_PORT"),
		DBName:  getEnv("DB_NAME", "mood_ledger"),
		FullDSN: os.Getenv("FULL_DSN"),

		MoodRulesFile: os.Getenv("MOOD_RULES_FILE"),
		PasscodeHash:  os.Getenv("APP_PASSCODE_HASH"),
		SeedSamples:   getEnvBool("SEED_SAMPLES", true),
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := c.Location(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	switch c.Storage {
	case StorageMemory:
	case StorageSQLite:
		if c.SQLitePath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite storage")
		} else if dir := filepath.Dir(c.SQLitePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	case StorageMySQL:
		if c.FullDSN == "" && (c.DBUser == "" || c.DBPass == "" || c.DBHost == "" || c.DBPort == "") {
			errors = append(errors, "either FULL_DSN or DB_USER, DB_PASS, DB_HOST and DB_PORT are required for mysql storage")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid storage '%s': must be one of [memory mysql sqlite]", c.Storage))
	}

	if c.MoodRulesFile != "" {
		if _, err := os.Stat(c.MoodRulesFile); err != nil {
			errors = append(errors, fmt.Sprintf("mood rules file is not readable: %s", c.MoodRulesFile))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Location is the timezone calendar days and months are computed in.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
