package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "APP_PORT", "STORAGE", "APP_TIMEZONE", "SEED_SAMPLES", "DB_NAME"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "mood_ledger", cfg.DBName)
	assert.True(t, cfg.SeedSamples)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORAGE", "SQLite")
	t.Setenv("SEED_SAMPLES", "false")
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.False(t, cfg.SeedSamples)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestConfig_Validate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name:   "valid memory config",
			config: Config{Port: "8080", Storage: StorageMemory, Timezone: "UTC"},
		},
		{
			name:   "valid sqlite config",
			config: Config{Port: "8080", Storage: StorageSQLite, SQLitePath: filepath.Join(dir, "nested", "db.sqlite")},
		},
		{
			name:   "valid mysql config with dsn",
			config: Config{Port: "8080", Storage: StorageMySQL, FullDSN: "u:p@tcp(localhost:3306)/mood_ledger"},
		},
		{
			name:        "invalid port",
			config:      Config{Port: "abc", Storage: StorageMemory},
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "port out of range",
			config:      Config{Port: "70000", Storage: StorageMemory},
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "unknown storage",
			config:      Config{Port: "8080", Storage: "mongo"},
			wantErr:     true,
			errorString: "invalid storage 'mongo'",
		},
		{
			name:        "mysql without credentials",
			config:      Config{Port: "8080", Storage: StorageMySQL, DBUser: "root"},
			wantErr:     true,
			errorString: "FULL_DSN",
		},
		{
			name:        "unknown timezone",
			config:      Config{Port: "8080", Storage: StorageMemory, Timezone: "Mars/Olympus"},
			wantErr:     true,
			errorString: "invalid timezone 'Mars/Olympus'",
		},
		{
			name:        "missing mood rules file",
			config:      Config{Port: "8080", Storage: StorageMemory, MoodRulesFile: filepath.Join(dir, "nope.yaml")},
			wantErr:     true,
			errorString: "mood rules file is not readable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}
