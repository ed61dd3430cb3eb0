package storage

import (
	"database/sql"
	"fmt"

	"github.com/fatali-fataliyev/mood_ledger/logging"
	_ "modernc.org/sqlite"
)

// OpenSQLite migrates and opens the database file at path.
func OpenSQLite(path string) (*sql.DB, error) {
	logging.Logger.Infof("Running migrations on %s...", path)
	if err := RunMigrations(StorageTypeSQLite, path); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := sql.Open(StorageTypeSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return db, nil
}
