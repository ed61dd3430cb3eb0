package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// RunMigrations applies the embedded migrations for storageType (mysql or
// sqlite) on a dedicated connection to dsn.
func RunMigrations(storageType string, dsn string) error {
	// Create a separate connection, closing the migrate instance closes it
	migrateDB, err := sql.Open(storageType, dsn)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	var driver database.Driver
	switch storageType {
	case StorageTypeMySQL:
		driver, err = migratemysql.WithInstance(migrateDB, &migratemysql.Config{})
	case StorageTypeSQLite:
		driver, err = sqlite.WithInstance(migrateDB, &sqlite.Config{})
	default:
		return fmt.Errorf("no migrations for storage type %q", storageType)
	}
	if err != nil {
		return fmt.Errorf("create %s driver: %w", storageType, err)
	}

	d, err := iofs.New(migrationsFS, "migrations/"+storageType)
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, storageType, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
