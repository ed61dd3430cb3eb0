package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fatali-fataliyev/mood_ledger/internal/config"
	"github.com/fatali-fataliyev/mood_ledger/logging"
	"github.com/go-sql-driver/mysql"
)

const (
	MYSQL_CONNECT_ATTEMPTS = 15
	MYSQL_RETRY_INTERVAL   = 3 * time.Second
)

// mysqlDSNs returns the server-level DSN used to create the database and
// the DSN of the database itself.
func mysqlDSNs(cfg *config.Config) (adminDsn string, finalDsn string, dbname string, err error) {
	var dsnCfg *mysql.Config
	if cfg.FullDSN != "" {
		dsnCfg, err = mysql.ParseDSN(cfg.FullDSN)
		if err != nil {
			return "", "", "", fmt.Errorf("invalid FULL_DSN: %w", err)
		}
	} else {
		if cfg.DBUser == "" || cfg.DBPass == "" || cfg.DBHost == "" || cfg.DBPort == "" {
			return "", "", "", fmt.Errorf("missing required DB environment variables")
		}
		dsnCfg = mysql.NewConfig()
		dsnCfg.User = cfg.DBUser
		dsnCfg.Passwd = cfg.DBPass
		dsnCfg.Net = "tcp"
		dsnCfg.Addr = cfg.DBHost + ":" + cfg.DBPort
	}

	dbname = dsnCfg.DBName
	if dbname == "" {
		dbname = cfg.DBName
	}
	if dbname == "" {
		dbname = "mood_ledger"
	}

	dsnCfg.DBName = ""
	adminDsn = dsnCfg.FormatDSN()
	dsnCfg.DBName = dbname
	finalDsn = dsnCfg.FormatDSN()
	return adminDsn, finalDsn, dbname, nil
}

// InitMySQL waits for the server, creates the database when missing, runs
// the migrations and returns a handle to the database.
func InitMySQL(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	adminDsn, finalDsn, dbname, err := mysqlDSNs(cfg)
	if err != nil {
		return nil, err
	}

	logging.Logger.Info("Connecting to MySQL server for initialization...")
	adminDb, err := sql.Open(StorageTypeMySQL, adminDsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open admin mysql handle: %w", err)
	}
	defer adminDb.Close()

	connected := false
	for i := 0; i < MYSQL_CONNECT_ATTEMPTS; i++ {
		if err := adminDb.PingContext(ctx); err == nil {
			connected = true
			break
		}
		logging.Logger.Warnf("Database not ready, retrying... (%d/%d)", i+1, MYSQL_CONNECT_ATTEMPTS)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(MYSQL_RETRY_INTERVAL):
		}
	}
	if !connected {
		return nil, fmt.Errorf("database unreachable after multiple attempts")
	}

	var dbnameExistence string
	checkDbnameExistQuery := "SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?"
	err = adminDb.QueryRowContext(ctx, checkDbnameExistQuery, dbname).Scan(&dbnameExistence)
	if err == sql.ErrNoRows {
		logging.Logger.Infof("Database '%s' does not exist, creating...", dbname)
		createDbSql := fmt.Sprintf("CREATE DATABASE `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_general_ci;", dbname)
		if _, err := adminDb.ExecContext(ctx, createDbSql); err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to check database existence: %w", err)
	}

	logging.Logger.Info("Running migrations...")
	if err := RunMigrations(StorageTypeMySQL, finalDsn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.Logger.Info("Connecting to database...")
	db, err := sql.Open(StorageTypeMySQL, finalDsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database handle: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logging.Logger.Info("Connected to database successfully")
	return db, nil
}
