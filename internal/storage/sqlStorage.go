package storage

import (
	"context"
	"database/sql"
	"fmt"

	appErrors "github.com/fatali-fataliyev/mood_ledger/errors"
	"github.com/fatali-fataliyev/mood_ledger/internal/contextutil"
	"github.com/fatali-fataliyev/mood_ledger/internal/ledger"
	"github.com/fatali-fataliyev/mood_ledger/logging"
)

// SQLStorage keeps records and the budget in a MySQL or SQLite database.
// Writes replace the whole collection inside one transaction.
type SQLStorage struct {
	db          *sql.DB
	storageType string
}

func NewSQLStorage(db *sql.DB, storageType string) *SQLStorage {
	return &SQLStorage{db: db, storageType: storageType}
}

func (sqlStrg *SQLStorage) GetStorageType() string {
	return sqlStrg.storageType
}

func (sqlStrg *SQLStorage) Close() error {
	return sqlStrg.db.Close()
}

func internalError(message string) error {
	return appErrors.ErrorResponse{
		Code:    appErrors.ErrInternal,
		Message: message,
	}
}

func (sqlStrg *SQLStorage) LoadRecords(ctx context.Context) ([]ledger.Record, error) {
	traceID := contextutil.TraceIDFromContext(ctx)
	query := "SELECT id, amount, category, ts, note, mood, img FROM records ORDER BY ts, id;"
	rows, err := sqlStrg.db.QueryContext(ctx, query)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to query records in Storage.LoadRecords() function | Error: %v", traceID, err)
		return nil, internalError("Failed to load records, try again later.")
	}
	defer rows.Close()

	records := []ledger.Record{}
	for rows.Next() {
		var r dbRecord
		if err := rows.Scan(&r.ID, &r.Amount, &r.Category, &r.Ts, &r.Note, &r.Mood, &r.Img); err != nil {
			logging.Logger.Errorf("[TraceID=%s] | failed to scan record in Storage.LoadRecords() function | Error: %v", traceID, err)
			return nil, internalError("Failed to load records, try again later.")
		}
		records = append(records, r.toRecord())
	}
	if err := rows.Err(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to iterate records in Storage.LoadRecords() function | Error: %v", traceID, err)
		return nil, internalError("Failed to load records, try again later.")
	}
	return records, nil
}

func (sqlStrg *SQLStorage) SaveRecords(ctx context.Context, records []ledger.Record) error {
	traceID := contextutil.TraceIDFromContext(ctx)
	err := sqlStrg.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM records;"); err != nil {
			return fmt.Errorf("delete records: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, "INSERT INTO records (id, amount, category, ts, note, mood, img) VALUES (?, ?, ?, ?, ?, ?, ?);")
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range records {
			if _, err := stmt.ExecContext(ctx, r.ID, r.Money().InexactFloat64(), string(r.Category), r.Timestamp, r.Note, string(r.Mood), r.Image); err != nil {
				return fmt.Errorf("insert record %s: %w", r.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to save records in Storage.SaveRecords() function | Error: %v", traceID, err)
		return internalError("Failed to save records, try again later.")
	}
	return nil
}

func (sqlStrg *SQLStorage) LoadBudgetConfig(ctx context.Context) (ledger.BudgetConfig, bool, error) {
	traceID := contextutil.TraceIDFromContext(ctx)
	rows, err := sqlStrg.db.QueryContext(ctx, "SELECT category, month, ceiling FROM budget_config;")
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to query budget in Storage.LoadBudgetConfig() function | Error: %v", traceID, err)
		return ledger.BudgetConfig{}, false, internalError("Failed to load budget, try again later.")
	}
	defer rows.Close()

	cfg := ledger.BudgetConfig{Values: map[ledger.Category]float64{}}
	found := false
	for rows.Next() {
		var row dbBudgetRow
		if err := rows.Scan(&row.Category, &row.Month, &row.Ceiling); err != nil {
			logging.Logger.Errorf("[TraceID=%s] | failed to scan budget in Storage.LoadBudgetConfig() function | Error: %v", traceID, err)
			return ledger.BudgetConfig{}, false, internalError("Failed to load budget, try again later.")
		}
		month, err := ledger.ParseMonthKey(row.Month)
		if err != nil {
			logging.Logger.Errorf("[TraceID=%s] | invalid budget month %q in Storage.LoadBudgetConfig() function | Error: %v", traceID, row.Month, err)
			return ledger.BudgetConfig{}, false, internalError("Stored budget is corrupted.")
		}
		cfg.Month = month
		cfg.Values[ledger.Category(row.Category)] = row.Ceiling
		found = true
	}
	if err := rows.Err(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to iterate budget in Storage.LoadBudgetConfig() function | Error: %v", traceID, err)
		return ledger.BudgetConfig{}, false, internalError("Failed to load budget, try again later.")
	}
	if !found {
		return ledger.BudgetConfig{}, false, nil
	}
	return cfg, true, nil
}

func (sqlStrg *SQLStorage) SaveBudgetConfig(ctx context.Context, cfg ledger.BudgetConfig) error {
	traceID := contextutil.TraceIDFromContext(ctx)
	month := cfg.Month.String()
	err := sqlStrg.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM budget_config;"); err != nil {
			return fmt.Errorf("delete budget: %w", err)
		}
		for _, c := range ledger.Categories {
			v, ok := cfg.Values[c]
			if !ok {
				continue
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO budget_config (category, month, ceiling) VALUES (?, ?, ?);", string(c), month, v); err != nil {
				return fmt.Errorf("insert budget for %s: %w", c, err)
			}
		}
		return nil
	})
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to save budget in Storage.SaveBudgetConfig() function | Error: %v", traceID, err)
		return internalError("Failed to save budget, try again later.")
	}
	return nil
}

func (sqlStrg *SQLStorage) Reset(ctx context.Context) error {
	traceID := contextutil.TraceIDFromContext(ctx)
	err := sqlStrg.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM records;"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM budget_config;")
		return err
	})
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to reset storage in Storage.Reset() function | Error: %v", traceID, err)
		return internalError("Failed to reset data, try again later.")
	}
	return nil
}

func (sqlStrg *SQLStorage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := sqlStrg.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
