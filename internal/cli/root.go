// Package cli holds the mood_ledger commands.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fatali-fataliyev/mood_ledger/internal/analytics"
	"github.com/fatali-fataliyev/mood_ledger/internal/budget"
	"github.com/fatali-fataliyev/mood_ledger/internal/config"
	"github.com/fatali-fataliyev/mood_ledger/internal/contextutil"
	"github.com/fatali-fataliyev/mood_ledger/internal/storage"
	"github.com/fatali-fataliyev/mood_ledger/logging"
)

// NewRootCmd builds the command tree. Every command loads the configuration
// and the logger before it runs.
func NewRootCmd() *cobra.Command {
	cfg := &config.Config{}

	root := &cobra.Command{
		Use:           "mood_ledger",
		Short:         "Mood-aware expense ledger",
		Long:          "mood_ledger records expenses with the mood behind them, tracks monthly budgets and warns when recent spending runs ahead of the usual pace.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			if err := logging.Init(loaded.LogLevel, loaded.Env, loaded.LogDir); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			*cfg = *loaded
			return nil
		},
	}

	root.AddCommand(
		newServeCmd(cfg),
		newReportCmd(cfg),
		newExportCmd(cfg),
		newPasscodeCmd(),
		newResetCmd(cfg),
	)
	return root
}

func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}

type app struct {
	tracker *budget.BudgetTracker
	close   func() error
}

// openApp connects the configured store and builds the tracker. Samples are
// seeded into an empty store when enabled.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	ctx = contextutil.WithTraceID(ctx, "")

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}

	var classifier analytics.Classifier
	if cfg.MoodRulesFile != "" {
		rules, err := analytics.LoadMoodRules(cfg.MoodRulesFile)
		if err != nil {
			return nil, err
		}
		classifier = analytics.NewKeywordClassifier(rules)
		logging.Logger.Infof("loaded %d mood rules from %s", len(rules), cfg.MoodRulesFile)
	}

	var store budget.Storage
	closeFn := func() error { return nil }
	switch cfg.Storage {
	case config.StorageMySQL:
		db, err := storage.InitMySQL(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		store, closeFn = storage.NewSQLStorage(db, storage.StorageTypeMySQL), db.Close
	case config.StorageSQLite:
		db, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		store, closeFn = storage.NewSQLStorage(db, storage.StorageTypeSQLite), db.Close
	default:
		store = storage.NewInMemoryStorage()
	}

	bt := budget.NewBudgetTracker(store, analytics.NewAnalyzer(loc, classifier), time.Now)
	logging.Logger.Infof("using %s storage", bt.StorageType)

	if cfg.SeedSamples {
		if _, err := bt.EnsureSamples(ctx); err != nil {
			closeFn()
			return nil, err
		}
	}
	return &app{tracker: &bt, close: closeFn}, nil
}
