package storage

import (
	"context"
	"sync"

	"github.com/fatali-fataliyev/mood_ledger/internal/ledger"
)

type InMemoryStorage struct {
	mu      sync.RWMutex
	records []ledger.Record
	budget  *ledger.BudgetConfig
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{}
}

func (inMem *InMemoryStorage) GetStorageType() string {
	return StorageTypeMemory
}

func (inMem *InMemoryStorage) LoadRecords(ctx context.Context) ([]ledger.Record, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()
	return append([]ledger.Record{}, inMem.records...), nil
}

func (inMem *InMemoryStorage) SaveRecords(ctx context.Context, records []ledger.Record) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()
	inMem.records = append([]ledger.Record{}, records...)
	return nil
}

func (inMem *InMemoryStorage) LoadBudgetConfig(ctx context.Context) (ledger.BudgetConfig, bool, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()
	if inMem.budget == nil {
		return ledger.BudgetConfig{}, false, nil
	}
	return copyBudget(*inMem.budget), true, nil
}

func (inMem *InMemoryStorage) SaveBudgetConfig(ctx context.Context, cfg ledger.BudgetConfig) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()
	stored := copyBudget(cfg)
	inMem.budget = &stored
	return nil
}

func (inMem *InMemoryStorage) Reset(ctx context.Context) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()
	inMem.records = nil
	inMem.budget = nil
	return nil
}

func copyBudget(cfg ledger.BudgetConfig) ledger.BudgetConfig {
	values := make(map[ledger.Category]float64, len(cfg.Values))
	for c, v := range cfg.Values {
		values[c] = v
	}
	return ledger.BudgetConfig{Month: cfg.Month, Values: values}
}
