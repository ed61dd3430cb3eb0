package storage

import (
	"github.com/fatali-fataliyev/mood_ledger/internal/ledger"
)

const (
	StorageTypeMemory = "inmemory"
	StorageTypeMySQL  = "mysql"
	StorageTypeSQLite = "sqlite"
)

type dbRecord struct {
	ID       string
	Amount   float64
	Category string
	Ts       int64
	Note     string
	Mood     string
	Img      string
}

func (r dbRecord) toRecord() ledger.Record {
	return ledger.Record{
		ID:        r.ID,
		Amount:    r.Amount,
		Category:  ledger.Category(r.Category),
		Timestamp: r.Ts,
		Note:      r.Note,
		Mood:      ledger.Mood(r.Mood),
		Image:     r.Img,
	}
}

type dbBudgetRow struct {
	Category string
	Month    string
	Ceiling  float64
}
