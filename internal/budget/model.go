package budget

import (
	"github.com/fatali-fataliyev/mood_ledger/internal/analytics"
	"github.com/fatali-fataliyev/mood_ledger/internal/ledger"
)

const (
	RECENT_RECORDS_LIMIT = 5
	DEFAULT_STATS_SPAN   = 7
	EXTENDED_STATS_SPAN  = 30
)

type NewRecordRequest struct {
	Amount   float64
	Category string
	Note     string
	Mood     string
	Image    string
}

type RecordFilter struct {
	// empty means all categories
	Category ledger.Category
	// 0 means no limit
	Limit int
}

type MonthReport struct {
	Summary analytics.MonthSummary   `json:"summary"`
	Budget  []analytics.BudgetStatus `json:"budget"`
}

type Dashboard struct {
	MonthReport
	Warning        analytics.TrendWarning `json:"warning"`
	WarningMessage string                 `json:"warning_message,omitempty"`
	RecentRecords  []ledger.Record        `json:"recent_records"`
}

type recordRow struct {
	ID       string  `csv:"id"`
	Time     string  `csv:"time"`
	Category string  `csv:"category"`
	Amount   float64 `csv:"amount"`
	Mood     string  `csv:"mood"`
	Note     string  `csv:"note"`
}
