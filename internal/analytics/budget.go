package analytics

import (
	"github.com/fatali-fataliyev/mood_ledger/internal/ledger"
	"github.com/shopspring/decimal"
)

type BudgetStatus struct {
	Category    ledger.Category `json:"category"`
	Used        float64         `json:"used"`
	Ceiling     float64         `json:"ceiling"`
	PercentUsed int             `json:"percent_used"`
	OverBudget  bool            `json:"over_budget"`
}

// Evaluate reports consumption of every category ceiling for month, in
// canonical category order. PercentUsed is capped at 100 while OverBudget
// still tells whether the ceiling was exceeded.
func (a *Analyzer) Evaluate(records []ledger.Record, month ledger.MonthKey, cfg ledger.BudgetConfig) []BudgetStatus {
	sums := a.monthlyCategorySums(records, month)
	cfg = cfg.Normalize()
	out := make([]BudgetStatus, 0, len(ledger.Categories))
	for _, c := range ledger.Categories {
		used := sums[c]
		ceiling := decimal.NewFromFloat(cfg.Ceiling(c))
		out = append(out, BudgetStatus{
			Category:    c,
			Used:        used.InexactFloat64(),
			Ceiling:     ceiling.InexactFloat64(),
			PercentUsed: usagePercent(used, ceiling),
			OverBudget:  used.GreaterThan(ceiling),
		})
	}
	return out
}

func usagePercent(used, ceiling decimal.Decimal) int {
	if !ceiling.IsPositive() {
		return 0
	}
	pct := used.Div(ceiling).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	switch {
	case pct > 100:
		return 100
	case pct < 0:
		return 0
	}
	return int(pct)
}
