package analytics

import (
	"fmt"
	"time"

	"github.com/fatali-fataliyev/mood_ledger/internal/ledger"
	"github.com/shopspring/decimal"
)

const (
	BASELINE_WINDOW_DAYS = 30
	RECENT_WINDOW_DAYS   = 3
	// Recent spend may exceed the baseline pace by 30% before warning.
	OVERAGE_FACTOR = "1.3"
)

var overageFactor = decimal.RequireFromString(OVERAGE_FACTOR)

type TrendWarning struct {
	Triggered   bool    `json:"triggered"`
	Last3DaySum float64 `json:"last_3_day_sum"`
	AvgDaily30  float64 `json:"avg_daily_30"`
	Threshold   float64 `json:"threshold"`
}

// Detect compares the last 3 calendar days (today included) with the
// 30-day daily average scaled to 3 days plus the overage allowance.
// Days without records count as zero spend, the divisor is always 30.
func (a *Analyzer) Detect(records []ledger.Record, now time.Time) TrendWarning {
	today := a.cal.DayStart(now)
	end := a.cal.AddDays(today, 1)

	sum30 := sumInRange(records, a.cal.AddDays(today, -(BASELINE_WINDOW_DAYS-1)), end)
	last3 := sumInRange(records, a.cal.AddDays(today, -(RECENT_WINDOW_DAYS-1)), end)

	avgDaily := sum30.Div(decimal.NewFromInt(BASELINE_WINDOW_DAYS))
	threshold := avgDaily.Mul(decimal.NewFromInt(RECENT_WINDOW_DAYS)).Mul(overageFactor)

	return TrendWarning{
		Triggered:   last3.GreaterThan(threshold) && last3.IsPositive(),
		Last3DaySum: last3.Round(2).InexactFloat64(),
		AvgDaily30:  avgDaily.Round(2).InexactFloat64(),
		Threshold:   threshold.Round(2).InexactFloat64(),
	}
}

func (w TrendWarning) Message() string {
	if !w.Triggered {
		return ""
	}
	return fmt.Sprintf(
		"Spending over the last 3 days totals %.2f, above the 30%% allowance (%.2f) over the 30-day daily average of %.2f. Consider cutting back on takeout and impulse buys.",
		w.Last3DaySum, w.Threshold, w.AvgDaily30,
	)
}
