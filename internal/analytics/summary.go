package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatali-fataliyev/mood_ledger/internal/ledger"
	"github.com/shopspring/decimal"
)

type MonthSummary struct {
	Month        ledger.MonthKey  `json:"month"`
	Total        float64          `json:"total"`
	RecordCount  int              `json:"record_count"`
	TopCategory  ledger.Category  `json:"top_category,omitempty"`
	Moods        MoodDistribution `json:"moods"`
	DominantMood ledger.Mood      `json:"dominant_mood"`
	MoodSummary  string           `json:"mood_summary"`
}

// SummarizeMonth gives the month total, the category with the highest
// spend (empty when nothing was spent) and the mood picture.
func (a *Analyzer) SummarizeMonth(records []ledger.Record, month ledger.MonthKey) MonthSummary {
	sums := a.monthlyCategorySums(records, month)

	total := decimal.Zero
	var top ledger.Category
	topSum := decimal.Zero
	for _, c := range ledger.Categories {
		total = total.Add(sums[c])
		if sums[c].GreaterThan(topSum) {
			top, topSum = c, sums[c]
		}
	}

	count := 0
	for _, r := range records {
		if a.inMonth(r, month) {
			count++
		}
	}

	moods := a.MonthlyMoodDistribution(records, month)
	dominant := moods.Dominant()
	return MonthSummary{
		Month:        month,
		Total:        total.Round(2).InexactFloat64(),
		RecordCount:  count,
		TopCategory:  top,
		Moods:        moods,
		DominantMood: dominant,
		MoodSummary:  MoodSummary(dominant),
	}
}

type MoodStats struct {
	HappyShare  int            `json:"happy_share"`
	TopKeywords []KeywordCount `json:"top_keywords"`
}

type keywordLister interface {
	Keywords() []string
}

// MoodStatistics reports the share of the month's records explicitly tagged
// Happy, as a rounded percentage, and the most common mood keywords in notes.
func (a *Analyzer) MoodStatistics(records []ledger.Record, month ledger.MonthKey) MoodStats {
	var notes []string
	count, happy := 0, 0
	for _, r := range records {
		if !a.inMonth(r, month) {
			continue
		}
		count++
		if r.Mood == ledger.Happy {
			happy++
		}
		notes = append(notes, r.Note)
	}

	share := 0
	if count > 0 {
		share = int(decimal.NewFromInt(int64(happy)).Div(decimal.NewFromInt(int64(count))).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
	}

	var keywords []string
	if lister, ok := a.classifier.(keywordLister); ok {
		keywords = lister.Keywords()
	} else {
		keywords = NewKeywordClassifier(DefaultMoodRules()).Keywords()
	}

	return MoodStats{
		HappyShare:  share,
		TopKeywords: topKeywords(notes, keywords, TOP_KEYWORDS_LIMIT),
	}
}

type Range string

const (
	RangeMonth  Range = "month"
	RangeWeek   Range = "week"
	Range30Days Range = "30d"
	RangeAll    Range = "all"
)

func ParseRange(s string) (Range, error) {
	switch r := Range(strings.ToLower(strings.TrimSpace(s))); r {
	case RangeMonth, RangeWeek, Range30Days, RangeAll:
		return r, nil
	case "":
		return RangeMonth, nil
	default:
		return "", fmt.Errorf("unknown range %q, expected one of month, week, 30d, all", s)
	}
}

// rangeStart returns the first instant included in the range, zero time for all.
func (a *Analyzer) rangeStart(r Range, now time.Time) time.Time {
	today := a.cal.DayStart(now)
	switch r {
	case RangeMonth:
		return a.cal.MonthOf(now).Start(a.cal.Location())
	case RangeWeek:
		return a.cal.AddDays(today, -6)
	case Range30Days:
		return a.cal.AddDays(today, -(BASELINE_WINDOW_DAYS - 1))
	default:
		return time.Time{}
	}
}

type RangeTotals struct {
	Range      Range                       `json:"range"`
	Total      float64                     `json:"total"`
	ByCategory map[ledger.Category]float64 `json:"by_category"`
}

// RangeCategoryTotals sums amounts per category for records from the start
// of the range onwards.
func (a *Analyzer) RangeCategoryTotals(records []ledger.Record, now time.Time, r Range) RangeTotals {
	start := a.rangeStart(r, now)
	sums := make(map[ledger.Category]decimal.Decimal, len(ledger.Categories))
	for _, c := range ledger.Categories {
		sums[c] = decimal.Zero
	}
	total := decimal.Zero
	for _, rec := range records {
		if !start.IsZero() && rec.Timestamp < start.UnixMilli() {
			continue
		}
		current, known := sums[rec.Category]
		if !known {
			continue
		}
		sums[rec.Category] = current.Add(rec.Money())
		total = total.Add(rec.Money())
	}

	byCategory := make(map[ledger.Category]float64, len(sums))
	for c, s := range sums {
		byCategory[c] = s.InexactFloat64()
	}
	return RangeTotals{Range: r, Total: total.InexactFloat64(), ByCategory: byCategory}
}

type Statistics struct {
	Range       RangeTotals  `json:"range"`
	Daily       []DayTotal   `json:"daily"`
	Highlighted []bool       `json:"highlighted"`
	Warning     TrendWarning `json:"warning"`
	Moods       MoodStats    `json:"moods"`
}

// Statistics gathers what a statistics view needs. The last 3 daily buckets
// are highlighted when the trend warning triggers.
func (a *Analyzer) Statistics(records []ledger.Record, now time.Time, r Range, spanDays int) Statistics {
	daily := a.WindowDailyTotals(records, now, spanDays)
	warning := a.Detect(records, now)

	highlighted := make([]bool, len(daily))
	if warning.Triggered {
		for i := len(daily) - RECENT_WINDOW_DAYS; i < len(daily); i++ {
			if i >= 0 {
				highlighted[i] = true
			}
		}
	}

	return Statistics{
		Range:       a.RangeCategoryTotals(records, now, r),
		Daily:       daily,
		Highlighted: highlighted,
		Warning:     warning,
		Moods:       a.MoodStatistics(records, a.cal.MonthOf(now)),
	}
}
