package analytics

import (
	"time"

	"github.com/fatali-fataliyev/mood_ledger/internal/ledger"
	"github.com/shopspring/decimal"
)

const (
	EXPLICIT_MOOD_WEIGHT = 1.0
	// Moods inferred from notes are less certain than the ones users pick.
	INFERRED_MOOD_WEIGHT = 0.5
	TOP_KEYWORDS_LIMIT   = 6
)

// Analyzer runs the pure analytics over record snapshots. It holds no
// state besides the calendar timezone and the classifier.
type Analyzer struct {
	cal        ledger.Calendar
	classifier Classifier
}

func NewAnalyzer(loc *time.Location, classifier Classifier) *Analyzer {
	if classifier == nil {
		classifier = NewKeywordClassifier(DefaultMoodRules())
	}
	return &Analyzer{
		cal:        ledger.NewCalendar(loc),
		classifier: classifier,
	}
}

func (a *Analyzer) Calendar() ledger.Calendar {
	return a.cal
}

func (a *Analyzer) Classify(text string) ledger.Mood {
	return a.classifier.Classify(text)
}

type DayTotal struct {
	DayStart time.Time `json:"day_start"`
	Sum      float64   `json:"sum"`
}

func (a *Analyzer) inMonth(r ledger.Record, month ledger.MonthKey) bool {
	return a.cal.RecordMonth(r) == month
}

func (a *Analyzer) monthlyCategorySums(records []ledger.Record, month ledger.MonthKey) map[ledger.Category]decimal.Decimal {
	sums := make(map[ledger.Category]decimal.Decimal, len(ledger.Categories))
	for _, c := range ledger.Categories {
		sums[c] = decimal.Zero
	}
	for _, r := range records {
		if !a.inMonth(r, month) {
			continue
		}
		current, known := sums[r.Category]
		if !known {
			continue
		}
		sums[r.Category] = current.Add(r.Money())
	}
	return sums
}

// MonthlyCategoryTotals sums amounts per category for records in month.
// Every category is present, with 0 when it had no spend.
func (a *Analyzer) MonthlyCategoryTotals(records []ledger.Record, month ledger.MonthKey) map[ledger.Category]float64 {
	sums := a.monthlyCategorySums(records, month)
	totals := make(map[ledger.Category]float64, len(sums))
	for c, s := range sums {
		totals[c] = s.InexactFloat64()
	}
	return totals
}

func sumInRange(records []ledger.Record, start, end time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if ledger.InRange(r, start, end) {
			total = total.Add(r.Money())
		}
	}
	return total
}

// WindowDailyTotals buckets the spanDays calendar days ending with the day
// containing now, oldest first.
func (a *Analyzer) WindowDailyTotals(records []ledger.Record, now time.Time, spanDays int) []DayTotal {
	if spanDays <= 0 {
		return []DayTotal{}
	}
	today := a.cal.DayStart(now)
	out := make([]DayTotal, 0, spanDays)
	for i := spanDays - 1; i >= 0; i-- {
		start := a.cal.AddDays(today, -i)
		end := a.cal.AddDays(start, 1)
		out = append(out, DayTotal{
			DayStart: start,
			Sum:      sumInRange(records, start, end).InexactFloat64(),
		})
	}
	return out
}

// MonthlyMoodDistribution weighs explicit moods at 1.0 and moods inferred
// from the note at 0.5. A record can contribute both.
func (a *Analyzer) MonthlyMoodDistribution(records []ledger.Record, month ledger.MonthKey) MoodDistribution {
	dist := newMoodDistribution()
	for _, r := range records {
		if !a.inMonth(r, month) {
			continue
		}
		if r.Mood.IsValid() {
			dist[r.Mood] += EXPLICIT_MOOD_WEIGHT
		}
		if inferred := a.classifier.Classify(r.Note); inferred.IsValid() {
			dist[inferred] += INFERRED_MOOD_WEIGHT
		}
	}
	return dist
}
