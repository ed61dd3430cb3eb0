package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MAX_RECORD_AMOUNT_LIMIT = 999999999999.99
	MAX_RECORD_NOTE_LENGTH  = 1000
	DEFAULT_BUDGET_CEILING  = 500
)

type Category string

const (
	Food          Category = "Food"
	Shopping      Category = "Shopping"
	Entertainment Category = "Entertainment"
	Beauty        Category = "Beauty"
	Transport     Category = "Transport"
	Other         Category = "Other"
)

// Categories is the closed category set in canonical display order.
var Categories = []Category{Food, Shopping, Entertainment, Beauty, Transport, Other}

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory accepts any letter case, e.g. "food" or "FOOD".
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, known := range Categories {
		if strings.EqualFold(string(known), s) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown category: %q", s)
}

type Mood string

const (
	MoodNone Mood = ""
	Happy    Mood = "Happy"
	Healing  Mood = "Healing"
	Destress Mood = "Destress"
	Prudent  Mood = "Prudent"
)

// Moods is the closed mood set in canonical order. Ties between moods
// are always broken in favour of the earlier entry.
var Moods = []Mood{Happy, Healing, Destress, Prudent}

func (m Mood) IsValid() bool {
	return m.Index() >= 0
}

// Index is the canonical position of the mood, -1 for none or unknown labels.
func (m Mood) Index() int {
	for i, known := range Moods {
		if m == known {
			return i
		}
	}
	return -1
}

func (m Mood) String() string {
	if m == MoodNone {
		return "none"
	}
	return string(m)
}

func ParseMood(s string) (Mood, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return MoodNone, nil
	}
	for _, known := range Moods {
		if strings.EqualFold(string(known), s) {
			return known, nil
		}
	}
	return MoodNone, fmt.Errorf("unknown mood: %q", s)
}

type Record struct {
	ID        string   `json:"id"`
	Amount    float64  `json:"amount"`
	Category  Category `json:"category"`
	Timestamp int64    `json:"ts"`
	Note      string   `json:"note"`
	Mood      Mood     `json:"mood,omitempty"`
	Image     string   `json:"img,omitempty"`
}

// Money returns the amount as a decimal. NaN and ±Inf amounts count as
// zero.
func (r Record) Money() decimal.Decimal {
	if math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(r.Amount)
}

func (r Record) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(r.Timestamp).In(loc)
}

// MonthKey identifies a calendar month, serialized as "2006-01".
type MonthKey struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return MonthKey{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", s, err)
	}
	return MonthOf(t), nil
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

func (k MonthKey) IsZero() bool {
	return k.Year == 0 && k.Month == 0
}

// Start returns local midnight of the first day of the month.
func (k MonthKey) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, loc)
}

func (k MonthKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *MonthKey) UnmarshalText(text []byte) error {
	parsed, err := ParseMonthKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

type BudgetConfig struct {
	Month  MonthKey             `json:"month"`
	Values map[Category]float64 `json:"values"`
}

// NewBudgetConfig returns the first-use configuration: every category
// at the default ceiling.
func NewBudgetConfig(month MonthKey) BudgetConfig {
	values := make(map[Category]float64, len(Categories))
	for _, c := range Categories {
		values[c] = DEFAULT_BUDGET_CEILING
	}
	return BudgetConfig{Month: month, Values: values}
}

// Normalize fills missing categories with the default ceiling, clamps
// negative or malformed ceilings to zero and drops unknown categories.
func (b BudgetConfig) Normalize() BudgetConfig {
	values := make(map[Category]float64, len(Categories))
	for _, c := range Categories {
		v, ok := b.Values[c]
		switch {
		case !ok:
			v = DEFAULT_BUDGET_CEILING
		case math.IsNaN(v) || math.IsInf(v, 0) || v < 0:
			v = 0
		}
		values[c] = v
	}
	return BudgetConfig{Month: b.Month, Values: values}
}

// RollOver moves the configuration to another month. Ceilings carry forward.
func (b BudgetConfig) RollOver(month MonthKey) BudgetConfig {
	values := make(map[Category]float64, len(b.Values))
	for c, v := range b.Values {
		values[c] = v
	}
	return BudgetConfig{Month: month, Values: values}
}

func (b BudgetConfig) Ceiling(c Category) float64 {
	return b.Values[c]
}
