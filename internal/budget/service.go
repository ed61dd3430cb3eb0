package budget

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	appErrors "github.com/fatali-fataliyev/mood_ledger/errors"
	"github.com/fatali-fataliyev/mood_ledger/internal/analytics"
	"github.com/fatali-fataliyev/mood_ledger/internal/contextutil"
	"github.com/fatali-fataliyev/mood_ledger/internal/ledger"
	"github.com/fatali-fataliyev/mood_ledger/logging"
)

type Storage interface {
	LoadRecords(ctx context.Context) ([]ledger.Record, error)
	SaveRecords(ctx context.Context, records []ledger.Record) error
	LoadBudgetConfig(ctx context.Context) (ledger.BudgetConfig, bool, error)
	SaveBudgetConfig(ctx context.Context, cfg ledger.BudgetConfig) error
	Reset(ctx context.Context) error
	GetStorageType() string
}

// BudgetTracker serializes every load-modify-save sequence on mu, the store
// only guards single calls.
type BudgetTracker struct {
	mu          *sync.Mutex
	storage     Storage
	analyzer    *analytics.Analyzer
	now         func() time.Time
	StorageType string
}

// NewBudgetTracker wires the store and the analyzer. A nil now uses time.Now.
func NewBudgetTracker(s Storage, analyzer *analytics.Analyzer, now func() time.Time) BudgetTracker {
	if analyzer == nil {
		analyzer = analytics.NewAnalyzer(time.Local, nil)
	}
	if now == nil {
		now = time.Now
	}
	return BudgetTracker{
		mu:          &sync.Mutex{},
		storage:     s,
		analyzer:    analyzer,
		now:         now,
		StorageType: s.GetStorageType(),
	}
}

// CurrentMonth is the month containing now in the analyzer timezone.
func (bt *BudgetTracker) CurrentMonth() ledger.MonthKey {
	return bt.analyzer.Calendar().MonthOf(bt.now())
}

func (bt *BudgetTracker) AddRecord(ctx context.Context, req NewRecordRequest) (ledger.Record, error) {
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) || req.Amount <= 0 {
		return ledger.Record{}, appErrors.New(appErrors.ErrInvalidInput, "amount must be a positive number")
	}
	if req.Amount > ledger.MAX_RECORD_AMOUNT_LIMIT {
		return ledger.Record{}, appErrors.New(appErrors.ErrInvalidInput, "maximum allowed amount per record is: %.2f", ledger.MAX_RECORD_AMOUNT_LIMIT)
	}
	category, err := ledger.ParseCategory(req.Category)
	if err != nil {
		return ledger.Record{}, appErrors.New(appErrors.ErrInvalidInput, "%v", err)
	}
	mood, err := ledger.ParseMood(req.Mood)
	if err != nil {
		return ledger.Record{}, appErrors.New(appErrors.ErrInvalidInput, "%v", err)
	}
	note := strings.TrimSpace(req.Note)
	if len(note) > ledger.MAX_RECORD_NOTE_LENGTH {
		return ledger.Record{}, appErrors.New(appErrors.ErrInvalidInput, "note so long, maximum allowed length is: %d", ledger.MAX_RECORD_NOTE_LENGTH)
	}
	if mood == ledger.MoodNone {
		mood = bt.analyzer.Classify(note)
	}

	record := ledger.Record{
		ID:        uuid.New().String(),
		Amount:    req.Amount,
		Category:  category,
		Timestamp: bt.now().UnixMilli(),
		Note:      note,
		Mood:      mood,
		Image:     req.Image,
	}

	bt.mu.Lock()
	defer bt.mu.Unlock()

	records, err := bt.storage.LoadRecords(ctx)
	if err != nil {
		return ledger.Record{}, fmt.Errorf("failed to load records: %w", err)
	}
	records = append(records, record)
	if err := bt.storage.SaveRecords(ctx, records); err != nil {
		return ledger.Record{}, fmt.Errorf("failed to save record: %w", err)
	}
	return record, nil
}

// ListRecords returns records newest first.
func (bt *BudgetTracker) ListRecords(ctx context.Context, filter RecordFilter) ([]ledger.Record, error) {
	records, err := bt.storage.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get records: %w", err)
	}

	result := make([]ledger.Record, 0, len(records))
	for _, r := range records {
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		result = append(result, r)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp > result[j].Timestamp
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (bt *BudgetTracker) GetRecordByID(ctx context.Context, id string) (ledger.Record, error) {
	records, err := bt.storage.LoadRecords(ctx)
	if err != nil {
		return ledger.Record{}, fmt.Errorf("failed to get record by id: %w", err)
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return ledger.Record{}, appErrors.New(appErrors.ErrNotFound, "record '%s' not found", id)
}

// LoadBudgetConfig returns the stored ceilings, defaults when none were
// saved. A config saved for an earlier month is carried over to the
// current month with the same values and saved again.
func (bt *BudgetTracker) LoadBudgetConfig(ctx context.Context) (ledger.BudgetConfig, error) {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	return bt.loadBudgetConfig(ctx)
}

func (bt *BudgetTracker) loadBudgetConfig(ctx context.Context) (ledger.BudgetConfig, error) {
	month := bt.CurrentMonth()
	cfg, found, err := bt.storage.LoadBudgetConfig(ctx)
	if err != nil {
		return ledger.BudgetConfig{}, fmt.Errorf("failed to load budget: %w", err)
	}
	if !found {
		return ledger.NewBudgetConfig(month), nil
	}
	cfg = cfg.Normalize()
	if cfg.Month != month {
		logging.Logger.Infof("[TraceID=%s] | rolling budget over from %s to %s", contextutil.TraceIDFromContext(ctx), cfg.Month, month)
		cfg = cfg.RollOver(month)
		if err := bt.storage.SaveBudgetConfig(ctx, cfg); err != nil {
			return ledger.BudgetConfig{}, fmt.Errorf("failed to save rolled over budget: %w", err)
		}
	}
	return cfg, nil
}

// SaveBudget updates the ceilings of the given categories. Categories not
// present keep their current ceiling, negative values are stored as 0.
func (bt *BudgetTracker) SaveBudget(ctx context.Context, values map[string]float64) (ledger.BudgetConfig, error) {
	bt.mu.Lock()
	defer bt.mu.Unlock()

	cfg, err := bt.loadBudgetConfig(ctx)
	if err != nil {
		return ledger.BudgetConfig{}, err
	}

	updated := ledger.NewBudgetConfig(bt.CurrentMonth())
	for c, v := range cfg.Values {
		updated.Values[c] = v
	}
	for name, v := range values {
		category, err := ledger.ParseCategory(name)
		if err != nil {
			return ledger.BudgetConfig{}, appErrors.New(appErrors.ErrInvalidInput, "%v", err)
		}
		if v > ledger.MAX_RECORD_AMOUNT_LIMIT {
			return ledger.BudgetConfig{}, appErrors.New(appErrors.ErrInvalidInput, "budget for %s is too large, the limit is: %.2f", category, ledger.MAX_RECORD_AMOUNT_LIMIT)
		}
		updated.Values[category] = v
	}
	updated = updated.Normalize()

	if err := bt.storage.SaveBudgetConfig(ctx, updated); err != nil {
		return ledger.BudgetConfig{}, fmt.Errorf("failed to save budget: %w", err)
	}
	return updated, nil
}

func (bt *BudgetTracker) MonthReport(ctx context.Context, month ledger.MonthKey) (MonthReport, error) {
	records, err := bt.storage.LoadRecords(ctx)
	if err != nil {
		return MonthReport{}, fmt.Errorf("failed to load records: %w", err)
	}
	cfg, err := bt.LoadBudgetConfig(ctx)
	if err != nil {
		return MonthReport{}, err
	}
	return MonthReport{
		Summary: bt.analyzer.SummarizeMonth(records, month),
		Budget:  bt.analyzer.Evaluate(records, month, cfg),
	}, nil
}

func (bt *BudgetTracker) Dashboard(ctx context.Context) (Dashboard, error) {
	report, err := bt.MonthReport(ctx, bt.CurrentMonth())
	if err != nil {
		return Dashboard{}, err
	}
	records, err := bt.storage.LoadRecords(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("failed to load records: %w", err)
	}
	recent, err := bt.ListRecords(ctx, RecordFilter{Limit: RECENT_RECORDS_LIMIT})
	if err != nil {
		return Dashboard{}, err
	}

	warning := bt.analyzer.Detect(records, bt.now())
	return Dashboard{
		MonthReport:    report,
		Warning:        warning,
		WarningMessage: warning.Message(),
		RecentRecords:  recent,
	}, nil
}

// Statistics accepts a span of 7 or 30 days, 0 selects 7.
func (bt *BudgetTracker) Statistics(ctx context.Context, rangeName string, spanDays int) (analytics.Statistics, error) {
	r, err := analytics.ParseRange(rangeName)
	if err != nil {
		return analytics.Statistics{}, appErrors.New(appErrors.ErrInvalidInput, "%v", err)
	}
	if spanDays == 0 {
		spanDays = DEFAULT_STATS_SPAN
	}
	if spanDays != DEFAULT_STATS_SPAN && spanDays != EXTENDED_STATS_SPAN {
		return analytics.Statistics{}, appErrors.New(appErrors.ErrInvalidInput, "span must be %d or %d days", DEFAULT_STATS_SPAN, EXTENDED_STATS_SPAN)
	}

	records, err := bt.storage.LoadRecords(ctx)
	if err != nil {
		return analytics.Statistics{}, fmt.Errorf("failed to load records: %w", err)
	}
	return bt.analyzer.Statistics(records, bt.now(), r, spanDays), nil
}

func (bt *BudgetTracker) Trend(ctx context.Context) (analytics.TrendWarning, error) {
	records, err := bt.storage.LoadRecords(ctx)
	if err != nil {
		return analytics.TrendWarning{}, fmt.Errorf("failed to load records: %w", err)
	}
	return bt.analyzer.Detect(records, bt.now()), nil
}

func (bt *BudgetTracker) Classify(text string) ledger.Mood {
	return bt.analyzer.Classify(text)
}

// EnsureSamples writes the sample records when the store holds none.
// It reports whether samples were written.
func (bt *BudgetTracker) EnsureSamples(ctx context.Context) (bool, error) {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	return bt.ensureSamples(ctx)
}

func (bt *BudgetTracker) ensureSamples(ctx context.Context) (bool, error) {
	records, err := bt.storage.LoadRecords(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load records: %w", err)
	}
	if len(records) > 0 {
		return false, nil
	}
	if err := bt.storage.SaveRecords(ctx, sampleRecords(bt.now())); err != nil {
		return false, fmt.Errorf("failed to save sample records: %w", err)
	}
	logging.Logger.Infof("[TraceID=%s] | seeded sample records", contextutil.TraceIDFromContext(ctx))
	return true, nil
}

// ResetData clears records and budget, then seeds the samples again.
func (bt *BudgetTracker) ResetData(ctx context.Context) error {
	bt.mu.Lock()
	defer bt.mu.Unlock()

	if err := bt.storage.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset storage: %w", err)
	}
	if _, err := bt.ensureSamples(ctx); err != nil {
		return err
	}
	return nil
}

// ExportCSV writes every record, oldest first, as CSV with a header row.
func (bt *BudgetTracker) ExportCSV(ctx context.Context, w io.Writer) error {
	records, err := bt.storage.LoadRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})

	loc := bt.analyzer.Calendar().Location()
	rows := make([]recordRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, recordRow{
			ID:       r.ID,
			Time:     r.Time(loc).Format(time.RFC3339),
			Category: string(r.Category),
			Amount:   r.Amount,
			Mood:     string(r.Mood),
			Note:     r.Note,
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func sampleRecords(now time.Time) []ledger.Record {
	return []ledger.Record{
		{
			ID:        uuid.New().String(),
			Amount:    28.5,
			Category:  ledger.Food,
			Timestamp: now.Add(-12 * time.Hour).UnixMilli(),
			Note:      "afternoon coffee and dessert, felt soothing",
			Mood:      ledger.Healing,
		},
		{
			ID:        uuid.New().String(),
			Amount:    199,
			Category:  ledger.Shopping,
			Timestamp: now.Add(-48 * time.Hour).UnixMilli(),
			Note:      "bought storage boxes, home feels orderly, happy",
			Mood:      ledger.Happy,
		},
		{
			ID:        uuid.New().String(),
			Amount:    45,
			Category:  ledger.Entertainment,
			Timestamp: now.Add(-36 * time.Hour).UnixMilli(),
			Note:      "movie after overtime to destress",
			Mood:      ledger.Destress,
		},
	}
}
