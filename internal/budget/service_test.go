package budget

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/fatali-fataliyev/mood_ledger/errors"
	"github.com/fatali-fataliyev/mood_ledger/internal/analytics"
	"github.com/fatali-fataliyev/mood_ledger/internal/ledger"
)

// Mocks
type MockStorage struct {
	records     []ledger.Record
	cfg         ledger.BudgetConfig
	hasCfg      bool
	budgetSaves int
	resets      int
	err         error
}

func (m *MockStorage) LoadRecords(ctx context.Context) ([]ledger.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]ledger.Record(nil), m.records...), nil
}

func (m *MockStorage) SaveRecords(ctx context.Context, records []ledger.Record) error {
	if m.err != nil {
		return m.err
	}
	m.records = append([]ledger.Record(nil), records...)
	return nil
}

func (m *MockStorage) LoadBudgetConfig(ctx context.Context) (ledger.BudgetConfig, bool, error) {
	if m.err != nil {
		return ledger.BudgetConfig{}, false, m.err
	}
	return m.cfg, m.hasCfg, nil
}

func (m *MockStorage) SaveBudgetConfig(ctx context.Context, cfg ledger.BudgetConfig) error {
	if m.err != nil {
		return m.err
	}
	m.cfg, m.hasCfg = cfg, true
	m.budgetSaves++
	return nil
}

func (m *MockStorage) Reset(ctx context.Context) error {
	m.records, m.cfg, m.hasCfg = nil, ledger.BudgetConfig{}, false
	m.resets++
	return nil
}

func (m *MockStorage) GetStorageType() string {
	return "mock"
}

// slowStorage guards each call like a real store but widens the gap between
// a load and the following save.
type slowStorage struct {
	*MockStorage
	mu sync.Mutex
}

func (s *slowStorage) LoadRecords(ctx context.Context) ([]ledger.Record, error) {
	s.mu.Lock()
	records, err := s.MockStorage.LoadRecords(ctx)
	s.mu.Unlock()
	time.Sleep(time.Millisecond)
	return records, err
}

func (s *slowStorage) SaveRecords(ctx context.Context, records []ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.MockStorage.SaveRecords(ctx, records)
}

var fixedNow = time.Date(2026, time.March, 15, 14, 0, 0, 0, time.UTC)

var march = ledger.MonthKey{Year: 2026, Month: time.March}

func newTestTracker(s *MockStorage) BudgetTracker {
	return NewBudgetTracker(s, analytics.NewAnalyzer(time.UTC, nil), func() time.Time { return fixedNow })
}

func record(id string, amount float64, c ledger.Category, at time.Time) ledger.Record {
	return ledger.Record{ID: id, Amount: amount, Category: c, Timestamp: at.UnixMilli()}
}

func TestNewBudgetTracker(t *testing.T) {
	bt := newTestTracker(&MockStorage{})
	assert.Equal(t, "mock", bt.StorageType)
}

func TestAddRecordValidation(t *testing.T) {
	tests := []struct {
		name string
		req  NewRecordRequest
	}{
		{name: "zero amount", req: NewRecordRequest{Amount: 0, Category: "Food"}},
		{name: "negative amount", req: NewRecordRequest{Amount: -3, Category: "Food"}},
		{name: "NaN amount", req: NewRecordRequest{Amount: math.NaN(), Category: "Food"}},
		{name: "infinite amount", req: NewRecordRequest{Amount: math.Inf(1), Category: "Food"}},
		{name: "amount over limit", req: NewRecordRequest{Amount: ledger.MAX_RECORD_AMOUNT_LIMIT * 2, Category: "Food"}},
		{name: "unknown category", req: NewRecordRequest{Amount: 5, Category: "Rent"}},
		{name: "unknown mood", req: NewRecordRequest{Amount: 5, Category: "Food", Mood: "Angry"}},
		{name: "note too long", req: NewRecordRequest{Amount: 5, Category: "Food", Note: strings.Repeat("x", ledger.MAX_RECORD_NOTE_LENGTH+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &MockStorage{}
			bt := newTestTracker(s)

			_, err := bt.AddRecord(context.Background(), tt.req)

			require.Error(t, err)
			assert.Equal(t, appErrors.ErrInvalidInput, appErrors.CodeOf(err))
			assert.Empty(t, s.records)
		})
	}
}

func TestAddRecord(t *testing.T) {
	s := &MockStorage{}
	bt := newTestTracker(s)

	got, err := bt.AddRecord(context.Background(), NewRecordRequest{
		Amount:   28.5,
		Category: "food",
		Note:     "  coffee treat, happy  ",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, ledger.Food, got.Category)
	assert.Equal(t, fixedNow.UnixMilli(), got.Timestamp)
	assert.Equal(t, "coffee treat, happy", got.Note)
	assert.Equal(t, ledger.Happy, got.Mood, "mood is inferred from the note when not given")
	require.Len(t, s.records, 1)
	assert.Equal(t, got, s.records[0])

	explicit, err := bt.AddRecord(context.Background(), NewRecordRequest{Amount: 3, Category: "Other", Note: "happy", Mood: "prudent"})
	require.NoError(t, err)
	assert.Equal(t, ledger.Prudent, explicit.Mood)
	assert.NotEqual(t, got.ID, explicit.ID)
	assert.Len(t, s.records, 2)
}

func TestAddRecordStorageError(t *testing.T) {
	bt := newTestTracker(&MockStorage{err: errors.New("disk full")})

	_, err := bt.AddRecord(context.Background(), NewRecordRequest{Amount: 1, Category: "Food"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal, appErrors.CodeOf(err))
}

func TestListRecords(t *testing.T) {
	s := &MockStorage{records: []ledger.Record{
		record("a", 1, ledger.Food, fixedNow.Add(-3*time.Hour)),
		record("b", 2, ledger.Shopping, fixedNow.Add(-1*time.Hour)),
		record("c", 3, ledger.Food, fixedNow.Add(-2*time.Hour)),
	}}
	bt := newTestTracker(s)

	tests := []struct {
		name   string
		filter RecordFilter
		want   []string
	}{
		{name: "all newest first", filter: RecordFilter{}, want: []string{"b", "c", "a"}},
		{name: "by category", filter: RecordFilter{Category: ledger.Food}, want: []string{"c", "a"}},
		{name: "limited", filter: RecordFilter{Limit: 1}, want: []string{"b"}},
		{name: "no match", filter: RecordFilter{Category: ledger.Beauty}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bt.ListRecords(context.Background(), tt.filter)
			require.NoError(t, err)
			ids := []string{}
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestGetRecordByID(t *testing.T) {
	s := &MockStorage{records: []ledger.Record{record("a", 1, ledger.Food, fixedNow)}}
	bt := newTestTracker(s)

	got, err := bt.GetRecordByID(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)

	_, err = bt.GetRecordByID(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(err))
}

func TestLoadBudgetConfigDefaults(t *testing.T) {
	s := &MockStorage{}
	bt := newTestTracker(s)

	cfg, err := bt.LoadBudgetConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, march, cfg.Month)
	for _, c := range ledger.Categories {
		assert.Equal(t, float64(ledger.DEFAULT_BUDGET_CEILING), cfg.Values[c])
	}
	assert.Equal(t, 0, s.budgetSaves, "defaults are not persisted")
}

func TestLoadBudgetConfigRollsOver(t *testing.T) {
	previous := ledger.NewBudgetConfig(ledger.MonthKey{Year: 2026, Month: time.February})
	previous.Values[ledger.Food] = 320
	s := &MockStorage{cfg: previous, hasCfg: true}
	bt := newTestTracker(s)

	cfg, err := bt.LoadBudgetConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, march, cfg.Month)
	assert.Equal(t, 320.0, cfg.Values[ledger.Food])
	assert.Equal(t, 1, s.budgetSaves)
	assert.Equal(t, march, s.cfg.Month)

	_, err = bt.LoadBudgetConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, s.budgetSaves, "current month config is not saved again")
}

func TestSaveBudget(t *testing.T) {
	s := &MockStorage{}
	bt := newTestTracker(s)

	cfg, err := bt.SaveBudget(context.Background(), map[string]float64{
		"Food":     800,
		"shopping": -20,
	})
	require.NoError(t, err)

	assert.Equal(t, march, cfg.Month)
	assert.Equal(t, 800.0, cfg.Values[ledger.Food])
	assert.Equal(t, 0.0, cfg.Values[ledger.Shopping], "negative ceilings are clamped to 0")
	assert.Equal(t, float64(ledger.DEFAULT_BUDGET_CEILING), cfg.Values[ledger.Beauty])
	assert.Equal(t, cfg, s.cfg)

	// later updates keep earlier values
	cfg, err = bt.SaveBudget(context.Background(), map[string]float64{"Beauty": 60})
	require.NoError(t, err)
	assert.Equal(t, 800.0, cfg.Values[ledger.Food])
	assert.Equal(t, 60.0, cfg.Values[ledger.Beauty])
}

func TestSaveBudgetRejectsUnknownCategory(t *testing.T) {
	s := &MockStorage{}
	bt := newTestTracker(s)

	_, err := bt.SaveBudget(context.Background(), map[string]float64{"Rent": 100})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidInput, appErrors.CodeOf(err))
	assert.False(t, s.hasCfg)
}

func TestDashboard(t *testing.T) {
	s := &MockStorage{records: []ledger.Record{
		{ID: "1", Amount: 28.5, Category: ledger.Food, Timestamp: fixedNow.Add(-24 * time.Hour).UnixMilli(), Note: "coffee treat, happy"},
		{ID: "2", Amount: 199, Category: ledger.Shopping, Timestamp: fixedNow.Add(-48 * time.Hour).UnixMilli(), Note: "organizer, happy"},
	}}
	bt := newTestTracker(s)

	got, err := bt.Dashboard(context.Background())
	require.NoError(t, err)

	require.Len(t, got.Budget, len(ledger.Categories))
	assert.Equal(t, 6, got.Budget[0].PercentUsed)
	assert.Equal(t, 40, got.Budget[1].PercentUsed)
	assert.Equal(t, ledger.Happy, got.Summary.DominantMood)
	assert.Equal(t, analytics.MoodSummary(ledger.Happy), got.Summary.MoodSummary)
	assert.Equal(t, 227.5, got.Summary.Total)
	require.Len(t, got.RecentRecords, 2)
	assert.Equal(t, "1", got.RecentRecords[0].ID)
	// all spend falls in the last 3 days
	assert.True(t, got.Warning.Triggered)
	assert.Equal(t, got.Warning.Message(), got.WarningMessage)
}

func TestStatisticsValidation(t *testing.T) {
	bt := newTestTracker(&MockStorage{})

	_, err := bt.Statistics(context.Background(), "year", 7)
	assert.Equal(t, appErrors.ErrInvalidInput, appErrors.CodeOf(err))

	_, err = bt.Statistics(context.Background(), "week", 14)
	assert.Equal(t, appErrors.ErrInvalidInput, appErrors.CodeOf(err))

	stats, err := bt.Statistics(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, stats.Daily, DEFAULT_STATS_SPAN)
	assert.Equal(t, analytics.RangeMonth, stats.Range.Range)

	stats, err = bt.Statistics(context.Background(), "30d", 30)
	require.NoError(t, err)
	assert.Len(t, stats.Daily, EXTENDED_STATS_SPAN)
}

func TestTrend(t *testing.T) {
	s := &MockStorage{records: []ledger.Record{
		record("a", 259.99, ledger.Shopping, fixedNow.AddDate(0, 0, -10)),
		record("b", 40.01, ledger.Food, fixedNow.AddDate(0, 0, -1)),
	}}
	bt := newTestTracker(s)

	got, err := bt.Trend(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Triggered)
	assert.Equal(t, 39.0, got.Threshold)
}

func TestEnsureSamples(t *testing.T) {
	s := &MockStorage{}
	bt := newTestTracker(s)

	seeded, err := bt.EnsureSamples(context.Background())
	require.NoError(t, err)
	assert.True(t, seeded)
	require.Len(t, s.records, 3)
	for _, r := range s.records {
		assert.True(t, r.Category.IsValid())
		assert.True(t, r.Mood.IsValid())
		assert.Less(t, r.Timestamp, fixedNow.UnixMilli())
	}

	seeded, err = bt.EnsureSamples(context.Background())
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Len(t, s.records, 3)
}

func TestResetData(t *testing.T) {
	s := &MockStorage{
		records: []ledger.Record{record("a", 1, ledger.Food, fixedNow)},
		cfg:     ledger.NewBudgetConfig(march),
		hasCfg:  true,
	}
	bt := newTestTracker(s)

	require.NoError(t, bt.ResetData(context.Background()))

	assert.Equal(t, 1, s.resets)
	assert.False(t, s.hasCfg)
	require.Len(t, s.records, 3)
	for _, r := range s.records {
		assert.NotEqual(t, "a", r.ID)
	}
}

func TestExportCSV(t *testing.T) {
	s := &MockStorage{records: []ledger.Record{
		{ID: "b", Amount: 2, Category: ledger.Shopping, Timestamp: fixedNow.UnixMilli(), Note: "box, happy", Mood: ledger.Happy},
		{ID: "a", Amount: 1.5, Category: ledger.Food, Timestamp: fixedNow.Add(-time.Hour).UnixMilli()},
	}}
	bt := newTestTracker(s)

	var buf bytes.Buffer
	require.NoError(t, bt.ExportCSV(context.Background(), &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,time,category,amount,mood,note", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "a,2026-03-15T13:00:00Z,Food,1.5"))
	assert.Equal(t, `b,2026-03-15T14:00:00Z,Shopping,2,Happy,"box, happy"`, lines[2])
}

func TestAddRecordConcurrent(t *testing.T) {
	s := &slowStorage{MockStorage: &MockStorage{}}
	bt := NewBudgetTracker(s, analytics.NewAnalyzer(time.UTC, nil), func() time.Time { return fixedNow })

	const adds = 50
	var wg sync.WaitGroup
	errs := make(chan error, adds)
	for i := 0; i < adds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := bt.AddRecord(context.Background(), NewRecordRequest{Amount: 1, Category: "Food"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	records, err := s.LoadRecords(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, adds)
}

func TestExportCSVKeepsInsertionOrderOnEqualTimestamps(t *testing.T) {
	s := &MockStorage{records: []ledger.Record{
		{ID: "late", Amount: 3, Category: ledger.Food, Timestamp: fixedNow.UnixMilli()},
		{ID: "first", Amount: 1, Category: ledger.Food, Timestamp: fixedNow.Add(-time.Hour).UnixMilli()},
		{ID: "second", Amount: 2, Category: ledger.Food, Timestamp: fixedNow.Add(-time.Hour).UnixMilli()},
	}}
	bt := newTestTracker(s)

	var buf bytes.Buffer
	require.NoError(t, bt.ExportCSV(context.Background(), &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "first,"))
	assert.True(t, strings.HasPrefix(lines[2], "second,"))
	assert.True(t, strings.HasPrefix(lines[3], "late,"))
}
