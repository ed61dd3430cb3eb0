package ledger

import "time"

// Calendar does day and month bucketing in an explicit timezone.
type Calendar struct {
	loc *time.Location
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// DayStart returns local midnight of the calendar day containing t.
func (c Calendar) DayStart(t time.Time) time.Time {
	t = t.In(c.Location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.Location())
}

// AddDays moves a day start by n calendar days. Days are not assumed to
// be 24h long, so DST transitions keep buckets midnight-aligned.
func (c Calendar) AddDays(day time.Time, n int) time.Time {
	day = day.In(c.Location())
	return time.Date(day.Year(), day.Month(), day.Day()+n, 0, 0, 0, 0, c.Location())
}

func (c Calendar) MonthOf(t time.Time) MonthKey {
	return MonthOf(t.In(c.Location()))
}

func (c Calendar) RecordMonth(r Record) MonthKey {
	return MonthOf(r.Time(c.Location()))
}

// InRange reports whether the record timestamp lies in [start, end).
func InRange(r Record, start, end time.Time) bool {
	return r.Timestamp >= start.UnixMilli() && r.Timestamp < end.UnixMilli()
}
