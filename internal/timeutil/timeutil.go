package timeutil

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// TimeOfDay is a clock time within a single day, stored as seconds since
// midnight. It maps to an "HH:MM:SS" TEXT column so range predicates compare
// lexicographically in SQL.
type TimeOfDay int

// EndOfDay is the open-interval horizon: an entry with no end time is treated
// as running until midnight for overlap checks.
const EndOfDay TimeOfDay = 24 * 3600

// NewTimeOfDay builds a TimeOfDay from clock components.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m, sec int
	switch n, _ := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); n {
	case 2, 3:
	default:
		return 0, fmt.Errorf("invalid time %q, expected HH:MM or HH:MM:SS", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM or HH:MM:SS", s)
	}
	return NewTimeOfDay(h, m, sec), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 3600 }
func (t TimeOfDay) Minute() int { return int(t) % 3600 / 60 }
func (t TimeOfDay) Second() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

// Sub returns the duration from u to t.
func (t TimeOfDay) Sub(u TimeOfDay) time.Duration {
	return time.Duration(t-u) * time.Second
}

// Value implements driver.Valuer.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan implements sql.Scanner.
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		return t.Scan(string(v))
	case time.Time:
		*t = NewTimeOfDay(v.Hour(), v.Minute(), v.Second())
		return nil
	case int64:
		*t = TimeOfDay(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

// DateOf reduces t to its calendar date, normalized to UTC midnight so date
// values compare equal wherever they were produced.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar date value in UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// WeekWindow returns the Monday and Sunday dates of the week containing now.
func WeekWindow(now time.Time) (from, to time.Time) {
	// Go's weekday is Sunday=0; shift so Monday=0.
	wd := (int(now.Weekday()) + 6) % 7
	from = DateOf(now).AddDate(0, 0, -wd)
	to = from.AddDate(0, 0, 6)
	return from, to
}

// MonthWindow returns the first and last calendar days of the month
// containing now.
func MonthWindow(now time.Time) (from, to time.Time) {
	from = Date(now.Year(), now.Month(), 1)
	to = from.AddDate(0, 1, -1)
	return from, to
}

// FormatDuration renders d as "H:MM:SS" for reports.
func FormatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}
