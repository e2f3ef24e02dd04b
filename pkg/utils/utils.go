package utils

import (
	"time"
)

// DateLayout is the yyyy-MM-dd layout of stored billing dates
const DateLayout = "2006-01-02"

// StartOfDay truncates t to midnight in its own location.
// time.Truncate works on absolute time and would cut at UTC midnight instead.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddMonths adds n calendar months, clamping the day to the last day of the
// target month (Jan 31 + 1 month = Feb 28/29), unlike time.AddDate which
// would overflow into the following month.
func AddMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, n, 0)

	day := t.Day()
	if last := DaysInMonth(target.Year(), target.Month()); day > last {
		day = last
	}

	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// AddYears adds n years with the same clamping as AddMonths (Feb 29 -> Feb 28)
func AddYears(t time.Time, n int) time.Time {
	return AddMonths(t, 12*n)
}

// DaysInMonth returns the number of days of the given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CalendarDaysBetween returns the number of calendar days from -> to.
// Negative when to is before from. Only the calendar date of each argument is
// used, so DST shifts do not produce off-by-one results.
func CalendarDaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// ParseDate parses a yyyy-MM-dd date at midnight in loc
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

// FormatDate formats t as yyyy-MM-dd
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
