package period

import "time"

// Calendar is the strategy for one period unit.
type Calendar interface {
	// Shift moves t by n units, keeping calendar semantics (month ends are
	// clamped, never rolled over into the next month).
	Shift(t time.Time, n int) time.Time
	// Current returns the first and last day of the unit containing today.
	Current(today time.Time) (start, end time.Time)
}

type DayCalendar struct{}

func (DayCalendar) Shift(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

func (DayCalendar) Current(today time.Time) (time.Time, time.Time) {
	return today, today
}

// WeekCalendar uses Monday as the first day of the week.
type WeekCalendar struct{}

func (WeekCalendar) Shift(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, 7*n)
}

func (WeekCalendar) Current(today time.Time) (time.Time, time.Time) {
	weekday := int(today.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return today.AddDate(0, 0, 1-weekday), today.AddDate(0, 0, 7-weekday)
}

type MonthCalendar struct{}

func (MonthCalendar) Shift(t time.Time, n int) time.Time {
	return addMonths(t, n)
}

func (MonthCalendar) Current(today time.Time) (time.Time, time.Time) {
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	return start, start.AddDate(0, 1, -1)
}

type YearCalendar struct{}

func (YearCalendar) Shift(t time.Time, n int) time.Time {
	return addMonths(t, 12*n)
}

func (YearCalendar) Current(today time.Time) (time.Time, time.Time) {
	return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location()),
		time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, today.Location())
}

// addMonths shifts t by n months, clamping the day to the target month's
// length: March 31 minus one month is February 28 (or 29).
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	day := t.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

var calendars = map[Unit]Calendar{
	Day:   DayCalendar{},
	Week:  WeekCalendar{},
	Month: MonthCalendar{},
	Year:  YearCalendar{},
}

// RegisterCalendar adds or replaces the strategy for a unit. It is meant to
// be called from init functions, before any Resolve.
func RegisterCalendar(unit Unit, cal Calendar) {
	calendars[unit] = cal
}
