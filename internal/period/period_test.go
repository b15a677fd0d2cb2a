package period

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 14, 30, 0, 0, time.UTC)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		period Period
		now    time.Time
		want   Window
	}{
		{
			name:   "absolute passes through verbatim",
			period: NewAbsolute("2024-01-01", "2024-02-15"),
			now:    date(2030, 1, 1),
			want:   Window{"2024-01-01", "2024-02-15"},
		},
		{
			name:   "this month",
			period: Period{Type: Relative, Option: This, Unit: "Month"},
			now:    date(2024, 3, 15),
			want:   Window{"2024-03-01", "2024-03-31"},
		},
		{
			name:   "this month in a leap february",
			period: NewRelative(This, Month, 1),
			now:    date(2024, 2, 10),
			want:   Window{"2024-02-01", "2024-02-29"},
		},
		{
			name:   "this year",
			period: NewRelative(This, Year, 1),
			now:    date(2024, 7, 4),
			want:   Window{"2024-01-01", "2024-12-31"},
		},
		{
			name:   "this week from a wednesday",
			period: NewRelative(This, Week, 1),
			now:    date(2024, 3, 13),
			want:   Window{"2024-03-11", "2024-03-17"},
		},
		{
			name:   "this week from a sunday ends on that sunday",
			period: NewRelative(This, Week, 1),
			now:    date(2024, 3, 17),
			want:   Window{"2024-03-11", "2024-03-17"},
		},
		{
			name:   "this week from a monday",
			period: NewRelative(This, Week, 1),
			now:    date(2024, 3, 11),
			want:   Window{"2024-03-11", "2024-03-17"},
		},
		{
			name:   "empty option means this",
			period: Period{Type: Relative, Unit: Day},
			now:    date(2024, 3, 15),
			want:   Window{"2024-03-15", "2024-03-15"},
		},
		{
			name:   "past one month from march first",
			period: NewRelative(Past, Month, 1),
			now:    date(2024, 3, 1),
			want:   Window{"2024-02-01", "2024-03-01"},
		},
		{
			name:   "past one month clamps to month end",
			period: NewRelative(Past, Month, 1),
			now:    date(2023, 3, 31),
			want:   Window{"2023-02-28", "2023-03-31"},
		},
		{
			name:   "past three days",
			period: NewRelative(Past, Day, 3),
			now:    date(2024, 1, 2),
			want:   Window{"2023-12-30", "2024-01-02"},
		},
		{
			name:   "past two weeks",
			period: NewRelative(Past, Week, 2),
			now:    date(2024, 1, 15),
			want:   Window{"2024-01-01", "2024-01-15"},
		},
		{
			name:   "past year from leap day",
			period: NewRelative(Past, Year, 1),
			now:    date(2024, 2, 29),
			want:   Window{"2023-02-28", "2024-02-29"},
		},
		{
			name:   "next keeps end at today",
			period: NewRelative(Next, Month, 2),
			now:    date(2024, 1, 31),
			want:   Window{"2024-03-31", "2024-01-31"},
		},
		{
			name:   "zero value defaults to one",
			period: NewRelative(Past, Day, 0),
			now:    date(2024, 1, 2),
			want:   Window{"2024-01-01", "2024-01-02"},
		},
		{
			name:   "unknown unit resolves to today",
			period: NewRelative(Past, "fortnight", 1),
			now:    date(2024, 1, 2),
			want:   Window{"2024-01-02", "2024-01-02"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.period, tt.now)
			if got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveDoesNotMutateNow(t *testing.T) {
	now := date(2024, 3, 31)
	before := now
	Resolve(NewRelative(Past, Month, 1), now)
	if !now.Equal(before) {
		t.Fatalf("now changed from %v to %v", before, now)
	}
}

func TestParseUnitAndOption(t *testing.T) {
	if u, err := ParseUnit("Month"); err != nil || u != Month {
		t.Fatalf("ParseUnit(Month) = %q, %v", u, err)
	}
	if _, err := ParseUnit("decade"); !errors.Is(err, ErrUnknownUnit) {
		t.Fatalf("expected ErrUnknownUnit, got %v", err)
	}
	if o, err := ParseOption("past"); err != nil || o != Past {
		t.Fatalf("ParseOption(past) = %q, %v", o, err)
	}
	if o, err := ParseOption(""); err != nil || o != This {
		t.Fatalf("ParseOption(\"\") = %q, %v", o, err)
	}
	if _, err := ParseOption("later"); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
}

type quarterCalendar struct{}

func (quarterCalendar) Shift(t time.Time, n int) time.Time { return addMonths(t, 3*n) }

func (quarterCalendar) Current(today time.Time) (time.Time, time.Time) {
	first := time.Month((int(today.Month())-1)/3*3 + 1)
	start := time.Date(today.Year(), first, 1, 0, 0, 0, 0, today.Location())
	return start, start.AddDate(0, 3, -1)
}

func TestRegisterCalendar(t *testing.T) {
	const quarter Unit = "quarter"
	RegisterCalendar(quarter, quarterCalendar{})
	defer delete(calendars, quarter)

	got := Resolve(NewRelative(This, quarter, 1), date(2024, 5, 20))
	want := Window{"2024-04-01", "2024-06-30"}
	if got != want {
		t.Fatalf("Resolve(this quarter) = %v, want %v", got, want)
	}
}

func TestPeriodString(t *testing.T) {
	if got := NewAbsolute("2024-01-01", "2024-01-31").String(); got != "2024-01-01..2024-01-31" {
		t.Errorf("String() = %q", got)
	}
	if got := (Period{Type: Relative, Unit: Month}).String(); got != "This 1 month" {
		t.Errorf("String() = %q", got)
	}
}
