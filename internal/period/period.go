// Package period turns user-facing period descriptions into concrete
// [start, end] date windows.
//
// Relative periods are resolved through a registry of unit strategies, one
// per calendar unit, so that new units can be added without touching the
// resolver.
package period

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

const (
	Absolute Kind = "absolute"
	Relative Kind = "relative"

	Past Option = "Past"
	This Option = "This"
	Next Option = "Next"

	Day   Unit = "day"
	Week  Unit = "week"
	Month Unit = "month"
	Year  Unit = "year"
)

// AllTime is the date filter sentinel that disables the date window.
const AllTime = "allTime"

type (
	Kind   string
	Option string
	Unit   string

	// Period is either an absolute {Start, End} pair or a relative
	// {Option, Unit, Value} descriptor. It only lives for one query.
	Period struct {
		Type   Kind   `json:"type"`
		Start  string `json:"start,omitempty"`
		End    string `json:"end,omitempty"`
		Option Option `json:"option,omitempty"`
		Unit   Unit   `json:"unit,omitempty"`
		Value  int    `json:"value,omitempty"`
	}

	// Window is a resolved period in YYYY-MM-DD form.
	Window struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
)

var (
	ErrUnknownUnit   = errors.New("unknown period unit")
	ErrUnknownOption = errors.New("unknown period option")
)

// NewAbsolute builds a period whose bounds are passed through verbatim.
func NewAbsolute(start, end string) Period {
	return Period{Type: Absolute, Start: start, End: end}
}

// NewRelative builds a "Past/This/Next N unit" period.
func NewRelative(opt Option, unit Unit, value int) Period {
	return Period{Type: Relative, Option: opt, Unit: unit, Value: value}
}

// ThisMonth is the default period used when a caller gives none.
func ThisMonth() Period {
	return NewRelative(This, Month, 1)
}

// ParseUnit accepts unit names case-insensitively ("Month", "month").
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := calendars[u]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
	return u, nil
}

// ParseOption accepts Past, This and Next case-insensitively. An empty
// string means This.
func ParseOption(s string) (Option, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "past":
		return Past, nil
	case "", "this":
		return This, nil
	case "next":
		return Next, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOption, s)
	}
}

// Values returns the window as the [start, end] payload of a date filter.
func (w Window) Values() []string {
	return []string{w.Start, w.End}
}

// Resolve turns p into a concrete window relative to now.
//
// Absolute periods are returned unchanged. Past and Next move only the
// start bound by Value units and keep the end at today, so a Next window
// starts after it ends. This windows cover the whole calendar unit that
// contains today. An unknown unit resolves to [today, today].
func Resolve(p Period, now time.Time) Window {
	if p.Type == Absolute {
		return Window{Start: p.Start, End: p.End}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	value := p.Value
	if value <= 0 {
		value = 1
	}

	cal, ok := calendars[Unit(strings.ToLower(string(p.Unit)))]
	if !ok {
		return window(today, today)
	}

	opt, err := ParseOption(string(p.Option))
	if err != nil {
		opt = This
	}
	switch opt {
	case Past:
		return window(cal.Shift(today, -value), today)
	case Next:
		return window(cal.Shift(today, value), today)
	default:
		start, end := cal.Current(today)
		return window(start, end)
	}
}

// String renders the period for logs and cache keys.
func (p Period) String() string {
	if p.Type == Absolute {
		return p.Start + ".." + p.End
	}
	value := p.Value
	if value <= 0 {
		value = 1
	}
	opt := p.Option
	if opt == "" {
		opt = This
	}
	return fmt.Sprintf("%s %d %s", opt, value, p.Unit)
}

func window(start, end time.Time) Window {
	return Window{Start: core.FormatDate(start), End: core.FormatDate(end)}
}
