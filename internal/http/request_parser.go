// Package http serves the reporting API as JSON.
//
// This file implements utilities for parsing and validating query
// parameters into period, filter and sort descriptors.

package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/currency"
	"fintrack/internal/period"
	"fintrack/internal/query"
	"fintrack/internal/services"
)

// requestError marks a client mistake; it always maps to 400.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// ParsePeriod reads a period from query parameters.
//
//	start=2024-01-01&end=2024-03-31     absolute
//	option=Past&unit=month&value=3      relative
//
// No period parameters at all means This Month. A relative period without
// option means This, without unit means month, without value means 1.
func ParsePeriod(q url.Values) (period.Period, error) {
	start := sanitizeInput(q.Get("start"))
	end := sanitizeInput(q.Get("end"))
	if start != "" || end != "" {
		if start == "" || end == "" {
			return period.Period{}, badRequest("both start and end are required for an absolute period")
		}
		for _, bound := range []string{start, end} {
			if _, err := core.ParseDate(bound); err != nil {
				return period.Period{}, badRequest("invalid date %q: expected YYYY-MM-DD", bound)
			}
		}
		return period.NewAbsolute(start, end), nil
	}

	rawOption := sanitizeInput(q.Get("option"))
	rawUnit := sanitizeInput(q.Get("unit"))
	rawValue := sanitizeInput(q.Get("value"))
	if rawOption == "" && rawUnit == "" && rawValue == "" {
		return period.ThisMonth(), nil
	}

	opt, err := period.ParseOption(rawOption)
	if err != nil {
		return period.Period{}, badRequest("%v", err)
	}
	unit := period.Month
	if rawUnit != "" {
		if unit, err = period.ParseUnit(rawUnit); err != nil {
			return period.Period{}, badRequest("%v", err)
		}
	}
	value := 1
	if rawValue != "" {
		if value, err = strconv.Atoi(rawValue); err != nil {
			return period.Period{}, badRequest("invalid period value %q", rawValue)
		}
	}
	return period.NewRelative(opt, unit, value), nil
}

// ParseTransactionQuery reads filter, value and sort parameters. value and
// sort repeat; each sort entry is "Key" or "Key:asc|desc".
func ParseTransactionQuery(q url.Values) (services.TransactionQuery, error) {
	key, ok := query.ParseFilterKey(sanitizeInput(q.Get("filter")))
	if !ok {
		return services.TransactionQuery{}, badRequest("unknown filter %q", q.Get("filter"))
	}

	values := make([]string, 0, len(q["value"]))
	for _, v := range q["value"] {
		values = append(values, sanitizeInput(v))
	}

	orders := make([]query.Order, 0, len(q["sort"]))
	for _, raw := range q["sort"] {
		order, err := parseOrder(sanitizeInput(raw))
		if err != nil {
			return services.TransactionQuery{}, err
		}
		orders = append(orders, order)
	}

	return services.TransactionQuery{Filter: key, Values: values, Orders: orders}, nil
}

func parseOrder(raw string) (query.Order, error) {
	name, dir := raw, ""
	if i := strings.LastIndex(raw, ":"); i >= 0 {
		name, dir = raw[:i], raw[i+1:]
	}

	key, ok := query.ParseSortKey(name)
	if !ok {
		return query.Order{}, badRequest("unknown sort key %q", name)
	}
	direction := query.Ascending
	if strings.TrimSpace(dir) != "" {
		if direction, ok = query.ParseDirection(dir); !ok {
			return query.Order{}, badRequest("unknown sort direction %q", dir)
		}
	}
	return query.Order{Key: key, Direction: direction}, nil
}

// ParseBase reads the optional base currency of a history request.
func ParseBase(q url.Values) (string, error) {
	base := strings.ToUpper(sanitizeInput(q.Get("base")))
	if base != "" && !currency.IsSupported(base) {
		return "", badRequest("unsupported base currency %q", base)
	}
	return base, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
