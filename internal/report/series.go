package report

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// monthKey is the record field holding the YYYY-MM month.
const monthKey = "month"

// Point is one entity's value within a monthly record.
type Point struct {
	Name  string
	Value float64
}

// Record holds one calendar month of a series. Values keep entity
// declaration order.
type Record struct {
	Month  string
	Values []Point
}

// Series is a chronologically ordered run of monthly records.
type Series []Record

// Value returns the value reported for name, if any.
func (r Record) Value(name string) (float64, bool) {
	for _, p := range r.Values {
		if p.Name == name {
			return p.Value, true
		}
	}
	return 0, false
}

// MarshalJSON flattens the record into {"month": ..., "<name>": value, ...}
// keeping entity order. Values that are not finite encode as null.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"month":`)
	month, err := json.Marshal(r.Month)
	if err != nil {
		return nil, err
	}
	buf.Write(month)

	for _, p := range r.Values {
		name, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			buf.WriteString("null")
			continue
		}
		buf.WriteString(strconv.FormatFloat(p.Value, 'f', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Months returns the month keys of the series in order.
func (s Series) Months() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = r.Month
	}
	return out
}
