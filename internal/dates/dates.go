// Package dates normalizes the free-text date_posted values vendors emit
// into ISO calendar dates. Parsing is an explicit ordered strategy list,
// first success wins; a value no strategy accepts normalizes to "".
package dates

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const ISO = "2006-01-02"

type strategy struct {
	name  string
	parse func(string) (time.Time, error)
}

// exactLayouts covers the formats the known vendors actually emit, tried
// before the free-form parser so e.g. "2024-01-05" never round-trips
// through heuristics.
var exactLayouts = []string{
	ISO,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.RFC1123,
	time.RFC1123Z,
}

// dayFirstLayouts mirror the original pipeline's day-first retry for
// ambiguous numeric dates common in Latin American sources.
var dayFirstLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"2/1/2006",
}

var strategies = []strategy{
	{name: "exact", parse: parseExact},
	{name: "freeform", parse: func(s string) (time.Time, error) { return dateparse.ParseAny(s) }},
	{name: "dayfirst", parse: parseDayFirst},
}

// Normalize returns the posting date as YYYY-MM-DD, keeping the calendar
// day as written (no timezone conversion). The second return is false when
// every strategy failed.
func Normalize(value string) (string, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return "", false
	}
	for _, st := range strategies {
		if t, err := st.parse(s); err == nil {
			return t.Format(ISO), true
		}
	}
	return "", false
}

func parseExact(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range exactLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseDayFirst(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dayFirstLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
