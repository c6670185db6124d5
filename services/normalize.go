package services

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// NormalizeRatings converts a column of raw rating values to the 1-5 scale.
// The input scale is inferred from the observed range: values already in
// [1,5] are rounded, a maximum of at most 10 is halved, a maximum of at most
// 100 is divided by 20, anything else passes through. Results are clipped to
// [1,5]. Non-numeric and empty values stay nil.
func NormalizeRatings(raw []string) []*float64 {
	values := make([]*float64, len(raw))
	minV, maxV := math.Inf(1), math.Inf(-1)
	for i, s := range raw {
		v, ok := parseNumber(s)
		if !ok {
			continue
		}
		values[i] = &v
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	if math.IsInf(maxV, -1) {
		return values
	}

	var convert func(float64) float64
	switch {
	case maxV <= 5 && minV >= 1:
		convert = math.RoundToEven
	case maxV <= 10:
		convert = func(v float64) float64 { return math.RoundToEven(v / 2) }
	case maxV <= 100:
		convert = func(v float64) float64 { return math.RoundToEven(v / 20) }
	default:
		convert = func(v float64) float64 { return v }
	}

	for i, v := range values {
		if v == nil {
			continue
		}
		n := clip(convert(*v), 1, 5)
		values[i] = &n
	}
	return values
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// flexibleLayouts is the first, format-agnostic attempt. Slash dates are
// read month first.
var flexibleLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04",
	"01-02-2006",
	"2006.01.02",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC822,
	time.ANSIC,
}

// explicitLayouts is retried column-wide when the flexible pass fails for
// more than half of the values.
var explicitLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"01-02-2006",
	"02-01-2006",
}

// dateStrategy parses a single value or reports failure.
type dateStrategy func(string) (time.Time, bool)

// ParseDates parses a column of date strings. Values that cannot be parsed
// are nil. The flexible pass runs first; if more than half of the values
// fail, each explicit layout is applied to the whole column and the attempt
// with the fewest failures is kept.
func ParseDates(raw []string) []*time.Time {
	best, failed := parseColumn(raw, flexibleDate)
	if failed*2 <= len(raw) {
		return best
	}
	for _, layout := range explicitLayouts {
		parsed, f := parseColumn(raw, layoutDate(layout))
		if f < failed {
			best, failed = parsed, f
		}
	}
	return best
}

func parseColumn(raw []string, parse dateStrategy) ([]*time.Time, int) {
	out := make([]*time.Time, len(raw))
	failed := 0
	for i, s := range raw {
		t, ok := parse(strings.TrimSpace(s))
		if !ok {
			failed++
			continue
		}
		out[i] = &t
	}
	return out, failed
}

func flexibleDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range flexibleLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func layoutDate(layout string) dateStrategy {
	return func(s string) (time.Time, bool) {
		if s == "" {
			return time.Time{}, false
		}
		t, err := time.Parse(layout, s)
		return t, err == nil
	}
}
