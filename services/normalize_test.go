package services

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ratingValues(ratings []*float64) []any {
	out := make([]any, len(ratings))
	for i, r := range ratings {
		if r == nil {
			out[i] = nil
			continue
		}
		out[i] = *r
	}
	return out
}

func TestNormalizeRatings(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []any
	}{
		{"ten point scale", []string{"2", "4", "6", "8", "10"}, []any{1.0, 2.0, 3.0, 4.0, 5.0}},
		{"hundred point scale", []string{"20", "40", "60", "80", "100"}, []any{1.0, 2.0, 3.0, 4.0, 5.0}},
		{"five point passthrough", []string{"1", "2", "3", "4", "5"}, []any{1.0, 2.0, 3.0, 4.0, 5.0}},
		{"decimals rounded", []string{"1.2", "2.7", "3.9", "4.1", "4.8"}, []any{1.0, 3.0, 4.0, 4.0, 5.0}},
		{"half rounds to even", []string{"2.5", "3.5", "1"}, []any{2.0, 4.0, 1.0}},
		{"missing stays missing", []string{"1", "", "3", "4", "5"}, []any{1.0, nil, 3.0, 4.0, 5.0}},
		{"non numeric", []string{"invalid", "bad", "terrible"}, []any{nil, nil, nil}},
		{"zero floor clipped", []string{"0", "5"}, []any{1.0, 2.0}},
		{"unrecognized scale clipped", []string{"150", "3.5", "0.2"}, []any{5.0, 3.5, 1.0}},
		{"whitespace tolerated", []string{" 4 ", "5"}, []any{4.0, 5.0}},
		{"empty column", nil, []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ratingValues(NormalizeRatings(tt.raw)))
		})
	}
}

func TestNormalizeRatingsIdempotentOnFiveScale(t *testing.T) {
	first := NormalizeRatings([]string{"1", "3", "5", "2"})
	raw := make([]string, len(first))
	for i, r := range first {
		raw[i] = strconv.FormatFloat(*r, 'f', -1, 64)
	}
	assert.Equal(t, ratingValues(first), ratingValues(NormalizeRatings(raw)))
}

func TestParseDatesFlexible(t *testing.T) {
	got := ParseDates([]string{"2024-01-15T10:30:00Z", "2024-01-16 14:20:00", "01/15/2024", "Jan 2, 2024"})
	for i, d := range got {
		require.NotNil(t, d, "value %d should parse", i)
	}
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), *got[0])
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *got[2])
}

func TestParseDatesFallsBackToExplicitLayouts(t *testing.T) {
	// day-first values fail the flexible month-first pass
	got := ParseDates([]string{"15/01/2024", "28/02/2024", "31/12/2023"})
	for i, d := range got {
		require.NotNil(t, d, "value %d should parse", i)
	}
	assert.Equal(t, time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), *got[1])
}

func TestParseDatesInvalidBecomeMissing(t *testing.T) {
	got := ParseDates([]string{"not_a_date", "2024-13-45", ""})
	assert.Len(t, got, 3)
	for _, d := range got {
		assert.Nil(t, d)
	}
}

func TestParseDatesMixed(t *testing.T) {
	got := ParseDates([]string{"2024-01-15", "01/15/2024", "15/01/2024", "2024/01/15"})
	parsed := 0
	for _, d := range got {
		if d != nil {
			parsed++
		}
	}
	assert.Equal(t, 3, parsed)
}
