package models

import (
	"strings"
	"time"
)

// Platform identifies the review export source inferred from column names.
type Platform string

const (
	PlatformGoogle      Platform = "google"
	PlatformYelp        Platform = "yelp"
	PlatformFacebook    Platform = "facebook"
	PlatformAmazon      Platform = "amazon"
	PlatformTripAdvisor Platform = "tripadvisor"
	PlatformGeneric     Platform = "generic"
)

// DisplayName is the label used when an export carries no source column,
// e.g. "Google" or "Tripadvisor".
func (p Platform) DisplayName() string {
	s := string(p)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Canonical column names.
const (
	ColumnRating       = "rating"
	ColumnComment      = "comment"
	ColumnDate         = "date"
	ColumnReviewerName = "reviewer_name"
	ColumnSource       = "source"
)

// Defaults applied by the validator.
const (
	DefaultReviewerName = "Anonymous"
	DefaultSource       = "Unknown"
	ImportMethodCSV     = "universal_csv"
)

// RawTable is one uploaded file: a header plus rows keyed by source column
// name. Every row carries every header column.
type RawTable struct {
	Columns []string
	Rows    []map[string]string
}

// Column returns the values of one source column in row order.
func (t *RawTable) Column(name string) []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[name]
	}
	return out
}

// MappedRow holds the canonical fields for one row. A nil pointer means the
// value is missing (absent column or empty cell).
type MappedRow struct {
	Rating       *float64
	Comment      *string
	Date         *time.Time
	ReviewerName *string
	Source       *string
}

// MappedTable is a RawTable rewritten into canonical columns. Columns lists
// only the canonical columns that were found or synthesized.
type MappedTable struct {
	Columns []string
	Rows    []MappedRow
}

// Has reports whether a canonical column is present.
func (t *MappedTable) Has(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// CanonicalRecord is the normalized unit produced by validation.
type CanonicalRecord struct {
	Rating       *int       `json:"rating"`
	Comment      string     `json:"comment"`
	Date         *time.Time `json:"date"`
	ReviewerName string     `json:"reviewer_name"`
	Source       string     `json:"source"`
	ImportedAt   time.Time  `json:"imported_at"`
	ImportMethod string     `json:"import_method"`
}

// ValidationStats summarises one validation run.
type ValidationStats struct {
	OriginalCount int      `json:"original_count"`
	FinalCount    int      `json:"final_count"`
	SuccessRate   float64  `json:"success_rate"`
	Issues        []string `json:"issues"`
}
