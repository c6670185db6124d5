package models

import "time"

// EnrichedReview is a canonical record together with its analysis, as it
// is stored and reported.
type EnrichedReview struct {
	ID          int64           `json:"id,omitempty"`
	ImportID    string          `json:"import_id,omitempty"`
	Platform    Platform        `json:"platform"`
	Record      CanonicalRecord `json:"record"`
	Analysis    AnalysisResult  `json:"analysis"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
}

// PreviewReport is returned by preview mode. On failure only Valid, Error
// and Suggestions are set.
type PreviewReport struct {
	Valid            bool              `json:"valid"`
	DetectedPlatform Platform          `json:"detected_platform,omitempty"`
	TotalRows        int               `json:"total_rows"`
	ValidRows        int               `json:"valid_rows"`
	InvalidRows      int               `json:"invalid_rows"`
	ColumnsFound     []string          `json:"columns_found,omitempty"`
	MappedColumns    []string          `json:"mapped_columns,omitempty"`
	ValidationStats  *ValidationStats  `json:"validation_stats,omitempty"`
	Preview          []CanonicalRecord `json:"preview"`
	Issues           []string          `json:"issues,omitempty"`
	Error            string            `json:"error,omitempty"`
	Suggestions      []string          `json:"suggestions,omitempty"`
}

// ImportReport aggregates one import run.
type ImportReport struct {
	ImportID         string          `json:"import_id"`
	DetectedPlatform Platform        `json:"detected_platform"`
	CreatedCount     int             `json:"created_count"`
	FailedCount      int             `json:"failed_count"`
	AnalyzedCount    int             `json:"analyzed_count"`
	SourceBreakdown  map[string]int  `json:"source_breakdown"`
	ValidationStats  ValidationStats `json:"validation_stats"`
}

// ImportResult is the import-mode output: the enriched records plus the
// aggregate report.
type ImportResult struct {
	Reviews []*EnrichedReview `json:"reviews"`
	Report  ImportReport      `json:"report"`
}

// ReanalyzeReport summarises a re-analysis pass over stored reviews.
type ReanalyzeReport struct {
	Processed int `json:"processed"`
	Changed   int `json:"changed"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

// TopicCount is one entry in a topic ranking.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// InsightReport holds the computed analytics over analyzed reviews.
type InsightReport struct {
	TotalReviews      int            `json:"total_reviews"`
	Positive          int            `json:"positive"`
	Negative          int            `json:"negative"`
	Neutral           int            `json:"neutral"`
	RatedReviews      int            `json:"rated_reviews"`
	AverageRating     float64        `json:"average_rating"`
	FallbackCount     int            `json:"fallback_count"`
	TopPositiveTopics []TopicCount   `json:"top_positive_topics"`
	TopNegativeTopics []TopicCount   `json:"top_negative_topics"`
	SourceBreakdown   map[string]int `json:"source_breakdown"`
}

// PlatformFormat describes the export expected from one platform.
type PlatformFormat struct {
	Name               string   `json:"name"`
	RequiredColumns    []string `json:"required_columns"`
	OptionalColumns    []string `json:"optional_columns"`
	ExportInstructions string   `json:"export_instructions"`
}

// SupportedFormats is the static catalogue returned to callers.
type SupportedFormats struct {
	SupportedPlatforms []PlatformFormat   `json:"supported_platforms"`
	UniversalFormat    map[string]string `json:"universal_format"`
}
