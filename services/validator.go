package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"review-importer/models"
	"review-importer/utils"
)

// Validator turns mapped rows into canonical records, dropping rows without
// usable content and filling identity defaults.
type Validator struct {
	logger *utils.Logger
	now    func() time.Time
}

// NewValidator creates a Validator with the given logger.
func NewValidator(logger *utils.Logger) *Validator {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Validator{logger: logger, now: time.Now}
}

// WithClock replaces the clock used to stamp imported_at.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// Validate applies the cleaning rules in order and reports what each one
// removed or repaired.
func (v *Validator) Validate(table *models.MappedTable) ([]*models.CanonicalRecord, models.ValidationStats) {
	rows := table.Rows
	stats := models.ValidationStats{OriginalCount: len(rows), Issues: []string{}}

	// 1. neither rating nor comment
	kept := rows[:0:0]
	for _, r := range rows {
		if r.Rating == nil && r.Comment == nil {
			continue
		}
		kept = append(kept, r)
	}
	if n := len(rows) - len(kept); n > 0 {
		stats.Issues = append(stats.Issues, fmt.Sprintf("Removed %d rows with no comment or rating", n))
	}
	rows = kept

	// 2. blank comment and no rating
	comments := make([]string, 0, len(rows))
	kept = rows[:0:0]
	for _, r := range rows {
		c := ""
		if r.Comment != nil {
			c = strings.TrimSpace(*r.Comment)
		}
		if c == "" && r.Rating == nil {
			continue
		}
		kept = append(kept, r)
		comments = append(comments, c)
	}
	if n := len(rows) - len(kept); n > 0 {
		stats.Issues = append(stats.Issues, fmt.Sprintf("Removed %d rows with empty comments and no rating", n))
	}
	rows = kept

	// 3. ratings outside [1,5]
	now := v.now()
	records := make([]*models.CanonicalRecord, 0, len(rows))
	invalid, namesFilled, sourcesFilled := 0, 0, 0
	for i, r := range rows {
		rec := &models.CanonicalRecord{
			Comment:      comments[i],
			Date:         r.Date,
			ImportedAt:   now,
			ImportMethod: models.ImportMethodCSV,
		}
		if r.Rating != nil {
			if *r.Rating < 1 || *r.Rating > 5 {
				invalid++
				continue
			}
			n := int(math.RoundToEven(*r.Rating))
			rec.Rating = &n
		}

		// 4. identity defaults
		rec.ReviewerName = strings.TrimSpace(deref(r.ReviewerName))
		if rec.ReviewerName == "" {
			rec.ReviewerName = models.DefaultReviewerName
			namesFilled++
		}
		rec.Source = strings.TrimSpace(deref(r.Source))
		if rec.Source == "" {
			rec.Source = models.DefaultSource
			sourcesFilled++
		}
		records = append(records, rec)
	}
	if invalid > 0 {
		stats.Issues = append(stats.Issues, fmt.Sprintf("Removed %d rows with invalid ratings", invalid))
	}
	if namesFilled > 0 {
		stats.Issues = append(stats.Issues, fmt.Sprintf("Filled %d missing reviewer names with %q", namesFilled, models.DefaultReviewerName))
	}
	if sourcesFilled > 0 {
		stats.Issues = append(stats.Issues, fmt.Sprintf("Filled %d missing sources with %q", sourcesFilled, models.DefaultSource))
	}

	stats.FinalCount = len(records)
	if stats.OriginalCount > 0 {
		stats.SuccessRate = float64(stats.FinalCount) / float64(stats.OriginalCount)
	}

	v.logger.Info("[validator] Validated %d → %d reviews (dropped %d)",
		stats.OriginalCount, stats.FinalCount, stats.OriginalCount-stats.FinalCount)
	return records, stats
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
