package services

import (
	"strings"

	"review-importer/models"
	"review-importer/utils"
)

// ColumnVariants lists, per canonical field, the accepted source column
// names in priority order.
type ColumnVariants struct {
	Rating       []string
	Comment      []string
	Date         []string
	ReviewerName []string
	Source       []string
}

// DefaultColumnVariants returns the built-in per-platform mappings.
func DefaultColumnVariants() map[models.Platform]ColumnVariants {
	return map[models.Platform]ColumnVariants{
		models.PlatformGoogle: {
			Rating:       []string{"star_rating", "rating", "stars", "review_rating"},
			Comment:      []string{"review_text", "comment", "review_comment", "text", "review"},
			Date:         []string{"review_date", "date", "created_date", "timestamp", "create_time"},
			ReviewerName: []string{"reviewer_name", "customer_name", "name", "reviewer", "reviewer_display_name"},
			Source:       []string{"source", "platform"},
		},
		models.PlatformYelp: {
			Rating:       []string{"rating", "stars", "star_rating"},
			Comment:      []string{"text", "review_text", "comment"},
			Date:         []string{"date", "review_date", "created_date"},
			ReviewerName: []string{"user_name", "reviewer_name", "name"},
			Source:       []string{"source"},
		},
		models.PlatformFacebook: {
			Rating:       []string{"rating", "recommendation_type", "stars"},
			Comment:      []string{"review_text", "comment", "message"},
			Date:         []string{"created_time", "date"},
			ReviewerName: []string{"reviewer_name", "from_name", "name"},
			Source:       []string{"source"},
		},
		models.PlatformAmazon: {
			Rating:       []string{"star_rating", "rating", "stars"},
			Comment:      []string{"review_body", "review_text", "comment"},
			Date:         []string{"review_date", "date"},
			ReviewerName: []string{"reviewer_name", "customer_name"},
			Source:       []string{"marketplace", "source"},
		},
		models.PlatformTripAdvisor: {
			Rating:       []string{"rating", "stars", "star_rating"},
			Comment:      []string{"review_text", "text", "comment"},
			Date:         []string{"date", "review_date", "visit_date"},
			ReviewerName: []string{"reviewer_name", "username", "name"},
			Source:       []string{"source"},
		},
		models.PlatformGeneric: {
			Rating:       []string{"rating", "stars", "star_rating", "score"},
			Comment:      []string{"comment", "review", "text", "feedback", "review_text", "feedback_text"},
			Date:         []string{"date", "created_date", "review_date", "timestamp"},
			ReviewerName: []string{"name", "customer_name", "reviewer_name", "user_name"},
			Source:       []string{"source", "platform", "origin"},
		},
	}
}

// Mapper rewrites platform-specific columns into the canonical schema.
type Mapper struct {
	variants map[models.Platform]ColumnVariants
	logger   *utils.Logger
}

// NewMapper creates a Mapper over the given variant tables.
func NewMapper(variants map[models.Platform]ColumnVariants, logger *utils.Logger) *Mapper {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Mapper{variants: variants, logger: logger}
}

// FindColumn returns the first column matching a variant, trying variants
// in order. A column matches when its normalized name equals, contains or
// is contained by the variant. It returns "" when nothing matches.
func FindColumn(columns []string, variants []string) string {
	for _, v := range variants {
		for _, col := range columns {
			n := strings.ToLower(strings.TrimSpace(col))
			if n == "" {
				continue
			}
			if n == v || strings.Contains(n, v) || strings.Contains(v, n) {
				return col
			}
		}
	}
	return ""
}

// Map rewrites the table for the given platform. Ratings are normalized and
// dates parsed; canonical columns without a source column are omitted,
// except source which falls back to the platform display name.
func (m *Mapper) Map(table *models.RawTable, platform models.Platform) *models.MappedTable {
	v, ok := m.variants[platform]
	if !ok {
		v = m.variants[models.PlatformGeneric]
	}

	out := &models.MappedTable{Rows: make([]models.MappedRow, len(table.Rows))}

	if col := FindColumn(table.Columns, v.Rating); col != "" {
		out.Columns = append(out.Columns, models.ColumnRating)
		for i, r := range NormalizeRatings(table.Column(col)) {
			out.Rows[i].Rating = r
		}
		m.logger.Debug("[mapper] rating <- %q", col)
	}

	if col := FindColumn(table.Columns, v.Comment); col != "" {
		out.Columns = append(out.Columns, models.ColumnComment)
		for i, s := range table.Column(col) {
			out.Rows[i].Comment = cellValue(s)
		}
		m.logger.Debug("[mapper] comment <- %q", col)
	}

	if col := FindColumn(table.Columns, v.Date); col != "" {
		out.Columns = append(out.Columns, models.ColumnDate)
		for i, d := range ParseDates(table.Column(col)) {
			out.Rows[i].Date = d
		}
		m.logger.Debug("[mapper] date <- %q", col)
	}

	if col := FindColumn(table.Columns, v.ReviewerName); col != "" {
		out.Columns = append(out.Columns, models.ColumnReviewerName)
		for i, s := range table.Column(col) {
			out.Rows[i].ReviewerName = cellValue(s)
		}
		m.logger.Debug("[mapper] reviewer_name <- %q", col)
	}

	out.Columns = append(out.Columns, models.ColumnSource)
	if col := FindColumn(table.Columns, v.Source); col != "" {
		for i, s := range table.Column(col) {
			out.Rows[i].Source = cellValue(s)
		}
		m.logger.Debug("[mapper] source <- %q", col)
	} else {
		label := platform.DisplayName()
		for i := range out.Rows {
			out.Rows[i].Source = &label
		}
	}

	return out
}

// cellValue treats an empty cell as missing.
func cellValue(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
