package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"review-importer/models"
)

func TestSupportedFormatsCoverEveryPlatform(t *testing.T) {
	formats := SupportedFormats()

	names := make([]string, 0, len(formats.SupportedPlatforms))
	for _, f := range formats.SupportedPlatforms {
		names = append(names, f.Name)
		assert.NotEmpty(t, f.ExportInstructions, f.Name)
	}
	assert.Equal(t, []string{"Google Business Profile", "Yelp", "Facebook", "Amazon", "TripAdvisor", "Generic/Other"}, names)

	for _, col := range []string{models.ColumnRating, models.ColumnComment, models.ColumnDate, models.ColumnReviewerName, models.ColumnSource} {
		assert.Contains(t, formats.UniversalFormat, col)
	}
}
