package services

import "review-importer/models"

const genericExportInstruction = "Direct CSV export is often not available on the platform itself. " +
	"You will likely need to use a third-party data export service, a web scraping tool, " +
	"or an analytics platform to get your reviews into a CSV file. Our importer is designed " +
	"to be flexible and read files from most common tools."

// SupportedFormats describes the exports the importer understands.
func SupportedFormats() models.SupportedFormats {
	return models.SupportedFormats{
		SupportedPlatforms: []models.PlatformFormat{
			{
				Name:               "Google Business Profile",
				RequiredColumns:    []string{"rating", "comment"},
				OptionalColumns:    []string{"date", "reviewer_name"},
				ExportInstructions: genericExportInstruction,
			},
			{
				Name:               "Yelp",
				RequiredColumns:    []string{"rating", "text"},
				OptionalColumns:    []string{"date", "user_name"},
				ExportInstructions: genericExportInstruction,
			},
			{
				Name:            "Facebook",
				RequiredColumns: []string{"rating OR recommendation", "comment"},
				OptionalColumns: []string{"date", "reviewer_name"},
				ExportInstructions: genericExportInstruction + " " +
					"Hint: Look for export options within advanced marketing or analytics " +
					"tools that you have connected to your Facebook Business Page.",
			},
			{
				Name:            "Amazon",
				RequiredColumns: []string{"star_rating", "review_body"},
				OptionalColumns: []string{"review_date", "reviewer_name"},
				ExportInstructions: "Important Note: For Seller Feedback, you can download 'Feedback Reports' " +
					"directly from your Amazon Seller Central account. For individual Product Reviews, " +
					"you will need to use a third-party product review export tool as direct downloads are not provided by Amazon.",
			},
			{
				Name:               "TripAdvisor",
				RequiredColumns:    []string{"rating", "review_text"},
				OptionalColumns:    []string{"visit_date", "reviewer_name"},
				ExportInstructions: genericExportInstruction,
			},
			{
				Name:               "Generic/Other",
				RequiredColumns:    []string{"rating OR comment"},
				OptionalColumns:    []string{"date", "reviewer_name", "source"},
				ExportInstructions: "Upload any CSV file containing review data, often obtained from third-party export tools or internal databases.",
			},
		},
		UniversalFormat: map[string]string{
			models.ColumnRating:       "1-5 numeric scale",
			models.ColumnComment:      "Review text content",
			models.ColumnDate:         "ISO date format (YYYY-MM-DD) or other common formats",
			models.ColumnReviewerName: "Customer/reviewer name",
			models.ColumnSource:       "Platform or source identifier",
		},
	}
}
