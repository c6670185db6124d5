package storage

import (
	"context"

	"review-importer/models"
)

// ReviewWriter is the interface any storage backend must satisfy.
type ReviewWriter interface {
	Write(ctx context.Context, reviews []*models.EnrichedReview) error
	Close() error
}

// ReviewStore is a writer that can also read reviews back and replace
// their analysis.
type ReviewStore interface {
	ReviewWriter
	FetchAll(ctx context.Context) ([]*models.EnrichedReview, error)
	UpdateAnalysis(ctx context.Context, reviews []*models.EnrichedReview) error
}
