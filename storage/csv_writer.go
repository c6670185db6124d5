package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"review-importer/models"
)

var csvHeader = []string{
	"import_id", "platform", "rating", "comment", "date", "reviewer_name", "source",
	"imported_at", "import_method", "sentiment", "topics", "analysis_method",
	"fallback_used", "sentiment_adjusted", "original_ai_sentiment",
}

// CSVWriter writes enriched reviews to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	closer io.Closer
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w, err := newCSVWriter(f, f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

func newCSVWriter(out io.Writer, closer io.Closer) (*CSVWriter, error) {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()
	return &CSVWriter{closer: closer, writer: w}, w.Error()
}

// Write appends one row per review.
func (c *CSVWriter) Write(ctx context.Context, reviews []*models.EnrichedReview) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range reviews {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.writer.Write(csvRow(r)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

func csvRow(r *models.EnrichedReview) []string {
	rec, a := r.Record, r.Analysis
	rating, date := "", ""
	if rec.Rating != nil {
		rating = strconv.Itoa(*rec.Rating)
	}
	if rec.Date != nil {
		date = rec.Date.Format(time.RFC3339)
	}
	return []string{
		r.ImportID,
		string(r.Platform),
		rating,
		rec.Comment,
		date,
		rec.ReviewerName,
		rec.Source,
		rec.ImportedAt.Format(time.RFC3339),
		rec.ImportMethod,
		string(a.Sentiment),
		strings.Join(a.Topics, "; "),
		a.Method,
		strconv.FormatBool(a.FallbackUsed),
		strconv.FormatBool(a.SentimentAdjusted),
		string(a.OriginalAISentiment),
	}
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	if c.closer == nil {
		return c.writer.Error()
	}
	return c.closer.Close()
}
