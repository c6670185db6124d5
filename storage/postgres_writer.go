package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"review-importer/models"
)

const (
	batchSize     = 50
	insertColumns = 16
)

// PostgresWriter persists enriched reviews to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS reviews (
			id                    SERIAL PRIMARY KEY,
			import_id             UUID         NOT NULL,
			platform              VARCHAR(20)  NOT NULL,
			rating                SMALLINT     CHECK (rating BETWEEN 1 AND 5),
			comment               TEXT         NOT NULL DEFAULT '',
			review_date           TIMESTAMPTZ,
			reviewer_name         TEXT         NOT NULL DEFAULT 'Anonymous',
			source                TEXT         NOT NULL DEFAULT 'Unknown',
			imported_at           TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			import_method         VARCHAR(50)  NOT NULL,
			sentiment             VARCHAR(10),
			topics                TEXT[]       NOT NULL DEFAULT '{}',
			analysis_method       VARCHAR(50)  NOT NULL DEFAULT '',
			fallback_used         BOOLEAN      NOT NULL DEFAULT FALSE,
			sentiment_adjusted    BOOLEAN      NOT NULL DEFAULT FALSE,
			original_ai_sentiment VARCHAR(10),
			processed_at          TIMESTAMPTZ
		);

		CREATE INDEX IF NOT EXISTS idx_reviews_import_id ON reviews(import_id);
		CREATE INDEX IF NOT EXISTS idx_reviews_sentiment ON reviews(sentiment);
		CREATE INDEX IF NOT EXISTS idx_reviews_source    ON reviews(source);
		CREATE INDEX IF NOT EXISTS idx_reviews_platform  ON reviews(platform);
	`)
	return err
}

// Write batch-inserts the reviews of one import inside a transaction.
func (pw *PostgresWriter) Write(ctx context.Context, reviews []*models.EnrichedReview) error {
	if len(reviews) == 0 {
		return nil
	}

	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := 0; i < len(reviews); i += batchSize {
		end := min(i+batchSize, len(reviews))
		query, args := buildInsert(reviews[i:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: insert batch %d-%d: %w", i, end, err)
		}
	}
	return tx.Commit()
}

func buildInsert(batch []*models.EnrichedReview) (string, []any) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*insertColumns)

	for idx, r := range batch {
		base := idx * insertColumns
		ph := make([]string, insertColumns)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")

		rec, a := r.Record, r.Analysis
		valueArgs = append(valueArgs,
			r.ImportID, string(r.Platform), nullInt(rec.Rating), rec.Comment, nullTime(rec.Date),
			rec.ReviewerName, rec.Source, rec.ImportedAt, rec.ImportMethod,
			nullString(string(a.Sentiment)), pq.Array(topicsOrEmpty(a.Topics)), a.Method,
			a.FallbackUsed, a.SentimentAdjusted, nullString(string(a.OriginalAISentiment)),
			nullTime(r.ProcessedAt))
	}

	query := fmt.Sprintf(`
		INSERT INTO reviews (import_id, platform, rating, comment, review_date,
			reviewer_name, source, imported_at, import_method,
			sentiment, topics, analysis_method,
			fallback_used, sentiment_adjusted, original_ai_sentiment,
			processed_at)
		VALUES %s
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

// UpdateAnalysis replaces the stored analysis of each review by id.
func (pw *PostgresWriter) UpdateAnalysis(ctx context.Context, reviews []*models.EnrichedReview) error {
	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE reviews
		SET sentiment = $1, topics = $2, analysis_method = $3, fallback_used = $4,
			sentiment_adjusted = $5, original_ai_sentiment = $6, processed_at = $7
		WHERE id = $8
	`)
	if err != nil {
		return fmt.Errorf("postgres: prepare update: %w", err)
	}
	defer stmt.Close()

	for _, r := range reviews {
		a := r.Analysis
		if _, err := stmt.ExecContext(ctx,
			nullString(string(a.Sentiment)), pq.Array(topicsOrEmpty(a.Topics)), a.Method, a.FallbackUsed,
			a.SentimentAdjusted, nullString(string(a.OriginalAISentiment)), nullTime(r.ProcessedAt),
			r.ID,
		); err != nil {
			return fmt.Errorf("postgres: update review %d: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// FetchAll retrieves all stored reviews, used by re-analysis and the
// insight summary.
func (pw *PostgresWriter) FetchAll(ctx context.Context) ([]*models.EnrichedReview, error) {
	rows, err := pw.db.QueryContext(ctx, `
		SELECT id, import_id, platform, rating, comment, review_date, reviewer_name, source,
			imported_at, import_method, COALESCE(sentiment, ''), topics, analysis_method,
			fallback_used, sentiment_adjusted, COALESCE(original_ai_sentiment, ''), processed_at
		FROM reviews
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var reviews []*models.EnrichedReview
	for rows.Next() {
		var (
			r          = &models.EnrichedReview{}
			rating     sql.NullInt64
			date       sql.NullTime
			processed  sql.NullTime
			platform   string
			sentiment  string
			originalAI string
			topics     []string
		)
		if err := rows.Scan(
			&r.ID, &r.ImportID, &platform, &rating, &r.Record.Comment, &date,
			&r.Record.ReviewerName, &r.Record.Source, &r.Record.ImportedAt, &r.Record.ImportMethod,
			&sentiment, pq.Array(&topics), &r.Analysis.Method,
			&r.Analysis.FallbackUsed, &r.Analysis.SentimentAdjusted, &originalAI, &processed,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}

		r.Platform = models.Platform(platform)
		r.Analysis.Sentiment = models.Sentiment(sentiment)
		r.Analysis.OriginalAISentiment = models.Sentiment(originalAI)
		r.Analysis.Topics = topicsOrEmpty(topics)
		if rating.Valid {
			n := int(rating.Int64)
			r.Record.Rating = &n
		}
		if date.Valid {
			r.Record.Date = &date.Time
		}
		if processed.Valid {
			r.ProcessedAt = &processed.Time
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

func topicsOrEmpty(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
