package storage

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-importer/models"
)

func TestBuildInsertPlaceholders(t *testing.T) {
	batch := []*models.EnrichedReview{sampleReview("a", 5), sampleReview("b", 2)}

	query, args := buildInsert(batch)

	assert.Len(t, args, 2*insertColumns)
	assert.Contains(t, query, "($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)")
	assert.Contains(t, query, "($17,")
	assert.Contains(t, query, ",$32)")
	assert.Equal(t, 2, strings.Count(query, "($"))
}

func TestBuildInsertArguments(t *testing.T) {
	r := sampleReview("Slow service", 2)
	r.Record.Date = nil
	r.Analysis.Topics = nil

	_, args := buildInsert([]*models.EnrichedReview{r})

	assert.Equal(t, r.ImportID, args[0])
	assert.Equal(t, "google", args[1])
	assert.Equal(t, sql.NullInt64{Int64: 2, Valid: true}, args[2])
	assert.Equal(t, sql.NullTime{}, args[4])
	assert.Equal(t, sql.NullString{String: "positive", Valid: true}, args[9])
	assert.Equal(t, pq.Array([]string{}), args[10])
	assert.Equal(t, sql.NullString{}, args[14])
}

// Runs against a real database only when REVIEWS_TEST_DSN is set.
func TestPostgresWriterRoundTrip(t *testing.T) {
	dsn := os.Getenv("REVIEWS_TEST_DSN")
	if dsn == "" {
		t.Skip("REVIEWS_TEST_DSN not set")
	}

	pw, err := NewPostgresWriter(dsn)
	require.NoError(t, err)
	defer pw.Close()

	ctx := context.Background()
	before, err := pw.FetchAll(ctx)
	require.NoError(t, err)

	require.NoError(t, pw.Write(ctx, []*models.EnrichedReview{sampleReview("Lovely stay", 5)}))

	after, err := pw.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)

	last := after[len(after)-1]
	assert.Equal(t, "Lovely stay", last.Record.Comment)
	assert.Equal(t, []string{"Customer Service", "Food Quality"}, last.Analysis.Topics)

	last.Analysis.Sentiment = models.SentimentNeutral
	last.Analysis.Topics = []string{"Value"}
	require.NoError(t, pw.UpdateAnalysis(ctx, []*models.EnrichedReview{last}))

	updated, err := pw.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNeutral, updated[len(updated)-1].Analysis.Sentiment)
}
