package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"review-importer/models"
)

func TestExtractAnalysis(t *testing.T) {
	tests := []struct {
		name          string
		response      string
		wantSentiment models.Sentiment
		wantTopics    []string
	}{
		{
			name:          "bare json",
			response:      `{"sentiment": "positive", "topics": ["quality"]}`,
			wantSentiment: models.SentimentPositive,
			wantTopics:    []string{"quality"},
		},
		{
			name:          "json inside prose",
			response:      `Sure! Here you go: {"sentiment": "negative", "topics": ["shipping", "price"]} Hope it helps.`,
			wantSentiment: models.SentimentNegative,
			wantTopics:    []string{"shipping", "price"},
		},
		{
			name:          "fenced block",
			response:      "Here is the analysis:\n```json\n{\n  \"sentiment\": \"negative\",\n  \"topics\": [\"shipping\"]\n}\n```",
			wantSentiment: models.SentimentNegative,
			wantTopics:    []string{"shipping"},
		},
		{
			name:          "fenced nested object",
			response:      "```json\n{\"sentiment\": \"neutral\", \"topics\": [\"menu\"], \"meta\": {\"confidence\": 0.4}}\n```",
			wantSentiment: models.SentimentNeutral,
			wantTopics:    []string{"menu"},
		},
		{
			name:          "key value text",
			response:      `sentiment: "positive", topics: ["quality", "service"]`,
			wantSentiment: models.SentimentPositive,
			wantTopics:    []string{"quality", "service"},
		},
		{
			name:          "sentiment only text",
			response:      `The sentiment = Negative overall.`,
			wantSentiment: models.SentimentNegative,
			wantTopics:    []string{},
		},
		{
			name:          "nothing usable",
			response:      "This is not JSON at all",
			wantSentiment: models.SentimentNeutral,
			wantTopics:    []string{},
		},
		{
			name:          "missing fields",
			response:      `{"some_field": "value"}`,
			wantSentiment: models.SentimentNeutral,
			wantTopics:    []string{},
		},
		{
			name:          "unknown label",
			response:      `{"sentiment": "ecstatic", "topics": "service"}`,
			wantSentiment: models.SentimentNeutral,
			wantTopics:    []string{"service"},
		},
		{
			name:          "topics wrong type",
			response:      `{"sentiment": "POSITIVE", "topics": 42}`,
			wantSentiment: models.SentimentPositive,
			wantTopics:    []string{},
		},
		{
			name:          "topics capped",
			response:      `{"sentiment": "positive", "topics": ["a", "b", "c", "d", "e"]}`,
			wantSentiment: models.SentimentPositive,
			wantTopics:    []string{"a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sentiment, topics := sanitize(extractAnalysis(tt.response))
			assert.Equal(t, tt.wantSentiment, sentiment)
			assert.Equal(t, tt.wantTopics, topics)
		})
	}
}

func TestSanitizeTruncatesLongTopics(t *testing.T) {
	long := strings.Repeat("x", 80)
	_, topics := sanitize(rawAnalysis{"sentiment": "neutral", "topics": []any{long, 7, "ok"}})
	assert.Equal(t, []string{strings.Repeat("x", MaxTopicLength), "ok"}, topics)
}
