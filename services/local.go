package services

import (
	"strings"

	"review-importer/models"
)

var (
	positiveWords = []string{"good", "great", "excellent", "awesome", "love", "happy", "satisfied", "recommend"}
	negativeWords = []string{"bad", "poor", "terrible", "awful", "hate", "disappointed", "dissatisfied", "problem", "issue"}
)

// LocalSentiment classifies text by counting which positive and negative
// words it contains. Each word counts once however often it appears.
func LocalSentiment(text string) models.Sentiment {
	lower := strings.ToLower(text)
	pos, neg := countPresent(lower, positiveWords), countPresent(lower, negativeWords)
	switch {
	case pos > neg:
		return models.SentimentPositive
	case neg > pos:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func countPresent(s string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(s, w) {
			n++
		}
	}
	return n
}

// RatingSentiment maps a star rating to the sentiment it implies.
func RatingSentiment(rating int) models.Sentiment {
	switch {
	case rating <= 2:
		return models.SentimentNegative
	case rating == 3:
		return models.SentimentNeutral
	default:
		return models.SentimentPositive
	}
}

// reconcile lets an explicit rating override a disagreeing text sentiment,
// keeping the original label on the result.
func reconcile(res *models.AnalysisResult, rating *int) {
	if rating == nil {
		return
	}
	want := RatingSentiment(*rating)
	if res.Sentiment == want {
		return
	}
	res.OriginalAISentiment = res.Sentiment
	res.Sentiment = want
	res.SentimentAdjusted = true
}

func (a *Analyzer) analyzeLocal(text string) models.AnalysisResult {
	sentiment, topics := sanitize(rawAnalysis{
		"sentiment": string(LocalSentiment(text)),
		"topics":    toAny(a.topics.Detect(text)),
	})
	return models.AnalysisResult{
		Sentiment: sentiment,
		Topics:    a.topics.Normalize(topics),
		Method:    models.MethodLocal,
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
