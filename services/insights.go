package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"review-importer/models"
	"review-importer/utils"
)

const topTopics = 5

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(reviews []*models.EnrichedReview) *models.InsightReport {
	report := &models.InsightReport{
		SourceBreakdown:   make(map[string]int),
		TopPositiveTopics: []models.TopicCount{},
		TopNegativeTopics: []models.TopicCount{},
	}

	if len(reviews) == 0 {
		return report
	}

	report.TotalReviews = len(reviews)

	positive := make(map[string]int)
	negative := make(map[string]int)
	var ratingTotal int

	for _, r := range reviews {
		switch r.Analysis.Sentiment {
		case models.SentimentPositive:
			report.Positive++
			countTopics(positive, r.Analysis.Topics)
		case models.SentimentNegative:
			report.Negative++
			countTopics(negative, r.Analysis.Topics)
		case models.SentimentNeutral:
			report.Neutral++
		}
		if r.Analysis.FallbackUsed {
			report.FallbackCount++
		}
		if r.Record.Rating != nil {
			report.RatedReviews++
			ratingTotal += *r.Record.Rating
		}
		if r.Record.Source != "" {
			report.SourceBreakdown[r.Record.Source]++
		}
	}

	if report.RatedReviews > 0 {
		report.AverageRating = round2(float64(ratingTotal) / float64(report.RatedReviews))
	}
	report.TopPositiveTopics = rankTopics(positive)
	report.TopNegativeTopics = rankTopics(negative)

	return report
}

func countTopics(counts map[string]int, topics []string) {
	for _, t := range topics {
		counts[t]++
	}
}

// rankTopics sorts by count descending, then name, and keeps the top five.
func rankTopics(counts map[string]int) []models.TopicCount {
	out := make([]models.TopicCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, models.TopicCount{Topic: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Topic < out[j].Topic
	})
	if len(out) > topTopics {
		out = out[:topTopics]
	}
	return out
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 REVIEW IMPORT INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total reviews     : \033[1m%d\033[0m\n", r.TotalReviews)
	fmt.Fprintf(w, "  Rated reviews     : \033[1m%d\033[0m\n", r.RatedReviews)
	if r.RatedReviews > 0 {
		fmt.Fprintf(w, "  Average rating    : \033[1;32m%.2f ★\033[0m\n", r.AverageRating)
	}
	fmt.Fprintf(w, "  Local fallbacks   : \033[1m%d\033[0m\n", r.FallbackCount)
	fmt.Fprintln(w)

	// Sentiment
	fmt.Fprintf(w, "\033[1;33m  Sentiment\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Positive : \033[1;32m%d\033[0m\n", r.Positive)
	fmt.Fprintf(w, "  Neutral  : \033[1m%d\033[0m\n", r.Neutral)
	fmt.Fprintf(w, "  Negative : \033[1;31m%d\033[0m\n", r.Negative)
	fmt.Fprintln(w)

	printTopics(w, "Top Positive Topics", r.TopPositiveTopics, thin)
	printTopics(w, "Top Negative Topics", r.TopNegativeTopics, thin)

	// Reviews by Source
	fmt.Fprintf(w, "\033[1;33m  Reviews by Source\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.SourceBreakdown) == 0 {
		fmt.Fprintf(w, "  No source data\n")
	} else {
		type srcCount struct {
			src   string
			count int
		}
		var srcs []srcCount
		for src, cnt := range r.SourceBreakdown {
			srcs = append(srcs, srcCount{src, cnt})
		}
		sort.Slice(srcs, func(i, j int) bool {
			if srcs[i].count != srcs[j].count {
				return srcs[i].count > srcs[j].count
			}
			return srcs[i].src < srcs[j].src
		})
		for _, sc := range srcs {
			bar := strings.Repeat("█", min(sc.count, 40))
			fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(sc.src, 28), bar, sc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func printTopics(w io.Writer, title string, topics []models.TopicCount, thin string) {
	fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", title)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(topics) == 0 {
		fmt.Fprintf(w, "  No topics found\n")
	}
	for i, t := range topics {
		fmt.Fprintf(w, "  \033[1m%d.\033[0m %-40s %d\n", i+1, t.Topic, t.Count)
	}
	fmt.Fprintln(w)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
