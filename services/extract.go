package services

import (
	"encoding/json"
	"regexp"
	"strings"

	"review-importer/models"
)

// rawAnalysis is a classifier response decoded without assumptions about
// field types.
type rawAnalysis map[string]any

// extractStrategy tries to recover a rawAnalysis from a free-text response.
type extractStrategy func(string) (rawAnalysis, bool)

var (
	flatObjectRe   = regexp.MustCompile(`\{[^{}]*\}`)
	fencedBlockRe  = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*?\\})\\s*```")
	sentimentKeyRe = regexp.MustCompile(`(?i)sentiment["']?\s*[:=]\s*["']?(positive|negative|neutral)`)
	topicsKeyRe    = regexp.MustCompile(`(?i)topics["']?\s*[:=]\s*\[([^\]]*)\]`)
)

// extractionChain is tried in order; the first success wins.
var extractionChain = []extractStrategy{
	extractWholeJSON,
	extractEmbeddedObject,
	extractFencedBlock,
	extractByPattern,
}

// extractAnalysis recovers sentiment and topics from a classifier response,
// defaulting to neutral with no topics.
func extractAnalysis(response string) rawAnalysis {
	for _, strategy := range extractionChain {
		if raw, ok := strategy(response); ok {
			return raw
		}
	}
	return rawAnalysis{"sentiment": string(models.SentimentNeutral), "topics": []any{}}
}

func extractWholeJSON(s string) (rawAnalysis, bool) {
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &raw); err != nil || raw == nil {
		return nil, false
	}
	return raw, true
}

func extractEmbeddedObject(s string) (rawAnalysis, bool) {
	for _, candidate := range flatObjectRe.FindAllString(s, -1) {
		if !strings.Contains(candidate, "sentiment") || !strings.Contains(candidate, "topics") {
			continue
		}
		if raw, ok := extractWholeJSON(candidate); ok {
			return raw, true
		}
	}
	return nil, false
}

func extractFencedBlock(s string) (rawAnalysis, bool) {
	for _, m := range fencedBlockRe.FindAllStringSubmatch(s, -1) {
		if raw, ok := extractWholeJSON(m[1]); ok {
			return raw, true
		}
	}
	return nil, false
}

func extractByPattern(s string) (rawAnalysis, bool) {
	sm := sentimentKeyRe.FindStringSubmatch(s)
	tm := topicsKeyRe.FindStringSubmatch(s)
	if sm == nil && tm == nil {
		return nil, false
	}

	raw := rawAnalysis{"sentiment": string(models.SentimentNeutral)}
	if sm != nil {
		raw["sentiment"] = strings.ToLower(sm[1])
	}
	topics := []any{}
	if tm != nil {
		for _, part := range strings.Split(tm[1], ",") {
			if t := strings.Trim(strings.TrimSpace(part), `"'`); t != "" {
				topics = append(topics, t)
			}
		}
	}
	raw["topics"] = topics
	return raw, true
}

// sanitize enforces the result shape: a known sentiment label and at most
// three topics of at most 50 characters each.
func sanitize(raw rawAnalysis) (models.Sentiment, []string) {
	sentiment := models.SentimentNeutral
	if s, ok := raw["sentiment"].(string); ok {
		if v := models.Sentiment(strings.ToLower(strings.TrimSpace(s))); v.Valid() {
			sentiment = v
		}
	}

	var topics []string
	switch t := raw["topics"].(type) {
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				topics = append(topics, s)
			}
		}
	case []string:
		topics = append(topics, t...)
	case string:
		topics = []string{t}
	}

	out := make([]string, 0, MaxTopics)
	for _, topic := range topics {
		if len(out) == MaxTopics {
			break
		}
		out = append(out, truncateRunes(strings.TrimSpace(topic), MaxTopicLength, ""))
	}
	return sentiment, out
}

// truncateRunes cuts s to max runes and appends suffix when it was cut.
func truncateRunes(s string, max int, suffix string) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + suffix
}
