package models

// Sentiment is one of the three classifier labels.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Valid reports whether s is one of the three labels.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// Analysis methods.
const (
	MethodLocal         = "local"
	MethodLocalFallback = "local_fallback"
	MethodRemotePrefix  = "remote:"
)

// AnalysisResult is the classification attached to one record.
type AnalysisResult struct {
	Sentiment           Sentiment `json:"sentiment"`
	Topics              []string  `json:"topics"`
	Method              string    `json:"method,omitempty"`
	FallbackUsed        bool      `json:"fallback_used,omitempty"`
	SentimentAdjusted   bool      `json:"sentiment_adjusted,omitempty"`
	OriginalAISentiment Sentiment `json:"original_ai_sentiment,omitempty"`
	Error               string    `json:"error,omitempty"`
	AIError             string    `json:"ai_error,omitempty"`
}

// TopicTaxonomy maps canonical topic names to trigger keywords. Order is
// significant: it decides which topic wins when keywords overlap.
type TopicTaxonomy []TopicDefinition

// TopicDefinition is one canonical topic and its triggers.
type TopicDefinition struct {
	Name     string
	Keywords []string
}

// Names returns the canonical topic names in taxonomy order.
func (t TopicTaxonomy) Names() []string {
	out := make([]string, len(t))
	for i, d := range t {
		out[i] = d.Name
	}
	return out
}
