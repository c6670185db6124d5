package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"review-importer/metrics"
	"review-importer/models"
	"review-importer/utils"
)

const (
	MaxTopics      = 3
	MaxTopicLength = 50
	MaxTextLength  = 8000

	DefaultAnalysisTimeout = 15 * time.Second

	emptyInputError = "empty input"
)

// Classifier is a remote text classification backend.
type Classifier interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithTimeout bounds each remote request.
func WithTimeout(d time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithCache re-uses successful remote results for ttl.
func WithCache(ttl time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		if ttl > 0 {
			a.cache = cache.New(ttl, 2*ttl)
		}
	}
}

// WithMetrics records classification metrics.
func WithMetrics(m *metrics.PipelineMetrics) AnalyzerOption {
	return func(a *Analyzer) { a.metrics = m }
}

// Analyzer produces sentiment and topic labels for review text. Analyze
// always returns a well-formed result: remote failures resolve to the local
// heuristic.
type Analyzer struct {
	remote  Classifier
	topics  *TopicNormalizer
	logger  *utils.Logger
	metrics *metrics.PipelineMetrics
	cache   *cache.Cache
	timeout time.Duration
}

// NewAnalyzer creates an Analyzer. A nil remote classifier means local-only
// analysis.
func NewAnalyzer(remote Classifier, topics *TopicNormalizer, logger *utils.Logger, opts ...AnalyzerOption) *Analyzer {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	a := &Analyzer{
		remote:  remote,
		topics:  topics,
		logger:  logger,
		timeout: DefaultAnalysisTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze classifies text, reconciling the sentiment with rating when one
// is given.
func (a *Analyzer) Analyze(ctx context.Context, text string, rating *int) models.AnalysisResult {
	if strings.TrimSpace(text) == "" {
		a.logger.Warn("[analyzer] Empty or whitespace-only text provided")
		return models.AnalysisResult{
			Sentiment: models.SentimentNeutral,
			Topics:    []string{},
			Method:    models.MethodLocal,
			Error:     emptyInputError,
		}
	}

	if a.remote == nil {
		res := a.analyzeLocal(text)
		reconcile(&res, rating)
		a.metrics.IncrementClassification(res.Method)
		return res
	}

	key := cacheKey(text, rating)
	if a.cache != nil {
		if cached, ok := a.cache.Get(key); ok {
			a.metrics.IncrementCacheHits()
			return cloneResult(cached.(models.AnalysisResult))
		}
	}

	res, err := a.analyzeRemote(ctx, text, rating)
	if err != nil {
		a.logger.Error("[analyzer] Error in AI analysis (%s): %v", a.remote.Name(), err)
		a.logger.Info("[analyzer] Falling back to local analysis")
		a.metrics.IncrementFallback(a.remote.Name())

		res = a.analyzeLocal(text)
		res.Method = models.MethodLocalFallback
		res.FallbackUsed = true
		res.AIError = err.Error()
		reconcile(&res, rating)
		a.metrics.IncrementClassification(res.Method)
		return res
	}

	reconcile(&res, rating)
	if a.cache != nil {
		a.cache.SetDefault(key, cloneResult(res))
	}
	a.metrics.IncrementClassification(res.Method)
	return res
}

func (a *Analyzer) analyzeRemote(ctx context.Context, text string, rating *int) (models.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := BuildPrompt(truncateRunes(text, MaxTextLength, "..."), rating, a.topics.Taxonomy().Names())

	start := time.Now()
	response, err := a.remote.Complete(ctx, prompt)
	status := "ok"
	if err != nil {
		status = "error"
	}
	a.metrics.ObserveBackendDuration(a.remote.Name(), status, time.Since(start))
	if err != nil {
		return models.AnalysisResult{}, err
	}

	sentiment, topics := sanitize(extractAnalysis(response))
	return models.AnalysisResult{
		Sentiment: sentiment,
		Topics:    a.topics.Normalize(topics),
		Method:    models.MethodRemotePrefix + a.remote.Name(),
	}, nil
}

// BuildPrompt renders the classification request sent to remote backends.
func BuildPrompt(text string, rating *int, candidates []string) string {
	var b strings.Builder
	b.WriteString("Analyze the following customer review and return only a JSON object with:\n")
	b.WriteString(`1. "sentiment": "positive", "negative", or "neutral"` + "\n")
	fmt.Fprintf(&b, `2. "topics": an array of up to %d topics, each a short phrase (max %d characters), chosen from: %s`+"\n",
		MaxTopics, MaxTopicLength, strings.Join(candidates, ", "))
	fmt.Fprintf(&b, "\nReview: %q\n", text)
	if rating != nil {
		fmt.Fprintf(&b, "Star rating: %d/5\n", *rating)
	}
	b.WriteString("\nJSON response:")
	return b.String()
}

func cacheKey(text string, rating *int) string {
	r := ""
	if rating != nil {
		r = strconv.Itoa(*rating)
	}
	sum := sha256.Sum256([]byte(text + "|" + r))
	return hex.EncodeToString(sum[:])
}

func cloneResult(r models.AnalysisResult) models.AnalysisResult {
	r.Topics = append([]string{}, r.Topics...)
	return r
}
