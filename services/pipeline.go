package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"review-importer/metrics"
	"review-importer/models"
	"review-importer/utils"
)

const (
	previewRows        = 5
	reanalyzeBatchSize = 50
)

// ReviewStore is the persistence used by re-analysis.
type ReviewStore interface {
	FetchAll(ctx context.Context) ([]*models.EnrichedReview, error)
	UpdateAnalysis(ctx context.Context, reviews []*models.EnrichedReview) error
}

// Ingestion is the outcome of reading, detecting, mapping and validating one
// upload.
type Ingestion struct {
	Table    *models.RawTable
	Platform models.Platform
	Mapped   *models.MappedTable
	Records  []*models.CanonicalRecord
	Stats    models.ValidationStats
}

// Pipeline drives ingestion and classification.
type Pipeline struct {
	detector       *Detector
	mapper         *Mapper
	validator      *Validator
	analyzer       *Analyzer
	logger         *utils.Logger
	metrics        *metrics.PipelineMetrics
	maxConcurrency int
	rateLimitMs    int
	now            func() time.Time
}

// PipelineConfig holds the pipeline collaborators.
type PipelineConfig struct {
	Detector       *Detector
	Mapper         *Mapper
	Validator      *Validator
	Analyzer       *Analyzer
	Logger         *utils.Logger
	Metrics        *metrics.PipelineMetrics
	MaxConcurrency int
	RateLimitMs    int
}

// NewPipeline creates a Pipeline. Missing collaborators are built from the
// defaults with local-only analysis.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	p := &Pipeline{
		detector:       cfg.Detector,
		mapper:         cfg.Mapper,
		validator:      cfg.Validator,
		analyzer:       cfg.Analyzer,
		logger:         logger,
		metrics:        cfg.Metrics,
		maxConcurrency: cfg.MaxConcurrency,
		rateLimitMs:    cfg.RateLimitMs,
		now:            time.Now,
	}
	if p.detector == nil {
		p.detector = NewDetector(DefaultPlatformSignals(), logger)
	}
	if p.mapper == nil {
		p.mapper = NewMapper(DefaultColumnVariants(), logger)
	}
	if p.validator == nil {
		p.validator = NewValidator(logger)
	}
	if p.analyzer == nil {
		p.analyzer = NewAnalyzer(nil, NewTopicNormalizer(DefaultTaxonomy()), logger, WithMetrics(cfg.Metrics))
	}
	return p
}

// Ingest runs read → detect → map → validate over uploaded content.
func (p *Pipeline) Ingest(content []byte) (*Ingestion, error) {
	table, err := ReadTable(content)
	if err != nil {
		return nil, err
	}

	platform := p.detector.Detect(table.Columns)
	p.metrics.IncrementPlatform(string(platform))

	mapped := p.mapper.Map(table, platform)
	records, stats := p.validator.Validate(mapped)
	p.metrics.ObserveRows(stats.OriginalCount, stats.FinalCount)

	return &Ingestion{
		Table:    table,
		Platform: platform,
		Mapped:   mapped,
		Records:  records,
		Stats:    stats,
	}, nil
}

// Preview validates content without classifying it.
func (p *Pipeline) Preview(content []byte) models.PreviewReport {
	in, err := p.Ingest(content)
	if err != nil {
		report := models.PreviewReport{Valid: false, Error: err.Error(), Suggestions: defaultSuggestions}
		var ie *InputError
		if errors.As(err, &ie) {
			report.Suggestions = ie.Suggestions
		}
		return report
	}

	stats := in.Stats
	sample := make([]models.CanonicalRecord, 0, previewRows)
	for _, rec := range in.Records {
		if len(sample) == previewRows {
			break
		}
		sample = append(sample, *rec)
	}

	return models.PreviewReport{
		Valid:            len(in.Records) > 0,
		DetectedPlatform: in.Platform,
		TotalRows:        len(in.Table.Rows),
		ValidRows:        len(in.Records),
		InvalidRows:      len(in.Table.Rows) - len(in.Records),
		ColumnsFound:     in.Table.Columns,
		MappedColumns:    in.Mapped.Columns,
		ValidationStats:  &stats,
		Preview:          sample,
		Issues:           stats.Issues,
	}
}

// Import ingests content and classifies every surviving record. Structural
// input errors and uploads without usable rows abort the import; a record
// whose classification fails is counted and returned without analysis.
func (p *Pipeline) Import(ctx context.Context, content []byte) (*models.ImportResult, error) {
	in, err := p.Ingest(content)
	if err != nil {
		return nil, err
	}
	if len(in.Records) == 0 {
		return nil, newInputError(0, ErrNoValidRows, ErrNoValidRows.Error(),
			"Check that required columns exist",
			"Ensure rows contain a comment or a rating between 1 and 5")
	}

	importID := uuid.NewString()
	processedAt := p.now()
	log := p.logger.With("import_id", importID, "platform", string(in.Platform))
	log.Info("[pipeline] Classifying %d reviews", len(in.Records))

	reviews := make([]*models.EnrichedReview, len(in.Records))
	errs := make([]error, len(in.Records))

	pool := utils.NewWorkerPool(p.maxConcurrency, p.rateLimitMs)
	for i, rec := range in.Records {
		pool.Submit(ctx, func() {
			analysis, err := p.classifySafely(ctx, rec)
			if err != nil {
				errs[i] = err
				return
			}
			reviews[i] = &models.EnrichedReview{
				ImportID:    importID,
				Platform:    in.Platform,
				Record:      *rec,
				Analysis:    analysis,
				ProcessedAt: &processedAt,
			}
		})
	}
	pool.Wait()
	if err := ctx.Err(); err != nil {
		log.Warn("[pipeline] Import cancelled: %v", err)
		return nil, fmt.Errorf("import cancelled: %w", err)
	}

	report := models.ImportReport{
		ImportID:         importID,
		DetectedPlatform: in.Platform,
		CreatedCount:     len(in.Records),
		SourceBreakdown:  make(map[string]int),
		ValidationStats:  in.Stats,
	}
	result := &models.ImportResult{Reviews: make([]*models.EnrichedReview, 0, len(in.Records))}
	for i, rec := range in.Records {
		report.SourceBreakdown[rec.Source]++
		if errs[i] != nil {
			report.FailedCount++
			p.metrics.IncrementRecordFailures()
			log.Warn("[pipeline] Analysis failed for record %d: %v", i, errs[i])
			// kept unanalyzed so it is still stored
			result.Reviews = append(result.Reviews, &models.EnrichedReview{
				ImportID: importID,
				Platform: in.Platform,
				Record:   *rec,
			})
			continue
		}
		report.AnalyzedCount++
		result.Reviews = append(result.Reviews, reviews[i])
	}
	result.Report = report

	log.Info("[pipeline] Imported %d reviews (%d analyzed, %d failed)",
		report.CreatedCount, report.AnalyzedCount, report.FailedCount)
	return result, nil
}

// Classify analyzes one canonical record. Records without a comment are
// classified from their rating.
func (p *Pipeline) Classify(ctx context.Context, rec *models.CanonicalRecord) models.AnalysisResult {
	return p.analyzer.Analyze(ctx, analysisText(rec.Comment, rec.Rating), rec.Rating)
}

func (p *Pipeline) classifySafely(ctx context.Context, rec *models.CanonicalRecord) (res models.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classification panicked: %v", r)
		}
	}()
	return p.Classify(ctx, rec), nil
}

// ReanalyzeFilter narrows a re-analysis run. Zero values match everything.
type ReanalyzeFilter struct {
	IDs       []int64
	Sentiment models.Sentiment
	Source    string
}

func (f ReanalyzeFilter) match(r *models.EnrichedReview) bool {
	if len(f.IDs) > 0 {
		found := false
		for _, id := range f.IDs {
			if id == r.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Sentiment != "" && r.Analysis.Sentiment != f.Sentiment {
		return false
	}
	if f.Source != "" && r.Record.Source != f.Source {
		return false
	}
	return true
}

// Reanalyze re-classifies stored reviews in batches, writing each batch back
// before starting the next.
func (p *Pipeline) Reanalyze(ctx context.Context, store ReviewStore, filter ReanalyzeFilter) (models.ReanalyzeReport, error) {
	all, err := store.FetchAll(ctx)
	if err != nil {
		return models.ReanalyzeReport{}, fmt.Errorf("fetch reviews: %w", err)
	}

	var items []*models.EnrichedReview
	for _, r := range all {
		if filter.match(r) {
			items = append(items, r)
		}
	}

	report := models.ReanalyzeReport{Total: len(items)}
	p.logger.Info("[pipeline] Starting re-analysis of %d reviews", len(items))

	for start := 0; start < len(items); start += reanalyzeBatchSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		end := min(start+reanalyzeBatchSize, len(items))

		var updated []*models.EnrichedReview
		for _, r := range items[start:end] {
			analysis, err := p.classifySafely(ctx, &r.Record)
			if err != nil {
				report.Failed++
				p.logger.Warn("[pipeline] Re-analysis failed for review %d: %v", r.ID, err)
				continue
			}
			if analysis.Sentiment != r.Analysis.Sentiment {
				report.Changed++
				p.logger.Debug("[pipeline] Sentiment changed for review %d: %s -> %s",
					r.ID, r.Analysis.Sentiment, analysis.Sentiment)
			}
			now := p.now()
			r.Analysis = analysis
			r.ProcessedAt = &now
			updated = append(updated, r)
			report.Processed++
		}

		if len(updated) > 0 {
			if err := store.UpdateAnalysis(ctx, updated); err != nil {
				return report, fmt.Errorf("update batch %d-%d: %w", start, end, err)
			}
		}
		p.logger.Info("[pipeline] Processed batch %d-%d of %d", start, end, len(items))
	}
	return report, nil
}

func analysisText(comment string, rating *int) string {
	if comment == "" && rating != nil {
		return strconv.Itoa(*rating) + "/5 star rating (no comment)"
	}
	return comment
}
