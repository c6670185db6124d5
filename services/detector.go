package services

import (
	"strings"

	"review-importer/models"
	"review-importer/utils"
)

// Signal is one indicator column name and the weight it adds to a
// platform's score.
type Signal struct {
	Name   string
	Weight float64
}

// PlatformSignals is the indicator vocabulary for one platform.
type PlatformSignals struct {
	Platform models.Platform
	Signals  []Signal
}

// PlatformScore is the confidence computed for one platform.
type PlatformScore struct {
	Platform models.Platform
	Score    float64
	Matches  []string
	Eligible bool
}

const (
	// MinDetectionScore is the confidence below which detection falls back
	// to the generic platform.
	MinDetectionScore = 3.0
	// DistinctiveWeight marks platform-specific identifiers. A platform is
	// only eligible when one of them is present in the columns.
	DistinctiveWeight = 7.0

	exactMatch   = 1.0
	partialMatch = 0.7
	reverseMatch = 0.5
)

// DefaultPlatformSignals returns the built-in indicator tables. The order is
// the tie-break order.
func DefaultPlatformSignals() []PlatformSignals {
	return []PlatformSignals{
		{Platform: models.PlatformAmazon, Signals: []Signal{
			{"review_body", 10}, {"vine_customer_review", 10}, {"verified_purchase", 10},
			{"marketplace", 10}, {"product_id", 9}, {"asin", 9}, {"product_title", 8},
			{"product_category", 8}, {"helpful_votes", 8}, {"total_votes", 8},
			{"star_rating", 5}, {"reviewer_name", 3}, {"review_date", 3},
		}},
		{Platform: models.PlatformGoogle, Signals: []Signal{
			{"reviewer_display_name", 10}, {"review_id", 10}, {"location_id", 9},
			{"review_reply", 8}, {"reviewer_profile_photo", 8}, {"business_reply", 8},
			{"review_comment", 5}, {"create_time", 4}, {"star_rating", 3}, {"review_text", 3},
		}},
		{Platform: models.PlatformYelp, Signals: []Signal{
			{"business_id", 10}, {"elite_year", 10}, {"review_id", 9}, {"user_id", 8},
			{"cool", 8}, {"funny", 8}, {"useful", 8}, {"rating", 3}, {"text", 3}, {"date", 2},
		}},
		{Platform: models.PlatformFacebook, Signals: []Signal{
			{"recommendation_type", 10}, {"created_time", 9}, {"from_name", 8}, {"from_id", 8},
			{"page_id", 8}, {"post_id", 7}, {"message", 5}, {"rating", 4},
		}},
		{Platform: models.PlatformTripAdvisor, Signals: []Signal{
			{"visit_date", 10}, {"trip_type", 9}, {"traveler_type", 8}, {"hotel_id", 8},
			{"location_id", 8}, {"rating", 5}, {"review_text", 4}, {"title", 4},
		}},
	}
}

// Detector infers the export platform from column names.
type Detector struct {
	platforms []PlatformSignals
	logger    *utils.Logger
}

// NewDetector creates a Detector over the given indicator tables.
func NewDetector(platforms []PlatformSignals, logger *utils.Logger) *Detector {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Detector{platforms: platforms, logger: logger}
}

// Score computes the confidence of every platform for the given columns.
//
// Each signal contributes its full weight on an exact column match, 70% when
// a column contains the signal, and 50% when the signal contains a column
// longer than three characters.
func (d *Detector) Score(columns []string) []PlatformScore {
	normalized := normalizeColumns(columns)
	scores := make([]PlatformScore, 0, len(d.platforms))

	for _, p := range d.platforms {
		ps := PlatformScore{Platform: p.Platform}
		for _, sig := range p.Signals {
			factor, kind := matchSignal(sig.Name, normalized)
			if factor == 0 {
				continue
			}
			ps.Score += sig.Weight * factor
			ps.Matches = append(ps.Matches, sig.Name+" ("+kind+")")
			if sig.Weight >= DistinctiveWeight && factor >= partialMatch {
				ps.Eligible = true
			}
		}
		scores = append(scores, ps)
	}
	return scores
}

// Detect returns the best scoring eligible platform, or generic when no
// platform reaches MinDetectionScore. Ties resolve to the earlier platform.
func (d *Detector) Detect(columns []string) models.Platform {
	if len(normalizeColumns(columns)) < 2 {
		d.logger.Debug("[detector] %d usable column(s), defaulting to generic", len(columns))
		return models.PlatformGeneric
	}

	var best *PlatformScore
	scores := d.Score(columns)
	for i := range scores {
		s := &scores[i]
		d.logger.Debug("[detector]   %s: %.1f points %v", s.Platform, s.Score, s.Matches)
		if !s.Eligible {
			continue
		}
		if best == nil || s.Score > best.Score {
			best = s
		}
	}

	if best == nil || best.Score < MinDetectionScore {
		d.logger.Info("[detector] No platform reached minimum confidence for %v, defaulting to generic", columns)
		return models.PlatformGeneric
	}

	d.logger.Info("[detector] Selected %s (score %.1f)", best.Platform, best.Score)
	return best.Platform
}

func matchSignal(signal string, columns []string) (float64, string) {
	for _, col := range columns {
		if col == signal {
			return exactMatch, "exact"
		}
	}
	for _, col := range columns {
		if strings.Contains(col, signal) {
			return partialMatch, "partial"
		}
	}
	for _, col := range columns {
		if len(col) > 3 && strings.Contains(signal, col) {
			return reverseMatch, "contains"
		}
	}
	return 0, ""
}

func normalizeColumns(columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if n := strings.ToLower(strings.TrimSpace(c)); n != "" {
			out = append(out, n)
		}
	}
	return out
}
