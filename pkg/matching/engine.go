// Package matching implements merger-candidate matching and scoring
package matching

import (
	"context"
	"math"
	"sort"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/features"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Profile pairs a stable identifier with normalized matching features
type Profile struct {
	ID       string
	Features features.MatchingFeatures
}

// Match is a scored merger-candidate pairing, ranked and owned by the caller
type Match struct {
	CandidateID       string
	CandidateName     string
	MatchScore        float64
	MatchType         models.MatchType
	SimilarityFactors models.SimilarityFactors
	DegradedAxes      []string
}

// Config controls match filtering and result size per call
type Config struct {
	MinMatchScore float64 // Minimum weighted score to keep a candidate
	MaxResults    int     // Maximum matches to return
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		MinMatchScore: 0.3,
		MaxResults:    50,
	}
}

type axisWeights struct {
	industry   float64
	business   float64
	geographic float64
	size       float64
	strategic  float64
}

// Horizontal mergers weight shared industry and market fit; vertical
// mergers weight business and strategic complementarity instead.
var (
	horizontalWeights = axisWeights{industry: 0.3, business: 0.2, geographic: 0.2, size: 0.1, strategic: 0.2}
	verticalWeights   = axisWeights{industry: 0.1, business: 0.3, geographic: 0.2, size: 0.1, strategic: 0.3}
)

// horizontalThreshold is the industry similarity at or above which a
// pairing is classified horizontal
const horizontalThreshold = 0.7

// Engine scores a source company against a candidate pool
type Engine struct {
	logger ectologger.Logger
	scorer *Scorer
}

// NewEngine creates a new match engine
func NewEngine(logger ectologger.Logger) *Engine {
	return &Engine{
		logger: logger,
		scorer: NewScorer(),
	}
}

// FindMatches scores every candidate against the source and returns the
// matches at or above cfg.MinMatchScore, sorted by score descending and
// truncated to cfg.MaxResults. A candidate that fails to score is skipped
// rather than failing the batch; the result is never nil.
func (e *Engine) FindMatches(ctx context.Context, source Profile, candidates []Profile, cfg Config) []Match {
	ctx, span := tracing.StartSpan(ctx, "matching.Engine.FindMatches")
	defer span.End()

	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultConfig().MaxResults
	}

	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"source_id":       source.ID,
		"candidate_count": len(candidates),
		"min_match_score": cfg.MinMatchScore,
	})

	matches := make([]Match, 0, len(candidates))
	for _, candidate := range candidates {
		if e.isSelfMatch(source, candidate) {
			continue
		}

		match, ok := e.scoreCandidate(source, candidate)
		if !ok {
			log.WithFields(map[string]any{"candidate_id": candidate.ID}).Warn("Skipping candidate that failed to score")
			continue
		}

		if match.MatchScore >= cfg.MinMatchScore {
			matches = append(matches, match)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	if len(matches) > cfg.MaxResults {
		matches = matches[:cfg.MaxResults]
	}

	log.WithFields(map[string]any{"match_count": len(matches)}).Debug("Scored candidate pool")

	return matches
}

// isSelfMatch guards against pairing a company with itself, by identifier
// when both sides carry one, otherwise by normalized name so "Acme Inc."
// and "Acme, Inc" are recognized as the same company
func (e *Engine) isSelfMatch(source, candidate Profile) bool {
	if source.ID != "" && source.ID == candidate.ID {
		return true
	}
	name := normalizers.NormalizeCompanyName(source.Features.Name)
	return name != "" && name == normalizers.NormalizeCompanyName(candidate.Features.Name)
}

// scoreCandidate computes the weighted match score for one pairing.
// Returns false when the weighted score is not a usable number.
func (e *Engine) scoreCandidate(source, candidate Profile) (Match, bool) {
	industry := e.scorer.IndustrySimilarity(source.Features, candidate.Features)
	business := e.scorer.BusinessSimilarity(source.Features, candidate.Features)
	geographic := e.scorer.GeographicSimilarity(source.Features, candidate.Features)
	size := e.scorer.SizeSimilarity(source.Features, candidate.Features)
	strategic := e.scorer.StrategicSimilarity(source.Features, candidate.Features)

	matchType := models.MatchTypeVertical
	weights := verticalWeights
	if industry.Value >= horizontalThreshold {
		matchType = models.MatchTypeHorizontal
		weights = horizontalWeights
	}

	score := industry.Value*weights.industry +
		business.Value*weights.business +
		geographic.Value*weights.geographic +
		size.Value*weights.size +
		strategic.Value*weights.strategic

	if math.IsNaN(score) || math.IsInf(score, 0) {
		return Match{}, false
	}
	if score > 1.0 {
		score = 1.0
	}

	return Match{
		CandidateID:   candidate.ID,
		CandidateName: candidate.Features.Name,
		MatchScore:    score,
		MatchType:     matchType,
		SimilarityFactors: models.SimilarityFactors{
			Industry:   industry.Value,
			Business:   business.Value,
			Geographic: geographic.Value,
			Size:       size.Value,
			Strategic:  strategic.Value,
		},
		DegradedAxes: degradedAxes(industry, business, geographic, size, strategic),
	}, true
}

func degradedAxes(industry, business, geographic, size, strategic Score) []string {
	var axes []string
	for _, axis := range []struct {
		name  string
		score Score
	}{
		{"industry", industry},
		{"business", business},
		{"geographic", geographic},
		{"size", size},
		{"strategic", strategic},
	} {
		if axis.score.Degraded {
			axes = append(axes, axis.name)
		}
	}
	return axes
}
