package matching

import (
	"context"
	"fmt"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/features"
	"github.com/Ramsey-B/clover/pkg/models"
)

func newTestEngine() *Engine {
	return NewEngine(ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))
}

func techCompany(name string, revenue float64) Profile {
	return Profile{
		ID: name,
		Features: features.MatchingFeatures{
			Name:              name,
			Industry:          "technology",
			Revenue:           revenue,
			EmployeeCount:     50,
			GeographicMarkets: []string{"usa"},
		},
	}
}

func TestFindMatches_HorizontalScenario(t *testing.T) {
	engine := newTestEngine()

	source := techCompany("Acme Analytics", 1_000_000)
	candidate := techCompany("Beacon Software", 1_200_000)

	matches := engine.FindMatches(context.Background(), source, []Profile{candidate}, DefaultConfig())

	require.Len(t, matches, 1)
	match := matches[0]

	assert.Equal(t, models.MatchTypeHorizontal, match.MatchType)
	assert.Greater(t, match.MatchScore, 0.3)
	assert.InDelta(t, 1.0, match.SimilarityFactors.Industry, 1e-9)
	assert.InDelta(t, 0.9167, match.SimilarityFactors.Size, 1e-3)
}

func TestFindMatches_VerticalWhenIndustriesUnrelated(t *testing.T) {
	engine := newTestEngine()

	source := techCompany("Acme Analytics", 1_000_000)
	candidate := Profile{
		ID: "realco",
		Features: features.MatchingFeatures{
			Name:              "Realco Properties",
			Industry:          "real estate",
			Revenue:           1_000_000,
			EmployeeCount:     50,
			GeographicMarkets: []string{"usa"},
		},
	}

	matches := engine.FindMatches(context.Background(), source, []Profile{candidate}, Config{MinMatchScore: 0, MaxResults: 10})

	require.Len(t, matches, 1)
	assert.Equal(t, models.MatchTypeVertical, matches[0].MatchType)
	assert.InDelta(t, 0.2, matches[0].SimilarityFactors.Industry, 1e-9)
}

func TestFindMatches_ClusterBoundaryIsHorizontal(t *testing.T) {
	engine := newTestEngine()

	// software vs saas sits exactly at the 0.7 classification boundary
	source := Profile{
		ID:       "a",
		Features: features.MatchingFeatures{Name: "A", Industry: "software"},
	}
	candidate := Profile{
		ID:       "b",
		Features: features.MatchingFeatures{Name: "B", Industry: "saas"},
	}

	matches := engine.FindMatches(context.Background(), source, []Profile{candidate}, Config{MinMatchScore: 0, MaxResults: 10})

	require.Len(t, matches, 1)
	assert.InDelta(t, 0.7, matches[0].SimilarityFactors.Industry, 1e-9)
	assert.Equal(t, models.MatchTypeHorizontal, matches[0].MatchType)
}

func TestFindMatches_WeightedScore(t *testing.T) {
	engine := newTestEngine()

	source := techCompany("Acme Analytics", 1_000_000)
	candidate := techCompany("Beacon Software", 1_200_000)

	matches := engine.FindMatches(context.Background(), source, []Profile{candidate}, DefaultConfig())

	require.Len(t, matches, 1)
	f := matches[0].SimilarityFactors

	// horizontal weights: industry .3, business .2, geographic .2, size .1, strategic .2
	want := f.Industry*0.3 + f.Business*0.2 + f.Geographic*0.2 + f.Size*0.1 + f.Strategic*0.2
	assert.InDelta(t, want, matches[0].MatchScore, 1e-9)
}

func TestFindMatches_VerticalWeightedScore(t *testing.T) {
	engine := newTestEngine()

	source := techCompany("Acme Analytics", 1_000_000)
	candidate := Profile{
		ID: "realco",
		Features: features.MatchingFeatures{
			Name:              "Realco Properties",
			Industry:          "real estate",
			Revenue:           1_200_000,
			EmployeeCount:     50,
			GeographicMarkets: []string{"usa"},
		},
	}

	matches := engine.FindMatches(context.Background(), source, []Profile{candidate}, Config{MinMatchScore: 0, MaxResults: 10})

	require.Len(t, matches, 1)
	require.Equal(t, models.MatchTypeVertical, matches[0].MatchType)
	f := matches[0].SimilarityFactors

	// vertical weights: industry .1, business .3, geographic .2, size .1, strategic .3
	want := f.Industry*0.1 + f.Business*0.3 + f.Geographic*0.2 + f.Size*0.1 + f.Strategic*0.3
	assert.InDelta(t, want, matches[0].MatchScore, 1e-9)
}

func TestAxisWeightsSumToOne(t *testing.T) {
	for name, weights := range map[string]axisWeights{
		"horizontal": horizontalWeights,
		"vertical":   verticalWeights,
	} {
		t.Run(name, func(t *testing.T) {
			sum := weights.industry + weights.business + weights.geographic + weights.size + weights.strategic
			assert.InDelta(t, 1.0, sum, 1e-9)
		})
	}
}

func TestFindMatches_SelfMatchGuard(t *testing.T) {
	engine := newTestEngine()

	t.Run("same id is skipped", func(t *testing.T) {
		source := techCompany("Acme Analytics", 1_000_000)
		candidate := techCompany("Acme Analytics", 1_000_000)
		candidate.Features.Name = "Acme Analytics Renamed"
		candidate.ID = source.ID

		matches := engine.FindMatches(context.Background(), source, []Profile{candidate}, DefaultConfig())

		assert.Empty(t, matches)
	})

	t.Run("same name is skipped", func(t *testing.T) {
		source := techCompany("Acme Analytics", 1_000_000)
		candidate := techCompany("Acme Analytics", 2_000_000)
		candidate.ID = "different-id"

		matches := engine.FindMatches(context.Background(), source, []Profile{candidate}, DefaultConfig())

		assert.Empty(t, matches)
	})

	t.Run("same name despite suffix and punctuation", func(t *testing.T) {
		source := techCompany("Acme Inc.", 1_000_000)
		candidate := techCompany("Acme, Inc", 1_000_000)
		candidate.ID = "different-id"

		matches := engine.FindMatches(context.Background(), source, []Profile{candidate}, DefaultConfig())

		assert.Empty(t, matches)
	})
}

func TestFindMatches_FilterSortAndTruncate(t *testing.T) {
	engine := newTestEngine()

	source := techCompany("Acme Analytics", 1_000_000)

	candidates := make([]Profile, 0, 8)
	for i := 0; i < 8; i++ {
		// Increasing revenue gap lowers the size factor, spreading scores
		candidates = append(candidates, techCompany(fmt.Sprintf("Candidate %d", i), float64(1_000_000*(i+1))))
	}
	// One candidate below any plausible threshold
	candidates = append(candidates, Profile{
		ID:       "misfit",
		Features: features.MatchingFeatures{Name: "Misfit Holdings", Industry: "real estate"},
	})

	cfg := Config{MinMatchScore: 0.5, MaxResults: 5}
	matches := engine.FindMatches(context.Background(), source, candidates, cfg)

	require.NotEmpty(t, matches)
	assert.LessOrEqual(t, len(matches), cfg.MaxResults)

	for i, match := range matches {
		assert.GreaterOrEqual(t, match.MatchScore, cfg.MinMatchScore)
		if i > 0 {
			assert.LessOrEqual(t, match.MatchScore, matches[i-1].MatchScore)
		}
	}
}

func TestFindMatches_EmptyCandidatePool(t *testing.T) {
	engine := newTestEngine()

	matches := engine.FindMatches(context.Background(), techCompany("Acme", 1), nil, DefaultConfig())

	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestFindMatches_ScoreNeverExceedsOne(t *testing.T) {
	engine := newTestEngine()

	source := Profile{
		ID: "a",
		Features: features.MatchingFeatures{
			Name:                "A",
			Industry:            "technology",
			BusinessModel:       "cloud analytics platform",
			Revenue:             1_000_000,
			EmployeeCount:       100,
			GeographicMarkets:   []string{"usa"},
			StrategicObjectives: []string{"expand analytics offerings"},
		},
	}
	candidate := source
	candidate.ID = "b"
	candidate.Features.Name = "B"

	matches := engine.FindMatches(context.Background(), source, []Profile{candidate}, DefaultConfig())

	require.Len(t, matches, 1)
	assert.LessOrEqual(t, matches[0].MatchScore, 1.0)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0.3, cfg.MinMatchScore)
	assert.Equal(t, 50, cfg.MaxResults)
}
