package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/clover/pkg/features"
)

func TestIndustrySimilarity(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name      string
		industryA string
		industryB string
		want      float64
		degraded  bool
	}{
		{"equal industries", "technology", "technology", 1.0, false},
		{"equal ignoring case", "Technology", "technology", 1.0, false},
		{"same cluster technology", "software", "saas", 0.7, false},
		{"primary and related", "technology", "fintech", 0.7, false},
		{"financial cluster", "banking", "insurance", 0.7, false},
		{"healthcare cluster", "biotech", "medical", 0.7, false},
		{"retail cluster", "e-commerce", "marketplace", 0.7, false},
		{"unrelated industries", "technology", "real estate", 0.2, false},
		{"source unknown", "", "technology", 0.5, true},
		{"candidate unknown", "technology", "", 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := features.MatchingFeatures{Industry: tt.industryA}
			b := features.MatchingFeatures{Industry: tt.industryB}

			score := scorer.IndustrySimilarity(a, b)

			assert.InDelta(t, tt.want, score.Value, 1e-9)
			assert.Equal(t, tt.degraded, score.Degraded)
		})
	}
}

func TestGeographicSimilarity(t *testing.T) {
	scorer := NewScorer()

	t.Run("identical markets", func(t *testing.T) {
		a := features.MatchingFeatures{GeographicMarkets: []string{"usa", "canada"}}
		b := features.MatchingFeatures{GeographicMarkets: []string{"usa", "canada"}}

		score := scorer.GeographicSimilarity(a, b)

		assert.InDelta(t, 1.0, score.Value, 1e-9)
		assert.False(t, score.Degraded)
	})

	t.Run("partial overlap is jaccard", func(t *testing.T) {
		a := features.MatchingFeatures{GeographicMarkets: []string{"usa", "canada"}}
		b := features.MatchingFeatures{GeographicMarkets: []string{"usa", "mexico"}}

		score := scorer.GeographicSimilarity(a, b)

		// intersection 1, union 3
		assert.InDelta(t, 1.0/3.0, score.Value, 1e-9)
	})

	t.Run("disjoint markets are complementary", func(t *testing.T) {
		a := features.MatchingFeatures{GeographicMarkets: []string{"usa"}}
		b := features.MatchingFeatures{GeographicMarkets: []string{"japan", "korea"}}

		score := scorer.GeographicSimilarity(a, b)

		assert.InDelta(t, 0.7, score.Value, 1e-9)
		assert.False(t, score.Degraded)
	})

	t.Run("either side empty is neutral", func(t *testing.T) {
		a := features.MatchingFeatures{}
		b := features.MatchingFeatures{GeographicMarkets: []string{"usa"}}

		score := scorer.GeographicSimilarity(a, b)

		assert.InDelta(t, 0.5, score.Value, 1e-9)
		assert.True(t, score.Degraded)
	})

	t.Run("markets compare case-insensitively", func(t *testing.T) {
		a := features.MatchingFeatures{GeographicMarkets: []string{"USA"}}
		b := features.MatchingFeatures{GeographicMarkets: []string{"usa "}}

		score := scorer.GeographicSimilarity(a, b)

		assert.InDelta(t, 1.0, score.Value, 1e-9)
	})
}

func TestSizeSimilarity(t *testing.T) {
	scorer := NewScorer()

	t.Run("revenue ratio averaged with employee ratio", func(t *testing.T) {
		a := features.MatchingFeatures{Revenue: 1_000_000, EmployeeCount: 50}
		b := features.MatchingFeatures{Revenue: 1_200_000, EmployeeCount: 50}

		score := scorer.SizeSimilarity(a, b)

		// (1.0/1.2 + 1.0) / 2
		assert.InDelta(t, 0.9167, score.Value, 1e-3)
		assert.False(t, score.Degraded)
	})

	t.Run("missing revenue on one side defaults that ratio", func(t *testing.T) {
		a := features.MatchingFeatures{Revenue: 0, EmployeeCount: 100}
		b := features.MatchingFeatures{Revenue: 2_000_000, EmployeeCount: 200}

		score := scorer.SizeSimilarity(a, b)

		// (0.5 + 0.5) / 2
		assert.InDelta(t, 0.5, score.Value, 1e-9)
		assert.False(t, score.Degraded)
	})

	t.Run("no size data at all is neutral", func(t *testing.T) {
		score := scorer.SizeSimilarity(features.MatchingFeatures{}, features.MatchingFeatures{})

		assert.InDelta(t, 0.5, score.Value, 1e-9)
		assert.True(t, score.Degraded)
	})

	t.Run("symmetric in argument order", func(t *testing.T) {
		a := features.MatchingFeatures{Revenue: 3_000_000, EmployeeCount: 30}
		b := features.MatchingFeatures{Revenue: 9_000_000, EmployeeCount: 90}

		assert.InDelta(t, scorer.SizeSimilarity(a, b).Value, scorer.SizeSimilarity(b, a).Value, 1e-9)
	})
}

func TestBusinessSimilarity(t *testing.T) {
	scorer := NewScorer()

	t.Run("identical business text scores near one", func(t *testing.T) {
		a := features.MatchingFeatures{
			BusinessModel:    "subscription analytics platform",
			ProductsServices: []string{"dashboards", "alerting"},
		}
		b := features.MatchingFeatures{
			BusinessModel:    "subscription analytics platform",
			ProductsServices: []string{"dashboards", "alerting"},
		}

		score := scorer.BusinessSimilarity(a, b)

		assert.InDelta(t, 1.0, score.Value, 1e-9)
		assert.False(t, score.Degraded)
	})

	t.Run("unrelated business text scores near zero", func(t *testing.T) {
		a := features.MatchingFeatures{BusinessModel: "subscription analytics platform"}
		b := features.MatchingFeatures{BusinessModel: "industrial concrete manufacturing"}

		score := scorer.BusinessSimilarity(a, b)

		assert.Less(t, score.Value, 0.1)
	})

	t.Run("overlapping text scores between zero and one", func(t *testing.T) {
		a := features.MatchingFeatures{BusinessModel: "cloud analytics platform for retailers"}
		b := features.MatchingFeatures{BusinessModel: "cloud logistics platform for retailers"}

		score := scorer.BusinessSimilarity(a, b)

		assert.Greater(t, score.Value, 0.0)
		assert.Less(t, score.Value, 1.0)
	})

	t.Run("blank document on either side is neutral", func(t *testing.T) {
		a := features.MatchingFeatures{BusinessModel: "cloud analytics"}
		b := features.MatchingFeatures{}

		score := scorer.BusinessSimilarity(a, b)

		assert.InDelta(t, 0.5, score.Value, 1e-9)
		assert.True(t, score.Degraded)
	})

	t.Run("stop-word-only text is neutral", func(t *testing.T) {
		a := features.MatchingFeatures{BusinessModel: "the and of"}
		b := features.MatchingFeatures{BusinessModel: "with into onto"}

		score := scorer.BusinessSimilarity(a, b)

		assert.InDelta(t, 0.5, score.Value, 1e-9)
		assert.True(t, score.Degraded)
	})
}

func TestStrategicSimilarity(t *testing.T) {
	scorer := NewScorer()

	t.Run("shared objectives score high", func(t *testing.T) {
		a := features.MatchingFeatures{
			StrategicObjectives: []string{"expand into european markets"},
			TargetCustomers:     []string{"enterprise retailers"},
		}
		b := features.MatchingFeatures{
			StrategicObjectives: []string{"expand into european markets"},
			TargetCustomers:     []string{"enterprise retailers"},
		}

		score := scorer.StrategicSimilarity(a, b)

		assert.InDelta(t, 1.0, score.Value, 1e-9)
	})

	t.Run("missing strategic text is neutral", func(t *testing.T) {
		a := features.MatchingFeatures{StrategicObjectives: []string{"growth"}}
		b := features.MatchingFeatures{}

		score := scorer.StrategicSimilarity(a, b)

		assert.InDelta(t, 0.5, score.Value, 1e-9)
		assert.True(t, score.Degraded)
	})
}

func TestTextSimilarityRange(t *testing.T) {
	textSim := NewTextSimilarity()

	docs := []string{
		"cloud based subscription software",
		"industrial machinery and equipment rental",
		"subscription software for cloud deployments",
		"pharmaceutical research laboratory",
	}

	for _, docA := range docs {
		for _, docB := range docs {
			sim, ok := textSim.Compare(docA, docB)
			assert.True(t, ok)
			assert.GreaterOrEqual(t, sim, 0.0)
			assert.LessOrEqual(t, sim, 1.0)
		}
	}
}
