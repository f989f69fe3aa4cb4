package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/clover/pkg/models"
)

func TestFeatureImportance_UniformUnderTwoMatches(t *testing.T) {
	engine := newTestEngine()

	for _, matches := range [][]Match{
		nil,
		{},
		{{MatchScore: 0.8}},
	} {
		importance := engine.FeatureImportance(matches)

		assert.Len(t, importance, 5)
		for _, axis := range importanceAxes {
			assert.InDelta(t, 0.2, importance[axis], 1e-9)
		}
	}
}

func TestFeatureImportance_NormalizesToOne(t *testing.T) {
	engine := newTestEngine()

	matches := []Match{
		{
			MatchScore:        0.9,
			SimilarityFactors: models.SimilarityFactors{Industry: 1.0, Business: 0.4, Geographic: 0.5, Size: 0.9, Strategic: 0.3},
		},
		{
			MatchScore:        0.6,
			SimilarityFactors: models.SimilarityFactors{Industry: 0.7, Business: 0.5, Geographic: 0.5, Size: 0.6, Strategic: 0.4},
		},
		{
			MatchScore:        0.4,
			SimilarityFactors: models.SimilarityFactors{Industry: 0.2, Business: 0.6, Geographic: 0.5, Size: 0.3, Strategic: 0.5},
		},
	}

	importance := engine.FeatureImportance(matches)

	var total float64
	for _, axis := range importanceAxes {
		assert.GreaterOrEqual(t, importance[axis], 0.0)
		total += importance[axis]
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	// Industry tracks the scores perfectly here; geographic is constant
	assert.Greater(t, importance["industry"], importance["geographic"])
	assert.InDelta(t, 0.0, importance["geographic"], 1e-9)
}

func TestFeatureImportance_ZeroVarianceFallsBackToUniform(t *testing.T) {
	engine := newTestEngine()

	// Identical rows: every axis correlation is undefined
	match := Match{
		MatchScore:        0.5,
		SimilarityFactors: models.SimilarityFactors{Industry: 0.5, Business: 0.5, Geographic: 0.5, Size: 0.5, Strategic: 0.5},
	}

	importance := engine.FeatureImportance([]Match{match, match, match})

	for _, axis := range importanceAxes {
		assert.InDelta(t, 0.2, importance[axis], 1e-9)
	}
}
