package matching

import "math"

// importanceAxes is the fixed axis order for feature importance results
var importanceAxes = []string{"industry", "business", "geographic", "size", "strategic"}

// FeatureImportance estimates how much each similarity axis drove the
// spread of match scores across a batch, as absolute Pearson correlation
// between the axis values and the final scores, normalized to sum to 1.
// Fewer than two matches carries no signal, so every axis gets 0.2.
func (e *Engine) FeatureImportance(matches []Match) map[string]float64 {
	if len(matches) < 2 {
		return uniformImportance()
	}

	scores := make([]float64, len(matches))
	axisValues := make([][]float64, len(importanceAxes))
	for i := range axisValues {
		axisValues[i] = make([]float64, len(matches))
	}

	for i, match := range matches {
		scores[i] = match.MatchScore
		axisValues[0][i] = match.SimilarityFactors.Industry
		axisValues[1][i] = match.SimilarityFactors.Business
		axisValues[2][i] = match.SimilarityFactors.Geographic
		axisValues[3][i] = match.SimilarityFactors.Size
		axisValues[4][i] = match.SimilarityFactors.Strategic
	}

	correlations := make([]float64, len(importanceAxes))
	var total float64
	for i, values := range axisValues {
		corr := pearson(values, scores)
		if math.IsNaN(corr) {
			corr = 0
		}
		correlations[i] = math.Abs(corr)
		total += correlations[i]
	}

	if total == 0 {
		return uniformImportance()
	}

	importance := make(map[string]float64, len(importanceAxes))
	for i, axis := range importanceAxes {
		importance[axis] = correlations[i] / total
	}
	return importance
}

func uniformImportance() map[string]float64 {
	importance := make(map[string]float64, len(importanceAxes))
	for _, axis := range importanceAxes {
		importance[axis] = 0.2
	}
	return importance
}

// pearson computes the Pearson correlation coefficient of two equal-length
// series. Returns NaN when either series has zero variance.
func pearson(x, y []float64) float64 {
	n := float64(len(x))

	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX := sumX / n
	meanY := sumY / n

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	return cov / math.Sqrt(varX*varY)
}
