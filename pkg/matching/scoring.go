package matching

import (
	"strings"

	"github.com/Ramsey-B/clover/pkg/features"
)

// Score is the result of a single similarity axis. Degraded marks scores
// that fell back to a neutral default instead of being computed, with
// Reason explaining what was missing.
type Score struct {
	Value    float64
	Degraded bool
	Reason   string
}

func neutral(reason string) Score {
	return Score{Value: 0.5, Degraded: true, Reason: reason}
}

func computed(value float64) Score {
	return Score{Value: value}
}

// relatedIndustries maps a primary industry to labels considered part of
// the same cluster for horizontal-merger purposes
var relatedIndustries = map[string][]string{
	"technology":         {"software", "fintech", "artificial intelligence", "saas"},
	"financial services": {"fintech", "banking", "insurance"},
	"healthcare":         {"biotech", "pharmaceutical", "medical"},
	"retail":             {"e-commerce", "consumer goods", "marketplace"},
}

// Scorer computes per-axis similarity between two companies' features
type Scorer struct {
	textSim *TextSimilarity
}

// NewScorer creates a new Scorer
func NewScorer() *Scorer {
	return &Scorer{
		textSim: NewTextSimilarity(),
	}
}

// IndustrySimilarity scores how close two industry labels are.
// Equal labels score 1.0, labels in the same related-industry cluster 0.7,
// unrelated labels 0.2. Unknown industry on either side is neutral.
func (s *Scorer) IndustrySimilarity(a, b features.MatchingFeatures) Score {
	industryA := strings.ToLower(a.Industry)
	industryB := strings.ToLower(b.Industry)

	if industryA == "" || industryB == "" {
		return neutral("industry unknown")
	}

	if industryA == industryB {
		return computed(1.0)
	}

	for primary, related := range relatedIndustries {
		if inCluster(industryA, primary, related) && inCluster(industryB, primary, related) {
			return computed(0.7)
		}
	}

	return computed(0.2)
}

func inCluster(industry, primary string, related []string) bool {
	if industry == primary {
		return true
	}
	for _, r := range related {
		if industry == r {
			return true
		}
	}
	return false
}

// BusinessSimilarity scores overlap in business model and offering via
// pairwise TF-IDF cosine over the combined business text
func (s *Scorer) BusinessSimilarity(a, b features.MatchingFeatures) Score {
	docA := joinText(a.BusinessModel, strings.Join(a.ProductsServices, " "), strings.Join(a.CompetitiveAdvantages, " "))
	docB := joinText(b.BusinessModel, strings.Join(b.ProductsServices, " "), strings.Join(b.CompetitiveAdvantages, " "))

	if strings.TrimSpace(docA) == "" || strings.TrimSpace(docB) == "" {
		return neutral("business text unavailable")
	}

	sim, ok := s.textSim.Compare(docA, docB)
	if !ok {
		return neutral("business text has no scorable terms")
	}
	return computed(sim)
}

// GeographicSimilarity scores market overlap as Jaccard similarity of the
// two market sets. Fully disjoint but non-empty sets score 0.7, since
// complementary markets are valuable for expansion.
func (s *Scorer) GeographicSimilarity(a, b features.MatchingFeatures) Score {
	marketsA := toSet(a.GeographicMarkets)
	marketsB := toSet(b.GeographicMarkets)

	if len(marketsA) == 0 || len(marketsB) == 0 {
		return neutral("geographic markets unknown")
	}

	intersection := 0
	for m := range marketsA {
		if marketsB[m] {
			intersection++
		}
	}
	union := len(marketsA) + len(marketsB) - intersection

	if intersection == 0 {
		return computed(0.7)
	}

	return computed(float64(intersection) / float64(union))
}

// SizeSimilarity scores how comparable the two companies are in scale,
// averaging the min/max ratios of revenue and employee count. Either
// ratio defaults to 0.5 when a side lacks the figure.
func (s *Scorer) SizeSimilarity(a, b features.MatchingFeatures) Score {
	if a.Revenue == 0 && b.Revenue == 0 && a.EmployeeCount == 0 && b.EmployeeCount == 0 {
		return neutral("size unknown")
	}

	revenueSim := 0.5
	if a.Revenue > 0 && b.Revenue > 0 {
		revenueSim = ratio(a.Revenue, b.Revenue)
	}

	employeeSim := 0.5
	if a.EmployeeCount > 0 && b.EmployeeCount > 0 {
		employeeSim = ratio(float64(a.EmployeeCount), float64(b.EmployeeCount))
	}

	return computed((revenueSim + employeeSim) / 2)
}

// StrategicSimilarity scores alignment of strategic objectives and target
// customers using the same pairwise text similarity as BusinessSimilarity
func (s *Scorer) StrategicSimilarity(a, b features.MatchingFeatures) Score {
	docA := joinText(strings.Join(a.StrategicObjectives, " "), strings.Join(a.TargetCustomers, " "))
	docB := joinText(strings.Join(b.StrategicObjectives, " "), strings.Join(b.TargetCustomers, " "))

	if strings.TrimSpace(docA) == "" || strings.TrimSpace(docB) == "" {
		return neutral("strategic text unavailable")
	}

	sim, ok := s.textSim.Compare(docA, docB)
	if !ok {
		return neutral("strategic text has no scorable terms")
	}
	return computed(sim)
}

func joinText(parts ...string) string {
	return strings.Join(parts, " ")
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			set[item] = true
		}
	}
	return set
}

func ratio(a, b float64) float64 {
	if a < b {
		return a / b
	}
	return b / a
}
