package matching

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// maxVocabularyTerms caps the vocabulary used for text similarity
const maxVocabularyTerms = 1000

var tokenPattern = regexp.MustCompile(`\w\w+`)

// TextSimilarity computes the cosine similarity of TF-IDF vectors built
// over exactly the two documents being compared. English stop words are
// removed before unigrams and bigrams are counted, so IDF weighting is
// relative to this pair only, not a corpus.
type TextSimilarity struct{}

// NewTextSimilarity creates a new pairwise text similarity calculator
func NewTextSimilarity() *TextSimilarity {
	return &TextSimilarity{}
}

// Compare returns the cosine similarity of the two documents in [0,1].
// The second return is false when neither document contributes any usable
// terms, e.g. both are entirely stop words.
func (t *TextSimilarity) Compare(docA, docB string) (float64, bool) {
	termsA := extractTerms(docA)
	termsB := extractTerms(docB)

	vocab := buildVocabulary(termsA, termsB)
	if len(vocab) == 0 {
		return 0, false
	}

	vecA := tfidfVector(termsA, termsB, vocab)
	vecB := tfidfVector(termsB, termsA, vocab)

	return cosine(vecA, vecB), true
}

// extractTerms tokenizes a document into unigrams and bigrams with stop
// words removed
func extractTerms(doc string) []string {
	words := tokenPattern.FindAllString(strings.ToLower(doc), -1)

	kept := make([]string, 0, len(words))
	for _, w := range words {
		if !englishStopWords[w] {
			kept = append(kept, w)
		}
	}

	terms := make([]string, 0, len(kept)*2)
	terms = append(terms, kept...)
	for i := 0; i+1 < len(kept); i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}
	return terms
}

// buildVocabulary merges both term lists into a vocabulary, keeping the
// most frequent terms when the cap is exceeded (ties broken alphabetically)
func buildVocabulary(termsA, termsB []string) []string {
	counts := make(map[string]int, len(termsA)+len(termsB))
	for _, term := range termsA {
		counts[term]++
	}
	for _, term := range termsB {
		counts[term]++
	}

	vocab := make([]string, 0, len(counts))
	for term := range counts {
		vocab = append(vocab, term)
	}

	if len(vocab) > maxVocabularyTerms {
		sort.Slice(vocab, func(i, j int) bool {
			if counts[vocab[i]] != counts[vocab[j]] {
				return counts[vocab[i]] > counts[vocab[j]]
			}
			return vocab[i] < vocab[j]
		})
		vocab = vocab[:maxVocabularyTerms]
	}

	sort.Strings(vocab)
	return vocab
}

// tfidfVector builds the l2-normalized TF-IDF vector for a document.
// IDF uses smoothed document frequency over the two-document corpus:
// idf = ln((1+n)/(1+df)) + 1 with n = 2.
func tfidfVector(terms, otherTerms []string, vocab []string) []float64 {
	tf := make(map[string]int, len(terms))
	for _, term := range terms {
		tf[term]++
	}
	otherTF := make(map[string]int, len(otherTerms))
	for _, term := range otherTerms {
		otherTF[term]++
	}

	vec := make([]float64, len(vocab))
	for i, term := range vocab {
		count := tf[term]
		if count == 0 {
			continue
		}

		df := 1
		if otherTF[term] > 0 {
			df = 2
		}
		idf := math.Log(3.0/float64(1+df)) + 1

		vec[i] = float64(count) * idf
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}

	return vec
}

func cosine(a, b []float64) float64 {
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	// Vectors are unit length; clamp residual float error
	if dot > 1 {
		dot = 1
	}
	if dot < 0 {
		dot = 0
	}
	return dot
}
