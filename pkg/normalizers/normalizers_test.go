package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCompanyName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name", "Acme", "acme"},
		{"strips inc suffix", "Acme Inc.", "acme"},
		{"strips suffix after comma", "Acme, Inc", "acme"},
		{"strips corporation", "Globex Corporation", "globex"},
		{"strips llc", "Initech LLC", "initech"},
		{"collapses whitespace", "  Umbrella   Health  ", "umbrella health"},
		{"drops punctuation", "O'Brien & Sons Ltd", "obrien sons"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCompanyName(tt.input))
		})
	}
}

func TestNormalizeIndustry(t *testing.T) {
	assert.Equal(t, "financial services", NormalizeIndustry("  Financial   Services "))
	assert.Equal(t, "", NormalizeIndustry(""))
}

func TestNormalizeMarket(t *testing.T) {
	assert.Equal(t, "north america", NormalizeMarket(" North America "))
}

func TestNormalizeTicker(t *testing.T) {
	assert.Equal(t, "BRK.B", NormalizeTicker(" brk.b "))
	assert.Equal(t, "ACME", NormalizeTicker("acme!"))
	assert.Equal(t, "", NormalizeTicker("  "))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"usa", "canada", "mexico"}, SplitList("USA, Canada , Mexico"))
	assert.Nil(t, SplitList("  "))
	assert.Equal(t, []string{"usa"}, SplitList("USA,,"))
}
