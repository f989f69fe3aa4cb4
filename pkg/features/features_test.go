package features

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/clover/pkg/models"
)

func TestFromCompany(t *testing.T) {
	t.Run("decodes JSON-encoded strategic objectives", func(t *testing.T) {
		company := models.Company{
			Name:                "Acme Corp",
			Industry:            "Technology",
			Revenue:             5_000_000,
			EmployeeCount:       120,
			GeographicMarkets:   "USA, Canada , Mexico",
			StrategicObjectives: `["expand into europe","acquire saas products"]`,
		}

		f := FromCompany(company)

		assert.Equal(t, "Acme Corp", f.Name)
		assert.Equal(t, "technology", f.Industry)
		assert.Equal(t, 5_000_000.0, f.Revenue)
		assert.Equal(t, 120, f.EmployeeCount)
		assert.Equal(t, []string{"usa", "canada", "mexico"}, f.GeographicMarkets)
		assert.Equal(t, []string{"expand into europe", "acquire saas products"}, f.StrategicObjectives)
	})

	t.Run("malformed sub-fields degrade to defaults", func(t *testing.T) {
		company := models.Company{
			Name:                "Acme Corp",
			StrategicObjectives: `{not json`,
		}

		f := FromCompany(company)

		assert.Empty(t, f.StrategicObjectives)
		assert.NotNil(t, f.StrategicObjectives)
		assert.Empty(t, f.GeographicMarkets)
		assert.Zero(t, f.Revenue)
		assert.Zero(t, f.EmployeeCount)
	})

	t.Run("object-form objectives keep values", func(t *testing.T) {
		company := models.Company{
			Name:                "Acme Corp",
			StrategicObjectives: `{"primary":"growth"}`,
		}

		f := FromCompany(company)

		assert.Equal(t, []string{"growth"}, f.StrategicObjectives)
	})

	t.Run("every list field is non-nil", func(t *testing.T) {
		f := FromCompany(models.Company{})

		assert.NotNil(t, f.ProductsServices)
		assert.NotNil(t, f.TechnologyStack)
		assert.NotNil(t, f.StrategicObjectives)
		assert.NotNil(t, f.TargetCustomers)
		assert.NotNil(t, f.CompetitiveAdvantages)
	})
}

func TestFromProfile(t *testing.T) {
	t.Run("builds features from nested shape", func(t *testing.T) {
		profile := models.BusinessProfile{
			CompanyName:            "Nimbus Analytics",
			IndustryClassification: "SaaS",
			BusinessModel:          "subscription analytics platform",
			RevenueInfo:            models.RevenueInfo{Amount: "$12.5M"},
			EmployeeCount:          85,
			GeographicMarkets:      []string{" USA ", "Germany"},
			KeyProductsServices:    []string{"dashboarding", "data pipelines"},
			TargetCustomers:        []string{"mid-market retailers"},
		}

		f := FromProfile(profile)

		assert.Equal(t, "Nimbus Analytics", f.Name)
		assert.Equal(t, "saas", f.Industry)
		assert.Equal(t, 12_500_000.0, f.Revenue)
		assert.Equal(t, 85, f.EmployeeCount)
		assert.Equal(t, []string{"usa", "germany"}, f.GeographicMarkets)
		assert.Equal(t, []string{"dashboarding", "data pipelines"}, f.ProductsServices)
		assert.Equal(t, []string{"mid-market retailers"}, f.TargetCustomers)
	})

	t.Run("nil lists become empty lists", func(t *testing.T) {
		f := FromProfile(models.BusinessProfile{CompanyName: "Bare Co"})

		assert.NotNil(t, f.GeographicMarkets)
		assert.NotNil(t, f.ProductsServices)
		assert.NotNil(t, f.TechnologyStack)
		assert.NotNil(t, f.StrategicObjectives)
		assert.NotNil(t, f.TargetCustomers)
		assert.NotNil(t, f.CompetitiveAdvantages)
	})

	t.Run("unparseable revenue degrades to zero", func(t *testing.T) {
		f := FromProfile(models.BusinessProfile{
			RevenueInfo: models.RevenueInfo{Amount: "undisclosed"},
		})

		assert.Zero(t, f.Revenue)
	})
}

func TestParseRevenueAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   float64
	}{
		{"millions suffix", "$12.5M", 12_500_000},
		{"billions suffix", "2B", 2_000_000_000},
		{"thousands separators", "1,200,000", 1_200_000},
		{"plain number", "450000", 450_000},
		{"currency and separators", "$1,500,000", 1_500_000},
		{"empty string", "", 0},
		{"not a number", "undisclosed", 0},
		{"suffix only", "M", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRevenueAmount(tt.amount))
		})
	}
}
