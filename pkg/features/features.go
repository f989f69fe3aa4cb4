// Package features converts heterogeneous company records into the
// canonical shape the matching scorers operate on.
package features

import (
	"encoding/json"
	"strings"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// MatchingFeatures is the canonical record all scorers read. Every field
// has a defined zero default so scorers never need presence checks.
type MatchingFeatures struct {
	Name                  string
	Industry              string // lower-cased
	BusinessModel         string
	Revenue               float64
	EmployeeCount         int
	GeographicMarkets     []string // lower-cased, trimmed
	ProductsServices      []string
	TechnologyStack       []string
	StrategicObjectives   []string
	TargetCustomers       []string
	CompetitiveAdvantages []string
}

// FromCompany builds matching features from a persisted company row.
// The row carries strategic objectives as a JSON-encoded string; a
// malformed payload degrades to an empty list rather than failing.
// The business description folds into the business-model text so both
// feed the text scorers.
func FromCompany(c models.Company) MatchingFeatures {
	return MatchingFeatures{
		Name:                  c.Name,
		Industry:              normalizers.NormalizeIndustry(c.Industry),
		BusinessModel:         joinNonEmpty(c.BusinessModel, c.Description),
		Revenue:               c.Revenue,
		EmployeeCount:         c.EmployeeCount,
		GeographicMarkets:     normalizers.SplitList(c.GeographicMarkets),
		ProductsServices:      []string{},
		TechnologyStack:       []string{},
		StrategicObjectives:   decodeStringList(c.StrategicObjectives),
		TargetCustomers:       []string{},
		CompetitiveAdvantages: []string{},
	}
}

// FromProfile builds matching features from a freshly-extracted business
// profile, where list fields arrive inline and revenue arrives as a
// currency string under revenue_info.
func FromProfile(p models.BusinessProfile) MatchingFeatures {
	markets := make([]string, 0, len(p.GeographicMarkets))
	for _, m := range p.GeographicMarkets {
		if market := normalizers.NormalizeMarket(m); market != "" {
			markets = append(markets, market)
		}
	}

	return MatchingFeatures{
		Name:                  p.CompanyName,
		Industry:              normalizers.NormalizeIndustry(p.IndustryClassification),
		BusinessModel:         p.BusinessModel,
		Revenue:               ParseRevenueAmount(p.RevenueInfo.Amount),
		EmployeeCount:         p.EmployeeCount,
		GeographicMarkets:     markets,
		ProductsServices:      orEmpty(p.KeyProductsServices),
		TechnologyStack:       orEmpty(p.TechnologyStack),
		StrategicObjectives:   orEmpty(p.StrategicObjectives),
		TargetCustomers:       orEmpty(p.TargetCustomers),
		CompetitiveAdvantages: orEmpty(p.CompetitiveAdvantages),
	}
}

// decodeStringList decodes a JSON-encoded list of strings, tolerating the
// object form some upstream writers produce (values are kept, keys dropped).
func decodeStringList(raw string) []string {
	if raw == "" {
		return []string{}
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}

	var obj map[string]string
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		list = make([]string, 0, len(obj))
		for _, v := range obj {
			list = append(list, v)
		}
		return list
	}

	return []string{}
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
