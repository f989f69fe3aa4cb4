package models

// BusinessProfile is the nested shape produced by the document analysis
// pipeline before a company row exists. List fields arrive inline rather
// than JSON-encoded.
type BusinessProfile struct {
	CompanyName            string         `json:"company_name"`
	IndustryClassification string         `json:"industry_classification"`
	BusinessModel          string         `json:"business_model"`
	RevenueInfo            RevenueInfo    `json:"revenue_info"`
	EmployeeCount          int            `json:"employee_count"`
	GeographicMarkets      []string       `json:"geographic_markets"`
	KeyProductsServices    []string       `json:"key_products_services"`
	TechnologyStack        []string       `json:"technology_stack"`
	StrategicObjectives    []string       `json:"strategic_objectives"`
	TargetCustomers        []string       `json:"target_customers"`
	CompetitiveAdvantages  []string       `json:"competitive_advantages"`
	FinancialMetrics       map[string]any `json:"financial_metrics,omitempty"`
}

// RevenueInfo carries a revenue figure as the extractor reports it,
// typically a currency string like "$12.5M".
type RevenueInfo struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency,omitempty"`
	Period   string `json:"period,omitempty"`
}
