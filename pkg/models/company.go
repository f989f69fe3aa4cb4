package models

import (
	"time"

	"github.com/google/uuid"
)

// DataSource identifies where a company record came from
type DataSource string

const (
	// DataSourceUserUpload marks companies created from user-supplied documents
	DataSourceUserUpload DataSource = "user_upload"
	// DataSourceMarketData marks companies imported from the market data provider
	DataSourceMarketData DataSource = "market_data"
)

// Company is a company record in the directory.
// FinancialMetrics and StrategicObjectives are stored as JSON-encoded
// strings so the row round-trips losslessly regardless of the sub-field
// shapes the upstream extractors produce.
type Company struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	TenantID            string     `db:"tenant_id" json:"tenant_id"`
	Name                string     `db:"name" json:"company_name" validate:"required"`
	TickerSymbol        string     `db:"ticker_symbol" json:"ticker_symbol,omitempty"`
	Industry            string     `db:"industry" json:"industry_classification"`
	Revenue             float64    `db:"revenue" json:"revenue"`
	EmployeeCount       int        `db:"employee_count" json:"employee_count"`
	GeographicMarkets   string     `db:"geographic_markets" json:"geographic_markets"` // comma-joined
	Description         string     `db:"description" json:"business_description"`
	BusinessModel       string     `db:"business_model" json:"business_model"`
	FinancialMetrics    string     `db:"financial_metrics" json:"financial_metrics"`       // JSON object
	StrategicObjectives string     `db:"strategic_objectives" json:"strategic_objectives"` // JSON array
	DataSource          DataSource `db:"data_source" json:"data_source"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}
