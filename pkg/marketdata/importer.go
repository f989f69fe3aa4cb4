package marketdata

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// FundamentalsSource fetches fundamentals for a ticker symbol
type FundamentalsSource interface {
	GetFundamentals(ctx context.Context, symbol string) (*Fundamentals, error)
}

// CompanyUpserter persists market-data company rows keyed by ticker
type CompanyUpserter interface {
	UpsertByTicker(ctx context.Context, company *models.Company) error
}

// BatchEmitter publishes the companies an import run produced. May be nil
// when Kafka is disabled.
type BatchEmitter interface {
	EmitCompaniesImported(ctx context.Context, companies []*models.Company) error
}

// Importer converts provider fundamentals into market_data company rows
type Importer struct {
	source    FundamentalsSource
	companies CompanyUpserter
	emitter   BatchEmitter
	logger    ectologger.Logger
}

func NewImporter(source FundamentalsSource, companies CompanyUpserter, emitter BatchEmitter, logger ectologger.Logger) *Importer {
	return &Importer{
		source:    source,
		companies: companies,
		emitter:   emitter,
		logger:    logger,
	}
}

// ImportResult summarizes a market data import run
type ImportResult struct {
	Imported int      `json:"imported"`
	Failed   []string `json:"failed"`
}

// ImportSymbols fetches fundamentals for each symbol and upserts a company
// row for it. Individual symbol failures are recorded and skipped so one
// bad ticker does not abort the run.
func (i *Importer) ImportSymbols(ctx context.Context, tenantID string, symbols []string) ImportResult {
	ctx, span := tracing.StartSpan(ctx, "marketdata.Importer.ImportSymbols")
	defer span.End()

	result := ImportResult{Failed: []string{}}
	imported := make([]*models.Company, 0, len(symbols))

	for _, raw := range symbols {
		symbol := normalizers.NormalizeTicker(raw)
		if symbol == "" {
			continue
		}

		fundamentals, err := i.source.GetFundamentals(ctx, symbol)
		if err != nil {
			i.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"symbol": symbol}).Warn("Skipping symbol, failed to fetch fundamentals")
			result.Failed = append(result.Failed, symbol)
			continue
		}

		company := CompanyFromFundamentals(tenantID, fundamentals)
		if err := i.companies.UpsertByTicker(ctx, company); err != nil {
			i.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"symbol": symbol}).Error("Failed to upsert market data company")
			result.Failed = append(result.Failed, symbol)
			continue
		}

		metrics.CompaniesCreatedTotal.WithLabelValues(tenantID, string(models.DataSourceMarketData)).Inc()
		imported = append(imported, company)
		result.Imported++
	}

	// Publish failures are logged, not returned: the rows are already
	// durable in Postgres.
	if i.emitter != nil && len(imported) > 0 {
		if err := i.emitter.EmitCompaniesImported(ctx, imported); err != nil {
			i.logger.WithContext(ctx).WithError(err).Warn("Failed to publish imported company events")
		}
	}

	i.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id": tenantID,
		"imported":  result.Imported,
		"failed":    len(result.Failed),
	}).Info("Market data import finished")

	return result
}

// CompanyFromFundamentals maps provider fundamentals onto a company row
// with market_data provenance
func CompanyFromFundamentals(tenantID string, f *Fundamentals) *models.Company {
	metricsJSON, _ := json.Marshal(map[string]float64{
		"market_cap":       f.MarketCap,
		"pe_ratio":         f.PERatio,
		"price_to_book":    f.PriceToBook,
		"debt_to_equity":   f.DebtToEquity,
		"return_on_equity": f.ReturnOnEquity,
		"profit_margins":   f.ProfitMargins,
		"revenue_growth":   f.RevenueGrowth,
	})

	industry := f.Industry
	if industry == "" {
		industry = f.Sector
	}

	name := f.CompanyName
	if name == "" {
		name = f.Symbol
	}

	return &models.Company{
		TenantID:            tenantID,
		Name:                name,
		TickerSymbol:        f.Symbol,
		Industry:            industry,
		Revenue:             f.Revenue,
		EmployeeCount:       f.Employees,
		GeographicMarkets:   strings.TrimSpace(f.Country),
		Description:         f.BusinessSummary,
		FinancialMetrics:    string(metricsJSON),
		StrategicObjectives: "[]",
		DataSource:          models.DataSourceMarketData,
	}
}
