package marketdata

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

type fakeSource struct {
	fundamentals map[string]*Fundamentals
}

func (s *fakeSource) GetFundamentals(_ context.Context, symbol string) (*Fundamentals, error) {
	if f, ok := s.fundamentals[symbol]; ok {
		return f, nil
	}
	return nil, assert.AnError
}

type fakeUpserter struct {
	upserted []*models.Company
	failFor  string
}

func (u *fakeUpserter) UpsertByTicker(_ context.Context, company *models.Company) error {
	if company.TickerSymbol == u.failFor {
		return assert.AnError
	}
	u.upserted = append(u.upserted, company)
	return nil
}

func TestImporter_ImportSymbols(t *testing.T) {
	source := &fakeSource{fundamentals: map[string]*Fundamentals{
		"ACME": {
			Symbol:          "ACME",
			CompanyName:     "Acme Corp",
			Industry:        "Software",
			BusinessSummary: "Cloud analytics",
			Revenue:         2.5e8,
			Employees:       900,
			Country:         "United States",
			MarketCap:       1.2e9,
			PERatio:         31.4,
		},
		"GLOBX": {
			Symbol:      "GLOBX",
			CompanyName: "Globex",
			Sector:      "Healthcare",
		},
	}}
	upserter := &fakeUpserter{}
	importer := NewImporter(source, upserter, nil, newTestLogger())

	result := importer.ImportSymbols(context.Background(), "tenant-1", []string{"acme", "globx", "missing"})

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, []string{"MISSING"}, result.Failed)
	require.Len(t, upserter.upserted, 2)

	acme := upserter.upserted[0]
	assert.Equal(t, "tenant-1", acme.TenantID)
	assert.Equal(t, "Acme Corp", acme.Name)
	assert.Equal(t, "ACME", acme.TickerSymbol)
	assert.Equal(t, "Software", acme.Industry)
	assert.Equal(t, models.DataSourceMarketData, acme.DataSource)
	assert.Equal(t, "United States", acme.GeographicMarkets)

	var financials map[string]float64
	require.NoError(t, json.Unmarshal([]byte(acme.FinancialMetrics), &financials))
	assert.Equal(t, 1.2e9, financials["market_cap"])
	assert.Equal(t, 31.4, financials["pe_ratio"])

	// falls back to sector when the provider has no industry
	assert.Equal(t, "Healthcare", upserter.upserted[1].Industry)
}

func TestImporter_ImportSymbols_UpsertFailure(t *testing.T) {
	source := &fakeSource{fundamentals: map[string]*Fundamentals{
		"ACME": {Symbol: "ACME", CompanyName: "Acme Corp"},
	}}
	upserter := &fakeUpserter{failFor: "ACME"}
	importer := NewImporter(source, upserter, nil, newTestLogger())

	result := importer.ImportSymbols(context.Background(), "tenant-1", []string{"ACME"})

	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, []string{"ACME"}, result.Failed)
}

func TestImporter_ImportSymbols_SkipsBlankSymbols(t *testing.T) {
	importer := NewImporter(&fakeSource{}, &fakeUpserter{}, nil, newTestLogger())

	result := importer.ImportSymbols(context.Background(), "tenant-1", []string{"", "  "})

	assert.Equal(t, 0, result.Imported)
	assert.Empty(t, result.Failed)
}

type fakeBatchEmitter struct {
	batches [][]*models.Company
}

func (e *fakeBatchEmitter) EmitCompaniesImported(_ context.Context, companies []*models.Company) error {
	e.batches = append(e.batches, companies)
	return nil
}

func TestImporter_ImportSymbols_EmitsBatch(t *testing.T) {
	source := &fakeSource{fundamentals: map[string]*Fundamentals{
		"ACME":  {Symbol: "ACME", CompanyName: "Acme Corp"},
		"GLOBX": {Symbol: "GLOBX", CompanyName: "Globex"},
	}}
	emitter := &fakeBatchEmitter{}
	importer := NewImporter(source, &fakeUpserter{}, emitter, newTestLogger())

	importer.ImportSymbols(context.Background(), "tenant-1", []string{"ACME", "GLOBX", "missing"})

	require.Len(t, emitter.batches, 1)
	require.Len(t, emitter.batches[0], 2)
	assert.Equal(t, "ACME", emitter.batches[0][0].TickerSymbol)
	assert.Equal(t, "GLOBX", emitter.batches[0][1].TickerSymbol)
}

func TestImporter_ImportSymbols_NoBatchWhenNothingImported(t *testing.T) {
	emitter := &fakeBatchEmitter{}
	importer := NewImporter(&fakeSource{}, &fakeUpserter{}, emitter, newTestLogger())

	importer.ImportSymbols(context.Background(), "tenant-1", []string{"missing"})

	assert.Empty(t, emitter.batches)
}

func TestCompanyFromFundamentals_NameFallsBackToSymbol(t *testing.T) {
	company := CompanyFromFundamentals("tenant-1", &Fundamentals{Symbol: "ACME"})
	assert.Equal(t, "ACME", company.Name)
	assert.Equal(t, "[]", company.StrategicObjectives)
}
