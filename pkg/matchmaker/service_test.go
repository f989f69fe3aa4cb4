package matchmaker

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
)

func newTestLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakeCompanyStore struct {
	companies []models.Company
}

func (s *fakeCompanyStore) Get(_ context.Context, tenantID string, id uuid.UUID) (*models.Company, error) {
	for _, c := range s.companies {
		if c.TenantID == tenantID && c.ID == id {
			company := c
			return &company, nil
		}
	}
	return nil, assert.AnError
}

func (s *fakeCompanyStore) List(_ context.Context, tenantID string, _ models.DataSource, limit, offset int) ([]models.Company, error) {
	var tenantCompanies []models.Company
	for _, c := range s.companies {
		if c.TenantID == tenantID {
			tenantCompanies = append(tenantCompanies, c)
		}
	}
	if offset >= len(tenantCompanies) {
		return nil, nil
	}
	end := offset + limit
	if end > len(tenantCompanies) {
		end = len(tenantCompanies)
	}
	return tenantCompanies[offset:end], nil
}

type fakeMatchStore struct {
	stored   map[uuid.UUID][]models.Match
	replaces int
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{stored: map[uuid.UUID][]models.Match{}}
}

func (s *fakeMatchStore) ReplaceForSource(_ context.Context, _ string, sourceCompanyID uuid.UUID, matches []*models.Match) error {
	s.replaces++
	rows := make([]models.Match, len(matches))
	for i, m := range matches {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		rows[i] = *m
	}
	s.stored[sourceCompanyID] = rows
	return nil
}

func (s *fakeMatchStore) ListBySource(_ context.Context, _ string, sourceCompanyID uuid.UUID) ([]models.Match, error) {
	return s.stored[sourceCompanyID], nil
}

func (s *fakeMatchStore) ListByType(_ context.Context, _ string, matchType models.MatchType, limit int) ([]models.Match, error) {
	var rows []models.Match
	for _, stored := range s.stored {
		for _, m := range stored {
			if m.MatchType == matchType {
				rows = append(rows, m)
			}
		}
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *fakeMatchStore) DeleteBySource(_ context.Context, _ string, sourceCompanyID uuid.UUID) error {
	delete(s.stored, sourceCompanyID)
	return nil
}

type fakeEmitter struct {
	computed int
	lastRows []models.Match
}

func (e *fakeEmitter) EmitMatchComputed(_ context.Context, _ string, _ string, _ string, matches []models.Match) error {
	e.computed++
	e.lastRows = matches
	return nil
}

type fakeProjector struct {
	projected int
}

func (p *fakeProjector) ProjectMatches(_ context.Context, _ string, _ string, _ []models.Match) error {
	p.projected++
	return nil
}

func techCompany(tenantID, name, industry string, revenue float64, employees int, markets string) models.Company {
	return models.Company{
		ID:                  uuid.New(),
		TenantID:            tenantID,
		Name:                name,
		Industry:            industry,
		Revenue:             revenue,
		EmployeeCount:       employees,
		GeographicMarkets:   markets,
		Description:         "Cloud software platform for enterprise analytics and reporting",
		FinancialMetrics:    "{}",
		StrategicObjectives: `["expand enterprise market share"]`,
		DataSource:          models.DataSourceUserUpload,
	}
}

func TestService_ComputeMatches(t *testing.T) {
	source := techCompany("tenant-1", "Acme Analytics", "Software", 1e8, 500, "north america,europe")
	similar := techCompany("tenant-1", "Globex Insights", "Software", 1.1e8, 550, "north america,europe")
	unrelated := techCompany("tenant-1", "Dirt Haulers", "Construction", 5e6, 40, "asia")
	otherTenant := techCompany("tenant-2", "Hidden Co", "Software", 1e8, 500, "north america")

	companies := &fakeCompanyStore{companies: []models.Company{source, similar, unrelated, otherTenant}}
	matchStore := newFakeMatchStore()
	emitter := &fakeEmitter{}
	projector := &fakeProjector{}

	svc := NewService(companies, matchStore, matching.NewEngine(newTestLogger()), emitter, projector, matching.DefaultConfig(), newTestLogger())

	rows, err := svc.ComputeMatches(context.Background(), "tenant-1", source.ID, ComputeOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	for _, row := range rows {
		assert.Equal(t, "tenant-1", row.TenantID)
		assert.Equal(t, source.ID, row.SourceCompanyID)
		assert.NotEqual(t, source.ID, row.CandidateCompanyID)
		assert.Equal(t, AnalysisVersion, row.AnalysisVersion)
		assert.GreaterOrEqual(t, row.MatchScore, 0.3)
	}

	assert.Equal(t, similar.ID, rows[0].CandidateCompanyID)
	assert.Equal(t, models.MatchTypeHorizontal, rows[0].MatchType)

	assert.Equal(t, 1, matchStore.replaces)
	assert.Equal(t, 1, emitter.computed)
	assert.Equal(t, 1, projector.projected)
	assert.Equal(t, rows, matchStore.stored[source.ID])
}

func TestService_ComputeMatches_UnknownSource(t *testing.T) {
	svc := NewService(&fakeCompanyStore{}, newFakeMatchStore(), matching.NewEngine(newTestLogger()), nil, nil, matching.DefaultConfig(), newTestLogger())

	_, err := svc.ComputeMatches(context.Background(), "tenant-1", uuid.New(), ComputeOptions{})
	require.Error(t, err)
}

func TestService_ComputeMatches_Options(t *testing.T) {
	source := techCompany("tenant-1", "Acme Analytics", "Software", 1e8, 500, "north america")
	companies := []models.Company{source}
	for i := 0; i < 10; i++ {
		companies = append(companies, techCompany("tenant-1", uuid.NewString(), "Software", 1e8, 500, "north america"))
	}

	store := &fakeCompanyStore{companies: companies}
	matchStore := newFakeMatchStore()
	svc := NewService(store, matchStore, matching.NewEngine(newTestLogger()), nil, nil, matching.DefaultConfig(), newTestLogger())

	maxResults := 3
	rows, err := svc.ComputeMatches(context.Background(), "tenant-1", source.ID, ComputeOptions{MaxResults: &maxResults})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	minScore := 0.99
	rows, err = svc.ComputeMatches(context.Background(), "tenant-1", source.ID, ComputeOptions{MinMatchScore: &minScore})
	require.NoError(t, err)
	for _, row := range rows {
		assert.GreaterOrEqual(t, row.MatchScore, minScore)
	}
}

func TestService_MatchProfile(t *testing.T) {
	candidate := techCompany("tenant-1", "Globex Insights", "Software", 1e8, 500, "north america")
	store := &fakeCompanyStore{companies: []models.Company{candidate}}
	svc := NewService(store, newFakeMatchStore(), matching.NewEngine(newTestLogger()), nil, nil, matching.DefaultConfig(), newTestLogger())

	profile := models.BusinessProfile{
		CompanyName:            "Acme Analytics",
		IndustryClassification: "Software",
		RevenueInfo:            models.RevenueInfo{Amount: "$100M"},
		EmployeeCount:          500,
		GeographicMarkets:      []string{"North America"},
		KeyProductsServices:    []string{"enterprise analytics platform"},
	}

	found, err := svc.MatchProfile(context.Background(), "tenant-1", profile, ComputeOptions{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, candidate.ID.String(), found[0].CandidateID)
	assert.Equal(t, models.MatchTypeHorizontal, found[0].MatchType)
}

func TestService_DeleteAndListByType(t *testing.T) {
	source := techCompany("tenant-1", "Acme Analytics", "Software", 1e8, 500, "north america")
	similar := techCompany("tenant-1", "Globex Insights", "Software", 1.1e8, 550, "north america")

	companies := &fakeCompanyStore{companies: []models.Company{source, similar}}
	matchStore := newFakeMatchStore()
	svc := NewService(companies, matchStore, matching.NewEngine(newTestLogger()), nil, nil, matching.DefaultConfig(), newTestLogger())

	_, err := svc.ComputeMatches(context.Background(), "tenant-1", source.ID, ComputeOptions{})
	require.NoError(t, err)

	rows, err := svc.ListMatchesByType(context.Background(), "tenant-1", models.MatchTypeHorizontal, 10)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	require.NoError(t, svc.DeleteMatches(context.Background(), "tenant-1", source.ID))

	rows, err = svc.ListMatches(context.Background(), "tenant-1", source.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestService_FeatureImportance(t *testing.T) {
	sourceID := uuid.New()
	matchStore := newFakeMatchStore()
	svc := NewService(&fakeCompanyStore{}, matchStore, matching.NewEngine(newTestLogger()), nil, nil, matching.DefaultConfig(), newTestLogger())

	// fewer than two stored matches falls back to uniform importance
	importance, err := svc.FeatureImportance(context.Background(), "tenant-1", sourceID)
	require.NoError(t, err)
	for _, axis := range []string{"industry", "business", "geographic", "size", "strategic"} {
		assert.InDelta(t, 0.2, importance[axis], 1e-9)
	}
}
