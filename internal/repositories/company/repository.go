package company

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/models"
)

const table = "companies"

var columns = []string{"id", "tenant_id", "name", "ticker_symbol", "industry", "revenue", "employee_count", "geographic_markets", "description", "business_model", "financial_metrics", "strategic_objectives", "data_source", "created_at", "updated_at"}

// Repository handles company persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new company repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new company
func (r *Repository) Create(ctx context.Context, company *models.Company) (*models.Company, error) {
	ctx, span := tracing.StartSpan(ctx, "company.Repository.Create")
	defer span.End()

	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	company.CreatedAt = time.Now().UTC()
	company.UpdatedAt = company.CreatedAt
	if company.DataSource == "" {
		company.DataSource = models.DataSourceUserUpload
	}
	if company.FinancialMetrics == "" {
		company.FinancialMetrics = "{}"
	}
	if company.StrategicObjectives == "" {
		company.StrategicObjectives = "[]"
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(table)
	sb.Cols(columns...)
	sb.Values(company.ID, company.TenantID, company.Name, company.TickerSymbol, company.Industry, company.Revenue, company.EmployeeCount, company.GeographicMarkets, company.Description, company.BusinessModel, company.FinancialMetrics, company.StrategicObjectives, company.DataSource, company.CreatedAt, company.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"company_name": company.Name}).Error("Failed to create company")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create company")
	}

	return company, nil
}

// Get retrieves a company by ID
func (r *Repository) Get(ctx context.Context, tenantID string, id uuid.UUID) (*models.Company, error) {
	ctx, span := tracing.StartSpan(ctx, "company.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(sb.Equal("tenant_id", tenantID), sb.Equal("id", id))

	query, args := sb.Build()

	var company models.Company
	if err := r.db.GetContext(ctx, &company, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, "company not found")
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"company_id": id}).Error("Failed to get company")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get company")
	}

	return &company, nil
}

// GetByTicker retrieves a company by ticker symbol
func (r *Repository) GetByTicker(ctx context.Context, tenantID string, ticker string) (*models.Company, error) {
	ctx, span := tracing.StartSpan(ctx, "company.Repository.GetByTicker")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(sb.Equal("tenant_id", tenantID), sb.Equal("ticker_symbol", ticker))

	query, args := sb.Build()

	var company models.Company
	if err := r.db.GetContext(ctx, &company, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"ticker": ticker}).Error("Failed to get company by ticker")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get company")
	}

	return &company, nil
}

// List retrieves companies for a tenant, optionally filtered by data source
func (r *Repository) List(ctx context.Context, tenantID string, dataSource models.DataSource, limit, offset int) ([]models.Company, error) {
	ctx, span := tracing.StartSpan(ctx, "company.Repository.List")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(sb.Equal("tenant_id", tenantID))
	if dataSource != "" {
		sb.Where(sb.Equal("data_source", dataSource))
	}
	sb.OrderBy("created_at").Desc()
	if limit > 0 {
		sb.Limit(limit)
	}
	if offset > 0 {
		sb.Offset(offset)
	}

	query, args := sb.Build()

	companies := []models.Company{}
	if err := r.db.SelectContext(ctx, &companies, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list companies")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list companies")
	}

	return companies, nil
}

// Update updates an existing company
func (r *Repository) Update(ctx context.Context, company *models.Company) (*models.Company, error) {
	ctx, span := tracing.StartSpan(ctx, "company.Repository.Update")
	defer span.End()

	company.UpdatedAt = time.Now().UTC()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(table)
	ub.Set(
		ub.Assign("name", company.Name),
		ub.Assign("ticker_symbol", company.TickerSymbol),
		ub.Assign("industry", company.Industry),
		ub.Assign("revenue", company.Revenue),
		ub.Assign("employee_count", company.EmployeeCount),
		ub.Assign("geographic_markets", company.GeographicMarkets),
		ub.Assign("description", company.Description),
		ub.Assign("business_model", company.BusinessModel),
		ub.Assign("financial_metrics", company.FinancialMetrics),
		ub.Assign("strategic_objectives", company.StrategicObjectives),
		ub.Assign("updated_at", company.UpdatedAt),
	)
	ub.Where(ub.Equal("tenant_id", company.TenantID), ub.Equal("id", company.ID))

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"company_id": company.ID}).Error("Failed to update company")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update company")
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "company not found")
	}

	return company, nil
}

// UpsertByTicker inserts or refreshes a market-data company keyed by ticker
func (r *Repository) UpsertByTicker(ctx context.Context, company *models.Company) error {
	ctx, span := tracing.StartSpan(ctx, "company.Repository.UpsertByTicker")
	defer span.End()

	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	now := time.Now().UTC()
	company.CreatedAt = now
	company.UpdatedAt = now
	company.DataSource = models.DataSourceMarketData
	if company.FinancialMetrics == "" {
		company.FinancialMetrics = "{}"
	}
	if company.StrategicObjectives == "" {
		company.StrategicObjectives = "[]"
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(table)
	sb.Cols(columns...)
	sb.Values(company.ID, company.TenantID, company.Name, company.TickerSymbol, company.Industry, company.Revenue, company.EmployeeCount, company.GeographicMarkets, company.Description, company.BusinessModel, company.FinancialMetrics, company.StrategicObjectives, company.DataSource, company.CreatedAt, company.UpdatedAt)

	query, args := sb.Build()
	query += " ON CONFLICT (tenant_id, ticker_symbol) WHERE ticker_symbol <> '' DO UPDATE SET name = EXCLUDED.name, industry = EXCLUDED.industry, revenue = EXCLUDED.revenue, employee_count = EXCLUDED.employee_count, geographic_markets = EXCLUDED.geographic_markets, description = EXCLUDED.description, financial_metrics = EXCLUDED.financial_metrics, updated_at = EXCLUDED.updated_at"

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"ticker": company.TickerSymbol}).Error("Failed to upsert market-data company")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert company")
	}

	return nil
}

// Delete removes a company
func (r *Repository) Delete(ctx context.Context, tenantID string, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "company.Repository.Delete")
	defer span.End()

	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom(table)
	db.Where(db.Equal("tenant_id", tenantID), db.Equal("id", id))

	query, args := db.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"company_id": id}).Error("Failed to delete company")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete company")
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "company not found")
	}

	return nil
}
