// Package company exposes the company CRUD API
package company

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	ctxmiddleware "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

var validate = validator.New()

// Store is the company persistence the handler needs
type Store interface {
	Create(ctx context.Context, company *models.Company) (*models.Company, error)
	Get(ctx context.Context, tenantID string, id uuid.UUID) (*models.Company, error)
	List(ctx context.Context, tenantID string, dataSource models.DataSource, limit, offset int) ([]models.Company, error)
	Update(ctx context.Context, company *models.Company) (*models.Company, error)
	Delete(ctx context.Context, tenantID string, id uuid.UUID) error
}

// Emitter publishes company lifecycle events. May be nil when Kafka is
// disabled.
type Emitter interface {
	EmitCompanyCreated(ctx context.Context, company *models.Company) error
	EmitCompanyUpdated(ctx context.Context, company *models.Company) error
	EmitCompanyDeleted(ctx context.Context, tenantID string, companyID string) error
}

// GraphWriter mirrors company records into the deal graph. May be nil when
// the graph database is disabled.
type GraphWriter interface {
	UpsertCompany(ctx context.Context, company *models.Company) error
	DeleteCompany(ctx context.Context, tenantID string, companyID string) error
}

// Handler serves the company routes
type Handler struct {
	store   Store
	emitter Emitter
	graph   GraphWriter
	logger  ectologger.Logger
}

// NewHandler creates a new company handler
func NewHandler(store Store, emitter Emitter, graph GraphWriter, logger ectologger.Logger) *Handler {
	return &Handler{
		store:   store,
		emitter: emitter,
		graph:   graph,
		logger:  logger,
	}
}

// Register registers company routes on the group
func (h *Handler) Register(g *echo.Group) {
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// CreateCompanyRequest is the request body for creating a company
type CreateCompanyRequest struct {
	Name                string `json:"company_name" validate:"required"`
	TickerSymbol        string `json:"ticker_symbol"`
	Industry            string `json:"industry_classification"`
	Revenue             float64 `json:"revenue" validate:"gte=0"`
	EmployeeCount       int    `json:"employee_count" validate:"gte=0"`
	GeographicMarkets   string `json:"geographic_markets"`
	Description         string `json:"business_description"`
	BusinessModel       string `json:"business_model"`
	FinancialMetrics    string `json:"financial_metrics"`
	StrategicObjectives string `json:"strategic_objectives"`
}

// Create creates a new company
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "company_handler.Create")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	var req CreateCompanyRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	company := &models.Company{
		TenantID:            tenantID,
		Name:                req.Name,
		TickerSymbol:        req.TickerSymbol,
		Industry:            req.Industry,
		Revenue:             req.Revenue,
		EmployeeCount:       req.EmployeeCount,
		GeographicMarkets:   req.GeographicMarkets,
		Description:         req.Description,
		BusinessModel:       req.BusinessModel,
		FinancialMetrics:    req.FinancialMetrics,
		StrategicObjectives: req.StrategicObjectives,
		DataSource:          models.DataSourceUserUpload,
	}

	result, err := h.store.Create(ctx, company)
	if err != nil {
		return err
	}

	metrics.CompaniesCreatedTotal.WithLabelValues(tenantID, string(result.DataSource)).Inc()
	h.fanOutUpsert(ctx, result, true)

	return c.JSON(http.StatusCreated, result)
}

// List returns the tenant's companies, optionally filtered by data source
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "company_handler.List")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if limit < 1 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	dataSource := models.DataSource(c.QueryParam("data_source"))
	switch dataSource {
	case "", models.DataSourceUserUpload, models.DataSourceMarketData:
	default:
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid data_source")
	}

	companies, err := h.store.List(ctx, tenantID, dataSource, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"items":  companies,
		"limit":  limit,
		"offset": offset,
	})
}

// Get returns a single company by ID
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "company_handler.Get")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	company, err := h.store.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, company)
}

// UpdateCompanyRequest is the request body for updating a company. Empty
// fields are written through; this is a full replace, not a patch.
type UpdateCompanyRequest struct {
	Name                string `json:"company_name" validate:"required"`
	TickerSymbol        string `json:"ticker_symbol"`
	Industry            string `json:"industry_classification"`
	Revenue             float64 `json:"revenue" validate:"gte=0"`
	EmployeeCount       int    `json:"employee_count" validate:"gte=0"`
	GeographicMarkets   string `json:"geographic_markets"`
	Description         string `json:"business_description"`
	BusinessModel       string `json:"business_model"`
	FinancialMetrics    string `json:"financial_metrics"`
	StrategicObjectives string `json:"strategic_objectives"`
}

// Update replaces a company's attributes
func (h *Handler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "company_handler.Update")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	var req UpdateCompanyRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	existing, err := h.store.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	existing.Name = req.Name
	existing.TickerSymbol = req.TickerSymbol
	existing.Industry = req.Industry
	existing.Revenue = req.Revenue
	existing.EmployeeCount = req.EmployeeCount
	existing.GeographicMarkets = req.GeographicMarkets
	existing.Description = req.Description
	existing.BusinessModel = req.BusinessModel
	existing.FinancialMetrics = req.FinancialMetrics
	existing.StrategicObjectives = req.StrategicObjectives

	result, err := h.store.Update(ctx, existing)
	if err != nil {
		return err
	}

	h.fanOutUpsert(ctx, result, false)

	return c.JSON(http.StatusOK, result)
}

// Delete removes a company
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "company_handler.Delete")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	if err := h.store.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	if h.emitter != nil {
		if err := h.emitter.EmitCompanyDeleted(ctx, tenantID, id.String()); err != nil {
			h.logger.WithContext(ctx).WithError(err).Warn("Failed to emit company.deleted event")
		}
	}
	if h.graph != nil {
		if err := h.graph.DeleteCompany(ctx, tenantID, id.String()); err != nil {
			h.logger.WithContext(ctx).WithError(err).Warn("Failed to delete company from graph")
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// fanOutUpsert publishes the company to Kafka and the graph. Failures are
// logged, not returned: the row is already durable in Postgres.
func (h *Handler) fanOutUpsert(ctx context.Context, company *models.Company, created bool) {
	if h.emitter != nil {
		var err error
		if created {
			err = h.emitter.EmitCompanyCreated(ctx, company)
		} else {
			err = h.emitter.EmitCompanyUpdated(ctx, company)
		}
		if err != nil {
			h.logger.WithContext(ctx).WithError(err).Warn("Failed to emit company event")
		}
	}

	if h.graph != nil {
		if err := h.graph.UpsertCompany(ctx, company); err != nil {
			h.logger.WithContext(ctx).WithError(err).Warn("Failed to upsert company in graph")
		}
	}
}
