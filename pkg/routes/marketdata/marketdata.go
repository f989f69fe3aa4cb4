// Package marketdata exposes the market data import API
package marketdata

import (
	"context"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	ctxmiddleware "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/marketdata"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

var validate = validator.New()

// Importer runs market data import runs
type Importer interface {
	ImportSymbols(ctx context.Context, tenantID string, symbols []string) marketdata.ImportResult
}

// FundamentalsSource fetches raw fundamentals for a symbol
type FundamentalsSource interface {
	GetFundamentals(ctx context.Context, symbol string) (*marketdata.Fundamentals, error)
}

// Emitter publishes import summaries. May be nil when Kafka is disabled.
type Emitter interface {
	EmitMarketDataImported(ctx context.Context, tenantID string, imported int, failed []string) error
}

// Handler serves market data routes
type Handler struct {
	importer Importer
	source   FundamentalsSource
	emitter  Emitter
	logger   ectologger.Logger
}

// NewHandler creates a new market data handler
func NewHandler(importer Importer, source FundamentalsSource, emitter Emitter, logger ectologger.Logger) *Handler {
	return &Handler{
		importer: importer,
		source:   source,
		emitter:  emitter,
		logger:   logger,
	}
}

// Register registers market data routes on the group
func (h *Handler) Register(g *echo.Group) {
	g.POST("/import", h.Import)
	g.GET("/fundamentals/:symbol", h.Fundamentals)
}

// ImportRequest is the request body for a market data import run
type ImportRequest struct {
	Symbols []string `json:"symbols" validate:"required,min=1,max=100"`
}

// Import fetches fundamentals for the given symbols and upserts them as
// market_data companies
func (h *Handler) Import(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "marketdata_handler.Import")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	var req ImportRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result := h.importer.ImportSymbols(ctx, tenantID, req.Symbols)

	if h.emitter != nil {
		if err := h.emitter.EmitMarketDataImported(ctx, tenantID, result.Imported, result.Failed); err != nil {
			h.logger.WithContext(ctx).WithError(err).Warn("Failed to emit market_data.imported event")
		}
	}

	return c.JSON(http.StatusOK, result)
}

// Fundamentals returns the provider's fundamentals for one symbol
func (h *Handler) Fundamentals(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "marketdata_handler.Fundamentals")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	symbol := strings.TrimSpace(c.Param("symbol"))
	if symbol == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "symbol is required")
	}

	fundamentals, err := h.source.GetFundamentals(ctx, symbol)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fundamentals)
}
