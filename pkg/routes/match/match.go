// Package match exposes match computation and retrieval routes
package match

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	ctxmiddleware "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/graph"
	"github.com/Ramsey-B/clover/pkg/matchmaker"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Matchmaker runs and retrieves match computations
type Matchmaker interface {
	ComputeMatches(ctx context.Context, tenantID string, sourceCompanyID uuid.UUID, opts matchmaker.ComputeOptions) ([]models.Match, error)
	ListMatches(ctx context.Context, tenantID string, sourceCompanyID uuid.UUID) ([]models.Match, error)
	ListMatchesByType(ctx context.Context, tenantID string, matchType models.MatchType, limit int) ([]models.Match, error)
	DeleteMatches(ctx context.Context, tenantID string, sourceCompanyID uuid.UUID) error
	FeatureImportance(ctx context.Context, tenantID string, sourceCompanyID uuid.UUID) (map[string]float64, error)
}

// NeighborReader reads projected match edges from the deal graph. May be
// nil when the graph database is disabled.
type NeighborReader interface {
	MatchNeighbors(ctx context.Context, tenantID string, companyID string, limit int) ([]graph.MatchNeighbor, error)
}

// Handler serves match routes under the companies group
type Handler struct {
	matchmaker Matchmaker
	neighbors  NeighborReader
}

// NewHandler creates a new match handler
func NewHandler(m Matchmaker, neighbors NeighborReader) *Handler {
	return &Handler{
		matchmaker: m,
		neighbors:  neighbors,
	}
}

// Register registers match routes on the companies group
func (h *Handler) Register(g *echo.Group) {
	g.POST("/:id/matches", h.Compute)
	g.GET("/:id/matches", h.List)
	g.DELETE("/:id/matches", h.Delete)
	g.GET("/:id/matches/importance", h.Importance)
	g.GET("/:id/matches/graph", h.GraphNeighbors)
}

// RegisterMatches registers tenant-level match routes on the matches group
func (h *Handler) RegisterMatches(g *echo.Group) {
	g.GET("", h.ListByType)
}

// ComputeRequest optionally overrides match filtering for one run
type ComputeRequest struct {
	MinMatchScore *float64 `json:"min_match_score,omitempty"`
	MaxResults    *int     `json:"max_results,omitempty"`
}

// Compute recomputes and stores matches for a source company
func (h *Handler) Compute(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "match_handler.Compute")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	var req ComputeRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.MinMatchScore != nil && (*req.MinMatchScore < 0 || *req.MinMatchScore > 1) {
		return httperror.NewHTTPError(http.StatusBadRequest, "min_match_score must be between 0 and 1")
	}

	matches, err := h.matchmaker.ComputeMatches(ctx, tenantID, id, matchmaker.ComputeOptions{
		MinMatchScore: req.MinMatchScore,
		MaxResults:    req.MaxResults,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"matches":          matches,
		"total_matches":    len(matches),
		"analysis_version": matchmaker.AnalysisVersion,
	})
}

// List returns the stored matches for a source company, best first
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "match_handler.List")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	matches, err := h.matchmaker.ListMatches(ctx, tenantID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"matches":       matches,
		"total_matches": len(matches),
	})
}

// ListByType returns the tenant's stored matches of one match type, best first
func (h *Handler) ListByType(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "match_handler.ListByType")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	matchType := models.MatchType(c.QueryParam("type"))
	switch matchType {
	case models.MatchTypeHorizontal, models.MatchTypeVertical:
	default:
		return httperror.NewHTTPError(http.StatusBadRequest, "type must be horizontal or vertical")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 500 {
		limit = 100
	}

	matches, err := h.matchmaker.ListMatchesByType(ctx, tenantID, matchType, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"matches":       matches,
		"total_matches": len(matches),
	})
}

// Delete clears the stored matches for a source company
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "match_handler.Delete")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	if err := h.matchmaker.DeleteMatches(ctx, tenantID, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Importance explains which similarity axes drove a company's stored matches
func (h *Handler) Importance(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "match_handler.Importance")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	importance, err := h.matchmaker.FeatureImportance(ctx, tenantID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"feature_importance": importance,
	})
}

// GraphNeighbors returns the match candidates projected into the deal graph
func (h *Handler) GraphNeighbors(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "match_handler.GraphNeighbors")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	if h.neighbors == nil {
		return httperror.NewHTTPError(http.StatusNotImplemented, "graph database is disabled")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	neighbors, err := h.neighbors.MatchNeighbors(ctx, tenantID, id.String(), limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"neighbors": neighbors,
	})
}
