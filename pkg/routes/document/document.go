// Package document exposes the uploaded-document API
package document

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	ctxmiddleware "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/matchmaker"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

var validate = validator.New()

// Store is the document persistence the handler needs
type Store interface {
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	Get(ctx context.Context, tenantID string, id uuid.UUID) (*models.Document, error)
	List(ctx context.Context, tenantID string, status models.DocumentStatus, limit, offset int) ([]models.Document, error)
	AttachProfile(ctx context.Context, tenantID string, id uuid.UUID, profile models.BusinessProfile) error
	UpdateStatus(ctx context.Context, tenantID string, id uuid.UUID, status models.DocumentStatus, errorMessage string) error
	Delete(ctx context.Context, tenantID string, id uuid.UUID) error
}

// ProfileMatcher previews matches for an extracted profile without
// persisting them
type ProfileMatcher interface {
	MatchProfile(ctx context.Context, tenantID string, profile models.BusinessProfile, opts matchmaker.ComputeOptions) ([]matching.Match, error)
}

// Handler serves the document routes
type Handler struct {
	store   Store
	matcher ProfileMatcher
}

// NewHandler creates a new document handler
func NewHandler(store Store, matcher ProfileMatcher) *Handler {
	return &Handler{
		store:   store,
		matcher: matcher,
	}
}

// Register registers document routes on the group
func (h *Handler) Register(g *echo.Group) {
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id/profile", h.AttachProfile)
	g.PUT("/:id/status", h.UpdateStatus)
	g.POST("/:id/matches", h.PreviewMatches)
	g.DELETE("/:id", h.Delete)
}

// CreateDocumentRequest is the request body for registering an uploaded
// document
type CreateDocumentRequest struct {
	Filename string `json:"filename" validate:"required"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size" validate:"gte=0"`
}

// Create registers an uploaded document in status "uploaded"
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "document_handler.Create")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	var req CreateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	doc := &models.Document{
		TenantID: tenantID,
		Filename: req.Filename,
		FileType: req.FileType,
		FileSize: req.FileSize,
		Status:   models.DocumentStatusUploaded,
	}

	result, err := h.store.Create(ctx, doc)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, result)
}

// List returns the tenant's documents, optionally filtered by status
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "document_handler.List")
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

	status := models.DocumentStatus(c.QueryParam("status"))
	switch status {
	case "", models.DocumentStatusUploaded, models.DocumentStatusProcessing, models.DocumentStatusCompleted, models.DocumentStatusError:
	default:
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	docs, err := h.store.List(ctx, tenantID, status, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"items":  docs,
		"limit":  limit,
		"offset": offset,
	})
}

// Get returns a single document by ID
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "document_handler.Get")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}

	doc, err := h.store.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, doc)
}

// AttachProfile stores the extracted business profile and marks the
// document completed
func (h *Handler) AttachProfile(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "document_handler.AttachProfile")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}

	var profile models.BusinessProfile
	if err := c.Bind(&profile); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if profile.CompanyName == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "company_name is required")
	}

	if err := h.store.AttachProfile(ctx, tenantID, id, profile); err != nil {
		return err
	}

	doc, err := h.store.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, doc)
}

// UpdateStatusRequest is the request body for moving a document through the
// pipeline
type UpdateStatusRequest struct {
	Status       models.DocumentStatus `json:"status" validate:"required,oneof=uploaded processing completed error"`
	ErrorMessage string                `json:"error_message"`
}

// UpdateStatus sets a document's processing status
func (h *Handler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "document_handler.UpdateStatus")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}

	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.store.UpdateStatus(ctx, tenantID, id, req.Status, req.ErrorMessage); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// PreviewMatches scores the document's extracted profile against the
// company universe without persisting anything
func (h *Handler) PreviewMatches(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "document_handler.PreviewMatches")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}

	doc, err := h.store.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if doc.Status != models.DocumentStatusCompleted {
		return httperror.NewHTTPError(http.StatusConflict, "document has no extracted profile yet")
	}

	matches, err := h.matcher.MatchProfile(ctx, tenantID, doc.BusinessProfile.Data, matchmaker.ComputeOptions{})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"matches":       matches,
		"total_matches": len(matches),
	})
}

// Delete removes a document record
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "document_handler.Delete")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}

	if err := h.store.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
