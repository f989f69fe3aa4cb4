package document

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

const table = "documents"

var columns = []string{"id", "tenant_id", "filename", "file_type", "file_size", "status", "business_profile", "error_message", "created_at", "updated_at"}

// Repository handles document metadata persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new document repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new document record
func (r *Repository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	ctx, span := tracing.StartSpan(ctx, "document.Repository.Create")
	defer span.End()

	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.CreatedAt = time.Now().UTC()
	doc.UpdatedAt = doc.CreatedAt
	if doc.Status == "" {
		doc.Status = models.DocumentStatusUploaded
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(table)
	sb.Cols(columns...)
	sb.Values(doc.ID, doc.TenantID, doc.Filename, doc.FileType, doc.FileSize, doc.Status, doc.BusinessProfile, doc.ErrorMessage, doc.CreatedAt, doc.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"filename": doc.Filename}).Error("Failed to create document")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create document")
	}

	return doc, nil
}

// Get retrieves a document by ID
func (r *Repository) Get(ctx context.Context, tenantID string, id uuid.UUID) (*models.Document, error) {
	ctx, span := tracing.StartSpan(ctx, "document.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(sb.Equal("tenant_id", tenantID), sb.Equal("id", id))

	query, args := sb.Build()

	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, "document not found")
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"document_id": id}).Error("Failed to get document")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get document")
	}

	return &doc, nil
}

// List retrieves documents for a tenant
func (r *Repository) List(ctx context.Context, tenantID string, status models.DocumentStatus, limit, offset int) ([]models.Document, error) {
	ctx, span := tracing.StartSpan(ctx, "document.Repository.List")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(sb.Equal("tenant_id", tenantID))
	if status != "" {
		sb.Where(sb.Equal("status", status))
	}
	sb.OrderBy("created_at").Desc()
	if limit > 0 {
		sb.Limit(limit)
	}
	if offset > 0 {
		sb.Offset(offset)
	}

	query, args := sb.Build()

	docs := []models.Document{}
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list documents")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list documents")
	}

	return docs, nil
}

// AttachProfile stores the extracted business profile and marks the
// document completed
func (r *Repository) AttachProfile(ctx context.Context, tenantID string, id uuid.UUID, profile models.BusinessProfile) error {
	ctx, span := tracing.StartSpan(ctx, "document.Repository.AttachProfile")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(table)
	ub.Set(
		ub.Assign("business_profile", database.JSONB[models.BusinessProfile]{Data: profile}),
		ub.Assign("status", models.DocumentStatusCompleted),
		ub.Assign("error_message", ""),
		ub.Assign("updated_at", time.Now().UTC()),
	)
	ub.Where(ub.Equal("tenant_id", tenantID), ub.Equal("id", id))

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"document_id": id}).Error("Failed to attach business profile")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to attach business profile")
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "document not found")
	}

	return nil
}

// UpdateStatus transitions a document's processing status
func (r *Repository) UpdateStatus(ctx context.Context, tenantID string, id uuid.UUID, status models.DocumentStatus, errorMessage string) error {
	ctx, span := tracing.StartSpan(ctx, "document.Repository.UpdateStatus")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(table)
	ub.Set(
		ub.Assign("status", status),
		ub.Assign("error_message", errorMessage),
		ub.Assign("updated_at", time.Now().UTC()),
	)
	ub.Where(ub.Equal("tenant_id", tenantID), ub.Equal("id", id))

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"document_id": id, "status": status}).Error("Failed to update document status")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update document status")
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "document not found")
	}

	return nil
}

// Delete removes a document record
func (r *Repository) Delete(ctx context.Context, tenantID string, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "document.Repository.Delete")
	defer span.End()

	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom(table)
	db.Where(db.Equal("tenant_id", tenantID), db.Equal("id", id))

	query, args := db.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"document_id": id}).Error("Failed to delete document")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete document")
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "document not found")
	}

	return nil
}
