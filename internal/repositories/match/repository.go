package match

import (
	"context"
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

const table = "matches"

var columns = []string{"id", "tenant_id", "source_company_id", "candidate_company_id", "match_score", "match_type", "similarity_factors", "analysis_version", "created_at"}

// Repository handles stored match persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new match repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ReplaceForSource replaces all stored matches for a source company with a
// freshly computed batch, in one transaction so readers never see a
// partial result set
func (r *Repository) ReplaceForSource(ctx context.Context, tenantID string, sourceCompanyID uuid.UUID, matches []*models.Match) error {
	ctx, span := tracing.StartSpan(ctx, "match.Repository.ReplaceForSource")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom(table)
	db.Where(db.Equal("tenant_id", tenantID), db.Equal("source_company_id", sourceCompanyID))

	query, args := db.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"source_company_id": sourceCompanyID}).Error("Failed to clear stored matches")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to store matches")
	}

	if len(matches) > 0 {
		now := time.Now().UTC()
		sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
		sb.InsertInto(table)
		sb.Cols(columns...)
		for _, m := range matches {
			if m.ID == uuid.Nil {
				m.ID = uuid.New()
			}
			m.CreatedAt = now
			sb.Values(m.ID, m.TenantID, m.SourceCompanyID, m.CandidateCompanyID, m.MatchScore, m.MatchType, m.SimilarityFactors, m.AnalysisVersion, m.CreatedAt)
		}

		query, args = sb.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"source_company_id": sourceCompanyID, "count": len(matches)}).Error("Failed to insert matches")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to store matches")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to store matches")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"source_company_id": sourceCompanyID,
		"count":             len(matches),
	}).Debug("Replaced stored matches")

	return nil
}

// ListBySource retrieves stored matches for a source company, best first
func (r *Repository) ListBySource(ctx context.Context, tenantID string, sourceCompanyID uuid.UUID) ([]models.Match, error) {
	ctx, span := tracing.StartSpan(ctx, "match.Repository.ListBySource")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(sb.Equal("tenant_id", tenantID), sb.Equal("source_company_id", sourceCompanyID))
	sb.OrderBy("match_score").Desc()

	query, args := sb.Build()

	matches := []models.Match{}
	if err := r.db.SelectContext(ctx, &matches, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"source_company_id": sourceCompanyID}).Error("Failed to list matches")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list matches")
	}

	return matches, nil
}

// ListByType retrieves stored matches of one match type for a tenant
func (r *Repository) ListByType(ctx context.Context, tenantID string, matchType models.MatchType, limit int) ([]models.Match, error) {
	ctx, span := tracing.StartSpan(ctx, "match.Repository.ListByType")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(sb.Equal("tenant_id", tenantID), sb.Equal("match_type", matchType))
	sb.OrderBy("match_score").Desc()
	if limit > 0 {
		sb.Limit(limit)
	}

	query, args := sb.Build()

	matches := []models.Match{}
	if err := r.db.SelectContext(ctx, &matches, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"match_type": matchType}).Error("Failed to list matches by type")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list matches")
	}

	return matches, nil
}

// DeleteBySource clears stored matches for a source company
func (r *Repository) DeleteBySource(ctx context.Context, tenantID string, sourceCompanyID uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "match.Repository.DeleteBySource")
	defer span.End()

	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom(table)
	db.Where(db.Equal("tenant_id", tenantID), db.Equal("source_company_id", sourceCompanyID))

	query, args := db.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"source_company_id": sourceCompanyID}).Error("Failed to delete matches")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete matches")
	}

	return nil
}
