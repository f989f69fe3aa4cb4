// Package matchmaker orchestrates match computation: it loads the candidate
// pool, runs the scoring engine, persists the results, and fans the outcome
// out to Kafka and the deal graph.
package matchmaker

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/features"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// AnalysisVersion tags stored matches with the scoring revision that
// produced them
const AnalysisVersion = "1.0"

// candidatePageSize is how many companies are loaded per page when
// building the candidate pool
const candidatePageSize = 500

// CompanyStore loads companies for the candidate pool
type CompanyStore interface {
	Get(ctx context.Context, tenantID string, id uuid.UUID) (*models.Company, error)
	List(ctx context.Context, tenantID string, dataSource models.DataSource, limit, offset int) ([]models.Company, error)
}

// MatchStore persists computed matches
type MatchStore interface {
	ReplaceForSource(ctx context.Context, tenantID string, sourceCompanyID uuid.UUID, matches []*models.Match) error
	ListBySource(ctx context.Context, tenantID string, sourceCompanyID uuid.UUID) ([]models.Match, error)
	ListByType(ctx context.Context, tenantID string, matchType models.MatchType, limit int) ([]models.Match, error)
	DeleteBySource(ctx context.Context, tenantID string, sourceCompanyID uuid.UUID) error
}

// EventEmitter publishes match computation outcomes
type EventEmitter interface {
	EmitMatchComputed(ctx context.Context, tenantID string, sourceCompanyID string, analysisVersion string, matches []models.Match) error
}

// GraphProjector mirrors computed matches into the deal graph
type GraphProjector interface {
	ProjectMatches(ctx context.Context, tenantID string, sourceCompanyID string, matches []models.Match) error
}

// Service runs match computations against the stored company universe
type Service struct {
	companies CompanyStore
	matches   MatchStore
	engine    *matching.Engine
	emitter   EventEmitter
	projector GraphProjector
	config    matching.Config
	logger    ectologger.Logger
}

// NewService creates a new matchmaker service. emitter and projector may be
// nil when Kafka or the graph database is disabled.
func NewService(companies CompanyStore, matches MatchStore, engine *matching.Engine, emitter EventEmitter, projector GraphProjector, cfg matching.Config, logger ectologger.Logger) *Service {
	if cfg.MaxResults <= 0 {
		cfg = matching.DefaultConfig()
	}

	return &Service{
		companies: companies,
		matches:   matches,
		engine:    engine,
		emitter:   emitter,
		projector: projector,
		config:    cfg,
		logger:    logger,
	}
}

// ComputeOptions overrides the engine configuration for one computation
type ComputeOptions struct {
	MinMatchScore *float64
	MaxResults    *int
}

// ComputeMatches scores a source company against every other company for
// the tenant, replaces its stored matches, and returns them best first.
func (s *Service) ComputeMatches(ctx context.Context, tenantID string, sourceCompanyID uuid.UUID, opts ComputeOptions) ([]models.Match, error) {
	ctx, span := tracing.StartSpan(ctx, "matchmaker.Service.ComputeMatches")
	defer span.End()

	start := time.Now()

	source, err := s.companies.Get(ctx, tenantID, sourceCompanyID)
	if err != nil {
		metrics.MatchComputationsTotal.WithLabelValues(tenantID, "error").Inc()
		return nil, err
	}

	candidates, err := s.candidatePool(ctx, tenantID, sourceCompanyID)
	if err != nil {
		metrics.MatchComputationsTotal.WithLabelValues(tenantID, "error").Inc()
		return nil, err
	}

	sourceProfile := matching.Profile{
		ID:       source.ID.String(),
		Features: features.FromCompany(*source),
	}

	found := s.engine.FindMatches(ctx, sourceProfile, candidates, s.configFor(opts))

	rows, err := s.storeMatches(ctx, tenantID, sourceCompanyID, found)
	if err != nil {
		metrics.MatchComputationsTotal.WithLabelValues(tenantID, "error").Inc()
		return nil, err
	}

	s.recordOutcome(ctx, tenantID, rows)
	metrics.MatchComputationsTotal.WithLabelValues(tenantID, "ok").Inc()
	metrics.MatchComputationDuration.WithLabelValues(tenantID).Observe(time.Since(start).Seconds())

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"source_company_id": sourceCompanyID,
		"candidate_count":   len(candidates),
		"match_count":       len(rows),
	}).Info("Computed matches")

	return rows, nil
}

// MatchProfile scores an extracted business profile against the tenant's
// company universe without persisting anything. Used for document previews
// before a company record exists.
func (s *Service) MatchProfile(ctx context.Context, tenantID string, profile models.BusinessProfile, opts ComputeOptions) ([]matching.Match, error) {
	ctx, span := tracing.StartSpan(ctx, "matchmaker.Service.MatchProfile")
	defer span.End()

	candidates, err := s.candidatePool(ctx, tenantID, uuid.Nil)
	if err != nil {
		return nil, err
	}

	sourceProfile := matching.Profile{Features: features.FromProfile(profile)}
	return s.engine.FindMatches(ctx, sourceProfile, candidates, s.configFor(opts)), nil
}

// FeatureImportance explains which similarity axes drove a source company's
// stored matches
func (s *Service) FeatureImportance(ctx context.Context, tenantID string, sourceCompanyID uuid.UUID) (map[string]float64, error) {
	ctx, span := tracing.StartSpan(ctx, "matchmaker.Service.FeatureImportance")
	defer span.End()

	stored, err := s.matches.ListBySource(ctx, tenantID, sourceCompanyID)
	if err != nil {
		return nil, err
	}

	found := make([]matching.Match, len(stored))
	for i, m := range stored {
		found[i] = matching.Match{
			CandidateID:       m.CandidateCompanyID.String(),
			MatchScore:        m.MatchScore,
			MatchType:         m.MatchType,
			SimilarityFactors: m.SimilarityFactors.Data,
		}
	}

	return s.engine.FeatureImportance(found), nil
}

// ListMatches returns the stored matches for a source company, best first
func (s *Service) ListMatches(ctx context.Context, tenantID string, sourceCompanyID uuid.UUID) ([]models.Match, error) {
	return s.matches.ListBySource(ctx, tenantID, sourceCompanyID)
}

// ListMatchesByType returns the tenant's stored matches of one match type,
// best first
func (s *Service) ListMatchesByType(ctx context.Context, tenantID string, matchType models.MatchType, limit int) ([]models.Match, error) {
	return s.matches.ListByType(ctx, tenantID, matchType, limit)
}

// DeleteMatches clears the stored matches for a source company without
// recomputing them
func (s *Service) DeleteMatches(ctx context.Context, tenantID string, sourceCompanyID uuid.UUID) error {
	return s.matches.DeleteBySource(ctx, tenantID, sourceCompanyID)
}

func (s *Service) configFor(opts ComputeOptions) matching.Config {
	cfg := s.config
	if opts.MinMatchScore != nil {
		cfg.MinMatchScore = *opts.MinMatchScore
	}
	if opts.MaxResults != nil && *opts.MaxResults > 0 {
		cfg.MaxResults = *opts.MaxResults
	}
	return cfg
}

// candidatePool loads every company for the tenant except the source,
// paging through the store
func (s *Service) candidatePool(ctx context.Context, tenantID string, sourceCompanyID uuid.UUID) ([]matching.Profile, error) {
	var pool []matching.Profile

	for offset := 0; ; offset += candidatePageSize {
		page, err := s.companies.List(ctx, tenantID, "", candidatePageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, company := range page {
			if company.ID == sourceCompanyID {
				continue
			}
			pool = append(pool, matching.Profile{
				ID:       company.ID.String(),
				Features: features.FromCompany(company),
			})
		}

		if len(page) < candidatePageSize {
			break
		}
	}

	return pool, nil
}

func (s *Service) storeMatches(ctx context.Context, tenantID string, sourceCompanyID uuid.UUID, found []matching.Match) ([]models.Match, error) {
	rows := make([]*models.Match, 0, len(found))
	for _, m := range found {
		candidateID, err := uuid.Parse(m.CandidateID)
		if err != nil {
			return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "invalid candidate company id %q", m.CandidateID)
		}

		rows = append(rows, &models.Match{
			TenantID:           tenantID,
			SourceCompanyID:    sourceCompanyID,
			CandidateCompanyID: candidateID,
			MatchScore:         m.MatchScore,
			MatchType:          m.MatchType,
			SimilarityFactors:  database.JSONB[models.SimilarityFactors]{Data: m.SimilarityFactors},
			AnalysisVersion:    AnalysisVersion,
		})
	}

	if err := s.matches.ReplaceForSource(ctx, tenantID, sourceCompanyID, rows); err != nil {
		return nil, err
	}

	stored := make([]models.Match, len(rows))
	for i, row := range rows {
		stored[i] = *row
	}
	return stored, nil
}

// recordOutcome updates metrics and fans the result out to Kafka and the
// graph. Fan-out failures are logged, not returned: the matches are already
// durable in Postgres.
func (s *Service) recordOutcome(ctx context.Context, tenantID string, rows []models.Match) {
	for _, row := range rows {
		metrics.MatchesFoundTotal.WithLabelValues(tenantID, string(row.MatchType)).Inc()
		metrics.MatchScores.Observe(row.MatchScore)
	}

	if len(rows) == 0 {
		return
	}

	sourceID := rows[0].SourceCompanyID.String()

	if s.emitter != nil {
		if err := s.emitter.EmitMatchComputed(ctx, tenantID, sourceID, AnalysisVersion, rows); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("Failed to publish match.computed event")
		}
	}

	if s.projector != nil {
		if err := s.projector.ProjectMatches(ctx, tenantID, sourceID, rows); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("Failed to project matches into graph")
		}
	}
}
