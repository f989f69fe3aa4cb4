package graph

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/clover/pkg/models"
)

// DealService projects companies and their match candidates into the graph
// database for relationship exploration
type DealService struct {
	client *Client
	logger ectologger.Logger
}

// NewDealService creates a new deal graph service
func NewDealService(client *Client, logger ectologger.Logger) *DealService {
	return &DealService{
		client: client,
		logger: logger,
	}
}

// UpsertCompany creates or updates a company node in the graph
func (s *DealService) UpsertCompany(ctx context.Context, company *models.Company) error {
	ctx, span := tracing.StartSpan(ctx, "graph.DealService.UpsertCompany")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"company_id": company.ID,
		"tenant_id":  company.TenantID,
	})

	props := map[string]any{
		"id":                      company.ID.String(),
		"tenant_id":               company.TenantID,
		"company_name":            company.Name,
		"ticker_symbol":           company.TickerSymbol,
		"industry_classification": company.Industry,
		"revenue":                 company.Revenue,
		"employee_count":          company.EmployeeCount,
		"geographic_markets":      company.GeographicMarkets,
		"data_source":             string(company.DataSource),
		"updated_at":              company.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}

	cypher := `
		MERGE (c:Company {id: $id, tenant_id: $tenant_id})
		SET c = $props
		RETURN c
	`

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"id":        company.ID.String(),
			"tenant_id": company.TenantID,
			"props":     props,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		log.WithError(err).Error("Failed to upsert company in graph")
		return fmt.Errorf("failed to upsert company in graph: %w", err)
	}

	log.Debug("Upserted company in graph")
	return nil
}

// DeleteCompany soft-deletes a company node by adding a deleted_at property
func (s *DealService) DeleteCompany(ctx context.Context, tenantID string, companyID string) error {
	ctx, span := tracing.StartSpan(ctx, "graph.DealService.DeleteCompany")
	defer span.End()

	cypher := `
		MATCH (c:Company {id: $id, tenant_id: $tenant_id})
		SET c.deleted_at = datetime()
		RETURN c
	`

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"id":        companyID,
			"tenant_id": tenantID,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to delete company in graph")
		return fmt.Errorf("failed to delete company in graph: %w", err)
	}

	return nil
}

// ProjectMatches replaces the MATCH_CANDIDATE edges from a source company
// with the given matches. Runs in a single write transaction so readers
// never see a partially replaced edge set.
func (s *DealService) ProjectMatches(ctx context.Context, tenantID string, sourceCompanyID string, matches []models.Match) error {
	ctx, span := tracing.StartSpan(ctx, "graph.DealService.ProjectMatches")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"source_company_id": sourceCompanyID,
		"tenant_id":         tenantID,
		"match_count":       len(matches),
	})

	batch := make([]map[string]any, len(matches))
	for i, m := range matches {
		batch[i] = map[string]any{
			"candidate_id":     m.CandidateCompanyID.String(),
			"match_score":      m.MatchScore,
			"match_type":       string(m.MatchType),
			"analysis_version": m.AnalysisVersion,
		}
	}

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		deleteCypher := `
			MATCH (from:Company {id: $source_id, tenant_id: $tenant_id})-[r:MATCH_CANDIDATE]->()
			DELETE r
		`
		if _, err := tx.Run(ctx, deleteCypher, map[string]any{
			"source_id": sourceCompanyID,
			"tenant_id": tenantID,
		}); err != nil {
			return nil, err
		}

		if len(batch) == 0 {
			return nil, nil
		}

		createCypher := `
			MATCH (from:Company {id: $source_id, tenant_id: $tenant_id})
			UNWIND $batch AS row
			MATCH (to:Company {id: row.candidate_id, tenant_id: $tenant_id})
			MERGE (from)-[r:MATCH_CANDIDATE]->(to)
			SET r.match_score = row.match_score,
				r.match_type = row.match_type,
				r.analysis_version = row.analysis_version,
				r.tenant_id = $tenant_id
		`
		_, err := tx.Run(ctx, createCypher, map[string]any{
			"source_id": sourceCompanyID,
			"tenant_id": tenantID,
			"batch":     batch,
		})
		return nil, err
	})

	if err != nil {
		log.WithError(err).Error("Failed to project matches into graph")
		return fmt.Errorf("failed to project matches into graph: %w", err)
	}

	log.Debug("Projected matches into graph")
	return nil
}

// MatchNeighbor is a candidate reachable from a company through a
// MATCH_CANDIDATE edge
type MatchNeighbor struct {
	CompanyID   string  `json:"company_id"`
	CompanyName string  `json:"company_name"`
	MatchScore  float64 `json:"match_score"`
	MatchType   string  `json:"match_type"`
}

// MatchNeighbors returns the match candidates projected for a company,
// highest score first
func (s *DealService) MatchNeighbors(ctx context.Context, tenantID string, companyID string, limit int) ([]MatchNeighbor, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.DealService.MatchNeighbors")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}

	cypher := `
		MATCH (from:Company {id: $id, tenant_id: $tenant_id})-[r:MATCH_CANDIDATE]->(to:Company)
		WHERE to.deleted_at IS NULL
		RETURN to.id AS company_id, to.company_name AS company_name, r.match_score AS match_score, r.match_type AS match_type
		ORDER BY r.match_score DESC
		LIMIT $limit
	`

	result, err := s.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"id":        companyID,
			"tenant_id": tenantID,
			"limit":     limit,
		})
		if err != nil {
			return nil, err
		}

		neighbors := []MatchNeighbor{}
		for result.Next(ctx) {
			record := result.Record()
			neighbor := MatchNeighbor{}
			if v, ok := record.Get("company_id"); ok && v != nil {
				neighbor.CompanyID = v.(string)
			}
			if v, ok := record.Get("company_name"); ok && v != nil {
				neighbor.CompanyName = v.(string)
			}
			if v, ok := record.Get("match_score"); ok && v != nil {
				neighbor.MatchScore = v.(float64)
			}
			if v, ok := record.Get("match_type"); ok && v != nil {
				neighbor.MatchType = v.(string)
			}
			neighbors = append(neighbors, neighbor)
		}
		return neighbors, result.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("failed to query match neighbors: %w", err)
	}

	return result.([]MatchNeighbor), nil
}
