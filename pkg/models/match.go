package models

import (
	"time"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/google/uuid"
)

// MatchType classifies a merger candidate pairing
type MatchType string

const (
	// MatchTypeHorizontal marks same-industry pairings
	MatchTypeHorizontal MatchType = "horizontal"
	// MatchTypeVertical marks cross-industry pairings
	MatchTypeVertical MatchType = "vertical"
)

// SimilarityFactors is the per-axis similarity breakdown retained with
// every match for explainability.
type SimilarityFactors struct {
	Industry   float64 `json:"industry_similarity"`
	Business   float64 `json:"business_similarity"`
	Geographic float64 `json:"geographic_similarity"`
	Size       float64 `json:"size_similarity"`
	Strategic  float64 `json:"strategic_similarity"`
}

// Match is a stored merger-candidate pairing between two companies
type Match struct {
	ID                 uuid.UUID                         `db:"id" json:"id"`
	TenantID           string                            `db:"tenant_id" json:"tenant_id"`
	SourceCompanyID    uuid.UUID                         `db:"source_company_id" json:"source_company_id"`
	CandidateCompanyID uuid.UUID                         `db:"candidate_company_id" json:"candidate_company_id"`
	MatchScore         float64                           `db:"match_score" json:"match_score"`
	MatchType          MatchType                         `db:"match_type" json:"match_type"`
	SimilarityFactors  database.JSONB[SimilarityFactors] `db:"similarity_factors" json:"similarity_factors"`
	AnalysisVersion    string                            `db:"analysis_version" json:"analysis_version"`
	CreatedAt          time.Time                         `db:"created_at" json:"created_at"`
}
