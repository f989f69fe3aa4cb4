// Package events handles event emission for company and match lifecycle changes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/clover/pkg/tracing"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Emitter publishes deal pipeline events
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitCompanyCreated emits a company created event
func (e *Emitter) EmitCompanyCreated(ctx context.Context, company *models.Company) error {
	return e.emitCompanyEvent(ctx, EventTypeCompanyCreated, company)
}

// EmitCompanyUpdated emits a company updated event
func (e *Emitter) EmitCompanyUpdated(ctx context.Context, company *models.Company) error {
	return e.emitCompanyEvent(ctx, EventTypeCompanyUpdated, company)
}

func (e *Emitter) emitCompanyEvent(ctx context.Context, eventType EventType, company *models.Company) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.emitCompanyEvent")
	defer span.End()

	data, _ := json.Marshal(map[string]any{
		"schema_version":     SchemaVersion,
		"revenue":            company.Revenue,
		"employee_count":     company.EmployeeCount,
		"geographic_markets": company.GeographicMarkets,
	})

	event := &kafka.CompanyEvent{
		EventType:  string(eventType),
		TenantID:   company.TenantID,
		CompanyID:  company.ID.String(),
		Name:       company.Name,
		Industry:   company.Industry,
		DataSource: string(company.DataSource),
		Data:       data,
	}

	if err := e.producer.PublishCompanyEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type": eventType,
			"company_id": company.ID,
		}).Error("Failed to emit company event")
		return err
	}

	return nil
}

// EmitCompaniesImported publishes a company.created event for every company
// a market data import run produced, in one Kafka batch
func (e *Emitter) EmitCompaniesImported(ctx context.Context, companies []*models.Company) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitCompaniesImported")
	defer span.End()

	if len(companies) == 0 {
		return nil
	}

	batch := make([]*kafka.CompanyEvent, len(companies))
	for i, company := range companies {
		data, _ := json.Marshal(map[string]any{
			"schema_version":     SchemaVersion,
			"revenue":            company.Revenue,
			"employee_count":     company.EmployeeCount,
			"geographic_markets": company.GeographicMarkets,
		})
		batch[i] = &kafka.CompanyEvent{
			EventType:  string(EventTypeCompanyCreated),
			TenantID:   company.TenantID,
			CompanyID:  company.ID.String(),
			Name:       company.Name,
			Industry:   company.Industry,
			DataSource: string(company.DataSource),
			Data:       data,
		}
	}

	if err := e.producer.PublishCompanyEvents(ctx, batch); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"batch_size": len(batch),
		}).Error("Failed to emit imported company events")
		return err
	}

	return nil
}

// EmitCompanyDeleted emits a company deleted event
func (e *Emitter) EmitCompanyDeleted(ctx context.Context, tenantID string, companyID string) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitCompanyDeleted")
	defer span.End()

	event := &kafka.CompanyEvent{
		EventType: string(EventTypeCompanyDeleted),
		TenantID:  tenantID,
		CompanyID: companyID,
	}

	if err := e.producer.PublishCompanyEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit company.deleted event")
		return err
	}

	return nil
}

// EmitMatchComputed emits an event summarizing a match computation run
func (e *Emitter) EmitMatchComputed(ctx context.Context, tenantID string, sourceCompanyID string, analysisVersion string, matches []models.Match) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitMatchComputed")
	defer span.End()

	var topScore float64
	summaries := make([]map[string]any, 0, len(matches))
	for _, m := range matches {
		if m.MatchScore > topScore {
			topScore = m.MatchScore
		}
		summaries = append(summaries, map[string]any{
			"candidate_company_id": m.CandidateCompanyID,
			"match_score":          m.MatchScore,
			"match_type":           m.MatchType,
		})
	}
	matchesJSON, _ := json.Marshal(summaries)

	event := &kafka.MatchEvent{
		EventType:       string(EventTypeMatchComputed),
		TenantID:        tenantID,
		SourceCompanyID: sourceCompanyID,
		MatchCount:      len(matches),
		TopScore:        topScore,
		AnalysisVersion: analysisVersion,
		Matches:         matchesJSON,
	}

	if err := e.producer.PublishMatchEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"source_company_id": sourceCompanyID,
		}).Error("Failed to emit match.computed event")
		return err
	}

	return nil
}

// EmitMarketDataImported emits an event after a market data import run
func (e *Emitter) EmitMarketDataImported(ctx context.Context, tenantID string, imported int, failed []string) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitMarketDataImported")
	defer span.End()

	data, _ := json.Marshal(map[string]any{
		"schema_version": SchemaVersion,
		"imported":       imported,
		"failed":         failed,
	})

	event := &kafka.CompanyEvent{
		EventType: string(EventTypeMarketDataImported),
		TenantID:  tenantID,
		CompanyID: tenantID, // partition import summaries by tenant
		Data:      data,
	}

	if err := e.producer.PublishCompanyEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit market_data.imported event")
		return err
	}

	return nil
}
