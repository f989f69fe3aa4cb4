package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/segmentio/kafka-go"
)

// Producer handles Kafka event emission
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	requiredAcks := kafka.RequiredAcks(cfg.RequiredAcks)

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           requiredAcks,
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.Topic,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// traceHeaders carries the active trace context onto the message so
// downstream consumers can join the trace
func traceHeaders(ctx context.Context) []kafka.Header {
	var headers []kafka.Header
	if tp := tracing.GetTraceParent(ctx); tp != "" {
		headers = append(headers, kafka.Header{Key: "traceparent", Value: []byte(tp)})
	}
	if ts := tracing.GetTraceState(ctx); ts != "" {
		headers = append(headers, kafka.Header{Key: "tracestate", Value: []byte(ts)})
	}
	return headers
}

// CompanyEvent represents a company lifecycle event
type CompanyEvent struct {
	EventType  string          `json:"event_type"` // created, updated, deleted
	TenantID   string          `json:"tenant_id"`
	CompanyID  string          `json:"company_id"`
	Name       string          `json:"company_name"`
	Industry   string          `json:"industry_classification,omitempty"`
	DataSource string          `json:"data_source,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// MatchEvent represents a completed match computation for a source company
type MatchEvent struct {
	EventType       string          `json:"event_type"`
	TenantID        string          `json:"tenant_id"`
	SourceCompanyID string          `json:"source_company_id"`
	MatchCount      int             `json:"match_count"`
	TopScore        float64         `json:"top_score"`
	AnalysisVersion string          `json:"analysis_version"`
	Matches         json.RawMessage `json:"matches,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// PublishCompanyEvent publishes a company event to Kafka
func (p *Producer) PublishCompanyEvent(ctx context.Context, event *CompanyEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishCompanyEvent")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.CompanyID),
		Value: data,
		Headers: append([]kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "tenant_id", Value: []byte(event.TenantID)},
			{Key: "data_source", Value: []byte(event.DataSource)},
		}, traceHeaders(ctx)...),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish company event")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_type": event.EventType,
		"company_id": event.CompanyID,
	}).Debug("Published company event")

	return nil
}

// PublishMatchEvent publishes a match computation event to Kafka
func (p *Producer) PublishMatchEvent(ctx context.Context, event *MatchEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishMatchEvent")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.SourceCompanyID),
		Value: data,
		Headers: append([]kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "tenant_id", Value: []byte(event.TenantID)},
		}, traceHeaders(ctx)...),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish match event")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_type":        event.EventType,
		"source_company_id": event.SourceCompanyID,
		"match_count":       event.MatchCount,
	}).Debug("Published match event")

	return nil
}

// PublishCompanyEvents publishes multiple company events in a batch
func (p *Producer) PublishCompanyEvents(ctx context.Context, events []*CompanyEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishCompanyEvents")
	defer span.End()

	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, len(events))
	for i, event := range events {
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now().UTC()
		}

		data, err := json.Marshal(event)
		if err != nil {
			return err
		}

		messages[i] = kafka.Message{
			Topic: p.topic,
			Key:   []byte(event.CompanyID),
			Value: data,
			Headers: append([]kafka.Header{
				{Key: "event_type", Value: []byte(event.EventType)},
				{Key: "tenant_id", Value: []byte(event.TenantID)},
				{Key: "schema_version", Value: []byte("1.0")},
			}, traceHeaders(ctx)...),
		}
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"batch_size": len(events),
		}).Error("Failed to publish company events batch")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"batch_size": len(events),
	}).Debug("Published company events batch")

	return nil
}
