package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/config"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Message headers set on every selection report.
const (
	HeaderCategory    = "category"
	HeaderBrand       = "brand"
	HeaderGeneratedAt = "generated_at"
)

// messageWriter is the subset of *kafkago.Writer used by Publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces selection reports to a Kafka topic.
// It implements pipeline.ReportPublisher.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured report topic.
// Reports are written one per selection, so each write flushes immediately
// instead of waiting for a batch to fill.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaReportTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
	return &Publisher{writer: w, topic: cfg.KafkaReportTopic, logger: logger}
}

// PublishReport serializes one selection report and writes it keyed by its ID.
func (p *Publisher) PublishReport(ctx context.Context, report domain.SelectionReport) error {
	msg, err := serializeToMessage(report)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish report %s to %s: %w", report.ID, p.topic, err)
	}
	p.logger.Debug("selection report published", "report_id", report.ID, "topic", p.topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a SelectionReport into a Kafka message.
func serializeToMessage(report domain.SelectionReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize selection report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderCategory, Value: []byte(report.Category)},
			{Key: HeaderBrand, Value: []byte(report.Brand)},
			{Key: HeaderGeneratedAt, Value: []byte(report.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
