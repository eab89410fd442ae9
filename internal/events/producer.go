// Package events publishes a single post-batch notification after each
// analysis run, following graph-engine/internal/kafka's producer
// construction style. This is a one-shot notification, not streaming
// ingestion, so it does not conflict with the engine's
// streaming/online-updates Non-goal.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

// AnalysisCompleted is the event payload published after a run finishes.
type AnalysisCompleted struct {
	RunID                 string    `json:"run_id"`
	CompletedAt           time.Time `json:"completed_at"`
	FraudRingsEmitted     int       `json:"fraud_rings_emitted"`
	FlaggedEntities       int       `json:"flagged_entities"`
	FreezeRecommendations int       `json:"freeze_recommendations"`
}

// Producer publishes AnalysisCompleted events to a configured Kafka topic.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewProducer dials brokers and returns a ready Producer.
func NewProducer(brokers []string, topic string, logger *slog.Logger) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3

	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create sync producer: %w", err)
	}

	return &Producer{producer: p, topic: topic, logger: logger}, nil
}

// Publish sends a single AnalysisCompleted event.
func (p *Producer) Publish(event AnalysisCompleted) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal analysis completed event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.RunID),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send analysis completed event: %w", err)
	}

	p.logger.Info("analysis completed event published",
		"run_id", event.RunID, "partition", partition, "offset", offset)
	return nil
}

// Close releases the underlying Kafka connection.
func (p *Producer) Close() error {
	return p.producer.Close()
}
