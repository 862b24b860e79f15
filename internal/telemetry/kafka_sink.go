package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures the Kafka sink
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaSink publishes events as JSON, keyed by session so a session's
// snapshots stay ordered within one partition
type KafkaSink struct {
	topic  string
	writer messageWriter
}

// NewKafkaSink creates a sink publishing to cfg.Topic
func NewKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, errors.New("kafka topic must not be empty")
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newKafkaSinkWithWriter(cfg.Topic, w), nil
}

func newKafkaSinkWithWriter(topic string, w messageWriter) *KafkaSink {
	return &KafkaSink{topic: topic, writer: w}
}

// Name returns the sink name
func (s *KafkaSink) Name() string { return "kafka:" + s.topic }

// Write publishes one event
func (s *KafkaSink) Write(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", e.Kind, err)
	}

	msg := kafka.Message{
		Key:   []byte(e.SessionID),
		Value: value,
		Time:  e.At,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(e.Kind)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", e.Kind, err)
	}
	return nil
}

// Close flushes and closes the writer
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
