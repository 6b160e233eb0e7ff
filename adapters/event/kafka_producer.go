package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/khoahotran/career-navigator/internal/config"
	"github.com/khoahotran/career-navigator/pkg/logger"
)

const (
	TopicAnalysisEvents = "analysis.events"
	TopicProgressEvents = "progress.events"
)

// messageWriter is the subset of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducerClient struct {
	AnalysisEventsWriter messageWriter
	ProgressEventsWriter messageWriter
	logger               logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	analysisWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicAnalysisEvents,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	progressWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicProgressEvents,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka Producers successfully.")

	return &KafkaProducerClient{
		AnalysisEventsWriter: analysisWriter,
		ProgressEventsWriter: progressWriter,
		logger:               log,
	}, nil
}

func (c *KafkaProducerClient) PublishAnalysisEvent(ctx context.Context, payload AnalysisEventPayload) error {
	return publish(ctx, c.AnalysisEventsWriter, payload.UserID.String(), payload)
}

func (c *KafkaProducerClient) PublishProgressEvent(ctx context.Context, payload ProgressEventPayload) error {
	return publish(ctx, c.ProgressEventsWriter, payload.UserID.String(), payload)
}

// publish keys messages by user id so one user's events stay ordered.
func publish(ctx context.Context, w messageWriter, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value}); err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.AnalysisEventsWriter != nil {
		c.AnalysisEventsWriter.Close()
	}
	if c.ProgressEventsWriter != nil {
		c.ProgressEventsWriter.Close()
	}
	c.logger.Info("Closed Kafka Producers")
}
