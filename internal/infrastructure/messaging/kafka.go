// Package messaging relays outbox messages to Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"marketbill/internal/core/id"
	"marketbill/internal/infrastructure/config"
	"marketbill/internal/infrastructure/storage/postgres"
	"marketbill/pkg/logger"
)

// Envelope is the Kafka message value.
type Envelope struct {
	ID            id.ID           `json:"id"`
	EventType     string          `json:"eventType"`
	AggregateType string          `json:"aggregateType"`
	AggregateID   id.ID           `json:"aggregateId"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Payload       json.RawMessage `json:"payload"`
}

func parseRequiredAcks(v string) (sarama.RequiredAcks, error) {
	switch strings.ToLower(v) {
	case "none", "no_response", "0":
		return sarama.NoResponse, nil
	case "leader", "local", "wait_for_local", "1":
		return sarama.WaitForLocal, nil
	case "all", "wait_for_all", "-1":
		return sarama.WaitForAll, nil
	default:
		return sarama.WaitForAll, fmt.Errorf("invalid kafka required_acks: %s", v)
	}
}

func parseCompression(v string) (sarama.CompressionCodec, error) {
	switch strings.ToLower(v) {
	case "", "none":
		return sarama.CompressionNone, nil
	case "gzip":
		return sarama.CompressionGZIP, nil
	case "snappy":
		return sarama.CompressionSnappy, nil
	case "lz4":
		return sarama.CompressionLZ4, nil
	case "zstd":
		return sarama.CompressionZSTD, nil
	default:
		return sarama.CompressionNone, fmt.Errorf("invalid kafka compression_codec: %s", v)
	}
}

// ProducerConfig builds the Sarama configuration of the relay producer.
func ProducerConfig(cfg config.KafkaConfig) (*sarama.Config, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID

	acks, err := parseRequiredAcks(cfg.Producer.RequiredAcks)
	if err != nil {
		return nil, err
	}
	codec, err := parseCompression(cfg.Producer.CompressionCodec)
	if err != nil {
		return nil, err
	}

	sc.Producer.RequiredAcks = acks
	sc.Producer.Compression = codec
	sc.Producer.Retry.Max = cfg.Producer.RetryMax
	sc.Producer.Retry.Backoff = cfg.Producer.RetryBackoff
	// Required by SyncProducer.
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	return sc, nil
}

// NewSyncProducer connects a synchronous producer to the configured brokers.
func NewSyncProducer(cfg config.KafkaConfig) (sarama.SyncProducer, error) {
	sc, err := ProducerConfig(cfg)
	if err != nil {
		return nil, err
	}
	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return producer, nil
}

// RelayObserver is told about every delivery attempt.
type RelayObserver interface {
	ObserveRelay(eventType string, err error)
}

// KafkaHandler implements postgres.OutboxHandler by producing one Kafka message
// per outbox message, keyed by aggregate id so events of one invoice stay ordered.
type KafkaHandler struct {
	producer sarama.SyncProducer
	topic    string
	observer RelayObserver
}

var _ postgres.OutboxHandler = (*KafkaHandler)(nil)

// NewKafkaHandler creates a handler. observer may be nil.
func NewKafkaHandler(producer sarama.SyncProducer, topic string, observer RelayObserver) *KafkaHandler {
	return &KafkaHandler{producer: producer, topic: topic, observer: observer}
}

// Handle sends the message and waits for the broker acknowledgement.
func (h *KafkaHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	value, err := json.Marshal(Envelope{
		ID:            msg.ID,
		EventType:     msg.EventType,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		OccurredAt:    msg.CreatedAt,
		Payload:       json.RawMessage(msg.Payload),
	})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	pm := &sarama.ProducerMessage{
		Topic: h.topic,
		Key:   sarama.StringEncoder(msg.AggregateID.String()),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(msg.EventType)},
			{Key: []byte("message_id"), Value: []byte(msg.ID.String())},
		},
	}

	partition, offset, err := h.producer.SendMessage(pm)
	if h.observer != nil {
		h.observer.ObserveRelay(msg.EventType, err)
	}
	if err != nil {
		return fmt.Errorf("send %s to kafka: %w", msg.EventType, err)
	}

	logger.Debug(ctx, "outbox message relayed",
		"message_id", msg.ID,
		"event_type", msg.EventType,
		"partition", partition,
		"offset", offset,
	)
	return nil
}

// LogHandler implements postgres.OutboxHandler for deployments without a broker:
// messages are logged and marked published.
type LogHandler struct{}

var _ postgres.OutboxHandler = LogHandler{}

// Handle logs the message.
func (LogHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	logger.Info(ctx, "outbox message",
		"message_id", msg.ID,
		"event_type", msg.EventType,
		"aggregate_type", msg.AggregateType,
		"aggregate_id", msg.AggregateID,
	)
	return nil
}
