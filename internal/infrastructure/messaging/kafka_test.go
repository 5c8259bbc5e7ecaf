package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketbill/internal/core/id"
	"marketbill/internal/domain"
	"marketbill/internal/infrastructure/config"
	"marketbill/internal/infrastructure/storage/postgres"
)

type relayCounter struct {
	ok, failed int
}

func (c *relayCounter) ObserveRelay(eventType string, err error) {
	if err != nil {
		c.failed++
		return
	}
	c.ok++
}

func outboxMessage() *postgres.OutboxMessage {
	return &postgres.OutboxMessage{
		ID:            id.New(),
		AggregateType: "invoice",
		AggregateID:   id.New(),
		EventType:     domain.EventInvoiceMaterialized,
		Payload:       []byte(`{"total":"7831.60"}`),
		CreatedAt:     time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestKafkaHandler_SendsEnvelope(t *testing.T) {
	msg := outboxMessage()
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var env Envelope
		if err := json.Unmarshal(val, &env); err != nil {
			return err
		}
		if env.ID != msg.ID || env.EventType != domain.EventInvoiceMaterialized {
			return errors.New("unexpected envelope")
		}
		if string(env.Payload) != `{"total":"7831.60"}` {
			return errors.New("payload not embedded")
		}
		return nil
	})

	counter := &relayCounter{}
	h := NewKafkaHandler(producer, "marketbill.events", counter)

	require.NoError(t, h.Handle(context.Background(), msg))
	assert.Equal(t, 1, counter.ok)
	require.NoError(t, producer.Close())
}

func TestKafkaHandler_PropagatesFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	counter := &relayCounter{}
	h := NewKafkaHandler(producer, "marketbill.events", counter)

	err := h.Handle(context.Background(), outboxMessage())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	assert.Equal(t, 1, counter.failed)
	require.NoError(t, producer.Close())
}

func TestProducerConfig(t *testing.T) {
	sc, err := ProducerConfig(config.KafkaConfig{
		ClientID: "worker",
		Producer: config.ProducerConfig{RequiredAcks: "leader", CompressionCodec: "zstd", RetryMax: 7},
	})
	require.NoError(t, err)

	assert.Equal(t, sarama.WaitForLocal, sc.Producer.RequiredAcks)
	assert.Equal(t, sarama.CompressionZSTD, sc.Producer.Compression)
	assert.Equal(t, 7, sc.Producer.Retry.Max)
	assert.True(t, sc.Producer.Return.Successes)

	_, err = ProducerConfig(config.KafkaConfig{Producer: config.ProducerConfig{RequiredAcks: "sometimes"}})
	assert.Error(t, err)

	_, err = ProducerConfig(config.KafkaConfig{Producer: config.ProducerConfig{RequiredAcks: "all", CompressionCodec: "brotli"}})
	assert.Error(t, err)
}

func TestLogHandler(t *testing.T) {
	assert.NoError(t, LogHandler{}.Handle(context.Background(), outboxMessage()))
}
