package kafka_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/adapters/out/kafka"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

func record(seq int64) ports.OrderChangeRecord {
	id := kernel.NewUUID()
	return ports.OrderChangeRecord{
		Seq:       seq,
		EventID:   id.String() + ":1",
		OrderID:   id,
		Payload:   []byte(`{"eventId":"x"}`),
		CreatedAt: time.Date(2025, 12, 28, 10, 0, 0, 0, time.UTC),
	}
}

func TestChangePublisher_SendsKeyedBatch(t *testing.T) {
	rec := record(1)
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, _ := msg.Key.Encode()
		if string(key) != rec.OrderID.String() {
			return errors.New("message not keyed by order id")
		}
		if msg.Topic != "order-changed" {
			return errors.New("wrong topic " + msg.Topic)
		}
		return nil
	})
	producer.ExpectSendMessageAndSucceed()

	err := kafka.NewChangePublisher(producer, "order-changed").Publish(context.Background(), []ports.OrderChangeRecord{rec, record(2)})

	require.NoError(t, err)
	require.NoError(t, producer.Close())
}

func TestChangePublisher_BrokerFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrNotEnoughReplicas)

	err := kafka.NewChangePublisher(producer, "order-changed").Publish(context.Background(), []ports.OrderChangeRecord{record(1)})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send 1 order changes")
	require.NoError(t, producer.Close())
}

func TestChangePublisher_EmptyBatchSendsNothing(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())

	require.NoError(t, kafka.NewChangePublisher(producer, "order-changed").Publish(context.Background(), nil))
	require.NoError(t, producer.Close())
}

func TestDeadLetterWriter_KeepsPayloadAndAddsCause(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		value, _ := msg.Value.Encode()
		if string(value) != "payload" {
			return errors.New("payload changed")
		}
		for _, h := range msg.Headers {
			if string(h.Key) == kafka.HeaderError && string(h.Value) == "handler exploded" {
				return nil
			}
		}
		return errors.New("missing error header")
	})

	msg := &sarama.ConsumerMessage{Topic: "order-changed", Partition: 3, Key: []byte("k"), Value: []byte("payload")}
	err := kafka.NewDeadLetterWriter(producer, "order-changed-dlq").
		Write(context.Background(), msg, errors.New("handler exploded"), time.Now())

	require.NoError(t, err)
	require.NoError(t, producer.Close())
}
